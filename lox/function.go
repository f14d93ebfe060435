// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lox

import (
	"fmt"

	"go.lox.dev/syntax"
)

// A Function is a Lox function or method paired with the environment
// in which it was declared.
type Function struct {
	decl          *syntax.FunDecl
	closure       *Environment
	isInitializer bool
}

// NewFunction returns the closure of decl over env.
// isInitializer is true for a class's init method.
func NewFunction(decl *syntax.FunDecl, env *Environment, isInitializer bool) *Function {
	return &Function{decl: decl, closure: env, isInitializer: isInitializer}
}

func (fn *Function) Name() string              { return fn.decl.Name.Name }
func (fn *Function) Arity() int                { return len(fn.decl.Params) }
func (fn *Function) Position() syntax.Position { return fn.decl.Fun }
func (fn *Function) String() string            { return fmt.Sprintf("<fn %s>", fn.Name()) }
func (fn *Function) Type() string              { return "function" }
func (fn *Function) Truth() Bool               { return True }

// Closure returns the environment the function captured.
func (fn *Function) Closure() *Environment { return fn.closure }

// Bind returns a copy of the method fn whose receiver is fixed to be
// instance: a new scope holding only "this" is placed between the
// method's closure and the scope of each call.
func (fn *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(fn.closure)
	env.Define("this", instance)
	return &Function{decl: fn.decl, closure: env, isInitializer: fn.isInitializer}
}

// CallInternal calls fn. The caller has checked the number of
// arguments and pushed a frame for the call.
func (fn *Function) CallInternal(thread *Thread, args []Value) (Value, error) {
	// Parameters are bound in a scope within the closure,
	// not within the caller's environment.
	env := NewEnvironment(fn.closure)
	for i, param := range fn.decl.Params {
		env.Define(param.Name, args[i])
	}

	err := thread.ExecBlock(fn.decl.Body, env)
	if err != nil && err != errReturn {
		return nil, err
	}

	if fn.isInitializer {
		// An initializer always yields its receiver,
		// even after a bare return.
		return fn.closure.GetAt(0, "this"), nil
	}
	if err == errReturn {
		return thread.frame.result, nil
	}
	return Nil, nil
}
