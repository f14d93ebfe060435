// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lox

import (
	"fmt"
	"sort"
)

// An Environment is one scope of variable bindings at run time.
//
// Environments form a chain through their enclosing links, ending at
// the global environment. The evaluator creates one Environment for
// each scope the resolver opened, so a distance computed statically
// is the number of links to follow at run time.
//
// An Environment is shared by every closure, bound method and active
// call that refers to it, and lives as long as any of them does.
type Environment struct {
	enclosing *Environment // nil for the global environment
	values    map[string]Value
}

// NewEnvironment returns a new, empty scope within enclosing,
// which is nil for a global environment.
func NewEnvironment(enclosing *Environment) *Environment {
	return &Environment{enclosing: enclosing, values: make(map[string]Value)}
}

// Enclosing returns the enclosing environment, or nil.
func (e *Environment) Enclosing() *Environment { return e.enclosing }

// An UndefinedError reports a dynamic lookup or assignment of a name
// that no environment in the chain defines.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("undefined variable '%s'", e.Name)
}

// Define binds name to v in this scope, replacing any existing binding.
// It never consults enclosing scopes.
func (e *Environment) Define(name string, v Value) {
	e.values[name] = v
}

// Get returns the value of name, searching this scope and then each
// enclosing scope in turn.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, &UndefinedError{name}
}

// Assign updates the innermost existing binding of name.
// Like Get, it fails if no scope in the chain defines name.
func (e *Environment) Assign(name string, v Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name]; ok {
			env.values[name] = v
			return nil
		}
	}
	return &UndefinedError{name}
}

// Ancestor returns the environment distance links out from e.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.enclosing
	}
	return env
}

// GetAt returns the value of name in the scope distance links out.
// The caller guarantees that the binding exists there, as the
// resolver does for every distance it records.
func (e *Environment) GetAt(distance int, name string) Value {
	return e.Ancestor(distance).values[name]
}

// AssignAt updates name in the scope distance links out.
func (e *Environment) AssignAt(distance int, name string, v Value) {
	e.Ancestor(distance).values[name] = v
}

// Names returns the names bound in this scope, in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Depth returns the number of enclosing links from e to the
// global environment.
func (e *Environment) Depth() int {
	n := 0
	for env := e.enclosing; env != nil; env = env.enclosing {
		n++
	}
	return n
}
