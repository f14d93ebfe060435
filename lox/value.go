// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lox provides a Lox interpreter.
//
// Lox values are represented by the Value interface.
// The following built-in Value types are known to the evaluator:
//
//	NilType     -- nil
//	Bool        -- bool
//	Float       -- number
//	String      -- string
//	*Function   -- function (a closure, possibly a bound method)
//	*Builtin    -- builtin_function
//	*Class      -- class
//	*Instance   -- instance
//
// Client applications may define new callable data types that satisfy
// the Callable interface.
//
// The ExecFile function executes a Lox file in a Thread, which holds
// the global environment shared by successive programs, such as the
// chunks entered at a read-eval-print loop.
package lox // import "go.lox.dev/lox"

import (
	"math"
	"strconv"
)

// Value is a value in the Lox interpreter.
type Value interface {
	// String returns the string representation of the value,
	// as printed by the print statement.
	String() string

	// Type returns a short string describing the value's type.
	Type() string

	// Truth returns the truth value of an object.
	Truth() Bool
}

// A Callable value f may be the operand of a function call, f(x).
type Callable interface {
	Value
	Name() string
	Arity() int
	CallInternal(thread *Thread, args []Value) (Value, error)
}

var (
	_ Callable = (*Builtin)(nil)
	_ Callable = (*Function)(nil)
	_ Callable = (*Class)(nil)
)

// NilType is the type of nil. Its only legal value is Nil.
// (We represent it as a number, not struct{}, so that Nil may be constant.)
type NilType byte

const Nil = NilType(0)

func (NilType) String() string { return "nil" }
func (NilType) Type() string   { return "nil" }
func (NilType) Truth() Bool    { return False }

// Bool is the type of a Lox bool.
type Bool bool

const (
	False Bool = false
	True  Bool = true
)

func (b Bool) String() string {
	if b {
		return "true"
	} else {
		return "false"
	}
}
func (b Bool) Type() string { return "bool" }
func (b Bool) Truth() Bool  { return b }

// Float is the type of a Lox number.
type Float float64

// String formats a number the way Lox prints it: integral values
// have no fractional part, and infinities are spelled out.
func (f Float) String() string {
	switch {
	case math.IsInf(float64(f), +1):
		return "Infinity"
	case math.IsInf(float64(f), -1):
		return "-Infinity"
	case math.IsNaN(float64(f)):
		return "NaN"
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 64)
}
func (f Float) Type() string { return "number" }
func (f Float) Truth() Bool  { return True }

// String is the type of a Lox string.
type String string

func (s String) String() string { return string(s) }
func (s String) Type() string   { return "string" }
func (s String) Truth() Bool    { return True }

// GoString returns the quoted string, for use in messages.
func (s String) GoString() string { return strconv.Quote(string(s)) }

// Truth reports whether x is truthy: everything but nil and false.
func Truth(x Value) bool { return bool(x.Truth()) }

// Equal reports whether x and y are equal.
// Values of different types are never equal; numbers, strings and
// booleans compare by value, and all other values by identity.
func Equal(x, y Value) bool {
	// All Value representations are comparable Go values,
	// so interface equality is Lox equality.
	return x == y
}

// A Builtin is a function implemented in Go.
type Builtin struct {
	name  string
	arity int
	fn    func(thread *Thread, b *Builtin, args []Value) (Value, error)
}

// NewBuiltin returns a new Builtin value with the specified name,
// number of parameters and implementation.
func NewBuiltin(name string, arity int, fn func(thread *Thread, b *Builtin, args []Value) (Value, error)) *Builtin {
	return &Builtin{name: name, arity: arity, fn: fn}
}

func (b *Builtin) Name() string   { return b.name }
func (b *Builtin) Arity() int     { return b.arity }
func (b *Builtin) String() string { return "<native fn>" }
func (b *Builtin) Type() string   { return "builtin_function" }
func (b *Builtin) Truth() Bool    { return True }

func (b *Builtin) CallInternal(thread *Thread, args []Value) (Value, error) {
	return b.fn(thread, b, args)
}

// AsFloat returns the number held by x, if x is a number.
func AsFloat(x Value) (float64, bool) {
	f, ok := x.(Float)
	return float64(f), ok
}

// AsString returns the string held by x, if x is a string.
func AsString(x Value) (string, bool) {
	s, ok := x.(String)
	return string(s), ok
}
