// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loxtest defines utilities for testing Lox programs.
//
// Clients can add the Builtins to a thread's globals to give programs
// several functions useful for testing:
//
//	error(msg)            reports msg, with a backtrace, as a test failure
//	catch(fn)             calls fn() and returns its error message, or nil
//	matches(pattern, str) reports whether str matches the regular expression
//
// The error function, which reports errors to the current Go
// testing.T, requires that clients call SetReporter(thread, t) before use.
package loxtest // import "go.lox.dev/loxtest"

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.lox.dev/lox"
)

const localKey = "Reporter"

// A Reporter is a value to which errors may be reported.
// It is satisfied by *testing.T.
type Reporter interface {
	Error(args ...interface{})
}

// SetReporter associates an error reporter (such as a testing.T in
// a Go test) with the Lox thread so that Lox programs may
// report errors to it.
func SetReporter(thread *lox.Thread, r Reporter) {
	thread.SetLocal(localKey, r)
}

// GetReporter returns the Lox thread's error reporter.
// It must be preceded by a call to SetReporter.
func GetReporter(thread *lox.Thread) Reporter {
	r, ok := thread.Local(localKey).(Reporter)
	if !ok {
		panic("internal error: loxtest.SetReporter was not called")
	}
	return r
}

// Builtins returns the testing functions described in the package
// documentation, keyed by name.
func Builtins() lox.StringDict {
	return lox.StringDict{
		"error":   lox.NewBuiltin("error", 1, error_),
		"catch":   lox.NewBuiltin("catch", 1, catch),
		"matches": lox.NewBuiltin("matches", 2, matches),
	}
}

// Install defines the Builtins in the thread's global environment.
func Install(thread *lox.Thread) {
	globals := thread.Globals()
	b := Builtins()
	for _, name := range b.Keys() {
		globals.Define(name, b[name])
	}
}

// catch(fn) evaluates fn() and returns its evaluation error message
// if it failed or nil if it succeeded.
func catch(thread *lox.Thread, _ *lox.Builtin, args []lox.Value) (lox.Value, error) {
	if _, err := lox.Call(thread, args[0], nil); err != nil {
		return lox.String(err.Error()), nil
	}
	return lox.Nil, nil
}

// matches(pattern, str) reports whether string str matches the regular expression pattern.
func matches(thread *lox.Thread, _ *lox.Builtin, args []lox.Value) (lox.Value, error) {
	pattern, ok := lox.AsString(args[0])
	if !ok {
		return nil, fmt.Errorf("matches: for parameter pattern: got %s, want string", args[0].Type())
	}
	str, ok := lox.AsString(args[1])
	if !ok {
		return nil, fmt.Errorf("matches: for parameter str: got %s, want string", args[1].Type())
	}
	ok, err := regexp.MatchString(pattern, str)
	if err != nil {
		return nil, fmt.Errorf("matches: %s", err)
	}
	return lox.Bool(ok), nil
}

// error(x) reports an error to the Go test framework.
func error_(thread *lox.Thread, _ *lox.Builtin, args []lox.Value) (lox.Value, error) {
	buf := new(strings.Builder)
	stk := thread.CallStack()
	stk = stk[:len(stk)-1] // pop the frame of error itself
	fmt.Fprintf(buf, "%sError: ", stk)
	buf.WriteString(args[0].String())
	GetReporter(thread).Error(buf.String())
	return lox.Nil, nil
}

// A PrintRecorder accumulates the output of a thread's print
// statements, one line per statement.
type PrintRecorder struct {
	mu  sync.Mutex
	buf strings.Builder
}

// CapturePrint arranges for the thread's print statements to be
// recorded by the returned PrintRecorder instead of written to stdout.
func CapturePrint(thread *lox.Thread) *PrintRecorder {
	r := new(PrintRecorder)
	thread.Print = func(_ *lox.Thread, msg string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.buf.WriteString(msg)
		r.buf.WriteByte('\n')
	}
	return r
}

// String returns everything printed so far.
func (r *PrintRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// DataFile returns the effective filename of the specified
// test data resource. Tests run in their package directory, which
// is a sibling of pkgdir in this module.
var DataFile = func(pkgdir, filename string) string {
	return filepath.Join("..", pkgdir, filename)
}
