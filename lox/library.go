// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lox

// This file defines the library of built-ins.

import (
	"sort"
	"strings"
	"time"
)

// A StringDict is a mapping from names to values, such as the
// predeclared names of every thread's global environment.
// It is not a true lox.Value.
type StringDict map[string]Value

// Keys returns a new sorted slice of d's keys.
func (d StringDict) Keys() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d StringDict) String() string {
	buf := new(strings.Builder)
	buf.WriteByte('{')
	sep := ""
	for _, name := range d.Keys() {
		buf.WriteString(sep)
		buf.WriteString(name)
		buf.WriteString(": ")
		buf.WriteString(d[name].String())
		sep = ", "
	}
	buf.WriteByte('}')
	return buf.String()
}

// Has reports whether the dictionary contains the specified key.
func (d StringDict) Has(key string) bool { _, ok := d[key]; return ok }

// Universe defines the set of universal built-ins, which every new
// thread's global environment starts with.
//
// Clients may add names before creating threads; a global declaration
// of the same name in a program replaces the built-in for that thread.
var Universe = StringDict{
	"clock": NewBuiltin("clock", 0, clock),
}

// now is overridden by tests.
var now = time.Now

// clock() returns the number of seconds since the Unix epoch.
func clock(thread *Thread, _ *Builtin, args []Value) (Value, error) {
	return Float(float64(now().UnixNano()) / 1e9), nil
}
