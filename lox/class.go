// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lox

import (
	"fmt"
	"sort"
)

// A Class is a Lox class: a name, a table of methods and an optional
// superclass. Calling a class constructs an instance of it.
type Class struct {
	name       string
	methods    map[string]*Function
	superclass *Class // may be nil
}

// NewClass returns a new class. superclass may be nil.
func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	if methods == nil {
		methods = make(map[string]*Function)
	}
	return &Class{name: name, methods: methods, superclass: superclass}
}

func (c *Class) Name() string   { return c.name }
func (c *Class) String() string { return c.name }
func (c *Class) Type() string   { return "class" }
func (c *Class) Truth() Bool    { return True }

// Superclass returns the class's superclass, or nil.
func (c *Class) Superclass() *Class { return c.superclass }

// FindMethod returns the method of the specified name defined by c or
// its nearest ancestor, or nil if there is none.
func (c *Class) FindMethod(name string) *Function {
	for class := c; class != nil; class = class.superclass {
		if m, ok := class.methods[name]; ok {
			return m
		}
	}
	return nil
}

// methodNames returns the names of all methods of c and its ancestors.
func (c *Class) methodNames() []string {
	seen := make(map[string]bool)
	var names []string
	for class := c; class != nil; class = class.superclass {
		for name := range class.methods {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Arity returns the number of arguments a call of the class takes,
// which is that of its initializer, if any.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// CallInternal constructs a new instance of c, running its initializer
// with args. The result is the instance whatever the initializer yields.
func (c *Class) CallInternal(thread *Thread, args []Value) (Value, error) {
	instance := &Instance{class: c, fields: make(map[string]Value)}
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(instance).CallInternal(thread, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// An Instance is an object constructed by calling a Class.
type Instance struct {
	class  *Class
	fields map[string]Value
}

func (x *Instance) Class() *Class  { return x.class }
func (x *Instance) String() string { return x.class.name + " instance" }
func (x *Instance) Type() string   { return "instance" }
func (x *Instance) Truth() Bool    { return True }

// Attr returns the value of the named property of x: the field of that
// name if there is one, and otherwise the method, freshly bound to x.
func (x *Instance) Attr(name string) (Value, error) {
	if v, ok := x.fields[name]; ok {
		return v, nil
	}
	if m := x.class.FindMethod(name); m != nil {
		return m.Bind(x), nil
	}
	candidates := append(x.FieldNames(), x.class.methodNames()...)
	if n := nearest(name, candidates); n != "" {
		return nil, fmt.Errorf("undefined property '%s' (did you mean '%s'?)", name, n)
	}
	return nil, fmt.Errorf("undefined property '%s'", name)
}

// SetField sets the named field of x. Fields shadow methods of the
// same name, but assignment never alters the class.
func (x *Instance) SetField(name string, v Value) {
	x.fields[name] = v
}

// FieldNames returns the names of x's fields, in sorted order.
func (x *Instance) FieldNames() []string {
	names := make([]string, 0, len(x.fields))
	for name := range x.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
