// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolve defines a name-resolution pass for Lox abstract
// syntax trees.
//
// The resolver sets the Locals map for each variable reference: the
// number of lexical scopes between the reference and the scope that
// declares the variable. References for which no enclosing local
// declaration exists are assumed to be global, and have no entry.
//
// The evaluator creates exactly one environment for each scope the
// resolver pushes, in the same order, so a recorded distance is the
// number of enclosing links to follow at run time:
//
//	block              one scope for its declarations
//	function, method   one scope for its parameters and body
//	class with super   one scope holding "super"
//	class              one scope holding "this", around its methods
//
// The resolver also reports static errors: a duplicate declaration in
// one local scope, a read of a local variable in its own initializer,
// return outside a function or with a value from an initializer, this
// outside a class, super outside a subclass, and a class that inherits
// from itself. Resolution continues after an error so that one pass
// reports them all; a program with any error must not be executed.
package resolve // import "go.lox.dev/resolve"

import (
	"fmt"
	"log"
	"sort"

	"go.lox.dev/syntax"
)

const debug = false

// Locals maps each resolved variable reference (a *syntax.VarExpr,
// *syntax.AssignExpr, *syntax.ThisExpr or *syntax.SuperExpr) to the
// number of scopes between it and its declaration.
type Locals map[syntax.Expr]int

// Depth returns the distance recorded for the reference x.
// The result is false if x is a global reference.
func (l Locals) Depth(x syntax.Expr) (int, bool) {
	d, ok := l[x]
	return d, ok
}

// An ErrorList is a non-empty list of resolver error messages.
type ErrorList []Error // len > 0

func (e ErrorList) Error() string { return e[0].Error() }

func (e ErrorList) Len() int           { return len(e) }
func (e ErrorList) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }
func (e ErrorList) Less(i, j int) bool { return before(e[i].Pos, e[j].Pos) }

func before(p, q syntax.Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// An Error describes the nature and position of a resolver error.
type Error struct {
	Pos syntax.Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// File resolves the specified file and returns the distance of every
// local reference. On failure the error is an ErrorList.
func File(file *syntax.File) (Locals, error) {
	r := newResolver()
	r.stmts(file.Stmts)
	return r.result()
}

// Expr resolves the specified expression, which must occur at top
// level (outside any function or class). Since no scope is open, every
// reference in it is global and the result is normally empty; it is
// returned for uniformity with File.
func Expr(expr syntax.Expr) (Locals, error) {
	r := newResolver()
	r.expr(expr)
	return r.result()
}

// Declaration state of a name within one scope.
const (
	declared = false // declared, initializer not yet resolved
	defined  = true  // ready for use
)

type scope map[string]bool

type functionType int

const (
	noFunction functionType = iota
	function
	initializer
	method
)

type classType int

const (
	noClass classType = iota
	class
	subclass
)

// initName is the name of the method that initializes new instances.
const initName = "init"

type resolver struct {
	// scopes is the stack of local scopes, innermost last.
	// The global scope is not on it: globals get no distance.
	scopes []scope

	// globals tracks declarations at top level, only so that a global
	// read in its own initializer is reported like a local one.
	globals scope

	fn    functionType // kind of the innermost enclosing function
	class classType    // kind of the innermost enclosing class

	locals Locals
	errors ErrorList
}

func newResolver() *resolver {
	return &resolver{
		globals: make(scope),
		locals:  make(Locals),
	}
}

func (r *resolver) result() (Locals, error) {
	if len(r.errors) > 0 {
		sort.Stable(r.errors)
		return nil, r.errors
	}
	return r.locals, nil
}

func (r *resolver) errorf(posn syntax.Position, format string, args ...interface{}) {
	r.errors = append(r.errors, Error{posn, fmt.Sprintf(format, args...)})
}

func (r *resolver) push() {
	r.scopes = append(r.scopes, make(scope))
	if debug {
		fmt.Printf("push: depth %d\n", len(r.scopes))
	}
}

func (r *resolver) pop() {
	if debug {
		fmt.Printf("pop: depth %d\n", len(r.scopes))
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// innermost returns the innermost scope, or the global scope
// if no local scope is open.
func (r *resolver) innermost() scope {
	if len(r.scopes) == 0 {
		return r.globals
	}
	return r.scopes[len(r.scopes)-1]
}

// declare adds id to the innermost scope without making it usable.
func (r *resolver) declare(id *syntax.Ident) {
	if len(r.scopes) > 0 {
		if _, ok := r.innermost()[id.Name]; ok {
			r.errorf(id.NamePos, "already a variable named %s in this scope", id.Name)
		}
	}
	r.innermost()[id.Name] = declared
}

// define marks id as usable in the innermost scope.
func (r *resolver) define(id *syntax.Ident) {
	r.innermost()[id.Name] = defined
}

// bind declares and defines a name that has no source identifier,
// such as "this" or "super".
func (r *resolver) bind(name string) {
	r.innermost()[name] = defined
}

// local records the distance of reference x to name, searching
// outward from the innermost scope. If no local scope declares
// the name, x is global and nothing is recorded.
func (r *resolver) local(x syntax.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			depth := len(r.scopes) - 1 - i
			if debug {
				fmt.Printf("%s: %s at depth %d\n", syntax.Start(x), name, depth)
			}
			r.locals[x] = depth
			return
		}
	}
}

func (r *resolver) stmts(stmts []syntax.Stmt) {
	for _, stmt := range stmts {
		r.stmt(stmt)
	}
}

func (r *resolver) stmt(stmt syntax.Stmt) {
	switch stmt := stmt.(type) {
	case *syntax.BlockStmt:
		r.push()
		r.stmts(stmt.Stmts)
		r.pop()

	case *syntax.ClassDecl:
		r.classDecl(stmt)

	case *syntax.ExprStmt:
		r.expr(stmt.X)

	case *syntax.FunDecl:
		// Define the name eagerly so the body may refer to it.
		r.declare(stmt.Name)
		r.define(stmt.Name)
		r.function(stmt, function)

	case *syntax.IfStmt:
		r.expr(stmt.Cond)
		r.stmt(stmt.Then)
		if stmt.Else != nil {
			r.stmt(stmt.Else)
		}

	case *syntax.PrintStmt:
		r.expr(stmt.X)

	case *syntax.ReturnStmt:
		if r.fn == noFunction {
			r.errorf(stmt.Return, "return statement not within a function")
		}
		if stmt.Result != nil {
			if r.fn == initializer {
				r.errorf(stmt.Return, "can't return a value from an initializer")
			}
			r.expr(stmt.Result)
		}

	case *syntax.VarStmt:
		// The name is declared but not defined while its
		// initializer is resolved, to catch self-reference.
		r.declare(stmt.Name)
		if stmt.Init != nil {
			r.expr(stmt.Init)
		}
		r.define(stmt.Name)

	case *syntax.WhileStmt:
		r.expr(stmt.Cond)
		r.stmt(stmt.Body)

	default:
		start, _ := stmt.Span()
		log.Fatalf("%s: unexpected statement %T", start, stmt)
	}
}

func (r *resolver) classDecl(decl *syntax.ClassDecl) {
	enclosing := r.class
	r.class = class

	r.declare(decl.Name)
	r.define(decl.Name)

	if decl.Super != nil {
		if decl.Super.Name.Name == decl.Name.Name {
			r.errorf(decl.Super.Name.NamePos, "class %s can't inherit from itself", decl.Name.Name)
		}
		r.class = subclass
		r.expr(decl.Super)

		r.push()
		r.bind("super")
	}

	r.push()
	r.bind("this")
	for _, m := range decl.Methods {
		kind := method
		if m.Name.Name == initName {
			kind = initializer
		}
		r.function(m, kind)
	}
	r.pop()

	if decl.Super != nil {
		r.pop()
	}

	r.class = enclosing
}

// function resolves the parameters and body of a function or method
// in a single new scope.
func (r *resolver) function(decl *syntax.FunDecl, kind functionType) {
	enclosing := r.fn
	r.fn = kind

	r.push()
	for _, param := range decl.Params {
		r.declare(param)
		r.define(param)
	}
	r.stmts(decl.Body)
	r.pop()

	r.fn = enclosing
}

func (r *resolver) expr(e syntax.Expr) {
	switch e := e.(type) {
	case *syntax.AssignExpr:
		r.expr(e.Value)
		r.local(e, e.Name.Name)

	case *syntax.BinaryExpr:
		r.expr(e.X)
		r.expr(e.Y)

	case *syntax.CallExpr:
		r.expr(e.Fn)
		for _, arg := range e.Args {
			r.expr(arg)
		}

	case *syntax.GetExpr:
		// Properties are looked up dynamically.
		r.expr(e.X)

	case *syntax.Literal:
		// no-op

	case *syntax.LogicalExpr:
		r.expr(e.X)
		r.expr(e.Y)

	case *syntax.ParenExpr:
		r.expr(e.X)

	case *syntax.SetExpr:
		r.expr(e.Value)
		r.expr(e.X)

	case *syntax.SuperExpr:
		switch r.class {
		case noClass:
			r.errorf(e.Super, "can't use 'super' outside of a class")
		case class:
			r.errorf(e.Super, "can't use 'super' in a class with no superclass")
		}
		r.local(e, "super")

	case *syntax.ThisExpr:
		if r.class == noClass {
			r.errorf(e.This, "can't use 'this' outside of a class")
			return
		}
		r.local(e, "this")

	case *syntax.UnaryExpr:
		r.expr(e.X)

	case *syntax.VarExpr:
		if state, ok := r.innermost()[e.Name.Name]; ok && state == declared {
			r.errorf(e.Name.NamePos, "can't read local variable %s in its own initializer", e.Name.Name)
		}
		r.local(e, e.Name.Name)

	default:
		start, _ := e.Span()
		log.Fatalf("%s: unexpected expression %T", start, e)
	}
}
