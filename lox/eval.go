// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lox

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"unsafe"

	"go.lox.dev/resolve"
	"go.lox.dev/syntax"
)

const debug = false

// MaxCallDepth is the maximum depth of nested calls.
// A deeper call fails with a "stack overflow" error.
var MaxCallDepth = 10000

// A Thread contains the state of a Lox thread: its global environment,
// the resolved distances of every program it has executed, and its
// call stack. The Thread is threaded throughout the evaluator.
//
// The zero value is ready to use. A Thread must not be used by more
// than one goroutine at a time.
type Thread struct {
	// Name is an optional name that describes the thread, for debugging.
	Name string

	// Print is the client-supplied implementation of the Lox print
	// statement. If nil, fmt.Fprintln(os.Stdout, msg) is used instead.
	Print func(thread *Thread, msg string)

	globals *Environment   // global environment, created on first use
	env     *Environment   // current environment
	depths  resolve.Locals // distances of all resolved references
	frame   *Frame         // innermost call frame
	depth   int            // number of frames

	cancelReason *string // non-nil if thread is cancelled

	// locals holds arbitrary "thread-local" values belonging to the client.
	locals map[string]interface{}
}

// SetLocal sets the thread-local value associated with the specified key.
// It must not be called after execution begins.
func (thread *Thread) SetLocal(key string, value interface{}) {
	if thread.locals == nil {
		thread.locals = make(map[string]interface{})
	}
	thread.locals[key] = value
}

// Local returns the thread-local value associated with the specified key.
func (thread *Thread) Local(key string) interface{} {
	return thread.locals[key]
}

// Globals returns the thread's global environment, which initially
// holds the Universe.
func (thread *Thread) Globals() *Environment {
	thread.init()
	return thread.globals
}

// Cancel causes execution of Lox code in the specified thread to
// promptly fail with an EvalError that includes the specified reason.
// There may be a delay before the interpreter observes the cancellation
// if the thread is currently in a call to a built-in function.
//
// Unlike most methods of Thread, it is safe to call Cancel from any
// goroutine, even if the thread is actively executing.
func (thread *Thread) Cancel(reason string) {
	// Atomically set cancelReason, preserving earlier reason if any.
	atomic.CompareAndSwapPointer((*unsafe.Pointer)(unsafe.Pointer(&thread.cancelReason)), nil, unsafe.Pointer(&reason))
}

// cancelled returns a non-nil error if the thread has been cancelled.
func (thread *Thread) cancelled(posn syntax.Position) error {
	if reason := atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&thread.cancelReason))); reason != nil {
		return thread.errorf(posn, "Lox computation cancelled: %s", *(*string)(reason))
	}
	return nil
}

// Uncancel resets the cancellation state, so that a thread interrupted
// at a read-eval-print loop may be used for the next input.
func (thread *Thread) Uncancel() {
	atomic.StorePointer((*unsafe.Pointer)(unsafe.Pointer(&thread.cancelReason)), nil)
}

func (thread *Thread) init() {
	if thread.globals == nil {
		thread.globals = NewEnvironment(nil)
		for _, name := range Universe.Keys() {
			thread.globals.Define(name, Universe[name])
		}
		thread.env = thread.globals
		thread.depths = make(resolve.Locals)
	}
}

// A Frame records a call to a Lox function, or the toplevel of a
// program, for use in backtraces.
type Frame struct {
	parent   *Frame
	callable Callable        // nil for the toplevel
	pos      syntax.Position // position of the current call or error
	result   Value           // operand of the function's return statement
}

// Callable returns the frame's function, or nil for the toplevel.
func (fr *Frame) Callable() Callable { return fr.callable }

// Position returns the source position of the current point of
// execution in this frame.
func (fr *Frame) Position() syntax.Position { return fr.pos }

func (thread *Thread) push(c Callable) *Frame {
	fr := &Frame{parent: thread.frame, callable: c}
	thread.frame = fr
	thread.depth++
	return fr
}

func (thread *Thread) pop() {
	thread.frame = thread.frame.parent
	thread.depth--
}

// A CallFrame represents the function name and current position of
// execution of an enclosing call frame.
type CallFrame struct {
	Name string
	Pos  syntax.Position
}

// A CallStack is a stack of call frames, outermost first.
type CallStack []CallFrame

// At returns a copy of the frame at depth i.
// At(0) returns the innermost frame.
func (stack CallStack) At(i int) CallFrame { return stack[len(stack)-1-i] }

// String returns a user-friendly description of the stack.
func (stack CallStack) String() string {
	out := new(strings.Builder)
	fmt.Fprintf(out, "Traceback (most recent call last):\n")
	for _, fr := range stack {
		fmt.Fprintf(out, "  %s: in %s\n", fr.Pos, fr.Name)
	}
	return out.String()
}

// CallStack returns a new slice containing the thread's stack of call
// frames, outermost first.
func (thread *Thread) CallStack() CallStack {
	var stack CallStack
	for fr := thread.frame; fr != nil; fr = fr.parent {
		name := "<toplevel>"
		if fr.callable != nil {
			name = fr.callable.Name()
		}
		stack = append(stack, CallFrame{name, fr.pos})
	}
	// reverse
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}

// An EvalError is a Lox run-time error and its associated call stack.
type EvalError struct {
	Msg       string
	Pos       syntax.Position
	CallStack CallStack
	cause     error
}

func (e *EvalError) Error() string { return e.Msg }

// Backtrace returns a user-friendly error message describing the stack
// of calls that led to this error.
func (e *EvalError) Backtrace() string {
	return fmt.Sprintf("%sError: %s", e.CallStack, e.Msg)
}

// Unwrap returns the underlying error, if any, such as an
// *UndefinedError.
func (e *EvalError) Unwrap() error { return e.cause }

// errorf returns an EvalError at posn in the current frame.
func (thread *Thread) errorf(posn syntax.Position, format string, args ...interface{}) *EvalError {
	thread.frame.pos = posn
	return &EvalError{
		Msg:       fmt.Sprintf(format, args...),
		Pos:       posn,
		CallStack: thread.CallStack(),
	}
}

// wrapError wraps the error in a lox.EvalError only if needed.
func wrapError(thread *Thread, posn syntax.Position, err error) error {
	switch err := err.(type) {
	case nil, *EvalError:
		return err
	}
	e := thread.errorf(posn, "%s", err.Error())
	e.cause = err
	return e
}

// ExecFile parses, resolves, and executes a Lox file in the thread's
// global environment, which may be modified during execution.
//
// The filename and src parameters are as for syntax.Parse.
//
// A syntax error is returned as a syntax.ErrorList and a static error
// as a resolve.ErrorList; in either case nothing is executed. If
// ExecFile fails during evaluation, it returns an *EvalError containing
// a backtrace.
func ExecFile(thread *Thread, filename string, src interface{}) error {
	if debug {
		fmt.Printf("ExecFile %s\n", filename)
		defer fmt.Printf("ExecFile %s done\n", filename)
	}
	f, err := syntax.Parse(filename, src)
	if err != nil {
		return err
	}
	return thread.ExecREPLChunk(f)
}

// ExecREPLChunk resolves and executes a parsed file in the thread.
// Declarations persist in the thread's globals, so that a later chunk
// may use functions and classes declared by an earlier one.
func (thread *Thread) ExecREPLChunk(f *syntax.File) error {
	locals, err := resolve.File(f)
	if err != nil {
		return err
	}
	thread.init()
	for x, depth := range locals {
		thread.depths[x] = depth
	}

	fr := thread.push(nil)
	defer thread.pop()
	fr.pos = syntax.Start(f)
	return thread.ExecBlock(f.Stmts, thread.globals)
}

// EvalExpr resolves and evaluates an expression in the thread's global
// environment.
func EvalExpr(thread *Thread, expr syntax.Expr) (Value, error) {
	locals, err := resolve.Expr(expr)
	if err != nil {
		return nil, err
	}
	thread.init()
	for x, depth := range locals {
		thread.depths[x] = depth
	}

	fr := thread.push(nil)
	defer thread.pop()
	fr.pos = syntax.Start(expr)
	prev := thread.env
	thread.env = thread.globals
	defer func() { thread.env = prev }()
	return eval(thread, expr)
}

// Eval parses, resolves, and evaluates an expression.
func Eval(thread *Thread, filename string, src interface{}) (Value, error) {
	expr, err := syntax.ParseExpr(filename, src)
	if err != nil {
		return nil, err
	}
	return EvalExpr(thread, expr)
}

// Sentinel value used for control flow. Internal use only.
var errReturn = fmt.Errorf("return")

// ExecBlock executes the statements in env, which becomes the current
// environment for their duration. It is used for blocks and function
// bodies alike.
//
// A return statement yields errReturn; the enclosing call consumes it.
func (thread *Thread) ExecBlock(stmts []syntax.Stmt, env *Environment) error {
	prev := thread.env
	thread.env = env
	defer func() { thread.env = prev }()

	for _, stmt := range stmts {
		if err := exec(thread, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (thread *Thread) print(msg string) {
	if thread.Print != nil {
		thread.Print(thread, msg)
	} else {
		fmt.Fprintln(stdout, msg)
	}
}

var stdout io.Writer = os.Stdout

func exec(thread *Thread, stmt syntax.Stmt) error {
	switch stmt := stmt.(type) {
	case *syntax.ExprStmt:
		_, err := eval(thread, stmt.X)
		return err

	case *syntax.PrintStmt:
		x, err := eval(thread, stmt.X)
		if err != nil {
			return err
		}
		thread.print(x.String())
		return nil

	case *syntax.VarStmt:
		var v Value = Nil
		if stmt.Init != nil {
			x, err := eval(thread, stmt.Init)
			if err != nil {
				return err
			}
			v = x
		}
		thread.env.Define(stmt.Name.Name, v)
		return nil

	case *syntax.BlockStmt:
		return thread.ExecBlock(stmt.Stmts, NewEnvironment(thread.env))

	case *syntax.IfStmt:
		cond, err := eval(thread, stmt.Cond)
		if err != nil {
			return err
		}
		if cond.Truth() {
			return exec(thread, stmt.Then)
		} else if stmt.Else != nil {
			return exec(thread, stmt.Else)
		}
		return nil

	case *syntax.WhileStmt:
		for {
			if err := thread.cancelled(stmt.While); err != nil {
				return err
			}
			cond, err := eval(thread, stmt.Cond)
			if err != nil {
				return err
			}
			if !cond.Truth() {
				return nil
			}
			if err := exec(thread, stmt.Body); err != nil {
				return err
			}
		}

	case *syntax.FunDecl:
		thread.env.Define(stmt.Name.Name, NewFunction(stmt, thread.env, false))
		return nil

	case *syntax.ReturnStmt:
		var result Value = Nil
		if stmt.Result != nil {
			x, err := eval(thread, stmt.Result)
			if err != nil {
				return err
			}
			result = x
		}
		thread.frame.result = result
		return errReturn

	case *syntax.ClassDecl:
		return execClass(thread, stmt)
	}

	start, _ := stmt.Span()
	log.Fatalf("%s: exec: unexpected statement %T", start, stmt)
	panic("unreachable")
}

// execClass declares a class. The environments it creates mirror the
// scopes the resolver pushed for the declaration: methods close over
// a scope holding "super" when there is a superclass, and each bound
// method adds the scope holding "this".
func execClass(thread *Thread, decl *syntax.ClassDecl) error {
	thread.env.Define(decl.Name.Name, Nil)

	var superclass *Class
	if decl.Super != nil {
		x, err := eval(thread, decl.Super)
		if err != nil {
			return err
		}
		class, ok := x.(*Class)
		if !ok {
			return thread.errorf(decl.Super.Name.NamePos, "superclass must be a class, not %s", x.Type())
		}
		superclass = class
	}

	env := thread.env
	if superclass != nil {
		env = NewEnvironment(env)
		env.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(decl.Methods))
	for _, m := range decl.Methods {
		methods[m.Name.Name] = NewFunction(m, env, m.Name.Name == "init")
	}

	class := NewClass(decl.Name.Name, superclass, methods)
	if err := thread.env.Assign(decl.Name.Name, class); err != nil {
		return wrapError(thread, decl.Name.NamePos, err)
	}
	return nil
}

// lookup returns the value of the variable named by id, referenced by x.
func lookup(thread *Thread, x syntax.Expr, id *syntax.Ident) (Value, error) {
	if depth, ok := thread.depths[x]; ok {
		return thread.env.GetAt(depth, id.Name), nil
	}
	v, err := thread.globals.Get(id.Name)
	if err != nil {
		return nil, wrapError(thread, id.NamePos, err)
	}
	return v, nil
}

func eval(thread *Thread, e syntax.Expr) (Value, error) {
	switch e := e.(type) {
	case *syntax.Literal:
		switch v := e.Value.(type) {
		case float64:
			return Float(v), nil
		case string:
			return String(v), nil
		case bool:
			return Bool(v), nil
		case nil:
			return Nil, nil
		}

	case *syntax.ParenExpr:
		return eval(thread, e.X)

	case *syntax.VarExpr:
		return lookup(thread, e, e.Name)

	case *syntax.AssignExpr:
		v, err := eval(thread, e.Value)
		if err != nil {
			return nil, err
		}
		if depth, ok := thread.depths[e]; ok {
			thread.env.AssignAt(depth, e.Name.Name, v)
		} else if err := thread.globals.Assign(e.Name.Name, v); err != nil {
			return nil, wrapError(thread, e.Name.NamePos, err)
		}
		return v, nil

	case *syntax.UnaryExpr:
		x, err := eval(thread, e.X)
		if err != nil {
			return nil, err
		}
		y, err := Unary(e.Op, x)
		if err != nil {
			return nil, thread.errorf(e.OpPos, "%s", err)
		}
		return y, nil

	case *syntax.BinaryExpr:
		x, err := eval(thread, e.X)
		if err != nil {
			return nil, err
		}
		y, err := eval(thread, e.Y)
		if err != nil {
			return nil, err
		}
		z, err := Binary(e.Op, x, y)
		if err != nil {
			return nil, thread.errorf(e.OpPos, "%s", err)
		}
		return z, nil

	case *syntax.LogicalExpr:
		x, err := eval(thread, e.X)
		if err != nil {
			return nil, err
		}
		// short-circuit: the result is an operand, not a Bool
		if e.Op == syntax.OR {
			if x.Truth() {
				return x, nil
			}
		} else if !x.Truth() {
			return x, nil
		}
		return eval(thread, e.Y)

	case *syntax.CallExpr:
		return evalCall(thread, e)

	case *syntax.GetExpr:
		x, err := eval(thread, e.X)
		if err != nil {
			return nil, err
		}
		instance, ok := x.(*Instance)
		if !ok {
			return nil, thread.errorf(e.Dot, "only instances have properties, not %s", x.Type())
		}
		v, err := instance.Attr(e.Name.Name)
		if err != nil {
			return nil, wrapError(thread, e.Name.NamePos, err)
		}
		return v, nil

	case *syntax.SetExpr:
		x, err := eval(thread, e.X)
		if err != nil {
			return nil, err
		}
		instance, ok := x.(*Instance)
		if !ok {
			return nil, thread.errorf(e.Dot, "only instances have fields, not %s", x.Type())
		}
		v, err := eval(thread, e.Value)
		if err != nil {
			return nil, err
		}
		instance.SetField(e.Name.Name, v)
		return v, nil

	case *syntax.ThisExpr:
		return thread.env.GetAt(thread.depths[e], "this"), nil

	case *syntax.SuperExpr:
		// The scope holding "this" is just inside the one holding "super".
		depth := thread.depths[e]
		superclass := thread.env.GetAt(depth, "super").(*Class)
		receiver := thread.env.GetAt(depth-1, "this").(*Instance)
		m := superclass.FindMethod(e.Method.Name)
		if m == nil {
			return nil, thread.errorf(e.Method.NamePos, "undefined property '%s'", e.Method.Name)
		}
		return m.Bind(receiver), nil
	}

	start, _ := e.Span()
	log.Fatalf("%s: unexpected expr %T", start, e)
	panic("unreachable")
}

func evalCall(thread *Thread, call *syntax.CallExpr) (Value, error) {
	fn, err := eval(thread, call.Fn)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(call.Args))
	for i, arg := range call.Args {
		v, err := eval(thread, arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	// Make the call.
	thread.frame.pos = call.Lparen
	if err := thread.cancelled(call.Lparen); err != nil {
		return nil, err
	}
	res, err := Call(thread, fn, args)
	return res, wrapError(thread, call.Lparen, err)
}

// Call calls the function fn with the specified arguments.
func Call(thread *Thread, fn Value, args []Value) (Value, error) {
	c, ok := fn.(Callable)
	if !ok {
		return nil, fmt.Errorf("can only call functions and classes, not %s", fn.Type())
	}
	if n := c.Arity(); len(args) != n {
		return nil, fmt.Errorf("%s: expected %d arguments but got %d", c.Name(), n, len(args))
	}
	if thread.depth >= MaxCallDepth {
		return nil, fmt.Errorf("stack overflow")
	}
	thread.init()

	fr := thread.push(c)
	defer thread.pop()
	if f, ok := c.(*Function); ok {
		fr.pos = f.Position()
	}
	res, err := c.CallInternal(thread, args)
	// Sanity check: nil is not a valid Lox value.
	if err == nil && res == nil {
		return nil, fmt.Errorf("internal error: nil (not Nil) returned from %s", fn)
	}
	return res, err
}

// Unary applies a unary operator (-, !) to its operand.
func Unary(op syntax.Token, x Value) (Value, error) {
	switch op {
	case syntax.MINUS:
		if x, ok := x.(Float); ok {
			return -x, nil
		}
		return nil, fmt.Errorf("operand of - must be a number, not %s", x.Type())
	case syntax.BANG:
		return !x.Truth(), nil
	}
	return nil, fmt.Errorf("unknown unary op: %s", op)
}

// Binary applies a strict binary operator (not AND or OR) to its operands.
func Binary(op syntax.Token, x, y Value) (Value, error) {
	switch op {
	case syntax.EQL:
		return Bool(Equal(x, y)), nil
	case syntax.NEQ:
		return Bool(!Equal(x, y)), nil
	case syntax.PLUS:
		switch x := x.(type) {
		case Float:
			if y, ok := y.(Float); ok {
				return x + y, nil
			}
		case String:
			if y, ok := y.(String); ok {
				return x + y, nil
			}
		}
		return nil, fmt.Errorf("operands of + must be two numbers or two strings, not %s and %s", x.Type(), y.Type())
	}

	xf, xok := x.(Float)
	yf, yok := y.(Float)
	if !xok || !yok {
		return nil, fmt.Errorf("operands of %s must be numbers, not %s and %s", op, x.Type(), y.Type())
	}
	switch op {
	case syntax.MINUS:
		return xf - yf, nil
	case syntax.STAR:
		return xf * yf, nil
	case syntax.SLASH:
		return xf / yf, nil
	case syntax.LT:
		return Bool(xf < yf), nil
	case syntax.LE:
		return Bool(xf <= yf), nil
	case syntax.GT:
		return Bool(xf > yf), nil
	case syntax.GE:
		return Bool(xf >= yf), nil
	}
	return nil, fmt.Errorf("unknown binary op: %s", op)
}
