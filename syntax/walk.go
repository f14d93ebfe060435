// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// Walk traverses a syntax tree in depth-first order.
// It starts by calling f(n); n must not be nil.
// If f returns true, Walk calls itself
// recursively for each non-nil child of n.
// Walk then calls f(nil).
func Walk(n Node, f func(Node) bool) {
	if n == nil {
		panic("nil")
	}
	if !f(n) {
		return
	}

	switch n := n.(type) {
	case *File:
		walkStmts(n.Stmts, f)

	case *BlockStmt:
		walkStmts(n.Stmts, f)

	case *ClassDecl:
		Walk(n.Name, f)
		if n.Super != nil {
			Walk(n.Super, f)
		}
		for _, m := range n.Methods {
			Walk(m, f)
		}

	case *ExprStmt:
		Walk(n.X, f)

	case *FunDecl:
		Walk(n.Name, f)
		for _, param := range n.Params {
			Walk(param, f)
		}
		walkStmts(n.Body, f)

	case *IfStmt:
		Walk(n.Cond, f)
		Walk(n.Then, f)
		if n.Else != nil {
			Walk(n.Else, f)
		}

	case *PrintStmt:
		Walk(n.X, f)

	case *ReturnStmt:
		if n.Result != nil {
			Walk(n.Result, f)
		}

	case *VarStmt:
		Walk(n.Name, f)
		if n.Init != nil {
			Walk(n.Init, f)
		}

	case *WhileStmt:
		Walk(n.Cond, f)
		Walk(n.Body, f)

	case *Ident, *Literal, *ThisExpr:
		// no-op

	case *AssignExpr:
		Walk(n.Name, f)
		Walk(n.Value, f)

	case *BinaryExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *CallExpr:
		Walk(n.Fn, f)
		for _, arg := range n.Args {
			Walk(arg, f)
		}

	case *GetExpr:
		Walk(n.X, f)
		Walk(n.Name, f)

	case *LogicalExpr:
		Walk(n.X, f)
		Walk(n.Y, f)

	case *ParenExpr:
		Walk(n.X, f)

	case *SetExpr:
		Walk(n.X, f)
		Walk(n.Name, f)
		Walk(n.Value, f)

	case *SuperExpr:
		Walk(n.Method, f)

	case *UnaryExpr:
		Walk(n.X, f)

	case *VarExpr:
		Walk(n.Name, f)

	default:
		panic(n)
	}

	f(nil)
}

func walkStmts(stmts []Stmt, f func(Node) bool) {
	for _, stmt := range stmts {
		Walk(stmt, f)
	}
}
