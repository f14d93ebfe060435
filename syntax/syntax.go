// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides a Lox scanner, parser and abstract syntax tree.
package syntax

// A Node is a node in a Lox syntax tree.
type Node interface {
	// Span returns the start and end position of the node.
	Span() (start, end Position)
}

// Start returns the start position of the node.
func Start(n Node) Position {
	start, _ := n.Span()
	return start
}

// End returns the end position of the node.
func End(n Node) Position {
	_, end := n.Span()
	return end
}

// A File represents a Lox source file or REPL chunk.
type File struct {
	Path  string
	Stmts []Stmt
}

func (x *File) Span() (start, end Position) {
	if len(x.Stmts) == 0 {
		return
	}
	start, _ = x.Stmts[0].Span()
	_, end = x.Stmts[len(x.Stmts)-1].Span()
	return start, end
}

// A Stmt is a Lox statement.
type Stmt interface {
	Node
	stmt()
}

func (*BlockStmt) stmt()  {}
func (*ClassDecl) stmt()  {}
func (*ExprStmt) stmt()   {}
func (*FunDecl) stmt()    {}
func (*IfStmt) stmt()     {}
func (*PrintStmt) stmt()  {}
func (*ReturnStmt) stmt() {}
func (*VarStmt) stmt()    {}
func (*WhileStmt) stmt()  {}

// An Ident is a name appearing in a declaration or reference.
// It is not itself an expression; see VarExpr.
type Ident struct {
	NamePos Position
	Name    string
}

func (x *Ident) Span() (start, end Position) {
	return x.NamePos, x.NamePos.add(x.Name)
}

// A BlockStmt is a braced statement list that introduces a scope.
type BlockStmt struct {
	Lbrace Position
	Stmts  []Stmt
	Rbrace Position
}

func (x *BlockStmt) Span() (start, end Position) {
	return x.Lbrace, x.Rbrace.add("}")
}

// A ClassDecl declares a class: class Name < Super { Methods }.
type ClassDecl struct {
	Class   Position
	Name    *Ident
	Super   *VarExpr // may be nil
	Methods []*FunDecl
	Rbrace  Position
}

func (x *ClassDecl) Span() (start, end Position) {
	return x.Class, x.Rbrace.add("}")
}

// An ExprStmt is an expression evaluated for side effects.
type ExprStmt struct {
	X    Expr
	Semi Position
}

func (x *ExprStmt) Span() (start, end Position) {
	start, _ = x.X.Span()
	return start, x.Semi.add(";")
}

// A FunDecl declares a function, or a method within a ClassDecl.
type FunDecl struct {
	Fun    Position // position of FUN token; for methods, of the name
	Name   *Ident
	Params []*Ident
	Body   []Stmt
	Rbrace Position
}

func (x *FunDecl) Span() (start, end Position) {
	return x.Fun, x.Rbrace.add("}")
}

// An IfStmt is a conditional: if (Cond) Then else Else.
type IfStmt struct {
	If   Position
	Cond Expr
	Then Stmt
	Else Stmt // may be nil
}

func (x *IfStmt) Span() (start, end Position) {
	body := x.Else
	if body == nil {
		body = x.Then
	}
	_, end = body.Span()
	return x.If, end
}

// A PrintStmt prints the value of an expression.
type PrintStmt struct {
	Print Position
	X     Expr
	Semi  Position
}

func (x *PrintStmt) Span() (start, end Position) {
	return x.Print, x.Semi.add(";")
}

// A ReturnStmt returns from a function.
type ReturnStmt struct {
	Return Position
	Result Expr // may be nil
	Semi   Position
}

func (x *ReturnStmt) Span() (start, end Position) {
	return x.Return, x.Semi.add(";")
}

// A VarStmt declares a variable: var Name = Init.
type VarStmt struct {
	Var  Position
	Name *Ident
	Init Expr // may be nil
	Semi Position
}

func (x *VarStmt) Span() (start, end Position) {
	return x.Var, x.Semi.add(";")
}

// A WhileStmt is a loop: while (Cond) Body.
// The parser desugars for loops into while loops.
type WhileStmt struct {
	While Position
	Cond  Expr
	Body  Stmt
}

func (x *WhileStmt) Span() (start, end Position) {
	_, end = x.Body.Span()
	return x.While, end
}

// An Expr is a Lox expression.
type Expr interface {
	Node
	expr()
}

func (*AssignExpr) expr()  {}
func (*BinaryExpr) expr()  {}
func (*CallExpr) expr()    {}
func (*GetExpr) expr()     {}
func (*Literal) expr()     {}
func (*LogicalExpr) expr() {}
func (*ParenExpr) expr()   {}
func (*SetExpr) expr()     {}
func (*SuperExpr) expr()   {}
func (*ThisExpr) expr()    {}
func (*UnaryExpr) expr()   {}
func (*VarExpr) expr()     {}

// An AssignExpr assigns to a variable: Name = Value.
type AssignExpr struct {
	Name  *Ident
	EqPos Position
	Value Expr
}

func (x *AssignExpr) Span() (start, end Position) {
	_, end = x.Value.Span()
	return x.Name.NamePos, end
}

// A BinaryExpr represents an arithmetic, comparison or equality
// expression: X Op Y.
type BinaryExpr struct {
	X     Expr
	OpPos Position
	Op    Token
	Y     Expr
}

func (x *BinaryExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Y.Span()
	return start, end
}

// A CallExpr represents a function call expression: Fn(Args).
type CallExpr struct {
	Fn     Expr
	Lparen Position
	Args   []Expr
	Rparen Position
}

func (x *CallExpr) Span() (start, end Position) {
	start, _ = x.Fn.Span()
	return start, x.Rparen.add(")")
}

// A GetExpr represents a property access: X.Name.
type GetExpr struct {
	X    Expr
	Dot  Position
	Name *Ident
}

func (x *GetExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Name.Span()
	return
}

// A Literal represents a number, string, boolean or nil literal.
type Literal struct {
	Token    Token // = NUMBER | STRING | TRUE | FALSE | NIL
	TokenPos Position
	Raw      string      // uninterpreted text
	Value    interface{} // = float64 | string | bool | nil
}

func (x *Literal) Span() (start, end Position) {
	return x.TokenPos, x.TokenPos.add(x.Raw)
}

// A LogicalExpr represents a short-circuit operation: X and Y, X or Y.
type LogicalExpr struct {
	X     Expr
	OpPos Position
	Op    Token // = AND | OR
	Y     Expr
}

func (x *LogicalExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Y.Span()
	return start, end
}

// A ParenExpr represents a parenthesized expression: (X).
type ParenExpr struct {
	Lparen Position
	X      Expr
	Rparen Position
}

func (x *ParenExpr) Span() (start, end Position) {
	return x.Lparen, x.Rparen.add(")")
}

// A SetExpr represents a property assignment: X.Name = Value.
type SetExpr struct {
	X     Expr
	Dot   Position
	Name  *Ident
	Value Expr
}

func (x *SetExpr) Span() (start, end Position) {
	start, _ = x.X.Span()
	_, end = x.Value.Span()
	return start, end
}

// A SuperExpr represents a superclass method access: super.Method.
type SuperExpr struct {
	Super  Position
	Dot    Position
	Method *Ident
}

func (x *SuperExpr) Span() (start, end Position) {
	_, end = x.Method.Span()
	return x.Super, end
}

// A ThisExpr represents the receiver of the enclosing method.
type ThisExpr struct {
	This Position
}

func (x *ThisExpr) Span() (start, end Position) {
	return x.This, x.This.add("this")
}

// A UnaryExpr represents a unary expression: Op X.
type UnaryExpr struct {
	OpPos Position
	Op    Token // = MINUS | BANG
	X     Expr
}

func (x *UnaryExpr) Span() (start, end Position) {
	_, end = x.X.Span()
	return x.OpPos, end
}

// A VarExpr is a reference to a variable.
type VarExpr struct {
	Name *Ident
}

func (x *VarExpr) Span() (start, end Position) {
	return x.Name.Span()
}
