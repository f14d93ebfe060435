// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// This file defines a recursive-descent parser for Lox.
// The LL(1) grammar of Lox and the names of many productions
// follow the book "Crafting Interpreters".
//
// A parse error abandons the current declaration: the parser
// skips tokens up to the next statement boundary and resumes, so
// that one run can report several errors.

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// Enable this flag to print the token stream and log.Fatal on the first error.
const debug = false

// maxArgs is the limit on the number of parameters of a function
// declaration and arguments of a call.
const maxArgs = 255

// An Error describes the nature and position of a scanner or parser error.
type Error struct {
	Pos Position
	Msg string
}

func (e Error) Error() string { return e.Pos.String() + ": " + e.Msg }

// An ErrorList is a non-empty list of syntax errors.
// It implements the error interface.
type ErrorList []Error

func (e ErrorList) Error() string {
	if len(e) == 0 {
		panic("ErrorList.Error called on empty list")
	}
	return e[0].Error()
}

func (e ErrorList) Len() int           { return len(e) }
func (e ErrorList) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }
func (e ErrorList) Less(i, j int) bool { return e[i].Pos.isBefore(e[j].Pos) }

const eofMsg = "got end of file"

// Incomplete reports whether err is a syntax error caused solely by
// input ending too early, so that more input might complete it.
// The REPL uses it to decide whether to prompt for another line.
func Incomplete(err error) bool {
	list, ok := err.(ErrorList)
	if !ok || len(list) == 0 {
		return false
	}
	for _, e := range list {
		if !strings.HasPrefix(e.Msg, eofMsg) && e.Msg != "unterminated string" {
			return false
		}
	}
	return true
}

// Parse parses the input data and returns the corresponding parse tree.
//
// If src != nil, Parse parses the source from src and the filename
// is only used when recording position information.
// The type of the argument for the src parameter must be string,
// []byte, or io.Reader.
// If src == nil, Parse parses the file specified by filename.
//
// On failure the error is an ErrorList holding every scanner and
// parser error, in source order.
func Parse(filename string, src interface{}) (f *File, err error) {
	in, err := Scan(filename, src)
	var errors ErrorList
	if err != nil {
		list, ok := err.(ErrorList)
		if !ok {
			return nil, err
		}
		errors = list
	}
	p := parser{in: in, errors: errors}
	f = p.parseFile(filename)
	if len(p.errors) > 0 {
		sort.Stable(p.errors)
		return nil, p.errors
	}
	return f, nil
}

// ParseExpr parses a Lox expression.
// See Parse for explanation of parameters.
func ParseExpr(filename string, src interface{}) (expr Expr, err error) {
	in, err := Scan(filename, src)
	if err != nil {
		return nil, err
	}
	p := parser{in: in}
	func() {
		defer p.recover()
		expr = p.parseExpr()
		if p.tok().Token != EOF {
			p.errorf(p.tok(), "got %#v after expression, want end of file", p.tok().Token)
		}
	}()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return expr, nil
}

type parser struct {
	in     []Lexeme // always ends with EOF
	i      int      // index of current lexeme
	errors ErrorList
}

// bail is the panic value used to abandon the current declaration.
type bail struct{}

// recover converts a bail panic into a normal return.
// It must be called directly by a deferred statement.
func (p *parser) recover() {
	switch e := recover().(type) {
	case nil, bail:
		// ok
	default:
		panic(e)
	}
}

func (p *parser) tok() Lexeme { return p.in[p.i] }

// nextToken advances the scanner and returns the position of the
// previous token.
func (p *parser) nextToken() Position {
	lx := p.in[p.i]
	if debug {
		log.Printf("nextToken: %-20s%+v\n", lx.Token, lx.Pos)
	}
	if lx.Token != EOF {
		p.i++
	}
	return lx.Pos
}

// report records an error at lx without abandoning the declaration.
func (p *parser) report(lx Lexeme, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if lx.Token == EOF && !strings.HasPrefix(msg, eofMsg) {
		msg = eofMsg + ": " + msg
	}
	if debug {
		log.Fatalf("%s: %s", lx.Pos, msg)
	}
	p.errors = append(p.errors, Error{lx.Pos, msg})
}

// errorf records an error at lx and abandons the current declaration.
func (p *parser) errorf(lx Lexeme, format string, args ...interface{}) {
	p.report(lx, format, args...)
	panic(bail{})
}

// consume consumes the next token, which must be t.
func (p *parser) consume(t Token, context string) Lexeme {
	lx := p.tok()
	if lx.Token != t {
		p.errorf(lx, "got %#v, want %#v %s", lx.Token, t, context)
	}
	p.nextToken()
	return lx
}

// match consumes the next token if it is one of ts.
func (p *parser) match(ts ...Token) bool {
	for _, t := range ts {
		if p.tok().Token == t {
			p.nextToken()
			return true
		}
	}
	return false
}

func (p *parser) prev() Lexeme { return p.in[p.i-1] }

func (p *parser) parseIdent(context string) *Ident {
	lx := p.consume(IDENT, context)
	return &Ident{NamePos: lx.Pos, Name: lx.Raw}
}

// synchronize skips tokens until a likely statement boundary.
func (p *parser) synchronize() {
	for p.tok().Token != EOF {
		if p.tok().Token == SEMI {
			p.nextToken()
			return
		}
		switch p.tok().Token {
		case CLASS, FUN, VAR, FOR, IF, WHILE, PRINT, RETURN:
			return
		}
		p.nextToken()
	}
}

// file = declaration* EOF
func (p *parser) parseFile(filename string) *File {
	var stmts []Stmt
	for p.tok().Token != EOF {
		if stmt := p.parseDeclSync(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return &File{Path: filename, Stmts: stmts}
}

// parseDeclSync parses a declaration, synchronizing after an error.
// It returns nil if the declaration was abandoned.
func (p *parser) parseDeclSync() (stmt Stmt) {
	start := p.i
	defer func() {
		switch e := recover().(type) {
		case nil:
		case bail:
			stmt = nil
			if p.i == start {
				p.nextToken() // ensure progress
			}
			p.synchronize()
		default:
			panic(e)
		}
	}()
	return p.parseDecl()
}

// declaration = classDecl | funDecl | varDecl | statement
func (p *parser) parseDecl() Stmt {
	switch p.tok().Token {
	case CLASS:
		return p.parseClassDecl()
	case FUN:
		pos := p.nextToken()
		return p.parseFunction(pos, "function")
	case VAR:
		return p.parseVarStmt()
	}
	return p.parseStmt()
}

// classDecl = "class" IDENT ( "<" IDENT )? "{" function* "}"
func (p *parser) parseClassDecl() Stmt {
	class := p.nextToken()
	name := p.parseIdent("after 'class'")
	var super *VarExpr
	if p.match(LT) {
		super = &VarExpr{Name: p.parseIdent("for superclass name")}
	}
	p.consume(LBRACE, "before class body")
	var methods []*FunDecl
	for p.tok().Token != RBRACE && p.tok().Token != EOF {
		methods = append(methods, p.parseFunction(p.tok().Pos, "method"))
	}
	rbrace := p.consume(RBRACE, "after class body").Pos
	return &ClassDecl{Class: class, Name: name, Super: super, Methods: methods, Rbrace: rbrace}
}

// function = IDENT "(" parameters? ")" block
func (p *parser) parseFunction(pos Position, kind string) *FunDecl {
	name := p.parseIdent("for " + kind + " name")
	p.consume(LPAREN, "after "+kind+" name")
	var params []*Ident
	if p.tok().Token != RPAREN {
		for {
			if len(params) >= maxArgs {
				p.report(p.tok(), "can't have more than %d parameters", maxArgs)
			}
			params = append(params, p.parseIdent("for parameter name"))
			if !p.match(COMMA) {
				break
			}
		}
	}
	p.consume(RPAREN, "after parameters")
	p.consume(LBRACE, "before "+kind+" body")
	body, rbrace := p.parseBlockBody()
	return &FunDecl{Fun: pos, Name: name, Params: params, Body: body, Rbrace: rbrace}
}

// varDecl = "var" IDENT ( "=" expression )? ";"
func (p *parser) parseVarStmt() Stmt {
	pos := p.nextToken()
	name := p.parseIdent("for variable name")
	var init Expr
	if p.match(EQ) {
		init = p.parseExpr()
	}
	semi := p.consume(SEMI, "after variable declaration").Pos
	return &VarStmt{Var: pos, Name: name, Init: init, Semi: semi}
}

// statement = exprStmt | forStmt | ifStmt | printStmt | returnStmt | whileStmt | block
func (p *parser) parseStmt() Stmt {
	switch p.tok().Token {
	case FOR:
		return p.parseForStmt()
	case IF:
		pos := p.nextToken()
		p.consume(LPAREN, "after 'if'")
		cond := p.parseExpr()
		p.consume(RPAREN, "after if condition")
		then := p.parseStmt()
		var els Stmt
		if p.match(ELSE) {
			els = p.parseStmt()
		}
		return &IfStmt{If: pos, Cond: cond, Then: then, Else: els}
	case PRINT:
		pos := p.nextToken()
		x := p.parseExpr()
		semi := p.consume(SEMI, "after value").Pos
		return &PrintStmt{Print: pos, X: x, Semi: semi}
	case RETURN:
		pos := p.nextToken()
		var result Expr
		if p.tok().Token != SEMI {
			result = p.parseExpr()
		}
		semi := p.consume(SEMI, "after return value").Pos
		return &ReturnStmt{Return: pos, Result: result, Semi: semi}
	case WHILE:
		pos := p.nextToken()
		p.consume(LPAREN, "after 'while'")
		cond := p.parseExpr()
		p.consume(RPAREN, "after condition")
		body := p.parseStmt()
		return &WhileStmt{While: pos, Cond: cond, Body: body}
	case LBRACE:
		lbrace := p.nextToken()
		stmts, rbrace := p.parseBlockBody()
		return &BlockStmt{Lbrace: lbrace, Stmts: stmts, Rbrace: rbrace}
	}
	x := p.parseExpr()
	semi := p.consume(SEMI, "after expression").Pos
	return &ExprStmt{X: x, Semi: semi}
}

// parseBlockBody parses declarations up to and including the closing
// brace. The opening brace has already been consumed.
//
// An error inside the block synchronizes within it, so that the
// block's remaining declarations are still parsed.
func (p *parser) parseBlockBody() ([]Stmt, Position) {
	var stmts []Stmt
	for p.tok().Token != RBRACE && p.tok().Token != EOF {
		if stmt := p.parseDeclSync(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	rbrace := p.consume(RBRACE, "after block").Pos
	return stmts, rbrace
}

// forStmt = "for" "(" ( varDecl | exprStmt | ";" ) expression? ";" expression? ")" statement
//
// The loop is desugared:
//
//	{ init; while (cond) { body; incr; } }
//
// Each block introduces a scope, exactly as if the user had written it.
func (p *parser) parseForStmt() Stmt {
	pos := p.nextToken()
	p.consume(LPAREN, "after 'for'")

	var init Stmt
	switch p.tok().Token {
	case SEMI:
		p.nextToken()
	case VAR:
		init = p.parseVarStmt()
	default:
		x := p.parseExpr()
		semi := p.consume(SEMI, "after loop initializer").Pos
		init = &ExprStmt{X: x, Semi: semi}
	}

	var cond Expr
	if p.tok().Token != SEMI {
		cond = p.parseExpr()
	}
	semi := p.consume(SEMI, "after loop condition")

	var incr Expr
	if p.tok().Token != RPAREN {
		incr = p.parseExpr()
	}
	p.consume(RPAREN, "after for clauses")

	body := p.parseStmt()
	end := End(body)

	if incr != nil {
		body = &BlockStmt{
			Lbrace: Start(body),
			Stmts:  []Stmt{body, &ExprStmt{X: incr, Semi: End(incr)}},
			Rbrace: end,
		}
	}
	if cond == nil {
		cond = &Literal{Token: TRUE, TokenPos: semi.Pos, Raw: "", Value: true}
	}
	var loop Stmt = &WhileStmt{While: pos, Cond: cond, Body: body}
	if init != nil {
		loop = &BlockStmt{Lbrace: pos, Stmts: []Stmt{init, loop}, Rbrace: end}
	}
	return loop
}

func (p *parser) parseExpr() Expr {
	return p.parseAssignment()
}

// assignment = ( call "." )? IDENT "=" assignment | logic_or
func (p *parser) parseAssignment() Expr {
	x := p.parseLogical(OR)
	if p.tok().Token == EQ {
		eq := p.tok()
		p.nextToken()
		value := p.parseAssignment()
		switch target := x.(type) {
		case *VarExpr:
			return &AssignExpr{Name: target.Name, EqPos: eq.Pos, Value: value}
		case *GetExpr:
			return &SetExpr{X: target.X, Dot: target.Dot, Name: target.Name, Value: value}
		}
		// Report without synchronizing: the parser is not confused.
		p.report(eq, "invalid assignment target")
	}
	return x
}

// logic_or  = logic_and ( "or" logic_and )*
// logic_and = equality ( "and" equality )*
func (p *parser) parseLogical(op Token) Expr {
	operand := func() Expr {
		if op == OR {
			return p.parseLogical(AND)
		}
		return p.parseBinary(0)
	}
	x := operand()
	for p.tok().Token == op {
		pos := p.nextToken()
		y := operand()
		x = &LogicalExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

// precedence lists the binary operators from loosest to tightest.
var precedence = [][]Token{
	{EQL, NEQ},
	{GT, GE, LT, LE},
	{MINUS, PLUS},
	{SLASH, STAR},
}

// parseBinary parses a left-associative binary expression
// whose operators are at level prec or tighter.
func (p *parser) parseBinary(prec int) Expr {
	if prec == len(precedence) {
		return p.parseUnary()
	}
	x := p.parseBinary(prec + 1)
	for {
		op := p.tok().Token
		if !hasToken(precedence[prec], op) {
			return x
		}
		pos := p.nextToken()
		y := p.parseBinary(prec + 1)
		x = &BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
}

func hasToken(ts []Token, t Token) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

// unary = ( "!" | "-" ) unary | call
func (p *parser) parseUnary() Expr {
	if op := p.tok().Token; op == BANG || op == MINUS {
		pos := p.nextToken()
		x := p.parseUnary()
		return &UnaryExpr{OpPos: pos, Op: op, X: x}
	}
	return p.parseCall()
}

// call = primary ( "(" arguments? ")" | "." IDENT )*
func (p *parser) parseCall() Expr {
	x := p.parsePrimary()
	for {
		switch p.tok().Token {
		case LPAREN:
			lparen := p.nextToken()
			var args []Expr
			if p.tok().Token != RPAREN {
				for {
					if len(args) >= maxArgs {
						p.report(p.tok(), "can't have more than %d arguments", maxArgs)
					}
					args = append(args, p.parseExpr())
					if !p.match(COMMA) {
						break
					}
				}
			}
			rparen := p.consume(RPAREN, "after arguments").Pos
			x = &CallExpr{Fn: x, Lparen: lparen, Args: args, Rparen: rparen}
		case DOT:
			dot := p.nextToken()
			name := p.parseIdent("for property name after '.'")
			x = &GetExpr{X: x, Dot: dot, Name: name}
		default:
			return x
		}
	}
}

// primary = "true" | "false" | "nil" | "this" | NUMBER | STRING | IDENT
//         | "(" expression ")" | "super" "." IDENT
func (p *parser) parsePrimary() Expr {
	lx := p.tok()
	switch lx.Token {
	case TRUE, FALSE, NIL, NUMBER, STRING:
		p.nextToken()
		value := lx.Value
		switch lx.Token {
		case TRUE:
			value = true
		case FALSE:
			value = false
		}
		return &Literal{Token: lx.Token, TokenPos: lx.Pos, Raw: lx.Raw, Value: value}
	case THIS:
		p.nextToken()
		return &ThisExpr{This: lx.Pos}
	case SUPER:
		p.nextToken()
		dot := p.consume(DOT, "after 'super'").Pos
		method := p.parseIdent("for superclass method name")
		return &SuperExpr{Super: lx.Pos, Dot: dot, Method: method}
	case IDENT:
		p.nextToken()
		return &VarExpr{Name: &Ident{NamePos: lx.Pos, Name: lx.Raw}}
	case LPAREN:
		p.nextToken()
		x := p.parseExpr()
		rparen := p.consume(RPAREN, "after expression").Pos
		return &ParenExpr{Lparen: lx.Pos, X: x, Rparen: rparen}
	}
	p.errorf(lx, "got %#v, want expression", lx.Token)
	panic("unreachable")
}
