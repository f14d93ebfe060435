// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

// A lexical scanner for Lox.

import (
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"
	"unicode/utf8"
)

// A Token represents a Lox lexical token.
type Token int8

const (
	ILLEGAL Token = iota
	EOF

	// Tokens with values
	IDENT  // x
	NUMBER // 123, 1.5
	STRING // "foo"

	// Punctuation
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	DOT       // .
	MINUS     // -
	PLUS      // +
	SEMI      // ;
	SLASH     // /
	STAR      // *
	BANG      // !
	NEQ       // !=
	EQ        // =
	EQL       // ==
	GT        // >
	GE        // >=
	LT        // <
	LE        // <=

	// Keywords
	AND
	CLASS
	ELSE
	FALSE
	FOR
	FUN
	IF
	NIL
	OR
	PRINT
	RETURN
	SUPER
	THIS
	TRUE
	VAR
	WHILE

	maxToken
)

func (tok Token) String() string { return tokenNames[tok] }

// GoString is like String but quotes punctuation tokens.
// Use Sprintf("%#v", tok) when constructing error messages.
func (tok Token) GoString() string {
	if tok >= LPAREN && tok <= LE {
		return "'" + tokenNames[tok] + "'"
	}
	return tokenNames[tok]
}

var tokenNames = [...]string{
	ILLEGAL: "illegal token",
	EOF:     "end of file",
	IDENT:   "identifier",
	NUMBER:  "number literal",
	STRING:  "string literal",
	LPAREN:  "(",
	RPAREN:  ")",
	LBRACE:  "{",
	RBRACE:  "}",
	COMMA:   ",",
	DOT:     ".",
	MINUS:   "-",
	PLUS:    "+",
	SEMI:    ";",
	SLASH:   "/",
	STAR:    "*",
	BANG:    "!",
	NEQ:     "!=",
	EQ:      "=",
	EQL:     "==",
	GT:      ">",
	GE:      ">=",
	LT:      "<",
	LE:      "<=",
	AND:     "and",
	CLASS:   "class",
	ELSE:    "else",
	FALSE:   "false",
	FOR:     "for",
	FUN:     "fun",
	IF:      "if",
	NIL:     "nil",
	OR:      "or",
	PRINT:   "print",
	RETURN:  "return",
	SUPER:   "super",
	THIS:    "this",
	TRUE:    "true",
	VAR:     "var",
	WHILE:   "while",
}

var keywordToken = make(map[string]Token)

func init() {
	for tok := AND; tok < maxToken; tok++ {
		keywordToken[tokenNames[tok]] = tok
	}
}

// A Position describes the location of a rune of input.
type Position struct {
	file *string // filename (indirect for compactness)
	Line int32   // 1-based line number; 0 if line unknown
	Col  int32   // 1-based column (rune) number; 0 if column unknown
}

// IsValid reports whether the position is valid.
func (p Position) IsValid() bool { return p.file != nil }

// Filename returns the name of the file containing this position.
func (p Position) Filename() string {
	if p.file != nil {
		return *p.file
	}
	return "<invalid>"
}

// MakePosition returns position with the specified components.
func MakePosition(file *string, line, col int32) Position { return Position{file, line, col} }

// add returns the position at the end of s, assuming it starts at p.
func (p Position) add(s string) Position {
	if n := strings.Count(s, "\n"); n > 0 {
		p.Line += int32(n)
		s = s[strings.LastIndex(s, "\n")+1:]
		p.Col = 1
	}
	p.Col += int32(len([]rune(s)))
	return p
}

func (p Position) String() string {
	file := p.Filename()
	if p.Line > 0 {
		if p.Col > 0 {
			return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
		}
		return fmt.Sprintf("%s:%d", file, p.Line)
	}
	return file
}

func (p Position) isBefore(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// A Lexeme is a single scanned token: its kind, the source text it
// was scanned from, its literal value (float64 for NUMBER, string for
// STRING, nil otherwise) and its starting position.
type Lexeme struct {
	Token Token
	Raw   string
	Value interface{}
	Pos   Position
}

func (lx Lexeme) String() string {
	switch lx.Token {
	case IDENT, NUMBER, STRING:
		return lx.Raw
	}
	return lx.Token.String()
}

// Scan returns the lexemes of the source, terminated by an EOF lexeme.
// Malformed input does not stop the scan: each problem is recorded and
// scanning resumes after it. If any were found, the returned error is
// an ErrorList holding all of them, and the lexemes are still complete
// apart from the malformed portions.
//
// The src argument has the same meaning as for Parse.
func Scan(filename string, src interface{}) ([]Lexeme, error) {
	sc, err := newScanner(filename, src)
	if err != nil {
		return nil, err
	}
	lexemes := sc.scanAll()
	if len(sc.errors) > 0 {
		return lexemes, sc.errors
	}
	return lexemes, nil
}

// A scanner represents a single input file being parsed.
type scanner struct {
	rest   []byte    // rest of input
	token  []byte    // token being scanned
	pos    Position  // current input position
	errors ErrorList // all errors found so far
}

func newScanner(filename string, src interface{}) (*scanner, error) {
	data, err := readSource(filename, src)
	if err != nil {
		return nil, err
	}
	return &scanner{
		pos:  Position{file: &filename, Line: 1, Col: 1},
		rest: data,
	}, nil
}

func readSource(filename string, src interface{}) ([]byte, error) {
	switch src := src.(type) {
	case string:
		return []byte(src), nil
	case []byte:
		return src, nil
	case io.Reader:
		data, err := ioutil.ReadAll(src)
		if err != nil {
			err = Error{Pos: MakePosition(&filename, 1, 1), Msg: err.Error()}
			return nil, err
		}
		return data, nil
	case nil:
		return ioutil.ReadFile(filename)
	default:
		return nil, fmt.Errorf("invalid source: %T", src)
	}
}

// errorf records an error at the given position and lets scanning continue.
func (sc *scanner) errorf(pos Position, format string, args ...interface{}) {
	sc.errors = append(sc.errors, Error{pos, fmt.Sprintf(format, args...)})
}

// peekRune returns the next rune in the input without consuming it.
func (sc *scanner) peekRune() rune {
	if len(sc.rest) == 0 {
		return 0
	}
	// fast path: ASCII
	if b := sc.rest[0]; b < 0x80 {
		if b == '\r' {
			return '\n'
		}
		return rune(b)
	}
	r, _ := utf8.DecodeRune(sc.rest)
	return r
}

// peekRune2 returns the rune after the next one, without consuming anything.
func (sc *scanner) peekRune2() rune {
	if len(sc.rest) < 2 {
		return 0
	}
	return rune(sc.rest[1])
}

// readRune consumes and returns the next rune in the input.
// Newlines in Unix, DOS, or Mac format are treated as one rune, '\n'.
func (sc *scanner) readRune() rune {
	if len(sc.rest) == 0 {
		panic("internal scanner error: readRune at EOF")
	}
	var r rune
	var n int
	if b := sc.rest[0]; b < 0x80 {
		r, n = rune(b), 1
		if r == '\r' {
			if len(sc.rest) > 1 && sc.rest[1] == '\n' {
				n = 2
			}
			r = '\n'
		}
	} else {
		r, n = utf8.DecodeRune(sc.rest)
	}
	sc.rest = sc.rest[n:]
	if r == '\n' {
		sc.pos.Line++
		sc.pos.Col = 1
	} else {
		sc.pos.Col++
	}
	return r
}

func (sc *scanner) startToken() {
	sc.token = sc.rest
}

// endToken returns the text consumed since startToken.
func (sc *scanner) endToken() string {
	return string(sc.token[:len(sc.token)-len(sc.rest)])
}

func (sc *scanner) scanAll() []Lexeme {
	var lexemes []Lexeme
	for {
		lx := sc.nextToken()
		if lx.Token == ILLEGAL {
			continue
		}
		lexemes = append(lexemes, lx)
		if lx.Token == EOF {
			return lexemes
		}
	}
}

// nextToken scans the next token. Malformed input yields an ILLEGAL
// lexeme after the problem has been recorded.
func (sc *scanner) nextToken() Lexeme {
	// skip spaces and comments
	for {
		c := sc.peekRune()
		if c == ' ' || c == '\t' || c == '\n' {
			sc.readRune()
			continue
		}
		if c == '/' && sc.peekRune2() == '/' {
			for c := sc.peekRune(); c != '\n' && c != 0; c = sc.peekRune() {
				sc.readRune()
			}
			continue
		}
		break
	}

	pos := sc.pos
	sc.startToken()
	if len(sc.rest) == 0 {
		return Lexeme{Token: EOF, Pos: pos}
	}

	c := sc.peekRune()
	switch {
	case c == '"':
		return sc.scanString(pos)
	case isdigit(c):
		return sc.scanNumber(pos)
	case isIdentStart(c):
		for isIdent(sc.peekRune()) {
			sc.readRune()
		}
		raw := sc.endToken()
		if tok, ok := keywordToken[raw]; ok {
			return Lexeme{Token: tok, Raw: raw, Pos: pos}
		}
		return Lexeme{Token: IDENT, Raw: raw, Pos: pos}
	}

	sc.readRune()
	var tok Token
	switch c {
	case '(':
		tok = LPAREN
	case ')':
		tok = RPAREN
	case '{':
		tok = LBRACE
	case '}':
		tok = RBRACE
	case ',':
		tok = COMMA
	case '.':
		tok = DOT
	case '-':
		tok = MINUS
	case '+':
		tok = PLUS
	case ';':
		tok = SEMI
	case '/':
		tok = SLASH
	case '*':
		tok = STAR
	case '!':
		tok = sc.pair('=', BANG, NEQ)
	case '=':
		tok = sc.pair('=', EQ, EQL)
	case '<':
		tok = sc.pair('=', LT, LE)
	case '>':
		tok = sc.pair('=', GT, GE)
	default:
		sc.errorf(pos, "unexpected character %q", c)
		return Lexeme{Token: ILLEGAL, Raw: sc.endToken(), Pos: pos}
	}
	return Lexeme{Token: tok, Raw: sc.endToken(), Pos: pos}
}

// pair consumes next if it follows, returning two, else one.
func (sc *scanner) pair(next rune, one, two Token) Token {
	if sc.peekRune() == next {
		sc.readRune()
		return two
	}
	return one
}

func (sc *scanner) scanString(pos Position) Lexeme {
	sc.readRune() // opening quote
	for {
		if len(sc.rest) == 0 {
			sc.errorf(pos, "unterminated string")
			return Lexeme{Token: ILLEGAL, Raw: sc.endToken(), Pos: pos}
		}
		if sc.readRune() == '"' {
			break
		}
	}
	raw := sc.endToken()
	// Lox strings have no escapes; CRLF is normalized like everywhere else.
	value := strings.Replace(raw[1:len(raw)-1], "\r\n", "\n", -1)
	return Lexeme{Token: STRING, Raw: raw, Value: value, Pos: pos}
}

func (sc *scanner) scanNumber(pos Position) Lexeme {
	for isdigit(sc.peekRune()) {
		sc.readRune()
	}
	// A fraction needs at least one digit after the dot,
	// so that 1.foo scans as a property access.
	if sc.peekRune() == '.' && isdigit(sc.peekRune2()) {
		sc.readRune()
		for isdigit(sc.peekRune()) {
			sc.readRune()
		}
	}
	raw := sc.endToken()
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		sc.errorf(pos, "invalid number literal %s", raw)
		return Lexeme{Token: ILLEGAL, Raw: raw, Pos: pos}
	}
	return Lexeme{Token: NUMBER, Raw: raw, Value: f, Pos: pos}
}

func isdigit(c rune) bool { return '0' <= c && c <= '9' }

func isIdentStart(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isIdent(c rune) bool { return isdigit(c) || isIdentStart(c) }
