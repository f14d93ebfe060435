// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax_test

import (
	"bytes"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"go.lox.dev/internal/chunkedfile"
	"go.lox.dev/loxtest"
	"go.lox.dev/syntax"
)

func TestExprParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`1 + 2 * 3`,
			`(BinaryExpr X=1 Op=+ Y=(BinaryExpr X=2 Op=* Y=3))`},
		{`1 - 2 - 3`,
			`(BinaryExpr X=(BinaryExpr X=1 Op=- Y=2) Op=- Y=3)`},
		{`1 / 2 * 3`,
			`(BinaryExpr X=(BinaryExpr X=1 Op=/ Y=2) Op=* Y=3)`},
		{`-x`,
			`(UnaryExpr Op=- X=x)`},
		{`!!true`,
			`(UnaryExpr Op=! X=(UnaryExpr Op=! X=true))`},
		{`-a.b`,
			`(UnaryExpr Op=- X=(GetExpr X=a Name=b))`},
		{`a or b and c`,
			`(LogicalExpr X=a Op=or Y=(LogicalExpr X=b Op=and Y=c))`},
		{`a and b or c`,
			`(LogicalExpr X=(LogicalExpr X=a Op=and Y=b) Op=or Y=c)`},
		{`a == b < c + 1`,
			`(BinaryExpr X=a Op=== Y=(BinaryExpr X=b Op=< Y=(BinaryExpr X=c Op=+ Y=1)))`},
		{`a != b >= c`,
			`(BinaryExpr X=a Op=!= Y=(BinaryExpr X=b Op=>= Y=c))`},
		{`f(1, "x")(g)`,
			`(CallExpr Fn=(CallExpr Fn=f Args=(1 "x")) Args=(g))`},
		{`f()`,
			`(CallExpr Fn=f)`},
		{`a.b.c`,
			`(GetExpr X=(GetExpr X=a Name=b) Name=c)`},
		{`a.b().c`,
			`(GetExpr X=(CallExpr Fn=(GetExpr X=a Name=b)) Name=c)`},
		{`a = b = c`,
			`(AssignExpr Name=a Value=(AssignExpr Name=b Value=c))`},
		{`a.b = 1`,
			`(SetExpr X=a Name=b Value=1)`},
		{`a.b.c = d or e`,
			`(SetExpr X=(GetExpr X=a Name=b) Name=c Value=(LogicalExpr X=d Op=or Y=e))`},
		{`(1 + 2) * 3`,
			`(BinaryExpr X=(ParenExpr X=(BinaryExpr X=1 Op=+ Y=2)) Op=* Y=3)`},
		{`super.m(this)`,
			`(CallExpr Fn=(SuperExpr Method=m) Args=(this))`},
		{`nil`,
			`nil`},
		{`false`,
			`false`},
		{`1.5`,
			`1.5`},
		{`"a b"`,
			`"a b"`},
	} {
		e, err := syntax.ParseExpr("foo.lox", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		if got := treeString(e); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

func TestStmtParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`print 1;`,
			`(PrintStmt X=1)`},
		{`var x;`,
			`(VarStmt Name=x)`},
		{`var x = 1;`,
			`(VarStmt Name=x Init=1)`},
		{`x;`,
			`(ExprStmt X=x)`},
		{`{ var a; print a; }`,
			`(BlockStmt Stmts=((VarStmt Name=a) (PrintStmt X=a)))`},
		{`{}`,
			`(BlockStmt)`},
		{`if (a) print 1; else print 2;`,
			`(IfStmt Cond=a Then=(PrintStmt X=1) Else=(PrintStmt X=2))`},
		{`if (a) if (b) print 1; else print 2;`,
			`(IfStmt Cond=a Then=(IfStmt Cond=b Then=(PrintStmt X=1) Else=(PrintStmt X=2)))`},
		{`while (a) a = a - 1;`,
			`(WhileStmt Cond=a Body=(ExprStmt X=(AssignExpr Name=a Value=(BinaryExpr X=a Op=- Y=1))))`},
		{`fun f(a, b) { return a; }`,
			`(FunDecl Name=f Params=(a b) Body=((ReturnStmt Result=a)))`},
		{`fun f() { return; }`,
			`(FunDecl Name=f Body=((ReturnStmt)))`},
		{`class A {}`,
			`(ClassDecl Name=A)`},
		{`class A < B { init(x) { this.x = x; } m() {} }`,
			`(ClassDecl Name=A Super=B Methods=((FunDecl Name=init Params=(x) Body=((ExprStmt X=(SetExpr X=this Name=x Value=x)))) (FunDecl Name=m)))`},
		// for loops are desugared into while loops.
		{`for (var i = 0; i < 3; i = i + 1) print i;`,
			`(BlockStmt Stmts=((VarStmt Name=i Init=0) (WhileStmt Cond=(BinaryExpr X=i Op=< Y=3) Body=(BlockStmt Stmts=((PrintStmt X=i) (ExprStmt X=(AssignExpr Name=i Value=(BinaryExpr X=i Op=+ Y=1))))))))`},
		{`for (;;) print 1;`,
			`(WhileStmt Cond=true Body=(PrintStmt X=1))`},
		{`for (x = 0; x;) {}`,
			`(BlockStmt Stmts=((ExprStmt X=(AssignExpr Name=x Value=0)) (WhileStmt Cond=x Body=(BlockStmt))))`},
	} {
		f, err := syntax.Parse("foo.lox", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		if len(f.Stmts) != 1 {
			t.Errorf("parse `%s` yielded %d statements, want 1", test.input, len(f.Stmts))
			continue
		}
		if got := treeString(f.Stmts[0]); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

// TestFileParseTrees tests sequences of declarations.
func TestFileParseTrees(t *testing.T) {
	for _, test := range []struct {
		input, want string
	}{
		{`var a = 1; print a;`,
			`(VarStmt Name=a Init=1)
(PrintStmt X=a)`},
		{`
// comment
fun f() {}

// another
class C {}
`,
			`(FunDecl Name=f)
(ClassDecl Name=C)`},
		{``, ``},
	} {
		f, err := syntax.Parse("foo.lox", test.input)
		if err != nil {
			t.Errorf("parse `%s` failed: %v", test.input, stripPos(err))
			continue
		}
		var buf bytes.Buffer
		for i, stmt := range f.Stmts {
			if i > 0 {
				buf.WriteString("\n")
			}
			writeTree(&buf, reflect.ValueOf(stmt))
		}
		if got := buf.String(); test.want != got {
			t.Errorf("parse `%s` = %s, want %s", test.input, got, test.want)
		}
	}
}

// TestIncomplete tests which inputs are reported as incomplete,
// so that a read-eval-print loop would prompt for more.
func TestIncomplete(t *testing.T) {
	for _, test := range []struct {
		input      string
		incomplete bool
	}{
		{`print 1;`, false},
		{`print 1`, true},
		{`{`, true},
		{`fun f() {`, true},
		{"fun f() {\n  print 1;", true},
		{`class A {`, true},
		{`if (x)`, true},
		{`var s = "abc`, true},
		{`print 1 +`, true},
		{`print ;`, false},
		{`}`, false},
		{"print 1 print 2;", false},
		{"{ print ; ", false}, // one complete error is enough
	} {
		_, err := syntax.Parse("foo.lox", test.input)
		if got := syntax.Incomplete(err); got != test.incomplete {
			t.Errorf("Incomplete(parse `%s`) = %t, want %t (err=%v)", test.input, got, test.incomplete, err)
		}
	}
}

// Several errors are reported at once, in source order.
func TestParseErrorRecovery(t *testing.T) {
	const src = `var a = ;
var b = 2;
print b +;
fun f( { }
print b;
`
	_, err := syntax.Parse("foo.lox", src)
	list, ok := err.(syntax.ErrorList)
	if !ok {
		t.Fatalf("got %v, want ErrorList", err)
	}
	var got []string
	for _, e := range list {
		got = append(got, fmt.Sprintf("%d: %s", e.Pos.Line, e.Msg))
	}
	want := `1: got ';', want expression
3: got ';', want expression
4: got '{', want identifier for parameter name`
	if strings.Join(got, "\n") != want {
		t.Errorf("errors =\n%s\nwant\n%s", strings.Join(got, "\n"), want)
	}
}

func TestTooManyArguments(t *testing.T) {
	names := make([]string, 256)
	for i := range names {
		names[i] = fmt.Sprintf("a%d", i)
	}
	list := strings.Join(names, ", ")
	for _, test := range []struct {
		input, want string
	}{
		{"f(" + list + ");", "can't have more than 255 arguments"},
		{"fun f(" + list + ") {}", "can't have more than 255 parameters"},
		{"f(" + strings.Join(names[:255], ", ") + ");", ""},
	} {
		_, err := syntax.Parse("foo.lox", test.input)
		got := ""
		if err != nil {
			got = stripPos(err)
		}
		if got != test.want {
			t.Errorf("parse error = %q, want %q", got, test.want)
		}
	}
}

func TestSpans(t *testing.T) {
	f, err := syntax.Parse("foo.lox", "var x = 1;\nfun f(a) {\n  return a + 1;\n}\n")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, stmt := range f.Stmts {
		got = append(got, fmt.Sprint(stmt.Span()))
	}
	want := "foo.lox:1:1 foo.lox:1:11; foo.lox:2:1 foo.lox:4:2"
	if strings.Join(got, "; ") != want {
		t.Errorf("spans = %s, want %s", strings.Join(got, "; "), want)
	}
}

func stripPos(err error) string {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		s = s[i+len(": "):] // strip file:line:col
	}
	return s
}

// treeString prints a syntax node as a parenthesized tree.
// Identifiers and variable references are printed as foo and
// Literals as "foo", 42 or true. Structs are printed as
// (type name=value ...). Only non-empty fields are shown.
func treeString(n syntax.Node) string {
	var buf bytes.Buffer
	writeTree(&buf, reflect.ValueOf(n))
	return buf.String()
}

func writeTree(out *bytes.Buffer, x reflect.Value) {
	switch x.Kind() {
	case reflect.String, reflect.Int, reflect.Bool:
		fmt.Fprintf(out, "%v", x.Interface())
	case reflect.Ptr, reflect.Interface:
		if elem := x.Elem(); elem.Kind() == 0 {
			out.WriteString("nil")
		} else {
			writeTree(out, elem)
		}
	case reflect.Struct:
		switch v := x.Interface().(type) {
		case syntax.Literal:
			switch v.Token {
			case syntax.STRING:
				fmt.Fprintf(out, "%q", v.Value)
			case syntax.NUMBER:
				fmt.Fprintf(out, "%g", v.Value)
			default:
				out.WriteString(v.Token.String())
			}
			return
		case syntax.Ident:
			out.WriteString(v.Name)
			return
		case syntax.VarExpr:
			out.WriteString(v.Name.Name)
			return
		case syntax.ThisExpr:
			out.WriteString("this")
			return
		}
		fmt.Fprintf(out, "(%s", strings.TrimPrefix(x.Type().String(), "syntax."))
		for i, n := 0, x.NumField(); i < n; i++ {
			f := x.Field(i)
			if f.Type() == reflect.TypeOf(syntax.Position{}) {
				continue // skip positions
			}
			name := x.Type().Field(i).Name
			if f.Type() == reflect.TypeOf(syntax.Token(0)) {
				fmt.Fprintf(out, " %s=%s", name, f.Interface())
				continue
			}

			switch f.Kind() {
			case reflect.Slice:
				if n := f.Len(); n > 0 {
					fmt.Fprintf(out, " %s=(", name)
					for i := 0; i < n; i++ {
						if i > 0 {
							out.WriteByte(' ')
						}
						writeTree(out, f.Index(i))
					}
					out.WriteByte(')')
				}
				continue
			case reflect.Ptr, reflect.Interface:
				if f.IsNil() {
					continue
				}
			}
			fmt.Fprintf(out, " %s=", name)
			writeTree(out, f)
		}
		fmt.Fprintf(out, ")")
	default:
		fmt.Fprintf(out, "%T", x.Interface())
	}
}

func TestParseErrors(t *testing.T) {
	filename := loxtest.DataFile("syntax", "testdata/errors.lox")
	for _, chunk := range chunkedfile.Read(filename, t) {
		_, err := syntax.Parse(filename, chunk.Source)
		switch err := err.(type) {
		case nil:
			// ok
		case syntax.ErrorList:
			for _, e := range err {
				chunk.GotError(int(e.Pos.Line), e.Msg)
			}
		default:
			t.Error(err)
		}
		chunk.Done()
	}
}

func BenchmarkParse(b *testing.B) {
	filename := loxtest.DataFile("syntax", "testdata/scan.lox")
	b.StopTimer()
	data, err := os.ReadFile(filename)
	if err != nil {
		b.Fatal(err)
	}
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		_, err := syntax.Parse(filename, data)
		if err != nil {
			b.Fatal(err)
		}
	}
}
