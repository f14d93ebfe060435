package syntax_test

import (
	"bytes"
	"fmt"
	"log"
	"reflect"
	"strings"
	"testing"

	"go.lox.dev/syntax"
)

func TestWalk(t *testing.T) {
	const src = `
fun f(a) {
  if (a) print a; else return -a;
}
class C < B {
  m() { this.x = super.m; }
}
var v;
while (v) { v = f(1) and "s"; }
`
	f, err := syntax.Parse("hello.lox", src)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	var depth int
	syntax.Walk(f, func(n syntax.Node) bool {
		if n == nil {
			depth--
			return true
		}
		fmt.Fprintf(&buf, "%s%s\n",
			strings.Repeat("  ", depth),
			strings.TrimPrefix(reflect.TypeOf(n).String(), "*syntax."))
		depth++
		return true
	})
	got := buf.String()
	want := `
File
  FunDecl
    Ident
    Ident
    IfStmt
      VarExpr
        Ident
      PrintStmt
        VarExpr
          Ident
      ReturnStmt
        UnaryExpr
          VarExpr
            Ident
  ClassDecl
    Ident
    VarExpr
      Ident
    FunDecl
      Ident
      ExprStmt
        SetExpr
          ThisExpr
          Ident
          SuperExpr
            Ident
  VarStmt
    Ident
  WhileStmt
    VarExpr
      Ident
    BlockStmt
      ExprStmt
        AssignExpr
          Ident
          LogicalExpr
            CallExpr
              VarExpr
                Ident
              Literal
            Literal`
	got = strings.TrimSpace(got)
	want = strings.TrimSpace(want)
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

// The result of f prunes the descent.
func TestWalkPrune(t *testing.T) {
	const src = `
var a = 1;
fun f(b) { var c = b; }
class C { m(d) { print d; } }
print a;
`
	f, err := syntax.Parse("hello.lox", src)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	syntax.Walk(f, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.FunDecl:
			return false
		case *syntax.Ident:
			names = append(names, n.Name)
		}
		return true
	})
	if got, want := strings.Join(names, " "), "a C a"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

// ExampleWalk demonstrates the use of Walk to
// enumerate the identifiers in a Lox source file
// containing a nonsense program with varied grammar.
func ExampleWalk() {
	const src = `
var a = b;
fun c(d, e) { return f.g(h) or i; }
class j < k { l() { this.m = super.n; } }
{ o = p; }
`
	f, err := syntax.Parse("hello.lox", src)
	if err != nil {
		log.Fatal(err)
	}

	var idents []string
	syntax.Walk(f, func(n syntax.Node) bool {
		if id, ok := n.(*syntax.Ident); ok {
			idents = append(idents, id.Name)
		}
		return true
	})
	fmt.Println(strings.Join(idents, " "))

	// Output:
	// a b c d e f g h i j k l m n o p
}
