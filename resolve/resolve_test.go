// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.lox.dev/internal/chunkedfile"
	"go.lox.dev/loxtest"
	"go.lox.dev/resolve"
	"go.lox.dev/syntax"
)

func TestResolve(t *testing.T) {
	filename := loxtest.DataFile("resolve", "testdata/resolve.lox")
	for _, chunk := range chunkedfile.Read(filename, t) {
		f, err := syntax.Parse(filename, chunk.Source)
		if err != nil {
			t.Error(err)
			continue
		}

		if _, err := resolve.File(f); err != nil {
			for _, err := range err.(resolve.ErrorList) {
				chunk.GotError(int(err.Pos.Line), err.Msg)
			}
		}
		chunk.Done()
	}
}

// distances returns the resolved distance of each variable reference
// in src, keyed by "line:col name". Global references are absent.
func distances(t *testing.T, src string) map[string]int {
	t.Helper()
	f, err := syntax.Parse("foo.lox", src)
	if err != nil {
		t.Fatal(err)
	}
	locals, err := resolve.File(f)
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]int)
	syntax.Walk(f, func(n syntax.Node) bool {
		var name string
		switch n := n.(type) {
		case *syntax.VarExpr:
			name = n.Name.Name
		case *syntax.AssignExpr:
			name = n.Name.Name
		case *syntax.ThisExpr:
			name = "this"
		case *syntax.SuperExpr:
			name = "super"
		default:
			return true
		}
		x := n.(syntax.Expr)
		if d, ok := locals.Depth(x); ok {
			start := syntax.Start(x)
			got[fmt.Sprintf("%d:%d %s", start.Line, start.Col, name)] = d
		}
		return true
	})
	return got
}

func TestDistances(t *testing.T) {
	for _, test := range []struct {
		name string
		src  string
		want map[string]int
	}{
		{
			name: "globals are unresolved",
			src:  "var a = 1;\nprint a;\na = 2;\n",
			want: map[string]int{},
		},
		{
			name: "shadowing",
			src: `var a = "global";
{
  var a = "outer";
  {
    var a = "inner";
    print a;
  }
  print a;
}
print a;
`,
			want: map[string]int{
				"6:11 a": 0,
				"8:9 a":  0,
			},
		},
		{
			name: "enclosing block",
			src: `{
  var a = 1;
  {
    {
      a = a + 1;
    }
  }
}
`,
			want: map[string]int{
				"5:7 a":  2,
				"5:11 a": 2,
			},
		},
		{
			name: "closure",
			src: `fun makeCounter() {
  var i = 0;
  fun count() {
    i = i + 1;
    return i;
  }
  return count;
}
`,
			want: map[string]int{
				"4:5 i":      1,
				"4:9 i":      1,
				"5:12 i":     1,
				"7:10 count": 0,
			},
		},
		{
			name: "parameters share the body's scope",
			src: `fun f(a) {
  var b = a;
  { print a + b; }
}
`,
			want: map[string]int{
				"2:11 a": 0,
				"3:11 a": 1,
				"3:15 b": 1,
			},
		},
		{
			// The closure binds the declaration visible at its
			// definition, even after a later shadowing declaration.
			name: "static binding",
			src: `var a = "global";
{
  fun show() { print a; }
  show();
  var a = "block";
  show();
}
`,
			want: map[string]int{
				"4:3 show": 0,
				"6:3 show": 0,
			},
		},
		{
			name: "this and super",
			src: `class A { m() { return 1; } }
class B < A {
  m() { return super.m() + this.n; }
}
`,
			want: map[string]int{
				"3:16 super": 2,
				"3:28 this":  1,
			},
		},
		{
			name: "superclass expression",
			src: `{
  class A {}
  class B < A {}
}
`,
			want: map[string]int{
				"3:13 A": 0,
			},
		},
		{
			name: "for loop",
			src: `for (var i = 0; i < 3; i = i + 1) print i;
`,
			want: map[string]int{
				"1:17 i": 0,
				"1:24 i": 1,
				"1:28 i": 1,
				"1:41 i": 1,
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := distances(t, test.src)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("distances mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// All errors in a program are reported, in source order.
func TestErrorList(t *testing.T) {
	const src = `return 1;
print this;
class A < A {}
{ var x = x; }
`
	f, err := syntax.Parse("foo.lox", src)
	if err != nil {
		t.Fatal(err)
	}
	_, err = resolve.File(f)
	list, ok := err.(resolve.ErrorList)
	if !ok {
		t.Fatalf("got %v, want ErrorList", err)
	}
	var got []string
	for _, e := range list {
		got = append(got, e.Error())
	}
	want := []string{
		"foo.lox:1:1: return statement not within a function",
		"foo.lox:2:7: can't use 'this' outside of a class",
		"foo.lox:3:11: class A can't inherit from itself",
		"foo.lox:4:11: can't read local variable x in its own initializer",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveExpr(t *testing.T) {
	x, err := syntax.ParseExpr("foo.lox", "a + clock()")
	if err != nil {
		t.Fatal(err)
	}
	locals, err := resolve.Expr(x)
	if err != nil {
		t.Fatal(err)
	}
	if len(locals) != 0 {
		t.Errorf("got %d local references, want none", len(locals))
	}

	x, err = syntax.ParseExpr("foo.lox", "this")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := resolve.Expr(x); err == nil {
		t.Error("resolving 'this' at toplevel succeeded, want error")
	}
}
