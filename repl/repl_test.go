package repl

import (
	"bytes"
	"io"
	"testing"

	"go.lox.dev/lox"
	"go.lox.dev/syntax"
)

// lines returns a readline function that yields each line in turn,
// then io.EOF.
func lines(input ...string) func() (string, error) {
	return func() (string, error) {
		if len(input) == 0 {
			return "", io.EOF
		}
		line := input[0]
		input = input[1:]
		return line, nil
	}
}

func TestRead(t *testing.T) {
	for _, test := range []struct {
		input []string
		stmts int // number of statements, or -1 for a nil file
		more  int // continuation prompts
		err   string
	}{
		{[]string{"print 1;"}, 1, 0, ""},
		{[]string{""}, -1, 0, ""},
		{[]string{"   "}, -1, 0, ""},
		{[]string{"fun f() {", "  print 1;", "}"}, 1, 2, ""},
		{[]string{"var s = \"a", "b\";"}, 1, 1, ""},
		{[]string{"1 + 2"}, 1, 1, "<stdin>:2:1: got end of file, want ';' after expression"},
		{[]string{"print ;"}, -1, 0, "<stdin>:1:7: got ';', want expression"},
		{[]string{"{", ""}, -1, 2, "<stdin>:3:1: got end of file, want '}' after block"},
	} {
		more := 0
		f, err := read(lines(test.input...), func() { more++ })
		if test.err != "" {
			if err == nil || err.Error() != test.err {
				t.Errorf("read(%q) error = %v, want %s", test.input, err, test.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("read(%q) failed: %v", test.input, err)
			continue
		}
		if test.stmts < 0 {
			if f != nil {
				t.Errorf("read(%q) = %d statements, want nil file", test.input, len(f.Stmts))
			}
		} else if f == nil || len(f.Stmts) != test.stmts {
			t.Errorf("read(%q) = %v, want %d statements", test.input, f, test.stmts)
		}
		if more != test.more {
			t.Errorf("read(%q) prompted for %d more lines, want %d", test.input, more, test.more)
		}
	}
}

func TestEvalPrint(t *testing.T) {
	thread := new(lox.Thread)
	var printed bytes.Buffer
	thread.Print = func(_ *lox.Thread, msg string) { printed.WriteString(msg + "\n") }

	var out bytes.Buffer
	for _, src := range []string{
		"var a = 1;",
		"a + 1;",
		"nil;",
		"print a;",
		"fun f() { return a * 10; }",
		"f();",
	} {
		f, err := syntax.Parse("<stdin>", src)
		if err != nil {
			t.Fatal(err)
		}
		if err := evalPrint(thread, f, &out); err != nil {
			t.Fatal(err)
		}
	}
	if got, want := out.String(), "2\n10\n"; got != want {
		t.Errorf("values = %q, want %q", got, want)
	}
	if got, want := printed.String(), "1\n"; got != want {
		t.Errorf("printed = %q, want %q", got, want)
	}
}

func TestFormatError(t *testing.T) {
	_, err := syntax.Parse("<stdin>", "print ;\nvar 1;")
	if got, want := FormatError(err), "<stdin>:1:7: got ';', want expression\n<stdin>:2:5: got number literal, want identifier for variable name"; got != want {
		t.Errorf("FormatError = %q, want %q", got, want)
	}

	err = lox.ExecFile(new(lox.Thread), "<stdin>", "print nope;")
	if got, want := FormatError(err), "Traceback (most recent call last):\n  <stdin>:1:7: in <toplevel>\nError: undefined variable 'nope'"; got != want {
		t.Errorf("FormatError = %q, want %q", got, want)
	}
}
