// Package repl provides a read/eval/print loop for Lox.
//
// It supports readline-style command editing,
// and interrupts through Control-C.
//
// If the input so far is an incomplete declaration or statement, such
// as a block missing its closing brace, the REPL prompts for more
// lines until the input parses. A lone expression statement is
// evaluated and its result printed, unless it is nil; anything else
// is executed for its effects. Declarations persist from one input to
// the next.
package repl // import "go.lox.dev/repl"

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"go.lox.dev/lox"
	"go.lox.dev/resolve"
	"go.lox.dev/syntax"
)

var interrupted = make(chan os.Signal, 1)

// REPL executes a read, eval, print loop.
//
// Before evaluating each input, it sets the Lox thread local
// variable named "context" to a context.Context that is cancelled by a
// SIGINT (Control-C), and arranges for the cancellation to interrupt
// the thread. Client-supplied built-in functions may use this context
// to make long-running operations interruptable.
func REPL(thread *lox.Thread) {
	signal.Notify(interrupted, os.Interrupt)
	defer signal.Stop(interrupted)

	rl, err := readline.New("> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()
	for {
		if err := rep(rl, thread); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println(err)
				continue
			}
			break
		}
	}
	fmt.Println()
}

// rep reads, evaluates, and prints one item.
//
// It returns an error (possibly readline.ErrInterrupt)
// only if readline failed. Lox errors are printed.
func rep(rl *readline.Instance, thread *lox.Thread) error {
	// Each item gets its own context,
	// which is cancelled by a SIGINT.
	//
	// Note: during Readline calls, Control-C causes Readline to return
	// ErrInterrupt but does not generate a SIGINT.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-interrupted:
			cancel()
			thread.Cancel("interrupted")
		case <-ctx.Done():
		}
	}()

	thread.SetLocal("context", ctx)
	defer thread.Uncancel()

	// read
	rl.SetPrompt("> ")
	f, err := read(rl.Readline, func() { rl.SetPrompt("... ") })
	if err != nil {
		if err == io.EOF || err == readline.ErrInterrupt {
			return err
		}
		PrintError(err)
		return nil
	}
	if f == nil {
		return nil // blank line
	}

	return evalPrint(thread, f, os.Stdout)
}

// read accumulates lines from readline until they form a complete
// Lox file, calling more before each continuation line.
// It returns a nil file if the first line is blank.
func read(readline func() (string, error), more func()) (*syntax.File, error) {
	var buf strings.Builder
	for {
		line, err := readline()
		if err != nil {
			if err == io.EOF && buf.Len() > 0 {
				// Report what is wrong with the unfinished input.
				_, err = syntax.Parse("<stdin>", buf.String())
			}
			return nil, err
		}
		if buf.Len() == 0 && strings.TrimSpace(line) == "" {
			return nil, nil
		}
		buf.WriteString(line)
		buf.WriteByte('\n')

		f, err := syntax.Parse("<stdin>", buf.String())
		if syntax.Incomplete(err) {
			more()
			continue
		}
		return f, err
	}
}

// evalPrint executes f in the thread. If f is a single expression
// statement, its value is printed to out, unless it is nil.
// Errors are printed, not returned.
func evalPrint(thread *lox.Thread, f *syntax.File, out io.Writer) error {
	if expr := soleExpr(f); expr != nil {
		// eval
		v, err := lox.EvalExpr(thread, expr)
		if err != nil {
			PrintError(err)
			return nil
		}

		// print
		if v != lox.Nil {
			fmt.Fprintln(out, v)
		}
	} else if err := thread.ExecREPLChunk(f); err != nil {
		PrintError(err)
		return nil
	}

	return nil
}

func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) == 1 {
		if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
			return stmt.X
		}
	}
	return nil
}

// PrintError prints the error to stderr,
// or its backtrace if it is a Lox evaluation error.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, FormatError(err))
}

// FormatError returns the text PrintError prints for err: every
// message of a list of static errors, one per line, or the backtrace
// of an evaluation error.
func FormatError(err error) string {
	switch err := err.(type) {
	case *lox.EvalError:
		return err.Backtrace()
	case syntax.ErrorList:
		msgs := make([]string, len(err))
		for i, e := range err {
			msgs[i] = e.Error()
		}
		return strings.Join(msgs, "\n")
	case resolve.ErrorList:
		msgs := make([]string, len(err))
		for i, e := range err {
			msgs[i] = e.Error()
		}
		return strings.Join(msgs, "\n")
	}
	return err.Error()
}
