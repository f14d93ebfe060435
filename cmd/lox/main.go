// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The lox command interprets a Lox file.
// With no arguments, it starts a read-eval-print loop (REPL),
// or, if standard input is not a terminal, executes it as a program.
//
// The exit status is 64 for a usage error, 65 for a syntax or static
// error, and 70 for a run-time error.
package main // import "go.lox.dev/cmd/lox"

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"

	"go.lox.dev/lox"
	"go.lox.dev/repl"
	"go.lox.dev/resolve"
	"go.lox.dev/syntax"
	"golang.org/x/term"
)

// flags
var (
	cpuprofile = flag.String("cpuprofile", "", "gather Go CPU profile in this file")
	memprofile = flag.String("memprofile", "", "gather Go memory profile in this file")
	showenv    = flag.Bool("showenv", false, "on success, print final global environment")
	showlocals = flag.Bool("showlocals", false, "print the scope distance of each resolved variable reference, and exit")
	execprog   = flag.String("c", "", "execute program `prog`")
)

// Exit codes, following the conventions of sysexits.h.
const (
	exitUsage   = 64
	exitStatic  = 65
	exitRuntime = 70
)

func main() {
	os.Exit(doMain())
}

func doMain() int {
	log.SetPrefix("lox: ")
	log.SetFlags(0)
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		check(err)
		err = pprof.StartCPUProfile(f)
		check(err)
		defer func() {
			pprof.StopCPUProfile()
			err := f.Close()
			check(err)
		}()
	}
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		check(err)
		defer func() {
			runtime.GC()
			err := pprof.Lookup("heap").WriteTo(f, 0)
			check(err)
			err = f.Close()
			check(err)
		}()
	}

	thread := new(lox.Thread)

	switch {
	case flag.NArg() == 1 || *execprog != "":
		var (
			filename string
			src      interface{}
		)
		if *execprog != "" {
			// Execute provided program.
			filename = "cmdline"
			src = *execprog
		} else {
			// Execute specified file.
			filename = flag.Arg(0)
		}
		thread.Name = "exec " + filename
		if code := run(thread, filename, src); code != 0 {
			return code
		}
	case flag.NArg() == 0 && term.IsTerminal(int(os.Stdin.Fd())):
		fmt.Println("Welcome to Lox (go.lox.dev)")
		thread.Name = "REPL"
		repl.REPL(thread)
	case flag.NArg() == 0:
		thread.Name = "exec <stdin>"
		if code := run(thread, "<stdin>", os.Stdin); code != 0 {
			return code
		}
	default:
		log.Print("want at most one Lox file name")
		return exitUsage
	}

	// Print the global environment.
	if *showenv {
		globals := thread.Globals()
		for _, name := range globals.Names() {
			if !lox.Universe.Has(name) {
				v, _ := globals.Get(name)
				fmt.Fprintf(os.Stderr, "%s = %s\n", name, v)
			}
		}
	}

	return 0
}

// run executes a program and returns the exit code.
func run(thread *lox.Thread, filename string, src interface{}) int {
	if *showlocals {
		return showLocals(os.Stdout, filename, src)
	}
	if err := lox.ExecFile(thread, filename, src); err != nil {
		repl.PrintError(err)
		if _, ok := err.(*lox.EvalError); ok {
			return exitRuntime
		}
		return exitStatic
	}
	return 0
}

// showLocals prints each resolved variable reference in the program
// and the number of scopes between it and its declaration.
// References to globals are not listed.
func showLocals(out io.Writer, filename string, src interface{}) int {
	f, err := syntax.Parse(filename, src)
	if err != nil {
		repl.PrintError(err)
		return exitStatic
	}
	locals, err := resolve.File(f)
	if err != nil {
		repl.PrintError(err)
		return exitStatic
	}

	type ref struct {
		pos   syntax.Position
		name  string
		depth int
	}
	var refs []ref
	syntax.Walk(f, func(n syntax.Node) bool {
		x, ok := n.(syntax.Expr)
		if !ok {
			return true
		}
		if depth, ok := locals.Depth(x); ok {
			refs = append(refs, ref{syntax.Start(x), refName(x), depth})
		}
		return true
	})
	sort.Slice(refs, func(i, j int) bool {
		p, q := refs[i].pos, refs[j].pos
		return p.Line < q.Line || p.Line == q.Line && p.Col < q.Col
	})
	for _, r := range refs {
		fmt.Fprintf(out, "%s: %s %d\n", r.pos, r.name, r.depth)
	}
	return 0
}

func refName(x syntax.Expr) string {
	switch x := x.(type) {
	case *syntax.VarExpr:
		return x.Name.Name
	case *syntax.AssignExpr:
		return x.Name.Name
	case *syntax.ThisExpr:
		return "this"
	case *syntax.SuperExpr:
		return "super"
	}
	return "?"
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
