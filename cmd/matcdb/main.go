// Command matcdb drives the archive/reflection-stream/component-database
// stack from the command line: mount one or more Creation Engine
// containers, list or extract their files, load a material database and
// dump or export its objects. Verb dispatch mirrors the teacher's
// `cmd/distri/distri.go` style (a map of verb -> func(ctx, args) error).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/xerrors"
)

func funcmain() error {
	type cmd struct {
		fn func(ctx context.Context, args []string) error
	}
	verbs := map[string]cmd{
		"mount":     {cmdMount},
		"ls":        {cmdList},
		"extract":   {cmdExtract},
		"materials": {cmdMaterials},
		"dump":      {cmdDump},
		"export":    {cmdExport},
	}

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "syntax: matcdb <mount|ls|extract|materials|dump|export> [-flags] <args>")
		os.Exit(2)
	}
	verb, rest := args[0], args[1:]
	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprintln(os.Stderr, "syntax: matcdb <mount|ls|extract|materials|dump|export> [-flags] <args>")
		os.Exit(2)
	}

	ctx, canc := interruptibleContext()
	defer canc()
	if err := v.fn(ctx, rest); err != nil {
		return xerrors.Errorf("%s: %w", verb, err)
	}
	return runAtExit()
}

func main() {
	log.SetFlags(0)
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// coloredOutput reports whether stdout is an interactive terminal, the same
// check the teacher's CLI ergonomics apply before colorizing progress text
// (SPEC_FULL.md §4.6 domain-stack wiring for go-isatty).
func coloredOutput() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
