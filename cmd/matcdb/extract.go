package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/renameio"
	"golang.org/x/xerrors"
)

func cmdExtract(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("extract", flag.ExitOnError)
	out := fset.String("o", "", "output file path (defaults to stdout)")
	fset.Parse(args)
	if fset.NArg() < 2 {
		return xerrors.New("syntax: matcdb extract [-o out] <archive-dir-or-file>... <path>")
	}
	rest := fset.Args()
	path := rest[len(rest)-1]
	sources := rest[:len(rest)-1]

	idx, err := openArchives(sources)
	if err != nil {
		return err
	}
	defer idx.Close()

	fi, err := idx.Find(path)
	if err != nil {
		return err
	}
	data, err := idx.Extract(fi)
	if err != nil {
		return xerrors.Errorf("extract %s: %w", path, err)
	}

	if *out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return renameio.WriteFile(*out, data, 0644)
}
