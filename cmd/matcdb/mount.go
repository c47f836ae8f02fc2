package main

import (
	"context"
	"flag"
	"log"

	"golang.org/x/xerrors"

	"github.com/ce2cdb/matcdb/internal/archivefs"
)

func cmdMount(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("mount", flag.ExitOnError)
	fset.Parse(args)
	if fset.NArg() < 2 {
		return xerrors.New("syntax: matcdb mount <archive-dir-or-file>... <mountpoint>")
	}
	rest := fset.Args()
	mountpoint := rest[len(rest)-1]
	sources := rest[:len(rest)-1]

	idx, err := openArchives(sources)
	if err != nil {
		return err
	}
	defer idx.Close()

	fs := archivefs.New(idx)
	join, err := archivefs.Mount(ctx, fs, mountpoint)
	if err != nil {
		return err
	}
	if coloredOutput() {
		log.Printf("\033[32mmounted\033[0m %d source(s) at %s", len(sources), mountpoint)
	} else {
		log.Printf("mounted %d source(s) at %s", len(sources), mountpoint)
	}
	return join(ctx)
}
