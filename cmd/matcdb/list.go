package main

import (
	"context"
	"flag"
	"fmt"

	"golang.org/x/xerrors"
)

func cmdList(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("ls", flag.ExitOnError)
	fset.Parse(args)
	if fset.NArg() < 1 {
		return xerrors.New("syntax: matcdb ls <archive-dir-or-file>...")
	}
	idx, err := openArchives(fset.Args())
	if err != nil {
		return err
	}
	defer idx.Close()

	for _, name := range idx.GetFileList() {
		fi, err := idx.Find(name)
		if err != nil {
			continue
		}
		size, err := idx.FileSize(fi)
		if err != nil {
			fmt.Printf("%12s  %s\n", "?", name)
			continue
		}
		fmt.Printf("%12d  %s\n", size, name)
	}
	return nil
}
