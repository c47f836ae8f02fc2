package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/ce2cdb/matcdb/internal/archive"
)

func cmdExport(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("export", flag.ExitOnError)
	object := fset.String("object", "", "res:DDDDDDDD:FFFFFFFF:EEEEEEEE to export (required)")
	out := fset.String("o", "", "output file path (defaults to stdout)")
	fset.Parse(args)
	if fset.NArg() < 1 || *object == "" {
		return xerrors.New("syntax: matcdb export -object res:... [-o out.json] <archive-dir-or-file-or-cdb-or-json>...")
	}
	idx, db, err := loadDatabase(fset.Args())
	if err != nil {
		return err
	}
	if idx != nil {
		defer idx.Close()
	}

	res, ok := archive.ParseResourceID(*object)
	if !ok {
		return xerrors.Errorf("invalid -object %q: expected res:DDDDDDDD:FFFFFFFF:EEEEEEEE", *object)
	}
	obj, ok := db.FindMaterial(res)
	if !ok {
		return xerrors.Errorf("object %s not found", *object)
	}
	text := db.GetJSONMaterial(obj)

	if *out == "" {
		_, err := os.Stdout.WriteString(text)
		return err
	}
	return renameio.WriteFile(*out, []byte(text), 0644)
}
