package main

import (
	"context"
	"flag"
	"fmt"

	"golang.org/x/xerrors"

	"github.com/ce2cdb/matcdb/internal/archive"
)

func cmdDump(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("dump", flag.ExitOnError)
	object := fset.String("object", "", "res:DDDDDDDD:FFFFFFFF:EEEEEEEE to dump (default: every material root)")
	fset.Parse(args)
	if fset.NArg() < 1 {
		return xerrors.New("syntax: matcdb dump [-object res:...] <archive-dir-or-file-or-cdb-or-json>...")
	}
	idx, db, err := loadDatabase(fset.Args())
	if err != nil {
		return err
	}
	if idx != nil {
		defer idx.Close()
	}

	if *object != "" {
		res, ok := archive.ParseResourceID(*object)
		if !ok {
			return xerrors.Errorf("invalid -object %q: expected res:DDDDDDDD:FFFFFFFF:EEEEEEEE", *object)
		}
		obj, ok := db.FindMaterial(res)
		if !ok {
			return xerrors.Errorf("object %s not found", *object)
		}
		fmt.Print(db.DumpObject(obj))
		return nil
	}

	for _, obj := range db.GetMaterials() {
		fmt.Print(db.DumpObject(obj))
	}
	return nil
}
