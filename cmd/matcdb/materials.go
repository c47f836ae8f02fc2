package main

import (
	"context"
	"flag"
	"fmt"

	"golang.org/x/xerrors"
)

func cmdMaterials(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("materials", flag.ExitOnError)
	fset.Parse(args)
	if fset.NArg() < 1 {
		return xerrors.New("syntax: matcdb materials <archive-dir-or-file-or-cdb-or-json>...")
	}
	idx, db, err := loadDatabase(fset.Args())
	if err != nil {
		return err
	}
	if idx != nil {
		defer idx.Close()
	}

	for _, obj := range db.GetMaterials() {
		m := db.Project(obj)
		var layers int
		for _, l := range m.Layers {
			if l != nil {
				layers++
			}
		}
		fmt.Printf("%s  shaderModel=%q  layers=%d\n", obj.Resource.String(), m.ShaderModel, layers)
	}
	return nil
}
