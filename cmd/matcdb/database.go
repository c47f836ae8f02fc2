package main

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/ce2cdb/matcdb/internal/archive"
	"github.com/ce2cdb/matcdb/internal/jsonmat"
	"github.com/ce2cdb/matcdb/internal/matdb"
)

// materialDBPath is the canonical in-archive location of the reflection
// stream CDB file (spec.md §2's example control flow).
const materialDBPath = "materials/materialsbeta.cdb"

// loadDatabase builds a matdb.Database from sources: directories and
// container files are mounted into an archive.Index and the canonical CDB
// file is extracted from it; standalone .cdb/.json files are loaded
// directly. The returned Index (possibly nil, if every source was a
// standalone file) must be closed by the caller when non-nil.
func loadDatabase(sources []string) (*archive.Index, *matdb.Database, error) {
	var archiveSources, standaloneFiles []string
	for _, p := range sources {
		ext := strings.ToLower(filepath.Ext(p))
		if ext == ".cdb" || ext == ".json" {
			standaloneFiles = append(standaloneFiles, p)
			continue
		}
		archiveSources = append(archiveSources, p)
	}

	db := matdb.NewDatabase()
	var idx *archive.Index
	if len(archiveSources) > 0 {
		var err error
		idx, err = openArchives(archiveSources)
		if err != nil {
			return nil, nil, err
		}
		fi, err := idx.Find(materialDBPath)
		if err == nil {
			data, err := idx.Extract(fi)
			if err != nil {
				idx.Close()
				return nil, nil, xerrors.Errorf("extract %s: %w", materialDBPath, err)
			}
			if err := db.LoadCDBFile(data); err != nil {
				idx.Close()
				return nil, nil, xerrors.Errorf("load %s: %w", materialDBPath, err)
			}
		}
	}

	for _, p := range standaloneFiles {
		data, err := os.ReadFile(p)
		if err != nil {
			if idx != nil {
				idx.Close()
			}
			return nil, nil, xerrors.Errorf("read %s: %w", p, err)
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext == ".json" {
			if _, err := jsonmat.LoadFile(db, data); err != nil {
				if idx != nil {
					idx.Close()
				}
				return nil, nil, xerrors.Errorf("load %s: %w", p, err)
			}
			continue
		}
		if err := db.LoadCDBFile(data); err != nil {
			if idx != nil {
				idx.Close()
			}
			return nil, nil, xerrors.Errorf("load %s: %w", p, err)
		}
	}

	return idx, db, nil
}
