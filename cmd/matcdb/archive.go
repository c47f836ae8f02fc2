package main

import (
	"os"

	"golang.org/x/xerrors"

	"github.com/ce2cdb/matcdb/internal/archive"
)

// openArchives mounts every path in paths: directories via Index.MountDir,
// individual container files via Index.MountFile. Mounting happens in
// argument order, so a later path's files win collisions against an
// earlier one's, same as within a single MountDir call.
func openArchives(paths []string) (*archive.Index, error) {
	idx := archive.NewIndex()
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			idx.Close()
			return nil, xerrors.Errorf("stat %s: %w", p, err)
		}
		if st.IsDir() {
			if err := idx.MountDir(p); err != nil {
				idx.Close()
				return nil, err
			}
			continue
		}
		if err := idx.MountFile(p); err != nil {
			idx.Close()
			return nil, err
		}
	}
	return idx, nil
}
