package archive

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// mapping is a read-only memory-mapped view of one container file, giving
// archive.Index.ExtractInPlace a zero-copy []byte it can sub-slice directly
// instead of reading through a buffered io.ReaderAt.
type mapping struct {
	data []byte
}

func mmapFile(path string) (*mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, xerrors.Errorf("archive: stat %s: %w", path, err)
	}
	size := fi.Size()
	if size == 0 {
		return &mapping{data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, xerrors.Errorf("archive: mmap %s: %w", path, err)
	}
	return &mapping{data: data}, nil
}

func (m *mapping) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if err != nil {
		return xerrors.Errorf("archive: munmap: %w", err)
	}
	return nil
}
