package archive

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/xerrors"
)

// decompressZlib implements the Decompressor contract over
// github.com/klauspost/compress/zlib, used for BA2 general-archive
// per-file compression, textured-BA2 zlib mip chunks, and Oblivion+ BSA
// entries whose compression bit is set.
func decompressZlib(dst, src []byte) (int, error) {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return 0, xerrors.Errorf("archive: zlib: %w", err)
	}
	defer zr.Close()

	n, err := io.ReadFull(zr, dst)
	if err != nil {
		return n, xerrors.Errorf("archive: zlib: %w", err)
	}
	return n, nil
}
