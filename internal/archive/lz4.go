package archive

import "golang.org/x/xerrors"

// decompressLZ4Block decodes a single LZ4 "raw block" (no frame header, no
// checksum, no block-size prefix) as used by Starfield's textured BA2 mip
// chunks, into dst (caller-sized to the chunk's unpacked size). No library
// in the retrieved corpus provides a raw-block LZ4 decoder (see DESIGN.md),
// so this is a minimal from-scratch implementation of the sequence format:
// a token byte packs a literal-length nibble and a match-length nibble,
// each optionally extended by a run of 0xFF continuation bytes, followed by
// the literals themselves and then, for every sequence but the last, a
// 2-byte little-endian back-reference offset and the match bytes it copies.
func decompressLZ4Block(dst, src []byte) (int, error) {
	var si, di int
	for si < len(src) {
		if si >= len(src) {
			return 0, xerrors.New("archive: lz4: truncated token")
		}
		token := src[si]
		si++

		litLen := int(token >> 4)
		if litLen == 15 {
			for {
				if si >= len(src) {
					return 0, xerrors.New("archive: lz4: truncated literal length")
				}
				b := src[si]
				si++
				litLen += int(b)
				if b != 0xFF {
					break
				}
			}
		}
		if si+litLen > len(src) || di+litLen > len(dst) {
			return 0, xerrors.New("archive: lz4: literal run overruns buffer")
		}
		copy(dst[di:di+litLen], src[si:si+litLen])
		si += litLen
		di += litLen

		if si >= len(src) {
			// A well-formed block ends exactly after the final literal run.
			break
		}
		if si+2 > len(src) {
			return 0, xerrors.New("archive: lz4: truncated match offset")
		}
		matchOffset := int(src[si]) | int(src[si+1])<<8
		si += 2
		if matchOffset == 0 || matchOffset > di {
			return 0, xerrors.New("archive: lz4: invalid match offset")
		}

		matchLen := int(token & 0xF)
		if matchLen == 15 {
			for {
				if si >= len(src) {
					return 0, xerrors.New("archive: lz4: truncated match length")
				}
				b := src[si]
				si++
				matchLen += int(b)
				if b != 0xFF {
					break
				}
			}
		}
		matchLen += 4 // minimum match length

		start := di - matchOffset
		if di+matchLen > len(dst) {
			return 0, xerrors.New("archive: lz4: match run overruns buffer")
		}
		for k := 0; k < matchLen; k++ {
			dst[di+k] = dst[start+k]
		}
		di += matchLen
	}
	if di != len(dst) {
		return di, xerrors.New("archive: lz4: decompressed size does not match the expected size")
	}
	return di, nil
}
