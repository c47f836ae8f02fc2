package archive

import "encoding/binary"

// hashFileName computes the archive file-table's path hash (spec §3 "Archive
// file table", §4.2 "Name hashing for the index"): a 64-bit accumulator
// folded 8 bytes at a time with the multiplicative constant 0xEE088D97,
// independent of ResourceID's CRC-32C. The input must already be normalized
// (lowercase, '/' separators, control/':' mapped to '_') by NormalizeArchivePath.
func hashFileName(s string) uint32 {
	h := uint64(0xFFFFFFFF)
	p := []byte(s)
	for len(p) >= 8 {
		h = hashFold(h, binary.LittleEndian.Uint64(p))
		p = p[8:]
	}
	n := len(p)
	if n > 0 {
		var m uint64
		if n&1 != 0 {
			m = uint64(p[n&6])
		}
		if n&2 != 0 {
			m = (m << 16) | uint64(binary.LittleEndian.Uint16(p[n&4:]))
		}
		if n&4 != 0 {
			m = (m << 32) | uint64(binary.LittleEndian.Uint32(p))
		}
		h = hashFold(h, m)
	}
	return uint32(h & 0xFFFFFFFF)
}

// hashFold is the software (non-AVX) path of hashFunctionUInt64: two
// multiply-and-fold rounds over the low and high 32 bits of m.
func hashFold(h, m uint64) uint64 {
	const mult = uint64(0xEE088D97)
	h = uint64(uint32((h^m)&0xFFFFFFFF)) * mult
	h = h + (h >> 32)
	h = uint64(uint32((h^(m>>32))&0xFFFFFFFF)) * mult
	h = h + (h >> 32)
	return h
}

// NormalizeArchivePath lowercases s, maps '\\' to '/', and replaces control
// characters, ':' and every byte from 0x7F (DEL) upward with '_', matching
// BA2File::fixNameCharacter.
func NormalizeArchivePath(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c < 0x20 || c >= 0x7F || c == ':':
			c = '_'
		case c == '\\':
			c = '/'
		}
		b[i] = c
	}
	return string(b)
}
