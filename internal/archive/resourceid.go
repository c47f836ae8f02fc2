package archive

import (
	"fmt"
	"strings"
)

// ResourceID is the content-addressable name of an asset: a
// (directory-hash, basename-hash, extension-code) triple, independent of
// path casing or separator style (spec §3, "ResourceId").
type ResourceID struct {
	Dir  uint32
	File uint32
	Ext  uint32
}

// MaterialExt is the ext_code that identifies a material root ("mat\0").
const MaterialExt uint32 = 0x0074616D

// Less gives ResourceID a total order, lexicographic by (File, Ext, Dir) as
// spec §3 requires.
func (r ResourceID) Less(o ResourceID) bool {
	if r.File != o.File {
		return r.File < o.File
	}
	if r.Ext != o.Ext {
		return r.Ext < o.Ext
	}
	return r.Dir < o.Dir
}

// String renders the canonical "res:DDDDDDDD:FFFFFFFF:EEEEEEEE" form.
func (r ResourceID) String() string {
	return fmt.Sprintf("res:%08X:%08X:%08X", r.Dir, r.File, r.Ext)
}

// ParseResourceID parses the "res:DDDDDDDD:FFFFFFFF:EEEEEEEE" string form
// (30 characters, hex, three 32-bit values), in dir:file:ext order.
func ParseResourceID(s string) (ResourceID, bool) {
	if len(s) != 30 || s[:4] != "res:" || s[12] != ':' || s[21] != ':' {
		return ResourceID{}, false
	}
	dir, ok1 := parseHex32(s[4:12])
	file, ok2 := parseHex32(s[13:21])
	ext, ok3 := parseHex32(s[22:30])
	if !ok1 || !ok2 || !ok3 {
		return ResourceID{}, false
	}
	return ResourceID{Dir: dir, File: file, Ext: ext}, true
}

func parseHex32(s string) (uint32, bool) {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint32
		switch {
		case c >= '0' && c <= '9':
			d = uint32(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint32(c-'A') + 10
		default:
			return 0, false
		}
		v = (v << 4) | d
	}
	return v, true
}

// ResourceIDFromPath splits path into directory/basename/extension parts
// and hashes each per spec §3. Case, separator style and a leading "data/"
// component do not change the result (spec §8 property 1): callers that
// need that normalization should call NormalizePath first, or rely on the
// fact that the hash itself already folds case and separators.
func ResourceIDFromPath(path string) ResourceID {
	path = stripDataPrefix(path)
	dirPart, basePart, extPart := splitPath(path)

	dirHash := crc32cSeed
	for i := 0; i < len(dirPart); i++ {
		dirHash = crc32cUpdate(dirHash, foldDirByte(dirPart[i]))
	}

	fileHash := crc32cSeed
	for i := 0; i < len(basePart); i++ {
		fileHash = crc32cUpdate(fileHash, foldLowerByte(basePart[i]))
	}

	ext := extCode(extPart)

	return ResourceID{Dir: dirHash, File: fileHash, Ext: ext}
}

// stripDataPrefix removes a leading "data/" or "data\" directory component
// (case-insensitive), matching the original resource ID parser so that
// archive-relative and data-root-relative spellings of a path hash
// identically (spec §8 property 1).
func stripDataPrefix(s string) string {
	if len(s) > 5 && (s[4] == '/' || s[4] == '\\') {
		head := s[:4]
		if strings.EqualFold(head, "data") {
			return s[5:]
		}
	}
	return s
}

// splitPath mirrors the original splitting rule: the basename starts right
// after the last '/' or '\\' (whichever is later), and the extension starts
// at the last '.', but only if that '.' falls at or after the basename
// start; otherwise there is no extension.
func splitPath(path string) (dir, base, ext string) {
	slash := strings.LastIndexAny(path, "/\\")
	dot := strings.LastIndex(path, ".")
	if dot < slash+1 {
		dot = -1
	}
	if slash < 0 {
		base = path
	} else {
		dir = path[:slash]
		base = path[slash+1:]
	}
	if dot < 0 {
		ext = ""
	} else {
		off := dot - (slash + 1)
		if slash < 0 {
			off = dot
		}
		ext = base[off+1:]
		base = base[:off]
	}
	return dir, base, ext
}

func foldDirByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		c |= 0x20
	} else if c == '/' {
		c = '\\'
	}
	return c
}

func foldLowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		c |= 0x20
	}
	return c
}

// extCode packs up to the first four bytes of ext (sans dot) little-endian
// into a u32 and folds any uppercase ASCII letters to lowercase, per the
// length-dependent encoding spec §3 defines.
func extCode(ext string) uint32 {
	n := len(ext)
	var v uint32
	switch {
	case n == 0:
		v = 0
	case n == 1:
		v = uint32(ext[0])
	case n == 2:
		v = uint32(ext[0]) | uint32(ext[1])<<8
	case n == 3:
		v = uint32(ext[0]) | uint32(ext[1])<<8 | uint32(ext[2])<<16
	default: // n >= 4, truncated to the first four bytes
		v = uint32(ext[0]) | uint32(ext[1])<<8 | uint32(ext[2])<<16 | uint32(ext[3])<<24
	}
	return v | ((v >> 1) & 0x20202020)
}
