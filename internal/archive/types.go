// Package archive implements layer L1, the unified virtual filesystem that
// mounts one or more Creation Engine container files (general/textured BA2,
// Oblivion+ BSA, Morrowind BSA) plus loose files, and serves file bytes
// either in place or reconstructed into a caller buffer.
package archive

import "fmt"

// ArchiveType tags the decompression/reassembly path a FileInfo requires,
// exactly as spec §3 "Archive file table" enumerates.
type ArchiveType int32

const (
	TypeLoose        ArchiveType = -1
	TypeGeneral      ArchiveType = 0
	TypeTexZlib      ArchiveType = 1
	TypeTexLZ4       ArchiveType = 2
	TypeMorrowindBSA ArchiveType = 64
	// TypeOblivionBSA is not a single constant: any value >= 103 is the BSA
	// version number itself; per-file flag bits are kept separately in
	// FileInfo.BSAFlags (see bsa.go).
	TypeOblivionBSAMin ArchiveType = 103
)

// TextureChunk describes one reconstructed mip level of a chunked texture
// entry (BA2 "DX10" / textures variant, spec §4.2 "Textured BA2").
type TextureChunk struct {
	Offset       int64  // byte offset into the owning archive
	PackedSize   uint32 // 0 means stored uncompressed
	UnpackedSize uint32
	MipFirst     uint16
	MipLast      uint16
}

// TextureInfo carries the metadata ExtractTexture needs to synthesize a DDS
// header before replaying the chunk list (spec §4.2 "extraction contract").
type TextureInfo struct {
	DXGIFormat uint32
	Width      uint16
	Height     uint16
	MipCount   uint8
	IsCubeMap  bool
	Chunks     []TextureChunk
}

// FileInfo is the archive index's per-file record (spec §3). data_ptr is
// modeled as an (archive index, offset, length) triple rather than a raw
// pointer, since the backing bytes live in the owning archive's mmap.
type FileInfo struct {
	Name         string // normalized path, '/' separated, lowercase
	Hash         uint32
	ArchiveType  ArchiveType
	ArchiveIndex int
	Offset       int64
	PackedSize   uint32
	UnpackedSize uint32
	BSAVersion   uint32 // >=103: Oblivion+ BSA version
	BSAFlags     uint32 // Oblivion+ BSA per-file compression-sense / prefix flags
	Texture      *TextureInfo
	LoosePath    string // for ArchiveType == TypeLoose
}

// FileNotFoundError reports a failed lookup by path.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("%q not found in mounted archives", e.Path)
}

// Decompressor implements the black-box contract spec §1 describes:
// "decompress(src,dst,unpacked_size) -> unpacked_size or error". The core
// never implements a compression codec itself beyond this interface point
// (the raw-LZ4 decoder in lz4.go exists only because no such collaborator
// was available anywhere in the retrieved corpus; see DESIGN.md).
type Decompressor func(dst, src []byte) (int, error)
