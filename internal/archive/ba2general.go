package archive

import (
	"encoding/binary"
	"strings"

	"golang.org/x/xerrors"
)

// BA2 ("BTDX") header: magic(4) version(4) type(4) numFiles(4) nameTableOffset(8) = 24 bytes.
const ba2HeaderSize = 24

// parseBA2 dispatches on the BTDX header's 4-byte type tag: "GNRL" for
// general (uncompressed-path) archives, "DX10" for chunked texture archives.
func (idx *Index) parseBA2(src *source, archiveIndex int, data []byte) error {
	if len(data) < ba2HeaderSize {
		return xerrors.Errorf("archive: %s: truncated BA2 header", src.path)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	typeTag := string(data[8:12])
	numFiles := binary.LittleEndian.Uint32(data[12:16])
	nameTableOffset := binary.LittleEndian.Uint64(data[16:24])

	names, err := readBA2NameTable(data, nameTableOffset, int(numFiles))
	if err != nil {
		return xerrors.Errorf("archive: %s: %w", src.path, err)
	}

	switch typeTag {
	case "GNRL":
		return idx.parseBA2General(src, archiveIndex, data, numFiles, names)
	case "DX10":
		// Version 1-3: Fallout 4/76 (zlib mip chunks). Version >= 7: Starfield
		// (LZ4 mip chunks), spec §4.2 "Textured BA2".
		return idx.parseBA2Textures(src, archiveIndex, data, numFiles, names, version >= 7)
	default:
		return xerrors.Errorf("archive: %s: unknown BA2 type tag %q", src.path, typeTag)
	}
}

// readBA2NameTable reads the trailing name block: numFiles entries of
// (u16 length, bytes), in file-record order. An absent table (offset 0)
// yields empty names, leaving callers to synthesize a path from the hash.
func readBA2NameTable(data []byte, offset uint64, numFiles int) ([]string, error) {
	names := make([]string, numFiles)
	if offset == 0 || offset >= uint64(len(data)) {
		return names, nil
	}
	p := data[offset:]
	for i := 0; i < numFiles; i++ {
		if len(p) < 2 {
			return nil, xerrors.New("truncated name table")
		}
		n := int(binary.LittleEndian.Uint16(p))
		p = p[2:]
		if len(p) < n {
			return nil, xerrors.New("truncated name table entry")
		}
		names[i] = strings.ReplaceAll(string(p[:n]), "\\", "/")
		p = p[n:]
	}
	return names, nil
}

// ba2GeneralRecordSize is the 36-byte general-archive file record:
// nameHash(4) ext(4) dirHash(4) unknown0(4) offset(8) packedSize(4)
// unpackedSize(4) unknown1(4).
const ba2GeneralRecordSize = 36

func (idx *Index) parseBA2General(src *source, archiveIndex int, data []byte, numFiles uint32, names []string) error {
	off := ba2HeaderSize
	for i := uint32(0); i < numFiles; i++ {
		if off+ba2GeneralRecordSize > len(data) {
			return xerrors.Errorf("archive: %s: truncated general file record %d", src.path, i)
		}
		rec := data[off : off+ba2GeneralRecordSize]
		off += ba2GeneralRecordSize

		nameHash := binary.LittleEndian.Uint32(rec[0:4])
		dirHash := binary.LittleEndian.Uint32(rec[8:12])
		offset := int64(binary.LittleEndian.Uint64(rec[16:24]))
		packedSize := binary.LittleEndian.Uint32(rec[24:28])
		unpackedSize := binary.LittleEndian.Uint32(rec[28:32])

		name := names[i]
		if name == "" {
			name = syntheticName(dirHash, nameHash)
		}

		// General-archive entries are never chunked: packedSize != 0 just
		// means this one file is individually zlib-compressed in place
		// (spec §4.2), decompressed in a single shot by extract.go.
		idx.insert(&FileInfo{
			Name:         name,
			ArchiveType:  TypeGeneral,
			ArchiveIndex: archiveIndex,
			Offset:       offset,
			PackedSize:   packedSize,
			UnpackedSize: unpackedSize,
		})
	}
	return nil
}

func syntheticName(dirHash, nameHash uint32) string {
	return ResourceID{Dir: dirHash, File: nameHash}.String()
}
