package archive

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// bsaHeaderSize is the Oblivion+ BSA header: magic(4) version(4)
// folderRecordOffset(4) archiveFlags(4) folderCount(4) fileCount(4)
// totalFolderNameLength(4) totalFileNameLength(4) fileFlags(4) = 36 bytes.
const bsaHeaderSize = 36

const (
	bsaFlagIncludeDirNames  = 0x1
	bsaFlagIncludeFileNames = 0x2
	bsaFlagCompressed       = 0x4
	bsaFileSizeCompressBit  = 0x40000000
	bsaFileSizeMask         = 0x3FFFFFFF
)

func (idx *Index) parseBSA(src *source, archiveIndex int, data []byte) error {
	if len(data) < bsaHeaderSize {
		return xerrors.Errorf("archive: %s: truncated BSA header", src.path)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version < uint32(TypeOblivionBSAMin) {
		return xerrors.Errorf("archive: %s: unsupported BSA version %d", src.path, version)
	}
	archiveFlags := binary.LittleEndian.Uint32(data[12:16])
	folderCount := binary.LittleEndian.Uint32(data[16:20])
	fileCount := binary.LittleEndian.Uint32(data[20:24])

	src.bsaVersion = version
	src.bsaCompressed = archiveFlags&bsaFlagCompressed != 0

	folderRecordSize := 16
	if version == 105 {
		folderRecordSize = 24 // SSE adds a padded 64-bit file-records offset
	}

	off := bsaHeaderSize
	type folder struct {
		count  uint32
		offset uint32
	}
	folders := make([]folder, folderCount)
	for i := range folders {
		if off+folderRecordSize > len(data) {
			return xerrors.Errorf("archive: %s: truncated folder record %d", src.path, i)
		}
		rec := data[off : off+folderRecordSize]
		folders[i].count = binary.LittleEndian.Uint32(rec[8:12])
		if folderRecordSize == 16 {
			folders[i].offset = binary.LittleEndian.Uint32(rec[12:16])
		} else {
			folders[i].offset = uint32(binary.LittleEndian.Uint64(rec[16:24]))
		}
		off += folderRecordSize
	}

	type fileRec struct {
		size       uint32
		offset     uint32
		folderName string
	}
	allFiles := make([]fileRec, 0, fileCount)
	for _, f := range folders {
		var folderName string
		if archiveFlags&bsaFlagIncludeDirNames != 0 {
			if off >= len(data) {
				return xerrors.Errorf("archive: %s: truncated folder name", src.path)
			}
			n := int(data[off])
			off++
			if off+n > len(data) {
				return xerrors.Errorf("archive: %s: truncated folder name", src.path)
			}
			// length includes the trailing NUL; trim it off.
			if n > 0 {
				folderName = string(data[off : off+n-1])
			}
			off += n
		}
		for j := uint32(0); j < f.count; j++ {
			if off+16 > len(data) {
				return xerrors.Errorf("archive: %s: truncated file record", src.path)
			}
			rec := data[off : off+16]
			allFiles = append(allFiles, fileRec{
				size:       binary.LittleEndian.Uint32(rec[8:12]),
				offset:     binary.LittleEndian.Uint32(rec[12:16]),
				folderName: folderName,
			})
			off += 16
		}
	}

	names := make([]string, len(allFiles))
	if archiveFlags&bsaFlagIncludeFileNames != 0 {
		for i := range names {
			start := off
			for off < len(data) && data[off] != 0 {
				off++
			}
			if off >= len(data) {
				return xerrors.Errorf("archive: %s: truncated file name block", src.path)
			}
			names[i] = string(data[start:off])
			off++ // skip NUL
		}
	}

	for i, f := range allFiles {
		compressed := src.bsaCompressed
		if f.size&bsaFileSizeCompressBit != 0 {
			compressed = !compressed
		}
		size := f.size & bsaFileSizeMask

		name := names[i]
		if f.folderName != "" {
			name = f.folderName + "/" + name
		}
		fi := &FileInfo{
			Name:         name,
			ArchiveType:  ArchiveType(version),
			ArchiveIndex: archiveIndex,
			Offset:       int64(f.offset),
			BSAVersion:   version,
		}
		if compressed {
			// The first 4 bytes at the data offset hold the original
			// (unpacked) size; the rest is the zlib stream.
			fi.BSAFlags = bsaFileSizeCompressBit
			fi.Offset += 4
			fi.PackedSize = size - 4
			if int(f.offset)+4 <= len(data) {
				fi.UnpackedSize = binary.LittleEndian.Uint32(data[f.offset : f.offset+4])
			}
		} else {
			fi.UnpackedSize = size
		}
		idx.insert(fi)
	}
	return nil
}
