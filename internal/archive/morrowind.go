package archive

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// Morrowind's BSA has no real magic: the first u32 is a version field that
// happens to equal 0x100 for every retail archive, so it doubles as the
// classifier (spec §3 "Archive file table", archiveType 64).
const tes3HeaderSize = 12 // version(4) hashTableOffset(4) fileCount(4)

func (idx *Index) parseMorrowindBSA(src *source, archiveIndex int, data []byte) error {
	if len(data) < tes3HeaderSize {
		return xerrors.Errorf("archive: %s: truncated Morrowind BSA header", src.path)
	}
	fileCount := binary.LittleEndian.Uint32(data[8:12])

	off := tes3HeaderSize
	type sizeOffset struct{ size, offset uint32 }
	records := make([]sizeOffset, fileCount)
	for i := range records {
		if off+8 > len(data) {
			return xerrors.Errorf("archive: %s: truncated file size/offset record %d", src.path, i)
		}
		records[i].size = binary.LittleEndian.Uint32(data[off:])
		records[i].offset = binary.LittleEndian.Uint32(data[off+4:])
		off += 8
	}

	nameOffsets := make([]uint32, fileCount)
	for i := range nameOffsets {
		if off+4 > len(data) {
			return xerrors.Errorf("archive: %s: truncated name offset table", src.path)
		}
		nameOffsets[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}
	nameBlobStart := off

	// Record offsets are relative to the data block, which begins after the
	// name blob and the 8-byte-per-file hash table that follows it (hashes
	// are unused here: lookups go through the shared file-table hash
	// instead).
	dataStart := dataBlockStart(data, nameOffsets, nameBlobStart, fileCount)

	for i := uint32(0); i < fileCount; i++ {
		name := readCString(data, nameBlobStart+int(nameOffsets[i]))
		idx.insert(&FileInfo{
			Name:         name,
			ArchiveType:  TypeMorrowindBSA,
			ArchiveIndex: archiveIndex,
			Offset:       dataStart + int64(records[i].offset),
			UnpackedSize: records[i].size,
		})
	}
	return nil
}

// dataBlockStart finds the end of the name blob (and the 8-byte-per-file
// hash table that follows it), which is where record offsets are anchored.
func dataBlockStart(data []byte, nameOffsets []uint32, nameBlobStart int, fileCount uint32) int64 {
	end := nameBlobStart
	for _, o := range nameOffsets {
		p := nameBlobStart + int(o)
		for p < len(data) && data[p] != 0 {
			p++
		}
		if p+1 > end {
			end = p + 1
		}
	}
	return int64(end) + int64(fileCount)*8
}

func readCString(data []byte, off int) string {
	if off < 0 || off >= len(data) {
		return ""
	}
	end := off
	for end < len(data) && data[end] != 0 {
		end++
	}
	return string(data[off:end])
}
