package archive

import (
	"bytes"
	"testing"
)

func buildBSAFile(version uint32, archiveFlags uint32, folderName, fileName string, size, offset uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("BSA\x00")
	buf.Write(u32(version))
	buf.Write(u32(0)) // folderRecordOffset (unused by the parser)
	buf.Write(u32(archiveFlags))
	buf.Write(u32(1)) // folderCount
	buf.Write(u32(1)) // fileCount
	buf.Write(u32(uint32(len(folderName))))
	buf.Write(u32(uint32(len(fileName))))
	buf.Write(u32(0)) // fileFlags

	// folder record (16 bytes: 8-byte hash, count, offset)
	buf.Write(u64(0))
	buf.Write(u32(1)) // count
	buf.Write(u32(0)) // offset (unused)

	if archiveFlags&bsaFlagIncludeDirNames != 0 {
		buf.WriteByte(byte(len(folderName) + 1)) // length includes trailing NUL
		buf.WriteString(folderName)
		buf.WriteByte(0)
	}

	// file record (16 bytes: 8-byte hash, size, offset)
	buf.Write(u64(0))
	buf.Write(u32(size))
	buf.Write(u32(offset))

	if archiveFlags&bsaFlagIncludeFileNames != 0 {
		buf.WriteString(fileName)
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

func TestParseBSAUncompressedFile(t *testing.T) {
	data := buildBSAFile(103, bsaFlagIncludeDirNames|bsaFlagIncludeFileNames, "textures", "rock.dds", 500, 1234)
	idx := NewIndex()
	src := &source{path: "test.bsa"}
	if err := idx.parseBSA(src, 0, data); err != nil {
		t.Fatalf("parseBSA: %v", err)
	}
	fi, ok := idx.files["textures/rock.dds"]
	if !ok {
		t.Fatalf("file table = %+v, want textures/rock.dds", idx.files)
	}
	if fi.UnpackedSize != 500 || fi.Offset != 1234 {
		t.Errorf("FileInfo = %+v, want UnpackedSize=500 Offset=1234", fi)
	}
	if fi.BSAVersion != 103 {
		t.Errorf("BSAVersion = %d, want 103", fi.BSAVersion)
	}
}

func TestParseBSACompressedFileReadsEmbeddedUnpackedSize(t *testing.T) {
	// archive-level compression off, but this file's size has the
	// per-file compress bit set, so it is individually compressed.
	data := buildBSAFile(103, bsaFlagIncludeDirNames|bsaFlagIncludeFileNames,
		"sound", "foo.wav", bsaFileSizeCompressBit|20, 100)
	// splice in a 4-byte embedded unpacked-size prefix at the file's data
	// offset (100): the parser reads data[100:104] as a little-endian u32.
	padded := make([]byte, 200)
	copy(padded, data)
	padded[100] = 0x90
	padded[101] = 0x01
	padded[102] = 0
	padded[103] = 0

	idx := NewIndex()
	src := &source{path: "test.bsa"}
	if err := idx.parseBSA(src, 0, padded); err != nil {
		t.Fatalf("parseBSA: %v", err)
	}
	fi, ok := idx.files["sound/foo.wav"]
	if !ok {
		t.Fatalf("file table = %+v, want sound/foo.wav", idx.files)
	}
	if fi.UnpackedSize != 0x190 {
		t.Errorf("UnpackedSize = %#x, want 0x190 (read from the embedded prefix)", fi.UnpackedSize)
	}
	if fi.Offset != 104 {
		t.Errorf("Offset = %d, want 104 (original offset + 4)", fi.Offset)
	}
	if fi.PackedSize != 20-4 {
		t.Errorf("PackedSize = %d, want %d", fi.PackedSize, 20-4)
	}
}

func TestParseBSARejectsUnsupportedVersion(t *testing.T) {
	data := buildBSAFile(1, 0, "", "", 0, 0)
	idx := NewIndex()
	src := &source{path: "test.bsa"}
	if err := idx.parseBSA(src, 0, data); err == nil {
		t.Fatal("parseBSA with version 1 succeeded, want error")
	}
}
