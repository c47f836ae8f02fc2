package archive

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// ba2TexHeaderFields is the fixed portion of a DX10 (textured) file record,
// preceding its chunk list: nameHash(4) ext(4) dirHash(4) unknown0(1)
// numChunks(1) chunkHeaderSize(2) height(2) width(2) numMips(1) format(1)
// flags(2) = 24 bytes.
const ba2TexFixedSize = 24

// ba2TexChunkSize is one chunk descriptor: offset(8) packedSize(4)
// unpackedSize(4) startMip(2) endMip(2) unknown(4) = 24 bytes.
const ba2TexChunkSize = 24

func (idx *Index) parseBA2Textures(src *source, archiveIndex int, data []byte, numFiles uint32, names []string, useLZ4 bool) error {
	off := ba2HeaderSize
	for i := uint32(0); i < numFiles; i++ {
		if off+ba2TexFixedSize > len(data) {
			return xerrors.Errorf("archive: %s: truncated texture file record %d", src.path, i)
		}
		rec := data[off : off+ba2TexFixedSize]
		off += ba2TexFixedSize

		nameHash := binary.LittleEndian.Uint32(rec[0:4])
		dirHash := binary.LittleEndian.Uint32(rec[8:12])
		numChunks := int(rec[13])
		height := binary.LittleEndian.Uint16(rec[16:18])
		width := binary.LittleEndian.Uint16(rec[18:20])
		numMips := rec[20]
		format := rec[21]
		flags := binary.LittleEndian.Uint16(rec[22:24])

		tex := &TextureInfo{
			DXGIFormat: uint32(format),
			Width:      width,
			Height:     height,
			MipCount:   numMips,
			IsCubeMap:  flags&0x1 != 0,
		}

		var firstPacked, firstUnpacked uint32
		var firstOffset int64
		for c := 0; c < numChunks; c++ {
			if off+ba2TexChunkSize > len(data) {
				return xerrors.Errorf("archive: %s: truncated texture chunk %d/%d", src.path, i, c)
			}
			cr := data[off : off+ba2TexChunkSize]
			off += ba2TexChunkSize

			chunkOffset := int64(binary.LittleEndian.Uint64(cr[0:8]))
			packed := binary.LittleEndian.Uint32(cr[8:12])
			unpacked := binary.LittleEndian.Uint32(cr[12:16])
			startMip := binary.LittleEndian.Uint16(cr[16:18])
			endMip := binary.LittleEndian.Uint16(cr[18:20])

			tex.Chunks = append(tex.Chunks, TextureChunk{
				Offset:       chunkOffset,
				PackedSize:   packed,
				UnpackedSize: unpacked,
				MipFirst:     startMip,
				MipLast:      endMip,
			})
			if c == 0 {
				firstOffset, firstPacked, firstUnpacked = chunkOffset, packed, unpacked
			}
		}
		if numChunks == 0 {
			return xerrors.Errorf("archive: %s: texture file record %d has no chunks", src.path, i)
		}
		atype := TypeTexZlib
		if useLZ4 {
			atype = TypeTexLZ4
		}

		name := names[i]
		if name == "" {
			name = syntheticName(dirHash, nameHash)
		}

		idx.insert(&FileInfo{
			Name:         name,
			ArchiveType:  atype,
			ArchiveIndex: archiveIndex,
			Offset:       firstOffset,
			PackedSize:   firstPacked,
			UnpackedSize: firstUnpacked,
			Texture:      tex,
		})
	}
	return nil
}
