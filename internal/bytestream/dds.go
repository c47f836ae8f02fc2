package bytestream

import "encoding/binary"

// DDS header constants (DirectDraw Surface, DX10 extension).
const (
	ddsMagic        = 0x20534444 // "DDS "
	ddsHeaderSize   = 124
	ddsPixFmtSize   = 32
	ddPixelsFourCC  = 0x00000004 // DDPF_FOURCC
	ddsCapsTexture  = 0x00001000
	ddsCapsComplex  = 0x00000008
	ddsCapsMipmap   = 0x00400000
	ddsCaps2Cubemap = 0x00000200
	ddsCaps2AllFace = 0x0000FC00 // all six cubemap faces present
	resourceDimTex2 = 3          // D3D10_RESOURCE_DIMENSION_TEXTURE2D
	miscCubemap     = 0x4        // DDS_RESOURCE_MISC_TEXTURECUBE
)

// HeaderSize is the total byte length of the legacy DDS header plus the
// DX10 extension, bit-exactly as archive.Index.ExtractTexture prepends to reconstructed
// texture-chunk archive entries.
const HeaderSize = 4 + ddsHeaderSize + 20

// WriteDDSHeader fills HeaderSize bytes of a DDS + DX10 header for the
// given DXGI format, dimensions, mip count and cubemap flag. The archive
// texture-chunk reassembler (internal/archive) uses this to synthesize the
// header that Creation Engine 2 never stores on disk for chunked textures.
func WriteDDSHeader(dxgiFormat, width, height, mipCount uint32, isCubeMap bool) []byte {
	buf := make([]byte, HeaderSize)
	le := binary.LittleEndian

	le.PutUint32(buf[0:4], ddsMagic)

	// DDS_HEADER
	h := buf[4 : 4+ddsHeaderSize]
	le.PutUint32(h[0:4], ddsHeaderSize)
	flags := uint32(0x00000001 | 0x00000002 | 0x00000004 | 0x00001000) // CAPS|HEIGHT|WIDTH|PIXELFORMAT
	if mipCount > 1 {
		flags |= 0x00020000 // MIPMAPCOUNT
	}
	le.PutUint32(h[4:8], flags)
	le.PutUint32(h[8:12], height)
	le.PutUint32(h[12:16], width)
	le.PutUint32(h[16:20], 0) // pitchOrLinearSize, unused for DX10 payloads
	le.PutUint32(h[20:24], 0) // depth
	mc := mipCount
	if mc == 0 {
		mc = 1
	}
	le.PutUint32(h[24:28], mc)
	// reserved1[11] left zero at h[28:72]

	// DDS_PIXELFORMAT at h[72:104]
	pf := h[72:104]
	le.PutUint32(pf[0:4], ddsPixFmtSize)
	le.PutUint32(pf[4:8], ddPixelsFourCC)
	le.PutUint32(pf[8:12], 0x30315844) // "DX10"
	// remaining pixel format fields stay zero; format lives in the DX10 header

	caps := uint32(ddsCapsTexture)
	if mc > 1 {
		caps |= ddsCapsComplex | ddsCapsMipmap
	}
	if isCubeMap {
		caps |= ddsCapsComplex
	}
	le.PutUint32(h[104:108], caps) // caps
	caps2 := uint32(0)
	if isCubeMap {
		caps2 = ddsCaps2Cubemap | ddsCaps2AllFace
	}
	le.PutUint32(h[108:112], caps2) // caps2
	// caps3, caps4, reserved2 stay zero at h[112:124]

	// DX10 extension
	ext := buf[4+ddsHeaderSize:]
	le.PutUint32(ext[0:4], dxgiFormat)
	le.PutUint32(ext[4:8], resourceDimTex2)
	if isCubeMap {
		le.PutUint32(ext[8:12], miscCubemap)
		le.PutUint32(ext[12:16], 6) // arraySize: 6 faces
	} else {
		le.PutUint32(ext[8:12], 0)
		le.PutUint32(ext[12:16], 1)
	}
	le.PutUint32(ext[16:20], 0) // miscFlags2 (alpha mode unknown)

	return buf
}
