// Package reflstream implements layer L2, the "BETH" framed reflection
// stream decoder: the chunked, string-interned binary format the component
// database's CDB files and ingest records are built out of (spec §2, §4.3).
package reflstream

import (
	"github.com/ce2cdb/matcdb/internal/bytestream"
	"golang.org/x/xerrors"
)

// ChunkType tags a framed record's 4-byte little-endian ASCII identifier.
type ChunkType uint32

const (
	ChunkBETH ChunkType = 0x48544542 // stream preamble
	ChunkSTRT ChunkType = 0x54525453 // string table
	ChunkTYPE ChunkType = 0x45505954 // class field-type table
	ChunkCLAS ChunkType = 0x53414C43 // class definition
	ChunkLIST ChunkType = 0x5453494C // list-valued field
	ChunkMAPC ChunkType = 0x4350414D // map-valued field
	ChunkOBJT ChunkType = 0x544A424F // object instance, full field set
	ChunkDIFF ChunkType = 0x46464944 // object instance, sparse field diff
	ChunkUSER ChunkType = 0x52455355 // user-defined nested object
	ChunkUSRD ChunkType = 0x44525355 // user-defined nested diff
)

// Primitive and pseudo field-type ids, as distinguished from a class-def's
// own (positive) string-table index by falling in the small reserved range
// spec §4.3 describes.
const (
	FieldNone   = 0
	FieldString = 1
	FieldList   = 2
	FieldMap    = 3
	FieldRef    = 4
	FieldInt8   = 7
	FieldUInt8  = 8
	FieldInt16  = 9
	FieldUInt16 = 10
	FieldInt32  = 11
	FieldUInt32 = 12
	FieldInt64  = 13
	FieldUInt64 = 14
	FieldBool   = 15
	FieldFloat  = 16
	FieldDouble = 17
	FieldUnknown = 18
)

// Chunk is an independent cursor over one frame's own payload bytes: the
// sub-slice between its preamble and its declared end (shared with the
// outer buffer, not copied), so it can be handed to a caller (e.g. the component database's deferred
// object decoder) and read at that caller's own pace without disturbing
// whatever outer stream it was cut from (spec §4.3 "always drain").
type Chunk struct {
	Type ChunkType
	r    *bytestream.Reader
}

// readChunk parses one frame's 8-byte preamble (type, length) at r's
// current position, consumes exactly that many payload bytes from r, and
// returns a Chunk wrapping its own independent cursor over them.
func readChunk(r *bytestream.Reader) (*Chunk, error) {
	typ, ok := r.ReadU32()
	if !ok {
		return nil, xerrors.New("reflstream: truncated chunk preamble")
	}
	length, ok := r.ReadU32()
	if !ok {
		return nil, xerrors.New("reflstream: truncated chunk length")
	}
	payload, ok := r.Bytes(int(length))
	if !ok {
		return nil, xerrors.Errorf("reflstream: chunk type %08x declares %d bytes, only %d remain", typ, length, r.Remaining())
	}
	return &Chunk{Type: ChunkType(typ), r: bytestream.New(payload)}, nil
}

// Remaining reports how many undecoded bytes are left in the chunk.
func (c *Chunk) Remaining() int { return c.r.Remaining() }

// ReadNested parses one embedded frame (a LIST/MAPC/USER/USRD chunk stored
// inline inside a list- or map-valued field, or inside another object's
// field) out of c's own remaining bytes.
func (c *Chunk) ReadNested() (*Chunk, error) {
	return readChunk(c.r)
}

// Skip advances past any bytes the caller chose not to decode, satisfying
// the "always drain" contract even when a field or whole chunk is unknown.
func (c *Chunk) Skip() {
	if rem := c.Remaining(); rem > 0 {
		c.r.Skip(rem)
	}
}

func (c *Chunk) fail(what string) error {
	return xerrors.Errorf("reflstream: %s: truncated or chunk exhausted", what)
}

func (c *Chunk) ReadBool() (bool, error) {
	if c.Remaining() < 1 {
		return false, c.fail("bool")
	}
	v, _ := c.r.ReadU8()
	return v != 0, nil
}

func (c *Chunk) ReadUInt8() (uint8, error) {
	if c.Remaining() < 1 {
		return 0, c.fail("uint8")
	}
	v, _ := c.r.ReadU8()
	return v, nil
}

func (c *Chunk) ReadUInt16() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, c.fail("uint16")
	}
	v, _ := c.r.ReadU16()
	return v, nil
}

func (c *Chunk) ReadUInt32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, c.fail("uint32")
	}
	v, _ := c.r.ReadU32()
	return v, nil
}

func (c *Chunk) ReadUInt64() (uint64, error) {
	if c.Remaining() < 8 {
		return 0, c.fail("uint64")
	}
	v, _ := c.r.ReadU64()
	return v, nil
}

func (c *Chunk) ReadInt32() (int32, error) {
	v, err := c.ReadUInt32()
	return int32(v), err
}

func (c *Chunk) ReadInt64() (int64, error) {
	v, err := c.ReadUInt64()
	return int64(v), err
}

func (c *Chunk) ReadFloat() (float32, error) {
	if c.Remaining() < 4 {
		return 0, c.fail("float")
	}
	v, _ := c.r.ReadF32()
	return v, nil
}

// ReadFloat0To1 reads a field normalized into [0,1] as an unsigned byte
// (spec §6's compact encoding for blend/opacity-like scalars).
func (c *Chunk) ReadFloat0To1() (float32, error) {
	b, err := c.ReadUInt8()
	if err != nil {
		return 0, err
	}
	return float32(b) / 255.0, nil
}

func (c *Chunk) ReadDouble() (float64, error) {
	if c.Remaining() < 8 {
		return 0, c.fail("double")
	}
	v, _ := c.r.ReadF64()
	return v, nil
}

// ReadString reads a length-prefixed (u16) string, matching the payload
// format every STRT and inline string field shares.
func (c *Chunk) ReadString() (string, error) {
	n, err := c.ReadUInt16()
	if err != nil {
		return "", err
	}
	if c.Remaining() < int(n) {
		return "", c.fail("string")
	}
	b, _ := c.r.Bytes(int(n))
	return string(b), nil
}

// ReadStringIndex reads an interned string reference: a positive index
// resolves into the stream's own STRT table, a negative (as an int32, read
// from the wire as a uint32) index resolves into the canonical fixed table.
func (c *Chunk) ReadStringIndex() (int32, error) {
	v, err := c.ReadInt32()
	return v, err
}

// ReadEnum reads a field stored as a string-table index naming the enum
// member, resolved against table.
func (c *Chunk) ReadEnum(table *StringTable) (string, error) {
	idx, err := c.ReadStringIndex()
	if err != nil {
		return "", err
	}
	return table.Resolve(idx)
}
