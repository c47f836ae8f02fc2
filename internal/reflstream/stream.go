package reflstream

import (
	"github.com/ce2cdb/matcdb/internal/bytestream"
	"golang.org/x/xerrors"
)

// FieldDef is one field of a class definition: its interned name and its
// type. Type is one of the small fixed FieldXxx tag constants (None=0,
// String=1, List=2, Map=3, Ref=4, Int8=7, ..., Unknown=18) when the field
// holds a primitive; any other value is itself a positive string-table
// index naming the nested class/enum the field holds an instance of, with
// ClassName already resolved at parse time (spec §4.3 "class definition").
type FieldDef struct {
	Name      string
	Type      int32
	ClassName string
}

// IsPrimitive reports whether f's type is one of the fixed pseudo-type tags
// rather than a class reference.
func (f FieldDef) IsPrimitive() bool {
	return f.Type >= FieldNone && f.Type <= FieldUnknown
}

// ClassDef is a class's ordered field list, as assembled from a CLAS chunk
// plus the preceding TYPE chunk it references.
type ClassDef struct {
	Name   string
	Fields []FieldDef
}

// ObjectRecord is one undecoded OBJT/DIFF/USER/USRD chunk paired with the
// class it instantiates, handed to the component database's generic
// decoder (spec §9's two-phase decode/project design) rather than decoded
// here, since reflstream has no notion of the component/material schema.
type ObjectRecord struct {
	Class   *ClassDef
	Chunk   *Chunk
	IsDiff  bool
	Nested  bool // USER/USRD: embedded inside a parent field rather than top-level
}

// Stream is a parsed BETH reflection stream: its interned strings, its
// class definitions, and the sequence of object records still to decode.
type Stream struct {
	Strings *StringTable
	Classes map[string]*ClassDef
	Objects []*ObjectRecord
}

// Parse decodes a full BETH-framed buffer: the BETH preamble, one STRT
// chunk, interleaved TYPE/CLAS chunks, and the OBJT/DIFF/USER/USRD chunks
// that follow, in the order the original tool's readChunk loop visits them.
func Parse(data []byte) (*Stream, error) {
	r := bytestream.New(data)

	first, err := readChunk(r)
	if err != nil {
		return nil, xerrors.Errorf("reflstream: %w", err)
	}
	if first.Type != ChunkBETH {
		return nil, xerrors.Errorf("reflstream: expected BETH preamble, got %08x", first.Type)
	}
	first.Skip()

	s := &Stream{Classes: make(map[string]*ClassDef)}
	var pendingType []FieldDef

	for r.Remaining() > 0 {
		c, err := readChunk(r)
		if err != nil {
			return nil, xerrors.Errorf("reflstream: %w", err)
		}

		switch c.Type {
		case ChunkSTRT:
			local, err := parseStringTable(c)
			if err != nil {
				return nil, err
			}
			s.Strings = NewStringTable(local)
			c.Skip()

		case ChunkTYPE:
			fields, err := parseTypeChunk(c, s.Strings)
			if err != nil {
				return nil, err
			}
			pendingType = fields
			c.Skip()

		case ChunkCLAS:
			def, err := parseClassChunk(c, s.Strings, pendingType)
			if err != nil {
				return nil, err
			}
			s.Classes[def.Name] = def
			pendingType = nil
			c.Skip()

		case ChunkOBJT, ChunkDIFF:
			rec, err := s.readObjectHeader(c, c.Type == ChunkDIFF, false)
			if err != nil {
				return nil, err
			}
			s.Objects = append(s.Objects, rec)

		case ChunkUSER, ChunkUSRD:
			rec, err := s.readObjectHeader(c, c.Type == ChunkUSRD, true)
			if err != nil {
				return nil, err
			}
			s.Objects = append(s.Objects, rec)

		default:
			c.Skip()
		}
	}
	return s, nil
}

func parseStringTable(c *Chunk) ([]string, error) {
	count, err := c.ReadUInt32()
	if err != nil {
		return nil, err
	}
	out := make([]string, count)
	for i := range out {
		s, err := c.ReadString()
		if err != nil {
			return nil, xerrors.Errorf("reflstream: STRT entry %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

func parseTypeChunk(c *Chunk, table *StringTable) ([]FieldDef, error) {
	count, err := c.ReadUInt32()
	if err != nil {
		return nil, err
	}
	out := make([]FieldDef, count)
	for i := range out {
		nameIdx, err := c.ReadStringIndex()
		if err != nil {
			return nil, err
		}
		typeCode, err := c.ReadInt32()
		if err != nil {
			return nil, err
		}
		name := ""
		if table != nil {
			name, _ = table.Resolve(nameIdx)
		}
		fd := FieldDef{Name: name, Type: typeCode}
		if !fd.IsPrimitive() && table != nil {
			fd.ClassName, _ = table.Resolve(typeCode)
		}
		out[i] = fd
	}
	return out, nil
}

func parseClassChunk(c *Chunk, table *StringTable, fields []FieldDef) (*ClassDef, error) {
	nameIdx, err := c.ReadStringIndex()
	if err != nil {
		return nil, err
	}
	name := ""
	if table != nil {
		name, _ = table.Resolve(nameIdx)
	}
	return &ClassDef{Name: name, Fields: fields}, nil
}

// ReadNestedObject reads a USER/USRD chunk's leading class reference and
// returns an ObjectRecord ready for the generic decoder, for use when a
// field's value is itself a nested object rather than a primitive.
func (s *Stream) ReadNestedObject(c *Chunk, isDiff bool) (*ObjectRecord, error) {
	return s.readObjectHeader(c, isDiff, true)
}

// readObjectHeader reads the class reference that precedes every
// OBJT/DIFF/USER/USRD chunk's field data and hands the still-bounded Chunk
// cursor (positioned right after it) to the caller to decode.
func (s *Stream) readObjectHeader(c *Chunk, isDiff, nested bool) (*ObjectRecord, error) {
	classIdx, err := c.ReadStringIndex()
	if err != nil {
		return nil, err
	}
	className := ""
	if s.Strings != nil {
		className, _ = s.Strings.Resolve(classIdx)
	}
	def := s.Classes[className]
	if def == nil {
		def = &ClassDef{Name: className}
	}
	return &ObjectRecord{Class: def, Chunk: c, IsDiff: isDiff, Nested: nested}, nil
}

// GetFieldNumber implements the shared cursor-advance contract every
// OBJT/DIFF reader uses: in OBJT mode fields are visited strictly in
// declaration order (0,1,2,...) and the loop ends when curField reaches
// nMax; in DIFF mode each field is preceded by its own u16 index, and the
// loop ends as soon as an out-of-range index (>= nMax) is read, since DIFF
// chunks only encode the fields that changed (spec §4.3 "DIFF" encoding).
func (c *Chunk) GetFieldNumber(curField int, nMax int, isDiff bool) (int, bool) {
	if !isDiff {
		if curField >= nMax {
			return 0, false
		}
		return curField, true
	}
	if c.Remaining() < 2 {
		return 0, false
	}
	n, _ := c.ReadUInt16()
	if int(n) >= nMax {
		return 0, false
	}
	return int(n), true
}
