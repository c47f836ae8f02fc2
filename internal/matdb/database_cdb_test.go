package matdb

import (
	"bytes"
	"testing"

	"github.com/ce2cdb/matcdb/internal/reflstream"
)

// The canonical string table (reflstream/stringtable.go) already carries
// these four class names; referencing them by negative index means the
// fixtures below never need their own STRT entries for class names, only
// for field names and the one project-local DBFileIndex class.
const (
	classObjectInfo    = -8
	classComponentInfo = -9
	classEdgeInfo      = -10
	classEmissive      = -35
)

// cdbStrings builds the local STRT payload for every fixture below: index 0
// is the root class name, the rest are field names.
func cdbStrings() []byte {
	names := []string{
		"BSComponentDB2::DBFileIndex",
		"dir", "file", "ext", "dbID", "baseObjDbID", "hasData",
		"index", "sourceID", "targetID", "type",
		"sourceLayer", "luminous",
		"Objects", "Components", "Edges",
	}
	strt := u32le(uint32(len(names)))
	for _, n := range names {
		strt = append(strt, u16le(uint16(len(n)))...)
		strt = append(strt, n...)
	}
	return strt
}

func typeChunk(fields ...[2]int32) []byte {
	buf := u32le(uint32(len(fields)))
	for _, f := range fields {
		buf = append(buf, i32le(f[0])...)
		buf = append(buf, i32le(f[1])...)
	}
	return buf
}

// encodeElement wraps one class instance's field bytes as a USER chunk, the
// form decodeNestedObject expects for every LIST element whose class is
// non-primitive (spec §4.3 "LIST... elements read with the same chunk
// cursor primitive").
func encodeElement(classIdx int32, fields []byte) []byte {
	payload := append(i32le(classIdx), fields...)
	return encodeChunk(reflstream.ChunkUSER, payload)
}

// encodeListField wraps a sequence of already-encoded elements as the
// embedded LIST chunk a List-typed field's value is stored as.
func encodeListField(elemClassIdx int32, elements ...[]byte) []byte {
	payload := i32le(elemClassIdx)
	payload = append(payload, u32le(uint32(len(elements)))...)
	for _, e := range elements {
		payload = append(payload, e...)
	}
	return encodeChunk(reflstream.ChunkLIST, payload)
}

func objectInfoFields(dir, file, ext, dbID, baseObjDbID uint32, hasData bool) []byte {
	b := u32le(dir)
	b = append(b, u32le(file)...)
	b = append(b, u32le(ext)...)
	b = append(b, u32le(dbID)...)
	b = append(b, u32le(baseObjDbID)...)
	if hasData {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	return b
}

func componentInfoFields(dbID, index uint32) []byte {
	return append(u32le(dbID), u32le(index)...)
}

func edgeInfoFields(sourceID, targetID, index, typ uint32) []byte {
	b := u32le(sourceID)
	b = append(b, u32le(targetID)...)
	b = append(b, u32le(index)...)
	b = append(b, u32le(typ)...)
	return b
}

// cdbFixture assembles one full CDB file: a DBFileIndex root object naming
// the given ObjectInfo/ComponentInfo/EdgeInfo entries, followed by the
// per-component OBJT/DIFF chunks in the same order as the ComponentInfo
// list (spec §4.4 "CDB ingest").
func cdbFixture(objects, components, edges [][]byte, componentChunks [][]byte) []byte {
	var buf bytes.Buffer
	buf.Write(encodeChunk(reflstream.ChunkBETH, nil))
	buf.Write(encodeChunk(reflstream.ChunkSTRT, cdbStrings()))

	buf.Write(encodeChunk(reflstream.ChunkTYPE, typeChunk([2]int32{13, reflstream.FieldList}, [2]int32{14, reflstream.FieldList}, [2]int32{15, reflstream.FieldList})))
	buf.Write(encodeChunk(reflstream.ChunkCLAS, i32le(0)))

	buf.Write(encodeChunk(reflstream.ChunkTYPE, typeChunk(
		[2]int32{1, reflstream.FieldUInt32}, [2]int32{2, reflstream.FieldUInt32}, [2]int32{3, reflstream.FieldUInt32},
		[2]int32{4, reflstream.FieldUInt32}, [2]int32{5, reflstream.FieldUInt32}, [2]int32{6, reflstream.FieldBool})))
	buf.Write(encodeChunk(reflstream.ChunkCLAS, i32le(classObjectInfo)))

	buf.Write(encodeChunk(reflstream.ChunkTYPE, typeChunk([2]int32{4, reflstream.FieldUInt32}, [2]int32{7, reflstream.FieldUInt32})))
	buf.Write(encodeChunk(reflstream.ChunkCLAS, i32le(classComponentInfo)))

	buf.Write(encodeChunk(reflstream.ChunkTYPE, typeChunk(
		[2]int32{8, reflstream.FieldUInt32}, [2]int32{9, reflstream.FieldUInt32},
		[2]int32{7, reflstream.FieldUInt32}, [2]int32{10, reflstream.FieldUInt32})))
	buf.Write(encodeChunk(reflstream.ChunkCLAS, i32le(classEdgeInfo)))

	buf.Write(encodeChunk(reflstream.ChunkTYPE, typeChunk([2]int32{11, reflstream.FieldInt32}, [2]int32{12, reflstream.FieldInt32})))
	buf.Write(encodeChunk(reflstream.ChunkCLAS, i32le(classEmissive)))

	rootPayload := i32le(0) // class reference -> DBFileIndex
	rootPayload = append(rootPayload, encodeListField(classObjectInfo, objects...)...)
	rootPayload = append(rootPayload, encodeListField(classComponentInfo, components...)...)
	rootPayload = append(rootPayload, encodeListField(classEdgeInfo, edges...)...)
	buf.Write(encodeChunk(reflstream.ChunkOBJT, rootPayload))

	for _, c := range componentChunks {
		buf.Write(c)
	}
	return buf.Bytes()
}

func emissiveOBJT(sourceLayer, luminous int32) []byte {
	payload := i32le(classEmissive)
	payload = append(payload, i32le(sourceLayer)...)
	payload = append(payload, i32le(luminous)...)
	return encodeChunk(reflstream.ChunkOBJT, payload)
}

func emissiveLuminousDIFF(luminous int32) []byte {
	payload := i32le(classEmissive)
	payload = append(payload, u16le(1)...) // field index 1 = "luminous"
	payload = append(payload, i32le(luminous)...)
	payload = append(payload, u16le(2)...) // terminator: index >= field count (2)
	return encodeChunk(reflstream.ChunkDIFF, payload)
}

// TestLoadCDBFileMergesDiffOntoInheritedBaseValue is the maintainer's exact
// scenario: object A carries a full EmissiveSettingsComponent snapshot;
// object B derives from A via baseObjDbID and overrides only "luminous"
// with a DIFF. B's resolved component must read sourceLayer from A's
// snapshot and luminous from its own diff, not a partial struct missing
// sourceLayer (spec §3/§4.4, §9 property 6).
func TestLoadCDBFileMergesDiffOntoInheritedBaseValue(t *testing.T) {
	objA := encodeElement(classObjectInfo, objectInfoFields(1, 1, 0x1234, 1, 0, true))
	objB := encodeElement(classObjectInfo, objectInfoFields(2, 2, 0x1234, 2, 1, true))
	compA := encodeElement(classComponentInfo, componentInfoFields(1, 0))
	compB := encodeElement(classComponentInfo, componentInfoFields(2, 0))

	data := cdbFixture(
		[][]byte{objA, objB},
		[][]byte{compA, compB},
		nil,
		[][]byte{emissiveOBJT(2, 100), emissiveLuminousDIFF(200)},
	)

	db := NewDatabase()
	if err := db.LoadCDBFile(data); err != nil {
		t.Fatalf("LoadCDBFile: %v", err)
	}

	a, ok := db.Object(1)
	if !ok {
		t.Fatalf("object 1 (A) not found")
	}
	b, ok := db.Object(2)
	if !ok {
		t.Fatalf("object 2 (B) not found")
	}
	if b.BaseObject != a {
		t.Fatalf("B.BaseObject = %+v, want A", b.BaseObject)
	}

	var key ComponentKey
	for k := range b.Components {
		key = k
	}
	comp, ok := b.Components[key]
	if !ok {
		t.Fatalf("B has no resolved component")
	}
	sourceLayer, ok := comp.Value.Field("sourceLayer")
	if !ok || sourceLayer.I64 != 2 {
		t.Errorf("B.sourceLayer = %+v, %v, want Int32(2) inherited from A", sourceLayer, ok)
	}
	luminous, ok := comp.Value.Field("luminous")
	if !ok || luminous.I64 != 200 {
		t.Errorf("B.luminous = %+v, %v, want Int32(200) from the diff", luminous, ok)
	}
}

// TestLoadCDBFileBuildsParentChildGraphAcrossFiles is the spec §8 S4
// scenario: a first CDB file establishes the parent object; a second file,
// loaded into the same database, adds two children whose parent is set by
// an EdgeInfo record. GetNextChildObject must walk them depth-first in the
// (reversed, since edges prepend) insertion order.
func TestLoadCDBFileBuildsParentChildGraphAcrossFiles(t *testing.T) {
	objParent := encodeElement(classObjectInfo, objectInfoFields(1, 1, 0x1234, 1, 0, true))
	file1 := cdbFixture([][]byte{objParent}, nil, nil, nil)

	db := NewDatabase()
	if err := db.LoadCDBFile(file1); err != nil {
		t.Fatalf("LoadCDBFile(file1): %v", err)
	}

	objChild1 := encodeElement(classObjectInfo, objectInfoFields(2, 2, 0x1234, 2, 0, true))
	objChild2 := encodeElement(classObjectInfo, objectInfoFields(3, 3, 0x1234, 3, 0, true))
	edge1 := encodeElement(classEdgeInfo, edgeInfoFields(2, 1, 0, 0))
	edge2 := encodeElement(classEdgeInfo, edgeInfoFields(3, 1, 0, 0))
	file2 := cdbFixture([][]byte{objChild1, objChild2}, nil, [][]byte{edge1, edge2}, nil)

	if err := db.LoadCDBFile(file2); err != nil {
		t.Fatalf("LoadCDBFile(file2): %v", err)
	}

	parent, ok := db.Object(1)
	if !ok {
		t.Fatalf("parent object not found")
	}
	child1, _ := db.Object(2)
	child2, _ := db.Object(3)
	if child1.Parent != parent || child2.Parent != parent {
		t.Fatalf("child1.Parent=%+v child2.Parent=%+v, want both = parent", child1.Parent, child2.Parent)
	}

	// edge2 was linked last, so it was prepended last: children walks
	// child2 first, then child1.
	first := parent.GetNextChildObject()
	if first != child2 {
		t.Fatalf("GetNextChildObject() = %+v, want child2 (most recently linked)", first)
	}
	second := first.GetNextChildObject()
	if second != child1 {
		t.Fatalf("GetNextChildObject() = %+v, want child1", second)
	}
	if third := second.GetNextChildObject(); third != nil {
		t.Fatalf("GetNextChildObject() past the last child = %+v, want nil", third)
	}
}

func TestLoadCDBFileEdgeDuplicateParentErrors(t *testing.T) {
	objParent := encodeElement(classObjectInfo, objectInfoFields(1, 1, 0x1234, 1, 0, true))
	objOtherParent := encodeElement(classObjectInfo, objectInfoFields(4, 4, 0x1234, 3, 0, true))
	objChild := encodeElement(classObjectInfo, objectInfoFields(2, 2, 0x1234, 2, 0, true))
	edge1 := encodeElement(classEdgeInfo, edgeInfoFields(2, 1, 0, 0))
	edge2 := encodeElement(classEdgeInfo, edgeInfoFields(2, 3, 0, 0))

	data := cdbFixture([][]byte{objParent, objOtherParent, objChild}, nil, [][]byte{edge1, edge2}, nil)

	db := NewDatabase()
	if err := db.LoadCDBFile(data); err == nil {
		t.Fatal("LoadCDBFile() with a doubly-parented object = nil error, want an error")
	}
}
