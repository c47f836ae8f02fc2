package matdb

import (
	"sort"

	"github.com/ce2cdb/matcdb/internal/archive"
	"github.com/ce2cdb/matcdb/internal/reflstream"
	"golang.org/x/xerrors"
)

const dbFileIndexClass = "BSComponentDB2::DBFileIndex"

// Database is the component graph a set of CDB files and/or JSON ingests
// populate: every MaterialObject keyed by its dbID, plus the ResourceID ->
// dbID lookup spec §4.4's findMaterial needs.
type Database struct {
	objects   map[ObjectID]*MaterialObject
	byResource map[archive.ResourceID]ObjectID
	nextJSONID ObjectID
}

// NewDatabase returns an empty component database.
func NewDatabase() *Database {
	return &Database{
		objects:    make(map[ObjectID]*MaterialObject),
		byResource: make(map[archive.ResourceID]ObjectID),
		nextJSONID: 0x01000000, // spec §4.5: JSON-ingested db_ids start here
	}
}

// LoadCDBFile ingests one reflection-stream CDB file: its root
// BSComponentDB2::DBFileIndex object (the ObjectInfo/ComponentInfo/EdgeInfo
// tables) and the per-component OBJT/DIFF chunks that follow it, in the
// exact order the index's ComponentInfo list enumerates them (spec §4.4
// "CDB ingest").
func (db *Database) LoadCDBFile(data []byte) error {
	stream, err := reflstream.Parse(data)
	if err != nil {
		return xerrors.Errorf("matdb: %w", err)
	}
	if len(stream.Objects) == 0 {
		return xerrors.New("matdb: CDB file has no objects")
	}

	root := stream.Objects[0]
	if root.Class.Name != dbFileIndexClass {
		return xerrors.Errorf("matdb: expected root object %s, got %s", dbFileIndexClass, root.Class.Name)
	}
	rootVal, err := decodeObject(stream, root, Value{})
	if err != nil {
		return xerrors.Errorf("matdb: decoding DBFileIndex: %w", err)
	}

	objectInfos := listField(rootVal, "Objects")
	componentInfos := listField(rootVal, "Components")
	edgeInfos := listField(rootVal, "Edges")

	// Pass 1: materialize every MaterialObject so base-object references
	// (which may point forward) always resolve.
	for _, oi := range objectInfos {
		dbID := ObjectID(mustU64(oi, "dbID"))
		obj := &MaterialObject{
			ID: dbID,
			Resource: archive.ResourceID{
				Dir:  uint32(mustU64(oi, "dir")),
				File: uint32(mustU64(oi, "file")),
				Ext:  uint32(mustU64(oi, "ext")),
			},
			Components:        make(map[ComponentKey]*MaterialComponent),
			ComponentsByClass: make(map[string][]*MaterialComponent),
			HasData:           mustBool(oi, "hasData"),
		}
		db.objects[dbID] = obj
		db.byResource[obj.Resource] = dbID
	}
	for _, oi := range objectInfos {
		dbID := ObjectID(mustU64(oi, "dbID"))
		baseID := ObjectID(mustU64(oi, "baseObjDbID"))
		if baseID == 0 {
			continue
		}
		if base, ok := db.objects[baseID]; ok {
			db.objects[dbID].BaseObject = base
		}
	}

	// Pass 2: attach each following OBJT/DIFF chunk to the object and
	// component-class slot its ComponentInfo entry names, in stream order.
	remaining := stream.Objects[1:]
	if len(remaining) < len(componentInfos) {
		return xerrors.Errorf("matdb: DBFileIndex names %d components but only %d chunks follow", len(componentInfos), len(remaining))
	}
	for i, ci := range componentInfos {
		ownerID := ObjectID(mustU64(ci, "dbID"))
		compIndex := uint16(mustU64(ci, "index"))

		rec := remaining[i]
		className := rec.Class.Name
		classID := classSlot(stream, className)

		owner, ok := db.objects[ownerID]
		if !ok {
			continue // orphaned component: object table is malformed, drop and keep draining
		}
		key := NewComponentKey(classID, compIndex)

		// A DIFF chunk only carries the fields it touched; it must be
		// merged onto whatever value this slot already resolves to (this
		// object's own prior snapshot, or the one it inherits from
		// BaseObject), not replace it outright (spec §3/§4.4 "copy-on-write
		// from base", §9 property 6).
		base := Value{}
		if rec.IsDiff {
			if existing, ok := owner.Components[key]; ok {
				base = existing.Value
			} else if existing := owner.Component(key); existing != nil {
				base = existing.Value
			}
		}
		val, err := decodeObject(stream, rec, base)
		if err != nil {
			return xerrors.Errorf("matdb: component %d (%s): %w", i, className, err)
		}
		comp := &MaterialComponent{ClassName: className, Value: val}
		owner.Components[key] = comp
		owner.ComponentsByClass[className] = append(owner.ComponentsByClass[className], comp)
	}

	// Link the family graph: for each (source, target) edge, source's
	// parent becomes target and source is prepended into target's own
	// child list (spec §4.4's EdgeInfo rule; bsmatcdb.cpp's readAllChunks).
	for _, ei := range edgeInfos {
		sourceID := ObjectID(mustU64(ei, "sourceID"))
		targetID := ObjectID(mustU64(ei, "targetID"))
		src, srcOK := db.objects[sourceID]
		tgt, tgtOK := db.objects[targetID]
		if !srcOK || !tgtOK {
			continue
		}
		if src.Parent != nil {
			return xerrors.Errorf("matdb: object %d has multiple parents in material database", sourceID)
		}
		src.Parent = tgt
		src.Next = tgt.Children
		tgt.Children = src
	}
	return nil
}

// classSlot derives a stable per-stream small integer for a class name by
// its position in the stream's own class table, used as ComponentKey's
// class_id half. It is a simplification over the original's compile-time
// class-id enum (SPEC_FULL.md §9): the key scheme (class_id<<16|index) is
// preserved, only the numbering source differs, and it is only ever
// compared within the same object's component map, never persisted.
func classSlot(s *reflstream.Stream, className string) uint16 {
	names := make([]string, 0, len(s.Classes))
	for n := range s.Classes {
		names = append(names, n)
	}
	sort.Strings(names)
	for i, n := range names {
		if n == className {
			return uint16(i)
		}
	}
	return 0xFFFF
}

func listField(v Value, name string) []Value {
	f, ok := v.Field(name)
	if !ok || f.Kind != KindList {
		return nil
	}
	return f.List
}

func mustU64(v Value, field string) uint64 {
	f, ok := v.Field(field)
	if !ok {
		return 0
	}
	switch f.Kind {
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return f.U64
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return uint64(f.I64)
	}
	return 0
}

func mustBool(v Value, field string) bool {
	f, ok := v.Field(field)
	if !ok {
		return false
	}
	b, _ := f.AsBool()
	return b
}

// Object looks up an object by its internal id.
func (db *Database) Object(id ObjectID) (*MaterialObject, bool) {
	o, ok := db.objects[id]
	return o, ok
}

// FindMaterial resolves a material root by its ResourceID (spec §4.4
// "findMaterial"). Only objects whose extension code is a material root
// (archive.MaterialExt) are meaningful results, but lookup itself is
// generic over any resource.
func (db *Database) FindMaterial(id archive.ResourceID) (*MaterialObject, bool) {
	dbID, ok := db.byResource[id]
	if !ok {
		return nil, false
	}
	return db.Object(dbID)
}

// GetMaterials returns every object tagged as a material root, sorted by
// ResourceID (spec §4.4 "GetMaterials").
func (db *Database) GetMaterials() []*MaterialObject {
	var out []*MaterialObject
	for _, o := range db.objects {
		if o.Resource.Ext == archive.MaterialExt {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource.Less(out[j].Resource) })
	return out
}

// AllocateJSONID returns the next available db_id in the JSON-ingestion
// reserved range (spec §4.5), advancing the internal counter.
func (db *Database) AllocateJSONID() ObjectID {
	id := db.nextJSONID
	db.nextJSONID++
	return id
}

// AddObject registers a freshly allocated object (from JSON ingestion or a
// CDB file's own object table) in the database.
func (db *Database) AddObject(o *MaterialObject) {
	db.objects[o.ID] = o
	db.byResource[o.Resource] = o.ID
}
