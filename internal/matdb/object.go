package matdb

import "github.com/ce2cdb/matcdb/internal/archive"

// ComponentKey packs a component's class id and its index within that
// class into the single key MaterialObject.Components is addressed by,
// exactly as spec §3 describes: "(class_id<<16)|index".
type ComponentKey uint32

func NewComponentKey(classID, index uint16) ComponentKey {
	return ComponentKey(uint32(classID)<<16 | uint32(index))
}

func (k ComponentKey) ClassID() uint16 { return uint16(k >> 16) }
func (k ComponentKey) Index() uint16   { return uint16(k) }

// MaterialComponent is one decoded component instance attached to an
// object: its class name, its fully materialized field tree, and the next
// link in its class's chain (spec §3 "MaterialComponent linked lists").
// The chain is a textural nod to the original hash-bucket layout; Database
// also indexes components directly by ComponentKey for O(1) lookup.
type MaterialComponent struct {
	ClassName string
	Value     Value
	Next      *MaterialComponent
}

// MaterialObject is one node of the component graph: a dbID, an optional
// copy-on-write base object it inherits unset components from, and its own
// component table (spec §3 "MaterialObject", §4.4 "inheritance").
//
// Parent/Children/Next form the intrusive family graph EdgeInfo records
// build (spec §3, §4.4): Children is the head of this object's own child
// list, Next its next sibling within that list. Edges are always prepended
// (bsmatcdb.cpp's readAllChunks: "o->next = p->children; p->children = o"),
// so Children walks its siblings in reverse link order.
type MaterialObject struct {
	ID         ObjectID
	Resource   archive.ResourceID
	BaseObject *MaterialObject
	Parent     *MaterialObject
	Children   *MaterialObject
	Next       *MaterialObject
	Components map[ComponentKey]*MaterialComponent

	// ComponentsByClass indexes the same components by class name, since
	// ComponentKey's class_id half is only stable within the CDB file that
	// produced it (see classSlot in database.go); the typed projection
	// pass (material.go, projection.go) reads through this index instead.
	ComponentsByClass map[string][]*MaterialComponent

	// HasData mirrors the ObjectInfo record's hasData flag: false means
	// this object is a pure alias of BaseObject with no components of its
	// own (spec §4.4's 33-byte ObjectInfo schema edge case).
	HasData bool
}

// Component resolves a component by key, following BaseObject when this
// object doesn't override it, per the copy-on-write inheritance contract.
// BSBind::ControllerComponent is deliberately never inherited: per the
// original reader, controller bindings on a base object never apply to a
// derived one, so a copy always starts uncontrolled (spec §4.4's
// "ControllerComponent neutralized on copy").
func (o *MaterialObject) Component(key ComponentKey) *MaterialComponent {
	if c, ok := o.Components[key]; ok {
		return c
	}
	if o.BaseObject == nil {
		return nil
	}
	if classNameIsControllerComponent(o.BaseObject.classNameFor(key)) {
		return nil
	}
	return o.BaseObject.Component(key)
}

func (o *MaterialObject) classNameFor(key ComponentKey) string {
	if c, ok := o.Components[key]; ok {
		return c.ClassName
	}
	if o.BaseObject != nil {
		return o.BaseObject.classNameFor(key)
	}
	return ""
}

// GetNextChildObject walks the family graph depth-first, in the insertion
// order EdgeInfo linking produced: descend into this object's own children
// first, otherwise climb the parent chain until a next sibling is found.
// Grounded directly on bsmatcdb.hpp's MaterialObject::getNextChildObject.
func (o *MaterialObject) GetNextChildObject() *MaterialObject {
	if o.Children != nil {
		return o.Children
	}
	i := o
	for i.Next == nil && i.Parent != nil {
		i = i.Parent
	}
	return i.Next
}

func classNameIsControllerComponent(name string) bool {
	return name == "BSBind::ControllerComponent"
}

// AllComponents walks this object's own components, then its base chain's
// unshadowed components, yielding the same resolved view Component(key)
// would for each key (used by DumpObject).
func (o *MaterialObject) AllComponents() map[ComponentKey]*MaterialComponent {
	out := make(map[ComponentKey]*MaterialComponent)
	for obj := o; obj != nil; obj = obj.BaseObject {
		for k, c := range obj.Components {
			if _, seen := out[k]; seen {
				continue
			}
			if obj != o && classNameIsControllerComponent(c.ClassName) {
				continue
			}
			out[k] = c
		}
	}
	return out
}
