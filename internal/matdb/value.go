// Package matdb implements layer L3a, the component database: the
// ResourceId-keyed object graph that a decoded CDB file (or a JSON
// ingestion, layer L3b) populates, and the typed material views projected
// out of it (spec §2, §3, §4.4).
package matdb

import "fmt"

// Kind tags a CdbValue's active field, mirroring the closed sum spec §3
// and spec §9 describe rather than an open interface{} tree.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindList
	KindMap
	KindRef
	KindInt8
	KindUInt8
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindBool
	KindFloat32
	KindFloat64
	KindStruct
	KindLink
)

// Value is the tagged-union tree every decoded component (and every JSON
// object) is represented as before a typed projection reads specific
// fields out of it (spec §9's generic-decode design, SPEC_FULL.md §9).
type Value struct {
	Kind Kind

	Str  string
	I64  int64
	U64  uint64
	F32  float32
	F64  float64
	Bool bool

	List []Value
	// Map holds both CdbValue "Map" fields (arbitrary key/value pairs) and
	// "Struct" fields (named fields of a class instance); Keys preserves
	// declaration/insertion order since map iteration order is undefined.
	Map  map[string]Value
	Keys []string

	// Ref/Link carry an object reference. Ref is the target's ObjectID, the
	// key Database.Object looks it up by (spec §3 "Ref"); LinkClass, when
	// set, is the class name a resolveLink type-check validates against
	// (SUPPLEMENTED FEATURES, from ComponentInfo::readBSComponentDB2ID).
	Ref       ObjectID
	LinkClass string
}

// ObjectID is the component database's internal object identifier: either
// a db_id allocated during JSON ingestion (>= 0x01000000, spec §4.5) or an
// id assigned while decoding a CDB file's ObjectInfo table.
type ObjectID uint32

func NullValue() Value { return Value{Kind: KindNull} }

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func Int64Value(k Kind, v int64) Value { return Value{Kind: k, I64: v} }

func UInt64Value(k Kind, v uint64) Value { return Value{Kind: k, U64: v} }

func Float32Value(v float32) Value { return Value{Kind: KindFloat32, F32: v} }

func Float64Value(v float64) Value { return Value{Kind: KindFloat64, F64: v} }

// StructValue builds a Struct-kind Value, preserving field order.
func StructValue(keys []string, fields map[string]Value) Value {
	return Value{Kind: KindStruct, Keys: keys, Map: fields}
}

// Field looks up a named field of a Struct or Map value.
func (v Value) Field(name string) (Value, bool) {
	if v.Map == nil {
		return Value{}, false
	}
	f, ok := v.Map[name]
	return f, ok
}

// AsFloat32 coerces any numeric kind to float32, for typed-projection
// readers that don't care about the exact source width (spec §4.4 field
// readers like readFloat/readFloat0To1 already normalize on read).
func (v Value) AsFloat32() (float32, bool) {
	switch v.Kind {
	case KindFloat32:
		return v.F32, true
	case KindFloat64:
		return float32(v.F64), true
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return float32(v.I64), true
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return float32(v.U64), true
	}
	return 0, false
}

func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.Str, true
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case KindFloat32:
		return fmt.Sprintf("%g", v.F32)
	case KindFloat64:
		return fmt.Sprintf("%g", v.F64)
	case KindList:
		return fmt.Sprintf("list(%d)", len(v.List))
	case KindStruct, KindMap:
		return fmt.Sprintf("struct(%d fields)", len(v.Keys))
	case KindRef, KindLink:
		return fmt.Sprintf("ref(%08x)", v.Ref)
	default:
		return fmt.Sprintf("int(%d/%d)", v.I64, v.U64)
	}
}
