package matdb

import (
	"github.com/ce2cdb/matcdb/internal/reflstream"
	"golang.org/x/xerrors"
)

// decodeObject is the generic, class-driven decoder every component and
// every nested struct field of a CDB stream goes through (JSON-ingested
// objects are built by jsonmat.Parse instead): it walks rec's field list using the shared GetFieldNumber
// cursor contract, decoding each field by its declared type, and always
// fully drains the chunk even when a field's class is unrecognized (spec
// §4.4 "always drain"; SPEC_FULL.md §9 records this single generic decoder
// as deliberately replacing a per-class reader-function table).
//
// base seeds the result with an already-materialized value to copy-on-write
// onto: when rec.IsDiff is set, the DIFF chunk touches only some of the
// class's fields, and every field base already carries must survive into
// the result untouched (spec §3/§4.4 "DIFF chunk field updates"; §9
// property 6). Callers that are decoding a full OBJT snapshot, or that have
// no prior value to merge onto, pass the zero Value.
func decodeObject(s *reflstream.Stream, rec *reflstream.ObjectRecord, base Value) (Value, error) {
	fields := rec.Class.Fields
	keys := make([]string, 0, len(fields))
	values := make(map[string]Value, len(fields))
	if base.Kind == KindStruct {
		keys = append(keys, base.Keys...)
		for k, v := range base.Map {
			values[k] = v
		}
	}

	cur := 0
	for {
		idx, ok := rec.Chunk.GetFieldNumber(cur, len(fields), rec.IsDiff)
		if !ok {
			break
		}
		fd := fields[idx]
		fieldBase := values[fd.Name]
		v, err := decodeTypedValue(s, rec.Chunk, fd.Type, fd.ClassName, fieldBase)
		if err != nil {
			return Value{}, xerrors.Errorf("matdb: class %s field %s: %w", rec.Class.Name, fd.Name, err)
		}
		if _, seen := values[fd.Name]; !seen {
			keys = append(keys, fd.Name)
		}
		values[fd.Name] = v
		if !rec.IsDiff {
			cur = idx + 1
		}
	}
	rec.Chunk.Skip()
	return StructValue(keys, values), nil
}

// decodeTypedValue decodes one value of the given field type, recursing
// into nested chunks for List/Map-valued fields and nested classes. base is
// only meaningful for a nested-class field (the default case below): it is
// that field's previously-decoded value, merged onto when the nested chunk
// is itself a DIFF (USRD).
func decodeTypedValue(s *reflstream.Stream, c *reflstream.Chunk, typeCode int32, className string, base Value) (Value, error) {
	switch typeCode {
	case reflstream.FieldNone:
		return NullValue(), nil
	case reflstream.FieldString:
		str, err := c.ReadString()
		return StringValue(str), err
	case reflstream.FieldBool:
		b, err := c.ReadBool()
		return BoolValue(b), err
	case reflstream.FieldInt8:
		v, err := c.ReadUInt8()
		return Int64Value(KindInt8, int64(int8(v))), err
	case reflstream.FieldUInt8:
		v, err := c.ReadUInt8()
		return UInt64Value(KindUInt8, uint64(v)), err
	case reflstream.FieldInt16:
		v, err := c.ReadUInt16()
		return Int64Value(KindInt16, int64(int16(v))), err
	case reflstream.FieldUInt16:
		v, err := c.ReadUInt16()
		return UInt64Value(KindUInt16, uint64(v)), err
	case reflstream.FieldInt32:
		v, err := c.ReadInt32()
		return Int64Value(KindInt32, int64(v)), err
	case reflstream.FieldUInt32:
		v, err := c.ReadUInt32()
		return UInt64Value(KindUInt32, uint64(v)), err
	case reflstream.FieldInt64:
		v, err := c.ReadInt64()
		return Int64Value(KindInt64, v), err
	case reflstream.FieldUInt64:
		v, err := c.ReadUInt64()
		return UInt64Value(KindUInt64, v), err
	case reflstream.FieldFloat:
		v, err := c.ReadFloat()
		return Float32Value(v), err
	case reflstream.FieldDouble:
		v, err := c.ReadDouble()
		return Float64Value(v), err
	case reflstream.FieldRef:
		return decodeRef(s, c)
	case reflstream.FieldList:
		return decodeList(s, c)
	case reflstream.FieldMap:
		return decodeMap(s, c)
	case reflstream.FieldUnknown:
		c.Skip()
		return NullValue(), nil
	default:
		return decodeNestedObject(s, c, className, base)
	}
}

func decodeRef(s *reflstream.Stream, c *reflstream.Chunk) (Value, error) {
	classIdx, err := c.ReadStringIndex()
	if err != nil {
		return Value{}, err
	}
	className := ""
	if s.Strings != nil {
		className, _ = s.Strings.Resolve(classIdx)
	}
	dbID, err := c.ReadUInt32()
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindRef, Ref: ObjectID(dbID), LinkClass: className}, nil
}

func decodeList(s *reflstream.Stream, c *reflstream.Chunk) (Value, error) {
	nested, err := c.ReadNested()
	if err != nil {
		return Value{}, err
	}
	elemType, err := nested.ReadInt32()
	if err != nil {
		return Value{}, err
	}
	elemClassName := ""
	if !isPrimitiveType(elemType) && s.Strings != nil {
		elemClassName, _ = s.Strings.Resolve(elemType)
	}
	count, err := nested.ReadUInt32()
	if err != nil {
		return Value{}, err
	}
	items := make([]Value, count)
	for i := range items {
		v, err := decodeTypedValue(s, nested, elemType, elemClassName, Value{})
		if err != nil {
			return Value{}, xerrors.Errorf("list element %d: %w", i, err)
		}
		items[i] = v
	}
	nested.Skip()
	return Value{Kind: KindList, List: items}, nil
}

func decodeMap(s *reflstream.Stream, c *reflstream.Chunk) (Value, error) {
	nested, err := c.ReadNested()
	if err != nil {
		return Value{}, err
	}
	keyType, err := nested.ReadInt32()
	if err != nil {
		return Value{}, err
	}
	valType, err := nested.ReadInt32()
	if err != nil {
		return Value{}, err
	}
	valClassName := ""
	if !isPrimitiveType(valType) && s.Strings != nil {
		valClassName, _ = s.Strings.Resolve(valType)
	}
	count, err := nested.ReadUInt32()
	if err != nil {
		return Value{}, err
	}
	keys := make([]string, count)
	values := make(map[string]Value, count)
	for i := uint32(0); i < count; i++ {
		kv, err := decodeTypedValue(s, nested, keyType, "", Value{})
		if err != nil {
			return Value{}, xerrors.Errorf("map key %d: %w", i, err)
		}
		vv, err := decodeTypedValue(s, nested, valType, valClassName, Value{})
		if err != nil {
			return Value{}, xerrors.Errorf("map value %d: %w", i, err)
		}
		k := kv.Str
		if kv.Kind != KindString {
			k = kv.String()
		}
		keys[i] = k
		values[k] = vv
	}
	nested.Skip()
	return Value{Kind: KindMap, Keys: keys, Map: values}, nil
}

func decodeNestedObject(s *reflstream.Stream, c *reflstream.Chunk, className string, base Value) (Value, error) {
	nested, err := c.ReadNested()
	if err != nil {
		return Value{}, err
	}
	isDiff := nested.Type == reflstream.ChunkUSRD
	rec, err := s.ReadNestedObject(nested, isDiff)
	if err != nil {
		return Value{}, err
	}
	if rec.Class.Name == "" {
		rec.Class = &reflstream.ClassDef{Name: className}
	}
	return decodeObject(s, rec, base)
}

func isPrimitiveType(t int32) bool {
	return t >= reflstream.FieldNone && t <= reflstream.FieldUnknown
}
