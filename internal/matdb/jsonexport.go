package matdb

import (
	"sort"
	"strconv"
	"strings"
)

// GetJSONMaterial renders obj and every object in its family-graph subtree
// (BaseObject inheritance already applied per object via AllComponents) as
// the documented JSON material schema (spec §4.4 "get_json_material", §6
// "JSON material schema"): `{"Version":1,"Objects":[...]}`, one record per
// object walked depth-first through the Children/Next intrusive list. It
// uses the same hand-written writer jsonmat's reader is paired with rather
// than encoding/json, so ingest and export share one minimal JSON dialect.
func (db *Database) GetJSONMaterial(obj *MaterialObject) string {
	var b strings.Builder
	b.WriteString(`{"Version":1,"Objects":[`)
	for i, o := range subtree(obj) {
		if i > 0 {
			b.WriteByte(',')
		}
		writeJSONObjectRecord(&b, obj, o)
	}
	b.WriteString("]}")
	return b.String()
}

// subtree collects root and every descendant reachable through the
// Children/Next family-graph links, in depth-first order (spec §4.4
// "walks the material and all its children").
func subtree(root *MaterialObject) []*MaterialObject {
	out := []*MaterialObject{root}
	for c := root.Children; c != nil; c = c.Next {
		out = append(out, subtree(c)...)
	}
	return out
}

// writeJSONObjectRecord writes one Objects[] entry for o, part of the
// family-graph subtree rooted at root: "Parent" (the well-known root path,
// root entry only), "ID", "Components" (array of {Index,Type,Data}), and
// "Edges" (the single outer edge back to o's parent, using "<this>" when
// that parent is root itself).
//
// Spec §4.4 documents "ID" as optional on the root entry, recoverable
// instead from "the caller-supplied path if absent" (spec §4.5 step 2) -
// but jsonmat.LoadFile's signature takes only document bytes, with no path
// argument a caller could supply that through. Emitting "ID" on every
// entry, root included, is what makes get_json_material's output actually
// round-trip through the implemented ingest API (spec §8 property 8); this
// is a resolved Open Question, recorded in DESIGN.md.
func writeJSONObjectRecord(b *strings.Builder, root, o *MaterialObject) {
	b.WriteByte('{')
	wrote := false
	if o == root {
		if p, ok := WellKnownParent(o.Resource); ok && p != "" {
			b.WriteString(`"Parent":`)
			writeJSONString(b, p)
			wrote = true
		}
	}
	if wrote {
		b.WriteByte(',')
	}
	b.WriteString(`"ID":`)
	writeJSONString(b, o.Resource.String())
	wrote = true

	keys := sortedComponentKeys(o)
	if len(keys) > 0 {
		if wrote {
			b.WriteByte(',')
		}
		comps := o.AllComponents()
		b.WriteString(`"Components":[`)
		for i, key := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			c := comps[key]
			b.WriteString(`{"Index":`)
			b.WriteString(strconv.Itoa(int(key.Index())))
			b.WriteString(`,"Type":`)
			writeJSONString(b, c.ClassName)
			b.WriteString(`,"Data":`)
			writeJSONValue(b, c.Value)
			b.WriteByte('}')
		}
		b.WriteByte(']')
		wrote = true
	}

	if o != root && o.Parent != nil {
		if wrote {
			b.WriteByte(',')
		}
		b.WriteString(`"Edges":[{"EdgeIndex":0,"To":`)
		if o.Parent == root {
			writeJSONString(b, "<this>")
		} else {
			writeJSONString(b, o.Parent.Resource.String())
		}
		b.WriteString(`,"Type":"BSComponentDB2::OuterEdge"}]`)
	}
	b.WriteByte('}')
}

// sortedComponentKeys orders o's resolved component keys by class name then
// index, for deterministic output.
func sortedComponentKeys(o *MaterialObject) []ComponentKey {
	comps := o.AllComponents()
	keys := make([]ComponentKey, 0, len(comps))
	for k := range comps {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := comps[keys[i]], comps[keys[j]]
		if ci.ClassName != cj.ClassName {
			return ci.ClassName < cj.ClassName
		}
		return keys[i].Index() < keys[j].Index()
	})
	return keys
}

func writeJSONValue(b *strings.Builder, v Value) {
	switch v.Kind {
	case KindNull:
		b.WriteString("null")
	case KindString:
		writeJSONString(b, v.Str)
	case KindBool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindFloat32:
		b.WriteString(strconv.FormatFloat(float64(v.F32), 'g', -1, 32))
	case KindFloat64:
		b.WriteString(strconv.FormatFloat(v.F64, 'g', -1, 64))
	case KindInt8, KindInt16, KindInt32, KindInt64:
		b.WriteString(strconv.FormatInt(v.I64, 10))
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		b.WriteString(strconv.FormatUint(v.U64, 10))
	case KindRef, KindLink:
		writeJSONString(b, "res:"+strconv.FormatUint(uint64(v.Ref), 16))
	case KindList:
		b.WriteByte('[')
		for i, item := range v.List {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONValue(b, item)
		}
		b.WriteByte(']')
	case KindStruct, KindMap:
		b.WriteByte('{')
		for i, k := range v.Keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, k)
			b.WriteByte(':')
			writeJSONValue(b, v.Map[k])
		}
		b.WriteByte('}')
	}
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
