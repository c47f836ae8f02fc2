package matdb

import (
	"fmt"
	"strings"
)

// DumpObject renders obj's resolved component tree as indented text, the
// Go equivalent of the original tool's mat_info/strt_find diagnostic dump
// mode (SUPPLEMENTED FEATURES, SPEC_FULL.md).
func (db *Database) DumpObject(obj *MaterialObject) string {
	var b strings.Builder
	fmt.Fprintf(&b, "object %08x (%s)\n", obj.ID, obj.Resource.String())
	if obj.BaseObject != nil {
		fmt.Fprintf(&b, "  base: %08x (%s)\n", obj.BaseObject.ID, obj.BaseObject.Resource.String())
	}

	comps := obj.AllComponents()
	for _, k := range sortedComponentKeys(obj) {
		c := comps[k]
		fmt.Fprintf(&b, "  component %s:\n", c.ClassName)
		dumpValue(&b, c.Value, 4)
	}
	return b.String()
}

func dumpValue(b *strings.Builder, v Value, indent int) {
	pad := strings.Repeat(" ", indent)
	switch v.Kind {
	case KindStruct, KindMap:
		for _, k := range v.Keys {
			fmt.Fprintf(b, "%s%s: %s\n", pad, k, v.Map[k].String())
		}
	case KindList:
		for i, item := range v.List {
			fmt.Fprintf(b, "%s[%d]: %s\n", pad, i, item.String())
		}
	default:
		fmt.Fprintf(b, "%s%s\n", pad, v.String())
	}
}
