package jsonmat

import (
	"testing"

	"github.com/ce2cdb/matcdb/internal/archive"
	"github.com/ce2cdb/matcdb/internal/matdb"
)

// TestGetJSONMaterialRoundTripsThroughLoadFile is the maintainer's requested
// coverage for GetJSONMaterial's rewritten schema: render a material (plus a
// child reached through the family graph) to JSON, reload that JSON into a
// fresh database, and check the reloaded objects carry the same resource IDs
// and component field values (spec §8 property 8, "export then re-import
// yields an equal database").
func TestGetJSONMaterialRoundTripsThroughLoadFile(t *testing.T) {
	src := matdb.NewDatabase()

	root := &matdb.MaterialObject{
		ID:                src.AllocateJSONID(),
		Resource:          archive.ResourceID{Dir: 0x10, File: 0x20, Ext: archive.MaterialExt},
		Components:        make(map[matdb.ComponentKey]*matdb.MaterialComponent),
		ComponentsByClass: make(map[string][]*matdb.MaterialComponent),
		HasData:           true,
	}
	rootKey := matdb.NewComponentKey(1, 0)
	root.Components[rootKey] = &matdb.MaterialComponent{
		ClassName: "BSMaterial::MaterialID",
		Value:     matdb.StructValue([]string{"shaderModel"}, map[string]matdb.Value{"shaderModel": matdb.StringValue("PBR")}),
	}
	src.AddObject(root)

	child := &matdb.MaterialObject{
		ID:                src.AllocateJSONID(),
		Resource:          archive.ResourceID{Dir: 0x11, File: 0x21, Ext: archive.MaterialExt},
		Parent:            root,
		Components:        make(map[matdb.ComponentKey]*matdb.MaterialComponent),
		ComponentsByClass: make(map[string][]*matdb.MaterialComponent),
		HasData:           true,
	}
	childKey := matdb.NewComponentKey(2, 0)
	child.Components[childKey] = &matdb.MaterialComponent{
		ClassName: "BSMaterial::EmissiveSettingsComponent",
		Value:     matdb.StructValue([]string{"luminous"}, map[string]matdb.Value{"luminous": matdb.Int64Value(matdb.KindInt32, 200)}),
	}
	root.Children = child
	src.AddObject(child)

	doc := src.GetJSONMaterial(root)

	dst := matdb.NewDatabase()
	created, err := LoadFile(dst, []byte(doc))
	if err != nil {
		t.Fatalf("LoadFile(GetJSONMaterial() output): %v, doc=%s", err, doc)
	}
	if len(created) != 2 {
		t.Fatalf("LoadFile() created %d objects, want 2 (root + child); doc=%s", len(created), doc)
	}

	gotRoot, ok := dst.FindMaterial(root.Resource)
	if !ok {
		t.Fatalf("reloaded database has no material at root's resource ID")
	}
	rootComps := gotRoot.ComponentsByClass["BSMaterial::MaterialID"]
	if len(rootComps) != 1 {
		t.Fatalf("reloaded root has %d BSMaterial::MaterialID components, want 1", len(rootComps))
	}
	if v, ok := rootComps[0].Value.Field("shaderModel"); !ok || v.Str != "PBR" {
		t.Errorf("reloaded root.shaderModel = %+v, %v, want \"PBR\"", v, ok)
	}

	var gotChild *matdb.MaterialObject
	for _, c := range created {
		if c.Resource == child.Resource {
			gotChild = c
		}
	}
	if gotChild == nil {
		t.Fatalf("reloaded database has no object at child's resource ID; doc=%s", doc)
	}
	childComps := gotChild.ComponentsByClass["BSMaterial::EmissiveSettingsComponent"]
	if len(childComps) != 1 {
		t.Fatalf("reloaded child has %d BSMaterial::EmissiveSettingsComponent components, want 1", len(childComps))
	}
	luminous, ok := childComps[0].Value.Field("luminous")
	if !ok {
		t.Fatalf("reloaded child component has no \"luminous\" field")
	}
	if got, _ := luminous.AsFloat32(); got != 200 {
		t.Errorf("reloaded child.luminous = %v, want 200", got)
	}
}
