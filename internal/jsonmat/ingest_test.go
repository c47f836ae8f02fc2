package jsonmat

import (
	"testing"

	"github.com/ce2cdb/matcdb/internal/archive"
	"github.com/ce2cdb/matcdb/internal/matdb"
)

func TestLoadFileCreatesObjectAndRegistersMaterial(t *testing.T) {
	db := matdb.NewDatabase()
	data := `{"Version":1,"Objects":[{"ID":"materials/x.mat","Components":[` +
		`{"Type":"BSMaterial::MaterialID","Index":0,"Data":{"shaderModel":"PBR"}}]}]}`

	objs, err := LoadFile(db, []byte(data))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(objs) != 1 {
		t.Fatalf("len(objs) = %d, want 1", len(objs))
	}

	obj := objs[0]
	wantRes := archive.ResourceIDFromPath("materials/x.mat")
	if obj.Resource != wantRes {
		t.Errorf("Resource = %+v, want %+v", obj.Resource, wantRes)
	}

	comps := obj.ComponentsByClass["BSMaterial::MaterialID"]
	if len(comps) != 1 {
		t.Fatalf("len(ComponentsByClass[...]) = %d, want 1", len(comps))
	}
	model, ok := comps[0].Value.Field("shaderModel")
	if !ok {
		t.Fatal("component Data missing field shaderModel")
	}
	if s, _ := model.AsString(); s != "PBR" {
		t.Errorf("shaderModel = %q, want %q", s, "PBR")
	}

	got, ok := db.FindMaterial(obj.Resource)
	if !ok || got != obj {
		t.Error("LoadFile did not register the top-level .mat object in the database")
	}
}

func TestLoadFileRejectsMissingVersion(t *testing.T) {
	db := matdb.NewDatabase()
	if _, err := LoadFile(db, []byte(`{"Objects":[]}`)); err == nil {
		t.Fatal("LoadFile with no Version succeeded, want error")
	}
}

func TestLoadFileRejectsUnsupportedVersion(t *testing.T) {
	db := matdb.NewDatabase()
	if _, err := LoadFile(db, []byte(`{"Version":2,"Objects":[]}`)); err == nil {
		t.Fatal("LoadFile with Version 2 succeeded, want error")
	}
}

func TestLoadFileRejectsMissingObjects(t *testing.T) {
	db := matdb.NewDatabase()
	if _, err := LoadFile(db, []byte(`{"Version":1}`)); err == nil {
		t.Fatal("LoadFile with no Objects array succeeded, want error")
	}
}

func TestLoadFileUnknownComponentClassIsSkipped(t *testing.T) {
	db := matdb.NewDatabase()
	data := `{"Version":1,"Objects":[{"ID":"materials/y.mat","Components":[` +
		`{"Type":"Totally::Unknown","Index":0,"Data":{}}]}]}`
	objs, err := LoadFile(db, []byte(data))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(objs[0].Components) != 0 {
		t.Errorf("len(Components) = %d, want 0 (unknown class skipped)", len(objs[0].Components))
	}
}

func TestLoadFileSkipsObjectWithUnresolvedParent(t *testing.T) {
	db := matdb.NewDatabase()
	data := `{"Version":1,"Objects":[{"ID":"materials/child.mat","Parent":"materials/missing_parent.mat"}]}`
	objs, err := LoadFile(db, []byte(data))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(objs) != 0 {
		t.Errorf("len(objs) = %d, want 0 (parent unresolved, object skipped)", len(objs))
	}
}

func TestLoadFileResolvesParentWithinSameDocument(t *testing.T) {
	db := matdb.NewDatabase()
	data := `{"Version":1,"Objects":[` +
		`{"ID":"materials/root.mat"},` +
		`{"ID":"materials/child.mat","Parent":"materials/root.mat"}` +
		`]}`
	objs, err := LoadFile(db, []byte(data))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("len(objs) = %d, want 2", len(objs))
	}
	child := objs[1]
	if child.BaseObject != objs[0] {
		t.Error("child's BaseObject does not point at the same-document root")
	}
}

func TestLoadFileOnlyRegistersRootObjectsAsMaterials(t *testing.T) {
	db := matdb.NewDatabase()
	data := `{"Version":1,"Objects":[` +
		`{"ID":"materials/root.mat"},` +
		`{"ID":"materials/child.mat","Parent":"materials/root.mat"}` +
		`]}`
	objs, err := LoadFile(db, []byte(data))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := db.FindMaterial(objs[0].Resource); !ok {
		t.Error("root object (no BaseObject) should be registered as a material")
	}
	if _, ok := db.FindMaterial(objs[1].Resource); ok {
		t.Error("derived object (has BaseObject) should not be separately registered as a material")
	}
}

func TestIsKnownClass(t *testing.T) {
	if !isKnownClass("BSMaterial::MaterialID") {
		t.Error("isKnownClass(BSMaterial::MaterialID) = false, want true")
	}
	if isKnownClass("Nonexistent::Class") {
		t.Error("isKnownClass(Nonexistent::Class) = true, want false")
	}
}

func TestClassSlotForNameMatchesSortedPosition(t *testing.T) {
	a := classSlotForName("BSBind::ControllerComponent")
	b := classSlotForName("BSComponentDB2::ID")
	if a >= b {
		t.Errorf("classSlotForName should follow sorted table order: got %d, %d", a, b)
	}
	if classSlotForName("Nonexistent::Class") != 0xFFFF {
		t.Error("classSlotForName(unknown) should return 0xFFFF")
	}
}

func TestIntOfAcceptsNumberOrNumericString(t *testing.T) {
	if intOf(matdb.Int64Value(matdb.KindInt32, 5)) != 5 {
		t.Error("intOf(Int32(5)) != 5")
	}
	if intOf(matdb.Float64Value(3.9)) != 3 {
		t.Error("intOf(Float64(3.9)) != 3 (want truncation)")
	}
	if intOf(matdb.StringValue("12")) != 12 {
		t.Error("intOf(\"12\") != 12")
	}
	if intOf(matdb.StringValue("garbage")) != 0 {
		t.Error("intOf(\"garbage\") != 0")
	}
}

func TestBoolOfAcceptsBoolOrStringForms(t *testing.T) {
	if !boolOf(matdb.BoolValue(true)) {
		t.Error("boolOf(true) != true")
	}
	if !boolOf(matdb.StringValue("true")) {
		t.Error("boolOf(\"true\") != true")
	}
	if boolOf(matdb.StringValue("false")) {
		t.Error("boolOf(\"false\") != false")
	}
	if boolOf(matdb.StringValue("0")) {
		t.Error("boolOf(\"0\") != false")
	}
}

func TestResolveValueLinksResolvesLinkToExistingMaterial(t *testing.T) {
	db := matdb.NewDatabase()
	target := &matdb.MaterialObject{
		ID:         db.AllocateJSONID(),
		Resource:   archive.ResourceIDFromPath("materials/target.mat"),
		Components: make(map[matdb.ComponentKey]*matdb.MaterialComponent),
	}
	db.AddObject(target)

	owner := &matdb.MaterialObject{ID: db.AllocateJSONID()}
	v, err := resolveValueLinks(db, nil, owner, matdb.StringValue(target.Resource.String()))
	if err != nil {
		t.Fatalf("resolveValueLinks: %v", err)
	}
	if v.Kind != matdb.KindLink || v.Ref != target.ID {
		t.Errorf("resolveValueLinks() = %+v, want a link to %d", v, target.ID)
	}
}

func TestResolveValueLinksDetectsCycle(t *testing.T) {
	a := &matdb.MaterialObject{ID: 1, Resource: archive.ResourceIDFromPath("materials/a.mat")}
	b := &matdb.MaterialObject{ID: 2, Resource: archive.ResourceIDFromPath("materials/b.mat"), BaseObject: a}

	if err := checkParentCycle(b, b); err == nil {
		t.Fatal("checkParentCycle(b, b) succeeded, want a cycle error")
	}
	if err := checkParentCycle(b, a); err == nil {
		t.Fatal("checkParentCycle(b, a) succeeded, want a cycle error (a is b's own base)")
	}
}

func TestLookupByPathFindsLoadMapEntry(t *testing.T) {
	res := archive.ResourceIDFromPath("materials/z.mat")
	obj := &matdb.MaterialObject{ID: 1, Resource: res}
	loadMap := map[archive.ResourceID]*matdb.MaterialObject{res: obj}

	got, ok := lookupByPath(loadMap, "materials/z.mat")
	if !ok || got != obj {
		t.Errorf("lookupByPath() = %+v, %v, want the loaded object", got, ok)
	}
	if _, ok := lookupByPath(loadMap, "materials/missing.mat"); ok {
		t.Error("lookupByPath() found an entry that was never loaded")
	}
}
