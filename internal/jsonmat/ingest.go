package jsonmat

import (
	"strconv"
	"strings"

	"github.com/ce2cdb/matcdb/internal/archive"
	"github.com/ce2cdb/matcdb/internal/matdb"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

// canonicalClassNames is the sorted class-name table "Type" fields are
// binary-searched against during ingestion (spec §4.5 step 3). It shares
// the same seed reflstream.canonicalStrings draws from in spirit, but
// jsonmat only needs membership, not a stable string-table index, so it
// keeps its own small sorted slice rather than importing reflstream.
var canonicalClassNames []string

func init() {
	canonicalClassNames = []string{
		"BSBind::ControllerComponent",
		"BSComponentDB2::ID",
		"BSMaterial::AlphaBlenderSettings",
		"BSMaterial::BlenderID",
		"BSMaterial::DecalSettingsComponent",
		"BSMaterial::DetailBlenderSettingsComponent",
		"BSMaterial::EffectSettingsComponent",
		"BSMaterial::EmissiveSettingsComponent",
		"BSMaterial::GlobalLayerDataComponent",
		"BSMaterial::LayerID",
		"BSMaterial::LayeredEdgeFalloffComponent",
		"BSMaterial::LayeredEmissivityComponent",
		"BSMaterial::LayeredMaterialID",
		"BSMaterial::MRTextureFile",
		"BSMaterial::MaterialID",
		"BSMaterial::MaterialOverrideColorTypeComponent",
		"BSMaterial::ShaderRouteComponent",
		"BSMaterial::TextureFile",
		"BSMaterial::TextureSetID",
		"BSMaterial::TranslucencySettingsComponent",
		"BSMaterial::UVStreamID",
		"BSMaterial::UVStreamParamBool",
		"BSMaterial::VegetationSettingsComponent",
		"BSMaterial::WaterFoamSettingsComponent",
		"BSMaterial::WaterGrimeSettingsComponent",
	}
	slices.Sort(canonicalClassNames)
}

// isKnownClass reports whether name is present in the canonical class-name
// table, the gate spec §4.5 step 3 applies before creating a component
// ("if unknown, skip").
func isKnownClass(name string) bool {
	_, ok := slices.BinarySearch(canonicalClassNames, name)
	return ok
}

// LoadFile parses a JSON material document and creates an object for every
// record whose "Parent" resolves (records with an unresolved parent are
// skipped), per spec §4.5's "Loading a material file" / "Merge into
// database". Only the created objects with no base object and a material
// extension are registered in db. It returns the newly created objects in
// document order.
func LoadFile(db *matdb.Database, data []byte) ([]*matdb.MaterialObject, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("jsonmat: %w", err)
	}
	version, ok := doc.Field("Version")
	if !ok || intOf(version) != 1 {
		return nil, xerrors.New("jsonmat: unsupported or missing \"Version\"")
	}
	objectsField, ok := doc.Field("Objects")
	if !ok || objectsField.Kind != matdb.KindList {
		return nil, xerrors.New("jsonmat: missing \"Objects\" array")
	}

	// loadMap tracks this document's own ID -> object mapping, independent
	// of the database's global byResource index, so step 5's cycle check
	// only has to walk parents created within this single load.
	loadMap := make(map[archive.ResourceID]*matdb.MaterialObject)
	var created []*matdb.MaterialObject

	for _, rec := range objectsField.List {
		obj, err := loadObject(db, loadMap, rec)
		if err != nil {
			return created, err
		}
		if obj == nil {
			continue // parent not found: skip, per spec §4.5 step 1
		}
		created = append(created, obj)
	}

	for _, obj := range created {
		if obj.BaseObject == nil && obj.Resource.Ext == archive.MaterialExt {
			db.AddObject(obj)
		}
	}
	return created, nil
}

func loadObject(db *matdb.Database, loadMap map[archive.ResourceID]*matdb.MaterialObject, rec matdb.Value) (*matdb.MaterialObject, error) {
	parentPath, _ := stringOf(rec, "Parent")
	var parent *matdb.MaterialObject
	if parentPath != "" {
		parentRes := archive.ResourceIDFromPath(parentPath)
		p, ok := db.FindMaterial(parentRes)
		if !ok {
			p, ok = lookupByPath(loadMap, parentPath)
		}
		if !ok {
			return nil, nil
		}
		parent = p
	}

	var res archive.ResourceID
	if idStr, ok := stringOf(rec, "ID"); ok && idStr != "" {
		if parsed, ok := archive.ParseResourceID(idStr); ok {
			res = parsed
		} else {
			res = archive.ResourceIDFromPath(idStr)
		}
	} else if parentPath != "" {
		res = archive.ResourceIDFromPath(parentPath)
	}

	obj := &matdb.MaterialObject{
		ID:                matdb.ObjectID(db.AllocateJSONID()),
		Resource:          res,
		BaseObject:        parent,
		Components:        make(map[matdb.ComponentKey]*matdb.MaterialComponent),
		ComponentsByClass: make(map[string][]*matdb.MaterialComponent),
		HasData:           true,
	}

	if compField, ok := rec.Field("Components"); ok && compField.Kind == matdb.KindList {
		for _, cv := range compField.List {
			if err := loadComponent(db, loadMap, obj, cv); err != nil {
				return nil, err
			}
		}
	}

	loadMap[res] = obj
	return obj, nil
}

func loadComponent(db *matdb.Database, loadMap map[archive.ResourceID]*matdb.MaterialObject, obj *matdb.MaterialObject, cv matdb.Value) error {
	className, _ := stringOf(cv, "Type")
	if !isKnownClass(className) {
		return nil // spec §4.5 step 3: unknown class, skip
	}
	idxField, _ := cv.Field("Index")
	index := uint16(intOf(idxField))

	dataField, ok := cv.Field("Data")
	if !ok {
		dataField = matdb.Value{Kind: matdb.KindStruct}
	}
	value, err := resolveValueLinks(db, loadMap, obj, dataField)
	if err != nil {
		return err
	}

	key := matdb.NewComponentKey(classSlotForName(className), index)
	comp, existing := obj.Components[key]
	if !existing {
		comp = &matdb.MaterialComponent{ClassName: className}
		obj.Components[key] = comp
		obj.ComponentsByClass[className] = append(obj.ComponentsByClass[className], comp)
	}
	comp.Value = value
	return nil
}

// resolveValueLinks walks v and rebuilds it, turning every string that
// parses as a "res:" ID into a Link value (step 5) when it names an object
// created earlier in this load (after a cycle check up owner's BaseObject
// chain) or a material already in db. Numbers, bools and all other strings
// are returned unchanged.
func resolveValueLinks(db *matdb.Database, loadMap map[archive.ResourceID]*matdb.MaterialObject, owner *matdb.MaterialObject, v matdb.Value) (matdb.Value, error) {
	switch v.Kind {
	case matdb.KindStruct, matdb.KindMap:
		out := make(map[string]matdb.Value, len(v.Map))
		for _, k := range v.Keys {
			child, err := resolveValueLinks(db, loadMap, owner, v.Map[k])
			if err != nil {
				return matdb.Value{}, err
			}
			out[k] = child
		}
		return matdb.StructValue(v.Keys, out), nil
	case matdb.KindList:
		out := make([]matdb.Value, len(v.List))
		for i, item := range v.List {
			child, err := resolveValueLinks(db, loadMap, owner, item)
			if err != nil {
				return matdb.Value{}, err
			}
			out[i] = child
		}
		return matdb.Value{Kind: matdb.KindList, List: out}, nil
	case matdb.KindString:
		if res, ok := archive.ParseResourceID(v.Str); ok {
			if target, ok := lookupByPath(loadMap, v.Str); ok {
				if err := checkParentCycle(owner, target); err != nil {
					return matdb.Value{}, err
				}
				return matdb.Value{Kind: matdb.KindLink, Ref: target.ID}, nil
			}
			if target, ok := db.FindMaterial(res); ok {
				return matdb.Value{Kind: matdb.KindLink, Ref: target.ID}, nil
			}
		}
		return v, nil
	default:
		return v, nil
	}
}

func checkParentCycle(owner, target *matdb.MaterialObject) error {
	for p := owner; p != nil; p = p.BaseObject {
		if p == target {
			return xerrors.New("jsonmat: cyclic parent reference")
		}
	}
	return nil
}

func lookupByPath(loadMap map[archive.ResourceID]*matdb.MaterialObject, path string) (*matdb.MaterialObject, bool) {
	res, ok := archive.ParseResourceID(path)
	if !ok {
		res = archive.ResourceIDFromPath(path)
	}
	obj, ok := loadMap[res]
	return obj, ok
}

// classSlotForName derives a class_id for className: its position in the
// sorted canonical class-name table, mirroring matdb.classSlot's "position in the stream's own class table"
// scheme but against jsonmat's fixed table, since a JSON document has no
// CLAS chunks of its own to number from.
func classSlotForName(className string) uint16 {
	i, ok := slices.BinarySearch(canonicalClassNames, className)
	if !ok {
		return 0xFFFF
	}
	return uint16(i)
}

func stringOf(v matdb.Value, field string) (string, bool) {
	f, ok := v.Field(field)
	if !ok {
		return "", false
	}
	return f.AsString()
}

// intOf accepts a JSON number or a numeric string (spec §4.5 step 4).
func intOf(v matdb.Value) int64 {
	switch v.Kind {
	case matdb.KindFloat64:
		return int64(v.F64)
	case matdb.KindFloat32:
		return int64(v.F32)
	case matdb.KindInt8, matdb.KindInt16, matdb.KindInt32, matdb.KindInt64:
		return v.I64
	case matdb.KindUInt8, matdb.KindUInt16, matdb.KindUInt32, matdb.KindUInt64:
		return int64(v.U64)
	case matdb.KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// boolOf accepts a JSON boolean, or "true"/"false"/"0" strings per spec
// §4.5 step 4.
func boolOf(v matdb.Value) bool {
	switch v.Kind {
	case matdb.KindBool:
		return v.Bool
	case matdb.KindString:
		switch v.Str {
		case "true":
			return true
		case "false", "0":
			return false
		}
	}
	return false
}
