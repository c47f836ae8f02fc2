package reflstream

import (
	"strconv"

	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

// canonicalStrings is the well-known subset of the fixed, compiled-in
// dictionary every BSReflStream can reference by negative index instead of
// repeating the string in its own STRT chunk. The full dictionary runs to
// roughly 1150 entries in the original tool; only the class and primitive
// names this module actually projects fields from are seeded here. It is
// deliberately treated as open, append-only data (spec §9 "do not guess"):
// an unrecognized negative index still decodes, it just renders as
// "str:-N" instead of a name (see StringTable.Resolve).
var canonicalStrings = []string{
	"BSBind::ControllerComponent",
	"BSBind::Multiplex",
	"BSBind::TimerController",
	"BSBind::Float2DCurveController",
	"BSBind::Float3DCurveController",
	"BSBind::DirectoryComponent",
	"BSComponentDB2::ID",
	"BSComponentDB2::DBFileIndex::ObjectInfo",
	"BSComponentDB2::DBFileIndex::ComponentInfo",
	"BSComponentDB2::DBFileIndex::EdgeInfo",
	"BSMaterial::MaterialDB",
	"BSMaterial::Channel",
	"BSMaterial::BlendMode",
	"BSMaterial::MaterialOverrideColorTypeComponent",
	"BSMaterial::TextureResolutionSetting",
	"BSMaterial::TextureSetID",
	"BSMaterial::TextureSetKindEnum",
	"BSMaterial::TextureFile",
	"BSMaterial::TextureAddressModeComponent",
	"BSMaterial::MRTextureFile",
	"BSMaterial::UVStreamID",
	"BSMaterial::UVStreamParamBool",
	"BSMaterial::LayerID",
	"BSMaterial::LayeredMaterialID",
	"BSMaterial::LayerableMaterialID",
	"BSMaterial::BlenderID",
	"BSMaterial::MaterialParamFloat",
	"BSMaterial::ColorChannelTypeComponent",
	"BSMaterial::MouseAdjustableValue",
	"BSMaterial::ParamBool",
	"BSMaterial::VegetationSettingsComponent",
	"BSMaterial::TranslucencySettingsComponent",
	"BSMaterial::DecalSettingsComponent",
	"BSMaterial::EffectSettingsComponent",
	"BSMaterial::EmissiveSettingsComponent",
	"BSMaterial::LayeredEmissivityComponent",
	"BSMaterial::DetailBlenderSettingsComponent",
	"BSMaterial::LayeredEdgeFalloffComponent",
	"BSMaterial::WaterFoamSettingsComponent",
	"BSMaterial::WaterGrimeSettingsComponent",
	"BSMaterial::GlobalLayerDataComponent",
	"BSMaterial::AlphaBlenderSettings",
	"BSMaterial::MaterialID",
	"BSMaterial::TerrainTintSettingsComponent",
	"BSMaterial::BlendParamFloat",
	"BSFloatCurve",
	"BSColorCurve",
	"XMFLOAT2",
	"XMFLOAT3",
	"XMFLOAT4",
}

// StringTable resolves field-name and enum-value indices to their string,
// combining a per-stream STRT table (positive indices) with the canonical
// fixed dictionary (negative indices), per spec §4.3 "string interning".
type StringTable struct {
	local []string
}

// NewStringTable wraps the strings a stream's own STRT chunk listed.
func NewStringTable(local []string) *StringTable {
	return &StringTable{local: local}
}

// Resolve returns the string named by idx: idx >= 0 indexes into the
// stream-local table, idx < 0 indexes (as -idx-1) into the canonical table.
func (t *StringTable) Resolve(idx int32) (string, error) {
	if idx >= 0 {
		if int(idx) >= len(t.local) {
			return "", xerrors.Errorf("reflstream: string index %d out of range (local table has %d entries)", idx, len(t.local))
		}
		return t.local[idx], nil
	}
	pos := int(-idx - 1)
	if pos < 0 || pos >= len(canonicalStrings) {
		return unknownCanonicalString(idx), nil
	}
	return canonicalStrings[pos], nil
}

func unknownCanonicalString(idx int32) string {
	return "str:" + strconv.FormatInt(int64(idx), 10)
}

// FindString does a reverse lookup: canonical-table string -> its negative
// index, used by diagnostic dumps (the supplemented mat_info/strt_find
// feature, see SPEC_FULL.md) rather than by the decoder itself.
func FindString(s string) (int32, bool) {
	i, found := slices.BinarySearch(sortedCanonical, s)
	if !found {
		return 0, false
	}
	return -int32(canonicalIndexOf[sortedCanonical[i]]) - 1, true
}

var sortedCanonical []string
var canonicalIndexOf map[string]int

func init() {
	canonicalIndexOf = make(map[string]int, len(canonicalStrings))
	for i, s := range canonicalStrings {
		canonicalIndexOf[s] = i
	}
	sortedCanonical = append([]string(nil), canonicalStrings...)
	slices.Sort(sortedCanonical)
}
