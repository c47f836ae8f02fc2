package matdb

// The constants and struct shapes below mirror original_source/src/material.hpp
// (CE2MaterialObject / CE2Material and its nested types), spec §3's data
// model. Field names are Go-cased but otherwise track the original 1:1.
const (
	MaxTexturePaths = 21
	MaxLayers       = 6
	MaxBlenders     = 5
	MaxLODMaterials = 3
	MaxFloatParams  = 5
	MaxBoolParams   = 8
)

// Texture slot indices within TextureSet.Paths (material.hpp's documented
// mapping).
const (
	TexAlbedo       = 0
	TexNormal       = 1
	TexAlpha        = 2
	TexRoughness    = 3
	TexMetalness    = 4
	TexAO           = 5
	TexHeight       = 6
	TexGlow         = 7
	TexTranslucency = 8
	TexCurvature    = 9
	TexMask         = 10
	TexZOffset      = 12
	TexID           = 20
)

// Flag_* bits carried on CE2Material.Flags (material.hpp Flag_*).
const (
	FlagLayeredMaterial  uint32 = 1 << 0
	FlagHasOpacity       uint32 = 1 << 1
	FlagAlphaBlending    uint32 = 1 << 2
	FlagIsEffect         uint32 = 1 << 3
	FlagIsDecal          uint32 = 1 << 4
	FlagTwoSided         uint32 = 1 << 5
	FlagIsVegetation     uint32 = 1 << 6
	FlagIsWater          uint32 = 1 << 7
	FlagGlobalLayerData  uint32 = 1 << 8
)

// TextureSet is a material.hpp TextureSet: up to 21 named texture paths
// plus a per-slot resolution hint.
type TextureSet struct {
	Paths       [MaxTexturePaths]string
	Resolutions [MaxTexturePaths]float32
}

// UVStream describes one layer's texture-coordinate transform.
type UVStream struct {
	ScaleU, ScaleV   float32
	OffsetU, OffsetV float32
	AddressModeU     string
	AddressModeV     string
}

// MaterialView is material.hpp's inner Material: a base color plus an
// optional tint-color override.
type MaterialView struct {
	Color         [4]float32
	ColorOverride bool
}

// Layer is one of CE2Material's up to 6 layer slots.
type Layer struct {
	Material MaterialView
	UV       UVStream
	Textures *TextureSet
}

// Blender is one of CE2Material's up to 5 blender slots.
type Blender struct {
	MaskTexture string
	BlendMode   string
	UV          UVStream
	FloatParams [MaxFloatParams]float32
	BoolParams  [MaxBoolParams]bool
}

// EffectSettings, EmissiveSettings, and the other optional component
// groups mirror material.hpp's ten optional settings structs; each is a
// pointer on CE2Material and nil when the source object has no such
// component (spec §4.4's "optional component" contract).
type EffectSettings struct {
	FalloffStartAngle, FalloffStopAngle float32
	FalloffStartOpacity, FalloffStopOpacity float32
	SoftFalloffDepth float32
	UseFalloff, UseRGBFalloff bool
}

type EmissiveSettings struct {
	SourceLayer int
	Color       [3]float32
	Intensity   float32
}

type LayeredEmissiveSettings struct {
	FirstLayerIndex  int
	FirstLayerMaskIntensity float32
	SecondLayerActive bool
	SecondLayerIndex  int
	SecondLayerMaskIntensity float32
	BlendMode string
}

type TranslucencySettings struct {
	IsThin          bool
	FlipBackFaceNormalsInViewSpace bool
	UseSSS          bool
	SSSWidth        float32
	SSSStrength     float32
	TransmissiveScale float32
	TransmittanceWidth float32
	SpecLobe0RoughnessScale float32
	SpecLobe1RoughnessScale float32
}

type DecalSettings struct {
	MaterialOverallAlpha float32
	WriteMask            bool
	IsDecal              bool
	IsPlanet             bool
	BlendMode            string
	AnimatedDecalIgnoresTAA bool
}

type VegetationSettings struct {
	LeafFrequency, LeafAmplitude float32
	BranchFlexibility           float32
	TrunkFlexibility            float32
}

type DetailBlenderSettings struct {
	UseDetailBlendMask bool
	Texture            string
	UV                 UVStream
}

type LayeredEdgeFalloff struct {
	FalloffStartAngles, FalloffStopAngles [3]float32
	FalloffStartOpacities, FalloffStopOpacities [3]float32
	ActiveLayersMask [3]bool
	UseRGBFalloff    bool
}

type WaterSettings struct {
	WaterEdgeFalloff, WaterWetnessMaxDepth float32
	WaterEdgeNormalFalloff float32
	WaterDepthBlur float32
	PhytoplanktonReflectance, SedimentReflectance, YellowMatterReflectance float32
}

type GlobalLayerData struct {
	TexcoordScaleXY, TexcoordScaleYZ, TexcoordScaleXZ float32
	BlendPosition, BlendContrast, BlendMaskPosition float32
}

// CE2Material is the fully projected view of a material.mat root object:
// everything a consumer outside this package reads is reached off of it
// rather than off the generic Value tree (spec §3's "CE2Material").
type CE2Material struct {
	Name  string
	Flags uint32

	ShaderModel   string
	AlphaTestThreshold float32

	Layers      [MaxLayers]*Layer
	Blenders    [MaxBlenders]*Blender
	LODMaterials [MaxLODMaterials]string

	Effect          *EffectSettings
	Emissive        *EmissiveSettings
	LayeredEmissive *LayeredEmissiveSettings
	Translucency    *TranslucencySettings
	Decal           *DecalSettings
	Vegetation      *VegetationSettings
	DetailBlender   *DetailBlenderSettings
	EdgeFalloff     *LayeredEdgeFalloff
	Water           *WaterSettings
	GlobalLayer     *GlobalLayerData
}
