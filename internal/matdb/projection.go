package matdb

// Project reads a typed CE2Material view out of obj's resolved component
// tree: the second half of the generic-decode/typed-projection design
// SPEC_FULL.md §9 records. Every field lookup tolerates a missing or
// differently-shaped component, since a material root may legitimately
// lack any of the ten optional settings groups (spec §4.4).
func (db *Database) Project(obj *MaterialObject) *CE2Material {
	m := &CE2Material{Name: obj.Resource.String()}

	if c := firstComponent(obj, "BSMaterial::LayeredMaterialID", "BSMaterial::MaterialID"); c != nil {
		m.ShaderModel, _ = stringField(c.Value, "shaderModel")
	}
	if c := firstComponent(obj, "BSMaterial::AlphaBlenderSettings"); c != nil {
		m.AlphaTestThreshold, _ = floatField(c.Value, "alphaTestThreshold")
		m.Flags |= FlagAlphaBlending
	}

	for i, c := range componentsForSlots(obj, "BSMaterial::LayerID", MaxLayers) {
		if c == nil {
			continue
		}
		m.Layers[i] = projectLayer(db, c)
	}
	for i, c := range componentsForSlots(obj, "BSMaterial::BlenderID", MaxBlenders) {
		if c == nil {
			continue
		}
		m.Blenders[i] = projectBlender(db, c)
	}
	if len(nonNilLayers(m.Layers[:])) > 1 {
		m.Flags |= FlagLayeredMaterial
	}

	if c := firstComponent(obj, "BSMaterial::EffectSettingsComponent"); c != nil {
		m.Effect = &EffectSettings{}
		m.Effect.FalloffStartAngle, _ = floatField(c.Value, "falloffStartAngle")
		m.Effect.FalloffStopAngle, _ = floatField(c.Value, "falloffStopAngle")
		m.Effect.FalloffStartOpacity, _ = floatField(c.Value, "falloffStartOpacity")
		m.Effect.FalloffStopOpacity, _ = floatField(c.Value, "falloffStopOpacity")
		m.Effect.SoftFalloffDepth, _ = floatField(c.Value, "softFalloffDepth")
		m.Effect.UseFalloff, _ = boolField(c.Value, "useFalloff")
		m.Effect.UseRGBFalloff, _ = boolField(c.Value, "useRGBFalloff")
		m.Flags |= FlagIsEffect
	}
	if c := firstComponent(obj, "BSMaterial::EmissiveSettingsComponent"); c != nil {
		m.Emissive = &EmissiveSettings{}
		m.Emissive.Intensity, _ = floatField(c.Value, "emissiveTintIntensity")
	}
	if c := firstComponent(obj, "BSMaterial::LayeredEmissivityComponent"); c != nil {
		m.LayeredEmissive = &LayeredEmissiveSettings{}
		m.LayeredEmissive.SecondLayerActive, _ = boolField(c.Value, "secondLayerActive")
		m.LayeredEmissive.FirstLayerMaskIntensity, _ = floatField(c.Value, "firstLayerMaskIntensity")
	}
	if c := firstComponent(obj, "BSMaterial::TranslucencySettingsComponent"); c != nil {
		m.Translucency = &TranslucencySettings{}
		m.Translucency.IsThin, _ = boolField(c.Value, "isThin")
		m.Translucency.UseSSS, _ = boolField(c.Value, "useSSS")
		m.Translucency.SSSWidth, _ = floatField(c.Value, "sssWidth")
		m.Translucency.SSSStrength, _ = floatField(c.Value, "sssStrength")
		m.Translucency.TransmissiveScale, _ = floatField(c.Value, "transmissiveScale")
	}
	if c := firstComponent(obj, "BSMaterial::DecalSettingsComponent"); c != nil {
		m.Decal = &DecalSettings{}
		m.Decal.IsDecal, _ = boolField(c.Value, "isDecal")
		m.Decal.IsPlanet, _ = boolField(c.Value, "isPlanet")
		m.Decal.MaterialOverallAlpha, _ = floatField(c.Value, "materialOverallAlpha")
		m.Flags |= FlagIsDecal
	}
	if c := firstComponent(obj, "BSMaterial::VegetationSettingsComponent"); c != nil {
		m.Vegetation = &VegetationSettings{}
		m.Vegetation.LeafFrequency, _ = floatField(c.Value, "leafFrequency")
		m.Vegetation.LeafAmplitude, _ = floatField(c.Value, "leafAmplitude")
		m.Flags |= FlagIsVegetation
	}
	if c := firstComponent(obj, "BSMaterial::DetailBlenderSettingsComponent"); c != nil {
		m.DetailBlender = &DetailBlenderSettings{}
		m.DetailBlender.UseDetailBlendMask, _ = boolField(c.Value, "useDetailBlendMask")
		m.DetailBlender.Texture, _ = stringField(c.Value, "texture")
	}
	if c := firstComponent(obj, "BSMaterial::LayeredEdgeFalloffComponent"); c != nil {
		m.EdgeFalloff = &LayeredEdgeFalloff{}
		m.EdgeFalloff.UseRGBFalloff, _ = boolField(c.Value, "useRGBFalloff")
	}
	if c := firstComponent(obj, "BSMaterial::WaterFoamSettingsComponent", "BSMaterial::WaterGrimeSettingsComponent"); c != nil {
		m.Water = &WaterSettings{}
		m.Water.WaterEdgeFalloff, _ = floatField(c.Value, "waterEdgeFalloff")
		m.Water.WaterDepthBlur, _ = floatField(c.Value, "waterDepthBlur")
		m.Flags |= FlagIsWater
	}
	if c := firstComponent(obj, "BSMaterial::GlobalLayerDataComponent"); c != nil {
		m.GlobalLayer = &GlobalLayerData{}
		m.GlobalLayer.TexcoordScaleXY, _ = floatField(c.Value, "texcoordScaleXY")
		m.Flags |= FlagGlobalLayerData
	}

	return m
}

func projectLayer(db *Database, c *MaterialComponent) *Layer {
	l := &Layer{}
	if mat, err := db.ResolveComponent(c, "material", "BSMaterial::MaterialID"); err == nil {
		if mc := firstComponent(mat, "BSMaterial::MaterialOverrideColorTypeComponent"); mc != nil {
			l.Material.ColorOverride, _ = boolField(mc.Value, "colorOverride")
		}
		if tc := firstComponent(mat, "BSMaterial::TextureSetID"); tc != nil {
			if tsObj, err := db.ResolveComponent(tc, "textureSet", ""); err == nil {
				l.Textures = projectTextureSet(tsObj)
			}
		}
	}
	if uvRef, ok := c.Value.Field("uvStream"); ok {
		if uvObj, err := db.resolveLink(uvRef, "BSMaterial::UVStreamID"); err == nil {
			l.UV = projectUVStream(uvObj)
		}
	}
	return l
}

func projectBlender(db *Database, c *MaterialComponent) *Blender {
	b := &Blender{}
	b.MaskTexture, _ = stringField(c.Value, "maskTexture")
	b.BlendMode, _ = stringField(c.Value, "blendMode")
	for i := 0; i < MaxFloatParams; i++ {
		b.FloatParams[i], _ = floatField(c.Value, paramName("floatParam", i))
	}
	for i := 0; i < MaxBoolParams; i++ {
		b.BoolParams[i], _ = boolField(c.Value, paramName("boolParam", i))
	}
	return b
}

func projectTextureSet(obj *MaterialObject) *TextureSet {
	ts := &TextureSet{}
	c := firstComponent(obj, "BSMaterial::TextureFile", "BSMaterial::MRTextureFile")
	if c == nil {
		return ts
	}
	list, ok := c.Value.Field("textures")
	if !ok || list.Kind != KindList {
		return ts
	}
	for i, item := range list.List {
		if i >= MaxTexturePaths {
			break
		}
		ts.Paths[i], _ = stringField(item, "path")
		r, _ := floatField(item, "resolution")
		ts.Resolutions[i] = r
	}
	return ts
}

func projectUVStream(obj *MaterialObject) UVStream {
	var uv UVStream
	c := firstComponent(obj, "BSMaterial::UVStreamParamBool")
	if c == nil {
		return uv
	}
	uv.ScaleU, _ = floatField(c.Value, "scaleU")
	uv.ScaleV, _ = floatField(c.Value, "scaleV")
	uv.OffsetU, _ = floatField(c.Value, "offsetU")
	uv.OffsetV, _ = floatField(c.Value, "offsetV")
	uv.AddressModeU, _ = stringField(c.Value, "addressModeU")
	uv.AddressModeV, _ = stringField(c.Value, "addressModeV")
	return uv
}

func firstComponent(obj *MaterialObject, classNames ...string) *MaterialComponent {
	for cur := obj; cur != nil; cur = cur.BaseObject {
		for _, name := range classNames {
			if list := cur.ComponentsByClass[name]; len(list) > 0 {
				return list[0]
			}
		}
	}
	return nil
}

func componentsForSlots(obj *MaterialObject, className string, n int) []*MaterialComponent {
	out := make([]*MaterialComponent, n)
	for cur := obj; cur != nil; cur = cur.BaseObject {
		for _, c := range cur.ComponentsByClass[className] {
			idx := componentIndexOf(obj, c)
			if idx >= 0 && idx < n && out[idx] == nil {
				out[idx] = c
			}
		}
	}
	return out
}

func componentIndexOf(obj *MaterialObject, target *MaterialComponent) int {
	for key, c := range obj.Components {
		if c == target {
			return int(key.Index())
		}
	}
	if obj.BaseObject != nil {
		return componentIndexOf(obj.BaseObject, target)
	}
	return -1
}

func nonNilLayers(layers []*Layer) []*Layer {
	var out []*Layer
	for _, l := range layers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func stringField(v Value, name string) (string, bool) {
	f, ok := v.Field(name)
	if !ok {
		return "", false
	}
	return f.AsString()
}

func floatField(v Value, name string) (float32, bool) {
	f, ok := v.Field(name)
	if !ok {
		return 0, false
	}
	return f.AsFloat32()
}

func boolField(v Value, name string) (bool, bool) {
	f, ok := v.Field(name)
	if !ok {
		return false, false
	}
	return f.AsBool()
}

func paramName(prefix string, i int) string {
	const digits = "0123456789"
	if i < 10 {
		return prefix + string(digits[i])
	}
	return prefix + string(digits[i/10]) + string(digits[i%10])
}
