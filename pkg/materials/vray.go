package materials

import (
	"strings"

	"github.com/Faultbox/rawscene/pkg/diag"
	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
)

// Property names of the 3ds Max VRay material layout.
const (
	VRayCompound = "3dsMax"

	vrayGroupBasic   = "basic"
	vrayGroupBRDF    = "BRDF"
	vrayGroupOptions = "options"
	vrayGroupMaps    = "maps"
)

// BumpMultiplierDivisor converts the VRay bump multiplier, a percentage,
// into a plain factor.
const BumpMultiplierDivisor = 100

// VRayResolver handles materials exported from 3ds Max with VRay shaders.
// It declines unless the material carries the 3dsMax compound with its
// basic, BRDF, options and maps groups.
type VRayResolver struct{}

// Resolve implements Resolver.
func (VRayResolver) Resolve(mat NativeMaterial, diags *diag.Collector) *Resolved {
	if mat == nil {
		return nil
	}
	top := mat.FindProperty(VRayCompound)
	if !top.Compound() {
		return nil
	}
	basic := top.Find(vrayGroupBasic)
	brdf := top.Find(vrayGroupBRDF)
	options := top.Find(vrayGroupOptions)
	maps := top.Find(vrayGroupMaps)
	if basic == nil || brdf == nil || options == nil || maps == nil {
		return nil
	}

	unlit := mat.FindProperty("Unlit").Bool(false)
	useLightmap := mat.FindProperty("UseLightmap").Bool(false)
	base := raw.BaseProps{
		AlphaCutoff:  mat.FindProperty("AlphaTest").Float(0),
		IsDoubleSide: options.Find("option_doubleSided").Bool(false),
	}

	diffuse := basic.Find("diffuse").Vec3(math.Splat3(1))
	diffuseTex := maps.Find("texmap_diffuse").BoundTexture()

	metalness := basic.Find("reflection_metalness").Float(0)
	metalnessTex := maps.Find("texmap_metalness").BoundTexture()

	reflection := basic.Find("reflection").Vec3(math.Vec3{})

	// Glossiness is inverted into roughness unless the BRDF already stores roughness.
	useRoughness := brdf.Find("brdf_useRoughness").Bool(false)
	roughness := float32(1)
	if glossiness := basic.Find("reflection_glossiness"); glossiness.Valid() {
		if useRoughness {
			roughness = glossiness.Float(0)
		} else {
			roughness = 1 - glossiness.Float(0)
		}
	}
	roughnessTex := maps.Find("texmap_reflectionGlossiness").BoundTexture()

	// The map range endpoints are swapped, not inverted, for glossiness.
	var roughnessMin, roughnessMax float32
	glossMin, glossMax := mat.FindProperty("GlossinessMapMin"), mat.FindProperty("GlossinessMapMax")
	switch {
	case glossMin.Valid() && glossMax.Valid() && useRoughness:
		roughnessMin, roughnessMax = glossMin.Float(0), glossMax.Float(1)
	case glossMin.Valid() && glossMax.Valid():
		roughnessMin, roughnessMax = glossMax.Float(1), glossMin.Float(0)
	case useRoughness:
		roughnessMin, roughnessMax = 0, 1
	default:
		roughnessMin, roughnessMax = 1, 0
	}

	bumpTex := maps.Find("texmap_bump").BoundTexture()
	bumpMultiplier := maps.Find("texmap_bump_multiplier").Float(BumpMultiplierDivisor) / BumpMultiplierDivisor
	var useBumpAsNormal, invertNormalY bool
	if bumpTex != nil {
		media := strings.ToLower(bumpTex.Media())
		useBumpAsNormal = strings.Contains(media, "normal")
		invertNormalY = strings.Contains(media, "inverty")
	}

	selfIllum := basic.Find("selfIllumination").Vec3(math.Vec3{})
	selfIllumTex := maps.Find("texmap_self_illumination").BoundTexture()
	selfIllumMultiplier := basic.Find("selfIllumination_multiplier").Float(0)

	refraction := basic.Find("refraction").Vec3(math.Vec3{})
	opacityTex := maps.Find("texmap_opacity").BoundTexture()

	res := &Resolved{ID: mat.ID(), Name: mat.Name(), UserProperties: mat.UserProperties()}

	if unlit {
		base.Shading = raw.ShadingUnlit
		res.Props = raw.UnlitMatProps{
			BaseProps:                  base,
			DiffuseColor:               diffuse.Vec4(1),
			SelfIlluminationColor:      selfIllum,
			SelfIlluminationMultiplier: selfIllumMultiplier,
		}
	} else {
		base.Shading = raw.ShadingVRay
		res.Props = raw.VRayMatProps{
			BaseProps:                  base,
			DiffuseColor:               diffuse,
			ReflectionColor:            reflection,
			Roughness:                  roughness,
			RoughnessMapMin:            roughnessMin,
			RoughnessMapMax:            roughnessMax,
			Metalness:                  metalness,
			RefractionColor:            refraction,
			SelfIlluminationColor:      selfIllum,
			SelfIlluminationMultiplier: selfIllumMultiplier,
			BumpMultiplier:             bumpMultiplier,
			InvertNormalMapY:           invertNormalY,
			UVTransform:                sharedUVTransform(diffuseTex, bumpTex, roughnessTex, metalnessTex, opacityTex),
		}
	}

	res.Textures[raw.TextureUsageDiffuse] = diffuseTex
	if useBumpAsNormal {
		res.Textures[raw.TextureUsageNormal] = bumpTex
	} else {
		res.Textures[raw.TextureUsageBump] = bumpTex
	}
	res.Textures[raw.TextureUsageRoughness] = roughnessTex
	res.Textures[raw.TextureUsageMetallic] = metalnessTex
	res.Textures[raw.TextureUsageOpacity] = opacityTex
	if useLightmap {
		res.Textures[raw.TextureUsageLightmap] = selfIllumTex
	} else {
		res.Textures[raw.TextureUsageEmissive] = selfIllumTex
	}
	return res
}

// sharedUVTransform returns the placement of the first bound texture. The
// whole material uses it.
func sharedUVTransform(textures ...*NativeTexture) raw.UVTransform {
	for _, tex := range textures {
		if tex != nil {
			return tex.UVTransform()
		}
	}
	return raw.IdentityUVTransform()
}
