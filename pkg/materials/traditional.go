package materials

import (
	"strings"

	"github.com/Faultbox/rawscene/pkg/diag"
	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
)

// Property names of the Lambert/Phong material layout.
const (
	PropDiffuse            = "DiffuseColor"
	PropDiffuseFactor      = "DiffuseFactor"
	PropSpecular           = "SpecularColor"
	PropSpecularFactor     = "SpecularFactor"
	PropEmissive           = "EmissiveColor"
	PropEmissiveFactor     = "EmissiveFactor"
	PropNormalMap          = "NormalMap"
	PropBump               = "Bump"
	PropBumpFactor         = "BumpFactor"
	PropShininess          = "Shininess"
	PropShininessExponent  = "ShininessExponent"
	PropTransparentColor   = "TransparentColor"
	PropTransparencyFactor = "TransparencyFactor"
)

// TraditionalResolver handles the Lambert/Phong layout every scene format
// carries. It never declines a non-nil material.
type TraditionalResolver struct{}

// surfaceValue is a color/factor pair folded into one value.
type surfaceValue struct {
	value     math.Vec3
	colorTex  *NativeTexture
	factorTex *NativeTexture
}

// surfaceValues reads a color/factor pair. A value is read only when no
// texture is bound to its property; absent properties use colorDef and 1.
func surfaceValues(mat NativeMaterial, colorName, factorName string, colorDef math.Vec3) surfaceValue {
	colorProp := mat.FindProperty(colorName)
	factorProp := mat.FindProperty(factorName)

	color := colorDef
	colorTex := colorProp.BoundTexture()
	if colorTex == nil {
		color = colorProp.Vec3(colorDef)
	}
	factor := float32(1)
	factorTex := factorProp.BoundTexture()
	if factorTex == nil {
		factor = factorProp.Float(1)
	}
	return surfaceValue{value: color.Scale(factor), colorTex: colorTex, factorTex: factorTex}
}

// surfaceScalar reads a scalar unless a texture is bound to it.
func surfaceScalar(mat NativeMaterial, name string, def float32) (float32, *NativeTexture) {
	prop := mat.FindProperty(name)
	if tex := prop.BoundTexture(); tex != nil {
		return def, tex
	}
	return prop.Float(def), nil
}

// Resolve implements Resolver.
func (TraditionalResolver) Resolve(mat NativeMaterial, diags *diag.Collector) *Resolved {
	if mat == nil {
		return nil
	}
	name := mat.Name()
	res := &Resolved{ID: mat.ID(), Name: name, UserProperties: mat.UserProperties()}

	basic := func(colorName, factorName string) (math.Vec3, *NativeTexture) {
		sv := surfaceValues(mat, colorName, factorName, math.Splat3(1))
		if sv.colorTex != nil {
			if sv.factorTex != nil {
				diags.Warn(diag.PropertyConflict, name,
					"can't handle both %s and %s textures; discarding %s", colorName, factorName, factorName)
			}
			return sv.value, sv.colorTex
		}
		return sv.value, sv.factorTex
	}

	specular, specularTex := basic(PropSpecular, PropSpecularFactor)
	diffuse, diffuseTex := basic(PropDiffuse, PropDiffuseFactor)
	emissive, emissiveTex := basic(PropEmissive, PropEmissiveFactor)

	normalTex := mat.FindProperty(PropNormalMap).BoundTexture()
	bumpTex := mat.FindProperty(PropBump).BoundTexture()
	bumpFactor, _ := surfaceScalar(mat, PropBumpFactor, 1)
	if bumpTex != nil && strings.EqualFold(bumpTex.Name, "normal") {
		normalTex, bumpTex = bumpTex, nil
		bumpFactor = 1
	}

	// The map lives on the exponent; the value only on Shininess.
	_, shininessTex := surfaceScalar(mat, PropShininessExponent, 0)
	shininess, _ := surfaceScalar(mat, PropShininess, 0)
	specularLevel, _ := surfaceScalar(mat, PropSpecularFactor, 0)

	transparency := surfaceValues(mat, PropTransparentColor, PropTransparencyFactor, math.Vec3{})
	if transparency.factorTex != nil {
		diags.Warn(diag.PropertyConflict, name,
			"can't handle texture for %s; discarding", PropTransparencyFactor)
	}
	t := transparency.value
	alpha := 1 - (t.X+t.Y+t.Z)/3

	res.Props = raw.TraditionalMatProps{
		BaseProps:      raw.BaseProps{Shading: raw.ShadingStandard},
		DiffuseFactor:  diffuse.Vec4(alpha),
		EmissiveFactor: emissive,
		SpecularFactor: specular,
		SpecularLevel:  specularLevel,
		Shininess:      shininess,
		BumpFactor:     bumpFactor,
	}
	res.Textures[raw.TextureUsageDiffuse] = diffuseTex
	res.Textures[raw.TextureUsageNormal] = normalTex
	res.Textures[raw.TextureUsageBump] = bumpTex
	res.Textures[raw.TextureUsageSpecular] = specularTex
	res.Textures[raw.TextureUsageShininess] = shininessTex
	res.Textures[raw.TextureUsageEmissive] = emissiveTex
	res.Textures[raw.TextureUsageOpacity] = transparency.colorTex
	return res
}
