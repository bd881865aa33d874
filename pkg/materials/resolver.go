package materials

import (
	"github.com/Faultbox/rawscene/pkg/diag"
	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
)

// Resolved is a native material projected onto canonical properties, with
// the native textures that feed each usage slot.
type Resolved struct {
	ID             uint64
	Name           string
	Props          raw.MatProps
	Textures       [raw.TextureUsageMax]*NativeTexture
	UserProperties []string
}

// Resolver projects one vendor's material layout. Resolve returns nil when
// the material does not use that layout. It never modifies mat.
type Resolver interface {
	Resolve(mat NativeMaterial, diags *diag.Collector) *Resolved
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(mat NativeMaterial, diags *diag.Collector) *Resolved

func (f ResolverFunc) Resolve(mat NativeMaterial, diags *diag.Collector) *Resolved {
	return f(mat, diags)
}

// DefaultMaterialName names the material used when nothing else applies.
const DefaultMaterialName = "DefaultMaterial"

// DefaultMaterial returns a mid-grey standard material with no textures.
func DefaultMaterial() *Resolved {
	return &Resolved{
		Name: DefaultMaterialName,
		Props: raw.TraditionalMatProps{
			BaseProps:     raw.BaseProps{Shading: raw.ShadingStandard},
			DiffuseFactor: math.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 1},
			BumpFactor:    1,
		},
	}
}

// Chain tries each resolver in order and returns the first result.
type Chain []Resolver

// DefaultChain tries the VRay layout first and the traditional one last.
func DefaultChain() Chain {
	return Chain{VRayResolver{}, TraditionalResolver{}}
}

// Resolve returns the first resolver's result, or DefaultMaterial after
// recording an UnresolvedMaterial diagnostic.
func (c Chain) Resolve(mat NativeMaterial, diags *diag.Collector) *Resolved {
	if mat == nil {
		diags.Warn(diag.UnresolvedMaterial, DefaultMaterialName, "polygon has no material; using default")
		return DefaultMaterial()
	}
	for _, r := range c {
		if res := r.Resolve(mat, diags); res != nil {
			return res
		}
	}
	diags.Warn(diag.UnresolvedMaterial, mat.Name(), "no resolver accepted shading model %q; using default", mat.ShadingModel())
	return DefaultMaterial()
}
