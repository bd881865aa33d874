package raw

import (
	"slices"

	"github.com/Faultbox/rawscene/pkg/math"
)

// ShadingModel tags the variant of a canonical material.
type ShadingModel int

const (
	ShadingStandard ShadingModel = iota
	ShadingVRay
	ShadingUnlit
)

// String returns a human-readable shading model name.
func (s ShadingModel) String() string {
	switch s {
	case ShadingStandard:
		return "Standard"
	case ShadingVRay:
		return "VRay"
	case ShadingUnlit:
		return "Unlit"
	default:
		return "<unknown>"
	}
}

// MatProps is the canonical, shading-model-tagged property set of a material.
// Implementations are plain comparable values; once interned they are never
// modified and may be shared between models.
type MatProps interface {
	ShadingModel() ShadingModel
	AlphaTest() float32
	DoubleSided() bool

	// Equal is structural equality; values of different variants never match.
	Equal(other MatProps) bool

	matProps()
}

// BaseProps holds the fields shared by every variant.
type BaseProps struct {
	Shading      ShadingModel
	AlphaCutoff  float32 // 0 when alpha testing is disabled
	IsDoubleSide bool
}

func (b BaseProps) ShadingModel() ShadingModel { return b.Shading }
func (b BaseProps) AlphaTest() float32         { return b.AlphaCutoff }
func (b BaseProps) DoubleSided() bool          { return b.IsDoubleSide }
func (BaseProps) matProps()                    {}

// TraditionalMatProps describes Lambert/Phong style materials.
type TraditionalMatProps struct {
	BaseProps
	DiffuseFactor    math.Vec4
	EmissiveFactor   math.Vec3
	SpecularFactor   math.Vec3
	SpecularLevel    float32
	Shininess        float32
	BumpFactor       float32
	InvertNormalMapY bool
}

// Equal implements MatProps.
func (p TraditionalMatProps) Equal(other MatProps) bool {
	o, ok := other.(TraditionalMatProps)
	return ok && p == o
}

// UVTransform is a texture coordinate transform shared by a whole material.
type UVTransform struct {
	Scale       math.Vec2
	Translation math.Vec2
	Rotation    float32 // radians
}

// IdentityUVTransform leaves coordinates untouched.
func IdentityUVTransform() UVTransform {
	return UVTransform{Scale: math.Vec2{X: 1, Y: 1}}
}

// Apply maps uv through scale, rotation and translation in that order.
func (t UVTransform) Apply(uv math.Vec2) math.Vec2 {
	return uv.Mul(t.Scale).Rotate(t.Rotation).Add(t.Translation)
}

// VRayMatProps describes metal/roughness style VRay materials.
type VRayMatProps struct {
	BaseProps
	DiffuseColor               math.Vec3
	ReflectionColor            math.Vec3
	Roughness                  float32
	RoughnessMapMin            float32
	RoughnessMapMax            float32
	Metalness                  float32
	RefractionColor            math.Vec3
	SelfIlluminationColor      math.Vec3
	SelfIlluminationMultiplier float32
	BumpMultiplier             float32
	InvertNormalMapY           bool
	UVTransform                UVTransform
}

// Equal implements MatProps.
func (p VRayMatProps) Equal(other MatProps) bool {
	o, ok := other.(VRayMatProps)
	return ok && p == o
}

// UnlitMatProps describes materials that ignore scene lighting.
type UnlitMatProps struct {
	BaseProps
	DiffuseColor               math.Vec4
	SelfIlluminationColor      math.Vec3
	SelfIlluminationMultiplier float32
}

// Equal implements MatProps.
func (p UnlitMatProps) Equal(other MatProps) bool {
	o, ok := other.(UnlitMatProps)
	return ok && p == o
}

// TextureSlots maps each usage to a texture index, or -1.
type TextureSlots [TextureUsageMax]int

// NoTextures returns slots with every usage unbound.
func NoTextures() TextureSlots {
	var s TextureSlots
	for i := range s {
		s[i] = -1
	}
	return s
}

// Material is one interned canonical material.
type Material struct {
	ID             uint64
	Name           string
	Info           MatProps
	Textures       TextureSlots
	UserProperties []string
}

func (m *Material) equal(o *Material) bool {
	if m.Name != o.Name || m.Textures != o.Textures {
		return false
	}
	if (m.Info == nil) != (o.Info == nil) {
		return false
	}
	if m.Info != nil && !m.Info.Equal(o.Info) {
		return false
	}
	return slices.Equal(m.UserProperties, o.UserProperties)
}
