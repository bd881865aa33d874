// Package raw holds the intermediate scene representation every native scene is
// converted into before export: a deduplicating vertex store, triangles,
// interned materials and textures, surfaces, nodes, lights, cameras and
// animations, together with the passes that run over them.
package raw

import (
	"fmt"

	"github.com/Faultbox/rawscene/pkg/math"
)

// Triangle references three vertices plus the material and surface it belongs to.
type Triangle struct {
	Verts         [3]int
	MaterialIndex int
	SurfaceIndex  int
}

// TextureUsage is the role a texture plays in a material.
type TextureUsage int

const (
	TextureUsageNone TextureUsage = iota - 1
	TextureUsageDiffuse
	TextureUsageNormal
	TextureUsageBump
	TextureUsageSpecular
	TextureUsageShininess
	TextureUsageEmissive
	TextureUsageReflection
	TextureUsageAlbedo
	TextureUsageOcclusion
	TextureUsageRoughness
	TextureUsageMetallic
	TextureUsageOpacity
	TextureUsageLightmap

	TextureUsageMax
)

// String returns a human-readable usage name.
func (u TextureUsage) String() string {
	switch u {
	case TextureUsageNone:
		return "<none>"
	case TextureUsageDiffuse:
		return "diffuse"
	case TextureUsageNormal:
		return "normal"
	case TextureUsageBump:
		return "bump"
	case TextureUsageSpecular:
		return "specular"
	case TextureUsageShininess:
		return "shininess"
	case TextureUsageEmissive:
		return "emissive"
	case TextureUsageReflection:
		return "reflection"
	case TextureUsageAlbedo:
		return "albedo"
	case TextureUsageOcclusion:
		return "occlusion"
	case TextureUsageRoughness:
		return "roughness"
	case TextureUsageMetallic:
		return "metallic"
	case TextureUsageOpacity:
		return "opacity"
	case TextureUsageLightmap:
		return "lightmap"
	default:
		return fmt.Sprintf("Unknown(%d)", int(u))
	}
}

// TextureOcclusion tells whether a texture carries any non-opaque texel.
type TextureOcclusion int

const (
	OcclusionOpaque TextureOcclusion = iota
	OcclusionTransparent
)

// Texture is one interned texture usage.
type Texture struct {
	Name         string // logical name in the source scene
	Width        int
	Height       int
	MipLevels    int
	Usage        TextureUsage
	Occlusion    TextureOcclusion
	FileName     string // file name as written in the source scene
	FileLocation string // resolved path on the local filesystem, or ""
}

// LightType is the kind of a punctual light.
type LightType int

const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

// Light is a punctual light. Cone angles only matter for spot lights.
type Light struct {
	Name           string
	Type           LightType
	Color          math.Vec3
	Intensity      float32
	InnerConeAngle float32
	OuterConeAngle float32
}

// BlendChannel describes one blend shape target of a surface.
type BlendChannel struct {
	DefaultDeform float32
	HasNormals    bool
	HasTangents   bool
	Name          string
}

// Surface is a skinned or static mesh surface.
type Surface struct {
	ID                  uint64
	Name                string
	SkeletonRootID      uint64
	Bounds              math.Bounds
	JointIDs            []uint64
	JointGeometryMins   []math.Vec3
	JointGeometryMaxs   []math.Vec3
	InverseBindMatrices []math.Mat4
	BlendChannels       []BlendChannel

	// Discrete surfaces never share a partitioned sub-model with another surface.
	Discrete bool
}

// NewSurface returns an empty, non-discrete surface.
func NewSurface(name string, id uint64) Surface {
	s := Surface{ID: id, Name: name}
	s.Bounds.Clear()
	return s
}

// Channel holds the animated tracks of one node.
type Channel struct {
	NodeIndex    int
	Translations []math.Vec3
	Rotations    []math.Quat
	Scales       []math.Vec3
	Weights      []float32
}

// Animation is a named set of channels sampled at shared key times.
type Animation struct {
	Name     string
	Times    []float32
	Channels []Channel
}

// CameraMode selects the projection of a camera.
type CameraMode int

const (
	CameraPerspective CameraMode = iota
	CameraOrthographic
)

// PerspectiveParams are the parameters of a perspective camera.
type PerspectiveParams struct {
	AspectRatio float32
	FovDegreesX float32
	FovDegreesY float32
	NearZ       float32
	FarZ        float32
}

// OrthographicParams are the parameters of an orthographic camera.
type OrthographicParams struct {
	MagX  float32
	MagY  float32
	NearZ float32
	FarZ  float32
}

// Camera is attached to the node with NodeID.
type Camera struct {
	Name         string
	NodeID       uint64
	Mode         CameraMode
	Perspective  PerspectiveParams
	Orthographic OrthographicParams
}

// Node is one element of the scene hierarchy.
type Node struct {
	IsJoint        bool
	ID             uint64
	Name           string
	ParentID       uint64
	ChildIDs       []uint64
	Translation    math.Vec3
	Rotation       math.Quat
	Scale          math.Vec3
	SurfaceID      uint64 // 0 when the node carries no surface
	LightIx        int    // -1 when the node carries no light
	UserProperties []string
}

// NewNode returns a node with an identity transform.
func NewNode(id uint64, name string, parentID uint64) Node {
	return Node{
		ID:       id,
		Name:     name,
		ParentID: parentID,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		LightIx:  -1,
	}
}

// LocalMatrix returns the node transform relative to its parent.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Translation, n.Rotation, n.Scale)
}
