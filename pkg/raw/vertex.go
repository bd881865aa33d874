package raw

import (
	"encoding/binary"
	gomath "math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/Faultbox/rawscene/pkg/math"
)

// BlendVertex is the per-channel blend shape delta of a vertex.
type BlendVertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Tangent  math.Vec4
}

// Vertex is one fully attributed mesh vertex. Two vertices are the same
// vertex only if every field, blend deltas included, compares equal.
type Vertex struct {
	Position     math.Vec3
	Normal       math.Vec3
	Binormal     math.Vec3
	Tangent      math.Vec4
	Color        math.Vec4
	UV0          math.Vec2
	UV1          math.Vec2
	JointIndices math.Vec4i
	JointWeights math.Vec4

	// BlendSurfaceIx is the surface index of the blend shape setup this vertex
	// belongs to, or -1. Blends has one entry per blend channel of that surface.
	BlendSurfaceIx int
	Blends         []BlendVertex

	PolarityUV0 bool
}

// NewVertex returns a vertex with no blend surface.
func NewVertex() Vertex {
	return Vertex{BlendSurfaceIx: -1}
}

// Equal reports exact structural equality, with no numeric tolerance.
func (v *Vertex) Equal(o *Vertex) bool {
	return v.Position == o.Position &&
		v.Normal == o.Normal &&
		v.Tangent == o.Tangent &&
		v.Binormal == o.Binormal &&
		v.Color == o.Color &&
		v.UV0 == o.UV0 &&
		v.UV1 == o.UV1 &&
		v.JointIndices == o.JointIndices &&
		v.JointWeights == o.JointWeights &&
		v.PolarityUV0 == o.PolarityUV0 &&
		v.BlendSurfaceIx == o.BlendSurfaceIx &&
		slices.Equal(v.Blends, o.Blends)
}

// DiffAttributes returns the attributes on which v and o differ.
// Joint indices and weights are always reported together.
func (v *Vertex) DiffAttributes(o *Vertex) VertexAttribute {
	var attrs VertexAttribute
	if v.Position != o.Position {
		attrs |= AttribPosition
	}
	if v.Normal != o.Normal {
		attrs |= AttribNormal
	}
	if v.Binormal != o.Binormal {
		attrs |= AttribBinormal
	}
	if v.Tangent != o.Tangent {
		attrs |= AttribTangent
	}
	if v.Color != o.Color {
		attrs |= AttribColor
	}
	if v.UV0 != o.UV0 {
		attrs |= AttribUV0
	}
	if v.UV1 != o.UV1 {
		attrs |= AttribUV1
	}
	if v.JointIndices != o.JointIndices || v.JointWeights != o.JointWeights {
		attrs |= AttribJointIndices | AttribJointWeights
	}
	return attrs
}

// Difference returns a continuous dissimilarity score over position, normal
// and tangent. It is meant for blend shape heuristics, not identity.
func (v *Vertex) Difference(o *Vertex) float32 {
	return v.Position.Distance(o.Position) +
		v.Normal.Distance(o.Normal) +
		v.Tangent.Sub(o.Tangent).Length()
}

// Masked returns a copy of v with every attribute outside keep reset to its
// zero value. Blend data is kept.
func (v Vertex) Masked(keep VertexAttribute) Vertex {
	var zero Vertex
	if keep&AttribPosition == 0 {
		v.Position = zero.Position
	}
	if keep&AttribNormal == 0 {
		v.Normal = zero.Normal
	}
	if keep&AttribTangent == 0 {
		v.Tangent = zero.Tangent
	}
	if keep&AttribBinormal == 0 {
		v.Binormal = zero.Binormal
	}
	if keep&AttribColor == 0 {
		v.Color = zero.Color
	}
	if keep&AttribUV0 == 0 {
		v.UV0 = zero.UV0
	}
	if keep&AttribUV1 == 0 {
		v.UV1 = zero.UV1
	}
	if keep&AttribJointIndices == 0 {
		v.JointIndices = zero.JointIndices
	}
	if keep&AttribJointWeights == 0 {
		v.JointWeights = zero.JointWeights
	}
	return v
}

// clone returns a copy that does not share the blend slice.
func (v Vertex) clone() Vertex {
	v.Blends = slices.Clone(v.Blends)
	return v
}

// vertexIndex buckets vertex indices by a hash of the position only.
// Buckets stay small for real meshes; Equal settles every collision.
type vertexIndex struct {
	buckets map[uint64][]int
}

func newVertexIndex() vertexIndex {
	return vertexIndex{buckets: make(map[uint64][]int)}
}

func positionKey(p math.Vec3) uint64 {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:], floatBits(p.X))
	binary.LittleEndian.PutUint32(buf[4:], floatBits(p.Y))
	binary.LittleEndian.PutUint32(buf[8:], floatBits(p.Z))
	return xxhash.Sum64(buf[:])
}

// floatBits folds -0 into +0 so values that compare equal share a bucket.
func floatBits(f float32) uint32 {
	if f == 0 {
		return 0
	}
	return gomath.Float32bits(f)
}

func (x *vertexIndex) find(vertices []Vertex, v *Vertex) (int, uint64) {
	key := positionKey(v.Position)
	for _, ix := range x.buckets[key] {
		if vertices[ix].Equal(v) {
			return ix, key
		}
	}
	return -1, key
}

func (x *vertexIndex) insert(key uint64, ix int) {
	x.buckets[key] = append(x.buckets[key], ix)
}

func (x *vertexIndex) rebuild(vertices []Vertex) {
	x.buckets = make(map[uint64][]int, len(vertices))
	for i := range vertices {
		x.insert(positionKey(vertices[i].Position), i)
	}
}
