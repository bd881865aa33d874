package scenefile

import (
	"fmt"

	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
)

func (v *Vertices) attributes() raw.VertexAttribute {
	var attrs raw.VertexAttribute
	if len(v.Positions) > 0 {
		attrs |= raw.AttribPosition
	}
	if len(v.Normals) > 0 {
		attrs |= raw.AttribNormal
	}
	if len(v.Tangents) > 0 {
		attrs |= raw.AttribTangent
	}
	if len(v.Binormals) > 0 {
		attrs |= raw.AttribBinormal
	}
	if len(v.Colors) > 0 {
		attrs |= raw.AttribColor
	}
	if len(v.UV0) > 0 {
		attrs |= raw.AttribUV0
	}
	if len(v.UV1) > 0 {
		attrs |= raw.AttribUV1
	}
	if len(v.JointIndices) > 0 {
		attrs |= raw.AttribJointIndices
	}
	if len(v.JointWeights) > 0 {
		attrs |= raw.AttribJointWeights
	}
	return attrs
}

// vertex assembles corner i. Optional arrays shorter than the position
// array are treated as malformed.
func (s *Surface) vertex(i, surfaceIx int) (raw.Vertex, error) {
	v := raw.NewVertex()
	src := &s.Vertices
	if i < 0 || i >= len(src.Positions) {
		return v, fmt.Errorf("vertex %d out of range (%d positions)", i, len(src.Positions))
	}
	v.Position = vec3(src.Positions[i], math.Vec3{})

	var missing string
	at := func(arr [][]float32, name string) []float32 {
		if len(arr) == 0 {
			return nil
		}
		if i >= len(arr) {
			missing = name
			return nil
		}
		return arr[i]
	}
	if a := at(src.Normals, "normals"); a != nil {
		v.Normal = vec3(a, math.Vec3{})
	}
	if a := at(src.Tangents, "tangents"); a != nil {
		v.Tangent = vec4(a, math.Vec4{W: 1})
	}
	if a := at(src.Binormals, "binormals"); a != nil {
		v.Binormal = vec3(a, math.Vec3{})
	}
	if a := at(src.Colors, "colors"); a != nil {
		v.Color = vec4(a, math.Splat4(1))
	}
	if a := at(src.UV0, "uv0"); a != nil {
		v.UV0 = vec2(a)
	}
	if a := at(src.UV1, "uv1"); a != nil {
		v.UV1 = vec2(a)
	}
	if a := at(src.JointWeights, "joint_weights"); a != nil {
		v.JointWeights = vec4(a, math.Vec4{})
	}
	if len(src.JointIndices) > 0 {
		if i >= len(src.JointIndices) {
			missing = "joint_indices"
		} else {
			v.JointIndices = vec4i(src.JointIndices[i])
		}
	}
	if missing != "" {
		return v, fmt.Errorf("vertex %d has no %s entry", i, missing)
	}

	if len(s.BlendChannels) > 0 {
		v.BlendSurfaceIx = surfaceIx
		v.Blends = make([]raw.BlendVertex, len(s.BlendChannels))
		for ci, c := range s.BlendChannels {
			bv := &v.Blends[ci]
			if i < len(c.Positions) {
				bv.Position = vec3(c.Positions[i], math.Vec3{})
			}
			if i < len(c.Normals) {
				bv.Normal = vec3(c.Normals[i], math.Vec3{})
			}
			if i < len(c.Tangents) {
				bv.Tangent = vec4(c.Tangents[i], math.Vec4{})
			}
		}
	}
	return v, nil
}

// jointBounds returns, per joint, the bounds of the vertices it influences
// expressed in the joint's bind space.
func jointBounds(s *Surface, inverseBind []math.Mat4) (mins, maxs []math.Vec3) {
	if len(inverseBind) == 0 {
		return nil, nil
	}
	bounds := make([]math.Bounds, len(inverseBind))
	for i := range bounds {
		bounds[i].Clear()
	}
	src := &s.Vertices
	for vi, p := range src.Positions {
		if vi >= len(src.JointIndices) || vi >= len(src.JointWeights) {
			break
		}
		pos := vec3(p, math.Vec3{})
		joints := src.JointIndices[vi]
		weights := src.JointWeights[vi]
		for k := 0; k < len(joints) && k < len(weights); k++ {
			j := int(joints[k])
			if weights[k] <= 0 || j < 0 || j >= len(bounds) {
				continue
			}
			bounds[j].AddPoint(inverseBind[j].TransformPoint(pos))
		}
	}
	mins = make([]math.Vec3, len(bounds))
	maxs = make([]math.Vec3, len(bounds))
	for i, b := range bounds {
		if b.Valid {
			mins[i], maxs[i] = b.Min, b.Max
		}
	}
	return mins, maxs
}

func vec2(a []float32) math.Vec2 {
	var v math.Vec2
	if len(a) > 0 {
		v.X = a[0]
	}
	if len(a) > 1 {
		v.Y = a[1]
	}
	return v
}

func vec3(a []float32, def math.Vec3) math.Vec3 {
	if len(a) < 3 {
		return def
	}
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

func vec4(a []float32, def math.Vec4) math.Vec4 {
	switch {
	case len(a) >= 4:
		return math.Vec4{X: a[0], Y: a[1], Z: a[2], W: a[3]}
	case len(a) == 3:
		return math.Vec4{X: a[0], Y: a[1], Z: a[2], W: def.W}
	default:
		return def
	}
}

func vec4i(a []int32) math.Vec4i {
	var v math.Vec4i
	dst := []*int32{&v.X, &v.Y, &v.Z, &v.W}
	for i := 0; i < len(a) && i < 4; i++ {
		*dst[i] = a[i]
	}
	return v
}

func quat(a []float32) math.Quat {
	if len(a) < 4 {
		return math.QuatIdentity()
	}
	return math.Quat{X: a[0], Y: a[1], Z: a[2], W: a[3]}.Normalize()
}
