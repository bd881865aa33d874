package raw

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/rawscene/pkg/math"
)

// ComputeNormalsOption controls when TransformGeometry computes normals.
type ComputeNormalsOption int

const (
	ComputeNormalsNever   ComputeNormalsOption = iota
	ComputeNormalsBroken                       // repair zero-length normals only
	ComputeNormalsMissing                      // compute when the source had none
	ComputeNormalsAlways
)

// String returns the option name as used on the command line.
func (o ComputeNormalsOption) String() string {
	switch o {
	case ComputeNormalsNever:
		return "never"
	case ComputeNormalsBroken:
		return "broken"
	case ComputeNormalsMissing:
		return "missing"
	case ComputeNormalsAlways:
		return "always"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// ParseComputeNormalsOption parses never, broken, missing or always.
func ParseComputeNormalsOption(s string) (ComputeNormalsOption, error) {
	switch strings.ToLower(s) {
	case "never":
		return ComputeNormalsNever, nil
	case "broken":
		return ComputeNormalsBroken, nil
	case "missing":
		return ComputeNormalsMissing, nil
	case "always":
		return ComputeNormalsAlways, nil
	default:
		return ComputeNormalsNever, fmt.Errorf("unknown compute-normals option %q", s)
	}
}

// normalTolerance matches the FBX SDK tolerance used for degenerate vectors.
const normalTolerance = 1e-6

// TransformGeometry runs the geometry passes selected by normals.
func (m *Model) TransformGeometry(normals ComputeNormalsOption) {
	switch normals {
	case ComputeNormalsNever:
	case ComputeNormalsMissing, ComputeNormalsAlways:
		if normals == ComputeNormalsMissing && m.vertexAttributes&AttribNormal != 0 {
			return
		}
		count := m.CalculateNormals(false)
		m.vertexAttributes |= AttribNormal
		m.log.Info("computed normals", zap.Int("count", count), zap.Stringer("mode", normals))
	case ComputeNormalsBroken:
		count := m.CalculateNormals(true)
		m.vertexAttributes |= AttribNormal
		if count > 0 {
			m.log.Info("repaired empty normals", zap.Int("count", count))
		}
	}
}

// CalculateNormals recomputes vertex normals as the normalized sum of the unit
// face normals around each vertex. With onlyBroken set, only normals shorter
// than the tolerance are replaced. Returns the number of normals written.
func (m *Model) CalculateNormals(onlyBroken bool) int {
	var centroid math.Vec3
	broken := make(map[int]bool)
	n := float32(len(m.vertices))
	for i := range m.vertices {
		v := &m.vertices[i]
		centroid = centroid.Add(v.Position.Scale(1 / n))
		if onlyBroken && v.Normal.LengthSquared() >= normalTolerance {
			continue
		}
		v.Normal = math.Vec3{}
		if onlyBroken {
			broken[i] = true
		}
	}

	for _, t := range m.triangles {
		relevant := !onlyBroken
		for _, vi := range t.Verts {
			relevant = relevant || broken[vi]
		}
		if !relevant {
			continue
		}
		faceNormal := m.faceNormal(t.Verts)
		for _, vi := range t.Verts {
			if !onlyBroken || broken[vi] {
				m.vertices[vi].Normal = m.vertices[vi].Normal.Add(faceNormal)
			}
		}
	}

	for i := range m.vertices {
		if onlyBroken && !broken[i] {
			continue
		}
		v := &m.vertices[i]
		if v.Normal.LengthSquared() < normalTolerance {
			v.Normal = v.Position.Sub(centroid)
			if v.Normal.LengthSquared() < normalTolerance {
				v.Normal = math.Vec3{Y: 1}
				continue
			}
		}
		v.Normal = v.Normal.Normalize()
	}
	m.index.rebuild(m.vertices)

	if onlyBroken {
		return len(broken)
	}
	return len(m.vertices)
}

// faceNormal returns the unit normal of a triangle, built from the two edges
// adjacent to the corner opposite the longest edge, or zero if degenerate.
func (m *Model) faceNormal(verts [3]int) math.Vec3 {
	p := [3]math.Vec3{
		m.vertices[verts[0]].Position,
		m.vertices[verts[1]].Position,
		m.vertices[verts[2]].Position,
	}
	l0 := p[1].Sub(p[0]).LengthSquared()
	l1 := p[2].Sub(p[1]).LengthSquared()
	l2 := p[0].Sub(p[2]).LengthSquared()
	var corner int
	switch {
	case l0 > l1 && l0 > l2:
		corner = 2
	case l0 > l1:
		corner = 1
	case l1 > l2:
		corner = 0
	default:
		corner = 1
	}
	e0 := p[(corner+1)%3].Sub(p[corner])
	e1 := p[(corner+2)%3].Sub(p[corner])
	if e0.LengthSquared() < normalTolerance || e1.LengthSquared() < normalTolerance {
		return math.Vec3{}
	}
	n := e0.Cross(e1)
	length := n.Length()
	if length < normalTolerance {
		return math.Vec3{}
	}
	return n.Scale(1 / length)
}

// TransformTextures applies each transform in order to the UV sets the model
// carries.
func (m *Model) TransformTextures(transforms []func(math.Vec2) math.Vec2) {
	for i := range m.vertices {
		v := &m.vertices[i]
		if m.vertexAttributes&AttribUV0 != 0 {
			for _, fn := range transforms {
				v.UV0 = fn(v.UV0)
			}
		}
		if m.vertexAttributes&AttribUV1 != 0 {
			for _, fn := range transforms {
				v.UV1 = fn(v.UV1)
			}
		}
	}
	m.index.rebuild(m.vertices)
}

// FlipV is the usual texture transform between bottom-left and top-left UV origins.
func FlipV(uv math.Vec2) math.Vec2 {
	return math.Vec2{X: uv.X, Y: 1 - uv.Y}
}
