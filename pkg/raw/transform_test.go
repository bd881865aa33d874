package raw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rawscene/pkg/math"
)

func TestCalculateNormals(t *testing.T) {
	m := NewModel()
	mat := addMaterial(m, "M")
	s := m.AddSurface(NewSurface("s", 1))
	addTriangle(t, m, vtx(0, 0, 0), vtx(1, 0, 0), vtx(0, 1, 0), mat, s)

	count := m.CalculateNormals(false)
	assert.Equal(t, 3, count)
	for i := 0; i < m.VertexCount(); i++ {
		n := m.Vertex(i).Normal
		assert.InDelta(t, 0, n.X, 1e-6)
		assert.InDelta(t, 0, n.Y, 1e-6)
		assert.InDelta(t, 1, n.Z, 1e-6)
	}
}

func TestCalculateNormalsOnlyBroken(t *testing.T) {
	m := NewModel()
	mat := addMaterial(m, "M")
	s := m.AddSurface(NewSurface("s", 1))
	a := vtx(0, 0, 0)
	a.Normal = math.Vec3{X: 1}
	addTriangle(t, m, a, vtx(1, 0, 0), vtx(0, 1, 0), mat, s)

	count := m.CalculateNormals(true)
	assert.Equal(t, 2, count)
	assert.Equal(t, math.Vec3{X: 1}, m.Vertex(0).Normal, "valid normal kept")
	assert.InDelta(t, 1, m.Vertex(1).Normal.Z, 1e-6)
}

func TestCalculateNormalsDegenerate(t *testing.T) {
	m := NewModel()
	mat := addMaterial(m, "M")
	s := m.AddSurface(NewSurface("s", 1))
	// Collinear points: no face normal, so the centroid direction is used.
	addTriangle(t, m, vtx(-1, 0, 0), vtx(0, 0, 0), vtx(1, 0, 0), mat, s)

	m.CalculateNormals(false)
	assert.InDelta(t, -1, m.Vertex(0).Normal.X, 1e-6)
	assert.Equal(t, math.Vec3{Y: 1}, m.Vertex(1).Normal, "vertex at the centroid")
	assert.InDelta(t, 1, m.Vertex(2).Normal.X, 1e-6)
}

func TestTransformGeometry(t *testing.T) {
	tests := []struct {
		name     string
		option   ComputeNormalsOption
		hasAttr  bool
		wantZ    float32
		wantAttr bool
	}{
		{"never", ComputeNormalsNever, false, 0, false},
		{"missing without normals", ComputeNormalsMissing, false, 1, true},
		{"missing with normals", ComputeNormalsMissing, true, 0, true},
		{"always", ComputeNormalsAlways, true, 1, true},
		{"broken", ComputeNormalsBroken, true, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel()
			if tt.hasAttr {
				m.AddVertexAttribute(AttribNormal)
			}
			mat := addMaterial(m, "M")
			s := m.AddSurface(NewSurface("s", 1))
			addTriangle(t, m, vtx(0, 0, 0), vtx(1, 0, 0), vtx(0, 1, 0), mat, s)

			m.TransformGeometry(tt.option)
			assert.InDelta(t, tt.wantZ, m.Vertex(0).Normal.Z, 1e-6)
			assert.Equal(t, tt.wantAttr, m.VertexAttributes().Has(AttribNormal))
		})
	}
}

func TestParseComputeNormalsOption(t *testing.T) {
	for _, o := range []ComputeNormalsOption{ComputeNormalsNever, ComputeNormalsBroken, ComputeNormalsMissing, ComputeNormalsAlways} {
		got, err := ParseComputeNormalsOption(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	_, err := ParseComputeNormalsOption("sometimes")
	assert.Error(t, err)
}

func TestTransformTexturesFlipV(t *testing.T) {
	m := NewModel()
	m.AddVertexAttribute(AttribUV0)
	v := vtx(0, 0, 0)
	v.UV0 = math.Vec2{X: 0.25, Y: 0.25}
	v.UV1 = math.Vec2{X: 0.25, Y: 0.25}
	ix := m.AddVertex(v)

	m.TransformTextures([]func(math.Vec2) math.Vec2{FlipV})
	got := m.Vertex(ix)
	assert.Equal(t, math.Vec2{X: 0.25, Y: 0.75}, got.UV0)
	assert.Equal(t, math.Vec2{X: 0.25, Y: 0.25}, got.UV1, "uv1 not carried")
}
