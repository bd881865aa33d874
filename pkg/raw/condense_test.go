package raw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rawscene/pkg/math"
)

func TestCondenseRemapsVertices(t *testing.T) {
	m := NewModel()
	mat := addMaterial(m, "M")
	s := m.AddSurface(NewSurface("s", 1))
	for i := 0; i < 5; i++ {
		m.AddVertex(vtx(float32(i), 0, 0))
	}
	_, err := m.AddTriangle(4, 2, 0, mat, s)
	require.NoError(t, err)

	m.Condense()

	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, [3]int{2, 1, 0}, m.Triangle(0).Verts)
	assert.Equal(t, float32(4), m.Vertex(2).Position.X)
	assert.Equal(t, float32(2), m.Vertex(1).Position.X)
	require.NoError(t, m.Validate())

	// The rebuilt index still deduplicates.
	assert.Equal(t, 1, m.AddVertex(vtx(2, 0, 0)))
}

func TestCondenseDropsUnusedTables(t *testing.T) {
	m := NewModel()
	used := NoTextures()
	used[TextureUsageDiffuse] = m.AddTexture("kept", "kept.png", "", TextureUsageDiffuse)
	orphan := NoTextures()
	orphan[TextureUsageDiffuse] = m.AddTexture("orphan", "orphan.png", "", TextureUsageDiffuse)

	m.AddMaterialProps(0, "orphan", orphan, standardProps(1, 0, 0), nil)
	kept := m.AddMaterialProps(0, "kept", used, standardProps(0, 1, 0), nil)

	m.AddSurface(NewSurface("unused", 1))
	surf := m.AddSurface(NewSurface("used", 2))
	n := NewNode(3, "holder", 0)
	n.SurfaceID = 1
	m.AddNode(n)

	addTriangle(t, m, vtx(0, 0, 0), vtx(1, 0, 0), vtx(0, 1, 0), kept, surf)
	m.Condense()

	require.Equal(t, 1, m.MaterialCount())
	require.Equal(t, 1, m.TextureCount())
	require.Equal(t, 1, m.SurfaceCount())
	assert.Equal(t, "kept", m.Material(0).Name)
	assert.Equal(t, 0, m.Material(0).Textures[TextureUsageDiffuse])
	assert.Equal(t, "kept", m.Texture(0).Name)
	assert.Equal(t, uint64(2), m.Surface(0).ID)
	assert.Equal(t, Triangle{Verts: [3]int{0, 1, 2}}, m.Triangle(0))
	assert.Zero(t, m.Node(0).SurfaceID)
	require.NoError(t, m.Validate())
}

func TestCondenseCollapsesDuplicates(t *testing.T) {
	m := NewModel()
	m.AddVertexAttribute(AttribPosition | AttribUV0)
	mat := addMaterial(m, "M")
	s := m.AddSurface(NewSurface("s", 1))

	a := vtx(0, 0, 0)
	a.UV0 = math.Vec2{X: 0.2}
	b := vtx(0, 0, 0)
	b.UV0 = math.Vec2{X: 0.7}
	addTriangle(t, m, a, b, vtx(1, 0, 0), mat, s)
	require.Equal(t, 3, m.VertexCount())

	zeroU := func(uv math.Vec2) math.Vec2 { return math.Vec2{Y: uv.Y} }
	m.TransformTextures([]func(math.Vec2) math.Vec2{zeroU})
	m.Condense()

	assert.Equal(t, 2, m.VertexCount())
	assert.Equal(t, [3]int{0, 0, 1}, m.Triangle(0).Verts)
}

func TestCondenseRemapsBlendSurfaces(t *testing.T) {
	m := NewModel()
	mat := addMaterial(m, "M")
	m.AddSurface(NewSurface("gone", 1))
	face := NewSurface("face", 2)
	face.BlendChannels = []BlendChannel{{Name: "smile"}}
	surf := m.AddSurface(face)

	v := vtx(0, 0, 0)
	v.BlendSurfaceIx = surf
	v.Blends = []BlendVertex{{Position: math.Vec3{Y: 0.1}}}
	w := v
	w.Position = math.Vec3{X: 1}
	u := v
	u.Position = math.Vec3{Y: 1}
	addTriangle(t, m, v, w, u, mat, surf)

	m.Condense()
	assert.Equal(t, 0, m.Vertex(0).BlendSurfaceIx)
	assert.Len(t, m.Vertex(0).Blends, 1)
	require.NoError(t, m.Validate())
}
