package raw

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rawscene/pkg/math"
)

func vtx(x, y, z float32) Vertex {
	v := NewVertex()
	v.Position = math.Vec3{X: x, Y: y, Z: z}
	return v
}

func standardProps(r, g, b float32) MatProps {
	return TraditionalMatProps{
		BaseProps:     BaseProps{Shading: ShadingStandard},
		DiffuseFactor: math.Vec4{X: r, Y: g, Z: b, W: 1},
		BumpFactor:    1,
	}
}

func addMaterial(m *Model, name string) int {
	return m.AddMaterialProps(0, name, NoTextures(), standardProps(1, 1, 1), nil)
}

func addTriangle(t *testing.T, m *Model, a, b, c Vertex, material, surface int) int {
	t.Helper()
	ix, err := m.AddTriangle(m.AddVertex(a), m.AddVertex(b), m.AddVertex(c), material, surface)
	require.NoError(t, err)
	return ix
}
