package scenefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rawscene/pkg/diag"
	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
)

const quadScene = `
root: 1
materials:
  - id: 5
    name: wall
    properties:
      - name: DiffuseColor
        value: [0.5, 0.25, 1]
lights:
  - name: sun
    type: directional
    intensity: 2
nodes:
  - id: 1
    name: root
  - id: 2
    name: mesh
    parent: 1
    translation: [0, 2, 0]
    surface: 10
  - id: 3
    name: bone
    parent: 1
    joint: true
    translation: [1, 0, 0]
  - id: 4
    name: light
    parent: 1
    light: sun
surfaces:
  - id: 10
    name: quad
    joints: [3]
    vertices:
      positions: [[0,0,0], [1,0,0], [1,1,0], [0,1,0], [2,2,2]]
      uv0: [[0,0], [1,0], [1,1], [0,1], [0,0]]
      joint_indices: [[0,0,0,0], [0,0,0,0], [0,0,0,0], [0,0,0,0], [0,0,0,0]]
      joint_weights: [[1,0,0,0], [1,0,0,0], [1,0,0,0], [1,0,0,0], [0,0,0,0]]
    polygons:
      - material: 5
        indices: [0, 1, 2, 3]
      - indices: [0, 2, 4]
      - material: 5
        indices: [0, 1, 9]
      - material: 5
        indices: [0, 1]
cameras:
  - name: main
    node: 1
    type: orthographic
    mag_x: 2
    mag_y: 1
    far: 100
animations:
  - name: bob
    times: [0, 1]
    channels:
      - node: 2
        translations: [[0,0,0], [0,1,0]]
      - node: 99
        translations: [[0,0,0]]
`

func buildQuad(t *testing.T) (*raw.Model, *diag.Collector) {
	t.Helper()
	scene, err := Decode(strings.NewReader(quadScene))
	require.NoError(t, err)

	diags := diag.NewCollector(nil)
	model, err := scene.Build(Options{Diags: diags})
	require.NoError(t, err)
	return model, diags
}

func TestBuildGeometry(t *testing.T) {
	model, diags := buildQuad(t)

	// quad fan (2) + triangle with the default material (1)
	assert.Equal(t, 3, model.TriangleCount())
	assert.Equal(t, 5, model.VertexCount())
	assert.Equal(t, [3]int{0, 1, 2}, model.Triangle(0).Verts)
	assert.Equal(t, [3]int{0, 2, 3}, model.Triangle(1).Verts)

	want := raw.AttribPosition | raw.AttribUV0 | raw.AttribJointIndices | raw.AttribJointWeights
	assert.Equal(t, want, model.VertexAttributes())

	assert.Equal(t, 2, diags.Count(diag.MalformedGeometry))
}

func TestBuildMaterials(t *testing.T) {
	model, _ := buildQuad(t)

	require.Equal(t, 2, model.MaterialCount())
	wall := model.Material(model.Triangle(0).MaterialIndex)
	assert.Equal(t, "wall", wall.Name)
	assert.Equal(t, raw.ShadingStandard, wall.Info.ShadingModel())

	def := model.Material(model.Triangle(2).MaterialIndex)
	assert.Equal(t, "DefaultMaterial", def.Name)
	assert.Equal(t, model.Triangle(0).MaterialIndex, model.Triangle(1).MaterialIndex)
}

func TestBuildHierarchy(t *testing.T) {
	model, _ := buildQuad(t)

	assert.Equal(t, uint64(1), model.RootNode())
	require.Equal(t, 4, model.NodeCount())

	root := model.Node(model.NodeByID(1))
	assert.ElementsMatch(t, []uint64{2, 3, 4}, root.ChildIDs)

	mesh := model.Node(model.NodeByID(2))
	assert.Equal(t, uint64(10), mesh.SurfaceID)
	assert.Equal(t, math.Vec3{Y: 2}, mesh.Translation)
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 1}, mesh.Scale)

	bone := model.Node(model.NodeByID(3))
	assert.True(t, bone.IsJoint)

	light := model.Node(model.NodeByID(4))
	require.Equal(t, 0, light.LightIx)
	assert.Equal(t, "sun", model.Light(0).Name)
	assert.Equal(t, raw.LightDirectional, model.Light(0).Type)
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 1}, model.Light(0).Color)
}

func TestBuildSkin(t *testing.T) {
	model, _ := buildQuad(t)

	require.Equal(t, 1, model.SurfaceCount())
	s := model.Surface(0)
	assert.Equal(t, []uint64{3}, s.JointIDs)
	require.Len(t, s.InverseBindMatrices, 1)

	p := s.InverseBindMatrices[0].TransformPoint(math.Vec3{X: 1})
	assert.InDelta(t, 0, p.X, 1e-6)

	// vertices 0..3 are weighted to the bone, shifted by -1 in bind space
	require.Len(t, s.JointGeometryMins, 1)
	assert.InDelta(t, -1, s.JointGeometryMins[0].X, 1e-6)
	assert.InDelta(t, 0, s.JointGeometryMaxs[0].X, 1e-6)
	assert.InDelta(t, 1, s.JointGeometryMaxs[0].Y, 1e-6)
}

func TestBuildCamerasAndAnimations(t *testing.T) {
	model, _ := buildQuad(t)

	require.Equal(t, 1, model.CameraCount())
	cam := model.Camera(0)
	assert.Equal(t, raw.CameraOrthographic, cam.Mode)
	assert.Equal(t, float32(2), cam.Orthographic.MagX)
	assert.Equal(t, float32(100), cam.Orthographic.FarZ)

	require.Equal(t, 1, model.AnimationCount())
	anim := model.Animation(0)
	require.Len(t, anim.Channels, 1, "channel for unknown node dropped")
	assert.Equal(t, model.NodeByID(2), anim.Channels[0].NodeIndex)
	assert.Equal(t, math.Vec3{Y: 1}, anim.Channels[0].Translations[1])
}

func TestBuildBlendChannels(t *testing.T) {
	doc := `
surfaces:
  - id: 1
    name: face
    blend_channels:
      - name: smile
        default_deform: 0.5
        positions: [[0,1,0], [0,0,0], [0,0,0]]
    vertices:
      positions: [[0,0,0], [1,0,0], [0,1,0]]
    polygons:
      - indices: [0, 1, 2]
`
	scene, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	model, err := scene.Build(Options{})
	require.NoError(t, err)

	s := model.Surface(0)
	require.Len(t, s.BlendChannels, 1)
	assert.Equal(t, "smile", s.BlendChannels[0].Name)
	assert.False(t, s.BlendChannels[0].HasNormals)

	v := model.Vertex(0)
	assert.Equal(t, 0, v.BlendSurfaceIx)
	require.Len(t, v.Blends, 1)
	assert.Equal(t, math.Vec3{Y: 1}, v.Blends[0].Position)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"duplicate node", "nodes: [{id: 1}, {id: 1}]", ErrDuplicateID},
		{"duplicate surface", "surfaces: [{id: 4}, {id: 4}]", ErrDuplicateID},
		{"unknown parent", "nodes: [{id: 1, parent: 7}]", ErrUnknownParent},
		{"cycle", "nodes: [{id: 1, parent: 2}, {id: 2, parent: 1}]", ErrCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(quadScene), 0o644))

	scene, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, scene.Nodes, 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildParentCycle(t *testing.T) {
	scene := &Scene{
		Nodes: []Node{
			{ID: 1, Name: "a", Parent: 2, Joint: true},
			{ID: 2, Name: "b", Parent: 1, Joint: true},
		},
		Surfaces: []Surface{{
			ID:     5,
			Name:   "skin",
			Joints: []uint64{1, 2},
			Vertices: Vertices{
				Positions: [][]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			},
			Polygons: []Polygon{{Indices: []int{0, 1, 2}}},
		}},
	}

	diags := diag.NewCollector(nil)
	model, err := scene.Build(Options{Diags: diags})
	require.NoError(t, err)

	s := model.Surface(0)
	require.Len(t, s.InverseBindMatrices, 2)
	assert.Equal(t, 1, model.TriangleCount())
	assert.Positive(t, diags.Count(diag.MalformedGeometry))
}
