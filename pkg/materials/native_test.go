package materials

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
)

const vrayDocument = `
materials:
  - id: 100
    name: floor
    shading_model: VRayMtl
    user_properties: ['{"lod":0}']
    properties:
      - name: UseLightmap
        value: true
      - name: 3dsMax
        children:
          - name: basic
            children:
              - name: diffuse
                value: [0.8, 0.7, 0.6]
              - name: reflection_glossiness
                value: 0.75
          - name: BRDF
            children:
              - name: brdf_useRoughness
                value: false
          - name: options
            children:
              - name: option_doubleSided
                value: 1
          - name: maps
            children:
              - name: texmap_diffuse
                texture:
                  id: 7
                  name: floor_diffuse
                  file: textures/floor.png
                  uv_scale: [4, 4]
  - id: 101
    name: wall
    properties:
      - name: DiffuseColor
        value: [1, 1, 1]
`

func TestDecodeMaterials(t *testing.T) {
	mats, err := Decode(strings.NewReader(vrayDocument))
	require.NoError(t, err)
	require.Len(t, mats, 2)

	floor := mats[0]
	assert.Equal(t, uint64(100), floor.ID())
	assert.Equal(t, "VRayMtl", floor.ShadingModel())
	assert.Equal(t, []string{`{"lod":0}`}, floor.UserProperties())
	assert.True(t, floor.FindProperty("UseLightmap").Bool(false))
	require.Len(t, floor.Textures(), 1)
	assert.Equal(t, "floor.png", floor.Textures()[0].Media())

	res := DefaultChain().Resolve(floor, nil)
	props, ok := res.Props.(raw.VRayMatProps)
	require.True(t, ok)
	assert.InDelta(t, 0.25, props.Roughness, 1e-6)
	assert.InDelta(t, 0.7, props.DiffuseColor.Y, 1e-6)
	assert.True(t, props.DoubleSided())
	assert.Equal(t, float32(4), props.UVTransform.Scale.X)
}

func TestDecodeRejectsUnnamed(t *testing.T) {
	_, err := Decode(strings.NewReader("materials:\n  - id: 1\n"))
	assert.ErrorIs(t, err, ErrUnnamedMaterial)

	_, err = Decode(strings.NewReader("materials:\n  - name: m\n    properties:\n      - name: x\n        value: {a: 1}\n"))
	assert.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	mats, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, mats)
}

func TestEncodeDecode(t *testing.T) {
	mat := &Material{MaterialID: 5, MaterialName: "m", Properties: []*Property{
		value(PropDiffuse, 0.5, 0.5, 0.5),
		value(PropBumpFactor, 2),
	}}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []*Material{mat}))
	assert.Contains(t, buf.String(), "value: 2\n")

	back, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, mat.Properties[0].Values, back[0].Properties[0].Values)
}

func TestPropertyAccessorsOnAbsent(t *testing.T) {
	var p *Property
	assert.False(t, p.Valid())
	assert.Nil(t, p.Find("x"))
	assert.Nil(t, p.BoundTexture())
	assert.Equal(t, float32(3), p.Float(3))
	assert.True(t, p.Bool(true))

	splat := value("c", 0.5)
	assert.Equal(t, float32(0.5), splat.Vec3(p.Vec3(math.Splat3(1))).Z)
	assert.Equal(t, float32(1), value("short", 1, 2).Vec3(math.Splat3(1)).Y, "two values fall back")
}

func TestSetProperty(t *testing.T) {
	m := &Material{MaterialName: "m"}
	m.SetProperty(value("A", 1))
	m.SetProperty(value("A", 2))
	require.Len(t, m.Properties, 1)
	assert.Equal(t, float32(2), m.FindProperty("A").Float(0))
}
