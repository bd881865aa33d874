package materials

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rawscene/pkg/diag"
	"github.com/Faultbox/rawscene/pkg/encoding"
	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
	"github.com/Faultbox/rawscene/pkg/texture"
)

func TestBinderInternsMaterialAndTextures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wood.png"), []byte("x"), 0o644))

	wood := &NativeTexture{ID: 42, Name: "Map #1", FileName: `C:\art\wood.png`}
	mat := &Material{MaterialID: 1, MaterialName: "table", Properties: []*Property{
		textured(PropDiffuse, wood),
		textured(PropSpecular, wood),
	}}
	diags := diag.NewCollector(nil)
	b := NewBinder(nil, texture.NewLocator(nil, dir), nil, diags)
	m := raw.NewModel()

	ix, err := b.Bind(m, mat)
	require.NoError(t, err)
	require.Equal(t, 1, m.MaterialCount())
	require.Equal(t, 2, m.TextureCount(), "one per usage")

	got := m.Material(ix)
	diffuse := m.Texture(got.Textures[raw.TextureUsageDiffuse])
	assert.Equal(t, "wood.png", diffuse.Name)
	assert.Equal(t, "C:/art/wood.png", diffuse.FileName)
	assert.Equal(t, filepath.Join(dir, "wood.png"), diffuse.FileLocation)
	assert.Equal(t, raw.TextureUsageSpecular, m.Texture(got.Textures[raw.TextureUsageSpecular]).Usage)
	assert.Zero(t, diags.Len())

	again, err := b.Bind(m, mat)
	require.NoError(t, err)
	assert.Equal(t, ix, again)
}

func TestBinderSharesTextures(t *testing.T) {
	shared := &NativeTexture{ID: 7, Name: "stone", FileName: "stone.png"}
	copyOfShared := *shared

	a := &Material{MaterialID: 1, MaterialName: "a", Properties: []*Property{textured(PropDiffuse, shared)}}
	b := &Material{MaterialID: 2, MaterialName: "b", Properties: []*Property{
		textured(PropDiffuse, &copyOfShared),
		value(PropDiffuseFactor, 0.5),
	}}

	m := raw.NewModel()
	binder := NewBinder(DefaultChain(), nil, nil, nil)
	ia, err := binder.Bind(m, a)
	require.NoError(t, err)
	ib, err := binder.Bind(m, b)
	require.NoError(t, err)

	assert.NotEqual(t, ia, ib)
	assert.Equal(t, 1, m.TextureCount())
	assert.Equal(t, m.Material(ia).Textures[raw.TextureUsageDiffuse], m.Material(ib).Textures[raw.TextureUsageDiffuse])
}

func TestBinderReportsMissingTexture(t *testing.T) {
	mat := &Material{MaterialName: "lost", Properties: []*Property{
		textured(PropDiffuse, &NativeTexture{ID: 1, Name: "gone", FileName: "gone.png"}),
	}}
	diags := diag.NewCollector(nil)
	b := NewBinder(nil, texture.NewLocator(nil, t.TempDir()), nil, diags)
	m := raw.NewModel()

	ix, err := b.Bind(m, mat)
	require.NoError(t, err)
	assert.Equal(t, 1, diags.Count(diag.MissingTexture))
	tex := m.Texture(m.Material(ix).Textures[raw.TextureUsageDiffuse])
	assert.Empty(t, tex.FileLocation)
}

func TestBinderDecodesNames(t *testing.T) {
	names, err := encoding.NewDecoder("euc-kr")
	require.NoError(t, err)
	mat := &Material{MaterialName: string([]byte{0xB3, 0xAA, 0xB9, 0xAB})}

	m := raw.NewModel()
	ix, err := NewBinder(nil, nil, names, nil).Bind(m, mat)
	require.NoError(t, err)
	assert.Equal(t, "나무", m.Material(ix).Name)
}

func TestBinderNilMaterial(t *testing.T) {
	diags := diag.NewCollector(nil)
	m := raw.NewModel()
	b := NewBinder(nil, nil, nil, diags)

	ix, err := b.Bind(m, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaterialName, m.Material(ix).Name)

	_, err = b.Bind(m, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, diags.Count(diag.UnresolvedMaterial), "resolved once per model")
}

func TestBinderRejectsEmptyProps(t *testing.T) {
	broken := ResolverFunc(func(mat NativeMaterial, _ *diag.Collector) *Resolved {
		return &Resolved{Name: mat.Name()}
	})
	_, err := NewBinder(Chain{broken}, nil, nil, nil).Bind(raw.NewModel(), &Material{MaterialName: "x"})
	assert.ErrorIs(t, err, ErrNoProperties)
	assert.True(t, strings.Contains(err.Error(), `"x"`))
}

func TestBinderAfterCondense(t *testing.T) {
	a := &Material{MaterialID: 1, MaterialName: "a", Properties: []*Property{value(PropDiffuse, 1, 0, 0)}}
	b := &Material{MaterialID: 2, MaterialName: "b", Properties: []*Property{value(PropDiffuse, 0, 0, 1)}}

	m := raw.NewModel()
	binder := NewBinder(nil, nil, nil, nil)
	_, err := binder.Bind(m, a)
	require.NoError(t, err)
	ib, err := binder.Bind(m, b)
	require.NoError(t, err)
	require.Equal(t, 1, ib)

	m.AddSurface(raw.NewSurface("s", 1))
	v0 := m.AddVertex(raw.Vertex{BlendSurfaceIx: -1})
	v1 := m.AddVertex(raw.Vertex{Position: math.Vec3{X: 1}, BlendSurfaceIx: -1})
	v2 := m.AddVertex(raw.Vertex{Position: math.Vec3{Y: 1}, BlendSurfaceIx: -1})
	_, err = m.AddTriangle(v0, v1, v2, ib, 0)
	require.NoError(t, err)

	m.Condense()
	require.Equal(t, 1, m.MaterialCount())

	again, err := binder.Bind(m, b)
	require.NoError(t, err)
	assert.Equal(t, 0, again)
	assert.Equal(t, "b", m.Material(again).Name)

	ia, err := binder.Bind(m, a)
	require.NoError(t, err)
	assert.Equal(t, 1, ia, "dropped material is interned again")
	_, err = m.AddTriangle(v0, v1, v2, ia, 0)
	assert.NoError(t, err)
}

func TestBinderTexturesWithoutID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wood.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stone.png"), []byte("x"), 0o644))

	wood := &Material{MaterialID: 1, MaterialName: "wood", Properties: []*Property{
		textured(PropDiffuse, &NativeTexture{Name: "wood", FileName: "wood.png"}),
	}}
	stone := &Material{MaterialID: 2, MaterialName: "stone", Properties: []*Property{
		textured(PropDiffuse, &NativeTexture{Name: "stone", FileName: "stone.png"}),
	}}

	m := raw.NewModel()
	binder := NewBinder(nil, texture.NewLocator(nil, dir), nil, nil)
	iw, err := binder.Bind(m, wood)
	require.NoError(t, err)
	is, err := binder.Bind(m, stone)
	require.NoError(t, err)

	woodTex := m.Texture(m.Material(iw).Textures[raw.TextureUsageDiffuse])
	stoneTex := m.Texture(m.Material(is).Textures[raw.TextureUsageDiffuse])
	assert.Equal(t, filepath.Join(dir, "wood.png"), woodTex.FileLocation)
	assert.Equal(t, filepath.Join(dir, "stone.png"), stoneTex.FileLocation)
}
