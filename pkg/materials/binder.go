package materials

import (
	"fmt"

	"github.com/Faultbox/rawscene/pkg/diag"
	"github.com/Faultbox/rawscene/pkg/encoding"
	"github.com/Faultbox/rawscene/pkg/raw"
	"github.com/Faultbox/rawscene/pkg/texture"
)

type bindKey struct {
	model *raw.Model
	id    uint64
	name  string
}

// binding is a cached Bind result. The material it names is checked again on
// every hit, since Condense may have moved or dropped it.
type binding struct {
	ix    int
	name  string
	props raw.MatProps
}

func (bd binding) valid(m *raw.Model) bool {
	if bd.ix < 0 || bd.ix >= m.MaterialCount() {
		return false
	}
	mat := m.Material(bd.ix)
	return mat.Name == bd.name && mat.Info != nil && mat.Info.Equal(bd.props)
}

// Binder resolves native materials and interns the result, together with
// its located textures, into a raw.Model. Each native material is resolved
// once per model, so diagnostics are not repeated for every polygon.
type Binder struct {
	chain   Chain
	locator *texture.Locator
	names   *encoding.Decoder
	diags   *diag.Collector
	bound   map[bindKey]binding
}

// NewBinder creates a binder. locator and names may be nil, in which case
// texture files are not looked up and names are taken verbatim.
func NewBinder(chain Chain, locator *texture.Locator, names *encoding.Decoder, diags *diag.Collector) *Binder {
	if chain == nil {
		chain = DefaultChain()
	}
	return &Binder{
		chain:   chain,
		locator: locator,
		names:   names,
		diags:   diags,
		bound:   make(map[bindKey]binding),
	}
}

// Bind returns the model's material index for mat. A nil mat binds the
// default material.
func (b *Binder) Bind(m *raw.Model, mat NativeMaterial) (int, error) {
	key := bindKey{model: m}
	if mat != nil {
		key.id, key.name = mat.ID(), mat.Name()
	}
	if bd, ok := b.bound[key]; ok && bd.valid(m) {
		return bd.ix, nil
	}

	res := b.chain.Resolve(mat, b.diags)
	if res.Props == nil {
		return -1, fmt.Errorf("material %q: %w", res.Name, ErrNoProperties)
	}

	slots := raw.NoTextures()
	for usage, tex := range res.Textures {
		if tex != nil {
			slots[usage] = b.bindTexture(m, tex, raw.TextureUsage(usage))
		}
	}
	name := b.names.Name(res.Name)
	ix := m.AddMaterialProps(res.ID, name, slots, res.Props, res.UserProperties)
	b.bound[key] = binding{ix: ix, name: name, props: res.Props}
	return ix, nil
}

// bindTexture interns tex under its file identity: the referenced media
// file name, or the texture name when no file is recorded.
func (b *Binder) bindTexture(m *raw.Model, tex *NativeTexture, usage raw.TextureUsage) int {
	fileName := encoding.NormalizePath(b.names.Name(tex.FileName))
	name := b.names.Name(tex.Media())
	if fileName == "" || name == "." {
		name = b.names.Name(tex.Name)
	}

	location := ""
	if b.locator != nil && fileName != "" {
		var ok bool
		location, ok = b.locator.Locate(tex.ID, fileName, b.names.Name(tex.RelativeFileName))
		if !ok {
			b.diags.Warn(diag.MissingTexture, name, "could not locate %s texture file %q", usage, fileName)
		}
	}
	return m.AddTexture(name, fileName, location, usage)
}
