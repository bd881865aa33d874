// Package materials projects native scene materials onto the canonical
// material properties of package raw.
//
// A native material exposes a tree of named properties. Each Resolver knows
// one vendor's layout of that tree and either produces a Resolved material
// or declines; a Chain tries resolvers in priority order and falls back to a
// default material. Binder interns the outcome into a raw.Model.
package materials

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rawscene/pkg/encoding"
	"github.com/Faultbox/rawscene/pkg/math"
	"github.com/Faultbox/rawscene/pkg/raw"
)

// NativeTexture is a file texture bound to a native property.
type NativeTexture struct {
	ID               uint64    `yaml:"id"`
	Name             string    `yaml:"name"`
	FileName         string    `yaml:"file"`
	RelativeFileName string    `yaml:"relative_file,omitempty"`
	MediaName        string    `yaml:"media,omitempty"`
	Scale            []float32 `yaml:"uv_scale,omitempty"`
	Translation      []float32 `yaml:"uv_translation,omitempty"`
	Rotation         float32   `yaml:"uv_rotation,omitempty"`
}

// Media returns the referenced media file name, or the base of FileName
// when the source recorded none.
func (t *NativeTexture) Media() string {
	if t.MediaName != "" {
		return t.MediaName
	}
	return path.Base(encoding.NormalizePath(t.FileName))
}

// UVTransform returns the texture's placement. Missing components default
// to the identity.
func (t *NativeTexture) UVTransform() raw.UVTransform {
	uv := raw.IdentityUVTransform()
	if len(t.Scale) >= 2 {
		uv.Scale = math.Vec2{X: t.Scale[0], Y: t.Scale[1]}
	}
	if len(t.Translation) >= 2 {
		uv.Translation = math.Vec2{X: t.Translation[0], Y: t.Translation[1]}
	}
	uv.Rotation = t.Rotation
	return uv
}

// Values holds the numeric payload of a property. Booleans are stored as
// 0 or 1. In YAML it may be written as a scalar or a sequence.
type Values []float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		f, err := scalarValue(node)
		if err != nil {
			return err
		}
		*v = Values{f}
	case yaml.SequenceNode:
		out := make(Values, 0, len(node.Content))
		for _, n := range node.Content {
			f, err := scalarValue(n)
			if err != nil {
				return err
			}
			out = append(out, f)
		}
		*v = out
	default:
		return fmt.Errorf("line %d: property value must be a scalar or a sequence", node.Line)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Values) MarshalYAML() (any, error) {
	if len(v) == 1 {
		return v[0], nil
	}
	return []float64(v), nil
}

func scalarValue(n *yaml.Node) (float64, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("line %d: expected a scalar", n.Line)
	}
	if n.ShortTag() == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return 0, err
		}
		if b {
			return 1, nil
		}
		return 0, nil
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return 0, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return f, nil
}

// Property is one node of a native material's property tree. A nil
// *Property stands for an absent property; every accessor accepts it.
type Property struct {
	Name     string         `yaml:"name"`
	Values   Values         `yaml:"value,omitempty"`
	Texture  *NativeTexture `yaml:"texture,omitempty"`
	Children []*Property    `yaml:"children,omitempty"`
}

// Find returns the direct child named name, or nil.
func (p *Property) Find(name string) *Property {
	if p == nil {
		return nil
	}
	for _, c := range p.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Valid reports whether the property exists.
func (p *Property) Valid() bool {
	return p != nil
}

// Compound reports whether the property groups other properties.
func (p *Property) Compound() bool {
	return p != nil && len(p.Children) > 0
}

// BoundTexture returns the texture bound to the property, if any.
func (p *Property) BoundTexture() *NativeTexture {
	if p == nil {
		return nil
	}
	return p.Texture
}

// Float returns the first value, or def when the property is absent or empty.
func (p *Property) Float(def float32) float32 {
	if p == nil || len(p.Values) == 0 {
		return def
	}
	return float32(p.Values[0])
}

// Bool returns whether the first value is non-zero, or def when absent.
func (p *Property) Bool(def bool) bool {
	if p == nil || len(p.Values) == 0 {
		return def
	}
	return p.Values[0] != 0
}

// Vec3 returns the first three values. A single value is splatted.
func (p *Property) Vec3(def math.Vec3) math.Vec3 {
	if p == nil {
		return def
	}
	switch {
	case len(p.Values) >= 3:
		return math.Vec3{X: float32(p.Values[0]), Y: float32(p.Values[1]), Z: float32(p.Values[2])}
	case len(p.Values) == 1:
		return math.Splat3(float32(p.Values[0]))
	default:
		return def
	}
}

// NativeMaterial is the read-only view of a source material that resolvers
// consume.
type NativeMaterial interface {
	ID() uint64
	Name() string
	ShadingModel() string
	FindProperty(name string) *Property
	UserProperties() []string
}

// Material is a NativeMaterial decoded from a YAML material document.
type Material struct {
	MaterialID   uint64      `yaml:"id"`
	MaterialName string      `yaml:"name"`
	Shading      string      `yaml:"shading_model,omitempty"`
	Properties   []*Property `yaml:"properties,omitempty"`
	UserProps    []string    `yaml:"user_properties,omitempty"`
}

func (m *Material) ID() uint64               { return m.MaterialID }
func (m *Material) Name() string             { return m.MaterialName }
func (m *Material) ShadingModel() string     { return m.Shading }
func (m *Material) UserProperties() []string { return m.UserProps }

// FindProperty returns the top-level property named name, or nil.
func (m *Material) FindProperty(name string) *Property {
	for _, p := range m.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// SetProperty adds or replaces a top-level property.
func (m *Material) SetProperty(p *Property) {
	for i, q := range m.Properties {
		if q.Name == p.Name {
			m.Properties[i] = p
			return
		}
	}
	m.Properties = append(m.Properties, p)
}

// Textures returns every texture bound anywhere in the property tree, in
// document order.
func (m *Material) Textures() []*NativeTexture {
	var out []*NativeTexture
	var walk func(ps []*Property)
	walk = func(ps []*Property) {
		for _, p := range ps {
			if p.Texture != nil {
				out = append(out, p.Texture)
			}
			walk(p.Children)
		}
	}
	walk(m.Properties)
	return out
}

type materialDocument struct {
	Materials []*Material `yaml:"materials"`
}

// Decode reads a YAML material document.
func Decode(r io.Reader) ([]*Material, error) {
	var doc materialDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode materials: %w", err)
	}
	for i, m := range doc.Materials {
		if m == nil || strings.TrimSpace(m.MaterialName) == "" {
			return nil, fmt.Errorf("material %d: %w", i, ErrUnnamedMaterial)
		}
	}
	return doc.Materials, nil
}

// LoadFile reads a YAML material document from path.
func LoadFile(path string) ([]*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes materials as a YAML material document.
func Encode(w io.Writer, mats []*Material) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(materialDocument{Materials: mats}); err != nil {
		return err
	}
	return enc.Close()
}
