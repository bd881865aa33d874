package raw

import (
	"errors"
	"fmt"
)

// Validate checks every cross reference of the model: triangle indices,
// texture slots and blend delta counts. It joins all violations found.
func (m *Model) Validate() error {
	var errs []error
	for i, t := range m.triangles {
		for j, v := range t.Verts {
			if v < 0 || v >= len(m.vertices) {
				errs = append(errs, fmt.Errorf("triangle %d vertex %d (%d): %w", i, j, v, ErrIndexOutOfRange))
			}
		}
		if t.MaterialIndex < 0 || t.MaterialIndex >= len(m.materials) {
			errs = append(errs, fmt.Errorf("triangle %d material (%d): %w", i, t.MaterialIndex, ErrIndexOutOfRange))
		}
		if t.SurfaceIndex < 0 || t.SurfaceIndex >= len(m.surfaces) {
			errs = append(errs, fmt.Errorf("triangle %d surface (%d): %w", i, t.SurfaceIndex, ErrIndexOutOfRange))
		}
	}
	for i := range m.materials {
		for u, tex := range m.materials[i].Textures {
			if tex != -1 && (tex < 0 || tex >= len(m.textures)) {
				errs = append(errs, fmt.Errorf("material %q %s slot (%d): %w",
					m.materials[i].Name, TextureUsage(u), tex, ErrInvalidTextureSlot))
			}
		}
	}
	for i := range m.vertices {
		v := &m.vertices[i]
		want := 0
		if v.BlendSurfaceIx >= 0 {
			if v.BlendSurfaceIx >= len(m.surfaces) {
				errs = append(errs, fmt.Errorf("vertex %d blend surface (%d): %w", i, v.BlendSurfaceIx, ErrIndexOutOfRange))
				continue
			}
			want = len(m.surfaces[v.BlendSurfaceIx].BlendChannels)
		}
		if len(v.Blends) != want {
			errs = append(errs, fmt.Errorf("vertex %d has %d deltas, want %d: %w", i, len(v.Blends), want, ErrBlendChannelCount))
		}
	}
	return errors.Join(errs...)
}

// CheckIndexWidth reports ErrIndexWidthExceeded when the model holds more
// vertices than 16-bit indices can address.
func (m *Model) CheckIndexWidth() error {
	if len(m.vertices) > MaxShortIndexVertices {
		return fmt.Errorf("%d vertices: %w", len(m.vertices), ErrIndexWidthExceeded)
	}
	return nil
}
