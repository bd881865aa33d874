package math

import "github.com/chewxy/math32"

// Bounds is an axis-aligned bounding box. The zero value is empty.
type Bounds struct {
	Min   Vec3
	Max   Vec3
	Valid bool
}

// Clear empties the bounds.
func (b *Bounds) Clear() {
	b.Min = Splat3(math32.Inf(1))
	b.Max = Splat3(math32.Inf(-1))
	b.Valid = false
}

// AddPoint grows the bounds to include p.
func (b *Bounds) AddPoint(p Vec3) {
	if !b.Valid {
		b.Min, b.Max, b.Valid = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}
