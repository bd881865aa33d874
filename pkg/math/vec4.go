package math

import "github.com/chewxy/math32"

// Vec4 is a 4-component vector (colors, tangents with handedness, weights).
type Vec4 struct {
	X, Y, Z, W float32
}

// Splat4 returns a vector with all components set to s.
func Splat4(s float32) Vec4 {
	return Vec4{s, s, s, s}
}

// Add returns v + other.
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v.X + other.X, v.Y + other.Y, v.Z + other.Z, v.W + other.W}
}

// Sub returns v - other.
func (v Vec4) Sub(other Vec4) Vec4 {
	return Vec4{v.X - other.X, v.Y - other.Y, v.Z - other.Z, v.W - other.W}
}

// Scale returns v * scalar.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Length returns the magnitude over all four components.
func (v Vec4) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z + v.W*v.W)
}

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Vec4i is a 4-component integer vector, used for joint indices.
type Vec4i struct {
	X, Y, Z, W int32
}
