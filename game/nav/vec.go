package nav

import "math"

// Vec2 is a direction or offset on the XZ plane.
type Vec2 struct {
	X, Z float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Z + o.Z} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Z * s} }

// Len returns the vector length.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Z) }

// Normalized returns the unit vector, or the zero vector if v is
// (near-)zero. Zero in means zero out, never NaN.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Z / l}
}

// IsZero reports whether v has (near-)zero length.
func (v Vec2) IsZero() bool { return v.Len() < 1e-9 }

// Perp returns v rotated 90 degrees counterclockwise on the XZ plane.
func (v Vec2) Perp() Vec2 { return Vec2{-v.Z, v.X} }

// Direction returns the unit vector from (x0,z0) to (x1,z1).
func Direction(x0, z0, x1, z1 float64) Vec2 {
	return Vec2{x1 - x0, z1 - z0}.Normalized()
}

// Dist returns the distance between two XZ points.
func Dist(x0, z0, x1, z1 float64) float64 {
	return math.Hypot(x1-x0, z1-z0)
}
