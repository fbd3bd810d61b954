// Package math provides float32 vector and matrix types for scene processing.
package math

import "github.com/chewxy/math32"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Splat3 returns a vector with all components set to s.
func Splat3(s float32) Vec3 {
	return Vec3{s, s, s}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns a unit vector. The zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Min returns the component-wise minimum.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{math32.Min(v.X, other.X), math32.Min(v.Y, other.Y), math32.Min(v.Z, other.Z)}
}

// Max returns the component-wise maximum.
func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{math32.Max(v.X, other.X), math32.Max(v.Y, other.Y), math32.Max(v.Z, other.Z)}
}

// Lerp blends v towards other by t.
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	return v.Scale(1 - t).Add(other.Scale(t))
}

// Array returns the components as an array, for packed vertex buffers.
func (v Vec3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// parallelDot is the cosine above which two directions are treated as parallel.
const parallelDot = 0.9995

// Slerp spherically interpolates between a and b. The direction is blended
// on the sphere while the length is blended linearly, so the result of
// blending two view vectors keeps a sensible distance to the target.
// Nearly parallel (or degenerate) inputs fall back to a normalized lerp.
func Slerp(a, b Vec3, t float32) Vec3 {
	length := lerp(a.Length(), b.Length(), t)

	n1 := a.Normalize()
	n2 := b.Normalize()

	dot := n1.Dot(n2)
	if dot > parallelDot {
		return n1.Lerp(n2, t).Normalize().Scale(length)
	}

	theta := math32.Acos(math32.Max(-1, math32.Min(1, dot)))
	sinTheta := math32.Sin(theta)
	if sinTheta < 1e-6 {
		// Opposite directions have no unique great circle.
		return n1.Lerp(n2, t).Normalize().Scale(length)
	}

	s0 := math32.Sin((1-t)*theta) / sinTheta
	s1 := math32.Sin(t*theta) / sinTheta
	return n1.Scale(s0).Add(n2.Scale(s1)).Normalize().Scale(length)
}

func lerp(a, b, t float32) float32 {
	return (1-t)*a + t*b
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// WrapPeriod folds x into [0, period] using floor division. The result is
// clamped so float rounding at the loop boundary never escapes the range.
func WrapPeriod(x, period float32) float32 {
	x -= math32.Floor(x/period) * period
	return math32.Max(0, math32.Min(x, period))
}
