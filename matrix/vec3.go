// SPDX-License-Identifier: MIT

package matrix

import "math"

// Vec3 is a 3-component vector used for points, field values and
// magnetization. It is a value type: every method returns a new vector.
type Vec3 [3]float64

// Zero3 is the zero vector.
var Zero3 = Vec3{}

// Add returns v+w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }

// Sub returns v-w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

// Scale returns s·v.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{s * v[0], s * v[1], s * v[2]} }

// Neg returns -v.
func (v Vec3) Neg() Vec3 { return Vec3{-v[0], -v[1], -v[2]} }

// Dot returns the scalar product v·w.
func (v Vec3) Dot(w Vec3) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }

// Cross returns the vector product v×w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Norm2 returns the squared Euclidean length of v.
func (v Vec3) Norm2() float64 { return v.Dot(v) }

// Unit returns v/|v|, or the zero vector when |v| == 0.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Zero3
	}

	return v.Scale(1 / n)
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool { return v == Zero3 }

// IsFinite reports whether all components are finite.
func (v Vec3) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}

	return true
}

// Lerp returns the point a fraction t of the way from v to w.
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return Vec3{
		v[0] + t*(w[0]-v[0]),
		v[1] + t*(w[1]-v[1]),
		v[2] + t*(w[2]-v[2]),
	}
}

// Linspace returns n points evenly spaced from a to b inclusive.
// n < 1 yields nil; n == 1 yields {a}.
func Linspace(a, b Vec3, n int) []Vec3 {
	if n < 1 {
		return nil
	}
	out := make([]Vec3, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := 1 / float64(n-1)
	for i := 0; i < n; i++ {
		out[i] = a.Lerp(b, float64(i)*step)
	}
	out[n-1] = b // exact endpoint regardless of rounding

	return out
}
