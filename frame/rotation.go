// SPDX-License-Identifier: MIT

package frame

import (
	"fmt"
	"math"
	"strings"

	"github.com/katalvlaran/magfield/matrix"
)

// orthoTol bounds |RᵀR − I| and |det R − 1| accepted by FromMatrix.
const orthoTol = 1e-6

// Rotation is a proper 3-D rotation stored as a unit quaternion in
// scalar-last order (x, y, z, w).
//
// The zero value is the identity rotation. Rotation is an immutable value;
// every operation returns a new Rotation.
type Rotation struct {
	q [4]float64
}

var identityQuat = [4]float64{0, 0, 0, 1}

// quat returns the stored quaternion, mapping the zero value to identity.
func (r Rotation) quat() [4]float64 {
	if r.q == ([4]float64{}) {
		return identityQuat
	}

	return r.q
}

// Identity returns the identity rotation.
func Identity() Rotation { return Rotation{q: identityQuat} }

// FromQuat builds a rotation from a scalar-last quaternion (x, y, z, w).
// The input is normalized; a zero quaternion yields ErrZeroQuaternion.
func FromQuat(x, y, z, w float64) (Rotation, error) {
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Rotation{}, ErrZeroQuaternion
	}

	return Rotation{q: [4]float64{x / n, y / n, z / n, w / n}}, nil
}

// FromRotVec builds a rotation from a rotation vector: the axis is v/|v|
// and the angle |v| in radians. The zero vector gives the identity.
func FromRotVec(v matrix.Vec3) Rotation {
	angle := v.Norm()
	if angle == 0 {
		return Identity()
	}
	s := math.Sin(angle/2) / angle

	return Rotation{q: [4]float64{v[0] * s, v[1] * s, v[2] * s, math.Cos(angle / 2)}}
}

// FromAngleAxis builds a rotation of angle about axis (right-hand rule).
// The angle is in degrees when degrees is true, radians otherwise.
func FromAngleAxis(angle float64, axis matrix.Vec3, degrees bool) (Rotation, error) {
	n := axis.Norm()
	if n == 0 {
		return Rotation{}, ErrZeroAxis
	}
	if degrees {
		angle = angle * math.Pi / 180
	}

	return FromRotVec(axis.Scale(angle / n)), nil
}

// AxisVector maps "x", "y" or "z" to the unit axis; ok is false otherwise.
func AxisVector(name string) (matrix.Vec3, bool) {
	switch strings.ToLower(name) {
	case "x":
		return matrix.Vec3{1, 0, 0}, true
	case "y":
		return matrix.Vec3{0, 1, 0}, true
	case "z":
		return matrix.Vec3{0, 0, 1}, true
	}

	return matrix.Zero3, false
}

// FromEuler builds a rotation from up to three elementary rotations.
//
// seq uses lowercase letters for extrinsic rotations about the fixed axes
// ("xyz": first x, then y, then z) and uppercase letters for intrinsic
// rotations about the moving axes ("XYZ"). Mixing cases is rejected.
// len(angles) must equal len(seq).
func FromEuler(seq string, angles []float64, degrees bool) (Rotation, error) {
	if len(seq) == 0 || len(seq) > 3 || len(angles) != len(seq) {
		return Rotation{}, frameErrorf(opFromEuler, ErrBadSequence)
	}
	intrinsic := seq == strings.ToUpper(seq)
	if !intrinsic && seq != strings.ToLower(seq) {
		return Rotation{}, frameErrorf(opFromEuler, ErrBadSequence)
	}
	out := Identity()
	for i, c := range seq {
		axis, ok := AxisVector(string(c))
		if !ok {
			return Rotation{}, frameErrorf(opFromEuler, ErrBadSequence)
		}
		step, _ := FromAngleAxis(angles[i], axis, degrees)
		if intrinsic {
			out = out.Mul(step)
		} else {
			out = step.Mul(out)
		}
	}

	return out, nil
}

// FromMatrix builds a rotation from a 3×3 rotation matrix.
//
// Implementation:
//   - Stage 1: validate shape, orthonormality and det = +1 (ErrNotRotation).
//   - Stage 2: Shepperd's method, branching on the largest diagonal term.
func FromMatrix(m matrix.Matrix) (Rotation, error) {
	if err := matrix.ValidateNotNil(m); err != nil {
		return Rotation{}, frameErrorf(opFromMatrix, err)
	}
	if err := matrix.ValidateSquare(m); err != nil {
		return Rotation{}, frameErrorf(opFromMatrix, fmt.Errorf("%w: %w", ErrNotRotation, err))
	}
	if m.Rows() != 3 {
		return Rotation{}, frameErrorf(opFromMatrix, ErrNotRotation)
	}
	if err := matrix.ValidateFinite(m); err != nil {
		return Rotation{}, frameErrorf(opFromMatrix, err)
	}
	var a [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, err := m.At(i, j)
			if err != nil {
				return Rotation{}, frameErrorf(opFromMatrix, err)
			}
			a[i][j] = v
		}
	}
	ok, err := isRotation(m, a)
	if err != nil {
		return Rotation{}, frameErrorf(opFromMatrix, err)
	}
	if !ok {
		return Rotation{}, frameErrorf(opFromMatrix, ErrNotRotation)
	}

	var x, y, z, w float64
	tr := a[0][0] + a[1][1] + a[2][2]
	switch {
	case tr > a[0][0] && tr > a[1][1] && tr > a[2][2]:
		s := 2 * math.Sqrt(1+tr)
		w = s / 4
		x = (a[2][1] - a[1][2]) / s
		y = (a[0][2] - a[2][0]) / s
		z = (a[1][0] - a[0][1]) / s
	case a[0][0] >= a[1][1] && a[0][0] >= a[2][2]:
		s := 2 * math.Sqrt(1+a[0][0]-a[1][1]-a[2][2])
		w = (a[2][1] - a[1][2]) / s
		x = s / 4
		y = (a[0][1] + a[1][0]) / s
		z = (a[0][2] + a[2][0]) / s
	case a[1][1] >= a[2][2]:
		s := 2 * math.Sqrt(1+a[1][1]-a[0][0]-a[2][2])
		w = (a[0][2] - a[2][0]) / s
		x = (a[0][1] + a[1][0]) / s
		y = s / 4
		z = (a[1][2] + a[2][1]) / s
	default:
		s := 2 * math.Sqrt(1+a[2][2]-a[0][0]-a[1][1])
		w = (a[1][0] - a[0][1]) / s
		x = (a[0][2] + a[2][0]) / s
		y = (a[1][2] + a[2][1]) / s
		z = s / 4
	}

	return FromQuat(x, y, z, w)
}

// isRotation reports whether RᵀR = I and det R = +1 within orthoTol.
func isRotation(m matrix.Matrix, a [3][3]float64) (bool, error) {
	mt, err := matrix.Transpose(m)
	if err != nil {
		return false, err
	}
	gram, err := matrix.Mul(mt, m)
	if err != nil {
		return false, err
	}
	ok, err := matrix.AllClose(gram, Identity().Matrix(), 0, orthoTol)
	if err != nil || !ok {
		return false, err
	}
	det := a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])

	return math.Abs(det-1) <= orthoTol, nil
}

// Quat returns the unit quaternion (x, y, z, w).
func (r Rotation) Quat() [4]float64 { return r.quat() }

// Apply rotates v.
func (r Rotation) Apply(v matrix.Vec3) matrix.Vec3 {
	q := r.quat()
	u := matrix.Vec3{q[0], q[1], q[2]}
	t := u.Cross(v).Scale(2)

	return v.Add(t.Scale(q[3])).Add(u.Cross(t))
}

// ApplyInverse rotates v by the inverse rotation.
func (r Rotation) ApplyInverse(v matrix.Vec3) matrix.Vec3 { return r.Inv().Apply(v) }

// Inv returns the inverse rotation.
func (r Rotation) Inv() Rotation {
	q := r.quat()

	return Rotation{q: [4]float64{-q[0], -q[1], -q[2], q[3]}}
}

// Mul returns the composition r∘o: o is applied first, then r.
func (r Rotation) Mul(o Rotation) Rotation {
	p, q := r.quat(), o.quat()

	return Rotation{q: [4]float64{
		p[3]*q[0] + q[3]*p[0] + p[1]*q[2] - p[2]*q[1],
		p[3]*q[1] + q[3]*p[1] + p[2]*q[0] - p[0]*q[2],
		p[3]*q[2] + q[3]*p[2] + p[0]*q[1] - p[1]*q[0],
		p[3]*q[3] - p[0]*q[0] - p[1]*q[1] - p[2]*q[2],
	}}
}

// Matrix returns the 3×3 rotation matrix.
func (r Rotation) Matrix() *matrix.Dense {
	m, _ := matrix.NewDense(3, 3)
	for j, e := range [3]matrix.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		col := r.Apply(e)
		for i := 0; i < 3; i++ {
			_ = m.Set(i, j, col[i])
		}
	}

	return m
}

// RotVec returns the rotation vector (axis·angle, angle in [0, π]).
func (r Rotation) RotVec() matrix.Vec3 {
	q := r.quat()
	if q[3] < 0 {
		q = [4]float64{-q[0], -q[1], -q[2], -q[3]}
	}
	u := matrix.Vec3{q[0], q[1], q[2]}
	s := u.Norm()
	if s == 0 {
		return matrix.Zero3
	}
	angle := 2 * math.Atan2(s, q[3])

	return u.Scale(angle / s)
}

// Magnitude returns the rotation angle in radians, in [0, π].
func (r Rotation) Magnitude() float64 { return r.RotVec().Norm() }

// ApproxEqual reports whether r and o rotate every vector alike within tol,
// treating q and −q as the same rotation.
func (r Rotation) ApproxEqual(o Rotation, tol float64) bool {
	return r.Inv().Mul(o).Magnitude() <= tol
}
