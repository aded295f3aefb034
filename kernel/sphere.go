// SPDX-License-Identifier: MIT

package kernel

import (
	"math"

	"github.com/katalvlaran/magfield/matrix"
)

// sphereB returns B of a uniformly magnetized sphere and whether r lies
// in the closed ball. Inside the field is uniform (2/3)·M; outside it is the
// field of a point dipole with moment M·R³/3 · 4π.
func sphereB(r, mag matrix.Vec3, diameter float64) (matrix.Vec3, bool) {
	radius := diameter / 2
	if radius == 0 {
		return matrix.Zero3, false
	}
	if r.Norm2() <= radius*radius {
		return mag.Scale(2.0 / 3.0), true
	}
	moment := mag.Scale(4.0 / 3.0 * math.Pi * radius * radius * radius)

	return dipoleField(r, moment), false
}

// Sphere evaluates n spheres centred at the local origin.
// mag and diameter have length 1 or n.
func Sphere(q Quantity, obs *matrix.Dense, mag []matrix.Vec3, diameter []float64) (*matrix.Dense, error) {
	n, err := batchLen(opSphere, q, obs, len(mag), len(diameter))
	if err != nil {
		return nil, err
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		m := at(mag, i)
		b, inside := sphereB(obs.Vec(i), m, at(diameter, i))
		if q == H {
			b = magnetH(b, m, inside)
		}
		out.SetVec(i, b)
	}

	return out, nil
}
