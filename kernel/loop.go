// SPDX-License-Identifier: MIT

package kernel

import (
	"math"

	"github.com/katalvlaran/magfield/matrix"
)

const (
	// loopAxisTol is the relative radius (ρ/a) below which the first-order
	// series replaces the elliptic form of Bρ.
	loopAxisTol = 1e-4

	// loopWireTol is the relative distance to the wire treated as on it.
	loopWireTol = 1e-12
)

// loopB returns B of a circular current loop of diameter d in the xy plane,
// centred at the origin, carrying current i (A).
func loopB(p matrix.Vec3, i, d float64) matrix.Vec3 {
	a := d / 2
	if a == 0 || i == 0 {
		return matrix.Zero3
	}
	rho := math.Hypot(p[0], p[1])
	z := p[2]
	near := (a-rho)*(a-rho) + z*z
	if near <= (loopWireTol*a)*(loopWireTol*a) {
		return matrix.Zero3
	}
	far := (a+rho)*(a+rho) + z*z
	m := 4 * a * rho / far
	k, e := ellipK(m), ellipE(m)
	pre := Mu0 * i / (2 * math.Pi)
	sf := math.Sqrt(far)

	bz := pre / sf * (k + (a*a-rho*rho-z*z)/near*e)
	var br float64
	if rho < loopAxisTol*a {
		r2 := a*a + z*z
		br = 3 * Mu0 * i * a * a * z * rho / (4 * r2 * r2 * math.Sqrt(r2))
	} else {
		br = pre * z / (rho * sf) * (-k + (a*a+rho*rho+z*z)/near*e)
	}
	if rho == 0 {
		return matrix.Vec3{0, 0, bz}
	}

	return matrix.Vec3{br * p[0] / rho, br * p[1] / rho, bz}
}

// Loop evaluates n circular current loops in the local xy plane.
// current and diameter have length 1 or n. Observers on the wire yield zero.
func Loop(q Quantity, obs *matrix.Dense, current, diameter []float64) (*matrix.Dense, error) {
	n, err := batchLen(opLoop, q, obs, len(current), len(diameter))
	if err != nil {
		return nil, err
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		out.SetVec(i, convert(q, loopB(obs.Vec(i), at(current, i), at(diameter, i))))
	}

	return out, nil
}
