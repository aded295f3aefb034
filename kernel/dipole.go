// SPDX-License-Identifier: MIT

package kernel

import (
	"fmt"
	"math"

	"github.com/katalvlaran/magfield/matrix"
)

// dipoleField returns the B field of a point moment m (mT·mm³) at r:
//
//	B = (3(m·r)r/|r|⁵ − m/|r|³) / 4π
func dipoleField(r, m matrix.Vec3) matrix.Vec3 {
	r2 := r.Norm2()
	r3 := r2 * math.Sqrt(r2)

	return r.Scale(3 * m.Dot(r) / (r2 * r3)).Sub(m.Scale(1 / r3)).Scale(1 / (4 * math.Pi))
}

// Dipole evaluates n point dipoles at the local observers obs (n×3).
// moment has length 1 or n.
//
// An observer exactly at the dipole location is a genuine singularity and
// fails the whole batch with ErrDomainSingularity.
func Dipole(q Quantity, obs *matrix.Dense, moment []matrix.Vec3) (*matrix.Dense, error) {
	n, err := batchLen(opDipole, q, obs, len(moment))
	if err != nil {
		return nil, err
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		r := obs.Vec(i)
		m := at(moment, i)
		if r.IsZero() {
			if m.IsZero() {
				continue
			}

			return nil, kernelErrorf(opDipole, fmt.Errorf("instance %d: %w", i, ErrDomainSingularity))
		}
		out.SetVec(i, convert(q, dipoleField(r, m)))
	}

	return out, nil
}
