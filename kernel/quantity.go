// SPDX-License-Identifier: MIT

package kernel

import (
	"math"
	"strings"

	"github.com/katalvlaran/magfield/matrix"
)

// Unit system: lengths in mm, magnetization given as μ0·M in mT, currents
// in A, B in mT and H in kA/m.
const (
	// Mu0 is the vacuum permeability in mT·mm/A.
	Mu0 = 0.4 * math.Pi

	// hPerB converts a field in mT to kA/m: H = B·10/(4π).
	hPerB = 10 / (4 * math.Pi)
)

// Quantity selects the physical field a kernel returns.
type Quantity int

const (
	// B is the magnetic flux density in mT.
	B Quantity = iota
	// H is the magnetic field strength in kA/m.
	H
)

// String returns "B" or "H".
func (q Quantity) String() string {
	switch q {
	case B:
		return "B"
	case H:
		return "H"
	}

	return "Quantity(?)"
}

// Valid reports whether q is B or H.
func (q Quantity) Valid() bool { return q == B || q == H }

// ParseQuantity maps "B"/"H" (case-insensitive) to a Quantity.
func ParseQuantity(s string) (Quantity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "B":
		return B, nil
	case "H":
		return H, nil
	}

	return 0, ErrUnknownQuantity
}

// magnetH converts a magnet's B to H, removing the polarization inside the body.
func magnetH(b, mag matrix.Vec3, inside bool) matrix.Vec3 {
	if inside {
		b = b.Sub(mag)
	}

	return b.Scale(hPerB)
}

// convert returns b unchanged for B, or b·10/(4π) for H (no body term).
func convert(q Quantity, b matrix.Vec3) matrix.Vec3 {
	if q == H {
		return b.Scale(hPerB)
	}

	return b
}

// at returns the parameter paired with batch row i (length-1 broadcast).
func at[T any](s []T, i int) T {
	if len(s) == 1 {
		return s[0]
	}

	return s[i]
}

// batchLen validates the observer batch and every parameter length,
// returning the number of instances n.
func batchLen(tag string, q Quantity, obs *matrix.Dense, lens ...int) (int, error) {
	if !q.Valid() {
		return 0, kernelErrorf(tag, ErrUnknownQuantity)
	}
	if err := matrix.ValidateBatch(obs, 0); err != nil {
		return 0, kernelErrorf(tag, err)
	}
	n := obs.Rows()
	for _, l := range lens {
		if l != 1 && l != n {
			return 0, kernelErrorf(tag, ErrBatchMismatch)
		}
	}

	return n, nil
}
