// SPDX-License-Identifier: MIT

package frame

import (
	"fmt"

	"github.com/katalvlaran/magfield/matrix"
)

// pick returns the sequence element paired with batch row i: the single
// element for length-1 sequences, element i otherwise.
func pick[T any](s []T, i int) T {
	if len(s) == 1 {
		return s[0]
	}

	return s[i]
}

// checkBroadcast validates that a sequence of length l pairs with n rows.
func checkBroadcast(what string, l, n int) error {
	if l != 1 && l != n {
		return fmt.Errorf("%s has length %d, batch has %d rows: %w", what, l, n, ErrLengthMismatch)
	}

	return nil
}

// ToLocal maps global observer points into source-local coordinates:
// local_i = rot_i⁻¹(p_i − pos_i).
//
// positions and rotations carry their own leading path axis: each has
// length 1 (broadcast against every row) or exactly points.Rows().
//
// Complexity: O(n). The input batch is never mutated.
func ToLocal(points *matrix.Dense, positions []matrix.Vec3, rotations []Rotation) (*matrix.Dense, error) {
	if err := matrix.ValidateBatch(points, 0); err != nil {
		return nil, frameErrorf(opToLocal, err)
	}
	n := points.Rows()
	if err := checkBroadcast("positions", len(positions), n); err != nil {
		return nil, frameErrorf(opToLocal, err)
	}
	if err := checkBroadcast("rotations", len(rotations), n); err != nil {
		return nil, frameErrorf(opToLocal, err)
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		rel := points.Vec(i).Sub(pick(positions, i))
		out.SetVec(i, pick(rotations, i).ApplyInverse(rel))
	}

	return out, nil
}

// ToGlobal maps source-local field vectors back to the global frame:
// global_i = rot_i(v_i). rotations has length 1 or vectors.Rows().
func ToGlobal(vectors *matrix.Dense, rotations []Rotation) (*matrix.Dense, error) {
	if err := matrix.ValidateBatch(vectors, 0); err != nil {
		return nil, frameErrorf(opToGlobal, err)
	}
	n := vectors.Rows()
	if err := checkBroadcast("rotations", len(rotations), n); err != nil {
		return nil, frameErrorf(opToGlobal, err)
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		out.SetVec(i, pick(rotations, i).Apply(vectors.Vec(i)))
	}

	return out, nil
}
