// SPDX-License-Identifier: MIT

package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroQuaternion is returned when a quaternion of zero norm is supplied.
	ErrZeroQuaternion = errors.New("frame: quaternion has zero norm")

	// ErrNotRotation is returned when a matrix is not a proper 3×3 rotation
	// (orthonormal with determinant +1 within tolerance).
	ErrNotRotation = errors.New("frame: matrix is not a proper rotation")

	// ErrZeroAxis is returned when a rotation axis of zero length is supplied.
	ErrZeroAxis = errors.New("frame: rotation axis has zero length")

	// ErrBadSequence is returned for malformed Euler axis sequences.
	ErrBadSequence = errors.New("frame: invalid euler sequence")

	// ErrLengthMismatch is returned when a position or rotation sequence is
	// neither of length 1 nor of the batch length.
	ErrLengthMismatch = errors.New("frame: sequence length does not broadcast")
)

const (
	opToLocal    = "ToLocal"
	opToGlobal   = "ToGlobal"
	opFromMatrix = "FromMatrix"
	opFromEuler  = "FromEuler"
)

func frameErrorf(tag string, err error) error {
	return fmt.Errorf("frame.%s: %w", tag, err)
}
