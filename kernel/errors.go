// SPDX-License-Identifier: MIT

package kernel

import (
	"errors"
	"fmt"
)

var (
	// ErrDomainSingularity is returned when an observer coincides with a
	// non-removable singularity of a kernel (a point dipole at its own location).
	ErrDomainSingularity = errors.New("kernel: observer on a field singularity")

	// ErrBatchMismatch is returned when a per-instance parameter slice is
	// neither of length 1 nor of the observer batch length.
	ErrBatchMismatch = errors.New("kernel: parameter length does not match batch")

	// ErrUnknownQuantity is returned for a field quantity other than B or H.
	ErrUnknownQuantity = errors.New("kernel: unknown field quantity")
)

// Op tags (one per kernel) used in wrapped errors.
const (
	opCuboid          = "Cuboid"
	opCylinder        = "Cylinder"
	opCylinderSegment = "CylinderSegment"
	opSphere          = "Sphere"
	opDipole          = "Dipole"
	opLoop            = "Loop"
	opLine            = "Line"
	opPolyline        = "Polyline"
	opTriangle        = "Triangle"
	opTriangularMesh  = "TriangularMesh"
)

func kernelErrorf(tag string, err error) error {
	return fmt.Errorf("kernel.%s: %w", tag, err)
}
