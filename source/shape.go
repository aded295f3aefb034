// SPDX-License-Identifier: MIT

package source

import (
	"fmt"
	"strings"
)

// Shape enumerates the fixed set of source geometries.
type Shape int

// Enum values (stable ordering).
const (
	ShapeCuboid Shape = iota
	ShapeCylinder
	ShapeCylinderSegment
	ShapeSphere
	ShapeDipole
	ShapeLoop
	ShapeLine
	ShapeTriangle
	ShapeTriangularMesh
)

// shapeNames is the single lookup table between tags and names.
var shapeNames = [...]string{
	ShapeCuboid:          "Cuboid",
	ShapeCylinder:        "Cylinder",
	ShapeCylinderSegment: "CylinderSegment",
	ShapeSphere:          "Sphere",
	ShapeDipole:          "Dipole",
	ShapeLoop:            "Loop",
	ShapeLine:            "Line",
	ShapeTriangle:        "Triangle",
	ShapeTriangularMesh:  "TriangularMesh",
}

// Shapes returns every shape in enum order.
func Shapes() []Shape {
	out := make([]Shape, len(shapeNames))
	for i := range shapeNames {
		out[i] = Shape(i)
	}

	return out
}

// String returns the canonical shape name.
func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "Unknown"
	}

	return shapeNames[s]
}

// IsMagnet reports whether s carries a magnetization (and thus a body term
// in the B→H conversion).
func (s Shape) IsMagnet() bool {
	switch s {
	case ShapeCuboid, ShapeCylinder, ShapeCylinderSegment, ShapeSphere, ShapeTriangularMesh:
		return true
	}

	return false
}

// ParseShape maps a shape name (case-insensitive) to its tag.
func ParseShape(name string) (Shape, error) {
	key := strings.TrimSpace(name)
	for i, n := range shapeNames {
		if strings.EqualFold(n, key) {
			return Shape(i), nil
		}
	}

	return 0, sourceErrorf(opParse, fmt.Errorf("%q: %w", name, ErrUnknownShape))
}
