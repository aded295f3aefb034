// SPDX-License-Identifier: MIT
// Package: magfield/source
//
// geometry.go: one parameter struct per shape behind a sealed interface.
//
// Design:
//   • Geometry is closed: only this package implements it, so a type switch
//     over the nine structs is exhaustive.
//   • Validate enforces the shape-specific ranges once, before evaluation;
//     kernels still tolerate the degenerate-but-valid cases (zero sizes,
//     360° spans).
//
// Units: lengths in mm, magnetization as μ0·M in mT, moment in mT·mm³,
// current in A, angles in degrees.

package source

import (
	"math"

	"github.com/katalvlaran/magfield/matrix"
)

// Geometry is the shape-tagged parameter variant of a source.
type Geometry interface {
	// Shape returns the tag of the concrete geometry.
	Shape() Shape
	// Validate checks arity and value ranges, returning ErrInvalidParams.
	Validate() error

	sealed()
}

// Cuboid is a rectangular prism with side lengths Dimension, centred at the
// local origin with faces normal to the axes.
type Cuboid struct {
	Magnetization matrix.Vec3
	Dimension     matrix.Vec3
}

// Cylinder is a solid circular cylinder, axis along local z.
type Cylinder struct {
	Magnetization matrix.Vec3
	Diameter      float64
	Height        float64
}

// CylinderSegment is a ring sector InnerRadius ≤ ρ ≤ OuterRadius,
// |z| ≤ Height/2, Phi1 ≤ φ ≤ Phi2 (degrees).
type CylinderSegment struct {
	Magnetization matrix.Vec3
	InnerRadius   float64
	OuterRadius   float64
	Height        float64
	Phi1, Phi2    float64
}

// Sphere is a uniformly magnetized ball.
type Sphere struct {
	Magnetization matrix.Vec3
	Diameter      float64
}

// Dipole is a point moment at the local origin.
type Dipole struct {
	Moment matrix.Vec3
}

// Loop is a circular current loop in the local xy plane.
type Loop struct {
	Current  float64
	Diameter float64
}

// Line is a polyline of straight current segments through Vertices.
type Line struct {
	Current  float64
	Vertices []matrix.Vec3
}

// Triangle is a charged sheet with surface charge σ = Magnetization·n, the
// normal n following the right-hand rule over Vertices. Closed sets of
// triangles reproduce the field of the enclosed magnet outside it.
type Triangle struct {
	Magnetization matrix.Vec3
	Vertices      [3]matrix.Vec3
}

// TriangularMesh is a uniformly magnetized body bounded by a closed
// triangular surface. Faces index into Vertices; their orientation is
// normalized before evaluation.
type TriangularMesh struct {
	Magnetization matrix.Vec3
	Vertices      []matrix.Vec3
	Faces         [][3]int
}

func (Cuboid) Shape() Shape          { return ShapeCuboid }
func (Cylinder) Shape() Shape        { return ShapeCylinder }
func (CylinderSegment) Shape() Shape { return ShapeCylinderSegment }
func (Sphere) Shape() Shape          { return ShapeSphere }
func (Dipole) Shape() Shape          { return ShapeDipole }
func (Loop) Shape() Shape            { return ShapeLoop }
func (Line) Shape() Shape            { return ShapeLine }
func (Triangle) Shape() Shape        { return ShapeTriangle }
func (TriangularMesh) Shape() Shape  { return ShapeTriangularMesh }

func (Cuboid) sealed()          {}
func (Cylinder) sealed()        {}
func (CylinderSegment) sealed() {}
func (Sphere) sealed()          {}
func (Dipole) sealed()          {}
func (Loop) sealed()            {}
func (Line) sealed()            {}
func (Triangle) sealed()        {}
func (TriangularMesh) sealed()  {}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}

	return true
}

// Validate requires finite magnetization and non-negative side lengths.
func (g Cuboid) Validate() error {
	if !g.Magnetization.IsFinite() || !g.Dimension.IsFinite() {
		return paramErrorf(ShapeCuboid, "non-finite value")
	}
	if g.Dimension[0] < 0 || g.Dimension[1] < 0 || g.Dimension[2] < 0 {
		return paramErrorf(ShapeCuboid, "negative dimension %v", g.Dimension)
	}

	return nil
}

// Validate requires finite magnetization and non-negative diameter and height.
func (g Cylinder) Validate() error {
	if !g.Magnetization.IsFinite() || !finite(g.Diameter, g.Height) {
		return paramErrorf(ShapeCylinder, "non-finite value")
	}
	if g.Diameter < 0 || g.Height < 0 {
		return paramErrorf(ShapeCylinder, "negative dimension (%g, %g)", g.Diameter, g.Height)
	}

	return nil
}

// Validate requires 0 ≤ r1 < r2, h ≥ 0, −360 < φ1 < φ2 and φ2 − φ1 ≤ 360.
// φ2 may exceed 360 so that sectors such as 220°..380° can be expressed.
func (g CylinderSegment) Validate() error {
	if !g.Magnetization.IsFinite() || !finite(g.InnerRadius, g.OuterRadius, g.Height, g.Phi1, g.Phi2) {
		return paramErrorf(ShapeCylinderSegment, "non-finite value")
	}
	switch {
	case g.InnerRadius < 0 || g.InnerRadius >= g.OuterRadius:
		return paramErrorf(ShapeCylinderSegment, "radii must satisfy 0 <= r1 < r2, got (%g, %g)", g.InnerRadius, g.OuterRadius)
	case g.Height < 0:
		return paramErrorf(ShapeCylinderSegment, "negative height %g", g.Height)
	case g.Phi1 <= -360 || g.Phi1 >= g.Phi2 || g.Phi2-g.Phi1 > 360:
		return paramErrorf(ShapeCylinderSegment, "angles must satisfy -360 < phi1 < phi2 <= phi1+360, got (%g, %g)", g.Phi1, g.Phi2)
	}

	return nil
}

// Dimension returns (r1, r2, h, φ1, φ2) in kernel order.
func (g CylinderSegment) Dimension() [5]float64 {
	return [5]float64{g.InnerRadius, g.OuterRadius, g.Height, g.Phi1, g.Phi2}
}

// Validate requires finite magnetization and a non-negative diameter.
func (g Sphere) Validate() error {
	if !g.Magnetization.IsFinite() || !finite(g.Diameter) {
		return paramErrorf(ShapeSphere, "non-finite value")
	}
	if g.Diameter < 0 {
		return paramErrorf(ShapeSphere, "negative diameter %g", g.Diameter)
	}

	return nil
}

// Validate requires a finite moment.
func (g Dipole) Validate() error {
	if !g.Moment.IsFinite() {
		return paramErrorf(ShapeDipole, "non-finite moment")
	}

	return nil
}

// Validate requires a finite current and a non-negative diameter.
func (g Loop) Validate() error {
	if !finite(g.Current, g.Diameter) {
		return paramErrorf(ShapeLoop, "non-finite value")
	}
	if g.Diameter < 0 {
		return paramErrorf(ShapeLoop, "negative diameter %g", g.Diameter)
	}

	return nil
}

// Validate requires a finite current and at least two finite vertices.
func (g Line) Validate() error {
	if !finite(g.Current) {
		return paramErrorf(ShapeLine, "non-finite current")
	}
	if len(g.Vertices) < 2 {
		return paramErrorf(ShapeLine, "need at least 2 vertices, got %d", len(g.Vertices))
	}
	for i, v := range g.Vertices {
		if !v.IsFinite() {
			return paramErrorf(ShapeLine, "vertex %d is not finite", i)
		}
	}

	return nil
}

// Validate requires finite values and three non-collinear vertices.
func (g Triangle) Validate() error {
	if !g.Magnetization.IsFinite() {
		return paramErrorf(ShapeTriangle, "non-finite magnetization")
	}
	for i, v := range g.Vertices {
		if !v.IsFinite() {
			return paramErrorf(ShapeTriangle, "vertex %d is not finite", i)
		}
	}
	v := g.Vertices
	if v[1].Sub(v[0]).Cross(v[2].Sub(v[0])).Norm() == 0 {
		return paramErrorf(ShapeTriangle, "vertices are collinear")
	}

	return nil
}

// Validate requires finite values, at least four faces with in-range
// distinct indices, and a closed surface: every edge is shared by exactly
// two faces.
func (g TriangularMesh) Validate() error {
	if !g.Magnetization.IsFinite() {
		return paramErrorf(ShapeTriangularMesh, "non-finite magnetization")
	}
	for i, v := range g.Vertices {
		if !v.IsFinite() {
			return paramErrorf(ShapeTriangularMesh, "vertex %d is not finite", i)
		}
	}
	if len(g.Faces) < 4 {
		return paramErrorf(ShapeTriangularMesh, "need at least 4 faces, got %d", len(g.Faces))
	}
	type edge struct{ lo, hi int }
	count := make(map[edge]int, 3*len(g.Faces)/2)
	for i, f := range g.Faces {
		for k, idx := range f {
			if idx < 0 || idx >= len(g.Vertices) {
				return paramErrorf(ShapeTriangularMesh, "face %d: index %d out of range [0, %d)", i, idx, len(g.Vertices))
			}
			if idx == f[(k+1)%3] {
				return paramErrorf(ShapeTriangularMesh, "face %d repeats vertex %d", i, idx)
			}
		}
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			count[edge{min(a, b), max(a, b)}]++
		}
	}
	for e, n := range count {
		if n != 2 {
			return paramErrorf(ShapeTriangularMesh, "open mesh: edge (%d, %d) is shared by %d faces", e.lo, e.hi, n)
		}
	}

	return nil
}
