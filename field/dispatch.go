// SPDX-License-Identifier: MIT

package field

import (
	"github.com/katalvlaran/magfield/kernel"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/katalvlaran/magfield/source"
)

// evalKernel runs the kernel of g on a local observer batch. Every row
// shares the same geometry, so parameters are passed as length-1 slices.
func evalKernel(q kernel.Quantity, g source.Geometry, local *matrix.Dense) (*matrix.Dense, error) {
	switch g := g.(type) {
	case source.Cuboid:
		return kernel.Cuboid(q, local, []matrix.Vec3{g.Magnetization}, []matrix.Vec3{g.Dimension})
	case source.Cylinder:
		return kernel.Cylinder(q, local, []matrix.Vec3{g.Magnetization}, [][2]float64{{g.Diameter, g.Height}})
	case source.CylinderSegment:
		return kernel.CylinderSegment(q, local, []matrix.Vec3{g.Magnetization}, [][5]float64{g.Dimension()})
	case source.Sphere:
		return kernel.Sphere(q, local, []matrix.Vec3{g.Magnetization}, []float64{g.Diameter})
	case source.Dipole:
		return kernel.Dipole(q, local, []matrix.Vec3{g.Moment})
	case source.Loop:
		return kernel.Loop(q, local, []float64{g.Current}, []float64{g.Diameter})
	case source.Line:
		return kernel.Polyline(q, local, []float64{g.Current}, [][]matrix.Vec3{g.Vertices})
	case source.Triangle:
		return kernel.Triangle(q, local, []matrix.Vec3{g.Magnetization}, [][3]matrix.Vec3{g.Vertices})
	case source.TriangularMesh:
		return kernel.TriangularMesh(q, local, []matrix.Vec3{g.Magnetization},
			[]kernel.Mesh{{Vertices: g.Vertices, Faces: g.Faces}})
	}

	return nil, configErrorf(opCompute, "no kernel for geometry %T", g)
}
