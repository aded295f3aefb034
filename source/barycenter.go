// SPDX-License-Identifier: MIT

package source

import (
	"math"

	"github.com/katalvlaran/magfield/kernel"
	"github.com/katalvlaran/magfield/matrix"
)

// centroid returns the local-frame centre of mass of a geometry.
func centroid(g Geometry) matrix.Vec3 {
	switch g := g.(type) {
	case CylinderSegment:
		r1, r2 := g.InnerRadius, g.OuterRadius
		half := (g.Phi2 - g.Phi1) * math.Pi / 360
		mid := (g.Phi1 + g.Phi2) * math.Pi / 360
		rho := 2.0 / 3.0 * (r2*r2*r2 - r1*r1*r1) / (r2*r2 - r1*r1)
		if half > 0 {
			rho *= math.Sin(half) / half
		}

		return matrix.Vec3{rho * math.Cos(mid), rho * math.Sin(mid), 0}
	case Line:
		if len(g.Vertices) == 0 {
			return matrix.Zero3
		}
		var sum matrix.Vec3
		for _, v := range g.Vertices {
			sum = sum.Add(v)
		}

		return sum.Scale(1 / float64(len(g.Vertices)))
	case Triangle:
		v := g.Vertices

		return v[0].Add(v[1]).Add(v[2]).Scale(1.0 / 3)
	case TriangularMesh:
		return meshCentroid(g)
	}

	return matrix.Zero3
}

// meshCentroid sums the signed tetrahedra spanned by the origin and each
// outward face.
func meshCentroid(g TriangularMesh) matrix.Vec3 {
	faces := kernel.OrientFaces(kernel.Mesh{Vertices: g.Vertices, Faces: g.Faces})
	var sum matrix.Vec3
	var vol float64
	for _, f := range faces {
		a, b, c := g.Vertices[f[0]], g.Vertices[f[1]], g.Vertices[f[2]]
		v := a.Dot(b.Cross(c))
		sum = sum.Add(a.Add(b).Add(c).Scale(v / 4))
		vol += v
	}
	if vol == 0 {
		return matrix.Zero3
	}

	return sum.Scale(1 / vol)
}

// Barycenter returns the global centre of mass of s at every path step.
// Lines use the mean of their vertices, triangles their centroid.
func Barycenter(s Source) []matrix.Vec3 {
	c := centroid(s.Geometry)
	out := make([]matrix.Vec3, s.Path.Len())
	for i := range out {
		out[i] = s.Path.Position(i).Add(s.Path.Orientation(i).Apply(c))
	}

	return out
}
