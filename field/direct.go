// SPDX-License-Identifier: MIT

package field

import (
	"fmt"

	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/kernel"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/katalvlaran/magfield/source"
	"go.uber.org/zap"
)

// DirectInput describes n independent source instances, one observer each.
// Every provided slice has length 1 (tiled to n) or n. Only the parameters
// of Shape are read:
//
//	Cuboid          Magnetization, Dimension (3 values)
//	Cylinder        Magnetization, Dimension (diameter, height)
//	CylinderSegment Magnetization, Dimension (r1, r2, h, φ1, φ2)
//	Sphere          Magnetization, Diameter
//	Dipole          Moment
//	Loop            Current, Diameter
//	Line            Current, SegmentStart + SegmentEnd or Vertices
//	Triangle        Magnetization, Vertices (3 per instance)
//	TriangularMesh  Magnetization, Vertices + Faces
//
// Positions default to the origin and Orientations to the identity.
type DirectInput struct {
	Shape         string
	Observers     []matrix.Vec3
	Positions     []matrix.Vec3
	Orientations  []frame.Rotation
	Magnetization []matrix.Vec3
	Dimension     [][]float64
	Diameter      []float64
	Moment        []matrix.Vec3
	Current       []float64
	SegmentStart  []matrix.Vec3
	SegmentEnd    []matrix.Vec3
	Vertices      [][]matrix.Vec3
	Faces         [][][3]int
}

// Direct evaluates q for every instance of in without summation. The
// unsqueezed result has shape (n, 3); squeezing a single instance yields (3).
// Only WithSqueeze and WithLogger affect Direct.
func Direct(q kernel.Quantity, in DirectInput, opts ...Option) (*Tensor, error) {
	o := gatherOptions(opts...)
	shape, err := source.ParseShape(in.Shape)
	if err != nil {
		return nil, fieldErrorf(opDirect, fmt.Errorf("%w: %w", err, ErrConfiguration))
	}
	n, err := directLen(shape, in)
	if err != nil {
		return nil, err
	}
	if err := validateDirect(shape, in, n); err != nil {
		return nil, err
	}

	for i, v := range in.Observers {
		if !v.IsFinite() {
			return nil, fieldErrorf(opDirect, fmt.Errorf("observer %d: %w", i, matrix.ErrNaNInf))
		}
	}
	batch, err := matrix.NewBatchFromVecs(in.Observers)
	if err != nil {
		return nil, fieldErrorf(opDirect, err)
	}
	// a single observer row is held for every instance
	if batch, err = matrix.PadRows(batch, n); err != nil {
		return nil, fieldErrorf(opDirect, err)
	}
	pos := in.Positions
	if len(pos) == 0 {
		pos = []matrix.Vec3{matrix.Zero3}
	}
	rots := in.Orientations
	if len(rots) == 0 {
		rots = []frame.Rotation{frame.Identity()}
	}
	local, err := frame.ToLocal(batch, pos, rots)
	if err != nil {
		return nil, fieldErrorf(opDirect, err)
	}

	var out *matrix.Dense
	switch shape {
	case source.ShapeCuboid:
		dim := make([]matrix.Vec3, len(in.Dimension))
		for i, d := range in.Dimension {
			dim[i] = matrix.Vec3{d[0], d[1], d[2]}
		}
		out, err = kernel.Cuboid(q, local, in.Magnetization, dim)
	case source.ShapeCylinder:
		dim := make([][2]float64, len(in.Dimension))
		for i, d := range in.Dimension {
			dim[i] = [2]float64{d[0], d[1]}
		}
		out, err = kernel.Cylinder(q, local, in.Magnetization, dim)
	case source.ShapeCylinderSegment:
		dim := make([][5]float64, len(in.Dimension))
		for i, d := range in.Dimension {
			copy(dim[i][:], d)
		}
		out, err = kernel.CylinderSegment(q, local, in.Magnetization, dim)
	case source.ShapeSphere:
		out, err = kernel.Sphere(q, local, in.Magnetization, in.Diameter)
	case source.ShapeDipole:
		out, err = kernel.Dipole(q, local, in.Moment)
	case source.ShapeLoop:
		out, err = kernel.Loop(q, local, in.Current, in.Diameter)
	case source.ShapeLine:
		if len(in.Vertices) > 0 {
			out, err = kernel.Polyline(q, local, in.Current, in.Vertices)
		} else {
			out, err = kernel.Line(q, local, in.Current, in.SegmentStart, in.SegmentEnd)
		}
	case source.ShapeTriangle:
		tris := make([][3]matrix.Vec3, len(in.Vertices))
		for i, v := range in.Vertices {
			copy(tris[i][:], v)
		}
		out, err = kernel.Triangle(q, local, in.Magnetization, tris)
	case source.ShapeTriangularMesh:
		meshes := make([]kernel.Mesh, max(len(in.Vertices), len(in.Faces)))
		for i := range meshes {
			meshes[i] = kernel.Mesh{Vertices: pick(in.Vertices, i), Faces: pick(in.Faces, i)}
		}
		out, err = kernel.TriangularMesh(q, local, in.Magnetization, meshes)
	}
	if err != nil {
		return nil, fieldErrorf(opDirect, err)
	}
	if out, err = frame.ToGlobal(out, rots); err != nil {
		return nil, fieldErrorf(opDirect, err)
	}
	o.logger.Debug("direct evaluated",
		zap.Stringer("quantity", q),
		zap.Stringer("shape", shape),
		zap.Int("instances", n))

	t := &Tensor{shape: []int{n, 3}, data: append([]float64(nil), out.RawData()...)}
	if o.squeeze {
		t = t.Squeeze()
	}

	return t, nil
}

func pick[T any](s []T, i int) T {
	if len(s) == 1 {
		return s[0]
	}

	return s[i]
}

// directLen returns the common instance count n after checking that the
// required inputs of shape are present and every length is 1 or n.
func directLen(shape source.Shape, in DirectInput) (int, error) {
	type input struct {
		name string
		n    int
	}
	fields := []input{{"observers", len(in.Observers)}}
	required := func(name string, l int) {
		fields = append(fields, input{name, l})
	}
	switch shape {
	case source.ShapeCuboid, source.ShapeCylinder, source.ShapeCylinderSegment:
		required("magnetization", len(in.Magnetization))
		required("dimension", len(in.Dimension))
	case source.ShapeSphere:
		required("magnetization", len(in.Magnetization))
		required("diameter", len(in.Diameter))
	case source.ShapeDipole:
		required("moment", len(in.Moment))
	case source.ShapeLoop:
		required("current", len(in.Current))
		required("diameter", len(in.Diameter))
	case source.ShapeLine:
		required("current", len(in.Current))
		if len(in.Vertices) > 0 {
			if len(in.SegmentStart) > 0 || len(in.SegmentEnd) > 0 {
				return 0, configErrorf(opDirect, "line takes vertices or segment endpoints, not both")
			}
			required("vertices", len(in.Vertices))
		} else {
			required("segment_start", len(in.SegmentStart))
			required("segment_end", len(in.SegmentEnd))
		}
	}

	n := max(len(in.Positions), len(in.Orientations))
	for _, f := range fields {
		if f.n == 0 {
			return 0, configErrorf(opDirect, "%s requires %s", shape, f.name)
		}
		n = max(n, f.n)
	}
	fields = append(fields, input{"position", len(in.Positions)}, input{"orientation", len(in.Orientations)})
	for _, f := range fields {
		if f.n != 0 && f.n != 1 && f.n != n {
			return 0, configErrorf(opDirect, "%s has length %d, want 1 or %d", f.name, f.n, n)
		}
	}

	return n, nil
}

// validateDirect checks every instance with the geometry validators of
// package source.
func validateDirect(shape source.Shape, in DirectInput, n int) error {
	arity := map[source.Shape]int{
		source.ShapeCuboid:          3,
		source.ShapeCylinder:        2,
		source.ShapeCylinderSegment: 5,
	}
	if want, ok := arity[shape]; ok {
		for i, d := range in.Dimension {
			if len(d) != want {
				return configErrorf(opDirect, "%s dimension %d has %d values, want %d", shape, i, len(d), want)
			}
		}
	}
	for i := 0; i < n; i++ {
		var g source.Geometry
		switch shape {
		case source.ShapeCuboid:
			d := pick(in.Dimension, i)
			g = source.Cuboid{Magnetization: pick(in.Magnetization, i), Dimension: matrix.Vec3{d[0], d[1], d[2]}}
		case source.ShapeCylinder:
			d := pick(in.Dimension, i)
			g = source.Cylinder{Magnetization: pick(in.Magnetization, i), Diameter: d[0], Height: d[1]}
		case source.ShapeCylinderSegment:
			d := pick(in.Dimension, i)
			g = source.CylinderSegment{Magnetization: pick(in.Magnetization, i),
				InnerRadius: d[0], OuterRadius: d[1], Height: d[2], Phi1: d[3], Phi2: d[4]}
		case source.ShapeSphere:
			g = source.Sphere{Magnetization: pick(in.Magnetization, i), Diameter: pick(in.Diameter, i)}
		case source.ShapeDipole:
			g = source.Dipole{Moment: pick(in.Moment, i)}
		case source.ShapeLoop:
			g = source.Loop{Current: pick(in.Current, i), Diameter: pick(in.Diameter, i)}
		case source.ShapeLine:
			var verts []matrix.Vec3
			if len(in.Vertices) > 0 {
				verts = pick(in.Vertices, i)
			} else {
				verts = []matrix.Vec3{pick(in.SegmentStart, i), pick(in.SegmentEnd, i)}
			}
			g = source.Line{Current: pick(in.Current, i), Vertices: verts}
		case source.ShapeTriangle:
			v := pick(in.Vertices, i)
			if len(v) != 3 {
				return configErrorf(opDirect, "triangle %d has %d vertices, want 3", i, len(v))
			}
			g = source.Triangle{Magnetization: pick(in.Magnetization, i), Vertices: [3]matrix.Vec3{v[0], v[1], v[2]}}
		case source.ShapeTriangularMesh:
			g = source.TriangularMesh{Magnetization: pick(in.Magnetization, i),
				Vertices: pick(in.Vertices, i), Faces: pick(in.Faces, i)}
		}
		if err := g.Validate(); err != nil {
			return fieldErrorf(opDirect, fmt.Errorf("instance %d: %w", i, err))
		}
	}

	return nil
}
