package field_test

import (
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/katalvlaran/magfield/field"
	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/kernel"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/katalvlaran/magfield/source"
	"github.com/stretchr/testify/require"
)

func TestDirectLineSegments(t *testing.T) {
	h, err := field.Direct(kernel.H, field.DirectInput{
		Shape:        "Line",
		Observers:    []matrix.Vec3{{1, 1, 1}, {1, 2, 3}, {2, 2, 2}},
		Current:      []float64{1},
		SegmentStart: []matrix.Vec3{{0, 0, 0}},
		SegmentEnd:   []matrix.Vec3{{0, 0, 0}, {2, 2, 2}, {2, 2, 2}},
	})
	require.NoError(t, err)
	require.Equal(t, []int{3, 3}, h.Shape())
	want := []float64{
		0, 0, 0, // zero-length segment
		0.02672612419124244 * hPerB, -0.05345224838248488 * hPerB, 0.02672612419124244 * hPerB,
		0, 0, 0, // on the carrier line
	}
	require.InDeltaSlice(t, want, h.Data(), 1e-12)
}

func TestDirectVertices(t *testing.T) {
	b, err := field.Direct(kernel.B, field.DirectInput{
		Shape:     "Line",
		Observers: []matrix.Vec3{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
		Current:   []float64{1},
		Vertices:  [][]matrix.Vec3{matrix.Linspace(matrix.Vec3{0, 5, 5}, matrix.Vec3{5, 5, 5}, 6)},
	})
	require.NoError(t, err)
	require.Equal(t, []int{5, 3}, b.Shape())
	for _, v := range b.Vecs() {
		require.InDeltaSlice(t, []float64{0, 0.005773502691896257, -0.005773502691896257}, v[:], 1e-12)
	}

	// ragged vertex lists evaluate per instance
	lists := [][]matrix.Vec3{
		{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {3, 3, 3}, {1, 2, 3}, {-3, 4, -5}},
		{{0, 0, 0}, {3, 3, 3}, {-3, 4, -5}},
		{{1, 2, 3}, {-2, -3, 3}, {3, 2, 1}, {3, 3, 3}},
	}
	all, err := field.Direct(kernel.B, field.DirectInput{
		Shape: "Line", Observers: []matrix.Vec3{{1, 1, 1}}, Current: []float64{1}, Vertices: lists,
	})
	require.NoError(t, err)
	var want []float64
	for _, l := range lists {
		one, err := field.Direct(kernel.B, field.DirectInput{
			Shape: "Line", Observers: []matrix.Vec3{{1, 1, 1}}, Current: []float64{1}, Vertices: [][]matrix.Vec3{l},
		})
		require.NoError(t, err)
		want = append(want, one.Data()...)
	}
	requireClose(t, want, all.Data())
}

func TestDirectOrientationsMatchSources(t *testing.T) {
	const n = 25
	rots := make([]frame.Rotation, n)
	for i := range rots {
		r, err := frame.FromQuat(0.1*float64(i)/(n-1), 0.2, 0.3, 0.4)
		require.NoError(t, err)
		rots[i] = r
	}
	obs := matrix.Vec3{1, 2, 2}
	mag := matrix.Vec3{111, 222, 333}

	b, err := field.Direct(kernel.B, field.DirectInput{
		Shape:         "Cuboid",
		Observers:     []matrix.Vec3{obs},
		Positions:     []matrix.Vec3{matrix.Zero3},
		Orientations:  rots,
		Magnetization: []matrix.Vec3{mag},
		Dimension:     [][]float64{{3, 3, 3}},
	})
	require.NoError(t, err)
	require.Equal(t, []int{n, 3}, b.Shape())

	var want []float64
	for _, r := range rots {
		s := source.Source{
			Geometry: source.Cuboid{Magnetization: mag, Dimension: matrix.Vec3{3, 3, 3}},
			Path:     source.Static(matrix.Zero3, r),
		}
		want = append(want, mustB(t, []source.Source{s}, field.Point(obs)).Data()...)
	}
	requireClose(t, want, b.Data(), cmpopts.EquateApprox(0, 1e-12))
}

func TestDirectMatchesPath(t *testing.T) {
	mag := matrix.Vec3{111, 222, 333}
	g := source.Cylinder{Magnetization: mag, Diameter: 3, Height: 3}
	p, err := source.Static(matrix.Zero3, frame.Identity()).Move(matrix.Linspace(matrix.Vec3{0.5, 0, 0}, matrix.Vec3{7.5, 0, 0}, 15), -1)
	require.NoError(t, err)
	angles := make([]float64, 25)
	for i := range angles {
		angles[i] = 666 * float64(i) / 24
	}
	p, err = p.RotateFromAngAx(angles, matrix.Vec3{0, 1, 0}, &matrix.Zero3, source.Auto, true)
	require.NoError(t, err)
	p, err = p.Move(matrix.Linspace(matrix.Zero3, matrix.Vec3{0, 5, 0}, 5), -1)
	require.NoError(t, err)

	obs := matrix.Vec3{11, 2, 2}
	viaPath := mustB(t, []source.Source{{Geometry: g, Path: p}}, field.Point(obs))
	direct, err := field.Direct(kernel.B, field.DirectInput{
		Shape:         "cylinder",
		Observers:     []matrix.Vec3{obs},
		Positions:     p.Positions(),
		Orientations:  p.Orientations(),
		Magnetization: []matrix.Vec3{mag},
		Dimension:     [][]float64{{3, 3}},
	})
	require.NoError(t, err)
	require.Equal(t, viaPath.Shape(), direct.Shape())
	requireClose(t, viaPath.Data(), direct.Data(), cmpopts.EquateApprox(0, 1e-12))
}

func TestDirectSphereH(t *testing.T) {
	mags := []matrix.Vec3{{111, 222, 333}, {22, 2, 2}, {22, -33, -44}}
	h, err := field.Direct(kernel.H, field.DirectInput{
		Shape: "Sphere", Observers: []matrix.Vec3{{1, 2, 2}}, Magnetization: mags, Diameter: []float64{3},
	})
	require.NoError(t, err)

	var want []float64
	for _, m := range mags {
		s := static("", source.Sphere{Magnetization: m, Diameter: 3}, matrix.Zero3)
		one, err := field.ComputeH([]source.Source{s}, field.Point(matrix.Vec3{1, 2, 2}))
		require.NoError(t, err)
		want = append(want, one.Data()...)
	}
	requireClose(t, want, h.Data())
}

func TestDirectSqueeze(t *testing.T) {
	loop := func(obs ...matrix.Vec3) field.DirectInput {
		return field.DirectInput{Shape: "Loop", Observers: obs, Current: []float64{1}, Diameter: []float64{2}}
	}
	one, err := field.Direct(kernel.B, loop(matrix.Zero3))
	require.NoError(t, err)
	require.Equal(t, 1, one.Rank())
	require.InDeltaSlice(t, []float64{0, 0, 0.6283185307179586}, one.Data(), 1e-15)

	kept, err := field.Direct(kernel.B, loop(matrix.Zero3), field.WithSqueeze(false))
	require.NoError(t, err)
	require.Equal(t, []int{1, 3}, kept.Shape())

	two, err := field.Direct(kernel.B, loop(matrix.Zero3, matrix.Zero3))
	require.NoError(t, err)
	require.Equal(t, 2, two.Rank())
}

func TestDirectErrors(t *testing.T) {
	cases := []struct {
		name string
		in   field.DirectInput
	}{
		{"unknown shape", field.DirectInput{Shape: "Tetrahedron", Observers: []matrix.Vec3{{1, 0, 0}}}},
		{"missing moment", field.DirectInput{Shape: "Dipole", Observers: []matrix.Vec3{{1, 0, 0}}}},
		{"missing observers", field.DirectInput{Shape: "Dipole", Moment: []matrix.Vec3{{1, 0, 0}}}},
		{"length clash", field.DirectInput{
			Shape: "Sphere", Observers: []matrix.Vec3{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}},
			Magnetization: []matrix.Vec3{{1, 0, 0}, {0, 1, 0}}, Diameter: []float64{1},
		}},
		{"cuboid arity", field.DirectInput{
			Shape: "Cuboid", Observers: []matrix.Vec3{{5, 0, 0}},
			Magnetization: []matrix.Vec3{{1, 0, 0}}, Dimension: [][]float64{{1, 1}},
		}},
		{"segment arity", field.DirectInput{
			Shape: "CylinderSegment", Observers: []matrix.Vec3{{5, 0, 0}},
			Magnetization: []matrix.Vec3{{1, 0, 0}}, Dimension: [][]float64{{0, 1, 2, 0}},
		}},
		{"line both forms", field.DirectInput{
			Shape: "Line", Observers: []matrix.Vec3{{5, 0, 0}}, Current: []float64{1},
			SegmentStart: []matrix.Vec3{{0, 0, 0}}, SegmentEnd: []matrix.Vec3{{1, 0, 0}},
			Vertices: [][]matrix.Vec3{{{0, 0, 0}, {1, 0, 0}}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := field.Direct(kernel.B, tc.in)
			require.ErrorIs(t, err, field.ErrConfiguration)
		})
	}

	_, err := field.Direct(kernel.B, field.DirectInput{
		Shape: "Loop", Observers: []matrix.Vec3{{5, 0, 0}}, Current: []float64{1}, Diameter: []float64{-2},
	})
	require.ErrorIs(t, err, source.ErrInvalidParams)

	_, err = field.Direct(kernel.B, field.DirectInput{Shape: "Dipole", Observers: []matrix.Vec3{{0, 0, 0}}, Moment: []matrix.Vec3{{1, 0, 0}}})
	require.ErrorIs(t, err, kernel.ErrDomainSingularity)
}
