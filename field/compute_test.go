package field_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/katalvlaran/magfield/broadcast"
	"github.com/katalvlaran/magfield/field"
	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/kernel"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/katalvlaran/magfield/source"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const hPerB = 10 / (4 * math.Pi)

var approx = cmpopts.EquateApprox(1e-9, 1e-12)

func static(name string, g source.Geometry, pos matrix.Vec3) source.Source {
	return source.Source{Name: name, Geometry: g, Path: source.Static(pos, frame.Identity())}
}

func requireClose(t *testing.T, want, got []float64, opts ...cmp.Option) {
	t.Helper()
	if len(opts) == 0 {
		opts = []cmp.Option{approx}
	}
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func mustB(t *testing.T, sources []source.Source, obs field.Observers, opts ...field.Option) *field.Tensor {
	t.Helper()
	out, err := field.ComputeB(sources, obs, opts...)
	require.NoError(t, err)

	return out
}

func scene() []source.Source {
	return []source.Source{
		static("cube", source.Cuboid{Magnetization: matrix.Vec3{0, 0, 1000}, Dimension: matrix.Vec3{1, 2, 3}}, matrix.Vec3{0, 0, 3}),
		static("rod", source.Cylinder{Magnetization: matrix.Vec3{100, 0, 500}, Diameter: 2, Height: 1}, matrix.Vec3{-2, 1, 0}),
		static("coil", source.Loop{Current: 50, Diameter: 4}, matrix.Vec3{1, 1, -1}),
		static("m", source.Dipole{Moment: matrix.Vec3{1e3, 2e3, 3e3}}, matrix.Vec3{4, 0, 0}),
	}
}

func TestSuperposition(t *testing.T) {
	srcs := scene()
	obs := field.Points(matrix.Vec3{1, 2, 3}, matrix.Vec3{-1, 0.5, 0.2}, matrix.Vec3{0, 0, 0})

	total := mustB(t, srcs, obs)
	require.Equal(t, []int{3, 3}, total.Shape())

	sum := make([]float64, 9)
	for _, s := range srcs {
		for i, v := range mustB(t, []source.Source{s}, obs).Data() {
			sum[i] += v
		}
	}
	requireClose(t, sum, total.Data())
}

func TestSegmentMatchesCylinder(t *testing.T) {
	rot, err := frame.FromEuler("xyz", []float64{10, 20, 30}, true)
	require.NoError(t, err)
	path := source.Static(matrix.Vec3{0.5, -0.2, 0.1}, rot)
	mag := matrix.Vec3{10, 20, 30}
	cyl := source.Source{Geometry: source.Cylinder{Magnetization: mag, Diameter: 2, Height: 2}, Path: path}
	seg := source.Source{Geometry: source.CylinderSegment{Magnetization: mag, OuterRadius: 1, Height: 2, Phi2: 360}, Path: path}
	obs := field.Points(matrix.Vec3{1, 2, 3}, matrix.Vec3{0.3, 0.2, 0.4}, matrix.Vec3{-2, 0, 0.5})

	for _, q := range []kernel.Quantity{kernel.B, kernel.H} {
		a, err := field.Compute(context.Background(), q, []source.Source{cyl}, obs)
		require.NoError(t, err)
		b, err := field.Compute(context.Background(), q, []source.Source{seg}, obs)
		require.NoError(t, err)
		requireClose(t, a.Data(), b.Data(), cmpopts.EquateApprox(1e-8, 1e-10))
	}
}

func TestLoopCenter(t *testing.T) {
	loop := []source.Source{static("", source.Loop{Current: 1, Diameter: 2}, matrix.Zero3)}

	b := mustB(t, loop, field.Point(matrix.Zero3))
	require.Equal(t, []int{3}, b.Shape())
	requireClose(t, []float64{0, 0, 0.6283185307179586}, b.Data())

	h, err := field.ComputeH(loop, field.Point(matrix.Zero3))
	require.NoError(t, err)
	requireClose(t, []float64{0, 0, 0.6283185307179586 * hPerB}, h.Data())
}

func TestDipoleReference(t *testing.T) {
	d := []source.Source{static("", source.Dipole{Moment: matrix.Vec3{1, 2, 3}}, matrix.Zero3)}
	b := mustB(t, d, field.Point(matrix.Vec3{1, 1, 1}))
	require.InDeltaSlice(t, []float64{0.07657346, 0.06125877, 0.04594407}, b.Data(), 1e-8)
}

func TestSphereInteriorH(t *testing.T) {
	s := []source.Source{static("", source.Sphere{Magnetization: matrix.Vec3{0, 0, 3}, Diameter: 2}, matrix.Zero3)}
	b := mustB(t, s, field.Point(matrix.Zero3))
	requireClose(t, []float64{0, 0, 2}, b.Data())

	h, err := field.ComputeH(s, field.Point(matrix.Zero3))
	require.NoError(t, err)
	requireClose(t, []float64{0, 0, -hPerB}, h.Data())
}

func sweep(t *testing.T, n int) source.Path {
	t.Helper()
	p, err := source.Static(matrix.Zero3, frame.Identity()).Move(matrix.Linspace(matrix.Zero3, matrix.Vec3{3, 0, 0}, n), 0)
	require.NoError(t, err)

	return p
}

func TestResultShapes(t *testing.T) {
	dip := source.Dipole{Moment: matrix.Vec3{0, 0, 1}}
	pts := func(k int) []matrix.Vec3 { return matrix.Linspace(matrix.Vec3{0, 5, 0}, matrix.Vec3{0, 5, 5}, k) }
	moving, err := field.PathPoints([][]matrix.Vec3{pts(2), pts(2), pts(2)})
	require.NoError(t, err)

	cases := []struct {
		name string
		path source.Path
		obs  field.Observers
		opts []field.Option
		want []int
	}{
		{"one observer", source.Path{}, field.Point(matrix.Vec3{0, 5, 0}), nil, []int{3}},
		{"one observer unsqueezed", source.Path{}, field.Point(matrix.Vec3{0, 5, 0}), []field.Option{field.WithSqueeze(false)}, []int{1, 1, 3}},
		{"observer list", source.Path{}, field.Points(pts(5)...), nil, []int{5, 3}},
		{"path", sweep(t, 4), field.Point(matrix.Vec3{0, 5, 0}), nil, []int{4, 3}},
		{"path times observers", sweep(t, 4), field.Points(pts(5)...), nil, []int{4, 5, 3}},
		{"path times observers unsqueezed", sweep(t, 4), field.Points(pts(5)...), []field.Option{field.WithSqueeze(false)}, []int{4, 5, 3}},
		{"moving observers", source.Path{}, moving, nil, []int{3, 2, 3}},
		{"moving observers and path", sweep(t, 3), moving, nil, []int{3, 2, 3}},
		{"moving observers padded", sweep(t, 5), moving, nil, []int{5, 2, 3}},
		{"coindexed", sweep(t, 5), field.Points(pts(5)...), []field.Option{field.WithMode(broadcast.CoIndexed)}, []int{5, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := mustB(t, []source.Source{{Geometry: dip, Path: tc.path}}, tc.obs, tc.opts...)
			require.Equal(t, tc.want, out.Shape())
		})
	}
}

// A cylinder swept past the origin equals a static cylinder seen from a
// reversed observer line.
func TestPathMoveMatchesStatic(t *testing.T) {
	const n = 100
	g := source.Cylinder{Magnetization: matrix.Vec3{0, 0, 1000}, Diameter: 3, Height: 3}

	moved, err := source.Static(matrix.Vec3{-5, 0, 3}, frame.Identity()).
		Move(matrix.Linspace(matrix.Zero3, matrix.Vec3{10, 0, 0}, n), -1)
	require.NoError(t, err)
	b1 := mustB(t, []source.Source{{Geometry: g, Path: moved}}, field.Point(matrix.Zero3))
	require.Equal(t, []int{n, 3}, b1.Shape())

	obs := matrix.Linspace(matrix.Vec3{5, 0, 0}, matrix.Vec3{-5, 0, 0}, n)
	b2 := mustB(t, []source.Source{static("", g, matrix.Vec3{0, 0, 3})}, field.Points(obs...))

	requireClose(t, b2.Data(), b1.Data())
}

func TestPathRotateMatchesIncremental(t *testing.T) {
	const n = 111
	g := source.Cuboid{Magnetization: matrix.Vec3{0, 0, 1000}, Dimension: matrix.Vec3{1, 2, 3}}
	ax := matrix.Vec3{1, 0, 0}
	anchor := matrix.Vec3{0, 0, 10}

	start, err := source.Static(matrix.Vec3{0, 0, 3}, frame.Identity()).RotateFromAngAx([]float64{-30}, ax, &anchor, source.Auto, true)
	require.NoError(t, err)
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = 60 * float64(i) / (n - 1)
	}
	swept, err := start.RotateFromAngAx(angles, ax, &anchor, -1, true)
	require.NoError(t, err)
	b1 := mustB(t, []source.Source{{Geometry: g, Path: swept}}, field.Point(matrix.Zero3))

	want := make([]float64, 0, 3*n)
	step := start
	for i := 0; i < n; i++ {
		want = append(want, mustB(t, []source.Source{{Geometry: g, Path: step}}, field.Point(matrix.Zero3)).Data()...)
		step, err = step.RotateFromAngAx([]float64{60.0 / (n - 1)}, ax, &anchor, source.Auto, true)
		require.NoError(t, err)
	}
	requireClose(t, want, b1.Data(), cmpopts.EquateApprox(1e-9, 1e-9))
}

func TestMovingObserversMatchStaticSteps(t *testing.T) {
	src := scene()[1]
	src.Path = sweep(t, 3)
	steps := [][]matrix.Vec3{
		{{1, 2, 3}, {0, 0, 4}},
		{{1, 2, 2}, {0, 1, 4}},
		{{1, 2, 1}, {0, 2, 4}},
	}
	obs, err := field.PathPoints(steps)
	require.NoError(t, err)
	got := mustB(t, []source.Source{src}, obs)

	var want []float64
	for i, pts := range steps {
		s := src
		s.Path = source.Static(src.Path.Position(i), src.Path.Orientation(i))
		want = append(want, mustB(t, []source.Source{s}, field.Points(pts...)).Data()...)
	}
	requireClose(t, want, got.Data())
}

func TestShorterPathsArePadded(t *testing.T) {
	a := scene()[0]
	a.Path = sweep(t, 3)
	b := scene()[2]
	b.Path = sweep(t, 2)
	obs := field.Point(matrix.Vec3{0, 4, 0})

	both := mustB(t, []source.Source{a, b}, obs)
	require.Equal(t, []int{3, 3}, both.Shape())

	onlyA := mustB(t, []source.Source{a}, obs).Data()
	last := b
	last.Path = source.Static(b.Path.Position(1), b.Path.Orientation(1))
	bLast := mustB(t, []source.Source{last}, obs).Data()
	row2, err := both.Vec(2)
	require.NoError(t, err)
	for j := 0; j < 3; j++ {
		require.InDelta(t, onlyA[6+j]+bLast[j], row2[j], 1e-12)
	}

	_, err = field.ComputeB([]source.Source{a, b}, obs, field.WithPathPolicy(field.StrictPaths))
	require.ErrorIs(t, err, field.ErrConfiguration)
	var ee *field.EvalError
	require.True(t, errors.As(err, &ee))
	require.Equal(t, 1, ee.Source)
}

func TestRaggedEqualsConcatenation(t *testing.T) {
	srcs := scene()[:2]
	l0 := []matrix.Vec3{{1, 2, 3}, {0, 0, -2}}
	l1 := []matrix.Vec3{{5, 5, 5}, {-1, -2, 0}, {0, 3, 1}}

	got := mustB(t, srcs, field.Ragged(l0, l1))
	require.Equal(t, []int{5, 3}, got.Shape())
	want := append(mustB(t, srcs[:1], field.Points(l0...)).Data(), mustB(t, srcs[1:], field.Points(l1...)).Data()...)
	requireClose(t, want, got.Data())

	// outer pairing concatenates along the observer axis, broadcasting
	// static sources over the path axis
	moving := srcs[0]
	moving.Path = sweep(t, 2)
	outer := mustB(t, []source.Source{moving, srcs[1]}, field.Ragged(l0, l1), field.WithMode(broadcast.Outer))
	require.Equal(t, []int{2, 5, 3}, outer.Shape())
	a := mustB(t, []source.Source{moving}, field.Points(l0...))
	b := mustB(t, srcs[1:], field.Points(l1...))
	for r := 0; r < 2; r++ {
		for c := 0; c < 5; c++ {
			got, err := outer.Vec(r, c)
			require.NoError(t, err)
			var want matrix.Vec3
			if c < 2 {
				want, err = a.Vec(r, c)
			} else {
				want, err = b.Vec(c - 2)
			}
			require.NoError(t, err)
			require.InDeltaSlice(t, want[:], got[:], 1e-12)
		}
	}

	_, err := field.ComputeB(srcs, field.Ragged(l0))
	require.ErrorIs(t, err, field.ErrConfiguration)
	_, err = field.ComputeB(srcs, field.Ragged(l0, nil))
	require.ErrorIs(t, err, field.ErrConfiguration)
}

func TestRaggedMovingSources(t *testing.T) {
	a, b := scene()[0], scene()[1]
	a.Path, b.Path = sweep(t, 3), sweep(t, 2)
	l0 := []matrix.Vec3{{1, 2, 3}, {0, 0, -2}, {5, 5, 5}}

	for _, l1 := range [][]matrix.Vec3{
		{{5, 5, 5}, {-1, -2, 0}},
		{{-1, -2, 0}},
	} {
		got := mustB(t, []source.Source{a, b}, field.Ragged(l0, l1))
		require.Equal(t, []int{5, 3}, got.Shape())

		// each source is evaluated on its own path as if it were alone
		alone := mustB(t, []source.Source{a}, field.Ragged(l0))
		require.Equal(t, []int{3, 3}, alone.Shape())
		want := append(alone.Data(), mustB(t, []source.Source{b}, field.Ragged(l1)).Data()...)
		requireClose(t, want, got.Data())
	}

	// strict paths do not apply between concatenated sources
	got, err := field.ComputeB([]source.Source{a, b}, field.Ragged(l0, l0[:2]), field.WithPathPolicy(field.StrictPaths))
	require.NoError(t, err)
	require.Equal(t, []int{5, 3}, got.Shape())
}

func TestDipoleAtItselfErrors(t *testing.T) {
	srcs := scene()
	_, err := field.ComputeB(srcs, field.Points(matrix.Vec3{4, 0, 0}))
	require.ErrorIs(t, err, kernel.ErrDomainSingularity)

	var ee *field.EvalError
	require.True(t, errors.As(err, &ee))
	require.Equal(t, 3, ee.Source)
	require.Equal(t, "m", ee.Name)
	require.Equal(t, source.ShapeDipole, ee.Shape)
	require.Contains(t, ee.Error(), "Dipole")
}

func TestCuboidFaceCentre(t *testing.T) {
	// B·n at the centre of a face of the unit cube magnetized along n is
	// M·(1/2 − Ω/4π), Ω being the solid angle of the opposite face
	omega := 4 * math.Atan(0.25/math.Sqrt(1.5))
	want := 0.5 - omega/(4*math.Pi)
	require.InDelta(t, 0.435905783151025, want, 1e-15)

	g := source.Cuboid{Magnetization: matrix.Vec3{0, 0, 1}, Dimension: matrix.Vec3{1, 1, 1}}
	pos := matrix.Vec3{1, 2, 3}
	b := mustB(t, []source.Source{static("", g, pos)}, field.Point(pos.Add(matrix.Vec3{0, 0, 0.5})))
	requireClose(t, []float64{0, 0, want}, b.Data())

	// the face value is the inside limit, so H carries −M
	h, err := field.ComputeH([]source.Source{static("", g, pos)}, field.Point(pos.Add(matrix.Vec3{0, 0, -0.5})))
	require.NoError(t, err)
	requireClose(t, []float64{0, 0, (want - 1) * hPerB}, h.Data())

	// a rotated cube: local z is carried onto global x
	rot, err := frame.FromAngleAxis(90, matrix.Vec3{0, 1, 0}, true)
	require.NoError(t, err)
	turned := source.Source{Geometry: g, Path: source.Static(pos, rot)}
	b = mustB(t, []source.Source{turned}, field.Point(pos.Add(matrix.Vec3{0.5, 0, 0})))
	requireClose(t, []float64{want, 0, 0}, b.Data(), cmpopts.EquateApprox(0, 1e-12))

	// edges and corners evaluate to zero
	corner := mustB(t, []source.Source{static("", g, matrix.Zero3)}, field.Point(matrix.Vec3{0.5, 0.5, 0.5}))
	require.Equal(t, []float64{0, 0, 0}, corner.Data())
}

func TestLineOrientation(t *testing.T) {
	const x = 0.1414213562373095
	line := source.Line{Current: 1, Vertices: []matrix.Vec3{{1, 0, -1}, {1, 0, 1}}}
	euler := func(seq string, deg float64) frame.Rotation {
		r, err := frame.FromEuler(seq, []float64{deg}, true)
		require.NoError(t, err)
		return r
	}

	cases := []struct {
		name string
		path source.Path
		want []float64
	}{
		{"z-line on x=1", source.Path{}, []float64{0, -x, 0}},
		{"moved to x=-1", source.Static(matrix.Vec3{-2, 0, 0}, frame.Identity()), []float64{0, x, 0}},
		{"rotated about z", source.Static(matrix.Zero3, euler("z", 90)), []float64{x, 0, 0}},
		{"rotated about x", source.Static(matrix.Zero3, euler("x", 90)), []float64{0, 0, -x}},
		{"rotated about y", source.Static(matrix.Zero3, euler("y", 90)), []float64{0, -x, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := mustB(t, []source.Source{{Geometry: line, Path: tc.path}}, field.Point(matrix.Zero3))
			require.InDeltaSlice(t, tc.want, b.Data(), 1e-12)
		})
	}
}

func TestWorkersAreDeterministic(t *testing.T) {
	var srcs []source.Source
	for i := 0; i < 24; i++ {
		s := scene()[i%4]
		s.Path = source.Static(matrix.Vec3{float64(i), -float64(i) / 2, 1}, frame.Identity())
		srcs = append(srcs, s)
	}
	obs := field.Points(matrix.Linspace(matrix.Vec3{-3, 7, 2}, matrix.Vec3{30, 7, 2}, 16)...)

	seq := mustB(t, srcs, obs)
	par := mustB(t, srcs, obs, field.WithWorkers(6))
	require.Equal(t, seq.Data(), par.Data())

	// the failing source is reported, whatever the schedule
	bad := append([]source.Source(nil), srcs...)
	bad[5] = static("bad", source.Dipole{Moment: matrix.Vec3{0, 0, 1}}, matrix.Vec3{-3, 7, 2})
	_, err := field.ComputeB(bad, obs, field.WithWorkers(6))
	var ee *field.EvalError
	require.True(t, errors.As(err, &ee))
	require.Equal(t, 5, ee.Source)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, w := range []int{1, 4} {
		_, err := field.ComputeBContext(ctx, scene(), field.Point(matrix.Vec3{9, 9, 9}), field.WithWorkers(w))
		require.ErrorIs(t, err, context.Canceled)
		_, err = field.ComputeHContext(ctx, scene(), field.Point(matrix.Vec3{9, 9, 9}), field.WithWorkers(w))
		require.ErrorIs(t, err, context.Canceled)
	}
}

func TestConfigurationErrors(t *testing.T) {
	srcs := scene()
	_, err := field.ComputeB(nil, field.Point(matrix.Zero3))
	require.ErrorIs(t, err, field.ErrConfiguration)

	_, err = field.ComputeB(srcs, field.Observers{})
	require.ErrorIs(t, err, field.ErrConfiguration)

	_, err = field.PathPoints([][]matrix.Vec3{{{0, 0, 0}}, {{1, 0, 0}, {2, 0, 0}}})
	require.ErrorIs(t, err, field.ErrConfiguration)

	_, err = field.ComputeB(srcs, field.Point(matrix.Vec3{math.NaN(), 0, 0}))
	require.ErrorIs(t, err, matrix.ErrNaNInf)

	moving, err := field.PathPoints([][]matrix.Vec3{{{9, 0, 0}}, {{9, 1, 0}}})
	require.NoError(t, err)
	_, err = field.ComputeB(srcs, moving, field.WithMode(broadcast.CoIndexed))
	require.ErrorIs(t, err, field.ErrConfiguration)

	_, err = field.ComputeB([]source.Source{{Name: "empty"}}, field.Point(matrix.Zero3))
	require.ErrorIs(t, err, source.ErrNilGeometry)

	invalid := static("neg", source.Sphere{Diameter: -1}, matrix.Zero3)
	_, err = field.ComputeB([]source.Source{invalid}, field.Point(matrix.Vec3{3, 0, 0}))
	require.ErrorIs(t, err, source.ErrInvalidParams)
}

func TestOptionPanics(t *testing.T) {
	require.Panics(t, func() { field.WithWorkers(0) })
	require.Panics(t, func() { field.WithMode(broadcast.Mode(9)) })
	require.Panics(t, func() { field.WithPathPolicy(field.PathPolicy(7)) })
	require.NotPanics(t, func() { field.WithLogger(nil) })
}

func TestDebugLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := field.ComputeB(scene(), field.Point(matrix.Vec3{9, 9, 9}), field.WithLogger(zap.New(core)))
	require.NoError(t, err)
	require.Equal(t, 4, logs.FilterMessage("source evaluated").Len())
	require.Equal(t, 1, logs.FilterMessage("field reduced").Len())
}
