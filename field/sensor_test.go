package field_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/magfield/broadcast"
	"github.com/katalvlaran/magfield/field"
	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/katalvlaran/magfield/source"
	"github.com/stretchr/testify/require"
)

func TestSensorFrame(t *testing.T) {
	srcs := scene()
	rot, err := frame.FromAngleAxis(90, matrix.Vec3{0, 0, 1}, true)
	require.NoError(t, err)
	pixels := []matrix.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0.5, 0.5}}
	pos := matrix.Vec3{1, -2, 0.5}

	obs, err := field.SensorPoints(field.Sensor{Pixels: pixels, Path: source.Static(pos, rot)})
	require.NoError(t, err)
	require.True(t, obs.IsSensor())
	got := mustB(t, srcs, obs)
	require.Equal(t, []int{3, 3}, got.Shape())

	var global []matrix.Vec3
	for _, p := range pixels {
		global = append(global, pos.Add(rot.Apply(p)))
	}
	want := mustB(t, srcs, field.Points(global...)).Vecs()
	for i, b := range got.Vecs() {
		w := rot.ApplyInverse(want[i])
		requireClose(t, w[:], b[:])
	}

	// pixel (1,0,0) of a sensor turned 90° about z sits at pos + (0,1,0)
	// and reads the global y component along its x axis
	require.InDelta(t, want[1][1], got.Vecs()[1][0], 1e-12)
	require.InDelta(t, -want[1][0], got.Vecs()[1][1], 1e-12)
}

func TestMovingSensor(t *testing.T) {
	srcs := scene()
	path, err := source.Static(matrix.Vec3{0, 3, 0}, frame.Identity()).Move(matrix.Linspace(matrix.Zero3, matrix.Vec3{0, 0, 2}, 4), 0)
	require.NoError(t, err)
	spin := make([]frame.Rotation, 4)
	for i := range spin {
		if spin[i], err = frame.FromAngleAxis(float64(30*i), matrix.Vec3{1, 0, 0}, true); err != nil {
			t.Fatal(err)
		}
	}
	path, err = path.Rotate(spin, nil, 0)
	require.NoError(t, err)

	obs, err := field.SensorPoints(field.Sensor{Path: path})
	require.NoError(t, err)
	got := mustB(t, srcs, obs, field.WithSqueeze(false))
	require.Equal(t, []int{4, 1, 3}, got.Shape())
	for i := 0; i < path.Len(); i++ {
		want := mustB(t, srcs, field.Point(path.Position(i))).Vecs()[0]
		w := path.Orientation(i).ApplyInverse(want)
		b, err := got.Vec(i, 0)
		require.NoError(t, err)
		requireClose(t, w[:], b[:])
	}

	// a moving source seen by a static sensor: rows past the sensor path
	// hold its only orientation
	tilt, err := frame.FromAngleAxis(45, matrix.Vec3{0, 1, 0}, true)
	require.NoError(t, err)
	fixed, err := field.SensorPoints(field.Sensor{Pixels: []matrix.Vec3{{0, 0, 1}}, Path: source.Static(matrix.Vec3{0, 0, 2}, tilt)})
	require.NoError(t, err)
	mover, err := source.New("m", source.Dipole{Moment: matrix.Vec3{0, 0, 1e3}}, sweep(t, 5))
	require.NoError(t, err)
	moving := mustB(t, []source.Source{mover}, fixed, field.WithSqueeze(false))
	require.Equal(t, []int{5, 1, 3}, moving.Shape())
	at := matrix.Vec3{0, 0, 2}.Add(tilt.Apply(matrix.Vec3{0, 0, 1}))
	ref := mustB(t, []source.Source{mover}, field.Point(at), field.WithSqueeze(false)).Vecs()
	for i, b := range moving.Vecs() {
		w := tilt.ApplyInverse(ref[i])
		requireClose(t, w[:], b[:])
	}
}

func TestSensorErrors(t *testing.T) {
	_, err := field.SensorPoints(field.Sensor{
		Pixels: []matrix.Vec3{{0, 0, math.NaN()}},
		Path:   source.Static(matrix.Zero3, frame.Identity()),
	})
	require.ErrorIs(t, err, matrix.ErrNaNInf)

	obs, err := field.SensorPoints(field.Sensor{
		Pixels: []matrix.Vec3{{0, 0, 1}, {0, 0, 2}},
		Path:   source.Static(matrix.Zero3, frame.Identity()),
	})
	require.NoError(t, err)
	_, err = field.ComputeB(scene(), obs, field.WithMode(broadcast.CoIndexed))
	require.ErrorIs(t, err, field.ErrConfiguration)
}
