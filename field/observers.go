// SPDX-License-Identifier: MIT

package field

import (
	"fmt"

	"github.com/katalvlaran/magfield/broadcast"
	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/katalvlaran/magfield/source"
)

type observerKind int

const (
	kindNone observerKind = iota
	kindGrid
	kindRagged
)

// Observers describes where the field is evaluated: one point, a flat list, a moving
// grid (one row of points per path step), an oriented sensor or ragged
// per-source lists. Construct it with Point, Points, PathPoints, SensorPoints
// or Ragged.
type Observers struct {
	kind   observerKind
	steps  int
	count  int
	points []matrix.Vec3    // step-major, steps·count entries
	ragged [][]matrix.Vec3  // one list per source
	frames []frame.Rotation // sensor orientation per step, nil for plain points
}

// Point is a single observer.
func Point(p matrix.Vec3) Observers { return Points(p) }

// Points is a flat list of static observers.
func Points(ps ...matrix.Vec3) Observers {
	return Observers{kind: kindGrid, steps: 1, count: len(ps), points: append([]matrix.Vec3(nil), ps...)}
}

// PathPoints is a moving observer array: steps[i] holds the observer
// positions at path step i. Every step must have the same number of points.
func PathPoints(steps [][]matrix.Vec3) (Observers, error) {
	if len(steps) == 0 || len(steps[0]) == 0 {
		return Observers{}, configErrorf(opObs, "empty observer path")
	}
	k := len(steps[0])
	flat := make([]matrix.Vec3, 0, len(steps)*k)
	for i, row := range steps {
		if len(row) != k {
			return Observers{}, configErrorf(opObs, "step %d has %d observers, want %d", i, len(row), k)
		}
		flat = append(flat, row...)
	}

	return Observers{kind: kindGrid, steps: len(steps), count: k, points: flat}, nil
}

// Sensor is an oriented observer array. Pixels are positions in the sensor
// frame (the origin when empty) carried along Path.
type Sensor struct {
	Pixels []matrix.Vec3
	Path   source.Path
}

// SensorPoints returns the observers of s: at path step i the pixels sit at
// Position(i) + Orientation(i)·pixel. Fields evaluated at a sensor are
// reported in the sensor frame of their step.
func SensorPoints(s Sensor) (Observers, error) {
	pixels := s.Pixels
	if len(pixels) == 0 {
		pixels = []matrix.Vec3{matrix.Zero3}
	}
	for i, p := range pixels {
		if !p.IsFinite() {
			return Observers{}, fieldErrorf(opObs, fmt.Errorf("pixel %d: %w", i, matrix.ErrNaNInf))
		}
	}
	steps := s.Path.Len()
	o := Observers{
		kind:   kindGrid,
		steps:  steps,
		count:  len(pixels),
		points: make([]matrix.Vec3, 0, steps*len(pixels)),
		frames: s.Path.Orientations(),
	}
	for i := 0; i < steps; i++ {
		pos, rot := s.Path.Position(i), s.Path.Orientation(i)
		for _, p := range pixels {
			o.points = append(o.points, pos.Add(rot.Apply(p)))
		}
	}

	return o, nil
}

// IsSensor reports whether results are expressed in a sensor frame.
func (o Observers) IsSensor() bool { return o.frames != nil }

// toSensorFrame rotates every row of t into the sensor frame of its step.
// Rows past the sensor path hold its last orientation.
func (o Observers) toSensorFrame(t *Tensor) {
	rows, cols := t.shape[0], t.shape[1]
	for r := 0; r < rows; r++ {
		rot := o.frames[min(r, len(o.frames)-1)]
		for c := 0; c < cols; c++ {
			k := (r*cols + c) * 3
			v := rot.ApplyInverse(matrix.Vec3{t.data[k], t.data[k+1], t.data[k+2]})
			copy(t.data[k:k+3], v[:])
		}
	}
}

// Ragged pairs lists[i] with source i. Lists may differ in length.
func Ragged(lists ...[]matrix.Vec3) Observers {
	cp := make([][]matrix.Vec3, len(lists))
	for i, l := range lists {
		cp[i] = append([]matrix.Vec3(nil), l...)
	}

	return Observers{kind: kindRagged, ragged: cp}
}

// IsRagged reports whether the observers are per-source lists.
func (o Observers) IsRagged() bool { return o.kind == kindRagged }

// Steps returns the observer path length (1 for static or ragged observers).
func (o Observers) Steps() int {
	if o.kind == kindGrid {
		return o.steps
	}

	return 1
}

// grid returns the shared grid; a moving grid is padded to steps path
// steps by holding its last row.
func (o Observers) grid(steps int) (broadcast.Grid, error) {
	if o.kind != kindGrid || o.count == 0 {
		return broadcast.Grid{}, configErrorf(opObs, "no observers")
	}
	pts, s := o.points, o.steps
	if s > 1 && steps > s {
		pts = make([]matrix.Vec3, 0, steps*o.count)
		pts = append(pts, o.points...)
		last := o.points[(s-1)*o.count:]
		for ; s < steps; s++ {
			pts = append(pts, last...)
		}
	}

	return gridOf(s, o.count, pts)
}

// raggedGrid returns the static grid of list i.
func (o Observers) raggedGrid(i int) (broadcast.Grid, error) {
	if len(o.ragged[i]) == 0 {
		return broadcast.Grid{}, configErrorf(opObs, "observer list %d is empty", i)
	}

	return gridOf(1, len(o.ragged[i]), o.ragged[i])
}

func gridOf(steps, count int, pts []matrix.Vec3) (broadcast.Grid, error) {
	for i, p := range pts {
		if !p.IsFinite() {
			return broadcast.Grid{}, fieldErrorf(opObs, fmt.Errorf("observer %d: %w", i, matrix.ErrNaNInf))
		}
	}
	b, err := matrix.NewBatchFromVecs(pts)
	if err != nil {
		return broadcast.Grid{}, fieldErrorf(opObs, err)
	}

	return broadcast.NewGrid(steps, count, b)
}
