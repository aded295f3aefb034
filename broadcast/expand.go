// SPDX-License-Identifier: MIT

package broadcast

import (
	"fmt"

	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/matrix"
)

// Grid is an observer array of Steps × Count points stored step-major in
// Points (row s·Count + j is observer j at step s). Steps is 1 for static
// observers.
type Grid struct {
	Steps  int
	Count  int
	Points *matrix.Dense
}

// NewGrid validates that points holds steps·count rows.
func NewGrid(steps, count int, points *matrix.Dense) (Grid, error) {
	if err := matrix.ValidateBatch(points, 0); err != nil {
		return Grid{}, broadcastErrorf(opGrid, err)
	}
	if steps < 1 || count < 1 || points.Rows() != steps*count {
		return Grid{}, configErrorf(opGrid, "%d rows do not form %d×%d observers", points.Rows(), steps, count)
	}

	return Grid{Steps: steps, Count: count, Points: points}, nil
}

// StaticGrid wraps a flat k×3 observer batch.
func StaticGrid(points *matrix.Dense) (Grid, error) {
	if err := matrix.ValidateBatch(points, 0); err != nil {
		return Grid{}, broadcastErrorf(opGrid, err)
	}

	return NewGrid(1, points.Rows(), points)
}

// Batch is one aligned kernel evaluation: n local observers plus the
// rotations that map the n local field vectors back to the global frame.
type Batch struct {
	Plan      Plan
	Local     *matrix.Dense
	Rotations []frame.Rotation
}

// Expand aligns a source path (positions and rotations of length
// plan.PathLen) with grid g and maps every observer into the source frame.
//
// Implementation:
//   - Stage 1: build the n global observers. Outer tiles a static grid
//     once per path step; CoIndexed tiles a single observer to n.
//   - Stage 2: repeat each pose once per observer (Outer) or pair it with
//     its observer (CoIndexed); length-1 paths stay length 1 and broadcast.
//   - Stage 3: frame.ToLocal.
//
// Complexity: O(n) time and memory.
func Expand(plan Plan, positions []matrix.Vec3, rotations []frame.Rotation, g Grid) (Batch, error) {
	if len(positions) != plan.PathLen || len(rotations) != plan.PathLen {
		return Batch{}, configErrorf(opExpand, "path of %d positions and %d rotations, plan expects %d",
			len(positions), len(rotations), plan.PathLen)
	}
	if g.Steps != plan.Steps || g.Count != plan.Count {
		return Batch{}, configErrorf(opExpand, "grid %d×%d does not match plan %d×%d", g.Steps, g.Count, plan.Steps, plan.Count)
	}

	global, err := expandObservers(plan, g)
	if err != nil {
		return Batch{}, broadcastErrorf(opExpand, err)
	}
	pos, rots := positions, rotations
	if plan.PathLen > 1 && plan.Mode == Outer && plan.Cols > 1 {
		pos = make([]matrix.Vec3, 0, plan.N())
		rots = make([]frame.Rotation, 0, plan.N())
		for i := 0; i < plan.PathLen; i++ {
			for j := 0; j < plan.Cols; j++ {
				pos = append(pos, positions[i])
				rots = append(rots, rotations[i])
			}
		}
	}
	local, err := frame.ToLocal(global, pos, rots)
	if err != nil {
		return Batch{}, broadcastErrorf(opExpand, err)
	}

	return Batch{Plan: plan, Local: local, Rotations: append([]frame.Rotation(nil), rots...)}, nil
}

func expandObservers(plan Plan, g Grid) (*matrix.Dense, error) {
	switch {
	case g.Points.Rows() == plan.N():
		return g.Points.CloneDense(), nil
	case plan.Mode == Outer && g.Steps == 1:
		return matrix.TileRows(g.Points, plan.Rows)
	case plan.Mode == CoIndexed && g.Count == 1:
		return matrix.RepeatRows(g.Points, plan.Rows)
	}

	return nil, fmt.Errorf("%d observer rows for %d instances: %w", g.Points.Rows(), plan.N(), ErrConfiguration)
}

// Global maps the n local field vectors of a kernel call back to the
// global frame. The result is row-major in (Rows, Cols).
func (b Batch) Global(local *matrix.Dense) (*matrix.Dense, error) {
	if err := matrix.ValidateBatch(local, b.Plan.N()); err != nil {
		return nil, broadcastErrorf(opCollect, err)
	}
	out, err := frame.ToGlobal(local, b.Rotations)
	if err != nil {
		return nil, broadcastErrorf(opCollect, err)
	}

	return out, nil
}
