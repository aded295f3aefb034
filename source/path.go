// SPDX-License-Identifier: MIT

package source

import (
	"fmt"
	"math"

	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/matrix"
)

// Auto selects the default start index of Move and Rotate: 0 (the whole
// path) for a single operand, the end of the path (append) for a sequence.
const Auto = math.MinInt

// Path is an immutable, co-indexed sequence of positions and orientations.
// The zero value is a static path at the origin with identity orientation.
//
// Every transforming method returns a new Path and never aliases the
// receiver's storage.
type Path struct {
	positions    []matrix.Vec3
	orientations []frame.Rotation
}

// NewPath copies positions and orientations into a Path. A nil orientations
// slice means identity at every step; otherwise both lengths must match.
func NewPath(positions []matrix.Vec3, orientations []frame.Rotation) (Path, error) {
	if len(positions) == 0 {
		return Path{}, sourceErrorf(opNewPath, fmt.Errorf("no positions: %w", ErrInvalidPath))
	}
	if orientations != nil && len(orientations) != len(positions) {
		return Path{}, sourceErrorf(opNewPath,
			fmt.Errorf("%d positions vs %d orientations: %w", len(positions), len(orientations), ErrInvalidPath))
	}
	for i, p := range positions {
		if !p.IsFinite() {
			return Path{}, sourceErrorf(opNewPath, fmt.Errorf("position %d is not finite: %w", i, ErrInvalidPath))
		}
	}
	p := Path{
		positions:    append([]matrix.Vec3(nil), positions...),
		orientations: make([]frame.Rotation, len(positions)),
	}
	copy(p.orientations, orientations)

	return p, nil
}

// Static returns a length-1 path.
func Static(position matrix.Vec3, orientation frame.Rotation) Path {
	return Path{positions: []matrix.Vec3{position}, orientations: []frame.Rotation{orientation}}
}

// Len returns the number of path steps (at least 1).
func (p Path) Len() int {
	if len(p.positions) == 0 {
		return 1
	}

	return len(p.positions)
}

// Position returns the position at step i.
func (p Path) Position(i int) matrix.Vec3 {
	if len(p.positions) == 0 {
		return matrix.Zero3
	}

	return p.positions[i]
}

// Orientation returns the orientation at step i.
func (p Path) Orientation(i int) frame.Rotation {
	if len(p.orientations) == 0 {
		return frame.Identity()
	}

	return p.orientations[i]
}

// Positions returns a copy of all positions.
func (p Path) Positions() []matrix.Vec3 {
	out := make([]matrix.Vec3, p.Len())
	for i := range out {
		out[i] = p.Position(i)
	}

	return out
}

// Orientations returns a copy of all orientations.
func (p Path) Orientations() []frame.Rotation {
	out := make([]frame.Rotation, p.Len())
	for i := range out {
		out[i] = p.Orientation(i)
	}

	return out
}

// Pad extends the path to n steps by holding the last pose. n must be at
// least Len().
func (p Path) Pad(n int) (Path, error) {
	if n < p.Len() {
		return Path{}, sourceErrorf(opPad, fmt.Errorf("cannot pad %d steps to %d: %w", p.Len(), n, ErrInvalidPath))
	}

	return p.grow(n), nil
}

// grow returns a fresh copy of p padded to n ≥ Len() steps.
func (p Path) grow(n int) Path {
	last := p.Len() - 1
	out := Path{positions: make([]matrix.Vec3, n), orientations: make([]frame.Rotation, n)}
	for i := 0; i < n; i++ {
		j := min(i, last)
		out.positions[i] = p.Position(j)
		out.orientations[i] = p.Orientation(j)
	}

	return out
}

// resolveStart turns a start argument into an index in [0, Len()] for an
// operand sequence of length count.
func (p Path) resolveStart(tag string, start, count int) (int, error) {
	n := p.Len()
	switch {
	case start == Auto && count == 1:
		return 0, nil
	case start == Auto:
		return n, nil
	case start < 0:
		start += n
	}
	if start < 0 || start > n {
		return 0, sourceErrorf(tag, fmt.Errorf("start %d outside path of length %d: %w", start, n, ErrInvalidPath))
	}

	return start, nil
}

// apply pads p so that count operands fit from start and calls op for
// every step from start on, passing the operand index (the last operand
// is reused for trailing steps).
func (p Path) apply(tag string, start, count int, op func(out *Path, step, k int)) (Path, error) {
	if count == 0 {
		return Path{}, sourceErrorf(tag, fmt.Errorf("empty operand: %w", ErrInvalidPath))
	}
	s, err := p.resolveStart(tag, start, count)
	if err != nil {
		return Path{}, err
	}
	out := p.grow(max(p.Len(), s+count))
	for i := s; i < out.Len(); i++ {
		op(&out, i, min(i-s, count-1))
	}

	return out, nil
}

// Move adds displacements to the positions from start on. A sequence of
// displacements extends the path where needed; steps after the last
// displacement receive the last one.
func (p Path) Move(displacements []matrix.Vec3, start int) (Path, error) {
	for i, d := range displacements {
		if !d.IsFinite() {
			return Path{}, sourceErrorf(opMove, fmt.Errorf("displacement %d is not finite: %w", i, ErrInvalidPath))
		}
	}

	return p.apply(opMove, start, len(displacements), func(out *Path, step, k int) {
		out.positions[step] = out.positions[step].Add(displacements[k])
	})
}

// Rotate applies rotations from start on. Orientations are pre-multiplied
// (the new rotation acts after the existing one). With a non-nil anchor
// positions rotate about it as well; with a nil anchor they stay put.
func (p Path) Rotate(rotations []frame.Rotation, anchor *matrix.Vec3, start int) (Path, error) {
	return p.apply(opRotate, start, len(rotations), func(out *Path, step, k int) {
		r := rotations[k]
		out.orientations[step] = r.Mul(out.orientations[step])
		if anchor != nil {
			out.positions[step] = anchor.Add(r.Apply(out.positions[step].Sub(*anchor)))
		}
	})
}

// RotateFromAngAx rotates by each angle about axis (angles in degrees
// when degrees is set).
func (p Path) RotateFromAngAx(angles []float64, axis matrix.Vec3, anchor *matrix.Vec3, start int, degrees bool) (Path, error) {
	rots := make([]frame.Rotation, len(angles))
	for i, a := range angles {
		r, err := frame.FromAngleAxis(a, axis, degrees)
		if err != nil {
			return Path{}, sourceErrorf(opRotate, err)
		}
		rots[i] = r
	}

	return p.Rotate(rots, anchor, start)
}
