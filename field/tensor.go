// SPDX-License-Identifier: MIT

package field

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/magfield/matrix"
)

// Tensor is a dense row-major float64 array whose last axis is the field
// component (size 3). Unsqueezed results have shape (path, observer, 3).
type Tensor struct {
	shape []int
	data  []float64
}

func newTensor(shape ...int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}

	return &Tensor{shape: append([]int(nil), shape...), data: make([]float64, n)}
}

// Shape returns a copy of the tensor shape.
func (t *Tensor) Shape() []int { return append([]int(nil), t.shape...) }

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.shape) }

// Data returns a copy of the flat row-major values.
func (t *Tensor) Data() []float64 { return append([]float64(nil), t.data...) }

// Len returns the number of field vectors.
func (t *Tensor) Len() int { return len(t.data) / 3 }

// Vecs returns every field vector in row-major order.
func (t *Tensor) Vecs() []matrix.Vec3 {
	out := make([]matrix.Vec3, t.Len())
	for i := range out {
		copy(out[i][:], t.data[3*i:3*i+3])
	}

	return out
}

func (t *Tensor) offset(idx []int) (int, error) {
	if len(idx) != len(t.shape) {
		return 0, fieldErrorf(opTensor, fmt.Errorf("%d indices for rank %d: %w", len(idx), len(t.shape), ErrIndex))
	}
	off := 0
	for a, i := range idx {
		if i < 0 || i >= t.shape[a] {
			return 0, fieldErrorf(opTensor, fmt.Errorf("index %d on axis %d of size %d: %w", i, a, t.shape[a], ErrIndex))
		}
		off = off*t.shape[a] + i
	}

	return off, nil
}

// At returns the element at the full index idx (one index per axis).
func (t *Tensor) At(idx ...int) (float64, error) {
	off, err := t.offset(idx)
	if err != nil {
		return 0, err
	}

	return t.data[off], nil
}

// Vec returns the field vector at the leading index idx (one index per
// axis except the last).
func (t *Tensor) Vec(idx ...int) (matrix.Vec3, error) {
	off, err := t.offset(append(append([]int(nil), idx...), 0))
	if err != nil {
		return matrix.Vec3{}, err
	}

	return matrix.Vec3{t.data[off], t.data[off+1], t.data[off+2]}, nil
}

// Squeeze returns a tensor without size-1 axes. The field axis is kept, so
// the minimum rank is 1. Data is shared with t.
func (t *Tensor) Squeeze() *Tensor {
	shape := make([]int, 0, len(t.shape))
	for _, d := range t.shape[:len(t.shape)-1] {
		if d != 1 {
			shape = append(shape, d)
		}
	}
	shape = append(shape, t.shape[len(t.shape)-1])

	return &Tensor{shape: shape, data: t.data}
}

// Nested returns the tensor as nested slices ([]any down to float64),
// suitable for JSON encoding.
func (t *Tensor) Nested() any {
	var build func(axis, off int) (any, int)
	build = func(axis, off int) (any, int) {
		if axis == len(t.shape)-1 {
			row := append([]float64(nil), t.data[off:off+t.shape[axis]]...)
			return row, off + t.shape[axis]
		}
		out := make([]any, t.shape[axis])
		for i := range out {
			out[i], off = build(axis+1, off)
		}

		return out, off
	}
	v, _ := build(0, 0)

	return v
}

// String renders the shape and values, one field vector per line.
func (t *Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor%v\n", t.shape)
	for _, v := range t.Vecs() {
		fmt.Fprintf(&sb, "[%g, %g, %g]\n", v[0], v[1], v[2])
	}

	return sb.String()
}
