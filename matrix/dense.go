// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Serve as the batch container of the field engine: an n×3 Dense holds n
//     observer points or n field vectors, one per row.
//
// AI-Hints:
//   - Prefer Vec/SetVec in kernels: they read a whole row without bounds wrapping.
//   - Use NewBatch/NewBatchFromVecs for n×3 data; NewDense for anything else.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Vec/SetVec: O(1); Clone: O(r*c).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt  = "At"  // method tag used in error wrappers
	ctxSet = "Set" // method tag used in error wrappers
)

// ---------- Formatting literals ----------

const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// BatchCols is the column count of a vector batch.
const BatchCols = 3

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense struct {
	r, c int       // row and column counts (>0)
	data []float64 // contiguous row-major storage (len == r*c)
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate a zero-filled buffer.
//
// Complexity: Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewBatch creates an n×3 zero batch.
func NewBatch(n int) (*Dense, error) {
	return NewDense(n, BatchCols)
}

// NewBatchFromVecs copies vs into a fresh len(vs)×3 batch.
// Returns ErrInvalidDimensions for an empty slice.
func NewBatchFromVecs(vs []Vec3) (*Dense, error) {
	b, err := NewBatch(len(vs))
	if err != nil {
		return nil, err
	}
	for i, v := range vs {
		copy(b.data[i*BatchCols:], v[:])
	}

	return b, nil
}

// NewDenseFromRows copies a rectangular [][]float64 into a Dense.
// Returns ErrInvalidDimensions for empty input and ErrDimensionMismatch for ragged rows.
func NewDenseFromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	m, err := NewDense(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != m.c {
			return nil, fmt.Errorf("NewDenseFromRows: row %d has %d cols, want %d: %w", i, len(row), m.c, ErrDimensionMismatch)
		}
		copy(m.data[i*m.c:], row)
	}

	return m, nil
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

// Shape returns (rows, cols).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf converts (row, col) into a flat offset, or returns ErrOutOfRange.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	return row*m.c + col, nil
}

// At returns the element at (row, col).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[idx], nil
}

// Set assigns v at (row, col). NaN and ±Inf are rejected with ErrNaNInf.
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[idx] = v

	return nil
}

// Vec returns row i of an n×3 batch as a Vec3.
// Unchecked hot-path accessor: panics like a slice index when i is out of range.
func (m *Dense) Vec(i int) Vec3 {
	base := i * m.c

	return Vec3{m.data[base], m.data[base+1], m.data[base+2]}
}

// SetVec stores v into row i of an n×3 batch. Unchecked, see Vec.
func (m *Dense) SetVec(i int, v Vec3) {
	copy(m.data[i*m.c:i*m.c+BatchCols], v[:])
}

// Vecs copies an n×3 batch into a fresh []Vec3.
func (m *Dense) Vecs() []Vec3 {
	out := make([]Vec3, m.r)
	for i := range out {
		out[i] = m.Vec(i)
	}

	return out
}

// RawData exposes the row-major buffer. Mutations are visible in m.
func (m *Dense) RawData() []float64 { return m.data }

// Clone returns a deep copy as Matrix.
func (m *Dense) Clone() Matrix { return m.CloneDense() }

// CloneDense returns a deep copy with the concrete type.
func (m *Dense) CloneDense() *Dense {
	buf := make([]float64, len(m.data))
	copy(buf, m.data)

	return &Dense{r: m.r, c: m.c, data: buf}
}

// String renders the matrix one bracketed row per line.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteString(_fmtRowOpen)
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(_fmtSep)
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
		}
		sb.WriteString(_fmtRowClose)
	}

	return sb.String()
}
