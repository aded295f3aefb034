// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Row-broadcast kernels used by the path/observer broadcaster:
//     RepeatRows (each row k times in place), TileRows (whole block k times),
//     PadRows (hold the last row until n rows).
//   - Accumulation (AddInto) and comparison (AllClose) over flat buffers.
//
// Determinism & Performance:
//   - Fixed loop orders over one flat row-major buffer.
//   - No hidden allocations beyond the output Dense; O(r*c) time and space.
//
// AI-Hints:
//   - RepeatRows(path, k) followed by TileRows(obs, m) yields an m·k outer
//     product aligned row-by-row, path-major.

package matrix

import "math"

const (
	opRepeat   = "RepeatRows"
	opTile     = "TileRows"
	opPad      = "PadRows"
	opAddInto  = "AddInto"
	opAllClose = "AllClose"
)

// RepeatRows returns a (r·times)×c matrix in which row i of m appears
// times consecutive times (rows i·times .. i·times+times-1).
func RepeatRows(m *Dense, times int) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opRepeat, err)
	}
	if times <= 0 {
		return nil, matrixErrorf(opRepeat, ErrInvalidDimensions)
	}
	out := &Dense{r: m.r * times, c: m.c, data: make([]float64, len(m.data)*times)}
	dst := 0
	for i := 0; i < m.r; i++ {
		row := m.data[i*m.c : (i+1)*m.c]
		for k := 0; k < times; k++ {
			copy(out.data[dst:dst+m.c], row)
			dst += m.c
		}
	}

	return out, nil
}

// TileRows returns a (r·times)×c matrix made of times stacked copies of m.
func TileRows(m *Dense, times int) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTile, err)
	}
	if times <= 0 {
		return nil, matrixErrorf(opTile, ErrInvalidDimensions)
	}
	out := &Dense{r: m.r * times, c: m.c, data: make([]float64, len(m.data)*times)}
	for k := 0; k < times; k++ {
		copy(out.data[k*len(m.data):], m.data)
	}

	return out, nil
}

// PadRows returns an n×c matrix holding m's rows followed by copies of
// m's last row. n must be >= m.Rows().
func PadRows(m *Dense, n int) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opPad, err)
	}
	if n < m.r {
		return nil, matrixErrorf(opPad, ErrDimensionMismatch)
	}
	out := &Dense{r: n, c: m.c, data: make([]float64, n*m.c)}
	copy(out.data, m.data)
	last := m.data[(m.r-1)*m.c:]
	for i := m.r; i < n; i++ {
		copy(out.data[i*m.c:(i+1)*m.c], last)
	}

	return out, nil
}

// AddInto accumulates src into dst element-wise (dst += src).
func AddInto(dst, src *Dense) error {
	if err := ValidateNotNil(dst); err != nil {
		return matrixErrorf(opAddInto, err)
	}
	if err := ValidateNotNil(src); err != nil {
		return matrixErrorf(opAddInto, err)
	}
	if err := ValidateSameShape(dst, src); err != nil {
		return matrixErrorf(opAddInto, err)
	}
	for i, v := range src.data {
		dst.data[i] += v
	}

	return nil
}

// AllClose reports whether |a-b| ≤ atol + rtol·|b| holds element-wise
// (numpy semantics, asymmetric in b).
// Errors: ErrBadTolerance, ErrNilMatrix, ErrDimensionMismatch.
func AllClose(a, b Matrix, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) || rtol < 0 || atol < 0 {
		return false, matrixErrorf(opAllClose, ErrBadTolerance)
	}
	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	da, err := asDense(a)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	db, err := asDense(b)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	for i := range da.data {
		if math.Abs(da.data[i]-db.data[i]) > atol+rtol*math.Abs(db.data[i]) {
			return false, nil
		}
	}

	return true, nil
}
