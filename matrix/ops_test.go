package matrix_test

import (
	"testing"

	"github.com/katalvlaran/magfield/matrix"
	"github.com/stretchr/testify/require"
)

func mustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFromRows(rows)
	require.NoError(t, err)

	return m
}

// TestRepeatTileRows checks the two row-broadcast layouts.
func TestRepeatTileRows(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 1, 1}, {2, 2, 2}})

	rep, err := matrix.RepeatRows(m, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2}, rep.RawData())

	tile, err := matrix.TileRows(m, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 1, 1, 2, 2, 2, 1, 1, 1, 2, 2, 2}, tile.RawData())

	_, err = matrix.RepeatRows(m, 0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestPadRows holds the last row.
func TestPadRows(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 0, 0}, {2, 0, 0}})

	p, err := matrix.PadRows(m, 4)
	require.NoError(t, err)
	require.Equal(t, 4, p.Rows())
	require.Equal(t, matrix.Vec3{2, 0, 0}, p.Vec(3)) // padded with last row

	_, err = matrix.PadRows(m, 1)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch) // cannot shrink
}

// TestAddIntoAndAllClose covers accumulation and tolerance comparison.
func TestAddIntoAndAllClose(t *testing.T) {
	a := mustRows(t, [][]float64{{1, 2, 3}})
	b := mustRows(t, [][]float64{{0.5, 0.5, 0.5}})
	require.NoError(t, matrix.AddInto(a, b))
	require.Equal(t, []float64{1.5, 2.5, 3.5}, a.RawData())

	c := mustRows(t, [][]float64{{1.5, 2.5, 3.5 + 1e-10}})
	ok, err := matrix.AllClose(a, c, 1e-9, 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matrix.AllClose(a, c, 0, 1e-12)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = matrix.AllClose(a, c, -1, 0)
	require.ErrorIs(t, err, matrix.ErrBadTolerance)

	wide := mustRows(t, [][]float64{{1, 2}})
	require.ErrorIs(t, matrix.AddInto(a, wide), matrix.ErrDimensionMismatch)
}

// TestMulTranspose checks RᵀR = I on a rotation.
func TestMulTranspose(t *testing.T) {
	rz := mustRows(t, [][]float64{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}) // +90° about z

	rt, err := matrix.Transpose(rz)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 0, -1, 0, 0, 0, 0, 1}, rt.RawData())
	id, err := matrix.Mul(rz, rt)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, id.RawData())

	_, err = matrix.Mul(rz, mustRows(t, [][]float64{{1, 2}}))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	var nilDense *matrix.Dense
	_, err = matrix.Transpose(nilDense)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestValidateBatch covers batch shape checks.
func TestValidateBatch(t *testing.T) {
	b, err := matrix.NewBatch(4)
	require.NoError(t, err)
	require.NoError(t, matrix.ValidateBatch(b, 4))
	require.NoError(t, matrix.ValidateBatch(b, 0))
	require.ErrorIs(t, matrix.ValidateBatch(b, 3), matrix.ErrDimensionMismatch)
	require.ErrorIs(t, matrix.ValidateBatch(mustRows(t, [][]float64{{1, 2}}), 0), matrix.ErrNotBatch)
	require.ErrorIs(t, matrix.ValidateBatch(nil, 0), matrix.ErrNilMatrix)
}
