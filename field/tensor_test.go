package field_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/katalvlaran/magfield/field"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/katalvlaran/magfield/source"
	"github.com/stretchr/testify/require"
)

func pathTensor(t *testing.T, squeeze bool) *field.Tensor {
	t.Helper()
	s := source.Source{Geometry: source.Dipole{Moment: matrix.Vec3{0, 0, 1}}, Path: sweep(t, 2)}
	obs := field.Points(matrix.Vec3{0, 0, 5}, matrix.Vec3{0, 0, 6}, matrix.Vec3{0, 0, 7})

	return mustB(t, []source.Source{s}, obs, field.WithSqueeze(squeeze))
}

func TestTensorIndexing(t *testing.T) {
	tt := pathTensor(t, false)
	require.Equal(t, []int{2, 3, 3}, tt.Shape())
	require.Equal(t, 3, tt.Rank())
	require.Equal(t, 6, tt.Len())

	v, err := tt.Vec(0, 1)
	require.NoError(t, err)
	z, err := tt.At(0, 1, 2)
	require.NoError(t, err)
	require.Equal(t, v[2], z)
	// on-axis dipole field 2m/(4π r³) at r = 6
	require.InDelta(t, 2/(4*math.Pi*216), z, 1e-15)
	require.Equal(t, tt.Vecs()[1], v)

	_, err = tt.At(0, 3, 0)
	require.ErrorIs(t, err, field.ErrIndex)
	_, err = tt.At(0, 0)
	require.ErrorIs(t, err, field.ErrIndex)
	_, err = tt.Vec(-1, 0)
	require.ErrorIs(t, err, field.ErrIndex)
}

func TestTensorSqueeze(t *testing.T) {
	tt := pathTensor(t, false)
	sq := tt.Squeeze()
	require.Equal(t, []int{2, 3, 3}, sq.Shape()) // nothing to drop

	s := source.Source{Geometry: source.Dipole{Moment: matrix.Vec3{0, 0, 1}}}
	one := mustB(t, []source.Source{s}, field.Point(matrix.Vec3{0, 0, 5}), field.WithSqueeze(false))
	require.Equal(t, []int{1, 1, 3}, one.Shape())
	require.Equal(t, []int{3}, one.Squeeze().Shape())
	require.Equal(t, one.Data(), one.Squeeze().Data())

	// Data returns a copy
	d := one.Data()
	d[0] = 42
	require.NotEqual(t, 42.0, one.Data()[0])
}

func TestTensorNested(t *testing.T) {
	tt := pathTensor(t, true)
	raw, err := json.Marshal(tt.Nested())
	require.NoError(t, err)

	var back [][][]float64
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, 2)
	require.Len(t, back[0], 3)
	v, err := tt.Vec(1, 2)
	require.NoError(t, err)
	require.Equal(t, v[:], back[1][2])

	require.Contains(t, tt.String(), "Tensor[2 3 3]")
}
