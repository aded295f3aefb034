package broadcast_test

import (
	"testing"

	"github.com/katalvlaran/magfield/broadcast"
	"github.com/katalvlaran/magfield/frame"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/stretchr/testify/require"
)

func TestNewPlan(t *testing.T) {
	cases := []struct {
		name           string
		mode           broadcast.Mode
		m, steps, k    int
		wantRows, cols int
		wantErr        bool
	}{
		{"static source many observers", broadcast.Outer, 1, 1, 5, 1, 5, false},
		{"moving source one observer", broadcast.Outer, 4, 1, 1, 4, 1, false},
		{"outer product", broadcast.Outer, 4, 1, 5, 4, 5, false},
		{"moving observers", broadcast.Outer, 1, 3, 2, 3, 2, false},
		{"both moving", broadcast.Outer, 3, 3, 2, 3, 2, false},
		{"moving lengths clash", broadcast.Outer, 2, 3, 2, 0, 0, true},
		{"coindexed equal", broadcast.CoIndexed, 4, 1, 4, 4, 1, false},
		{"coindexed tile path", broadcast.CoIndexed, 1, 1, 6, 6, 1, false},
		{"coindexed tile observer", broadcast.CoIndexed, 6, 1, 1, 6, 1, false},
		{"coindexed mismatch", broadcast.CoIndexed, 4, 1, 5, 0, 0, true},
		{"coindexed moving observers", broadcast.CoIndexed, 2, 2, 1, 0, 0, true},
		{"empty", broadcast.Outer, 0, 1, 1, 0, 0, true},
		{"bad mode", broadcast.Mode(9), 1, 1, 1, 0, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := broadcast.NewPlan(tc.mode, tc.m, tc.steps, tc.k)
			if tc.wantErr {
				require.ErrorIs(t, err, broadcast.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			require.Equal(t, [3]int{tc.wantRows, tc.cols, 3}, p.Shape())
			require.Equal(t, tc.wantRows*tc.cols, p.N())
		})
	}
}

func TestInferMode(t *testing.T) {
	require.Equal(t, broadcast.CoIndexed, broadcast.InferMode(true))
	require.Equal(t, broadcast.Outer, broadcast.InferMode(false))
	require.Equal(t, "coindexed", broadcast.CoIndexed.String())
}

func grid(t *testing.T, steps, count int, pts ...matrix.Vec3) broadcast.Grid {
	t.Helper()
	b, err := matrix.NewBatchFromVecs(pts)
	require.NoError(t, err)
	g, err := broadcast.NewGrid(steps, count, b)
	require.NoError(t, err)

	return g
}

func TestExpandOuter(t *testing.T) {
	g := grid(t, 1, 2, matrix.Vec3{1, 0, 0}, matrix.Vec3{0, 1, 0})
	positions := []matrix.Vec3{{0, 0, 0}, {0, 0, 1}, {0, 0, 2}}
	rotations := []frame.Rotation{frame.Identity(), frame.Identity(), frame.Identity()}

	plan, err := broadcast.NewPlan(broadcast.Outer, 3, g.Steps, g.Count)
	require.NoError(t, err)
	b, err := broadcast.Expand(plan, positions, rotations, g)
	require.NoError(t, err)
	require.Equal(t, 6, b.Local.Rows())
	// row i·k + j is observer j seen from path step i
	require.Equal(t, matrix.Vec3{1, 0, -2}, b.Local.Vec(4))
	require.Equal(t, matrix.Vec3{0, 1, -1}, b.Local.Vec(3))
	require.Len(t, b.Rotations, 6)
}

func TestExpandRotated(t *testing.T) {
	rot, err := frame.FromAngleAxis(90, matrix.Vec3{0, 0, 1}, true)
	require.NoError(t, err)
	g := grid(t, 1, 1, matrix.Vec3{0, 1, 0})
	plan, err := broadcast.NewPlan(broadcast.Outer, 1, 1, 1)
	require.NoError(t, err)
	b, err := broadcast.Expand(plan, []matrix.Vec3{{0, 0, 0}}, []frame.Rotation{rot}, g)
	require.NoError(t, err)
	local := b.Local.Vec(0)
	require.InDeltaSlice(t, []float64{1, 0, 0}, local[:], 1e-15) // R⁻¹ applied

	field, err := matrix.NewBatchFromVecs([]matrix.Vec3{{1, 0, 0}})
	require.NoError(t, err)
	out, err := b.Global(field)
	require.NoError(t, err)
	global := out.Vec(0)
	require.InDeltaSlice(t, []float64{0, 1, 0}, global[:], 1e-15) // R applied
}

func TestExpandCoIndexed(t *testing.T) {
	g := grid(t, 1, 1, matrix.Vec3{5, 0, 0})
	positions := []matrix.Vec3{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	rotations := make([]frame.Rotation, 3)
	plan, err := broadcast.NewPlan(broadcast.CoIndexed, 3, 1, 1)
	require.NoError(t, err)
	b, err := broadcast.Expand(plan, positions, rotations, g)
	require.NoError(t, err)
	require.Equal(t, []matrix.Vec3{{4, 0, 0}, {3, 0, 0}, {2, 0, 0}}, b.Local.Vecs())
}

func TestExpandMovingObservers(t *testing.T) {
	g := grid(t, 2, 2,
		matrix.Vec3{1, 0, 0}, matrix.Vec3{2, 0, 0}, // step 0
		matrix.Vec3{3, 0, 0}, matrix.Vec3{4, 0, 0}, // step 1
	)
	plan, err := broadcast.NewPlan(broadcast.Outer, 1, g.Steps, g.Count)
	require.NoError(t, err)
	b, err := broadcast.Expand(plan, []matrix.Vec3{{1, 0, 0}}, []frame.Rotation{{}}, g)
	require.NoError(t, err)
	require.Equal(t, []matrix.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}, b.Local.Vecs())
}

func TestExpandErrors(t *testing.T) {
	g := grid(t, 1, 2, matrix.Vec3{1, 0, 0}, matrix.Vec3{0, 1, 0})
	plan, err := broadcast.NewPlan(broadcast.Outer, 2, 1, 2)
	require.NoError(t, err)
	_, err = broadcast.Expand(plan, []matrix.Vec3{{0, 0, 0}}, []frame.Rotation{{}}, g)
	require.ErrorIs(t, err, broadcast.ErrConfiguration)

	b, err := matrix.NewBatch(3)
	require.NoError(t, err)
	_, err = broadcast.NewGrid(2, 2, b)
	require.ErrorIs(t, err, broadcast.ErrConfiguration)
}
