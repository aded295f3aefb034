// SPDX-License-Identifier: MIT

package field

import (
	"context"
	"errors"

	"github.com/katalvlaran/magfield/broadcast"
	"github.com/katalvlaran/magfield/kernel"
	"github.com/katalvlaran/magfield/matrix"
	"github.com/katalvlaran/magfield/source"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ComputeB returns the superposed B field (mT) of sources at obs.
//
// The unsqueezed result has shape (L, k, 3) with L the longest path (of any
// source or of moving observers) and k the observers per step. With Ragged
// observers the per-source results are concatenated instead of summed:
// (Σ n_i, 1, 3) co-indexed, where each source keeps its own path, or
// (L, Σ k_i, 3) outer. Squeeze is on by default.
func ComputeB(sources []source.Source, obs Observers, opts ...Option) (*Tensor, error) {
	return compute(context.Background(), kernel.B, sources, obs, opts...)
}

// ComputeH returns the superposed H field (kA/m); see ComputeB.
func ComputeH(sources []source.Source, obs Observers, opts ...Option) (*Tensor, error) {
	return compute(context.Background(), kernel.H, sources, obs, opts...)
}

// ComputeBContext is ComputeB that stops scheduling sources once ctx is done.
func ComputeBContext(ctx context.Context, sources []source.Source, obs Observers, opts ...Option) (*Tensor, error) {
	return compute(ctx, kernel.B, sources, obs, opts...)
}

// ComputeHContext is ComputeH that stops scheduling sources once ctx is done.
func ComputeHContext(ctx context.Context, sources []source.Source, obs Observers, opts ...Option) (*Tensor, error) {
	return compute(ctx, kernel.H, sources, obs, opts...)
}

// Compute dispatches on q.
func Compute(ctx context.Context, q kernel.Quantity, sources []source.Source, obs Observers, opts ...Option) (*Tensor, error) {
	return compute(ctx, q, sources, obs, opts...)
}

// partial is the global-frame field of one source laid out as plan.Rows ×
// plan.Cols vectors.
type partial struct {
	plan  broadcast.Plan
	field *matrix.Dense
}

// compute evaluates and reduces.
//
// Implementation:
//   - Stage 1: validate sources and resolve the common path length L;
//     shorter paths are padded or rejected per PathPolicy. Ragged
//     co-indexed sources are concatenated, not aligned, so their paths
//     are left as they are.
//   - Stage 2: per source, plan → expand → kernel → back to global.
//     Sources run sequentially or on an errgroup; results land in slots.
//   - Stage 3: reduce in source order (sum for shared observers, concatenate
//     for ragged ones), rotate into the sensor frame for sensors, then
//     squeeze.
//
// Complexity: O(Σ n_i) kernel instances, memory O(max n_i · workers).
func compute(ctx context.Context, q kernel.Quantity, sources []source.Source, obs Observers, opts ...Option) (*Tensor, error) {
	o := gatherOptions(opts...)
	if len(sources) == 0 {
		return nil, configErrorf(opCompute, "no sources")
	}
	switch {
	case obs.kind == kindNone:
		return nil, configErrorf(opCompute, "no observers")
	case obs.IsRagged() && len(obs.ragged) != len(sources):
		return nil, configErrorf(opCompute, "%d observer lists for %d sources", len(obs.ragged), len(sources))
	}
	mode := broadcast.InferMode(obs.IsRagged())
	if o.modeSet {
		mode = o.mode
	}
	if obs.IsSensor() && mode == broadcast.CoIndexed && obs.count > 1 {
		return nil, configErrorf(opCompute, "co-indexed pairing needs a single-pixel sensor, got %d pixels", obs.count)
	}

	align := !(obs.IsRagged() && mode == broadcast.CoIndexed)
	paths, steps, err := alignPaths(sources, obs, o.pathPolicy, align)
	if err != nil {
		return nil, err
	}
	var shared broadcast.Grid
	if !obs.IsRagged() {
		if shared, err = obs.grid(steps); err != nil {
			return nil, err
		}
	}

	parts := make([]partial, len(sources))
	eval := func(i int) error {
		g := shared
		if obs.IsRagged() {
			var err error
			if g, err = obs.raggedGrid(i); err != nil {
				return evalErrorf(i, sources[i], err)
			}
		}
		p, err := evalSource(q, mode, sources[i].Geometry, paths[i], g)
		if err != nil {
			return evalErrorf(i, sources[i], err)
		}
		o.logger.Debug("source evaluated",
			zap.Int("source", i),
			zap.Stringer("shape", sources[i].Shape()),
			zap.Stringer("mode", p.plan.Mode),
			zap.Ints("plan", []int{p.plan.Rows, p.plan.Cols}),
			zap.Int("instances", p.plan.N()))
		parts[i] = p

		return nil
	}
	if err := run(ctx, o.workers, len(sources), eval); err != nil {
		return nil, err
	}

	var t *Tensor
	if obs.IsRagged() {
		t, err = concat(parts, mode)
	} else {
		t, err = sum(parts)
	}
	if err != nil {
		return nil, err
	}
	if obs.IsSensor() {
		obs.toSensorFrame(t)
	}
	o.logger.Debug("field reduced",
		zap.Stringer("quantity", q),
		zap.Int("sources", len(sources)),
		zap.Ints("shape", t.shape))
	if o.squeeze {
		t = t.Squeeze()
	}

	return t, nil
}

// alignPaths validates every source and returns the paths to evaluate plus
// the common path length L. Without align every source keeps its path.
func alignPaths(sources []source.Source, obs Observers, policy PathPolicy, align bool) ([]source.Path, int, error) {
	if !align {
		paths := make([]source.Path, len(sources))
		for i, s := range sources {
			if err := s.Validate(); err != nil {
				return nil, 0, evalErrorf(i, s, err)
			}
			paths[i] = s.Path
		}

		return paths, obs.Steps(), nil
	}
	l := obs.Steps()
	for _, s := range sources {
		l = max(l, s.Path.Len())
	}
	if policy == StrictPaths && obs.Steps() != 1 && obs.Steps() != l {
		return nil, 0, configErrorf(opCompute, "observer path length %d vs %d", obs.Steps(), l)
	}
	paths := make([]source.Path, len(sources))
	for i, s := range sources {
		if err := s.Validate(); err != nil {
			return nil, 0, evalErrorf(i, s, err)
		}
		m := s.Path.Len()
		switch {
		case m == 1 || m == l:
			paths[i] = s.Path
		case policy == StrictPaths:
			return nil, 0, evalErrorf(i, s, configErrorf(opCompute, "path length %d vs %d", m, l))
		default:
			p, err := s.Path.Pad(l)
			if err != nil {
				return nil, 0, evalErrorf(i, s, err)
			}
			paths[i] = p
		}
	}

	return paths, l, nil
}

func evalSource(q kernel.Quantity, mode broadcast.Mode, g source.Geometry, path source.Path, grid broadcast.Grid) (partial, error) {
	plan, err := broadcast.NewPlan(mode, path.Len(), grid.Steps, grid.Count)
	if err != nil {
		return partial{}, err
	}
	batch, err := broadcast.Expand(plan, path.Positions(), path.Orientations(), grid)
	if err != nil {
		return partial{}, err
	}
	local, err := evalKernel(q, g, batch.Local)
	if err != nil {
		return partial{}, err
	}
	global, err := batch.Global(local)
	if err != nil {
		return partial{}, err
	}

	return partial{plan: plan, field: global}, nil
}

// run calls eval for 0..n-1, sequentially or on up to workers goroutines.
// The error of the lowest failing source wins so that failures are
// reported deterministically.
func run(ctx context.Context, workers, n int, eval func(int) error) error {
	if workers <= 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := eval(i); err != nil {
				return err
			}
		}

		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	errs := make([]error, n)
	for i := 0; i < n && gctx.Err() == nil; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs[i] = eval(i)

			return errs[i]
		})
	}
	werr := g.Wait()
	for _, err := range errs {
		var ee *EvalError
		if errors.As(err, &ee) {
			return err
		}
	}
	if werr != nil {
		return werr
	}

	return ctx.Err()
}

// sum superposes partials sharing one observer grid. A partial with a
// single row broadcasts across the path axis.
func sum(parts []partial) (*Tensor, error) {
	rows, cols := 1, parts[0].plan.Cols
	for _, p := range parts {
		rows = max(rows, p.plan.Rows)
	}
	for i, p := range parts {
		if (p.plan.Rows != 1 && p.plan.Rows != rows) || p.plan.Cols != cols {
			return nil, configErrorf(opCompute, "source %d yields %d×%d, reduction is %d×%d", i, p.plan.Rows, p.plan.Cols, rows, cols)
		}
	}
	acc, err := matrix.NewBatch(rows * cols)
	if err != nil {
		return nil, fieldErrorf(opCompute, err)
	}
	for _, p := range parts {
		f := p.field
		if p.plan.Rows != rows {
			// a static source holds its single step across the path axis
			if f, err = matrix.TileRows(f, rows); err != nil {
				return nil, fieldErrorf(opCompute, err)
			}
		}
		if err := matrix.AddInto(acc, f); err != nil {
			return nil, fieldErrorf(opCompute, err)
		}
	}

	return &Tensor{shape: []int{rows, cols, 3}, data: acc.RawData()}, nil
}

// concat joins per-source partials of ragged observers: along the leading
// axis for CoIndexed pairing, along the observer axis for Outer.
func concat(parts []partial, mode broadcast.Mode) (*Tensor, error) {
	if mode == broadcast.CoIndexed {
		rows := 0
		for _, p := range parts {
			rows += p.plan.Rows
		}
		t := newTensor(rows, 1, 3)
		off := 0
		for _, p := range parts {
			off += copy(t.data[off:], p.field.RawData())
		}

		return t, nil
	}

	rows, cols := 1, 0
	for _, p := range parts {
		rows = max(rows, p.plan.Rows)
		cols += p.plan.Cols
	}
	t := newTensor(rows, cols, 3)
	colOff := 0
	for i, p := range parts {
		if p.plan.Rows != 1 && p.plan.Rows != rows {
			return nil, configErrorf(opCompute, "source %d yields %d rows, reduction has %d", i, p.plan.Rows, rows)
		}
		src := p.field.RawData()
		w := p.plan.Cols * 3
		for r := 0; r < rows; r++ {
			sr := r
			if p.plan.Rows == 1 {
				sr = 0
			}
			copy(t.data[(r*cols+colOff)*3:], src[sr*w:(sr+1)*w])
		}
		colOff += p.plan.Cols
	}

	return t, nil
}
