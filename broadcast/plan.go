// SPDX-License-Identifier: MIT
// Package: magfield/broadcast
//
// plan.go: shape algebra for one source against one observer grid.
//
// Rules (m = path length, k = observers per step, s = observer steps):
//   • Outer: every path step meets every observer. m and s are each 1 or
//     equal to L = max(m, s); n = L·k; output (L, k, 3).
//   • CoIndexed: path step i meets observer i. Requires s = 1 and m = k or
//     one of them 1; n = max(m, k); output (n, 1, 3).
//   • Anything else is ErrConfiguration.
//
// Complexity: O(1).

package broadcast

// Mode selects how path steps pair with observers.
type Mode int

const (
	// Outer evaluates every path step against every observer.
	Outer Mode = iota
	// CoIndexed pairs path step i with observer i.
	CoIndexed
)

// String returns "outer" or "coindexed".
func (m Mode) String() string {
	switch m {
	case Outer:
		return "outer"
	case CoIndexed:
		return "coindexed"
	default:
		return "unknown"
	}
}

// InferMode is the shape-inferring convenience: observer lists supplied one
// per source pair co-indexed, a shared observer set pairs as an outer product.
func InferMode(perSource bool) Mode {
	if perSource {
		return CoIndexed
	}

	return Outer
}

// Plan is the resolved alignment of one source path with one observer grid.
type Plan struct {
	Mode    Mode
	PathLen int // m
	Steps   int // s, observer path steps
	Count   int // k, observers per step
	Rows    int // leading output axis
	Cols    int // middle output axis
}

// N returns the number of kernel instances.
func (p Plan) N() int { return p.Rows * p.Cols }

// Shape returns the unsqueezed output shape (Rows, Cols, 3).
func (p Plan) Shape() [3]int { return [3]int{p.Rows, p.Cols, 3} }

// NewPlan resolves a path of length m against a grid of steps × count
// observers under mode.
func NewPlan(mode Mode, m, steps, count int) (Plan, error) {
	if m < 1 || steps < 1 || count < 1 {
		return Plan{}, configErrorf(opPlan, "empty input (path %d, steps %d, observers %d)", m, steps, count)
	}
	p := Plan{Mode: mode, PathLen: m, Steps: steps, Count: count}
	switch mode {
	case Outer:
		l := max(m, steps)
		if (m != 1 && m != l) || (steps != 1 && steps != l) {
			return Plan{}, configErrorf(opPlan, "path length %d vs observer path length %d", m, steps)
		}
		p.Rows, p.Cols = l, count
	case CoIndexed:
		if steps != 1 {
			return Plan{}, configErrorf(opPlan, "moving observers cannot pair co-indexed")
		}
		if m != count && m != 1 && count != 1 {
			return Plan{}, configErrorf(opPlan, "path length %d vs %d co-indexed observers", m, count)
		}
		p.Rows, p.Cols = max(m, count), 1
	default:
		return Plan{}, configErrorf(opPlan, "unknown mode %d", int(mode))
	}

	return p, nil
}
