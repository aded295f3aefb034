// Package field is the multi-source reducer of magfield: it evaluates a list
// of sources at a set of observers and returns B (mT) or H (kA/m).
//
// What:
//
//   - ComputeB / ComputeH superpose the fields of all sources at shared
//     observers. Per source the path is aligned with the observers
//     (package broadcast), observers are mapped to the source frame, the
//     closed-form kernel runs (package kernel) and the result is rotated
//     back to the global frame.
//   - Ragged observers pair each source with its own list; results are
//     concatenated, not summed.
//   - SensorPoints carries a pixel array along a path; results are rotated
//     into the sensor frame of each step.
//   - Direct evaluates many independent instances of one shape from flat
//     parameter slices.
//
// Result shape:
//
//	shared observers     (L, k, 3)   L = longest path, k = observers per step
//	sensor               (L, p, 3)   p = pixels
//	ragged, co-indexed   (Σ n_i, 1, 3)
//	ragged, outer        (L, Σ k_i, 3)
//	direct               (n, 3)
//
// Size-1 axes are squeezed by default (WithSqueeze(false) keeps rank 3).
//
// Errors:
//
//   - ErrConfiguration for unalignable inputs, wrapped with the op tag.
//   - *EvalError names the failing source and unwraps to the kernel or
//     source sentinel (kernel.ErrDomainSingularity, source.ErrInvalidParams).
//
// Concurrency: WithWorkers(n) evaluates up to n sources at once on an
// errgroup. Reduction always runs in source order, so results do not
// depend on n.
package field
