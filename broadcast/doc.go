// Package broadcast aligns one source path with one observer grid into a
// single kernel batch and maps the kernel output back.
//
// Two pairing modes are explicit: Outer (every path step against every
// observer, output (m, k, 3)) and CoIndexed (path step i against observer i,
// output (n, 1, 3)). InferMode picks the conventional mode from how the
// observers were supplied, but the core always receives a Mode.
//
//	plan, _ := broadcast.NewPlan(broadcast.Outer, path.Len(), grid.Steps, grid.Count)
//	batch, _ := broadcast.Expand(plan, positions, rotations, grid)
//	// evaluate a kernel on batch.Local, then
//	global, _ := batch.Global(localField)
//
// Unalignable inputs fail with ErrConfiguration.
package broadcast
