// Package frame converts between the global frame and a source's local frame.
//
// A source sits at a position with an orientation. Kernels evaluate fields in
// the source-local frame, so observers are mapped in with
//
//	local = R⁻¹(p − position)
//
// and the resulting field vectors are mapped back out with
//
//	global = R(v)
//
// Rotation is a unit-quaternion value type (zero value = identity) with
// constructors from quaternions, matrices, rotation vectors, angle/axis and
// Euler sequences. ToLocal and ToGlobal work on n×3 batches and broadcast
// length-1 position/rotation sequences against every row.
//
// Complexity: every operation is O(1) per vector; batches are O(n).
package frame
