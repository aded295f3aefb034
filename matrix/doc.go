// Package matrix offers the dense numeric containers used by the field engine.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with error-returning accessors.
//     An n×3 Dense ("batch") carries n observer points or n field vectors.
//   - Vec3, a value-type 3-vector with the usual algebra.
//   - Row-broadcast kernels (RepeatRows, TileRows, PadRows) that build
//     outer-product and padded batches for the broadcaster.
//   - AddInto for accumulating per-source batches, Mul and Transpose for
//     the rotation check in frame, AllClose for tolerance comparisons.
//
// All public functions return sentinel errors from errors.go, wrapped with
// an op tag; match them with errors.Is.
package matrix
