// Package source models the inputs of a field evaluation: a closed set of
// shapes, their parameters, and the immutable paths they move along.
//
// A Source pairs a Geometry (Cuboid, Cylinder, CylinderSegment, Sphere,
// Dipole, Loop or Line) with a Path of co-indexed positions and
// orientations. A length-1 path is static and broadcasts against longer
// paths of sibling sources.
//
// Paths are values. Move and Rotate follow the familiar start-index rules:
//
//	p, _ := source.Static(matrix.Vec3{-5, 0, 3}, frame.Identity()).
//		Move(matrix.Linspace(matrix.Zero3, matrix.Vec3{10, 0, 0}, 100), -1)
//
// replaces the single pose by a 100-step sweep, while a single displacement
// with start Auto shifts every existing step.
//
// Group arranges sources in a tree; Flatten produces the ordered source list
// the evaluator consumes.
package source
