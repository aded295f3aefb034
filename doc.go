// Package magfield computes static magnetic fields of permanent magnets,
// current loops, line currents and dipoles, evaluated at arbitrary observer
// points in closed form.
//
// What is magfield?
//
//	A concurrent, deterministic field engine that brings together:
//		• Kernels: cuboid, cylinder, cylinder segment, sphere, dipole, loop, line
//		• Frames: quaternion rotations and global ↔ local transforms
//		• Paths: per-source position/orientation sequences with move & rotate
//		• Broadcasting: path × observer grids, outer or co-indexed
//		• Reduction: superposition over sources and collections, B or H
//		• Scenes: YAML documents evaluated from the magfield CLI
//
// Units:
//
//	lengths in mm, magnetization as μ0·M in mT, currents in A,
//	B in mT and H in kA/m.
//
// Layout:
//
//	matrix/    Vec3 and n×3 Dense batches, row-broadcast kernels
//	frame/     Rotation, ToLocal/ToGlobal
//	kernel/    per-shape closed-form fields in the local frame
//	source/    typed geometries, paths, collections
//	broadcast/ path/observer grid plans
//	field/     ComputeB, ComputeH, Direct; the Tensor result
//	scene/     YAML scene loading and evaluation
//	cmd/       the magfield command
//
// Quick example:
//
//	loop := source.Source{Geometry: source.Loop{Current: 1, Diameter: 2}}
//	b, _ := field.ComputeB([]source.Source{loop}, field.Point(matrix.Vec3{}))
//	fmt.Println(b.Data()) // [0 0 0.6283185307179586]
//
//	go install github.com/katalvlaran/magfield/cmd/magfield@latest
package magfield
