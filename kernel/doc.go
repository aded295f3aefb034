// Package kernel holds the closed-form field kernels.
//
// Every kernel evaluates a batch of n instances in the source-local frame:
// observers are an n×3 batch, each shape parameter is a slice of length 1
// (shared by all rows) or n (one per row), and the result is an n×3 batch of
// B (mT) or H (kA/m) as selected by Quantity.
//
//	Cuboid           side lengths (a, b, c), centred, faces normal to the axes
//	Cylinder         (diameter, height), axis z
//	CylinderSegment  (r1, r2, h, φ1, φ2) ring sector, angles in degrees
//	Sphere           diameter
//	Dipole           moment (mT·mm³)
//	Loop             current (A) and diameter, in the xy plane
//	Line, Polyline   current and segment end points or a vertex chain
//	Triangle         charged sheet over three vertices, σ = M·n
//	TriangularMesh   closed triangular surface (Mesh) with uniform M
//
// Boundaries: observers on a magnet surface always produce a finite field.
// Faces of a cuboid take the limit from inside the body; faces of cylinders,
// ring sectors, triangles and meshes take the mean of both one-sided
// limits. Edges and corners of magnets and triangles, points on a current
// wire and points on a line segment's carrier line yield zero. Only a dipole evaluated at its own location
// fails, with ErrDomainSingularity.
//
// Magnet kernels convert B to H by removing the polarization inside the body
// (weighted 1/2 on a surface where the mean is taken) and scaling by 10/(4π).
// Current kernels have no body term.
//
// Complexity: O(n) per call, O(n·F) for a mesh of F faces. CylinderSegment
// evaluates a few dozen Carlson integrals per row.
package kernel
