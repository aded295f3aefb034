// SPDX-License-Identifier: MIT

package kernel

import (
	"math"

	"github.com/katalvlaran/magfield/matrix"
)

// lineTol is the distance to the segment's line, relative to its length,
// below which the observer counts as on the line.
const lineTol = 1e-12

// segmentB returns B of a straight segment start→end carrying current i
// (Biot–Savart, finite segment).
//
//	B = μ0·I/(4π·d) · ((p−a)·û/|p−a| − (p−b)·û/|p−b|) · unit(û × (p−a))
func segmentB(p matrix.Vec3, i float64, start, end matrix.Vec3) matrix.Vec3 {
	u := end.Sub(start)
	length := u.Norm()
	if length == 0 || i == 0 {
		return matrix.Zero3
	}
	u = u.Scale(1 / length)
	pa, pb := p.Sub(start), p.Sub(end)
	perp := u.Cross(pa)
	d := perp.Norm()
	if d <= lineTol*length {
		return matrix.Zero3
	}
	ca := pa.Dot(u) / pa.Norm()
	cb := pb.Dot(u) / pb.Norm()

	return perp.Scale(Mu0 * i / (4 * math.Pi) * (ca - cb) / (d * d))
}

// Line evaluates n straight current segments. current, start and end have
// length 1 or n. Zero-length segments and observers on the segment's line
// yield zero.
func Line(q Quantity, obs *matrix.Dense, current []float64, start, end []matrix.Vec3) (*matrix.Dense, error) {
	n, err := batchLen(opLine, q, obs, len(current), len(start), len(end))
	if err != nil {
		return nil, err
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		b := segmentB(obs.Vec(i), at(current, i), at(start, i), at(end, i))
		out.SetVec(i, convert(q, b))
	}

	return out, nil
}

// Polyline evaluates n polylines, summing the field of consecutive vertex
// pairs. vertices has length 1 or n; a polyline with fewer than two
// vertices yields zero.
func Polyline(q Quantity, obs *matrix.Dense, current []float64, vertices [][]matrix.Vec3) (*matrix.Dense, error) {
	n, err := batchLen(opPolyline, q, obs, len(current), len(vertices))
	if err != nil {
		return nil, err
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		p, cur, vs := obs.Vec(i), at(current, i), at(vertices, i)
		var b matrix.Vec3
		for j := 1; j < len(vs); j++ {
			b = b.Add(segmentB(p, cur, vs[j-1], vs[j]))
		}
		out.SetVec(i, convert(q, b))
	}

	return out, nil
}
