// SPDX-License-Identifier: MIT

package kernel

import (
	"math"

	"github.com/katalvlaran/magfield/matrix"
)

// facetTol is the distance to a facet's plane or edge, relative to its
// longest edge, below which the observer counts as on it.
const facetTol = 1e-12

// facetPos classifies an observer against a facet.
type facetPos int

const (
	offFacet facetPos = iota
	onFacet
	onFacetEdge
)

// facetH returns the charge field of the planar triangle v with surface
// charge σ = m·n, unnormalized by 4π, and the signed solid angle Ω it
// subtends (positive on the side n points to). n follows the right-hand rule
// over v[0] → v[1] → v[2].
//
//	H·4π/σ = Σ_edges ν·ln((R₂ + s₂)/(R₁ + s₁)) + n·Ω
//
// ν is the outward in-plane edge normal and s the coordinate along the edge.
// Ω follows Van Oosterom and Strackee. On the facet Ω is 0, the mean of its
// one-sided limits ±2π; on an edge the field is not defined and pos says so.
func facetH(p matrix.Vec3, v [3]matrix.Vec3, m matrix.Vec3) (matrix.Vec3, float64, facetPos) {
	nn := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
	area2 := nn.Norm()
	if area2 == 0 {
		return matrix.Zero3, 0, offFacet
	}
	n := nn.Scale(1 / area2)
	size := math.Max(v[1].Sub(v[0]).Norm(), math.Max(v[2].Sub(v[1]).Norm(), v[0].Sub(v[2]).Norm()))
	tol := facetTol * size

	var inPlane matrix.Vec3
	for i := 0; i < 3; i++ {
		a, b := v[i], v[(i+1)%3]
		e := b.Sub(a)
		t := e.Scale(1 / e.Norm())
		s1, s2 := a.Sub(p).Dot(t), b.Sub(p).Dot(t)
		perp := a.Sub(p).Sub(t.Scale(s1))
		w2 := perp.Dot(perp)
		if w2 <= tol*tol && s1 <= tol && s2 >= -tol {
			return matrix.Zero3, 0, onFacetEdge
		}
		inPlane = inPlane.Add(t.Cross(n).Scale(lnRatio(s1, s2, w2)))
	}

	r := [3]matrix.Vec3{v[0].Sub(p), v[1].Sub(p), v[2].Sub(p)}
	l := [3]float64{r[0].Norm(), r[1].Norm(), r[2].Norm()}
	pos := offFacet
	var omega float64
	if d := math.Abs(r[0].Dot(n)); d <= tol {
		// in the plane: Ω is 0 outside the facet and the mean 0 on it
		if insideTriangle(p, v, n) {
			pos = onFacet
		}
	} else {
		triple := r[0].Dot(r[1].Cross(r[2]))
		den := l[0]*l[1]*l[2] + r[0].Dot(r[1])*l[2] + r[0].Dot(r[2])*l[1] + r[1].Dot(r[2])*l[0]
		omega = -2 * math.Atan2(triple, den)
	}
	sigma := m.Dot(n)

	return inPlane.Add(n.Scale(omega)).Scale(sigma), omega, pos
}

// insideTriangle reports whether p, lying in the plane of v, falls within it.
func insideTriangle(p matrix.Vec3, v [3]matrix.Vec3, n matrix.Vec3) bool {
	for i := 0; i < 3; i++ {
		a, b := v[i], v[(i+1)%3]
		if b.Sub(a).Cross(p.Sub(a)).Dot(n) < 0 {
			return false
		}
	}

	return true
}

// Triangle evaluates n charged triangular sheets with surface charge
// σ = mag·n̂, where n̂ follows the right-hand rule over the vertices.
// mag and vertices have length 1 or n. Triangles have no body, so B and H
// differ only by the unit factor. On the sheet the mean of both sides is
// returned; on an edge or vertex the field is zero.
func Triangle(q Quantity, obs *matrix.Dense, mag []matrix.Vec3, vertices [][3]matrix.Vec3) (*matrix.Dense, error) {
	n, err := batchLen(opTriangle, q, obs, len(mag), len(vertices))
	if err != nil {
		return nil, err
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		m := at(mag, i)
		if m.IsZero() {
			continue
		}
		h, _, pos := facetH(obs.Vec(i), at(vertices, i), m)
		if pos == onFacetEdge {
			continue
		}
		out.SetVec(i, convert(q, h.Scale(1/(4*math.Pi))))
	}

	return out, nil
}
