// SPDX-License-Identifier: MIT

package kernel

import (
	"math"

	"github.com/katalvlaran/magfield/matrix"
)

// Mesh is a closed triangular surface: Faces index into Vertices.
type Mesh struct {
	Vertices []matrix.Vec3
	Faces    [][3]int
}

type edgeKey struct{ lo, hi int }

// edgeUse is one face's use of an edge; forward is true when the face
// traverses it from lo to hi.
type edgeUse struct {
	face    int
	forward bool
}

// OrientFaces returns the faces of m reordered so that every connected
// component is consistently oriented with outward normals (positive
// enclosed volume). Faces of a non-manifold edge keep their relative order.
//
// Implementation:
//   - Stage 1: index faces by undirected edge.
//   - Stage 2: breadth-first over each component, flipping a neighbour
//     whenever it runs a shared edge in the same direction.
//   - Stage 3: flip a whole component whose signed volume is negative.
//
// Complexity: O(F) time and memory.
func OrientFaces(m Mesh) [][3]int {
	edges := make(map[edgeKey][]edgeUse, 3*len(m.Faces)/2)
	for f, face := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := face[k], face[(k+1)%3]
			key, fwd := edgeKey{a, b}, true
			if a > b {
				key, fwd = edgeKey{b, a}, false
			}
			edges[key] = append(edges[key], edgeUse{f, fwd})
		}
	}

	flip := make([]bool, len(m.Faces))
	seen := make([]bool, len(m.Faces))
	out := make([][3]int, len(m.Faces))
	for start := range m.Faces {
		if seen[start] {
			continue
		}
		component := []int{start}
		seen[start] = true
		for head := 0; head < len(component); head++ {
			f := component[head]
			face := m.Faces[f]
			for k := 0; k < 3; k++ {
				a, b := face[k], face[(k+1)%3]
				key, fwd := edgeKey{a, b}, true
				if a > b {
					key, fwd = edgeKey{b, a}, false
				}
				uses := edges[key]
				if len(uses) != 2 {
					continue
				}
				for _, u := range uses {
					if u.face == f || seen[u.face] {
						continue
					}
					// neighbours must run the shared edge the other way
					flip[u.face] = u.forward == (fwd != flip[f])
					seen[u.face] = true
					component = append(component, u.face)
				}
			}
		}

		var vol float64
		for _, f := range component {
			face := m.Faces[f]
			if flip[f] {
				face[1], face[2] = face[2], face[1]
			}
			out[f] = face
			v0, v1, v2 := m.Vertices[face[0]], m.Vertices[face[1]], m.Vertices[face[2]]
			vol += v0.Dot(v1.Cross(v2))
		}
		if vol < 0 {
			for _, f := range component {
				out[f][1], out[f][2] = out[f][2], out[f][1]
			}
		}
	}

	return out
}

// meshField returns the charge field and the body indicator of an oriented
// mesh at p; ok is false on an edge or vertex.
func meshField(p matrix.Vec3, verts []matrix.Vec3, faces [][3]int, mag matrix.Vec3) (matrix.Vec3, float64, bool) {
	var h matrix.Vec3
	var omega float64
	onFace := false
	for _, f := range faces {
		tri := [3]matrix.Vec3{verts[f[0]], verts[f[1]], verts[f[2]]}
		fh, fo, pos := facetH(p, tri, mag)
		switch pos {
		case onFacetEdge:
			return matrix.Zero3, 0, false
		case onFacet:
			onFace = true
		}
		h = h.Add(fh)
		omega += fo
	}
	h = h.Scale(1 / (4 * math.Pi))
	switch {
	case onFace:
		return h, 0.5, true
	case omega < -2*math.Pi:
		// outward facets seen from inside sum to −4π
		return h, 1, true
	}

	return h, 0, true
}

// TriangularMesh evaluates n uniformly magnetized bodies bounded by closed
// triangular meshes. mag and meshes have length 1 or n. Faces are oriented
// outward with OrientFaces before evaluation, so their input order does not
// matter. Observers on a face yield the mean of the one-sided limits;
// observers on an edge or vertex yield zero.
//
// Complexity: O(n·F) for F faces per mesh.
func TriangularMesh(q Quantity, obs *matrix.Dense, mag []matrix.Vec3, meshes []Mesh) (*matrix.Dense, error) {
	n, err := batchLen(opTriangularMesh, q, obs, len(mag), len(meshes))
	if err != nil {
		return nil, err
	}
	oriented := make([][][3]int, len(meshes))
	for i, m := range meshes {
		oriented[i] = OrientFaces(m)
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		m := at(mag, i)
		if m.IsZero() {
			continue
		}
		k := 0
		if len(meshes) > 1 {
			k = i
		}
		h, chi, ok := meshField(obs.Vec(i), meshes[k].Vertices, oriented[k], m)
		if !ok {
			continue
		}
		if q == H {
			out.SetVec(i, h.Scale(hPerB))
		} else {
			out.SetVec(i, h.Add(m.Scale(chi)))
		}
	}

	return out, nil
}
