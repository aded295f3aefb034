// SPDX-License-Identifier: MIT

package kernel

import (
	"math"

	"github.com/katalvlaran/magfield/matrix"
)

// cuboidEdgeTol is the relative distance to a face plane below which an
// observer counts as lying on that plane for edge detection.
const cuboidEdgeTol = 1e-14

// Sign-flip tables applied to the 3×3 (magnetization × field) contribution
// matrix when the observer is mirrored into the octant x≥0, y≤0, z≤0.
var (
	cuboidFlipX = [3][3]float64{{1, -1, -1}, {-1, 1, 1}, {-1, 1, 1}}
	cuboidFlipY = [3][3]float64{{1, -1, 1}, {-1, 1, -1}, {1, -1, 1}}
	cuboidFlipZ = [3][3]float64{{1, 1, -1}, {1, 1, -1}, {-1, -1, 1}}
)

func applyFlip(qs *[3][3]float64, flip *[3][3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			qs[i][j] *= flip[i][j]
		}
	}
}

// onCuboidEdge reports whether p lies on at least two face planes of the
// box with half-sizes h (an edge or a corner).
func onCuboidEdge(p, h matrix.Vec3) bool {
	hits := 0
	for k := 0; k < 3; k++ {
		if math.Abs(math.Abs(p[k])-h[k]) <= cuboidEdgeTol*h[k] {
			hits++
		}
	}

	return hits >= 2
}

// insideCuboid reports whether p lies in the closed box with half-sizes h.
func insideCuboid(p, h matrix.Vec3) bool {
	return math.Abs(p[0]) <= h[0] && math.Abs(p[1]) <= h[1] && math.Abs(p[2]) <= h[2]
}

// cuboidB returns B of a uniformly magnetized cuboid with side lengths dim,
// centred at the origin with faces normal to the axes.
//
// Implementation:
//   - Stage 1: mirror the observer into the octant x≥0, y≤0, z≤0 and record
//     the matching sign flips. Inside that octant the log/atan2 terms stay
//     away from their branch cuts.
//   - Stage 2: evaluate the eight corner distances, three log terms and three
//     atan2 terms of the closed-form solution.
//   - Stage 3: combine per magnetization component with the sign table.
//
// x−a is formed as −(a−x) so that an observer on an x face yields −0; with
// the signed-zero semantics of atan2 every face then evaluates as the limit
// from inside the body, matching insideCuboid.
func cuboidB(p, mag, dim matrix.Vec3) matrix.Vec3 {
	a, b, c := dim[0]/2, dim[1]/2, dim[2]/2
	x, y, z := p[0], p[1], p[2]

	qs := [3][3]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	if x < 0 {
		x = -x
		applyFlip(&qs, &cuboidFlipX)
	}
	if y > 0 {
		y = -y
		applyFlip(&qs, &cuboidFlipY)
	}
	if z > 0 {
		z = -z
		applyFlip(&qs, &cuboidFlipZ)
	}

	xma, xpa := -(a - x), x+a
	ymb, ypb := y-b, y+b
	zmc, zpc := z-c, z+c

	xma2, xpa2 := xma*xma, xpa*xpa
	ymb2, ypb2 := ymb*ymb, ypb*ypb
	zmc2, zpc2 := zmc*zmc, zpc*zpc

	mmm := math.Sqrt(xma2 + ymb2 + zmc2)
	pmp := math.Sqrt(xpa2 + ymb2 + zpc2)
	pmm := math.Sqrt(xpa2 + ymb2 + zmc2)
	mmp := math.Sqrt(xma2 + ymb2 + zpc2)
	mpm := math.Sqrt(xma2 + ypb2 + zmc2)
	ppp := math.Sqrt(xpa2 + ypb2 + zpc2)
	ppm := math.Sqrt(xpa2 + ypb2 + zmc2)
	mpp := math.Sqrt(xma2 + ypb2 + zpc2)

	ff2x := math.Log((xma+mmm)*(xpa+ppm)*(xpa+pmp)*(xma+mpp)) -
		math.Log((xpa+pmm)*(xma+mpm)*(xma+mmp)*(xpa+ppp))
	ff2y := math.Log((-ymb+mmm)*(-ypb+ppm)*(-ymb+pmp)*(-ypb+mpp)) -
		math.Log((-ymb+pmm)*(-ypb+mpm)*(ymb-mmp)*(ypb-ppp))
	ff2z := math.Log((-zmc+mmm)*(-zmc+ppm)*(-zpc+pmp)*(-zpc+mpp)) -
		math.Log((-zmc+pmm)*(zmc-mpm)*(-zpc+mmp)*(zpc-ppp))

	ff1x := math.Atan2(ymb*zmc, xma*mmm) - math.Atan2(ymb*zmc, xpa*pmm) -
		math.Atan2(ypb*zmc, xma*mpm) + math.Atan2(ypb*zmc, xpa*ppm) -
		math.Atan2(ymb*zpc, xma*mmp) + math.Atan2(ymb*zpc, xpa*pmp) +
		math.Atan2(ypb*zpc, xma*mpp) - math.Atan2(ypb*zpc, xpa*ppp)
	ff1y := math.Atan2(xma*zmc, ymb*mmm) - math.Atan2(xpa*zmc, ymb*pmm) -
		math.Atan2(xma*zmc, ypb*mpm) + math.Atan2(xpa*zmc, ypb*ppm) -
		math.Atan2(xma*zpc, ymb*mmp) + math.Atan2(xpa*zpc, ymb*pmp) +
		math.Atan2(xma*zpc, ypb*mpp) - math.Atan2(xpa*zpc, ypb*ppp)
	ff1z := math.Atan2(xma*ymb, zmc*mmm) - math.Atan2(xpa*ymb, zmc*pmm) -
		math.Atan2(xma*ypb, zmc*mpm) + math.Atan2(xpa*ypb, zmc*ppm) -
		math.Atan2(xma*ymb, zpc*mmp) + math.Atan2(xpa*ymb, zpc*pmp) +
		math.Atan2(xma*ypb, zpc*mpp) - math.Atan2(xpa*ypb, zpc*ppp)

	mx, my, mz := mag[0], mag[1], mag[2]
	bx := mx*ff1x*qs[0][0] + my*ff2z*qs[1][0] + mz*ff2y*qs[2][0]
	by := mx*ff2z*qs[0][1] + my*ff1y*qs[1][1] - mz*ff2x*qs[2][1]
	bz := mx*ff2y*qs[0][2] - my*ff2x*qs[1][2] + mz*ff1z*qs[2][2]

	return matrix.Vec3{bx, by, bz}.Scale(1 / (4 * math.Pi))
}

// Cuboid evaluates n cuboids centred at the local origin.
// mag and dim (side lengths a, b, c) have length 1 or n.
//
// Observers on a face are finite and equal the limit from inside the body.
// Observers on an edge or corner, and cuboids with a zero side or zero
// magnetization, yield a zero field.
func Cuboid(q Quantity, obs *matrix.Dense, mag, dim []matrix.Vec3) (*matrix.Dense, error) {
	n, err := batchLen(opCuboid, q, obs, len(mag), len(dim))
	if err != nil {
		return nil, err
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		p, m, d := obs.Vec(i), at(mag, i), at(dim, i)
		if m.IsZero() || d[0] == 0 || d[1] == 0 || d[2] == 0 {
			continue
		}
		half := d.Scale(0.5)
		if onCuboidEdge(p, half) {
			continue
		}
		b := cuboidB(p, m, d)
		if q == H {
			b = magnetH(b, m, insideCuboid(p, half))
		}
		out.SetVec(i, b)
	}

	return out, nil
}
