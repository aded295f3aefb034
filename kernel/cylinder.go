// SPDX-License-Identifier: MIT

package kernel

import (
	"math"

	"github.com/katalvlaran/magfield/matrix"
)

const (
	// surfaceTol is the normalized distance below which an observer counts
	// as lying on a bounding surface.
	surfaceTol = 1e-14

	// axisTol is the normalized radius below which a series in r replaces
	// the elliptic form of the diametral solution.
	axisTol = 1e-3
)

// bodyIndicator returns 1 strictly inside, 0 strictly outside and 1/2 on the
// surface of the cylinder r ≤ 1, |z| ≤ z0 (normalized coordinates).
func bodyIndicator(r, z, z0 float64) float64 {
	dr := r - 1
	dz := math.Abs(z) - z0
	if dr > surfaceTol || dz > surfaceTol*math.Max(1, z0) {
		return 0
	}
	if dr < -surfaceTol && dz < -surfaceTol*math.Max(1, z0) {
		return 1
	}

	return 0.5
}

// cylinderAxial returns (Br, Bz) per unit axial magnetization for a cylinder
// of radius 1 and half-height z0 (Derby & Olson form via cel). The result
// is B including the body term; on the mantle it is the mean of both sides.
func cylinderAxial(z0, r, z float64) (br, bz float64) {
	zph, zmh := z+z0, z-z0
	dpr, dmr := 1+r, 1-r
	sq0 := math.Sqrt(zmh*zmh + dpr*dpr)
	sq1 := math.Sqrt(zph*zph + dpr*dpr)
	k1 := math.Sqrt((zph*zph + dmr*dmr) / (zph*zph + dpr*dpr))
	k0 := math.Sqrt((zmh*zmh + dmr*dmr) / (zmh*zmh + dpr*dpr))
	gamma := dmr / dpr

	br = (cel(k1, 1, 1, -1)/sq1 - cel(k0, 1, 1, -1)/sq0) / math.Pi
	bz = (zph*cel(k1, gamma*gamma, 1, gamma)/sq1 - zmh*cel(k0, gamma*gamma, 1, gamma)/sq0) / (dpr * math.Pi)

	return br, bz
}

// cylinderDiametral returns the charge field of the mantle for a transverse
// magnetization, per unit component: hr and hz respond to the radial
// component M·r̂, hp to the azimuthal component M·φ̂ (radius 1, half-height z0).
//
// Implementation:
//   - Stage 1: integrate the mantle charge cos(φ'−ψ) over z' in closed form.
//   - Stage 2: reduce each remaining azimuthal integral to cel with
//     φ' = π − 2θ, splitting cos²φ' via cosφ' = (1 + r² − d²)/(2r).
//   - Near the axis the elliptic form cancels, so the m = 1 harmonic
//     expansion of the potential, cosφ·(r·a(z) − r³·a''(z)/8), is used up
//     to O(r⁴) instead.
func cylinderDiametral(z0, r, z float64) (hr, hp, hz float64) {
	if r < axisTol {
		return diametralSeries(z0, r, z)
	}
	p := (1 - r) / (1 + r)
	p *= p
	for _, face := range [2]struct{ tau, sign float64 }{{z + z0, 1}, {z - z0, -1}} {
		tau := face.tau
		a := (1+r)*(1+r) + tau*tau
		sa := math.Sqrt(a)
		kc := math.Sqrt(((1-r)*(1-r) + tau*tau) / a)

		idS := func(c, s float64) float64 { return 4 / ((1 + r) * (1 + r) * sa) * cel(kc, p, c, s) }
		iS := func(c, s float64) float64 { return 4 / sa * cel(kc, 1, c, s) }

		cos1 := idS(-1, 1)
		cosS := iS(-1, 1)
		cos2 := (1+r*r)/(2*r)*cos1 - cosS/(2*r)
		sin2 := idS(1, 1) - cos2

		hr += face.sign * tau * (r*cos1 - cos2)
		hp -= face.sign * tau * sin2
		hz -= face.sign * cosS
	}

	return hr / (4 * math.Pi), hp / (4 * math.Pi), hz / (4 * math.Pi)
}

// diametralSeries is the near-axis form of cylinderDiametral. a(z) is the
// on-axis transverse potential gradient, a = (g(z+z0) − g(z−z0))/4 with
// g(t) = t/√(1+t²).
func diametralSeries(z0, r, z float64) (hr, hp, hz float64) {
	var a [4]float64
	for _, face := range [2]struct{ t, sign float64 }{{z + z0, 1}, {z - z0, -1}} {
		t := face.t
		u := 1 + t*t
		su := math.Sqrt(u)
		a[0] += face.sign * t / su
		a[1] += face.sign / (u * su)
		a[2] += face.sign * -3 * t / (u * u * su)
		a[3] += face.sign * (12*t*t - 3) / (u * u * u * su)
	}
	for i := range a {
		a[i] /= 4
	}
	r2 := r * r
	hr = -a[0] + 3*r2*a[2]/8
	hp = -a[0] + r2*a[2]/8
	hz = -r*a[1] + r*r2*a[3]/8

	return hr, hp, hz
}

// cylinderB returns B and the body indicator for a solid cylinder of
// diameter d and height h, axis along z, centred at the origin.
func cylinderB(p, mag matrix.Vec3, d, h float64) (matrix.Vec3, float64) {
	radius := d / 2
	if radius == 0 || h == 0 || mag.IsZero() {
		return matrix.Zero3, 0
	}
	x, y, z := p[0]/radius, p[1]/radius, p[2]/radius
	z0 := h / (2 * radius)
	r := math.Hypot(x, y)

	// rim circle: edge singularity of the closed form
	if math.Abs(r-1) <= surfaceTol && math.Abs(math.Abs(z)-z0) <= surfaceTol*math.Max(1, z0) {
		return matrix.Zero3, 0
	}

	cphi, sphi := 1.0, 0.0
	if r > 0 {
		cphi, sphi = x/r, y/r
	}
	chi := bodyIndicator(r, z, z0)

	var br, bphi, bz float64
	if mag[2] != 0 {
		ar, az := cylinderAxial(z0, r, z)
		br += mag[2] * ar
		bz += mag[2] * az
	}
	if mag[0] != 0 || mag[1] != 0 {
		mr := mag[0]*cphi + mag[1]*sphi
		mp := -mag[0]*sphi + mag[1]*cphi
		hr, hp, hz := cylinderDiametral(z0, r, z)
		br += hr*mr + chi*mr
		bphi += hp*mp + chi*mp
		bz += hz * mr
	}

	return matrix.Vec3{br*cphi - bphi*sphi, br*sphi + bphi*cphi, bz}, chi
}

// Cylinder evaluates n solid cylinders (axis z, centred at the local origin).
// mag has length 1 or n; dim holds (diameter, height) with length 1 or n.
//
// Observers on the mantle or end faces yield the mean of the two one-sided
// limits; observers on a rim circle yield zero.
func Cylinder(q Quantity, obs *matrix.Dense, mag []matrix.Vec3, dim [][2]float64) (*matrix.Dense, error) {
	n, err := batchLen(opCylinder, q, obs, len(mag), len(dim))
	if err != nil {
		return nil, err
	}
	out, _ := matrix.NewBatch(n)
	for i := 0; i < n; i++ {
		m, d := at(mag, i), at(dim, i)
		b, chi := cylinderB(obs.Vec(i), m, d[0], d[1])
		if q == H {
			b = b.Sub(m.Scale(chi)).Scale(hPerB)
		}
		out.SetVec(i, b)
	}

	return out, nil
}
