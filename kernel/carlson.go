// SPDX-License-Identifier: MIT

package kernel

import "math"

// Stopping thresholds of the duplication theorem (Carlson; Press et al.).
// The truncated Taylor tail leaves a relative error near 1e-16.
const (
	rfTol = 0.0025
	rdTol = 0.0015
	rjTol = 0.0015
	rcTol = 0.0012

	// carlsonMaxIter bounds every duplication loop. Each step shrinks the
	// spread of the arguments fourfold, so convergence takes < 30 steps for
	// any finite input.
	carlsonMaxIter = 64
)

// rf is Carlson's symmetric integral of the first kind
//
//	RF(x, y, z) = ½ ∫₀^∞ dt / √((t+x)(t+y)(t+z)),
//
// x, y, z ≥ 0 with at most one zero.
func rf(x, y, z float64) float64 {
	var ave, dx, dy, dz float64
	for i := 0; i < carlsonMaxIter; i++ {
		sx, sy, sz := math.Sqrt(x), math.Sqrt(y), math.Sqrt(z)
		lam := sx*(sy+sz) + sy*sz
		x, y, z = (x+lam)/4, (y+lam)/4, (z+lam)/4
		ave = (x + y + z) / 3
		dx, dy, dz = (ave-x)/ave, (ave-y)/ave, (ave-z)/ave
		if math.Max(math.Abs(dx), math.Max(math.Abs(dy), math.Abs(dz))) <= rfTol {
			break
		}
	}
	e2 := dx*dy - dz*dz
	e3 := dx * dy * dz

	return (1 + (e2/24-0.1-3*e3/44)*e2 + e3/14) / math.Sqrt(ave)
}

// rd is Carlson's degenerate integral of the second kind
//
//	RD(x, y, z) = 3/2 ∫₀^∞ dt / ((t+z)·√((t+x)(t+y)(t+z))),
//
// x, y ≥ 0 with at most one zero, z > 0.
func rd(x, y, z float64) float64 {
	const (
		c1 = 3.0 / 14
		c2 = 1.0 / 6
		c3 = 9.0 / 22
		c4 = 3.0 / 26
		c5 = 0.25 * c3
		c6 = 1.5 * c4
	)
	sum, fac := 0.0, 1.0
	var ave, dx, dy, dz float64
	for i := 0; i < carlsonMaxIter; i++ {
		sx, sy, sz := math.Sqrt(x), math.Sqrt(y), math.Sqrt(z)
		lam := sx*(sy+sz) + sy*sz
		sum += fac / (sz * (z + lam))
		fac /= 4
		x, y, z = (x+lam)/4, (y+lam)/4, (z+lam)/4
		ave = (x + y + 3*z) / 5
		dx, dy, dz = (ave-x)/ave, (ave-y)/ave, (ave-z)/ave
		if math.Max(math.Abs(dx), math.Max(math.Abs(dy), math.Abs(dz))) <= rdTol {
			break
		}
	}
	ea := dx * dy
	eb := dz * dz
	ec := ea - eb
	ed := ea - 6*eb
	ee := ed + ec + ec

	return 3*sum + fac*(1+ed*(-c1+c5*ed-c6*dz*ee)+dz*(c2*ee+dz*(-c3*ec+dz*c4*ea)))/(ave*math.Sqrt(ave))
}

// rc is the degenerate RF(x, y, y) for y > 0.
func rc(x, y float64) float64 {
	var ave, s float64
	for i := 0; i < carlsonMaxIter; i++ {
		lam := 2*math.Sqrt(x)*math.Sqrt(y) + y
		x, y = (x+lam)/4, (y+lam)/4
		ave = (x + 2*y) / 3
		s = (y - ave) / ave
		if math.Abs(s) <= rcTol {
			break
		}
	}

	return (1 + s*s*(0.3+s*(1.0/7+s*(0.375+s*9.0/22)))) / math.Sqrt(ave)
}

// rj is Carlson's symmetric integral of the third kind
//
//	RJ(x, y, z, p) = 3/2 ∫₀^∞ dt / ((t+p)·√((t+x)(t+y)(t+z))),
//
// x, y, z ≥ 0 with at most one zero, p > 0.
func rj(x, y, z, p float64) float64 {
	const (
		c1 = 3.0 / 14
		c2 = 1.0 / 3
		c3 = 3.0 / 22
		c4 = 3.0 / 26
		c5 = 0.75 * c3
		c6 = 1.5 * c4
		c7 = 0.5 * c2
		c8 = c3 + c3
	)
	sum, fac := 0.0, 1.0
	var ave, dx, dy, dz, dp float64
	for i := 0; i < carlsonMaxIter; i++ {
		sx, sy, sz := math.Sqrt(x), math.Sqrt(y), math.Sqrt(z)
		lam := sx*(sy+sz) + sy*sz
		alpha := p*(sx+sy+sz) + sx*sy*sz
		beta := p * (p + lam) * (p + lam)
		sum += fac * rc(alpha*alpha, beta)
		fac /= 4
		x, y, z, p = (x+lam)/4, (y+lam)/4, (z+lam)/4, (p+lam)/4
		ave = (x + y + z + 2*p) / 5
		dx, dy, dz, dp = (ave-x)/ave, (ave-y)/ave, (ave-z)/ave, (ave-p)/ave
		if math.Max(math.Max(math.Abs(dx), math.Abs(dy)), math.Max(math.Abs(dz), math.Abs(dp))) <= rjTol {
			break
		}
	}
	ea := dx*(dy+dz) + dy*dz
	eb := dx * dy * dz
	ec := dp * dp
	ed := ea - 3*ec
	ee := eb + 2*dp*(ea-ec)

	return 3*sum + fac*(1+ed*(-c1+c5*ed-c6*ee)+eb*(c7+dp*(-c8+dp*c4))+dp*ea*(c2-dp*c3)-c2*dp*ec)/(ave*math.Sqrt(ave))
}
