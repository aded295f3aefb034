// SPDX-License-Identifier: MIT

package kernel

import "math"

// celTol is the relative AGM stopping criterion. Convergence is quadratic,
// so the returned value is accurate to roughly celTol².
const celTol = 1e-8

// cel is Bulirsch's generalized complete elliptic integral
//
//	cel(kc, p, c, s) = ∫₀^{π/2} (c·cos²φ + s·sin²φ) / ((cos²φ + p·sin²φ)·√(cos²φ + kc²·sin²φ)) dφ
//
// evaluated with the Bartky/Bulirsch AGM iteration. p ≤ 0 returns the
// Cauchy principal value. kc == 0 diverges and yields NaN; callers guard it.
func cel(kc, p, c, s float64) float64 {
	if kc == 0 {
		return math.NaN()
	}
	k := math.Abs(kc)
	pp, cc, ss := p, c, s
	em := 1.0
	if p > 0 {
		pp = math.Sqrt(p)
		ss = s / pp
	} else {
		f := kc * kc
		q := 1 - f
		g := 1 - pp
		f -= pp
		q *= ss - c*pp
		pp = math.Sqrt(f / g)
		cc = (c - ss) / g
		ss = -q/(g*g*pp) + cc*pp
	}
	f := cc
	cc += ss / pp
	g := k / pp
	ss = 2 * (ss + f*g)
	pp += g
	g = em
	em += k
	kk := k
	for math.Abs(g-k) > g*celTol {
		k = 2 * math.Sqrt(kk)
		kk = k * em
		f = cc
		cc += ss / pp
		g = kk / pp
		ss = 2 * (ss + f*g)
		pp += g
		g = em
		em += k
	}

	return (math.Pi / 2) * (ss + cc*em) / (em * (em + pp))
}

// ellipK is the complete elliptic integral of the first kind K(m), m = k².
func ellipK(m float64) float64 {
	return cel(math.Sqrt(1-m), 1, 1, 1)
}

// ellipE is the complete elliptic integral of the second kind E(m), m = k².
func ellipE(m float64) float64 {
	kc := math.Sqrt(1 - m)

	return cel(kc, 1, 1, kc*kc)
}
