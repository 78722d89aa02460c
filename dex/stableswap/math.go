package stableswap

import (
	"github.com/holiman/uint256"
)

/*
	Curve style amplified invariant for n assets with reserves x_i and amplification A:

		A * n^n * sum(x_i) + D = A * n^n * D + D^(n+1) / (n^n * prod(x_i))

	Both D and the reserve y of one asset for a given D are found with Newton's method in 256 bit integers.
*/

const maxIterations = 255

// calculateD() solves the invariant for D; false if the reserves are empty or the iteration diverges
func calculateD(reserves []*uint256.Int, amplification uint64) (*uint256.Int, bool) {
	n := uint256.NewInt(uint64(len(reserves)))
	sum := new(uint256.Int)
	for _, x := range reserves {
		if x.IsZero() {
			return nil, false
		}
		sum.Add(sum, x)
	}
	ann := annOf(amplification, len(reserves))
	d := new(uint256.Int).Set(sum)
	for i := 0; i < maxIterations; i++ {
		// dP = D^(n+1) / (n^n * prod(x_i))
		dP := new(uint256.Int).Set(d)
		for _, x := range reserves {
			var overflow bool
			if dP, overflow = new(uint256.Int).MulDivOverflow(dP, d, new(uint256.Int).Mul(x, n)); overflow {
				return nil, false
			}
		}
		previous := d
		// D = (Ann * S + dP * n) * D / ((Ann - 1) * D + (n + 1) * dP)
		numerator := new(uint256.Int).Mul(ann, sum)
		numerator.Add(numerator, new(uint256.Int).Mul(dP, n))
		denominator := new(uint256.Int).Mul(new(uint256.Int).SubUint64(ann, 1), d)
		denominator.Add(denominator, new(uint256.Int).Mul(new(uint256.Int).AddUint64(n, 1), dP))
		if denominator.IsZero() {
			return nil, false
		}
		next, overflow := new(uint256.Int).MulDivOverflow(numerator, d, denominator)
		if overflow {
			return nil, false
		}
		d = next
		if converged(d, previous) {
			return d, true
		}
	}
	return nil, false
}

// calculateY() solves the invariant for the reserve of asset j given D and every other reserve
func calculateY(reserves []*uint256.Int, j int, d *uint256.Int, amplification uint64) (*uint256.Int, bool) {
	n := uint256.NewInt(uint64(len(reserves)))
	ann := annOf(amplification, len(reserves))
	// c = D^(n+1) / (n^n * prod(x_k, k != j) * Ann), b = sum(x_k, k != j) + D / Ann
	c, sum := new(uint256.Int).Set(d), new(uint256.Int)
	for k, x := range reserves {
		if k == j {
			continue
		}
		if x.IsZero() {
			return nil, false
		}
		sum.Add(sum, x)
		var overflow bool
		if c, overflow = new(uint256.Int).MulDivOverflow(c, d, new(uint256.Int).Mul(x, n)); overflow {
			return nil, false
		}
	}
	c, overflow := new(uint256.Int).MulDivOverflow(c, d, new(uint256.Int).Mul(ann, n))
	if overflow {
		return nil, false
	}
	b := new(uint256.Int).Add(sum, new(uint256.Int).Div(d, ann))
	y := new(uint256.Int).Set(d)
	for i := 0; i < maxIterations; i++ {
		previous := y
		// y = (y^2 + c) / (2y + b - D)
		numerator := new(uint256.Int).Add(new(uint256.Int).Mul(y, y), c)
		denominator := new(uint256.Int).Add(new(uint256.Int).Lsh(y, 1), b)
		if denominator.Cmp(d) <= 0 {
			return nil, false
		}
		denominator.Sub(denominator, d)
		y = numerator.Div(numerator, denominator)
		if converged(y, previous) {
			return y, true
		}
	}
	return nil, false
}

// annOf() returns A * n^n
func annOf(amplification uint64, n int) *uint256.Int {
	ann := uint256.NewInt(amplification)
	for i := 0; i < n; i++ {
		ann.Mul(ann, uint256.NewInt(uint64(n)))
	}
	return ann
}

// converged() returns true if a and b differ by at most one
func converged(a, b *uint256.Int) bool {
	diff := new(uint256.Int)
	if a.Gt(b) {
		diff.Sub(a, b)
	} else {
		diff.Sub(b, a)
	}
	return diff.LtUint64(2)
}
