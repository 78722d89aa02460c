package fixed

import (
	"math/big"

	"github.com/canopy-network/omniroute/lib"
	"github.com/holiman/uint256"
)

/*
	Pow() raises a 64.64 base to a 64.64 exponent.

	The computation is exp(exponent * ln(base)) carried out entirely in integer arithmetic at
	workPrec fractional bits, which leaves ~90 guard bits over the 64 bit output so the
	final round-to-nearest is exact for every practical input. The result is therefore fully
	deterministic (no floating point anywhere) and agrees with the true value to within one
	unit in the last place.

	ln(x):  x = m * 2^k with m in [1, 2), ln(x) = k*ln2 + 2*atanh((m-1)/(m+1))
	exp(y): y = n*ln2 + r with r in [0, ln2), exp(y) = 2^n * taylor(r)
*/

const workPrec = 160 // internal fractional bits

var (
	workOne  = new(big.Int).Lsh(big.NewInt(1), workPrec)
	workHalf = new(big.Int).Lsh(big.NewInt(1), workPrec-FracBits-1) // half an output ulp at work precision
	ln2      = lnTwo()
)

// Pow() returns base^exponent
// Special cases: x^0 = 1, 1^x = 1 exactly, 0^x = 0 for x > 0
// A result >= 2^64 fails with ErrOverflow; a result below 2^-65 rounds to zero
func Pow(base, exponent Fixed) (Fixed, lib.ErrorI) {
	switch {
	case exponent.IsZero(), base.IsOne():
		return One(), nil
	case base.IsZero():
		return Zero(), nil
	case exponent.IsOne():
		return base, nil
	}
	// lift both operands to the working precision
	b := new(big.Int).Lsh(base.v.ToBig(), workPrec-FracBits)
	e := new(big.Int).Lsh(exponent.v.ToBig(), workPrec-FracBits)
	// y = e * ln(b)
	y := new(big.Int).Mul(lnWork(b), e)
	y.Rsh(y, workPrec)
	v, ok := expWork(y)
	if !ok {
		return Fixed{}, ErrOverflow()
	}
	// round to nearest at 64 fractional bits
	v.Add(v, workHalf)
	v.Rsh(v, workPrec-FracBits)
	raw, overflow := uint256.FromBig(v)
	if overflow {
		return Fixed{}, ErrOverflow()
	}
	return FromRaw(raw)
}

// PowUint64() returns base^n for an integer exponent by repeated squaring; exact up to truncation of each product
func PowUint64(base Fixed, n uint64) (result Fixed, err lib.ErrorI) {
	result = One()
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			if result, err = result.Mul(base); err != nil {
				return
			}
		}
		if n > 1 {
			if base, err = base.Mul(base); err != nil {
				return
			}
		}
	}
	return
}

// lnWork() returns ln(x) for a positive x at working precision
func lnWork(x *big.Int) *big.Int {
	// normalize x = m * 2^k with m in [1, 2)
	k := x.BitLen() - 1 - workPrec
	m := new(big.Int)
	if k >= 0 {
		m.Rsh(x, uint(k))
	} else {
		m.Lsh(x, uint(-k))
	}
	// z = (m - 1) / (m + 1) lies in [0, 1/3)
	num := new(big.Int).Lsh(new(big.Int).Sub(m, workOne), workPrec)
	z := num.Quo(num, new(big.Int).Add(m, workOne))
	res := new(big.Int).Mul(big.NewInt(int64(k)), ln2)
	return res.Add(res, new(big.Int).Lsh(atanhWork(z), 1))
}

// atanhWork() sums z + z^3/3 + z^5/5 + ... until the terms vanish; 0 <= z < 1/2
func atanhWork(z *big.Int) *big.Int {
	z2 := new(big.Int).Mul(z, z)
	z2.Rsh(z2, workPrec)
	sum, term, t := new(big.Int), new(big.Int).Set(z), new(big.Int)
	for n := int64(1); term.Sign() > 0; n += 2 {
		sum.Add(sum, t.Quo(term, big.NewInt(n)))
		term.Mul(term, z2)
		term.Rsh(term, workPrec)
	}
	return sum
}

// expWork() returns e^y at working precision and false if the result would be >= 2^64
func expWork(y *big.Int) (*big.Int, bool) {
	// range reduction: y = n*ln2 + r, 0 <= r < ln2 (Euclidean division floors for a positive divisor)
	n, r := new(big.Int).DivMod(y, ln2, new(big.Int))
	if n.Cmp(big.NewInt(FracBits)) >= 0 {
		return nil, false
	}
	// anything below 2^-(2*workPrec) is zero at any precision used here
	if n.Cmp(big.NewInt(-2*workPrec)) < 0 {
		return new(big.Int), true
	}
	// taylor series of e^r
	sum, term := new(big.Int).Set(workOne), new(big.Int).Set(workOne)
	for i := int64(1); term.Sign() > 0; i++ {
		term.Mul(term, r)
		term.Rsh(term, workPrec)
		term.Quo(term, big.NewInt(i))
		sum.Add(sum, term)
	}
	// multiply by 2^n
	if shift := n.Int64(); shift < 0 {
		return sum.Rsh(sum, uint(-shift)), true
	}
	return sum.Lsh(sum, uint(n.Int64())), true
}

// lnTwo() computes ln(2) = 2*atanh(1/3) at working precision
func lnTwo() *big.Int {
	third := new(big.Int).Quo(workOne, big.NewInt(3))
	return new(big.Int).Lsh(atanhWork(third), 1)
}
