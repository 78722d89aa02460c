package fixed

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/canopy-network/omniroute/lib"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

/*
	Fixed is an unsigned 64.64 binary fixed point number: 64 integer bits and 64 fractional bits.
	The raw value is stored in a 256-bit word so that products of two raw values never wrap,
	but every operation checks that its result is < 2^128 and reports an overflow otherwise.
	Results are truncated toward zero unless noted.
*/

const (
	FracBits = 64  // number of fractional bits
	RawBits  = 128 // total bits of the representation
)

var (
	rawOne   = new(uint256.Int).Lsh(uint256.NewInt(1), FracBits)
	rawLimit = new(uint256.Int).Lsh(uint256.NewInt(1), RawBits) // exclusive upper bound of raw values

	// decimal helpers for exact binary <-> decimal conversion
	decOne     = decimal.NewFromBigInt(rawOne.ToBig(), 0)
	fiveTo64   = new(big.Int).Exp(big.NewInt(5), big.NewInt(FracBits), nil)
	million    = uint256.NewInt(1_000_000)
	hundredPct = uint256.NewInt(100)
)

// Fixed is a 64.64 fixed point number
type Fixed struct {
	v uint256.Int
}

// Zero() returns 0
func Zero() Fixed { return Fixed{} }

// One() returns 1
func One() Fixed { return Fixed{v: *rawOne} }

// FromUint64() converts an integer
func FromUint64(u uint64) Fixed {
	var f Fixed
	f.v.Lsh(uint256.NewInt(u), FracBits)
	return f
}

// FromRaw() wraps a raw 64.64 value
func FromRaw(raw *uint256.Int) (Fixed, lib.ErrorI) {
	if raw.Cmp(rawLimit) >= 0 {
		return Fixed{}, ErrOverflow()
	}
	return Fixed{v: *raw}, nil
}

// FromRational() returns floor(n / d) at 64 fractional bits
func FromRational(n, d lib.Balance) (Fixed, lib.ErrorI) {
	if d.IsZero() {
		return Fixed{}, ErrDivByZero()
	}
	q, overflow := new(uint256.Int).MulDivOverflow(n.Uint256(), rawOne, d.Uint256())
	if overflow {
		return Fixed{}, ErrOverflow()
	}
	return FromRaw(q)
}

// FromRationalUint64() is FromRational() for small constants
func FromRationalUint64(n, d uint64) (Fixed, lib.ErrorI) {
	return FromRational(lib.NewBalance(n), lib.NewBalance(d))
}

// FromPermill() converts a parts-per-million fraction
func FromPermill(p lib.Permill) Fixed {
	var f Fixed
	f.v.Div(new(uint256.Int).Mul(uint256.NewInt(uint64(p)), rawOne), million)
	return f
}

// FromPercent() converts a percentage
func FromPercent(p uint64) Fixed {
	var f Fixed
	f.v.Div(new(uint256.Int).Mul(uint256.NewInt(p), rawOne), hundredPct)
	return f
}

// Parse() converts a non-negative decimal string like "1.0005" rounding down to the nearest 2^-64
func Parse(s string) (Fixed, lib.ErrorI) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Fixed{}, ErrInvalidDecimal(s)
	}
	return FromDecimal(d)
}

// MustParse() is Parse() for constants and tests
func MustParse(s string) Fixed {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

// FromDecimal() converts a non-negative decimal rounding down to the nearest 2^-64
func FromDecimal(d decimal.Decimal) (Fixed, lib.ErrorI) {
	if d.Sign() < 0 {
		return Fixed{}, ErrNegativeDecimal()
	}
	raw, overflow := uint256.FromBig(d.Mul(decOne).BigInt())
	if overflow {
		return Fixed{}, ErrOverflow()
	}
	return FromRaw(raw)
}

// Raw() returns a copy of the raw 64.64 value
func (f Fixed) Raw() *uint256.Int { return new(uint256.Int).Set(&f.v) }

// Decimal() returns the exact decimal value; 64 fractional bits need at most 64 decimal places
func (f Fixed) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).Mul(f.v.ToBig(), fiveTo64), -FracBits)
}

// String() returns the exact decimal representation
func (f Fixed) String() string { return f.Decimal().String() }

// StringFixed() returns the decimal representation rounded to a number of places
func (f Fixed) StringFixed(places int32) string { return f.Decimal().StringFixed(places) }

func (f Fixed) IsZero() bool { return f.v.IsZero() }
func (f Fixed) IsOne() bool { return f.v.Eq(rawOne) }
func (f Fixed) Cmp(o Fixed) int { return f.v.Cmp(&o.v) }
func (f Fixed) Eq(o Fixed) bool { return f.v.Eq(&o.v) }
func (f Fixed) Lt(o Fixed) bool { return f.v.Lt(&o.v) }
func (f Fixed) Gt(o Fixed) bool { return f.v.Gt(&o.v) }
func (f Fixed) IntegerPart() uint64 { return new(uint256.Int).Rsh(&f.v, FracBits).Uint64() }

// Float64() returns the nearest float; for display only
func (f Fixed) Float64() float64 {
	v, _ := f.Decimal().Float64()
	return v
}

// Add() returns f + o
func (f Fixed) Add(o Fixed) (Fixed, lib.ErrorI) {
	return FromRaw(new(uint256.Int).Add(&f.v, &o.v))
}

// Sub() returns f - o
func (f Fixed) Sub(o Fixed) (Fixed, lib.ErrorI) {
	if f.v.Lt(&o.v) {
		return Fixed{}, ErrUnderflow()
	}
	return Fixed{v: *new(uint256.Int).Sub(&f.v, &o.v)}, nil
}

// Mul() returns f * o truncated
func (f Fixed) Mul(o Fixed) (Fixed, lib.ErrorI) {
	return FromRaw(new(uint256.Int).Rsh(new(uint256.Int).Mul(&f.v, &o.v), FracBits))
}

// Div() returns f / o truncated
func (f Fixed) Div(o Fixed) (Fixed, lib.ErrorI) {
	if o.IsZero() {
		return Fixed{}, ErrDivByZero()
	}
	q, overflow := new(uint256.Int).MulDivOverflow(&f.v, rawOne, &o.v)
	if overflow {
		return Fixed{}, ErrOverflow()
	}
	return FromRaw(q)
}

// Recip() returns 1 / f
func (f Fixed) Recip() (Fixed, lib.ErrorI) { return One().Div(f) }

// MulBalance() returns floor(f * b)
func (f Fixed) MulBalance(b lib.Balance) (lib.Balance, lib.ErrorI) {
	q, overflow := new(uint256.Int).MulDivOverflow(&f.v, b.Uint256(), rawOne)
	if overflow {
		return lib.Balance{}, lib.ErrBalanceOverflow()
	}
	return lib.NewBalanceFromUint256(q)
}

// MulBalanceCeil() returns ceil(f * b)
func (f Fixed) MulBalanceCeil(b lib.Balance) (lib.Balance, lib.ErrorI) {
	q, err := f.MulBalance(b)
	if err != nil {
		return lib.Balance{}, err
	}
	if !new(uint256.Int).MulMod(&f.v, b.Uint256(), rawOne).IsZero() {
		return q.Add(lib.NewBalance(1))
	}
	return q, nil
}

// DivBalance() returns floor(b / f)
func DivBalance(b lib.Balance, f Fixed) (lib.Balance, lib.ErrorI) {
	if f.IsZero() {
		return lib.Balance{}, ErrDivByZero()
	}
	q, overflow := new(uint256.Int).MulDivOverflow(b.Uint256(), rawOne, &f.v)
	if overflow {
		return lib.Balance{}, lib.ErrBalanceOverflow()
	}
	return lib.NewBalanceFromUint256(q)
}

// Min() returns the smaller of two numbers
func Min(a, b Fixed) Fixed {
	if a.Lt(b) {
		return a
	}
	return b
}

// MarshalJSON() encodes the number as a quoted decimal string
func (f Fixed) MarshalJSON() ([]byte, error) { return json.Marshal(f.String()) }

// UnmarshalJSON() decodes a quoted decimal string or a bare json number
func (f *Fixed) UnmarshalJSON(bz []byte) error {
	s := strings.Trim(strings.TrimSpace(string(bz)), `"`)
	if s == "" || s == "null" {
		*f = Fixed{}
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}
