package lib

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

/* This file implements the 128-bit unsigned amount used for every asset balance and pool reserve */

// BalanceSize is the number of bytes of a serialized Balance
const BalanceSize = 16

// maxBalance is 2^128 - 1
var maxBalance = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// Balance is an unsigned 128-bit amount of an asset
// All arithmetic is checked; a result outside of [0, 2^128) is an error rather than a wrap
type Balance struct {
	v uint256.Int
}

// NewBalance() creates a Balance from a uint64
func NewBalance(u uint64) Balance {
	var b Balance
	b.v.SetUint64(u)
	return b
}

// ZeroBalance() returns the zero amount
func ZeroBalance() Balance { return Balance{} }

// MaxBalance() returns the largest representable amount
func MaxBalance() Balance { return Balance{v: *maxBalance} }

// NewBalanceFromUint256() converts a 256-bit integer, failing if it doesn't fit into 128 bits
func NewBalanceFromUint256(u *uint256.Int) (Balance, ErrorI) {
	if u == nil {
		return Balance{}, nil
	}
	if u.Gt(maxBalance) {
		return Balance{}, ErrBalanceOverflow()
	}
	return Balance{v: *u}, nil
}

// NewBalanceFromString() parses a base 10 integer string
func NewBalanceFromString(s string) (Balance, ErrorI) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	u, err := uint256.FromDecimal(s)
	if err != nil {
		return Balance{}, ErrInvalidBalance(s)
	}
	return NewBalanceFromUint256(u)
}

// NewBalanceFromBytes() decodes a 16 byte big endian amount
func NewBalanceFromBytes(bz []byte) (Balance, ErrorI) {
	if len(bz) > 32 {
		return Balance{}, ErrInvalidBalance(fmt.Sprintf("%x", bz))
	}
	return NewBalanceFromUint256(new(uint256.Int).SetBytes(bz))
}

// MustBalance() parses a base 10 integer string and panics on failure; used for constants and tests
func MustBalance(s string) Balance {
	b, err := NewBalanceFromString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Uint256() returns a copy of the underlying 256-bit integer
func (b Balance) Uint256() *uint256.Int { return new(uint256.Int).Set(&b.v) }

// Uint64() returns the amount as uint64 and false if it doesn't fit
func (b Balance) Uint64() (uint64, bool) { return b.v.Uint64(), b.v.IsUint64() }

// IsZero() returns true if the amount is zero
func (b Balance) IsZero() bool { return b.v.IsZero() }

// Cmp() returns -1, 0 or 1 if b is less than, equal to or greater than o
func (b Balance) Cmp(o Balance) int { return b.v.Cmp(&o.v) }

func (b Balance) Eq(o Balance) bool { return b.v.Eq(&o.v) }
func (b Balance) Lt(o Balance) bool { return b.v.Lt(&o.v) }
func (b Balance) Lte(o Balance) bool { return !b.v.Gt(&o.v) }
func (b Balance) Gt(o Balance) bool { return b.v.Gt(&o.v) }
func (b Balance) Gte(o Balance) bool { return !b.v.Lt(&o.v) }

// Add() returns b + o
func (b Balance) Add(o Balance) (Balance, ErrorI) {
	z, overflow := new(uint256.Int).AddOverflow(&b.v, &o.v)
	if overflow || z.Gt(maxBalance) {
		return Balance{}, ErrBalanceOverflow()
	}
	return Balance{v: *z}, nil
}

// Sub() returns b - o
func (b Balance) Sub(o Balance) (Balance, ErrorI) {
	if b.v.Lt(&o.v) {
		return Balance{}, ErrBalanceUnderflow()
	}
	return Balance{v: *new(uint256.Int).Sub(&b.v, &o.v)}, nil
}

// SaturatingSub() returns b - o or zero if o > b
func (b Balance) SaturatingSub(o Balance) Balance {
	if b.v.Lt(&o.v) {
		return Balance{}
	}
	return Balance{v: *new(uint256.Int).Sub(&b.v, &o.v)}
}

// Mul() returns b * o
func (b Balance) Mul(o Balance) (Balance, ErrorI) {
	z, overflow := new(uint256.Int).MulOverflow(&b.v, &o.v)
	if overflow {
		return Balance{}, ErrBalanceOverflow()
	}
	return NewBalanceFromUint256(z)
}

// Div() returns floor(b / o)
func (b Balance) Div(o Balance) (Balance, ErrorI) {
	if o.IsZero() {
		return Balance{}, ErrDivideByZero()
	}
	return Balance{v: *new(uint256.Int).Div(&b.v, &o.v)}, nil
}

// MulDiv() returns floor(b * n / d) with a 512-bit intermediate product
func (b Balance) MulDiv(n, d Balance) (Balance, ErrorI) {
	if d.IsZero() {
		return Balance{}, ErrDivideByZero()
	}
	z, overflow := new(uint256.Int).MulDivOverflow(&b.v, &n.v, &d.v)
	if overflow {
		return Balance{}, ErrBalanceOverflow()
	}
	return NewBalanceFromUint256(z)
}

// MulDivCeil() returns ceil(b * n / d)
func (b Balance) MulDivCeil(n, d Balance) (Balance, ErrorI) {
	q, err := b.MulDiv(n, d)
	if err != nil {
		return Balance{}, err
	}
	if !new(uint256.Int).MulMod(&b.v, &n.v, &d.v).IsZero() {
		return q.Add(NewBalance(1))
	}
	return q, nil
}

// Bytes() returns the 16 byte big endian representation
func (b Balance) Bytes() []byte {
	full := b.v.Bytes32()
	out := make([]byte, BalanceSize)
	copy(out, full[32-BalanceSize:])
	return out
}

// String() returns the base 10 representation
func (b Balance) String() string { return b.v.Dec() }

// MarshalJSON() encodes the amount as a quoted base 10 string; 128-bit values don't survive json numbers
func (b Balance) MarshalJSON() ([]byte, error) { return json.Marshal(b.String()) }

// UnmarshalJSON() accepts either a quoted base 10 string or a bare json number
func (b *Balance) UnmarshalJSON(bz []byte) error {
	s := strings.Trim(strings.TrimSpace(string(bz)), `"`)
	if s == "" || s == "null" {
		*b = Balance{}
		return nil
	}
	v, err := NewBalanceFromString(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Decode() allows envconfig to populate a Balance from an environment variable
func (b *Balance) Decode(value string) error {
	v, err := NewBalanceFromString(value)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// MinBalance() returns the smaller of two amounts
func MinBalance(a, b Balance) Balance {
	if a.Lt(b) {
		return a
	}
	return b
}

// SumBalances() adds a list of amounts
func SumBalances(amounts ...Balance) (sum Balance, err ErrorI) {
	for _, a := range amounts {
		if sum, err = sum.Add(a); err != nil {
			return
		}
	}
	return
}
