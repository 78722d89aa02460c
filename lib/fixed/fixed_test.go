package fixed

import (
	"encoding/json"
	"testing"

	"github.com/canopy-network/omniroute/lib"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		input    string
		expected string
		err      bool
	}{
		{
			name:     "integer",
			detail:   "integers are exact",
			input:    "42",
			expected: "42",
		},
		{
			name:     "binary fraction",
			detail:   "fractions with a power of two denominator are exact",
			input:    "0.375",
			expected: "0.375",
		},
		{
			name:     "largest integer part",
			detail:   "2^64 - 1 still fits",
			input:    "18446744073709551615",
			expected: "18446744073709551615",
		},
		{
			name:   "too large",
			detail: "2^64 does not fit into the integer part",
			input:  "18446744073709551616",
			err:    true,
		},
		{
			name:   "negative",
			detail: "the type is unsigned",
			input:  "-1",
			err:    true,
		},
		{
			name:   "garbage",
			detail: "non decimal input is rejected",
			input:  "one",
			err:    true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(test.input)
			if test.err {
				require.Error(t, err, test.detail)
				return
			}
			require.NoError(t, err, test.detail)
			require.Equal(t, test.expected, got.String(), test.detail)
		})
	}
}

func TestArithmetic(t *testing.T) {
	a, b := MustParse("2.5"), MustParse("0.5")
	// add
	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, "3", sum.String())
	// sub
	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, "2", diff.String())
	_, err = b.Sub(a)
	require.Error(t, err)
	// mul
	prod, err := a.Mul(b)
	require.NoError(t, err)
	require.Equal(t, "1.25", prod.String())
	_, err = FromUint64(1 << 40).Mul(FromUint64(1 << 40))
	require.Error(t, err)
	// div
	quo, err := a.Div(b)
	require.NoError(t, err)
	require.Equal(t, "5", quo.String())
	_, err = a.Div(Zero())
	require.Error(t, err)
	// reciprocal
	recip, err := b.Recip()
	require.NoError(t, err)
	require.True(t, recip.Eq(FromUint64(2)))
}

func TestRationalAndBalances(t *testing.T) {
	// 1/4 from balances
	q, err := FromRational(lib.NewBalance(1), lib.NewBalance(4))
	require.NoError(t, err)
	require.Equal(t, "0.25", q.String())
	_, err = FromRational(lib.NewBalance(1), lib.ZeroBalance())
	require.Error(t, err)
	// permill and percent
	require.Equal(t, "0.5", FromPermill(500_000).String())
	require.Equal(t, "0.1", FromPercent(10).StringFixed(1))
	// floor(0.25 * 10) = 2, ceil = 3
	floor, err := q.MulBalance(lib.NewBalance(10))
	require.NoError(t, err)
	require.Equal(t, "2", floor.String())
	ceil, err := q.MulBalanceCeil(lib.NewBalance(10))
	require.NoError(t, err)
	require.Equal(t, "3", ceil.String())
	// 10 / 0.25 = 40
	div, err := DivBalance(lib.NewBalance(10), q)
	require.NoError(t, err)
	require.Equal(t, "40", div.String())
	// 128-bit balances survive a multiplication by a price below one
	big := lib.MaxBalance()
	half, err := MustParse("0.5").MulBalance(big)
	require.NoError(t, err)
	require.Equal(t, "170141183460469231731687303715884105727", half.String())
}

func TestFixedJSON(t *testing.T) {
	f := MustParse("1.5")
	bz, err := json.Marshal(f)
	require.NoError(t, err)
	require.Equal(t, `"1.5"`, string(bz))
	got := new(Fixed)
	require.NoError(t, json.Unmarshal(bz, got))
	require.True(t, got.Eq(f))
	require.NoError(t, json.Unmarshal([]byte(`2.25`), got))
	require.Equal(t, "2.25", got.String())
}
