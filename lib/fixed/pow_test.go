package fixed

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPowAccuracy(t *testing.T) {
	// expected values were computed at 90 significant digits from the exact 64.64 inputs
	tests := []struct {
		base     string
		exponent string
		expected string
		overflow bool
	}{
		{base: "0.5", exponent: "0.01", expected: "0.993092495437035901539180781757"},
		{base: "0.5", exponent: "0.1", expected: "0.933032991536807416002378821851"},
		{base: "0.5", exponent: "0.5", expected: "0.707106781186547524400844362105"},
		{base: "0.5", exponent: "1.5", expected: "0.353553390593273762200422181052"},
		{base: "0.5", exponent: "2", expected: "0.250000000000000000000000000000"},
		{base: "0.5", exponent: "7.25", expected: "0.006569503244169644867430667783"},
		{base: "0.5", exponent: "20", expected: "0.000000953674316406250000000000"},
		{base: "0.5", exponent: "42.5", expected: "0.000000000000160777467769218566"},
		{base: "0.5", exponent: "99.5", expected: "0.000000000000000000000000000001"},
		{base: "0.67", exponent: "0.01", expected: "0.996003232753887617840530295826"},
		{base: "0.67", exponent: "0.1", expected: "0.960743556153640316380104342950"},
		{base: "0.67", exponent: "0.5", expected: "0.818535277187244996971528224617"},
		{base: "0.67", exponent: "1.5", expected: "0.548418635715454147938975432365"},
		{base: "0.67", exponent: "2", expected: "0.448899999999999999947698087199"},
		{base: "0.67", exponent: "7.25", expected: "0.054833039406379896594469116943"},
		{base: "0.67", exponent: "20", expected: "0.000332273766170308566848711257"},
		{base: "0.67", exponent: "42.5", expected: "0.000000040567581262342890064094"},
		{base: "0.67", exponent: "99.5", expected: "0.000000000000000004948150139188"},
		{base: "0.75", exponent: "0.01", expected: "0.997127313358933506376131390001"},
		{base: "0.75", exponent: "0.1", expected: "0.971641657863073500582137373377"},
		{base: "0.75", exponent: "0.5", expected: "0.866025403784438646763723170753"},
		{base: "0.75", exponent: "1.5", expected: "0.649519052838328985072792378065"},
		{base: "0.75", exponent: "2", expected: "0.562500000000000000000000000000"},
		{base: "0.75", exponent: "7.25", expected: "0.124220753592302967705349450662"},
		{base: "0.75", exponent: "20", expected: "0.003171211938933993224054574966"},
		{base: "0.75", exponent: "42.5", expected: "0.000004898957751731085375748077"},
		{base: "0.75", exponent: "99.5", expected: "0.000000000000370335809015113452"},
		{base: "0.85", exponent: "0.01", expected: "0.998376130610015855995823330861"},
		{base: "0.85", exponent: "0.1", expected: "0.983879456540526289086597755292"},
		{base: "0.85", exponent: "0.5", expected: "0.921954445729288730982587692653"},
		{base: "0.85", exponent: "1.5", expected: "0.783661278869895421305211988365"},
		{base: "0.85", exponent: "2", expected: "0.722499999999999999944705689203"},
		{base: "0.85", exponent: "7.25", expected: "0.307813179883722098383651461741"},
		{base: "0.85", exponent: "20", expected: "0.038759531084514355843459765913"},
		{base: "0.85", exponent: "42.5", expected: "0.001000701020927099380206681664"},
		{base: "0.85", exponent: "99.5", expected: "0.000000094881842271382358323236"},
		{base: "0.95", exponent: "0.01", expected: "0.999487198583737707897910542982"},
		{base: "0.95", exponent: "0.1", expected: "0.994883803108176298865782904996"},
		{base: "0.95", exponent: "0.5", expected: "0.974679434480896390678279480199"},
		{base: "0.95", exponent: "1.5", expected: "0.925945462756851571133798010585"},
		{base: "0.95", exponent: "2", expected: "0.902499999999999999979400158723"},
		{base: "0.95", exponent: "7.25", expected: "0.689439462791917359211497014080"},
		{base: "0.95", exponent: "20", expected: "0.358485922408542234275584921312"},
		{base: "0.95", exponent: "42.5", expected: "0.113045485866527814628736232241"},
		{base: "0.95", exponent: "99.5", expected: "0.006074334812950305657981950986"},
		{base: "1.25", exponent: "0.01", expected: "1.002233927018233072494060140494"},
		{base: "1.25", exponent: "0.1", expected: "1.022565182563572927481209887885"},
		{base: "1.25", exponent: "0.5", expected: "1.118033988749894848204586834366"},
		{base: "1.25", exponent: "1.5", expected: "1.397542485937368560255733542957"},
		{base: "1.25", exponent: "2", expected: "1.562500000000000000000000000000"},
		{base: "1.25", exponent: "7.25", expected: "5.041939084246464345622239112990"},
		{base: "1.25", exponent: "20", expected: "86.736173798840354720596224069595"},
		{base: "1.25", exponent: "42.5", expected: "13142.426378028103395920969238818349"},
		{base: "1.25", exponent: "99.5", expected: "4390826678.522288579578181987777186015416"},
		{base: "1.5", exponent: "0.01", expected: "1.004062882299923109788636688541"},
		{base: "1.5", exponent: "0.1", expected: "1.041379743992410586832457101999"},
		{base: "1.5", exponent: "0.5", expected: "1.224744871391589049098642037353"},
		{base: "1.5", exponent: "1.5", expected: "1.837117307087383573647963056029"},
		{base: "1.5", exponent: "2", expected: "2.250000000000000000000000000000"},
		{base: "1.5", exponent: "7.25", expected: "18.908698112379713457797065062609"},
		{base: "1.5", exponent: "20", expected: "3325.256730079650878906250000000000"},
		{base: "1.5", exponent: "42.5", expected: "30470424.865523406042865631144748227488"},
		{base: "1.5", exponent: "99.5", expected: "331955811395453459.196536555252340306067698698248"},
		{base: "2", exponent: "0.01", expected: "1.006955550056718808826644303264"},
		{base: "2", exponent: "0.1", expected: "1.071773462536293164188842816793"},
		{base: "2", exponent: "0.5", expected: "1.414213562373095048801688724210"},
		{base: "2", exponent: "1.5", expected: "2.828427124746190097603377448419"},
		{base: "2", exponent: "2", expected: "4.000000000000000000000000000000"},
		{base: "2", exponent: "7.25", expected: "152.218510720348296539839996231741"},
		{base: "2", exponent: "20", expected: "1048576.000000000000000000000000000000"},
		{base: "2", exponent: "42.5", expected: "6219777023950.949770140443709493879494134558"},
		{base: "2", exponent: "99.5", overflow: true},
	}
	absTolerance := decimal.RequireFromString("0.000000000000000001")
	relTolerance := decimal.RequireFromString("0.000000000000001")
	for _, test := range tests {
		t.Run(test.base+"^"+test.exponent, func(t *testing.T) {
			got, err := Pow(MustParse(test.base), MustParse(test.exponent))
			if test.overflow {
				require.ErrorContains(t, err, ErrOverflow().Error())
				return
			}
			require.NoError(t, err)
			want := decimal.RequireFromString(test.expected)
			tolerance := decimal.Max(absTolerance, want.Mul(relTolerance))
			diff := got.Decimal().Sub(want).Abs()
			require.Truef(t, diff.LessThanOrEqual(tolerance), "got %s want %s diff %s", got, want, diff)
		})
	}
}

func TestPowSpecialCases(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		base     Fixed
		exponent Fixed
		expected Fixed
		err      bool
	}{
		{
			name:     "zero exponent",
			detail:   "anything to the zero is one",
			base:     MustParse("12.5"),
			exponent: Zero(),
			expected: One(),
		},
		{
			name:     "zero to the zero",
			detail:   "0^0 is defined as one",
			base:     Zero(),
			exponent: Zero(),
			expected: One(),
		},
		{
			name:     "zero base",
			detail:   "zero to a positive power is zero",
			base:     Zero(),
			exponent: MustParse("0.37"),
			expected: Zero(),
		},
		{
			name:     "unit exponent",
			detail:   "x^1 is x bit for bit",
			base:     MustParse("0.123456789"),
			exponent: One(),
			expected: MustParse("0.123456789"),
		},
		{
			name:     "integer power of two",
			detail:   "2^10 is exact",
			base:     FromUint64(2),
			exponent: FromUint64(10),
			expected: FromUint64(1024),
		},
		{
			name:     "largest power of two",
			detail:   "2^63 is the largest power of two that fits",
			base:     FromUint64(2),
			exponent: FromUint64(63),
			expected: FromUint64(1 << 63),
		},
		{
			name:     "overflow at 2^64",
			detail:   "the integer part only has 64 bits",
			base:     FromUint64(2),
			exponent: FromUint64(64),
			err:      true,
		},
		{
			name:     "overflow at 2^96",
			detail:   "results far beyond the range overflow",
			base:     FromUint64(2),
			exponent: FromUint64(96),
			err:      true,
		},
		{
			name:     "underflow to zero",
			detail:   "results below the smallest step round to zero",
			base:     MustParse("0.5"),
			exponent: FromUint64(70),
			expected: Zero(),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Pow(test.base, test.exponent)
			if test.err {
				require.Error(t, err, test.detail)
				return
			}
			require.NoError(t, err, test.detail)
			require.Equal(t, test.expected.String(), got.String(), test.detail)
		})
	}
}

func TestPowOneIsExact(t *testing.T) {
	for _, exponent := range []string{"0.0000001", "0.5", "1", "3.1415", "99.5", "18446744073709551615"} {
		got, err := Pow(One(), MustParse(exponent))
		require.NoError(t, err)
		require.True(t, got.IsOne(), "1^%s must be exactly one", exponent)
	}
}

func TestPowMonotonic(t *testing.T) {
	// for a base below one the result decreases as the exponent grows
	base := MustParse("0.9")
	prev := One()
	for _, exponent := range []string{"0.1", "0.2", "0.5", "1.1", "2", "3.7", "10"} {
		got, err := Pow(base, MustParse(exponent))
		require.NoError(t, err)
		require.True(t, got.Lt(prev), "0.9^%s = %s must be below %s", exponent, got, prev)
		prev = got
	}
}

func TestPowUint64(t *testing.T) {
	got, err := PowUint64(MustParse("1.5"), 4)
	require.NoError(t, err)
	require.Equal(t, "5.0625", got.String())
	got, err = PowUint64(MustParse("0.3"), 0)
	require.NoError(t, err)
	require.True(t, got.IsOne())
	_, err = PowUint64(FromUint64(2), 64)
	require.Error(t, err)
}
