package xyk

import (
	"testing"

	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
	"github.com/canopy-network/omniroute/store"
	"github.com/stretchr/testify/require"
)

const (
	testNative lib.AssetId = 0
	testDai    lib.AssetId = 2
	testToken  lib.AssetId = 3
)

var (
	alice = crypto.AddressFromName("alice")
	bob   = crypto.AddressFromName("bob")
)

func TestCreatePool(t *testing.T) {
	tests := []struct {
		name    string
		detail  string
		assetA  lib.AssetId
		amountA uint64
		assetB  lib.AssetId
		amountB uint64
		error   lib.ErrorI
	}{
		{
			name:    "same asset",
			detail:  "a pool needs two distinct assets",
			assetA:  testNative,
			amountA: 1_000_000,
			assetB:  testNative,
			amountB: 1_000_000,
			error:   ErrCannotCreatePoolSameAssets(),
		},
		{
			name:    "low liquidity",
			detail:  "both reserves must reach the minimum",
			assetA:  testNative,
			amountA: 1_000_000,
			assetB:  testDai,
			amountB: 999,
			error:   ErrInsufficientLiquidity(),
		},
		{
			name:    "already exists",
			detail:  "the pair already has a pool, in either orientation",
			assetA:  testDai,
			amountA: 1_000_000,
			assetB:  testNative,
			amountB: 1_000_000,
			error:   ErrTokenPoolAlreadyExists(),
		},
		{
			name:    "created",
			detail:  "a new pair gets a pool",
			assetA:  testToken,
			amountA: 5_000_000,
			assetB:  testDai,
			amountB: 1_000_000,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			x, _, _ := newTestXYK(t)
			err := x.CreatePool(alice, test.assetA, lib.NewBalance(test.amountA), test.assetB, lib.NewBalance(test.amountB))
			if test.error != nil {
				require.True(t, lib.Is(err, test.error), test.detail)
				return
			}
			require.NoError(t, err, test.detail)
			pair := lib.NewAssetPair(test.assetA, test.assetB)
			p, err := x.GetPool(pair)
			require.NoError(t, err)
			require.Equal(t, pair.Ordered(), p.Assets)
			// the creator holds shares equal to the reserve of the lower asset id
			require.Equal(t, "1000000", p.TotalShares.String())
			shares, err := x.GetShares(pair, alice)
			require.NoError(t, err)
			require.Equal(t, p.TotalShares, shares)
		})
	}
}

func TestSell(t *testing.T) {
	x, sm, observer := newTestXYK(t)
	trade := lib.Trade{Pool: lib.XYKPool, AssetIn: testNative, AssetOut: testDai}
	amountIn := lib.NewBalance(1_000_000_000_000)
	// pure calculation matches the validated transfer
	out, err := x.CalculateSell(trade, amountIn)
	require.NoError(t, err)
	require.Equal(t, "1812727272727", out.String())
	tr, err := x.ValidateSell(alice, trade, amountIn, out, false)
	require.NoError(t, err)
	require.Equal(t, out, tr.AmountOut)
	require.Equal(t, lib.Fee{Asset: testDai, Amount: lib.NewBalance(5_454_545_454)}, tr.Fee)
	require.NoError(t, x.ExecuteSell(tr))
	// reserves moved
	reserveIn, reserveOut, err := x.GetReserves(lib.NewAssetPair(testNative, testDai))
	require.NoError(t, err)
	require.Equal(t, "11000000000000", reserveIn.String())
	require.Equal(t, "18187272727273", reserveOut.String())
	// the trader received the output
	dai, err := sm.GetBalance(alice, testDai)
	require.NoError(t, err)
	require.Equal(t, "81812727272727", dai.String())
	// the trade was recorded and observed
	events, err := sm.GetEvents(sm.Height())
	require.NoError(t, err)
	swaps := events.OfType(lib.EventTypeSwapped)
	require.Len(t, swaps, 1)
	require.Equal(t, lib.XYKPool, swaps[0].Swapped.FillerType)
	require.Equal(t, []lib.AssetAmount{{Asset: testDai, Amount: out}}, swaps[0].Swapped.Outputs)
	require.Equal(t, []observation{{source: "xyk", in: testNative, out: testDai, price: lib.NewPrice(reserveIn, reserveOut)}}, observer.seen)
}

func TestSellDiscount(t *testing.T) {
	x, _, _ := newTestXYK(t)
	trade := lib.Trade{Pool: lib.XYKPool, AssetIn: testNative, AssetOut: testDai}
	tr, err := x.ValidateSell(alice, trade, lib.NewBalance(1_000_000_000_000), lib.ZeroBalance(), true)
	require.NoError(t, err)
	require.Equal(t, "1816909090909", tr.AmountOut.String())
	require.True(t, tr.Discount)
}

func TestSellLimits(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		who      crypto.AddressI
		trade    lib.Trade
		amountIn uint64
		minOut   uint64
		error    lib.ErrorI
	}{
		{
			name:     "no pool",
			detail:   "the pair has no pool",
			who:      alice,
			trade:    lib.Trade{Pool: lib.XYKPool, AssetIn: testNative, AssetOut: testToken},
			amountIn: 1_000_000,
			error:    ErrTokenPoolNotFound(),
		},
		{
			name:     "below minimum",
			detail:   "the amount in is below the minimum trading limit",
			who:      alice,
			trade:    lib.Trade{Pool: lib.XYKPool, AssetIn: testNative, AssetOut: testDai},
			amountIn: MinTradingLimit - 1,
			error:    ErrInsufficientTradingAmount(),
		},
		{
			name:     "max in ratio",
			detail:   "the amount in exceeds a third of the reserve",
			who:      alice,
			trade:    lib.Trade{Pool: lib.XYKPool, AssetIn: testNative, AssetOut: testDai},
			amountIn: 3_333_333_333_334,
			error:    ErrMaxInRatioExceeded(),
		},
		{
			name:     "limit",
			detail:   "the output is below the minimum out",
			who:      alice,
			trade:    lib.Trade{Pool: lib.XYKPool, AssetIn: testNative, AssetOut: testDai},
			amountIn: 1_000_000_000_000,
			minOut:   1_812_727_272_728,
			error:    ErrTradingLimitReached(),
		},
		{
			name:     "balance",
			detail:   "the trader does not hold the amount in",
			who:      bob,
			trade:    lib.Trade{Pool: lib.XYKPool, AssetIn: testDai, AssetOut: testNative},
			amountIn: 1_000_000,
			error:    ErrInsufficientAssetBalance(),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			x, _, _ := newTestXYK(t)
			_, err := x.ValidateSell(test.who, test.trade, lib.NewBalance(test.amountIn), lib.NewBalance(test.minOut), false)
			require.True(t, lib.Is(err, test.error), test.detail)
		})
	}
}

func TestBuy(t *testing.T) {
	x, sm, _ := newTestXYK(t)
	trade := lib.Trade{Pool: lib.XYKPool, AssetIn: testNative, AssetOut: testDai}
	amountOut := lib.NewBalance(1_000_000_000_000)
	in, err := x.CalculateBuy(trade, amountOut)
	require.NoError(t, err)
	require.Equal(t, "527894736842", in.String())
	// the max amount in is enforced
	_, err = x.ValidateBuy(alice, trade, amountOut, lib.NewBalance(527_894_736_841), false)
	require.True(t, lib.Is(err, ErrTradingLimitReached()))
	// more than a third of the reserve out
	_, err = x.ValidateBuy(alice, trade, lib.NewBalance(6_666_666_666_667), lib.MaxBalance(), false)
	require.True(t, lib.Is(err, ErrMaxOutRatioExceeded()))
	tr, err := x.ValidateBuy(alice, trade, amountOut, in, false)
	require.NoError(t, err)
	require.Equal(t, lib.Fee{Asset: testNative, Amount: lib.NewBalance(1_578_947_368)}, tr.Fee)
	require.NoError(t, x.ExecuteBuy(tr))
	native, err := sm.GetBalance(alice, testNative)
	require.NoError(t, err)
	require.Equal(t, "89472105263158", native.String())
}

func TestSpotPrice(t *testing.T) {
	x, _, _ := newTestXYK(t)
	trade := lib.Trade{Pool: lib.XYKPool, AssetIn: testDai, AssetOut: testNative}
	price, err := x.SpotPrice(trade)
	require.NoError(t, err)
	require.Equal(t, "20000000000000/10000000000000", price.String())
	require.Equal(t, "500", x.SpotPriceUnchecked(trade, lib.NewBalance(1_000)).String())
	// an unknown pool prices to zero instead of failing
	require.True(t, x.SpotPriceUnchecked(lib.Trade{Pool: lib.XYKPool, AssetIn: testDai, AssetOut: testToken}, lib.NewBalance(1_000)).IsZero())
	require.Equal(t, FeeRate, x.Fee(trade))
	require.False(t, x.SellWeight(trade).IsZero())
}

func TestLiquidity(t *testing.T) {
	x, sm, _ := newTestXYK(t)
	pair := lib.NewAssetPair(testNative, testDai)
	// the second asset follows the pool ratio
	require.True(t, lib.Is(x.AddLiquidity(alice, testNative, testDai, lib.NewBalance(1_000_000_000_000), lib.NewBalance(1_999_999_999_999)), ErrTradingLimitReached()))
	require.NoError(t, x.AddLiquidity(alice, testNative, testDai, lib.NewBalance(1_000_000_000_000), lib.NewBalance(2_000_000_000_000)))
	p, err := x.GetPool(pair)
	require.NoError(t, err)
	require.Equal(t, "11000000000000", p.TotalShares.String())
	reserveA, reserveB, err := x.GetReserves(pair)
	require.NoError(t, err)
	require.Equal(t, "11000000000000", reserveA.String())
	require.Equal(t, "22000000000000", reserveB.String())
	// bob holds no shares
	require.True(t, lib.Is(x.RemoveLiquidity(bob, testNative, testDai, lib.NewBalance(1)), ErrInsufficientShares()))
	// removing every share returns the reserves and destroys the pool
	require.NoError(t, x.RemoveLiquidity(alice, testDai, testNative, p.TotalShares))
	_, err = x.GetPool(pair)
	require.True(t, lib.Is(err, ErrTokenPoolNotFound()))
	require.False(t, x.Exists(lib.Trade{Pool: lib.XYKPool, AssetIn: testNative, AssetOut: testDai}))
	native, err := sm.GetBalance(alice, testNative)
	require.NoError(t, err)
	require.Equal(t, "100000000000000", native.String())
	events, err := sm.GetEvents(sm.Height())
	require.NoError(t, err)
	require.Len(t, events.OfType(lib.EventTypeLiquidityAdded), 1)
	require.Len(t, events.OfType(lib.EventTypeLiquidityRemoved), 1)
}

type observation struct {
	source  string
	in, out lib.AssetId
	price   lib.Price
}

// recorder is a price observer that keeps every report
type recorder struct{ seen []observation }

func (r *recorder) OnTrade(source string, in, out lib.AssetId, price lib.Price) lib.ErrorI {
	r.seen = append(r.seen, observation{source: source, in: in, out: out, price: price})
	return nil
}

// newTestXYK() returns a ledger with a native/dai pool of 10 native to 20 dai created by alice
func newTestXYK(t *testing.T) (*XYK, *fsm.StateMachine, *recorder) {
	log := lib.NewNullLogger()
	db, err := store.NewStoreInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sm := fsm.New(lib.DefaultConfig(), db, nil, log)
	require.NoError(t, sm.NewStateFromGenesis(&fsm.GenesisState{
		Assets: []*fsm.Asset{
			{Id: testNative, Name: "Native", Symbol: "HDX", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000_000), Sufficient: true},
			{Id: testDai, Name: "Dai", Symbol: "DAI", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000), Sufficient: true},
			{Id: testToken, Name: "Token", Symbol: "TKN", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000), Sufficient: true},
		},
		Accounts: []*fsm.GenesisAccount{
			{Address: "alice", Balances: []lib.AssetAmount{
				{Asset: testNative, Amount: lib.NewBalance(100_000_000_000_000)},
				{Asset: testDai, Amount: lib.NewBalance(100_000_000_000_000)},
				{Asset: testToken, Amount: lib.NewBalance(100_000_000_000_000)},
			}},
			{Address: "bob", Balances: []lib.AssetAmount{{Asset: testNative, Amount: lib.NewBalance(10_000_000_000_000)}}},
		},
	}))
	require.NoError(t, sm.Commit())
	require.NoError(t, sm.BeginBlock())
	observer := new(recorder)
	x := New(sm, observer)
	require.NoError(t, x.CreatePool(alice, testNative, lib.NewBalance(10_000_000_000_000), testDai, lib.NewBalance(20_000_000_000_000)))
	return x, sm, observer
}
