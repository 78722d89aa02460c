package lbp

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
	testDai    lib.AssetId = 2 // accumulated
	testToken  lib.AssetId = 3 // sold
	testCredit lib.AssetId = 5 // insufficient
)

var (
	alice     = crypto.AddressFromName("alice")
	bob       = crypto.AddressFromName("bob")
	collector = crypto.AddressFromName("collector")
)

func TestWeights(t *testing.T) {
	tests := []struct {
		name        string
		detail      string
		initial     uint32
		final       uint32
		height      uint64
		accumulated uint64
	}{
		{
			name:        "before start",
			detail:      "the initial weight holds until the sale starts",
			initial:     20_000_000,
			final:       80_000_000,
			height:      5,
			accumulated: 20_000_000,
		},
		{
			name:        "midway increasing",
			detail:      "the weight is interpolated linearly",
			initial:     20_000_000,
			final:       80_000_000,
			height:      15,
			accumulated: 50_000_000,
		},
		{
			name:        "midway decreasing",
			detail:      "a falling weight is interpolated linearly",
			initial:     80_000_000,
			final:       20_000_000,
			height:      13,
			accumulated: 62_000_000,
		},
		{
			name:        "after end",
			detail:      "the final weight holds after the sale",
			initial:     20_000_000,
			final:       80_000_000,
			height:      100,
			accumulated: 80_000_000,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := &Pool{Start: 10, End: 20, InitialWeight: test.initial, FinalWeight: test.final}
			accumulated, sold := p.Weights(test.height)
			require.Equal(t, test.accumulated, accumulated, test.detail)
			require.EqualValues(t, MaxWeight, accumulated+sold, test.detail)
		})
	}
}

func TestCreatePoolParams(t *testing.T) {
	tests := []struct {
		name   string
		detail string
		params func(p *PoolParams)
	}{
		{
			name:   "inverted window",
			detail: "the sale must end after it starts",
			params: func(p *PoolParams) { p.Start, p.End = 10, 5 },
		},
		{
			name:   "zero weight",
			detail: "weights must be inside (0, MaxWeight)",
			params: func(p *PoolParams) { p.InitialWeight = 0 },
		},
		{
			name:   "full weight",
			detail: "weights must be inside (0, MaxWeight)",
			params: func(p *PoolParams) { p.FinalWeight = MaxWeight },
		},
		{
			name:   "fee",
			detail: "the fee must be below 100%",
			params: func(p *PoolParams) { p.Fee = lib.PermillDenominator },
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l, sm, _ := newTestLBP(t, 0)
			params := defaultParams(sm.Height())
			test.params(&params)
			err := l.CreatePool(alice, testNative, lib.NewBalance(1_000_000), testToken, lib.NewBalance(1_000_000), params)
			require.True(t, lib.Is(err, ErrInvalidPoolParameters("")), test.detail)
		})
	}
}

func TestSellAccumulated(t *testing.T) {
	l, sm, observer := newTestLBP(t, 0)
	trade := lib.Trade{Pool: lib.LBPPool, AssetIn: testDai, AssetOut: testToken}
	tr, err := l.ValidateSell(bob, trade, lib.NewBalance(100_000_000_000), lib.ZeroBalance(), false)
	require.NoError(t, err)
	// the fee is withheld from the accumulated input
	require.Equal(t, lib.Fee{Asset: testDai, Amount: lib.NewBalance(200_000_000)}, tr.Fee)
	out, _ := tr.AmountOut.Uint64()
	require.InDelta(t, 94_006_084_010, float64(out), 2)
	require.NoError(t, l.ExecuteSell(tr))
	requireBalance(t, sm, collector, testDai, "200000000")
	requireBalance(t, sm, PoolAddress(lib.NewAssetPair(testDai, testToken)), testDai, "1099800000000")
	requireBalance(t, sm, bob, testToken, tr.AmountOut.String())
	require.Len(t, observer.seen, 1)
	require.Equal(t, "lbp", observer.seen[0])
}

func TestSellForAccumulated(t *testing.T) {
	l, sm, _ := newTestLBP(t, 0)
	// give bob some of the sold asset first
	require.NoError(t, sm.Transfer(alice, bob, testToken, lib.NewBalance(100_000_000_000)))
	trade := lib.Trade{Pool: lib.LBPPool, AssetIn: testToken, AssetOut: testDai}
	tr, err := l.ValidateSell(bob, trade, lib.NewBalance(100_000_000_000), lib.ZeroBalance(), false)
	require.NoError(t, err)
	// the fee is withheld from the accumulated output and paid by the pool
	fee, _ := tr.Fee.Amount.Uint64()
	out, _ := tr.AmountOut.Uint64()
	require.InDelta(t, 188_098_710, float64(fee), 1)
	require.InDelta(t, 94_049_355_200-188_098_710, float64(out), 2)
	require.NoError(t, l.ExecuteSell(tr))
	requireBalance(t, sm, collector, testDai, tr.Fee.Amount.String())
}

func TestFeeCollectorWithoutNative(t *testing.T) {
	l, sm, _ := newTestLBP(t, 0)
	// a collector holding nothing receives an insufficient accumulated asset
	fresh := crypto.AddressFromName("fresh-collector")
	params := defaultParams(sm.Height())
	params.FeeCollector = fresh
	require.NoError(t, l.CreatePool(alice, testCredit, lib.NewBalance(1_000_000_000_000), testNative, lib.NewBalance(4_000_000_000_000), params))
	trade := lib.Trade{Pool: lib.LBPPool, AssetIn: testCredit, AssetOut: testNative}
	tr, err := l.ValidateSell(bob, trade, lib.NewBalance(100_000_000_000), lib.ZeroBalance(), false)
	require.NoError(t, err)
	require.NoError(t, l.ExecuteSell(tr))
	requireBalance(t, sm, fresh, testCredit, "200000000")
	_, found, err := sm.GetDeposit(fresh, testCredit)
	require.NoError(t, err)
	require.False(t, found)
	requireBalance(t, sm, fsm.TreasuryAddress(), testNative, "0")
	// the other direction pays the fee out of the pool
	tr, err = l.ValidateSell(bob, trade.Inverse(), lib.NewBalance(100_000_000_000), lib.ZeroBalance(), false)
	require.NoError(t, err)
	require.NoError(t, l.ExecuteSell(tr))
	require.Equal(t, testCredit, tr.Fee.Asset)
}

func TestBuy(t *testing.T) {
	l, sm, _ := newTestLBP(t, 0)
	trade := lib.Trade{Pool: lib.LBPPool, AssetIn: testDai, AssetOut: testToken}
	in, err := l.CalculateBuy(trade, lib.NewBalance(100_000_000_000))
	require.NoError(t, err)
	amountIn, _ := in.Uint64()
	require.InDelta(t, 106_789_893_498, float64(amountIn), 3)
	_, err = l.ValidateBuy(bob, trade, lib.NewBalance(100_000_000_000), lib.NewBalance(amountIn-1), false)
	require.True(t, lib.Is(err, ErrTradingLimitReached()))
	tr, err := l.ValidateBuy(bob, trade, lib.NewBalance(100_000_000_000), in, false)
	require.NoError(t, err)
	require.NoError(t, l.ExecuteBuy(tr))
	requireBalance(t, sm, bob, testToken, "100000000000")
	requireBalance(t, sm, collector, testDai, tr.Fee.Amount.String())
	// more than a third of the sold balance
	_, err = l.CalculateBuy(trade, lib.NewBalance(1_400_000_000_000))
	require.True(t, lib.Is(err, ErrMaxOutRatioExceeded()))
}

func TestSaleWindow(t *testing.T) {
	l, sm, _ := newTestLBP(t, 5)
	trade := lib.Trade{Pool: lib.LBPPool, AssetIn: testDai, AssetOut: testToken}
	require.True(t, l.Exists(trade))
	require.False(t, l.IsTradable(trade, lib.DirectionSell))
	_, err := l.ValidateSell(bob, trade, lib.NewBalance(1_000_000), lib.ZeroBalance(), false)
	require.True(t, lib.Is(err, ErrSaleIsNotRunning()))
	// the owner may change liquidity before the sale
	pair := lib.NewAssetPair(testToken, testDai)
	require.True(t, lib.Is(l.AddLiquidity(bob, pair, lib.NewBalance(1), lib.ZeroBalance()), ErrNotAllowed()))
	require.NoError(t, l.AddLiquidity(alice, pair, lib.ZeroBalance(), lib.NewBalance(1_000_000)))
	// advance into the sale
	for i := 0; i < 5; i++ {
		require.NoError(t, sm.Commit())
	}
	require.True(t, l.IsTradable(trade, lib.DirectionBuy))
	require.True(t, lib.Is(l.RemoveLiquidity(alice, pair), ErrSaleStarted()))
}

func TestRemoveLiquidity(t *testing.T) {
	l, sm, _ := newTestLBP(t, 0)
	pair := lib.NewAssetPair(testDai, testToken)
	// advance past the sale
	for i := 0; i < 12; i++ {
		require.NoError(t, sm.Commit())
	}
	require.NoError(t, l.RemoveLiquidity(alice, pair))
	require.False(t, l.Exists(lib.Trade{Pool: lib.LBPPool, AssetIn: testDai, AssetOut: testToken}))
	requireBalance(t, sm, alice, testToken, "100000000000000")
	requireBalance(t, sm, alice, testDai, "100000000000000")
}

func TestSpotPrice(t *testing.T) {
	l, _, _ := newTestLBP(t, 0)
	// 1e12 dai at 20% against 4e12 token at 80%: one token costs one dai
	price, err := l.SpotPrice(lib.Trade{Pool: lib.LBPPool, AssetIn: testDai, AssetOut: testToken})
	require.NoError(t, err)
	require.Equal(t, "80000000000000000000/80000000000000000000", price.String())
	require.Equal(t, "1000", l.SpotPriceUnchecked(lib.Trade{Pool: lib.LBPPool, AssetIn: testToken, AssetOut: testDai}, lib.NewBalance(1_000)).String())
	require.EqualValues(t, 2_000, l.Fee(lib.Trade{Pool: lib.LBPPool, AssetIn: testDai, AssetOut: testToken}))
}

// recorder is a price observer that keeps the source of every report
type recorder struct{ seen []string }

func (r *recorder) OnTrade(source string, _, _ lib.AssetId, _ lib.Price) lib.ErrorI {
	r.seen = append(r.seen, source)
	return nil
}

func requireBalance(t *testing.T, sm *fsm.StateMachine, who crypto.AddressI, id lib.AssetId, expected string) {
	got, err := sm.GetBalance(who, id)
	require.NoError(t, err)
	require.Equal(t, expected, got.String())
}

func defaultParams(height uint64) PoolParams {
	return PoolParams{
		Start:         height,
		End:           height + 10,
		InitialWeight: 20_000_000,
		FinalWeight:   80_000_000,
		Fee:           2_000,
		FeeCollector:  collector,
	}
}

// newTestLBP() returns a ledger with a sale of 4 token for 1 dai owned by alice starting after delay blocks
func newTestLBP(t *testing.T, delay uint64) (*LBP, *fsm.StateMachine, *recorder) {
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
			{Id: testCredit, Name: "Credit", Symbol: "CRD", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000), Sufficient: false},
		},
		Accounts: []*fsm.GenesisAccount{
			{Address: "alice", Balances: []lib.AssetAmount{
				{Asset: testNative, Amount: lib.NewBalance(100_000_000_000_000)},
				{Asset: testDai, Amount: lib.NewBalance(100_000_000_000_000)},
				{Asset: testToken, Amount: lib.NewBalance(100_000_000_000_000)},
				{Asset: testCredit, Amount: lib.NewBalance(100_000_000_000_000)},
			}},
			{Address: "bob", Balances: []lib.AssetAmount{
				{Asset: testNative, Amount: lib.NewBalance(10_000_000_000_000)},
				{Asset: testDai, Amount: lib.NewBalance(10_000_000_000_000)},
				{Asset: testCredit, Amount: lib.NewBalance(10_000_000_000_000)},
			}},
		},
	}))
	require.NoError(t, sm.Commit())
	require.NoError(t, sm.BeginBlock())
	observer := new(recorder)
	l := New(sm, observer)
	params := defaultParams(sm.Height() + delay)
	require.NoError(t, l.CreatePool(alice, testDai, lib.NewBalance(1_000_000_000_000), testToken, lib.NewBalance(4_000_000_000_000), params))
	return l, sm, observer
}
