package stableswap

import (
	"testing"

	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
	"github.com/canopy-network/omniroute/store"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

const (
	testNative lib.AssetId = 0
	testDai    lib.AssetId = 2
	testUsdt   lib.AssetId = 3
	testUsdc   lib.AssetId = 4
	testPool   lib.AssetId = 100
)

var (
	alice = crypto.AddressFromName("alice")
	bob   = crypto.AddressFromName("bob")
)

func TestCalculateD(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		reserves []uint64
		check    func(t *testing.T, d *uint256.Int, ok bool)
	}{
		{
			name:     "balanced",
			detail:   "a balanced pool has D equal to the sum of its reserves",
			reserves: []uint64{1_000_000_000_000, 1_000_000_000_000, 1_000_000_000_000},
			check: func(t *testing.T, d *uint256.Int, ok bool) {
				require.True(t, ok)
				require.Equal(t, uint64(3_000_000_000_000), d.Uint64())
			},
		},
		{
			name:     "imbalanced",
			detail:   "an imbalanced pool has D below the sum of its reserves",
			reserves: []uint64{1_000_000_000_000, 3_000_000_000_000},
			check: func(t *testing.T, d *uint256.Int, ok bool) {
				require.True(t, ok)
				require.Less(t, d.Uint64(), uint64(4_000_000_000_000))
				require.Greater(t, d.Uint64(), uint64(3_900_000_000_000))
			},
		},
		{
			name:     "empty reserve",
			detail:   "D is undefined while a reserve is empty",
			reserves: []uint64{1_000_000_000_000, 0},
			check: func(t *testing.T, _ *uint256.Int, ok bool) {
				require.False(t, ok)
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			reserves := make([]*uint256.Int, len(test.reserves))
			for i, r := range test.reserves {
				reserves[i] = uint256.NewInt(r)
			}
			d, ok := calculateD(reserves, 100)
			test.check(t, d, ok)
		})
	}
}

func TestCalculateY(t *testing.T) {
	// solving for any reserve at the pool's own D returns that reserve
	reserves := []*uint256.Int{uint256.NewInt(1_000_000_000_000), uint256.NewInt(2_500_000_000_000), uint256.NewInt(700_000_000_000)}
	d, ok := calculateD(reserves, 50)
	require.True(t, ok)
	for j := range reserves {
		y, ok := calculateY(reserves, j, d, 50)
		require.True(t, ok)
		require.InDelta(t, float64(reserves[j].Uint64()), float64(y.Uint64()), 2)
	}
}

func TestCreatePoolParams(t *testing.T) {
	tests := []struct {
		name          string
		detail        string
		id            lib.AssetId
		assets        []lib.AssetId
		amplification uint64
		fee           lib.Permill
	}{
		{
			name:          "one asset",
			detail:        "a pool needs at least two assets",
			id:            testPool,
			assets:        []lib.AssetId{testDai},
			amplification: 100,
		},
		{
			name:          "duplicate asset",
			detail:        "pool assets must be distinct",
			id:            testPool,
			assets:        []lib.AssetId{testDai, testDai},
			amplification: 100,
		},
		{
			name:          "share asset in pool",
			detail:        "the share asset cannot be a pool asset",
			id:            testPool,
			assets:        []lib.AssetId{testDai, testPool},
			amplification: 100,
		},
		{
			name:          "unknown asset",
			detail:        "pool assets must be registered",
			id:            testPool,
			assets:        []lib.AssetId{testDai, 77},
			amplification: 100,
		},
		{
			name:          "amplification",
			detail:        "the amplification must be in range",
			id:            testPool,
			assets:        []lib.AssetId{testDai, testUsdt},
			amplification: MinAmplification - 1,
		},
		{
			name:          "fee",
			detail:        "the fee must be below 100%",
			id:            testPool,
			assets:        []lib.AssetId{testDai, testUsdt},
			amplification: 100,
			fee:           lib.PermillDenominator,
		},
		{
			name:          "issued share asset",
			detail:        "the share asset must not be in circulation",
			id:            testNative,
			assets:        []lib.AssetId{testDai, testUsdt},
			amplification: 100,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s, _, _ := newTestStableswap(t, false)
			err := s.CreatePool(alice, test.id, test.assets, test.amplification, test.fee)
			require.True(t, lib.Is(err, ErrInvalidPoolParameters("")), test.detail)
		})
	}
}

func TestAddLiquidity(t *testing.T) {
	s, sm, _ := newTestStableswap(t, false)
	require.NoError(t, s.CreatePool(alice, testPool, []lib.AssetId{testDai, testUsdt}, 100, 3_000))
	trade := lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testDai, AssetOut: testUsdt}
	require.True(t, s.Exists(trade))
	require.False(t, s.IsTradable(trade, lib.DirectionSell))
	// the first deposit must cover every asset
	err := s.AddLiquidity(alice, testPool, []lib.AssetAmount{{Asset: testDai, Amount: lib.NewBalance(1_000_000_000_000)}}, lib.ZeroBalance())
	require.True(t, lib.Is(err, ErrInsufficientLiquidity()))
	require.NoError(t, s.AddLiquidity(alice, testPool, balanced(1_000_000_000_000), lib.ZeroBalance()))
	requireBalance(t, sm, alice, testPool, "2000000000000")
	require.True(t, s.IsTradable(trade, lib.DirectionBuy))
	// a balanced deposit is proportional
	err = s.AddLiquidity(alice, testPool, balanced(100_000_000_000), lib.NewBalance(200_000_000_001))
	require.True(t, lib.Is(err, ErrTradingLimitReached()))
	require.NoError(t, s.AddLiquidity(alice, testPool, balanced(100_000_000_000), lib.NewBalance(200_000_000_000)))
	requireBalance(t, sm, alice, testPool, "2200000000000")
	requireBalance(t, sm, PoolAddress(testPool), testDai, "1100000000000")
	// unknown assets are rejected
	err = s.AddLiquidity(bob, testPool, []lib.AssetAmount{{Asset: testUsdc, Amount: lib.NewBalance(1_000)}}, lib.ZeroBalance())
	require.True(t, lib.Is(err, ErrAssetNotInPool(testUsdc)))
}

func TestRemoveLiquidity(t *testing.T) {
	s, sm, _ := newTestStableswap(t, true)
	require.True(t, lib.Is(s.RemoveLiquidity(bob, testPool, lib.NewBalance(1)), ErrInsufficientShares()))
	require.NoError(t, s.RemoveLiquidity(alice, testPool, lib.NewBalance(1_000_000_000_000)))
	requireBalance(t, sm, alice, testPool, "1000000000000")
	requireBalance(t, sm, PoolAddress(testPool), testDai, "500000000000")
	requireBalance(t, sm, PoolAddress(testPool), testUsdt, "500000000000")
	issuance, err := sm.TotalIssuance(testPool)
	require.NoError(t, err)
	require.Equal(t, "1000000000000", issuance.String())
}

func TestSell(t *testing.T) {
	s, sm, observer := newTestStableswap(t, true)
	trade := lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testDai, AssetOut: testUsdt}
	_, err := s.CalculateSell(trade, lib.NewBalance(MinTradingLimit-1))
	require.True(t, lib.Is(err, ErrInsufficientTradingAmount()))
	tr, err := s.ValidateSell(bob, trade, lib.NewBalance(1_000_000_000), lib.ZeroBalance(), false)
	require.NoError(t, err)
	// close to par less the 0.3% fee, which is withheld in the asset out
	out, _ := tr.AmountOut.Uint64()
	require.Less(t, out, uint64(997_000_000))
	require.Greater(t, out, uint64(996_900_000))
	require.Equal(t, testUsdt, tr.Fee.Asset)
	_, err = s.ValidateSell(bob, trade, lib.NewBalance(1_000_000_000), lib.NewBalance(out+1), false)
	require.True(t, lib.Is(err, ErrTradingLimitReached()))
	require.NoError(t, s.ExecuteSell(tr))
	requireBalance(t, sm, bob, testUsdt, tr.AmountOut.String())
	requireBalance(t, sm, PoolAddress(testPool), testDai, "1001000000000")
	events, err := sm.GetEvents(sm.Height())
	require.NoError(t, err)
	swaps := events.OfType(lib.EventTypeSwapped)
	require.Len(t, swaps, 1)
	require.Equal(t, lib.StableswapPool(testPool), swaps[0].Swapped.FillerType)
	// the share price is reported against both pool assets
	require.Equal(t, []lib.AssetId{testDai, testUsdt}, observer.assets[len(observer.assets)-2:])
}

func TestBuy(t *testing.T) {
	s, sm, _ := newTestStableswap(t, true)
	trade := lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testDai, AssetOut: testUsdt}
	in, err := s.CalculateBuy(trade, lib.NewBalance(1_000_000_000))
	require.NoError(t, err)
	amountIn, _ := in.Uint64()
	// the gross out is amount / (1 - fee)
	require.Greater(t, amountIn, uint64(1_003_009_027))
	require.Less(t, amountIn, uint64(1_003_100_000))
	// selling the quoted amount returns the bought amount
	out, err := s.CalculateSell(trade, in)
	require.NoError(t, err)
	got, _ := out.Uint64()
	require.InDelta(t, 1_000_000_000, float64(got), 5)
	_, err = s.ValidateBuy(bob, trade, lib.NewBalance(1_000_000_000), lib.NewBalance(amountIn-1), false)
	require.True(t, lib.Is(err, ErrTradingLimitReached()))
	tr, err := s.ValidateBuy(bob, trade, lib.NewBalance(1_000_000_000), in, false)
	require.NoError(t, err)
	require.NoError(t, s.ExecuteBuy(tr))
	requireBalance(t, sm, bob, testUsdt, "1000000000")
	// more than the reserve
	_, err = s.CalculateBuy(trade, lib.NewBalance(1_000_000_000_000))
	require.True(t, lib.Is(err, ErrInsufficientLiquidity()))
}

func TestLiquidityHops(t *testing.T) {
	s, sm, _ := newTestStableswap(t, true)
	add := lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testDai, AssetOut: testPool}
	require.True(t, s.Exists(add))
	tr, err := s.ValidateSell(bob, add, lib.NewBalance(1_000_000_000), lib.ZeroBalance(), false)
	require.NoError(t, err)
	shares, _ := tr.AmountOut.Uint64()
	require.Less(t, shares, uint64(997_000_000))
	require.Greater(t, shares, uint64(996_000_000))
	require.Equal(t, testPool, tr.Fee.Asset)
	require.NoError(t, s.ExecuteSell(tr))
	requireBalance(t, sm, bob, testPool, tr.AmountOut.String())
	issuance, err := sm.TotalIssuance(testPool)
	require.NoError(t, err)
	require.Equal(t, lib.NewBalance(2_000_000_000_000+shares).String(), issuance.String())
	// remove the shares into the other asset
	remove := lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testPool, AssetOut: testUsdt}
	tr, err = s.ValidateSell(bob, remove, tr.AmountOut, lib.ZeroBalance(), false)
	require.NoError(t, err)
	out, _ := tr.AmountOut.Uint64()
	require.Less(t, out, shares)
	require.Greater(t, out, shares*99/100)
	require.NoError(t, s.ExecuteSell(tr))
	requireBalance(t, sm, bob, testPool, "0")
	requireBalance(t, sm, bob, testUsdt, tr.AmountOut.String())
	// buy an exact amount of shares
	tr, err = s.ValidateBuy(bob, add, lib.NewBalance(1_000_000), lib.NewBalance(2_000_000), false)
	require.NoError(t, err)
	require.NoError(t, s.ExecuteBuy(tr))
	requireBalance(t, sm, bob, testPool, "1000000")
	// buy an exact amount of an asset with shares
	in, err := s.CalculateBuy(lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testPool, AssetOut: testDai}, lib.NewBalance(500_000))
	require.NoError(t, err)
	require.True(t, in.Gt(lib.NewBalance(500_000)))
	require.True(t, in.Lt(lib.NewBalance(1_000_000)))
}

func TestSpotPrice(t *testing.T) {
	s, _, _ := newTestStableswap(t, true)
	price, err := s.SpotPrice(lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testDai, AssetOut: testUsdt})
	require.NoError(t, err)
	require.Equal(t, "1000000", price.N.String())
	d, _ := price.D.Uint64()
	require.InDelta(t, 1_000_000, float64(d), 2)
	price, err = s.SpotPrice(lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testDai, AssetOut: testPool})
	require.NoError(t, err)
	require.Equal(t, "2000000000000/2000000000000", price.String())
	require.EqualValues(t, 3_000, s.Fee(lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testDai, AssetOut: testUsdt}))
	require.Equal(t, liquidityWeight, s.SellWeight(lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testPool, AssetOut: testDai}))
	// unknown pools and assets
	require.False(t, s.Exists(lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testDai, AssetOut: testUsdc}))
	require.False(t, s.Exists(lib.Trade{Pool: lib.StableswapPool(testPool), AssetIn: testDai, AssetOut: testDai}))
	require.False(t, s.Exists(lib.Trade{Pool: lib.StableswapPool(testUsdc), AssetIn: testDai, AssetOut: testUsdt}))
	require.True(t, s.SpotPriceUnchecked(lib.Trade{Pool: lib.StableswapPool(testUsdc), AssetIn: testDai, AssetOut: testUsdt}, lib.NewBalance(1_000)).IsZero())
}

// recorder is a price observer that keeps every asset reported against a share token
type recorder struct{ assets []lib.AssetId }

func (r *recorder) OnTrade(source string, in, _ lib.AssetId, _ lib.Price) lib.ErrorI {
	if source == lib.PoolKindStableswap.String() {
		r.assets = append(r.assets, in)
	}
	return nil
}

func balanced(amount uint64) []lib.AssetAmount {
	return []lib.AssetAmount{
		{Asset: testDai, Amount: lib.NewBalance(amount)},
		{Asset: testUsdt, Amount: lib.NewBalance(amount)},
	}
}

func requireBalance(t *testing.T, sm *fsm.StateMachine, who crypto.AddressI, id lib.AssetId, expected string) {
	got, err := sm.GetBalance(who, id)
	require.NoError(t, err)
	require.Equal(t, expected, got.String())
}

// newTestStableswap() returns a ledger optionally seeded with a dai/usdt pool of 1e12 each owned by alice
func newTestStableswap(t *testing.T, seeded bool) (*Stableswap, *fsm.StateMachine, *recorder) {
	log := lib.NewNullLogger()
	db, err := store.NewStoreInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sm := fsm.New(lib.DefaultConfig(), db, nil, log)
	require.NoError(t, sm.NewStateFromGenesis(&fsm.GenesisState{
		Assets: []*fsm.Asset{
			{Id: testNative, Name: "Native", Symbol: "HDX", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000_000), Sufficient: true},
			{Id: testDai, Name: "Dai", Symbol: "DAI", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000), Sufficient: true},
			{Id: testUsdt, Name: "Tether", Symbol: "USDT", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000), Sufficient: true},
			{Id: testUsdc, Name: "USD Coin", Symbol: "USDC", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000), Sufficient: true},
			{Id: testPool, Name: "Stable shares", Symbol: "SS", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000), Sufficient: true},
		},
		Accounts: []*fsm.GenesisAccount{
			{Address: "alice", Balances: []lib.AssetAmount{
				{Asset: testNative, Amount: lib.NewBalance(100_000_000_000_000)},
				{Asset: testDai, Amount: lib.NewBalance(100_000_000_000_000)},
				{Asset: testUsdt, Amount: lib.NewBalance(100_000_000_000_000)},
			}},
			{Address: "bob", Balances: []lib.AssetAmount{
				{Asset: testNative, Amount: lib.NewBalance(10_000_000_000_000)},
				{Asset: testDai, Amount: lib.NewBalance(10_000_000_000_000)},
			}},
		},
	}))
	require.NoError(t, sm.Commit())
	require.NoError(t, sm.BeginBlock())
	observer := new(recorder)
	s := New(sm, observer)
	if seeded {
		require.NoError(t, s.CreatePool(alice, testPool, []lib.AssetId{testDai, testUsdt}, 100, 3_000))
		require.NoError(t, s.AddLiquidity(alice, testPool, balanced(1_000_000_000_000), lib.ZeroBalance()))
	}
	return s, sm, observer
}
