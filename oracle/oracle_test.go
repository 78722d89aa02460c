package oracle

import (
	"testing"

	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/store"
	"github.com/stretchr/testify/require"
)

func TestOnTradeOrientation(t *testing.T) {
	sm, o := newTestOracle(t)
	// 3 units of asset 5 per unit of asset 2
	require.NoError(t, o.OnTrade("xyk", 5, 2, lib.NewPrice(lib.NewBalance(3), lib.NewBalance(1))))
	require.False(t, o.Has("xyk", 5, 2, LastBlock), "entries appear at the end of the block")
	require.NoError(t, o.EndBlock())
	require.True(t, o.Has("xyk", 2, 5, LastBlock))
	require.False(t, o.Has("lbp", 2, 5, LastBlock))
	got, err := o.Get("xyk", 5, 2, TenMinutes)
	require.NoError(t, err)
	require.Equal(t, "3", got.String())
	got, err = o.Get("xyk", 2, 5, TenMinutes)
	require.NoError(t, err)
	require.InDelta(t, 1.0/3, got.Float64(), 1e-15)
	entry, err := o.GetEntry("xyk", lib.NewAssetPair(5, 2), Week)
	require.NoError(t, err)
	require.Equal(t, sm.Height(), entry.UpdatedAt)
	_, err = o.Get("xyk", 5, 7, LastBlock)
	require.True(t, lib.Is(err, ErrOracleNotFound("xyk", 5, 7)))
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		period   Period
		blocks   int // blocks between the two prices
		expected float64
	}{
		{
			name:     "last block",
			detail:   "the last block period always equals the latest price",
			period:   LastBlock,
			blocks:   1,
			expected: 4,
		},
		{
			name:     "short one block",
			detail:   "ema = 2 * 9/11 + 4 * 2/11",
			period:   Short,
			blocks:   1,
			expected: 26.0 / 11,
		},
		{
			name:     "short three blocks",
			detail:   "the old value decays by (9/11)^3",
			period:   Short,
			blocks:   3,
			expected: 2*729.0/1331 + 4*(1-729.0/1331),
		},
		{
			name:     "week",
			detail:   "long periods barely move",
			period:   Week,
			blocks:   1,
			expected: 2*100799.0/100801 + 4*2.0/100801,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sm, o := newTestOracle(t)
			require.NoError(t, o.OnTrade("omnipool", 1, 2, lib.NewPrice(lib.NewBalance(2), lib.NewBalance(1))))
			require.NoError(t, o.EndBlock())
			for i := 0; i < test.blocks; i++ {
				require.NoError(t, sm.Commit())
				require.NoError(t, sm.BeginBlock())
			}
			require.NoError(t, o.OnTrade("omnipool", 1, 2, lib.NewPrice(lib.NewBalance(4), lib.NewBalance(1))))
			require.NoError(t, o.EndBlock())
			got, err := o.Get("omnipool", 1, 2, test.period)
			require.NoError(t, err)
			require.InDelta(t, test.expected, got.Float64(), 1e-12, test.detail)
		})
	}
}

func TestAccumulatorKeepsLastPrice(t *testing.T) {
	_, o := newTestOracle(t)
	require.NoError(t, o.OnTrade("lbp", 1, 2, lib.NewPrice(lib.NewBalance(2), lib.NewBalance(1))))
	require.NoError(t, o.OnTrade("lbp", 2, 1, lib.NewPrice(lib.NewBalance(1), lib.NewBalance(5))))
	// invalid prices are ignored
	require.NoError(t, o.OnTrade("lbp", 1, 2, lib.NewPrice(lib.ZeroBalance(), lib.NewBalance(5))))
	require.NoError(t, o.EndBlock())
	got, err := o.Get("lbp", 1, 2, LastBlock)
	require.NoError(t, err)
	require.Equal(t, "5", got.String())
	require.Error(t, o.OnTrade("", 1, 2, lib.NewPrice(lib.NewBalance(1), lib.NewBalance(1))))
}

func TestParsePeriod(t *testing.T) {
	for _, p := range Periods {
		got, err := ParsePeriod(p.String())
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
	_, err := ParsePeriod("fortnight")
	require.Error(t, err)
}

func newTestOracle(t *testing.T) (*fsm.StateMachine, *Oracle) {
	log := lib.NewNullLogger()
	db, err := store.NewStoreInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sm := fsm.New(lib.DefaultConfig(), db, nil, log)
	require.NoError(t, sm.NewStateFromGenesis(&fsm.GenesisState{Assets: []*fsm.Asset{
		{Id: 0, Symbol: "HDX", ExistentialDeposit: lib.NewBalance(1), Sufficient: true},
	}}))
	require.NoError(t, sm.Commit())
	require.NoError(t, sm.BeginBlock())
	return sm, New(sm)
}
