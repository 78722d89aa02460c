package app

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/canopy-network/omniroute/dex/lbp"
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
)

// Genesis is the ledger genesis plus the pools and stored routes that exist before the first block
type Genesis struct {
	fsm.GenesisState
	Omnipool   []*OmnipoolGenesis   `json:"omnipool"`
	XYK        []*XYKGenesis        `json:"xyk"`
	LBP        []*LBPGenesis        `json:"lbp"`
	Stableswap []*StableswapGenesis `json:"stableswap"`
	Routes     []*RouteGenesis      `json:"routes"`
}

// OmnipoolGenesis lists an asset in the omnipool at an initial hub price
type OmnipoolGenesis struct {
	Owner  string      `json:"owner"`
	Asset  lib.AssetId `json:"asset"`
	Amount lib.Balance `json:"amount"`
	Price  lib.Price   `json:"price"` // hub per unit of asset
}

// XYKGenesis creates a constant product pool
type XYKGenesis struct {
	Owner   string      `json:"owner"`
	AssetA  lib.AssetId `json:"assetA"`
	AmountA lib.Balance `json:"amountA"`
	AssetB  lib.AssetId `json:"assetB"`
	AmountB lib.Balance `json:"amountB"`
}

// LBPGenesis creates a liquidity bootstrapping pool; AssetA is accumulated
type LBPGenesis struct {
	XYKGenesis
	Start         uint64      `json:"start"`
	End           uint64      `json:"end"`
	InitialWeight uint32      `json:"initialWeight"`
	FinalWeight   uint32      `json:"finalWeight"`
	Fee           lib.Permill `json:"fee"`
	FeeCollector  string      `json:"feeCollector"`
}

// StableswapGenesis creates a stable pool and seeds it with liquidity
type StableswapGenesis struct {
	Owner         string            `json:"owner"`
	PoolId        lib.AssetId       `json:"poolId"` // also the share asset
	Amplification uint64            `json:"amplification"`
	Fee           lib.Permill       `json:"fee"`
	Liquidity     []lib.AssetAmount `json:"liquidity"`
}

// RouteGenesis stores a default route for the pair of its first and last asset
type RouteGenesis struct {
	Route lib.Route `json:"route"`
}

// ReadGenesisFromFile() reads a Genesis object from the data directory
func ReadGenesisFromFile(dataDirPath string) (*Genesis, lib.ErrorI) {
	genesis := new(Genesis)
	bz, err := os.ReadFile(filepath.Join(dataDirPath, lib.GenesisFilePath))
	if err != nil {
		return nil, fsm.ErrReadGenesisFile(err)
	}
	if err = json.Unmarshal(bz, genesis); err != nil {
		return nil, lib.ErrJSONUnmarshal(err)
	}
	return genesis, nil
}

// WriteToFile() saves the genesis to the data directory
func (g *Genesis) WriteToFile(dataDirPath string) lib.ErrorI {
	return lib.SaveJSONToFile(g, dataDirPath, lib.GenesisFilePath)
}

// InitGenesis() builds the first block: the ledger, then every pool, then the stored routes, committed at once
func (a *App) InitGenesis(genesis *Genesis) lib.ErrorI {
	a.Lock()
	defer a.Unlock()
	if a.Initialized() {
		return fsm.ErrInvalidGenesis("state already initialized")
	}
	if err := a.sm.NewStateFromGenesis(&genesis.GenesisState); err != nil {
		a.sm.Discard()
		return err
	}
	if err := a.initPools(genesis); err != nil {
		a.sm.Discard()
		return ErrInvalidPoolGenesis(err)
	}
	if err := a.oracle.EndBlock(); err != nil {
		a.sm.Discard()
		return err
	}
	if err := a.sm.Commit(); err != nil {
		return err
	}
	a.log.Infof("Genesis committed with %d assets and %d accounts", len(genesis.Assets), len(genesis.Accounts))
	return nil
}

func (a *App) initPools(g *Genesis) lib.ErrorI {
	for _, p := range g.Omnipool {
		if err := a.omnipool.AddToken(fsm.AddressOf(p.Owner), p.Asset, p.Amount, p.Price); err != nil {
			return err
		}
	}
	for _, p := range g.XYK {
		if err := a.xyk.CreatePool(fsm.AddressOf(p.Owner), p.AssetA, p.AmountA, p.AssetB, p.AmountB); err != nil {
			return err
		}
	}
	for _, p := range g.LBP {
		err := a.lbp.CreatePool(fsm.AddressOf(p.Owner), p.AssetA, p.AmountA, p.AssetB, p.AmountB, lbp.PoolParams{
			Start:         p.Start,
			End:           p.End,
			InitialWeight: p.InitialWeight,
			FinalWeight:   p.FinalWeight,
			Fee:           p.Fee,
			FeeCollector:  fsm.AddressOf(p.FeeCollector),
		})
		if err != nil {
			return err
		}
	}
	for _, p := range g.Stableswap {
		owner, assets := fsm.AddressOf(p.Owner), make([]lib.AssetId, len(p.Liquidity))
		for i, l := range p.Liquidity {
			assets[i] = l.Asset
		}
		if err := a.stableswap.CreatePool(owner, p.PoolId, assets, p.Amplification, p.Fee); err != nil {
			return err
		}
		if err := a.stableswap.AddLiquidity(owner, p.PoolId, p.Liquidity, lib.ZeroBalance()); err != nil {
			return err
		}
	}
	for _, r := range g.Routes {
		if len(r.Route) == 0 {
			return ErrInvalidMessage("empty genesis route")
		}
		pair := lib.NewAssetPair(r.Route[0].AssetIn, r.Route[len(r.Route)-1].AssetOut)
		if err := a.router.SetRoute(fsm.TreasuryAddress(), pair, r.Route); err != nil {
			return err
		}
	}
	return nil
}

// DefaultGenesis() returns a small market: every pool kind seeded by alice, and bob holding native and dai
func DefaultGenesis() *Genesis {
	const (
		native lib.AssetId = 0
		hub    lib.AssetId = 1
		dai    lib.AssetId = 2
		usdt   lib.AssetId = 3
		dot    lib.AssetId = 4
		token  lib.AssetId = 6
		shares lib.AssetId = 100
	)
	units := func(n uint64) lib.Balance { return lib.NewBalance(n * 1_000_000_000_000) }
	ed := lib.NewBalance(1_000)
	return &Genesis{
		GenesisState: fsm.GenesisState{
			Assets: []*fsm.Asset{
				{Id: native, Name: "Native", Symbol: "HDX", Decimals: 12, ExistentialDeposit: lib.NewBalance(1_000_000), Sufficient: true},
				{Id: hub, Name: "Hub", Symbol: "LRNA", Decimals: 12, ExistentialDeposit: ed, Sufficient: true},
				{Id: dai, Name: "Dai", Symbol: "DAI", Decimals: 12, ExistentialDeposit: ed, Sufficient: true},
				{Id: usdt, Name: "Tether", Symbol: "USDT", Decimals: 12, ExistentialDeposit: ed, Sufficient: true},
				{Id: dot, Name: "Polkadot", Symbol: "DOT", Decimals: 10, ExistentialDeposit: ed, Sufficient: true},
				{Id: token, Name: "Token", Symbol: "TKN", Decimals: 12, ExistentialDeposit: ed, Sufficient: false},
				{Id: shares, Name: "Stable shares", Symbol: "SS", Decimals: 12, ExistentialDeposit: ed, Sufficient: true},
			},
			Accounts: []*fsm.GenesisAccount{
				{Address: "alice", Balances: []lib.AssetAmount{
					{Asset: native, Amount: units(1_000)},
					{Asset: hub, Amount: units(100)},
					{Asset: dai, Amount: units(1_000)},
					{Asset: usdt, Amount: units(1_000)},
					{Asset: dot, Amount: units(1_000)},
					{Asset: token, Amount: units(1_000)},
				}},
				{Address: "bob", Balances: []lib.AssetAmount{
					{Asset: native, Amount: units(100)},
					{Asset: dai, Amount: units(100)},
				}},
			},
		},
		Omnipool: []*OmnipoolGenesis{
			{Owner: "alice", Asset: dai, Amount: units(100), Price: lib.NewPrice(lib.NewBalance(1), lib.NewBalance(1))},
			{Owner: "alice", Asset: native, Amount: units(100), Price: lib.NewPrice(lib.NewBalance(1), lib.NewBalance(2))},
		},
		XYK: []*XYKGenesis{
			{Owner: "alice", AssetA: native, AmountA: units(10), AssetB: dot, AmountB: units(10)},
			{Owner: "alice", AssetA: native, AmountA: units(10), AssetB: token, AmountB: units(10)},
			{Owner: "alice", AssetA: token, AmountA: units(10), AssetB: dai, AmountB: units(10)},
		},
		LBP: []*LBPGenesis{{
			XYKGenesis:    XYKGenesis{Owner: "alice", AssetA: dai, AmountA: units(1), AssetB: hub, AmountB: units(4)},
			Start:         1,
			End:           100_000,
			InitialWeight: 20_000_000,
			FinalWeight:   80_000_000,
			Fee:           2_000,
			FeeCollector:  "collector",
		}},
		Stableswap: []*StableswapGenesis{{
			Owner:         "alice",
			PoolId:        shares,
			Amplification: 100,
			Fee:           3_000,
			Liquidity:     []lib.AssetAmount{{Asset: dai, Amount: units(1)}, {Asset: usdt, Amount: units(1)}},
		}},
		Routes: []*RouteGenesis{{Route: lib.Route{
			{Pool: lib.OmnipoolPool, AssetIn: dai, AssetOut: native},
			{Pool: lib.XYKPool, AssetIn: native, AssetOut: dot},
		}}},
	}
}
