package router

import (
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/fixed"
	"github.com/canopy-network/omniroute/oracle"
)

/*
	The router composes trades across the pool families.

	A route is an ordered list of hops, each executed against one pool through the lib.PoolI contract.
	Every router call runs inside a single atomic scope of the state machine: a failing hop discards
	every write the call made, including deposits, events and the event id.
*/

// PriceOracleI is the time decayed price history used to compare routes
type PriceOracleI interface {
	// Get() returns the cost of one assetOut in assetIn averaged over the period
	Get(source string, assetIn, assetOut lib.AssetId, period oracle.Period) (fixed.Fixed, lib.ErrorI)
}

// Router executes routes and keeps the default route of each asset pair
type Router struct {
	sm     *fsm.StateMachine
	prices PriceOracleI
	pools  map[lib.PoolKind]lib.PoolI
	period oracle.Period // the oracle period routes are priced with
	config lib.RouterConfig
	log    lib.LoggerI
}

// New() creates a router over the pools; each pool serves the hops of its own kind
func New(sm *fsm.StateMachine, prices PriceOracleI, pools ...lib.PoolI) (*Router, lib.ErrorI) {
	config := sm.Config.RouterConfig
	period, err := oracle.ParsePeriod(config.OraclePeriod)
	if err != nil {
		return nil, err
	}
	r := &Router{
		sm:     sm,
		prices: prices,
		pools:  make(map[lib.PoolKind]lib.PoolI, len(pools)),
		period: period,
		config: config,
		log:    sm.Log().With("router"),
	}
	for _, p := range pools {
		r.pools[p.Kind()] = p
	}
	return r, nil
}

// Pool() returns the pool serving a hop
func (r *Router) Pool(t lib.Trade) (lib.PoolI, lib.ErrorI) {
	p, ok := r.pools[t.Pool.Kind]
	if !ok {
		return nil, ErrPoolNotSupported(t.Pool.Kind)
	}
	return p, nil
}

// hubAsset() is the asset every omnipool price is quoted in
func (r *Router) hubAsset() lib.AssetId { return lib.AssetId(r.sm.Config.HubAssetId) }
