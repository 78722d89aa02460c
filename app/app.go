package app

import (
	"sync"

	"github.com/canopy-network/omniroute/dex/lbp"
	"github.com/canopy-network/omniroute/dex/omnipool"
	"github.com/canopy-network/omniroute/dex/stableswap"
	"github.com/canopy-network/omniroute/dex/xyk"
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
	"github.com/canopy-network/omniroute/lib/fixed"
	"github.com/canopy-network/omniroute/oracle"
	"github.com/canopy-network/omniroute/router"
)

// App wires the ledger, the oracle, every pool family and the router into one block application
type App struct {
	sm         *fsm.StateMachine
	oracle     *oracle.Oracle
	omnipool   *omnipool.Omnipool
	xyk        *xyk.XYK
	lbp        *lbp.LBP
	stableswap *stableswap.Stableswap
	router     *router.Router
	metrics    *lib.Metrics
	log        lib.LoggerI
	sync.Mutex
}

// New() creates the application over a store; the pools report their prices to the oracle
func New(c lib.Config, db lib.StoreI, metrics *lib.Metrics, log lib.LoggerI) (*App, lib.ErrorI) {
	sm := fsm.New(c, db, metrics, log)
	o := oracle.New(sm)
	a := &App{
		sm:         sm,
		oracle:     o,
		omnipool:   omnipool.New(sm, o),
		xyk:        xyk.New(sm, o),
		lbp:        lbp.New(sm, o),
		stableswap: stableswap.New(sm, o),
		metrics:    metrics,
		log:        log,
	}
	r, err := router.New(sm, o, a.omnipool, a.xyk, a.lbp, a.stableswap)
	if err != nil {
		return nil, err
	}
	a.router = r
	return a, nil
}

// Initialized() returns true once genesis has been committed
func (a *App) Initialized() bool { return a.sm.Height() > 0 }

func (a *App) StateMachine() *fsm.StateMachine { return a.sm }
func (a *App) Router() *router.Router          { return a.router }
func (a *App) Oracle() *oracle.Oracle          { return a.oracle }
func (a *App) Height() uint64                  { return a.sm.Height() }

// QUERIES BELOW

// Balances() returns every non zero balance of an account
func (a *App) Balances(who crypto.AddressI) ([]lib.AssetAmount, lib.ErrorI) {
	a.Lock()
	defer a.Unlock()
	return a.sm.GetBalances(who)
}

// Events() returns the events recorded at a height
func (a *App) Events(height uint64) (lib.Events, lib.ErrorI) {
	a.Lock()
	defer a.Unlock()
	return a.sm.GetEvents(height)
}

// Route() returns the route a sell of AssetA for AssetB with no explicit route would take
func (a *App) Route(pair lib.AssetPair) (route lib.Route, stored bool, err lib.ErrorI) {
	a.Lock()
	defer a.Unlock()
	return a.router.ResolveRoute(pair.AssetA, pair.AssetB, nil, lib.DirectionSell)
}

// SpotPrice() returns the fee adjusted price of a route, falling back to the route of the pair when empty
func (a *App) SpotPrice(pair lib.AssetPair, route lib.Route) (fixed.Fixed, lib.ErrorI) {
	if len(route) == 0 {
		resolved, _, err := a.Route(pair)
		if err != nil {
			return fixed.Fixed{}, err
		}
		route = resolved
	}
	a.Lock()
	defer a.Unlock()
	price, ok := a.router.SpotPriceWithFee(route)
	if !ok {
		return fixed.Fixed{}, router.ErrSpotPriceNotAvailable()
	}
	return price, nil
}

// Assets() returns the asset registry
func (a *App) Assets() ([]*fsm.Asset, lib.ErrorI) {
	a.Lock()
	defer a.Unlock()
	return a.sm.GetAssets()
}

// OraclePrice() returns the moving average cost of one asset out in asset in reported by a pool kind
func (a *App) OraclePrice(source string, assetIn, assetOut lib.AssetId, period oracle.Period) (fixed.Fixed, lib.ErrorI) {
	a.Lock()
	defer a.Unlock()
	return a.oracle.Get(source, assetIn, assetOut, period)
}
