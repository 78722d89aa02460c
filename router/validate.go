package router

import (
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

// ValidateRoute() checks that a route trades assetIn for assetOut hop by hop, and that every hop's pool
// exists and is tradable in the direction
func (r *Router) ValidateRoute(route lib.Route, assetIn, assetOut lib.AssetId, d lib.TradeDirection) lib.ErrorI {
	if len(route) == 0 {
		return ErrInvalidRoute("empty route")
	}
	if len(route) > r.config.MaxNumberOfTrades {
		return ErrMaxTradesExceeded(r.config.MaxNumberOfTrades)
	}
	if assetIn == assetOut {
		return ErrInvalidRoute("asset in and asset out are the same")
	}
	if route[0].AssetIn != assetIn {
		return ErrInvalidRoute(fmt.Sprintf("route starts with %d, not %d", route[0].AssetIn, assetIn))
	}
	if last := route[len(route)-1]; last.AssetOut != assetOut {
		return ErrInvalidRoute(fmt.Sprintf("route ends with %d, not %d", last.AssetOut, assetOut))
	}
	for i, t := range route {
		if i > 0 && route[i-1].AssetOut != t.AssetIn {
			return ErrInvalidRoute(fmt.Sprintf("hop %d starts with %d after receiving %d", i, t.AssetIn, route[i-1].AssetOut))
		}
		pool, err := r.Pool(t)
		if err != nil {
			return err
		}
		if !pool.Exists(t) {
			return ErrInvalidRoute(fmt.Sprintf("no pool for hop %s", t))
		}
		if !pool.IsTradable(t, d) {
			return ErrInvalidRoute(fmt.Sprintf("hop %s is not tradable", t))
		}
	}
	return nil
}

// ValidateBothWays() checks a route from assetIn to assetOut and its inverse from assetOut to assetIn
func (r *Router) ValidateBothWays(route lib.Route, assetIn, assetOut lib.AssetId) lib.ErrorI {
	if err := r.ValidateRoute(route, assetIn, assetOut, lib.DirectionSell); err != nil {
		return err
	}
	return r.ValidateRoute(InverseRoute(route), assetOut, assetIn, lib.DirectionSell)
}

// InverseRoute() returns the route in reverse order with the assets of every hop swapped
func InverseRoute(route lib.Route) lib.Route { return route.Inverse() }
