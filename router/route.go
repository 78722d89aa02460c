package router

import (
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
	"github.com/canopy-network/omniroute/lib/fixed"
)

var routePrefix = []byte{24} // store key prefix for the default route of each ordered asset pair

// GetRoute() returns the stored route of the pair, oriented from AssetA to AssetB
func (r *Router) GetRoute(pair lib.AssetPair) (route lib.Route, found bool, err lib.ErrorI) {
	found, err = r.sm.GetJSON(keyForRoute(pair), &route)
	if err != nil || !found {
		return nil, false, err
	}
	if !pair.IsOrdered() {
		route = route.Inverse()
	}
	return route, true, nil
}

// SetRoute() stores the route as the default of the pair if it is valid both ways and no worse route is displaced:
//   - with nothing stored, any route but the single omnipool hop is accepted
//   - a stored route that no longer executes or cannot be priced is always replaced
//   - otherwise the route must be strictly cheaper than the stored one in both directions
func (r *Router) SetRoute(who crypto.AddressI, pair lib.AssetPair, route lib.Route) lib.ErrorI {
	err := r.sm.Atomic(func() lib.ErrorI {
		if pair.AssetA == pair.AssetB {
			return ErrInvalidRoute("asset pair of the same asset")
		}
		if !pair.IsOrdered() {
			pair, route = pair.Ordered(), route.Inverse()
		}
		if err := r.ValidateBothWays(route, pair.AssetA, pair.AssetB); err != nil {
			return err
		}
		if err := r.requireOracle(route); err != nil {
			return err
		}
		stored, found, err := r.GetRoute(pair)
		if err != nil {
			return err
		}
		switch {
		case !found && route.Equals(lib.DefaultRoute(pair.AssetA, pair.AssetB)):
			return ErrRouteUpdateIsNotSuccessful()
		case found && route.Equals(stored):
			return ErrRouteUpdateIsNotSuccessful()
		case found && !r.isCheaper(route, stored, pair):
			return ErrRouteUpdateIsNotSuccessful()
		}
		if err = r.sm.SetJSON(keyForRoute(pair), route); err != nil {
			return err
		}
		r.log.Infof("Route of %s updated to %s", pair, route)
		return r.sm.EventRouteUpdated(who, pair, route)
	})
	if err != nil {
		r.log.Debugf("Route update of %s failed: %s", pair, err.Error())
	}
	r.sm.Metrics().UpdateRouteMetrics(err)
	return err
}

// isCheaper() returns true if the candidate costs strictly less than the stored route both ways,
// or if the stored route is broken and the candidate can be priced
func (r *Router) isCheaper(candidate, stored lib.Route, pair lib.AssetPair) bool {
	forward, ok := r.SpotPriceWithFee(candidate)
	if !ok {
		return false
	}
	inverse, ok := r.SpotPriceWithFee(candidate.Inverse())
	if !ok {
		return false
	}
	if r.ValidateBothWays(stored, pair.AssetA, pair.AssetB) != nil {
		return true
	}
	storedForward, ok := r.SpotPriceWithFee(stored)
	if !ok {
		return true
	}
	storedInverse, ok := r.SpotPriceWithFee(stored.Inverse())
	if !ok {
		return true
	}
	return forward.Lt(storedForward) && inverse.Lt(storedInverse)
}

// requireOracle() checks that every hop touching an insufficient asset is priced by the oracle
func (r *Router) requireOracle(route lib.Route) lib.ErrorI {
	for _, t := range route {
		in, err := r.sm.IsSufficient(t.AssetIn)
		if err != nil {
			return err
		}
		out, err := r.sm.IsSufficient(t.AssetOut)
		if err != nil {
			return err
		}
		if in && out {
			continue
		}
		if _, ok := r.oraclePrice(t); !ok {
			return ErrRouteHasNoOracle(t)
		}
	}
	return nil
}

// SpotPriceWithFee() estimates the cost of one unit of the last asset out in the first asset in:
// the product over the hops of price / (1 - fee), each price from the oracle or else the pool's spot price
func (r *Router) SpotPriceWithFee(route lib.Route) (fixed.Fixed, bool) {
	if len(route) == 0 {
		return fixed.Fixed{}, false
	}
	result := fixed.One()
	for _, t := range route {
		pool, err := r.Pool(t)
		if err != nil {
			return fixed.Fixed{}, false
		}
		price, ok := r.hopPrice(pool, t)
		if !ok {
			return fixed.Fixed{}, false
		}
		remainder, err := fixed.One().Sub(fixed.FromPermill(pool.Fee(t)))
		if err != nil || remainder.IsZero() {
			return fixed.Fixed{}, false
		}
		if price, err = price.Div(remainder); err != nil {
			return fixed.Fixed{}, false
		}
		if result, err = result.Mul(price); err != nil {
			return fixed.Fixed{}, false
		}
	}
	return result, !result.IsZero()
}

// hopPrice() returns the cost of one asset out in asset in for a hop, oracle first
func (r *Router) hopPrice(pool lib.PoolI, t lib.Trade) (fixed.Fixed, bool) {
	if price, ok := r.oraclePrice(t); ok {
		return price, true
	}
	spot, err := pool.SpotPrice(t)
	if err != nil || !spot.IsValid() {
		return fixed.Fixed{}, false
	}
	price, err := fixed.FromRational(spot.N, spot.D)
	if err != nil || price.IsZero() {
		return fixed.Fixed{}, false
	}
	return price, true
}

// oraclePrice() composes the oracle entries of a hop into the cost of one asset out in asset in
// omnipool entries are quoted in the hub asset and stableswap entries in the pool's share asset
func (r *Router) oraclePrice(t lib.Trade) (fixed.Fixed, bool) {
	if r.prices == nil {
		return fixed.Fixed{}, false
	}
	source := t.Pool.Kind.String()
	get := func(in, out lib.AssetId) (fixed.Fixed, bool) {
		price, err := r.prices.Get(source, in, out, r.period)
		return price, err == nil && !price.IsZero()
	}
	// through() divides the price of out by the price of in, both quoted against the same asset
	through := func(quote lib.AssetId) (fixed.Fixed, bool) {
		out, ok := get(quote, t.AssetOut)
		if !ok {
			return fixed.Fixed{}, false
		}
		in, ok := get(quote, t.AssetIn)
		if !ok {
			return fixed.Fixed{}, false
		}
		price, err := out.Div(in)
		return price, err == nil && !price.IsZero()
	}
	switch t.Pool.Kind {
	case lib.PoolKindOmnipool:
		if hub := r.hubAsset(); t.AssetIn != hub && t.AssetOut != hub {
			return through(hub)
		}
	case lib.PoolKindStableswap:
		if share := t.Pool.StableswapId; t.AssetIn != share && t.AssetOut != share {
			// the cost of a share in asset in over the cost of a share in asset out
			in, ok := get(t.AssetIn, share)
			if !ok {
				return fixed.Fixed{}, false
			}
			out, ok := get(t.AssetOut, share)
			if !ok {
				return fixed.Fixed{}, false
			}
			price, err := in.Div(out)
			return price, err == nil && !price.IsZero()
		}
	}
	return get(t.AssetIn, t.AssetOut)
}

func keyForRoute(pair lib.AssetPair) []byte { return lib.JoinLenPrefix(routePrefix, pair.Key()) }
