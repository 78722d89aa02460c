package router

import "github.com/canopy-network/omniroute/lib"

var (
	readWeight  = lib.Weight{RefTime: 25_000_000, ProofSize: 3_593}  // one store read
	writeWeight = lib.Weight{RefTime: 100_000_000, ProofSize: 3_593} // one store write
)

// Overhead() is the router's own cost of hop i of a route of n hops; never zero and non decreasing in n
func (r *Router) Overhead(i, n int) lib.Weight {
	if i < 0 {
		i = 0
	}
	if n < 0 {
		n = 0
	}
	return lib.Weight{
		RefTime:   r.config.BaseWeight + r.config.PerHopWeight*uint64(n) + r.config.PerIndexWeight*uint64(i),
		ProofSize: r.config.BaseProofSizeWeight,
	}
}

// SellWeight() is the cost of selling along the route: each pool's sell weight plus the router overhead per hop
func (r *Router) SellWeight(route lib.Route) lib.Weight {
	return r.routeWeight(route, func(p lib.PoolI, t lib.Trade) lib.Weight { return p.SellWeight(t) })
}

// BuyWeight() is the cost of buying along the route
func (r *Router) BuyWeight(route lib.Route) lib.Weight {
	return r.routeWeight(route, func(p lib.PoolI, t lib.Trade) lib.Weight { return p.BuyWeight(t) })
}

// SellAllWeight() is the cost of a sell plus the read of the reducible balance
func (r *Router) SellAllWeight(route lib.Route) lib.Weight { return r.SellWeight(route).Add(readWeight) }

// SetRouteWeight() is the cost of validating and pricing the route and the stored route both ways,
// then writing the new one
func (r *Router) SetRouteWeight(route lib.Route) lib.Weight {
	w := r.Overhead(0, len(route)).Add(writeWeight)
	for range route {
		// the candidate and the stored route, each priced forward and inverse
		for k := 0; k < 4; k++ {
			w = w.Add(readWeight)
		}
	}
	return w
}

// routeWeight() sums the pool weight and the router overhead of every hop; an empty route is
// weighed as the single omnipool hop it resolves to
func (r *Router) routeWeight(route lib.Route, poolWeight func(lib.PoolI, lib.Trade) lib.Weight) lib.Weight {
	if len(route) == 0 {
		route = lib.Route{{Pool: lib.OmnipoolPool}}
	}
	var w lib.Weight
	for i, t := range route {
		w = w.Add(r.Overhead(i, len(route)))
		if p, err := r.Pool(t); err == nil {
			w = w.Add(poolWeight(p, t))
		}
	}
	return w
}
