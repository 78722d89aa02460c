package router

import (
	"github.com/canopy-network/omniroute/fsm"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/lib/crypto"
)

// Sell() trades an exact amount of assetIn for at least minAmountOut of assetOut along the route
// An empty route uses the stored route of the pair, else the single omnipool hop
func (r *Router) Sell(who crypto.AddressI, assetIn, assetOut lib.AssetId, amountIn, minAmountOut lib.Balance, route lib.Route) lib.ErrorI {
	return r.trade("sell", who, assetIn, assetOut, route, lib.DirectionSell, func(route lib.Route) (lib.Balance, lib.Balance, lib.ErrorI) {
		out, err := r.executeSell(who, route, amountIn, minAmountOut)
		return amountIn, out, err
	})
}

// Buy() trades at most maxAmountIn of assetIn for an exact amount of assetOut along the route
func (r *Router) Buy(who crypto.AddressI, assetIn, assetOut lib.AssetId, amountOut, maxAmountIn lib.Balance, route lib.Route) lib.ErrorI {
	return r.trade("buy", who, assetIn, assetOut, route, lib.DirectionBuy, func(route lib.Route) (lib.Balance, lib.Balance, lib.ErrorI) {
		in, err := r.executeBuy(who, route, amountOut, maxAmountIn)
		return in, amountOut, err
	})
}

// SellAll() sells the entire reducible balance of assetIn, read when the trade starts
func (r *Router) SellAll(who crypto.AddressI, assetIn, assetOut lib.AssetId, minAmountOut lib.Balance, route lib.Route) lib.ErrorI {
	return r.trade("sell_all", who, assetIn, assetOut, route, lib.DirectionSell, func(route lib.Route) (lib.Balance, lib.Balance, lib.ErrorI) {
		amountIn, err := r.sellAllAmount(who, assetIn, assetOut)
		if err != nil {
			return lib.ZeroBalance(), lib.ZeroBalance(), err
		}
		if amountIn.IsZero() {
			return lib.ZeroBalance(), lib.ZeroBalance(), ErrZeroAmount()
		}
		out, err := r.executeSell(who, route, amountIn, minAmountOut)
		return amountIn, out, err
	})
}

// sellAllAmount() is the reducible balance of assetIn; when native is sold into an insufficient asset the
// account doesn't hold yet, the native that pays its deposit is kept back
func (r *Router) sellAllAmount(who crypto.AddressI, assetIn, assetOut lib.AssetId) (lib.Balance, lib.ErrorI) {
	amount, err := r.sm.ReducibleBalance(who, assetIn)
	if err != nil || assetIn != r.sm.NativeAssetId() {
		return amount, err
	}
	reserve, err := r.sm.DepositReserve(who, assetOut)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	return amount.SaturatingSub(reserve), nil
}

// executeFn runs the hops of a resolved route and returns the amounts traded
type executeFn func(route lib.Route) (amountIn, amountOut lib.Balance, err lib.ErrorI)

// trade() is the envelope of every router trade: resolve and validate the route, take the event id and
// tag the pool swaps with it, execute, check the spent balance and record the result
func (r *Router) trade(operation string, who crypto.AddressI, assetIn, assetOut lib.AssetId, route lib.Route, d lib.TradeDirection, execute executeFn) lib.ErrorI {
	var hops int
	err := r.sm.Atomic(func() lib.ErrorI {
		resolved, _, err := r.ResolveRoute(assetIn, assetOut, route, d)
		if err != nil {
			return err
		}
		hops = len(resolved)
		if err = r.ValidateRoute(resolved, assetIn, assetOut, d); err != nil {
			return err
		}
		eventId, err := r.sm.NextEventId()
		if err != nil {
			return err
		}
		r.sm.PushExecution(lib.Router(eventId))
		defer func() { _ = r.sm.PopExecution() }()
		initial, err := r.sm.GetBalance(who, assetIn)
		if err != nil {
			return err
		}
		amountIn, amountOut, err := execute(resolved)
		if err != nil {
			return err
		}
		final, err := r.sm.GetBalance(who, assetIn)
		if err != nil {
			return err
		}
		if err = checkSpent(initial, final, amountIn); err != nil {
			return err
		}
		r.log.Debugf("Executed %s of %s %d for %s %d along %s", operation, amountIn, assetIn, amountOut, assetOut, resolved)
		return r.sm.EventExecuted(who, assetIn, assetOut, amountIn, amountOut, eventId)
	})
	r.sm.Metrics().UpdateTradeMetrics(operation, hops, err)
	return err
}

// ResolveRoute() returns the explicit route, else the stored route of the pair if it validates in the direction,
// else the omnipool hop; stored reports whether the stored route was chosen
func (r *Router) ResolveRoute(assetIn, assetOut lib.AssetId, route lib.Route, d lib.TradeDirection) (resolved lib.Route, stored bool, err lib.ErrorI) {
	if len(route) != 0 {
		return route, false, nil
	}
	resolved, found, err := r.GetRoute(lib.NewAssetPair(assetIn, assetOut))
	if err != nil {
		return nil, false, err
	}
	if found {
		if e := r.ValidateRoute(resolved, assetIn, assetOut, d); e == nil {
			return resolved, true, nil
		}
		r.log.Debugf("Stored route %s is not executable, using the omnipool", resolved)
	}
	return lib.DefaultRoute(assetIn, assetOut), false, nil
}

// executeSell() quotes the whole route first, then executes hop by hop, each hop selling the previous output
func (r *Router) executeSell(who crypto.AddressI, route lib.Route, amountIn, minAmountOut lib.Balance) (lib.Balance, lib.ErrorI) {
	if amountIn.IsZero() {
		return lib.ZeroBalance(), ErrZeroAmount()
	}
	if err := r.requireBalance(who, route[0].AssetIn, amountIn); err != nil {
		return lib.ZeroBalance(), err
	}
	pools, err := r.poolsOf(route)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	amount := amountIn
	for i, t := range route {
		if amount, err = pools[i].CalculateSell(t, amount); err != nil {
			return lib.ZeroBalance(), err
		}
	}
	if amount.Lt(minAmountOut) {
		return lib.ZeroBalance(), ErrTradingLimitReached()
	}
	amount = amountIn
	for i, t := range route {
		minOut := lib.ZeroBalance()
		if i == len(route)-1 {
			minOut = minAmountOut
		}
		err = r.sm.WithEDMode(edMode(i, len(route)), func() lib.ErrorI {
			tr, e := pools[i].ValidateSell(who, t, amount, minOut, false)
			if e != nil {
				return e
			}
			if e = pools[i].ExecuteSell(tr); e != nil {
				return e
			}
			amount = tr.AmountOut
			return nil
		})
		if err != nil {
			return lib.ZeroBalance(), err
		}
	}
	return amount, nil
}

// executeBuy() computes the exact amount of every hop from the last hop back, then executes front to back
func (r *Router) executeBuy(who crypto.AddressI, route lib.Route, amountOut, maxAmountIn lib.Balance) (lib.Balance, lib.ErrorI) {
	if amountOut.IsZero() {
		return lib.ZeroBalance(), ErrZeroAmount()
	}
	pools, err := r.poolsOf(route)
	if err != nil {
		return lib.ZeroBalance(), err
	}
	// amounts[i] is spent by hop i, amounts[i+1] is bought by it
	amounts := make([]lib.Balance, len(route)+1)
	amounts[len(route)] = amountOut
	for i := len(route) - 1; i >= 0; i-- {
		if amounts[i], err = pools[i].CalculateBuy(route[i], amounts[i+1]); err != nil {
			return lib.ZeroBalance(), err
		}
	}
	if amounts[0].Gt(maxAmountIn) {
		return lib.ZeroBalance(), ErrTradingLimitReached()
	}
	if err = r.requireBalance(who, route[0].AssetIn, amounts[0]); err != nil {
		return lib.ZeroBalance(), err
	}
	for i, t := range route {
		maxIn := amounts[i]
		if i == 0 {
			maxIn = maxAmountIn
		}
		err = r.sm.WithEDMode(edMode(i, len(route)), func() lib.ErrorI {
			tr, e := pools[i].ValidateBuy(who, t, amounts[i+1], maxIn, false)
			if e != nil {
				return e
			}
			if i == 0 {
				amounts[0] = tr.AmountIn
			}
			return pools[i].ExecuteBuy(tr)
		})
		if err != nil {
			return lib.ZeroBalance(), err
		}
	}
	return amounts[0], nil
}

// edMode() relaxes the deposit hooks for the intermediate assets of a multi hop route: the first hop
// does not charge for its output, the last does not refund its input, the hops between do neither
func edMode(i, hops int) fsm.EDMode {
	switch {
	case hops == 1:
		return fsm.EDModeNone
	case i == 0:
		return fsm.EDModeSkipCharge
	case i == hops-1:
		return fsm.EDModeSkipRefund
	default:
		return fsm.EDModeSkipBoth
	}
}

// poolsOf() returns the pool of every hop
func (r *Router) poolsOf(route lib.Route) ([]lib.PoolI, lib.ErrorI) {
	pools := make([]lib.PoolI, len(route))
	for i, t := range route {
		p, err := r.Pool(t)
		if err != nil {
			return nil, err
		}
		pools[i] = p
	}
	return pools, nil
}

func (r *Router) requireBalance(who crypto.AddressI, id lib.AssetId, amount lib.Balance) lib.ErrorI {
	balance, err := r.sm.GetBalance(who, id)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return ErrInsufficientBalance()
	}
	return nil
}

// checkSpent() verifies the account's balance of the asset sold fell by at least amountIn
func checkSpent(initial, final, amountIn lib.Balance) lib.ErrorI {
	spent, err := initial.Sub(final)
	if err != nil {
		return ErrInvalidOutput(err)
	}
	if spent.Lt(amountIn) {
		return ErrInvalidRouteExecution()
	}
	return nil
}
