package router

import (
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

// This file defines error objects for the Router module

func ErrTradingLimitReached() lib.ErrorI {
	return lib.NewError(lib.CodeTradingLimitReached, lib.RouterModule, "trading limit reached")
}

func ErrMaxTradesExceeded(max int) lib.ErrorI {
	return lib.NewError(lib.CodeMaxTradesExceeded, lib.RouterModule, fmt.Sprintf("route has more than %d trades", max))
}

func ErrPoolNotSupported(kind lib.PoolKind) lib.ErrorI {
	return lib.NewError(lib.CodePoolNotSupported, lib.RouterModule, fmt.Sprintf("pool type %s is not supported", kind))
}

func ErrInsufficientBalance() lib.ErrorI {
	return lib.NewError(lib.CodeRouterInsufficientBalance, lib.RouterModule, "insufficient balance of the asset sold")
}

func ErrInvalidRoute(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidRoute, lib.RouterModule, "invalid route: "+reason)
}

func ErrInvalidRouteExecution() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidRouteExecution, lib.RouterModule, "the route spent less than the amount sold")
}

func ErrRouteUpdateIsNotSuccessful() lib.ErrorI {
	return lib.NewError(lib.CodeRouteUpdateIsNotSuccessful, lib.RouterModule, "route update is not successful")
}

func ErrRouteHasNoOracle(t lib.Trade) lib.ErrorI {
	return lib.NewError(lib.CodeRouteHasNoOracle, lib.RouterModule, fmt.Sprintf("hop %s has no oracle price", t))
}

func ErrInvalidOutput(err error) lib.ErrorI {
	return lib.NewError(lib.CodeRouterInvalidOutput, lib.RouterModule, fmt.Sprintf("invalid output: %s", err))
}

func ErrZeroAmount() lib.ErrorI {
	return lib.NewError(lib.CodeRouterZeroAmount, lib.RouterModule, "amount is zero")
}

func ErrSpotPriceNotAvailable() lib.ErrorI {
	return lib.NewError(lib.CodeRouterSpotPriceNotAvailable, lib.RouterModule, "spot price not available")
}
