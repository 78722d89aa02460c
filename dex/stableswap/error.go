package stableswap

import (
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

// This file defines error objects for the Stableswap module

func ErrTokenPoolNotFound(id lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeTokenPoolNotFound, lib.StableswapModule, fmt.Sprintf("stableswap pool %d does not exist", id))
}

func ErrTokenPoolAlreadyExists(id lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeTokenPoolAlreadyExists, lib.StableswapModule, fmt.Sprintf("stableswap pool %d already exists", id))
}

func ErrAssetNotInPool(id lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeAMMAssetNotFound, lib.StableswapModule, fmt.Sprintf("asset %d is not in the pool", id))
}

func ErrInvalidPoolParameters(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidPoolParameters, lib.StableswapModule, "invalid pool parameters: "+reason)
}

func ErrInsufficientAssetBalance() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientAssetBalance, lib.StableswapModule, "insufficient asset balance")
}

func ErrInsufficientTradingAmount() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientTradingAmount, lib.StableswapModule, fmt.Sprintf("trade amount is below the minimum of %d", MinTradingLimit))
}

func ErrTradingLimitReached() lib.ErrorI {
	return lib.NewError(lib.CodeAMMTradingLimitReached, lib.StableswapModule, "trading limit reached")
}

func ErrInsufficientLiquidity() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientLiquidity, lib.StableswapModule, "insufficient pool liquidity")
}

func ErrInsufficientShares() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientShares, lib.StableswapModule, "insufficient shares")
}

func ErrMath() lib.ErrorI {
	return lib.NewError(lib.CodeMathError, lib.StableswapModule, "invariant did not converge")
}

func ErrNotAllowed() lib.ErrorI {
	return lib.NewError(lib.CodeNotAllowed, lib.StableswapModule, "trade is not allowed")
}
