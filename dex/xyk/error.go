package xyk

import (
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

// This file defines error objects for the XYK module

func ErrTokenPoolNotFound() lib.ErrorI {
	return lib.NewError(lib.CodeTokenPoolNotFound, lib.XYKModule, "xyk pool does not exist")
}

func ErrTokenPoolAlreadyExists() lib.ErrorI {
	return lib.NewError(lib.CodeTokenPoolAlreadyExists, lib.XYKModule, "xyk pool already exists")
}

func ErrCannotCreatePoolSameAssets() lib.ErrorI {
	return lib.NewError(lib.CodeCannotCreatePoolSameAssets, lib.XYKModule, "cannot create a pool with the same asset")
}

func ErrInsufficientAssetBalance() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientAssetBalance, lib.XYKModule, "insufficient asset balance")
}

func ErrInsufficientTradingAmount() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientTradingAmount, lib.XYKModule, fmt.Sprintf("trade amount is below the minimum of %d", MinTradingLimit))
}

func ErrMaxInRatioExceeded() lib.ErrorI {
	return lib.NewError(lib.CodeMaxInRatioExceeded, lib.XYKModule, "amount in exceeds the max in ratio")
}

func ErrMaxOutRatioExceeded() lib.ErrorI {
	return lib.NewError(lib.CodeMaxOutRatioExceeded, lib.XYKModule, "amount out exceeds the max out ratio")
}

func ErrInsufficientLiquidity() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientLiquidity, lib.XYKModule, "insufficient pool liquidity")
}

func ErrTradingLimitReached() lib.ErrorI {
	return lib.NewError(lib.CodeAMMTradingLimitReached, lib.XYKModule, "trading limit reached")
}

func ErrInsufficientShares() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientShares, lib.XYKModule, "insufficient shares")
}

func ErrZeroAmount() lib.ErrorI {
	return lib.NewError(lib.CodeZeroAmount, lib.XYKModule, "amount is zero")
}
