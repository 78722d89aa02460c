package lbp

import (
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

// This file defines error objects for the LBP module

func ErrTokenPoolNotFound() lib.ErrorI {
	return lib.NewError(lib.CodeTokenPoolNotFound, lib.LBPModule, "lbp pool does not exist")
}

func ErrTokenPoolAlreadyExists() lib.ErrorI {
	return lib.NewError(lib.CodeTokenPoolAlreadyExists, lib.LBPModule, "lbp pool already exists")
}

func ErrCannotCreatePoolSameAssets() lib.ErrorI {
	return lib.NewError(lib.CodeCannotCreatePoolSameAssets, lib.LBPModule, "cannot create a pool with the same asset")
}

func ErrInvalidPoolParameters(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidPoolParameters, lib.LBPModule, "invalid pool parameters: "+reason)
}

func ErrSaleIsNotRunning() lib.ErrorI {
	return lib.NewError(lib.CodeSaleIsNotRunning, lib.LBPModule, "sale is not running")
}

func ErrSaleStarted() lib.ErrorI {
	return lib.NewError(lib.CodeSaleStarted, lib.LBPModule, "liquidity can't change while the sale is running")
}

func ErrNotAllowed() lib.ErrorI {
	return lib.NewError(lib.CodeNotAllowed, lib.LBPModule, "only the pool owner may change liquidity")
}

func ErrInsufficientAssetBalance() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientAssetBalance, lib.LBPModule, "insufficient asset balance")
}

func ErrInsufficientTradingAmount() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientTradingAmount, lib.LBPModule, fmt.Sprintf("trade amount is below the minimum of %d", MinTradingLimit))
}

func ErrMaxInRatioExceeded() lib.ErrorI {
	return lib.NewError(lib.CodeMaxInRatioExceeded, lib.LBPModule, "amount in exceeds the max in ratio")
}

func ErrMaxOutRatioExceeded() lib.ErrorI {
	return lib.NewError(lib.CodeMaxOutRatioExceeded, lib.LBPModule, "amount out exceeds the max out ratio")
}

func ErrTradingLimitReached() lib.ErrorI {
	return lib.NewError(lib.CodeAMMTradingLimitReached, lib.LBPModule, "trading limit reached")
}

func ErrInsufficientLiquidity() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientLiquidity, lib.LBPModule, "insufficient pool liquidity")
}

func ErrMath(err error) lib.ErrorI {
	return lib.NewError(lib.CodeMathError, lib.LBPModule, "weighted math failed: "+err.Error())
}

func ErrZeroAmount() lib.ErrorI {
	return lib.NewError(lib.CodeZeroAmount, lib.LBPModule, "amount is zero")
}
