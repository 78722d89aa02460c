package omnipool

import (
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

// This file defines error objects for the Omnipool module

func ErrAssetNotFound(id lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeAMMAssetNotFound, lib.OmnipoolModule, fmt.Sprintf("asset %d is not in the omnipool", id))
}

func ErrAssetAlreadyAdded(id lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeTokenPoolAlreadyExists, lib.OmnipoolModule, fmt.Sprintf("asset %d is already in the omnipool", id))
}

func ErrNotAllowed() lib.ErrorI {
	return lib.NewError(lib.CodeNotAllowed, lib.OmnipoolModule, "buying or selling for the hub asset is not allowed")
}

func ErrSameAsset() lib.ErrorI {
	return lib.NewError(lib.CodeCannotCreatePoolSameAssets, lib.OmnipoolModule, "asset in and asset out are the same")
}

func ErrAssetNotTradable(id lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeAssetNotTradable, lib.OmnipoolModule, fmt.Sprintf("asset %d is not tradable in this direction", id))
}

func ErrInsufficientAssetBalance() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientAssetBalance, lib.OmnipoolModule, "insufficient asset balance")
}

func ErrInsufficientTradingAmount() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientTradingAmount, lib.OmnipoolModule, fmt.Sprintf("trade amount is below the minimum of %d", MinTradingLimit))
}

func ErrMaxInRatioExceeded() lib.ErrorI {
	return lib.NewError(lib.CodeMaxInRatioExceeded, lib.OmnipoolModule, "amount in exceeds the max in ratio")
}

func ErrMaxOutRatioExceeded() lib.ErrorI {
	return lib.NewError(lib.CodeMaxOutRatioExceeded, lib.OmnipoolModule, "amount out exceeds the max out ratio")
}

func ErrTradingLimitReached() lib.ErrorI {
	return lib.NewError(lib.CodeAMMTradingLimitReached, lib.OmnipoolModule, "trading limit reached")
}

func ErrInsufficientLiquidity() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientLiquidity, lib.OmnipoolModule, "insufficient pool liquidity")
}

func ErrInsufficientShares() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientShares, lib.OmnipoolModule, "insufficient shares")
}

func ErrInvalidInitialPrice() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidPoolParameters, lib.OmnipoolModule, "initial price must be non zero")
}

func ErrZeroAmount() lib.ErrorI {
	return lib.NewError(lib.CodeZeroAmount, lib.OmnipoolModule, "amount is zero")
}
