package fsm

import (
	"errors"
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

// This file defines error objects for the State Machine module

func ErrInsufficientFunds() lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientFunds, lib.StateMachineModule, "insufficient funds")
}

func ErrAssetNotFound(id lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeAssetNotFound, lib.StateMachineModule, fmt.Sprintf("asset %d not found", id))
}

func ErrAssetAlreadyExists(id lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeAssetAlreadyExists, lib.StateMachineModule, fmt.Sprintf("asset %d already exists", id))
}

func ErrInvalidAsset(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidAsset, lib.StateMachineModule, "invalid asset: "+reason)
}

func ErrConsumerRemaining() lib.ErrorI {
	return lib.NewError(lib.CodeConsumerRemaining, lib.StateMachineModule, "account has insufficient assets that depend on its last sufficient asset")
}

func ErrInvalidAmount() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidAmount, lib.StateMachineModule, "amount must be greater than zero")
}

func ErrInvalidGenesis(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidGenesis, lib.StateMachineModule, "invalid genesis: "+reason)
}

func ErrReadGenesisFile(err error) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidGenesis, lib.StateMachineModule, fmt.Sprintf("read genesis file failed with err: %s", err.Error()))
}

func ErrEmptyExecutionStack() lib.ErrorI {
	return lib.NewError(lib.CodeEmptyExecutionStack, lib.StateMachineModule, "execution stack is empty")
}

func ErrInvalidExistentialDeposit() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidExistentialDep, lib.StateMachineModule, "existential deposit must be greater than zero")
}

func ErrUnknownMessage(t string) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownMessage, lib.StateMachineModule, fmt.Sprintf("unknown message type %s", t))
}

func ErrProviderUnderflow() lib.ErrorI {
	return lib.NewError(lib.CodeProviderUnderflow, lib.StateMachineModule, "account reference counter underflow")
}

func ErrNativeAssetUnregistered(id lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeNativeAssetUnregistered, lib.StateMachineModule, fmt.Sprintf("native asset %d is not registered as sufficient", id))
}

var (
	errNotCommittable = errors.New("the current store is a nested write-set and cannot be committed")
	errPanic          = errors.New("recovered from a panic")
)
