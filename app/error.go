package app

import (
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

func ErrUnknownMessageType(t string) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownMessageType, lib.AppModule, fmt.Sprintf("unknown message type: %q", t))
}

func ErrInvalidMessage(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidMessage, lib.AppModule, fmt.Sprintf("invalid message: %s", reason))
}

func ErrInvalidBlock(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidBlock, lib.AppModule, fmt.Sprintf("invalid block: %s", reason))
}

func ErrInvalidPoolGenesis(err lib.ErrorI) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidPoolGenesis, lib.AppModule, fmt.Sprintf("pool genesis failed with err: %s", err.Error()))
}
