package oracle

import (
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

func ErrOracleNotFound(source string, a, b lib.AssetId) lib.ErrorI {
	return lib.NewError(lib.CodeOracleNotFound, lib.OracleModule, fmt.Sprintf("no %s oracle entry for (%d, %d)", source, a, b))
}

func ErrInvalidPeriod(s string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidPeriod, lib.OracleModule, fmt.Sprintf("invalid oracle period %q", s))
}

func ErrInvalidSource() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidSource, lib.OracleModule, "oracle source is empty")
}

func ErrOraclePriceZero() lib.ErrorI {
	return lib.NewError(lib.CodeOraclePriceZero, lib.OracleModule, "oracle price is zero")
}
