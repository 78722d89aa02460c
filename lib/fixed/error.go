package fixed

import (
	"fmt"

	"github.com/canopy-network/omniroute/lib"
)

func ErrOverflow() lib.ErrorI {
	return lib.NewError(lib.CodeOverflow, lib.MathModule, "fixed point overflow")
}

func ErrUnderflow() lib.ErrorI {
	return lib.NewError(lib.CodeUnderflow, lib.MathModule, "fixed point underflow")
}

func ErrDivByZero() lib.ErrorI {
	return lib.NewError(lib.CodeMathDivByZero, lib.MathModule, "fixed point division by zero")
}

func ErrInvalidDecimal(s string) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidDecimal, lib.MathModule, fmt.Sprintf("invalid decimal %q", s))
}

func ErrNegativeDecimal() lib.ErrorI {
	return lib.NewError(lib.CodeNegativeDecimal, lib.MathModule, "fixed point numbers are unsigned")
}
