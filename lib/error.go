package lib

import (
	"fmt"
	"math"
)

type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
}

func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code and message
func (p *Error) Error() string {
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

// Is() reports whether two errors carry the same module and code, ignoring the message
func Is(err error, target ErrorI) bool {
	e, ok := err.(ErrorI)
	if !ok || e == nil || target == nil {
		return false
	}
	return e.Code() == target.Code() && e.Module() == target.Module()
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeJSONMarshal      ErrorCode = 1
	CodeJSONUnmarshal    ErrorCode = 2
	CodeReadFile         ErrorCode = 3
	CodeWriteFile        ErrorCode = 4
	CodeInvalidAddress   ErrorCode = 5
	CodeInvalidArgument  ErrorCode = 6
	CodeBalanceOverflow  ErrorCode = 7
	CodeBalanceUnderflow ErrorCode = 8
	CodeDivideByZero     ErrorCode = 9
	CodeInvalidBalance   ErrorCode = 10
	CodeInvalidPoolType  ErrorCode = 11
	CodeInvalidConfig    ErrorCode = 12

	// Math Module
	MathModule ErrorModule = "fixed"

	// Math Module Error Codes
	CodeOverflow        ErrorCode = 1
	CodeUnderflow       ErrorCode = 2
	CodeMathDivByZero   ErrorCode = 3
	CodeInvalidDecimal  ErrorCode = 4
	CodeNegativeDecimal ErrorCode = 5

	// State Machine Module
	StateMachineModule ErrorModule = "state_machine"

	// State Machine Module Error Codes
	CodeInsufficientFunds       ErrorCode = 1
	CodeAssetNotFound           ErrorCode = 2
	CodeAssetAlreadyExists      ErrorCode = 3
	CodeInvalidAsset            ErrorCode = 4
	CodeConsumerRemaining       ErrorCode = 5
	CodeInvalidAmount           ErrorCode = 6
	CodeInvalidGenesis          ErrorCode = 7
	CodeEmptyExecutionStack     ErrorCode = 8
	CodeInvalidExistentialDep   ErrorCode = 9
	CodeUnknownMessage          ErrorCode = 10
	CodeProviderUnderflow       ErrorCode = 11
	CodeInvalidBlockHeight      ErrorCode = 12
	CodeNativeAssetUnregistered ErrorCode = 13

	// Oracle Module
	OracleModule ErrorModule = "oracle"

	// Oracle Module Error Codes
	CodeOracleNotFound  ErrorCode = 1
	CodeInvalidPeriod   ErrorCode = 2
	CodeInvalidSource   ErrorCode = 3
	CodeOraclePriceZero ErrorCode = 4

	// Router Module
	RouterModule ErrorModule = "router"

	// Router Module Error Codes
	CodeTradingLimitReached         ErrorCode = 1
	CodeMaxTradesExceeded           ErrorCode = 2
	CodePoolNotSupported            ErrorCode = 3
	CodeRouterInsufficientBalance   ErrorCode = 4
	CodeInvalidRoute                ErrorCode = 6
	CodeInvalidRouteExecution       ErrorCode = 7
	CodeRouteUpdateIsNotSuccessful  ErrorCode = 8
	CodeRouteHasNoOracle            ErrorCode = 9
	CodeRouterInvalidOutput         ErrorCode = 10
	CodeRouterZeroAmount            ErrorCode = 11
	CodeRouterSpotPriceNotAvailable ErrorCode = 12

	// XYK Module
	XYKModule ErrorModule = "xyk"

	// LBP Module
	LBPModule ErrorModule = "lbp"

	// Omnipool Module
	OmnipoolModule ErrorModule = "omnipool"

	// Stableswap Module
	StableswapModule ErrorModule = "stableswap"

	// Shared AMM Error Codes; each pool module reports them under its own module tag
	CodeTokenPoolNotFound          ErrorCode = 1
	CodeTokenPoolAlreadyExists     ErrorCode = 2
	CodeInsufficientAssetBalance   ErrorCode = 3
	CodeInsufficientTradingAmount  ErrorCode = 4
	CodeMaxInRatioExceeded         ErrorCode = 5
	CodeMaxOutRatioExceeded        ErrorCode = 6
	CodeAMMAssetNotFound           ErrorCode = 7
	CodeNotAllowed                 ErrorCode = 8
	CodeSaleIsNotRunning           ErrorCode = 9
	CodeInsufficientLiquidity      ErrorCode = 10
	CodeAssetNotTradable           ErrorCode = 11
	CodeAMMTradingLimitReached     ErrorCode = 12
	CodeCannotCreatePoolSameAssets ErrorCode = 13
	CodeInvalidPoolParameters      ErrorCode = 14
	CodeMathError                  ErrorCode = 15
	CodeInsufficientShares         ErrorCode = 16
	CodeSaleStarted                ErrorCode = 17
	CodeZeroAmount                 ErrorCode = 18

	// Storage Module
	StorageModule ErrorModule = "store"

	// Storage Module Error Codes
	CodeOpenDB        ErrorCode = 1
	CodeCloseDB       ErrorCode = 2
	CodeStoreSet      ErrorCode = 3
	CodeStoreGet      ErrorCode = 4
	CodeStoreDelete   ErrorCode = 5
	CodeStoreIterator ErrorCode = 6
	CodeCommitDB      ErrorCode = 7

	// App Module
	AppModule ErrorModule = "app"

	// App Module Error Codes
	CodeUnknownMessageType ErrorCode = 1
	CodeInvalidMessage     ErrorCode = 2
	CodeInvalidBlock       ErrorCode = 3
	CodeInvalidPoolGenesis ErrorCode = 4
)

func ErrJSONMarshal(err error) ErrorI {
	return NewError(CodeJSONMarshal, MainModule, fmt.Sprintf("json.marshal() failed with err: %s", err.Error()))
}

func ErrJSONUnmarshal(err error) ErrorI {
	return NewError(CodeJSONUnmarshal, MainModule, fmt.Sprintf("json.unmarshal() failed with err: %s", err.Error()))
}

func ErrReadFile(err error) ErrorI {
	return NewError(CodeReadFile, MainModule, fmt.Sprintf("os.ReadFile() failed with err: %s", err.Error()))
}

func ErrWriteFile(err error) ErrorI {
	return NewError(CodeWriteFile, MainModule, fmt.Sprintf("os.WriteFile() failed with err: %s", err.Error()))
}

func ErrInvalidAddress() ErrorI {
	return NewError(CodeInvalidAddress, MainModule, "address is invalid")
}

func ErrInvalidArgument(err error) ErrorI {
	return NewError(CodeInvalidArgument, MainModule, fmt.Sprintf("invalid argument: %s", err.Error()))
}

func ErrBalanceOverflow() ErrorI {
	return NewError(CodeBalanceOverflow, MainModule, "balance overflow")
}

func ErrBalanceUnderflow() ErrorI {
	return NewError(CodeBalanceUnderflow, MainModule, "balance underflow")
}

func ErrDivideByZero() ErrorI {
	return NewError(CodeDivideByZero, MainModule, "divide by zero")
}

func ErrInvalidBalance(s string) ErrorI {
	return NewError(CodeInvalidBalance, MainModule, fmt.Sprintf("invalid balance: %q", s))
}

func ErrInvalidPoolType(s string) ErrorI {
	return NewError(CodeInvalidPoolType, MainModule, fmt.Sprintf("invalid pool type: %q", s))
}

func ErrInvalidConfig(err error) ErrorI {
	return NewError(CodeInvalidConfig, MainModule, fmt.Sprintf("invalid config: %s", err.Error()))
}
