package types

import (
	"cosmossdk.io/errors"
)

// Sentinel errors for the pool mathematics core, registered once and
// reused by the fixed-point kernel, fee schedule, curve family, and
// operation orchestrator. Codespace/code pairs follow spec.md §7.
var (
	ErrCalculationFailure        = errors.Register(ModuleName, 1, "overflow, division by zero, or narrowing failure")
	ErrInvalidFee                = errors.Register(ModuleName, 2, "fee numerator/denominator pair fails validation")
	ErrInvalidCurve              = errors.Register(ModuleName, 3, "curve parameter is zero or curve tag is unknown")
	ErrEmptySupply               = errors.Register(ModuleName, 4, "initial reserve A or B is zero")
	ErrZeroTradingTokens         = errors.Register(ModuleName, 5, "a computed transfer or pool-token amount is zero")
	ErrExceededSlippage          = errors.Register(ModuleName, 6, "output below minimum or input above maximum")
	ErrUnsupportedCurveOperation = errors.Register(ModuleName, 7, "operation is not supported on this curve variant")
	ErrRepeatedMint              = errors.Register(ModuleName, 8, "token A and token B identifiers must differ")
)
