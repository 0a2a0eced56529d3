package curve

import (
	"cosmossdk.io/math"

	"github.com/driftpool/core/fixedpoint"
	"github.com/driftpool/core/types"
)

// mulDivFor returns the MulDiv variant matching rounding, so the shared
// pool-token conversion and the per-variant deposit/withdraw math can take
// the rounding mode as data instead of branching at every call site.
func mulDivFor(rounding types.RoundingMode) func(a, b, c math.Int) (math.Int, error) {
	if rounding == types.Ceiling {
		return fixedpoint.MulDivCeil
	}
	return fixedpoint.MulDivFloor
}

// ceilDiv computes ceil(a/b) using the shared checked multiply-divide so the
// same 128-bit overflow guard applies as everywhere else in the kernel.
func ceilDiv(a, b math.Int) (math.Int, error) {
	return fixedpoint.MulDivCeil(a, math.OneInt(), b)
}

// requireNonZero fails ErrZeroTradingTokens when any of the given amounts is
// zero. Used after every swap/deposit/withdraw computation per spec.md §4.4's
// zero-output guard.
func requireNonZero(amounts ...math.Int) error {
	for _, a := range amounts {
		if a.IsZero() {
			return types.ErrZeroTradingTokens.Wrap("computed amount is zero")
		}
	}
	return nil
}
