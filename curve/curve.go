// Package curve implements C3, the curve family: three invariant-preserving
// swap-curve variants behind one Calculator interface, grounded on the
// variant-specific formulas in spec.md §4.3 and on original_source's
// constant-product/constant-price/offset test fixtures.
package curve

import (
	"cosmossdk.io/math"

	"github.com/driftpool/core/types"
)

// InitialSupply is the fixed LP-share quantity minted on a pool's first
// deposit, independent of curve variant (spec.md §3).
var InitialSupply = math.NewInt(1_000_000_000)

// SwapResult is the outcome of Calculator.SwapWithoutFees: the amount of
// the source token actually consumed (which may be less than requested —
// see Offset) and the amount of the destination token paid out.
type SwapResult struct {
	SourceAmountSwapped      math.Int
	DestinationAmountSwapped math.Int
}

// TradingTokens is the pair of reserve amounts a pool-token conversion
// produces or requires.
type TradingTokens struct {
	A, B math.Int
}

// Calculator is the uniform interface every curve variant implements.
// Every method is a pure function of its arguments; no variant holds
// mutable state beyond its own immutable parameters.
type Calculator interface {
	// Kind identifies the variant for the wire encoding in spec.md §6.
	Kind() types.CurveKind

	// SwapWithoutFees solves the invariant for sourceAmount units of the
	// source token being added, given direction. Fails ZeroTradingTokens
	// when either resulting amount rounds to zero.
	SwapWithoutFees(sourceAmount, sourceReserve, destinationReserve math.Int, direction types.TradeDirection) (SwapResult, error)

	// DepositSingleTokenType computes the pool tokens minted for a
	// single-sided deposit of sourceAmount on the side direction selects.
	DepositSingleTokenType(sourceAmount, reserveA, reserveB, poolSupply math.Int, direction types.TradeDirection) (math.Int, error)

	// WithdrawSingleTokenTypeExactOut computes the pool tokens that must
	// be burned to receive exactly destinationAmount of the side
	// direction selects.
	WithdrawSingleTokenTypeExactOut(destinationAmount, reserveA, reserveB, poolSupply math.Int, direction types.TradeDirection, rounding types.RoundingMode) (math.Int, error)

	// PoolTokensToTradingTokens converts a balanced pool-token amount into
	// the proportional reserve-A/reserve-B amounts.
	PoolTokensToTradingTokens(poolAmount, poolSupply, reserveA, reserveB math.Int, rounding types.RoundingMode) (TradingTokens, error)

	// NormalizedValue returns a monotonic scalar of the reserves, used to
	// check that deposits/withdrawals never dilute existing LPs.
	NormalizedValue(reserveA, reserveB math.Int) (math.Int, error)

	// Validate checks the curve's own parameters (e.g. price/offset != 0).
	Validate() error

	// ValidateSupply checks that a pool may be initialized with the given
	// starting reserves.
	ValidateSupply(reserveA, reserveB math.Int) error

	// NewPoolSupply returns the LP supply minted on first deposit.
	NewPoolSupply() math.Int

	// AllowsDeposits reports whether balanced/single-sided deposits are
	// permitted on this variant.
	AllowsDeposits() bool
}

// EncodeKind returns the one-byte wire tag for a curve variant (spec.md §6).
func EncodeKind(k types.CurveKind) byte { return byte(k) }

// DecodeKind parses a one-byte wire tag back into a CurveKind, rejecting
// any value outside the three known variants.
func DecodeKind(b byte) (types.CurveKind, error) {
	switch types.CurveKind(b) {
	case types.CurveConstantProduct, types.CurveConstantPrice, types.CurveOffset:
		return types.CurveKind(b), nil
	default:
		return 0, types.ErrInvalidCurve.Wrapf("unknown curve tag %d", b)
	}
}

// poolTokensToTradingTokens is the proportional-split conversion shared by
// every variant: a fraction poolAmount/poolSupply of each reserve.
func poolTokensToTradingTokens(poolAmount, poolSupply, reserveA, reserveB math.Int, rounding types.RoundingMode) (TradingTokens, error) {
	if poolSupply.IsZero() {
		return TradingTokens{}, types.ErrCalculationFailure.Wrap("pool supply is zero")
	}
	mulDiv := mulDivFor(rounding)

	a, err := mulDiv(reserveA, poolAmount, poolSupply)
	if err != nil {
		return TradingTokens{}, err
	}
	b, err := mulDiv(reserveB, poolAmount, poolSupply)
	if err != nil {
		return TradingTokens{}, err
	}
	return TradingTokens{A: a, B: b}, nil
}
