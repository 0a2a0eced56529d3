package curve

import (
	"cosmossdk.io/math"

	"github.com/driftpool/core/fixedpoint"
	"github.com/driftpool/core/types"
)

// Offset implements x*(y+offset)=k: token B trades against a virtual
// reserve y+offset instead of its real balance, letting a pool be bootstrapped
// with zero real B liquidity and still quote a finite A-to-B price. Grounded
// on original_source's OffsetCurve and its token_b_offset parameter; no
// deposit of either kind and no single-sided withdrawal is supported,
// matching its allow_deposit() == false. Balanced withdrawal is supported.
type Offset struct {
	TokenBOffset math.Int
}

var _ Calculator = Offset{}

func (Offset) Kind() types.CurveKind { return types.CurveOffset }

func (o Offset) Validate() error {
	if !o.TokenBOffset.IsPositive() {
		return types.ErrInvalidCurve.Wrap("offset curve requires a positive token B offset")
	}
	return nil
}

// ValidateSupply only requires a nonzero A reserve. A zero real B reserve is
// the whole point of this curve: the offset stands in for it until the pool
// accumulates real B through B-to-A trades.
func (Offset) ValidateSupply(reserveA, _ math.Int) error {
	if reserveA.IsZero() {
		return types.ErrEmptySupply
	}
	return nil
}

func (Offset) NewPoolSupply() math.Int { return InitialSupply }

func (Offset) AllowsDeposits() bool { return false }

// SwapWithoutFees solves x*(y+offset)=k. A-to-B draws down the real B
// reserve through the virtual one and must be clamped at the point where
// the real reserve would go negative: past that point the curve has no more
// real B to give, however large the A input. B-to-A only ever grows the
// real B reserve, so the destination A reserve shrinks asymptotically
// toward (but never below) zero and needs no clamp.
func (o Offset) SwapWithoutFees(sourceAmount, sourceReserve, destinationReserve math.Int, direction types.TradeDirection) (SwapResult, error) {
	if direction == types.BtoA {
		return o.swapBtoA(sourceAmount, sourceReserve, destinationReserve)
	}
	return o.swapAtoB(sourceAmount, sourceReserve, destinationReserve)
}

func (o Offset) swapAtoB(sourceAmount, reserveA, reserveB math.Int) (SwapResult, error) {
	virtualB, err := fixedpoint.CheckedAdd(reserveB, o.TokenBOffset)
	if err != nil {
		return SwapResult{}, err
	}
	k, err := fixedpoint.CheckedMul(reserveA, virtualB)
	if err != nil {
		return SwapResult{}, err
	}

	// maxSourceAmount is the largest A input the curve can absorb before the
	// real B reserve would be driven below zero: at that boundary the new
	// virtual B reserve equals the offset exactly, so
	// new_x = k/offset = reserveA*virtualB/offset, and
	// maxSourceAmount = new_x - reserveA = reserveA*reserveB/offset.
	maxSourceAmount, err := fixedpoint.MulDivFloor(reserveA, reserveB, o.TokenBOffset)
	if err != nil {
		return SwapResult{}, err
	}

	actualSourceAmount := sourceAmount
	if actualSourceAmount.GT(maxSourceAmount) {
		actualSourceAmount = maxSourceAmount
	}

	if actualSourceAmount.IsZero() {
		return SwapResult{}, types.ErrZeroTradingTokens.Wrap("no real token B liquidity remains")
	}

	newReserveA, err := fixedpoint.CheckedAdd(reserveA, actualSourceAmount)
	if err != nil {
		return SwapResult{}, err
	}
	newVirtualB, err := ceilDiv(k, newReserveA)
	if err != nil {
		return SwapResult{}, err
	}
	newRealB, err := fixedpoint.CheckedSub(newVirtualB, o.TokenBOffset)
	if err != nil {
		// The clamp above should make this unreachable, but treat a residual
		// negative as exhausted liquidity rather than propagating a raw
		// underflow.
		newRealB = math.ZeroInt()
	}
	destinationAmount, err := fixedpoint.CheckedSub(reserveB, newRealB)
	if err != nil {
		return SwapResult{}, err
	}

	if err := requireNonZero(actualSourceAmount, destinationAmount); err != nil {
		return SwapResult{}, err
	}
	return SwapResult{SourceAmountSwapped: actualSourceAmount, DestinationAmountSwapped: destinationAmount}, nil
}

func (o Offset) swapBtoA(sourceAmount, reserveB, reserveA math.Int) (SwapResult, error) {
	virtualB, err := fixedpoint.CheckedAdd(reserveB, o.TokenBOffset)
	if err != nil {
		return SwapResult{}, err
	}
	k, err := fixedpoint.CheckedMul(reserveA, virtualB)
	if err != nil {
		return SwapResult{}, err
	}

	newReserveB, err := fixedpoint.CheckedAdd(reserveB, sourceAmount)
	if err != nil {
		return SwapResult{}, err
	}
	newVirtualB, err := fixedpoint.CheckedAdd(newReserveB, o.TokenBOffset)
	if err != nil {
		return SwapResult{}, err
	}
	newReserveA, err := ceilDiv(k, newVirtualB)
	if err != nil {
		return SwapResult{}, err
	}
	destinationAmount, err := fixedpoint.CheckedSub(reserveA, newReserveA)
	if err != nil {
		return SwapResult{}, err
	}

	if err := requireNonZero(sourceAmount, destinationAmount); err != nil {
		return SwapResult{}, err
	}
	return SwapResult{SourceAmountSwapped: sourceAmount, DestinationAmountSwapped: destinationAmount}, nil
}

func (Offset) DepositSingleTokenType(_, _, _, _ math.Int, _ types.TradeDirection) (math.Int, error) {
	return math.Int{}, types.ErrUnsupportedCurveOperation.Wrap("offset curve does not support deposits")
}

func (Offset) WithdrawSingleTokenTypeExactOut(_, _, _, _ math.Int, _ types.TradeDirection, _ types.RoundingMode) (math.Int, error) {
	return math.Int{}, types.ErrUnsupportedCurveOperation.Wrap("offset curve does not support withdrawals")
}

func (Offset) PoolTokensToTradingTokens(poolAmount, poolSupply, reserveA, reserveB math.Int, rounding types.RoundingMode) (TradingTokens, error) {
	return poolTokensToTradingTokens(poolAmount, poolSupply, reserveA, reserveB, rounding)
}

// NormalizedValue is the curve's own invariant k = reserveA*(reserveB+offset),
// monotonic enough to guard initialization even though ongoing deposits are
// unsupported.
func (o Offset) NormalizedValue(reserveA, reserveB math.Int) (math.Int, error) {
	virtualB, err := fixedpoint.CheckedAdd(reserveB, o.TokenBOffset)
	if err != nil {
		return math.Int{}, err
	}
	return fixedpoint.CheckedMul(reserveA, virtualB)
}
