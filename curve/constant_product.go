package curve

import (
	"cosmossdk.io/math"

	"github.com/driftpool/core/fixedpoint"
	"github.com/driftpool/core/types"
)

// ConstantProduct implements x*y=k, the default curve variant. It carries
// no parameters of its own; every method works directly off the pool's live
// reserves, grounded on the geometric-mean deposit math in
// x/dex/keeper/liquidity.go's AddLiquidity and on original_source's
// ConstantProductCurve.
type ConstantProduct struct{}

var _ Calculator = ConstantProduct{}

func (ConstantProduct) Kind() types.CurveKind { return types.CurveConstantProduct }

func (ConstantProduct) Validate() error { return nil }

func (ConstantProduct) ValidateSupply(reserveA, reserveB math.Int) error {
	if reserveA.IsZero() || reserveB.IsZero() {
		return types.ErrEmptySupply
	}
	return nil
}

func (ConstantProduct) NewPoolSupply() math.Int { return InitialSupply }

func (ConstantProduct) AllowsDeposits() bool { return true }

// SwapWithoutFees solves x*y=k for the destination amount, rounding the new
// destination reserve up so the invariant never shrinks and the payout is
// implicitly floored.
func (ConstantProduct) SwapWithoutFees(sourceAmount, sourceReserve, destinationReserve math.Int, _ types.TradeDirection) (SwapResult, error) {
	newSourceReserve, err := fixedpoint.CheckedAdd(sourceReserve, sourceAmount)
	if err != nil {
		return SwapResult{}, err
	}
	newDestinationReserve, err := fixedpoint.MulDivCeil(sourceReserve, destinationReserve, newSourceReserve)
	if err != nil {
		return SwapResult{}, err
	}
	destinationAmount, err := fixedpoint.CheckedSub(destinationReserve, newDestinationReserve)
	if err != nil {
		return SwapResult{}, err
	}
	if err := requireNonZero(sourceAmount, destinationAmount); err != nil {
		return SwapResult{}, err
	}
	return SwapResult{SourceAmountSwapped: sourceAmount, DestinationAmountSwapped: destinationAmount}, nil
}

// depositSingleTokenType implements pool_supply*(sqrt(1+source/reserve)-1)
// entirely in integer arithmetic: base = pool_supply^2*(reserve+source)/reserve,
// minted = floor(sqrt(base)) - pool_supply. The floor on both the ratio and
// the square root always under-mints relative to the exact real value,
// which is the side that protects existing LPs.
func depositSingleTokenType(sourceAmount, swapSourceReserve, poolSupply math.Int) (math.Int, error) {
	if sourceAmount.IsZero() {
		return math.ZeroInt(), nil
	}
	supplySq, err := fixedpoint.CheckedMul(poolSupply, poolSupply)
	if err != nil {
		return math.Int{}, err
	}
	newReserve, err := fixedpoint.CheckedAdd(swapSourceReserve, sourceAmount)
	if err != nil {
		return math.Int{}, err
	}
	base, err := fixedpoint.MulDivFloor(supplySq, newReserve, swapSourceReserve)
	if err != nil {
		return math.Int{}, err
	}
	root, err := fixedpoint.SqrtFloor(base)
	if err != nil {
		return math.Int{}, err
	}
	return fixedpoint.CheckedSub(root, poolSupply)
}

// withdrawSingleTokenTypeExactOut implements the inverse:
// pool_supply*(1-sqrt(1-exact_out/reserve)), i.e.
// burned = pool_supply - floor(sqrt(pool_supply^2*(reserve-exact_out)/reserve)).
func withdrawSingleTokenTypeExactOut(exactOut, swapDestinationReserve, poolSupply math.Int) (math.Int, error) {
	if exactOut.GTE(swapDestinationReserve) {
		return math.Int{}, types.ErrCalculationFailure.Wrap("exact-out amount exceeds reserve")
	}
	supplySq, err := fixedpoint.CheckedMul(poolSupply, poolSupply)
	if err != nil {
		return math.Int{}, err
	}
	remainder, err := fixedpoint.CheckedSub(swapDestinationReserve, exactOut)
	if err != nil {
		return math.Int{}, err
	}
	base, err := fixedpoint.MulDivFloor(supplySq, remainder, swapDestinationReserve)
	if err != nil {
		return math.Int{}, err
	}
	root, err := fixedpoint.SqrtFloor(base)
	if err != nil {
		return math.Int{}, err
	}
	return fixedpoint.CheckedSub(poolSupply, root)
}

func (ConstantProduct) DepositSingleTokenType(sourceAmount, reserveA, reserveB, poolSupply math.Int, direction types.TradeDirection) (math.Int, error) {
	sourceReserve := reserveA
	if direction == types.BtoA {
		sourceReserve = reserveB
	}
	minted, err := depositSingleTokenType(sourceAmount, sourceReserve, poolSupply)
	if err != nil {
		return math.Int{}, err
	}
	if err := requireNonZero(minted); err != nil {
		return math.Int{}, err
	}
	return minted, nil
}

func (ConstantProduct) WithdrawSingleTokenTypeExactOut(destinationAmount, reserveA, reserveB, poolSupply math.Int, direction types.TradeDirection, _ types.RoundingMode) (math.Int, error) {
	destinationReserve := reserveA
	if direction == types.AtoB {
		destinationReserve = reserveB
	}
	burned, err := withdrawSingleTokenTypeExactOut(destinationAmount, destinationReserve, poolSupply)
	if err != nil {
		return math.Int{}, err
	}
	if err := requireNonZero(burned); err != nil {
		return math.Int{}, err
	}
	return burned, nil
}

func (ConstantProduct) PoolTokensToTradingTokens(poolAmount, poolSupply, reserveA, reserveB math.Int, rounding types.RoundingMode) (TradingTokens, error) {
	return poolTokensToTradingTokens(poolAmount, poolSupply, reserveA, reserveB, rounding)
}

// NormalizedValue returns sqrt(reserveA*reserveB), the geometric mean
// invariant constant-product pools check deposits and withdrawals against.
func (ConstantProduct) NormalizedValue(reserveA, reserveB math.Int) (math.Int, error) {
	product, err := fixedpoint.CheckedMul(reserveA, reserveB)
	if err != nil {
		return math.Int{}, err
	}
	return fixedpoint.SqrtFloor(product)
}
