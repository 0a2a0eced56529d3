package curve

import (
	"cosmossdk.io/math"

	"github.com/driftpool/core/fixedpoint"
	"github.com/driftpool/core/types"
)

// ConstantPrice implements x+p*y=k: token B trades against token A at a
// fixed integer rate instead of a discovered one. Price is how many units
// of A one unit of B is worth, mirroring original_source's ConstantPriceCurve
// and its token_b_price field.
type ConstantPrice struct {
	Price math.Int
}

var _ Calculator = ConstantPrice{}

func (ConstantPrice) Kind() types.CurveKind { return types.CurveConstantPrice }

func (c ConstantPrice) Validate() error {
	if !c.Price.IsPositive() {
		return types.ErrInvalidCurve.Wrap("constant-price curve requires a positive price")
	}
	return nil
}

func (ConstantPrice) ValidateSupply(reserveA, reserveB math.Int) error {
	if reserveA.IsZero() || reserveB.IsZero() {
		return types.ErrEmptySupply
	}
	return nil
}

func (ConstantPrice) NewPoolSupply() math.Int { return InitialSupply }

func (ConstantPrice) AllowsDeposits() bool { return true }

// SwapWithoutFees converts at the fixed rate: A-in yields floor(source/price)
// of B, B-in yields source*price of A. There is no invariant to solve — the
// rate is the curve's only parameter.
func (c ConstantPrice) SwapWithoutFees(sourceAmount, _, _ math.Int, direction types.TradeDirection) (SwapResult, error) {
	var destinationAmount math.Int
	var err error
	if direction == types.AtoB {
		destinationAmount, err = fixedpoint.CheckedDiv(sourceAmount, c.Price)
	} else {
		destinationAmount, err = fixedpoint.CheckedMul(sourceAmount, c.Price)
	}
	if err != nil {
		return SwapResult{}, err
	}
	if err := requireNonZero(sourceAmount, destinationAmount); err != nil {
		return SwapResult{}, err
	}
	return SwapResult{SourceAmountSwapped: sourceAmount, DestinationAmountSwapped: destinationAmount}, nil
}

// valueInA expresses a reserve pair as a single scalar denominated in token
// A: reserveA + reserveB*price. Both the dilution check and the
// single-sided deposit/withdraw math work in this common unit.
func (c ConstantPrice) valueInA(reserveA, reserveB math.Int) (math.Int, error) {
	bValue, err := fixedpoint.CheckedMul(reserveB, c.Price)
	if err != nil {
		return math.Int{}, err
	}
	return fixedpoint.CheckedAdd(reserveA, bValue)
}

func (c ConstantPrice) DepositSingleTokenType(sourceAmount, reserveA, reserveB, poolSupply math.Int, direction types.TradeDirection) (math.Int, error) {
	givenValue := sourceAmount
	var err error
	if direction == types.BtoA {
		givenValue, err = fixedpoint.CheckedMul(sourceAmount, c.Price)
		if err != nil {
			return math.Int{}, err
		}
	}
	totalValue, err := c.valueInA(reserveA, reserveB)
	if err != nil {
		return math.Int{}, err
	}
	minted, err := fixedpoint.MulDivFloor(poolSupply, givenValue, totalValue)
	if err != nil {
		return math.Int{}, err
	}
	if err := requireNonZero(minted); err != nil {
		return math.Int{}, err
	}
	return minted, nil
}

func (c ConstantPrice) WithdrawSingleTokenTypeExactOut(destinationAmount, reserveA, reserveB, poolSupply math.Int, direction types.TradeDirection, _ types.RoundingMode) (math.Int, error) {
	givenValue := destinationAmount
	var err error
	if direction == types.AtoB {
		givenValue, err = fixedpoint.CheckedMul(destinationAmount, c.Price)
		if err != nil {
			return math.Int{}, err
		}
	}
	totalValue, err := c.valueInA(reserveA, reserveB)
	if err != nil {
		return math.Int{}, err
	}
	burned, err := fixedpoint.MulDivCeil(poolSupply, givenValue, totalValue)
	if err != nil {
		return math.Int{}, err
	}
	if err := requireNonZero(burned); err != nil {
		return math.Int{}, err
	}
	return burned, nil
}

// PoolTokensToTradingTokens does not split each reserve proportionally to
// its own balance (that would hand a withdrawer a lopsided share whenever
// the pool sits away from its nominal 1:1-value ratio). Instead it splits
// the withdrawer's share of the pool's total value evenly between the two
// sides: ideal_a = normalized_value * pool_amount/pool_supply, ideal_b =
// ideal_a/price. This is the same ideal payout
// original_source/.../test_withdraw_all_token_types.rs's
// test_withdraw_all_constant_price_curve exercises (a pool of
// A=1_000_000_000, B=1_000 at price 2_000_000 yields an ideal full-supply
// withdrawal of 1_500_000_000 A and 750 B, not a straight 1_000_000_000/1_000
// reserve split).
func (c ConstantPrice) PoolTokensToTradingTokens(poolAmount, poolSupply, reserveA, reserveB math.Int, rounding types.RoundingMode) (TradingTokens, error) {
	if poolSupply.IsZero() {
		return TradingTokens{}, types.ErrCalculationFailure.Wrap("pool supply is zero")
	}
	totalValue, err := c.NormalizedValue(reserveA, reserveB)
	if err != nil {
		return TradingTokens{}, err
	}
	mulDiv := mulDivFor(rounding)
	a, err := mulDiv(totalValue, poolAmount, poolSupply)
	if err != nil {
		return TradingTokens{}, err
	}
	b, err := mulDiv(a, math.OneInt(), c.Price)
	if err != nil {
		return TradingTokens{}, err
	}
	return TradingTokens{A: a, B: b}, nil
}

// NormalizedValue is half the pool's total A-denominated value: each side
// of a balanced operation draws against one half, per spec.md §4.3.
func (c ConstantPrice) NormalizedValue(reserveA, reserveB math.Int) (math.Int, error) {
	total, err := c.valueInA(reserveA, reserveB)
	if err != nil {
		return math.Int{}, err
	}
	return fixedpoint.CheckedDiv(total, math.NewInt(2))
}
