// Package pool implements C4, the operation orchestrator: it sequences fee
// assessment, curve math, and slippage checks into the five pool operations
// spec.md §4.4 describes, driving an explicit Uninitialized-to-Active state
// machine. Every method is a pure function from one Pool value and a set of
// arguments to a new Pool value and a result — there is no persistence or
// I/O here, mirroring the computation-only keeper methods in
// x/dex/keeper/liquidity.go and x/dex/keeper/fees.go but with the store
// access stripped out.
package pool

import (
	"cosmossdk.io/math"

	"github.com/driftpool/core/curve"
	"github.com/driftpool/core/feeschedule"
	"github.com/driftpool/core/fixedpoint"
	"github.com/driftpool/core/types"
)

// State is the pool's lifecycle stage.
type State int

const (
	Uninitialized State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "uninitialized"
}

// Pool is the full state of one AMM pair: which curve variant prices it,
// what fees it charges, and its live reserves and LP-token supply.
type Pool struct {
	State      State
	TokenA     string
	TokenB     string
	Curve      curve.Calculator
	Fees       feeschedule.FeeSchedule
	ReserveA   math.Int
	ReserveB   math.Int
	PoolSupply math.Int
}

// NewPool constructs an Uninitialized pool, validating the curve parameters,
// the fee schedule, and that the two token identifiers differ.
func NewPool(tokenA, tokenB string, calc curve.Calculator, fees feeschedule.FeeSchedule) (Pool, error) {
	if tokenA == tokenB {
		return Pool{}, types.ErrRepeatedMint
	}
	if err := calc.Validate(); err != nil {
		return Pool{}, err
	}
	if err := fees.Validate(); err != nil {
		return Pool{}, err
	}
	return Pool{
		State:      Uninitialized,
		TokenA:     tokenA,
		TokenB:     tokenB,
		Curve:      calc,
		Fees:       fees,
		ReserveA:   math.ZeroInt(),
		ReserveB:   math.ZeroInt(),
		PoolSupply: math.ZeroInt(),
	}, nil
}

func (p Pool) requireActive() error {
	if p.State != Active {
		return types.ErrCalculationFailure.Wrap("pool is not active")
	}
	return nil
}

// narrowLedgerAmount enforces spec.md §4.1/§4.3's 64-bit bound on a value
// about to cross the pure-computation boundary — a new reserve, a new LP
// supply, or one of the amounts in an emitted result — failing
// ErrCalculationFailure (via fixedpoint.NarrowToUint64) rather than letting
// a 128-bit intermediate escape the orchestrator unchecked.
func narrowLedgerAmount(x math.Int) (math.Int, error) {
	u64, err := fixedpoint.NarrowToUint64(x)
	if err != nil {
		return math.Int{}, err
	}
	return math.NewIntFromUint64(u64), nil
}

// InitializePool funds an Uninitialized pool with its starting reserves and
// mints the curve's fixed initial LP supply to the depositor.
func (p Pool) InitializePool(reserveA, reserveB math.Int) (Pool, math.Int, error) {
	if p.State != Uninitialized {
		return Pool{}, math.Int{}, types.ErrCalculationFailure.Wrap("pool is already initialized")
	}
	if err := p.Curve.ValidateSupply(reserveA, reserveB); err != nil {
		return Pool{}, math.Int{}, err
	}
	reserveA, err := narrowLedgerAmount(reserveA)
	if err != nil {
		return Pool{}, math.Int{}, err
	}
	reserveB, err = narrowLedgerAmount(reserveB)
	if err != nil {
		return Pool{}, math.Int{}, err
	}
	supply, err := narrowLedgerAmount(p.Curve.NewPoolSupply())
	if err != nil {
		return Pool{}, math.Int{}, err
	}
	p.State = Active
	p.ReserveA = reserveA
	p.ReserveB = reserveB
	p.PoolSupply = supply
	return p, supply, nil
}

// SwapOutcome is the trade-level accounting a Swap call returns: what the
// trader put in and received, and how the deducted fee split across the
// pool, the pool owner, and (if any) a referring host.
type SwapOutcome struct {
	SourceAmountSwapped      math.Int
	DestinationAmountSwapped math.Int
	TradeFee                 math.Int
	OwnerFee                 math.Int
	HostFee                  math.Int
}

// Swap executes a trade in direction for sourceAmount of the source token,
// failing ErrExceededSlippage if the payout would be below
// minimumDestinationAmount. takeHostFee false (or a disabled host fee pair)
// skips the host-fee split.
func (p Pool) Swap(direction types.TradeDirection, sourceAmount, minimumDestinationAmount math.Int, takeHostFee bool) (Pool, SwapOutcome, error) {
	if err := p.requireActive(); err != nil {
		return Pool{}, SwapOutcome{}, err
	}

	total, tradeFee, ownerFee, err := p.Fees.PreTradeFees(sourceAmount)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}
	sourceLessFees, err := fixedpoint.CheckedSub(sourceAmount, total)
	if err != nil {
		return Pool{}, SwapOutcome{}, types.ErrCalculationFailure.Wrap("fees exceed source amount")
	}

	sourceReserve, destinationReserve := p.ReserveA, p.ReserveB
	if direction == types.BtoA {
		sourceReserve, destinationReserve = p.ReserveB, p.ReserveA
	}

	result, err := p.Curve.SwapWithoutFees(sourceLessFees, sourceReserve, destinationReserve, direction)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}

	// Offset can clamp the consumed source amount below sourceLessFees
	// (the A-to-B boundary where no real token B liquidity remains — see
	// curve.Offset.swapAtoB). spec.md §4.4.1 step 2 requires re-deriving
	// the fee split from what was actually filled, so the trader is never
	// charged trade/owner fees on input that never entered the curve.
	if result.SourceAmountSwapped.LT(sourceLessFees) {
		sourceLessFees = result.SourceAmountSwapped
		_, tradeFee, ownerFee, err = p.Fees.PreTradeFees(sourceLessFees)
		if err != nil {
			return Pool{}, SwapOutcome{}, err
		}
	}

	if result.DestinationAmountSwapped.LT(minimumDestinationAmount) {
		return Pool{}, SwapOutcome{}, types.ErrExceededSlippage.Wrap("output below minimum")
	}

	var hostFee math.Int
	if takeHostFee {
		hostFee, err = p.Fees.HostFee(ownerFee)
		if err != nil {
			return Pool{}, SwapOutcome{}, err
		}
	} else {
		hostFee = math.ZeroInt()
	}

	newSourceReserve, err := fixedpoint.CheckedAdd(sourceReserve, result.SourceAmountSwapped)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}
	newSourceReserve, err = fixedpoint.CheckedAdd(newSourceReserve, tradeFee)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}
	newDestinationReserve, err := fixedpoint.CheckedSub(destinationReserve, result.DestinationAmountSwapped)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}
	newSourceReserve, err = narrowLedgerAmount(newSourceReserve)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}
	newDestinationReserve, err = narrowLedgerAmount(newDestinationReserve)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}

	if direction == types.AtoB {
		p.ReserveA, p.ReserveB = newSourceReserve, newDestinationReserve
	} else {
		p.ReserveB, p.ReserveA = newSourceReserve, newDestinationReserve
	}

	sourceAmountSwapped, err := narrowLedgerAmount(result.SourceAmountSwapped)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}
	destinationAmountSwapped, err := narrowLedgerAmount(result.DestinationAmountSwapped)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}
	tradeFee, err = narrowLedgerAmount(tradeFee)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}
	ownerFee, err = narrowLedgerAmount(ownerFee)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}
	hostFee, err = narrowLedgerAmount(hostFee)
	if err != nil {
		return Pool{}, SwapOutcome{}, err
	}

	return p, SwapOutcome{
		SourceAmountSwapped:      sourceAmountSwapped,
		DestinationAmountSwapped: destinationAmountSwapped,
		TradeFee:                 tradeFee,
		OwnerFee:                 ownerFee,
		HostFee:                  hostFee,
	}, nil
}

// DepositAllTokenTypes mints poolTokenAmount of LP supply against a
// balanced deposit of both reserves, failing ErrExceededSlippage if either
// required amount exceeds its maximum.
func (p Pool) DepositAllTokenTypes(poolTokenAmount, maximumA, maximumB math.Int) (Pool, curve.TradingTokens, error) {
	if err := p.requireActive(); err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}
	if !p.Curve.AllowsDeposits() {
		return Pool{}, curve.TradingTokens{}, types.ErrUnsupportedCurveOperation.Wrap("curve does not allow deposits")
	}

	required, err := p.Curve.PoolTokensToTradingTokens(poolTokenAmount, p.PoolSupply, p.ReserveA, p.ReserveB, types.Ceiling)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}
	if required.A.IsZero() || required.B.IsZero() {
		return Pool{}, curve.TradingTokens{}, types.ErrZeroTradingTokens
	}
	if required.A.GT(maximumA) || required.B.GT(maximumB) {
		return Pool{}, curve.TradingTokens{}, types.ErrExceededSlippage.Wrap("required deposit exceeds maximum")
	}

	newReserveA, err := fixedpoint.CheckedAdd(p.ReserveA, required.A)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}
	newReserveB, err := fixedpoint.CheckedAdd(p.ReserveB, required.B)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}
	newSupply, err := fixedpoint.CheckedAdd(p.PoolSupply, poolTokenAmount)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}
	newReserveA, err = narrowLedgerAmount(newReserveA)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}
	newReserveB, err = narrowLedgerAmount(newReserveB)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}
	newSupply, err = narrowLedgerAmount(newSupply)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}
	required.A, err = narrowLedgerAmount(required.A)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}
	required.B, err = narrowLedgerAmount(required.B)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, err
	}

	p.ReserveA, p.ReserveB, p.PoolSupply = newReserveA, newReserveB, newSupply
	return p, required, nil
}

// WithdrawAllTokenTypes burns poolTokenAmount of LP supply for a balanced
// share of both reserves, failing ErrExceededSlippage if either payout
// falls below its minimum. The owner-withdraw fee is deducted from
// poolTokenAmount before the payout is sized: that portion is transferred
// to the fee vault rather than burned, so it stays outstanding in supply.
//
// The curve's ideal payout is clamped to each reserve's actual balance
// before the slippage check runs (spec.md §4.3/§4.4.3): an unbalanced pool
// (e.g. ConstantPrice away from its nominal ratio) can have an ideal share
// of one side that exceeds what the vault actually holds.
func (p Pool) WithdrawAllTokenTypes(poolTokenAmount, minimumA, minimumB math.Int, fromFeeVault bool) (Pool, curve.TradingTokens, math.Int, error) {
	if err := p.requireActive(); err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}

	withdrawFee, err := p.Fees.OwnerWithdrawFee(poolTokenAmount, fromFeeVault)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	burned, err := fixedpoint.CheckedSub(poolTokenAmount, withdrawFee)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, types.ErrCalculationFailure.Wrap("withdraw fee exceeds pool token amount")
	}

	ideal, err := p.Curve.PoolTokensToTradingTokens(burned, p.PoolSupply, p.ReserveA, p.ReserveB, types.Floor)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	payout := curve.TradingTokens{A: ideal.A, B: ideal.B}
	if payout.A.GT(p.ReserveA) {
		payout.A = p.ReserveA
	}
	if payout.B.GT(p.ReserveB) {
		payout.B = p.ReserveB
	}

	if (payout.A.IsZero() && p.ReserveA.IsPositive()) || (payout.B.IsZero() && p.ReserveB.IsPositive()) {
		return Pool{}, curve.TradingTokens{}, math.Int{}, types.ErrZeroTradingTokens
	}
	if payout.A.LT(minimumA) || payout.B.LT(minimumB) {
		return Pool{}, curve.TradingTokens{}, math.Int{}, types.ErrExceededSlippage.Wrap("payout below minimum")
	}

	newReserveA, err := fixedpoint.CheckedSub(p.ReserveA, payout.A)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	newReserveB, err := fixedpoint.CheckedSub(p.ReserveB, payout.B)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	newSupply, err := fixedpoint.CheckedSub(p.PoolSupply, burned)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	newReserveA, err = narrowLedgerAmount(newReserveA)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	newReserveB, err = narrowLedgerAmount(newReserveB)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	newSupply, err = narrowLedgerAmount(newSupply)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	payout.A, err = narrowLedgerAmount(payout.A)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	payout.B, err = narrowLedgerAmount(payout.B)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}
	withdrawFee, err = narrowLedgerAmount(withdrawFee)
	if err != nil {
		return Pool{}, curve.TradingTokens{}, math.Int{}, err
	}

	p.ReserveA, p.ReserveB, p.PoolSupply = newReserveA, newReserveB, newSupply
	return p, payout, withdrawFee, nil
}

// DepositSingleTokenType mints pool tokens for a one-sided deposit of
// sourceAmount on the side direction selects, failing ErrExceededSlippage
// if the mint is below minimumPoolTokenAmount.
func (p Pool) DepositSingleTokenType(sourceAmount math.Int, direction types.TradeDirection, minimumPoolTokenAmount math.Int) (Pool, math.Int, error) {
	if err := p.requireActive(); err != nil {
		return Pool{}, math.Int{}, err
	}
	if !p.Curve.AllowsDeposits() {
		return Pool{}, math.Int{}, types.ErrUnsupportedCurveOperation.Wrap("curve does not allow deposits")
	}

	minted, err := p.Curve.DepositSingleTokenType(sourceAmount, p.ReserveA, p.ReserveB, p.PoolSupply, direction)
	if err != nil {
		return Pool{}, math.Int{}, err
	}
	if minted.LT(minimumPoolTokenAmount) {
		return Pool{}, math.Int{}, types.ErrExceededSlippage.Wrap("minted pool tokens below minimum")
	}

	newSupply, err := fixedpoint.CheckedAdd(p.PoolSupply, minted)
	if err != nil {
		return Pool{}, math.Int{}, err
	}
	var newReserveA, newReserveB math.Int
	if direction == types.AtoB {
		newReserveA, err = fixedpoint.CheckedAdd(p.ReserveA, sourceAmount)
		if err != nil {
			return Pool{}, math.Int{}, err
		}
		newReserveA, err = narrowLedgerAmount(newReserveA)
		if err != nil {
			return Pool{}, math.Int{}, err
		}
	} else {
		newReserveB, err = fixedpoint.CheckedAdd(p.ReserveB, sourceAmount)
		if err != nil {
			return Pool{}, math.Int{}, err
		}
		newReserveB, err = narrowLedgerAmount(newReserveB)
		if err != nil {
			return Pool{}, math.Int{}, err
		}
	}
	newSupply, err = narrowLedgerAmount(newSupply)
	if err != nil {
		return Pool{}, math.Int{}, err
	}
	minted, err = narrowLedgerAmount(minted)
	if err != nil {
		return Pool{}, math.Int{}, err
	}

	if direction == types.AtoB {
		p.ReserveA = newReserveA
	} else {
		p.ReserveB = newReserveB
	}
	p.PoolSupply = newSupply
	return p, minted, nil
}

// WithdrawSingleTokenTypeExactOut burns pool tokens to pay out exactly
// destinationAmount of the side direction selects, failing
// ErrExceededSlippage if the total burn (including the owner-withdraw fee)
// exceeds maximumPoolTokenAmount. As with WithdrawAllTokenTypes, the fee
// portion is transferred to the fee vault rather than burned.
func (p Pool) WithdrawSingleTokenTypeExactOut(destinationAmount math.Int, direction types.TradeDirection, maximumPoolTokenAmount math.Int, fromFeeVault bool) (Pool, math.Int, math.Int, error) {
	if err := p.requireActive(); err != nil {
		return Pool{}, math.Int{}, math.Int{}, err
	}

	burned, err := p.Curve.WithdrawSingleTokenTypeExactOut(destinationAmount, p.ReserveA, p.ReserveB, p.PoolSupply, direction, types.Ceiling)
	if err != nil {
		return Pool{}, math.Int{}, math.Int{}, err
	}
	withdrawFee, err := p.Fees.OwnerWithdrawFee(burned, fromFeeVault)
	if err != nil {
		return Pool{}, math.Int{}, math.Int{}, err
	}
	totalBurned, err := fixedpoint.CheckedAdd(burned, withdrawFee)
	if err != nil {
		return Pool{}, math.Int{}, math.Int{}, err
	}
	if totalBurned.GT(maximumPoolTokenAmount) {
		return Pool{}, math.Int{}, math.Int{}, types.ErrExceededSlippage.Wrap("required burn exceeds maximum")
	}

	newSupply, err := fixedpoint.CheckedSub(p.PoolSupply, burned)
	if err != nil {
		return Pool{}, math.Int{}, math.Int{}, err
	}
	var newReserveA, newReserveB math.Int
	if direction == types.AtoB {
		newReserveB, err = fixedpoint.CheckedSub(p.ReserveB, destinationAmount)
		if err != nil {
			return Pool{}, math.Int{}, math.Int{}, err
		}
		newReserveB, err = narrowLedgerAmount(newReserveB)
		if err != nil {
			return Pool{}, math.Int{}, math.Int{}, err
		}
	} else {
		newReserveA, err = fixedpoint.CheckedSub(p.ReserveA, destinationAmount)
		if err != nil {
			return Pool{}, math.Int{}, math.Int{}, err
		}
		newReserveA, err = narrowLedgerAmount(newReserveA)
		if err != nil {
			return Pool{}, math.Int{}, math.Int{}, err
		}
	}
	newSupply, err = narrowLedgerAmount(newSupply)
	if err != nil {
		return Pool{}, math.Int{}, math.Int{}, err
	}
	totalBurned, err = narrowLedgerAmount(totalBurned)
	if err != nil {
		return Pool{}, math.Int{}, math.Int{}, err
	}
	withdrawFee, err = narrowLedgerAmount(withdrawFee)
	if err != nil {
		return Pool{}, math.Int{}, math.Int{}, err
	}

	if direction == types.AtoB {
		p.ReserveB = newReserveB
	} else {
		p.ReserveA = newReserveA
	}
	p.PoolSupply = newSupply
	return p, totalBurned, withdrawFee, nil
}
