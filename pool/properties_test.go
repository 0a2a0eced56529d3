package pool

import (
	"testing"

	"cosmossdk.io/math"
	"pgregory.net/rapid"

	"github.com/driftpool/core/curve"
	"github.com/driftpool/core/feeschedule"
	"github.com/driftpool/core/types"
)

// genReserve draws a reserve-sized amount comfortably clear of the 64-bit
// narrowing boundary, mirroring the magnitudes spec.md §8's worked examples
// use (10^6-10^12).
func genReserve(t *rapid.T, label string) math.Int {
	return math.NewIntFromUint64(rapid.Uint64Range(1_000, 1_000_000_000_000).Draw(t, label))
}

// TestPropertyReserveMonotonicityUnderSwap checks spec.md §8's first
// invariant: any successful swap with a positive input strictly grows the
// source reserve and strictly shrinks the destination reserve.
func TestPropertyReserveMonotonicityUnderSwap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reserveA := genReserve(t, "reserveA")
		reserveB := genReserve(t, "reserveB")
		amountIn := math.NewIntFromUint64(rapid.Uint64Range(1, 1_000_000).Draw(t, "amountIn"))

		p := activeConstantProductPoolForProperty(t, reserveA, reserveB)
		newPool, outcome, err := p.Swap(types.AtoB, amountIn, math.ZeroInt(), false)
		if err != nil {
			return // ZeroTradingTokens / CalculationFailure: nothing to assert
		}

		if !newPool.ReserveA.GT(p.ReserveA) {
			t.Fatalf("source reserve did not grow: %s -> %s", p.ReserveA, newPool.ReserveA)
		}
		if !newPool.ReserveB.LT(p.ReserveB) {
			t.Fatalf("destination reserve did not shrink: %s -> %s", p.ReserveB, newPool.ReserveB)
		}
		if outcome.DestinationAmountSwapped.IsZero() {
			t.Fatal("destination amount swapped is zero on a reported success")
		}
	})
}

// TestPropertyValuePreservationModuloFees checks spec.md §8's second
// invariant for constant-product: the reserve product never shrinks across
// a successful swap, and strictly grows whenever a fee is charged.
func TestPropertyValuePreservationModuloFees(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reserveA := genReserve(t, "reserveA")
		reserveB := genReserve(t, "reserveB")
		amountIn := math.NewIntFromUint64(rapid.Uint64Range(1, 1_000_000).Draw(t, "amountIn"))
		withFees := rapid.Bool().Draw(t, "withFees")

		fees := noFees()
		if withFees {
			fees = tradeFees()
		}

		p := activeConstantProductPoolWithFeesForProperty(t, fees, reserveA, reserveB)
		newPool, _, err := p.Swap(types.AtoB, amountIn, math.ZeroInt(), false)
		if err != nil {
			return
		}

		oldProduct, err := p.ReserveA.SafeMul(p.ReserveB)
		if err != nil {
			t.Fatalf("unexpected overflow computing old product: %v", err)
		}
		newProduct, err := newPool.ReserveA.SafeMul(newPool.ReserveB)
		if err != nil {
			t.Fatalf("unexpected overflow computing new product: %v", err)
		}

		if newProduct.LT(oldProduct) {
			t.Fatalf("invariant shrank: old=%s new=%s", oldProduct, newProduct)
		}
		if withFees && !newProduct.GT(oldProduct) {
			t.Fatalf("fee-bearing swap did not strictly grow the invariant: old=%s new=%s", oldProduct, newProduct)
		}
	})
}

// TestPropertyDilutionFreeDeposits checks spec.md §8's third invariant: a
// successful balanced deposit never lowers normalized value per share.
func TestPropertyDilutionFreeDeposits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reserveA := genReserve(t, "reserveA")
		reserveB := genReserve(t, "reserveB")
		p := activeConstantProductPoolForProperty(t, reserveA, reserveB)

		poolTokens := math.NewIntFromUint64(rapid.Uint64Range(1, 1_000_000).Draw(t, "poolTokens"))
		newPool, _, err := p.DepositAllTokenTypes(poolTokens, reserveA, reserveB)
		if err != nil {
			return
		}

		oldValue, err := p.Curve.NormalizedValue(p.ReserveA, p.ReserveB)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		newValue, err := newPool.Curve.NormalizedValue(newPool.ReserveA, newPool.ReserveB)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Compare oldValue/p.PoolSupply against newValue/newPool.PoolSupply
		// without floating point: oldValue*newSupply <= newValue*oldSupply.
		lhs, err := oldValue.SafeMul(newPool.PoolSupply)
		if err != nil {
			t.Fatalf("unexpected overflow: %v", err)
		}
		rhs, err := newValue.SafeMul(p.PoolSupply)
		if err != nil {
			t.Fatalf("unexpected overflow: %v", err)
		}
		if lhs.GT(rhs) {
			t.Fatalf("deposit diluted existing LPs: old value/share exceeds new value/share")
		}
	})
}

// TestPropertyNonInflationOnWithdraw mirrors the dilution check for
// withdrawals: a successful balanced withdraw never raises normalized
// value per share.
func TestPropertyNonInflationOnWithdraw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reserveA := genReserve(t, "reserveA")
		reserveB := genReserve(t, "reserveB")
		p := activeConstantProductPoolForProperty(t, reserveA, reserveB)

		burnFraction := rapid.Uint64Range(1, 99).Draw(t, "burnPercent")
		poolTokens := p.PoolSupply.MulRaw(int64(burnFraction)).QuoRaw(100)
		if poolTokens.IsZero() {
			return
		}

		newPool, _, _, err := p.WithdrawAllTokenTypes(poolTokens, math.ZeroInt(), math.ZeroInt(), false)
		if err != nil {
			return
		}

		oldValue, err := p.Curve.NormalizedValue(p.ReserveA, p.ReserveB)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		newValue, err := newPool.Curve.NormalizedValue(newPool.ReserveA, newPool.ReserveB)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lhs, err := newValue.SafeMul(p.PoolSupply)
		if err != nil {
			t.Fatalf("unexpected overflow: %v", err)
		}
		rhs, err := oldValue.SafeMul(newPool.PoolSupply)
		if err != nil {
			t.Fatalf("unexpected overflow: %v", err)
		}
		if lhs.GT(rhs) {
			t.Fatalf("withdraw inflated remaining LPs: new value/share exceeds old value/share")
		}
	})
}

// TestPropertySingleSidedRoundTrip checks spec.md §8's fourth invariant for
// constant-product: burning the pool tokens a single-sided deposit minted
// never buys back more than was originally put in.
func TestPropertySingleSidedRoundTrip(t *testing.T) {
	c := curve.ConstantProduct{}
	rapid.Check(t, func(t *rapid.T) {
		reserveA := genReserve(t, "reserveA")
		reserveB := genReserve(t, "reserveB")
		poolSupply := genReserve(t, "poolSupply")
		d := math.NewIntFromUint64(rapid.Uint64Range(1, 1_000_000).Draw(t, "d"))

		minted, err := c.DepositSingleTokenType(d, reserveA, reserveB, poolSupply, types.AtoB)
		if err != nil {
			return
		}

		newReserveA := reserveA.Add(d)
		newPoolSupply := poolSupply.Add(minted)
		withdrawn, err := c.WithdrawSingleTokenTypeExactOut(d, newReserveA, reserveB, newPoolSupply, types.AtoB, types.Ceiling)
		if err != nil {
			return
		}

		if withdrawn.LT(minted) {
			t.Fatalf("round trip burned fewer LP than minted: minted=%s withdrawn=%s", minted, withdrawn)
		}
	})
}

func activeConstantProductPoolForProperty(t *rapid.T, reserveA, reserveB math.Int) Pool {
	return activeConstantProductPoolWithFeesForProperty(t, feeschedule.FeeSchedule{}, reserveA, reserveB)
}

func activeConstantProductPoolWithFeesForProperty(t *rapid.T, fees feeschedule.FeeSchedule, reserveA, reserveB math.Int) Pool {
	p, err := NewPool("uusdc", "uatom", curve.ConstantProduct{}, fees)
	if err != nil {
		t.Fatalf("unexpected error constructing pool: %v", err)
	}
	p, _, err = p.InitializePool(reserveA, reserveB)
	if err != nil {
		t.Fatalf("unexpected error initializing pool: %v", err)
	}
	return p
}
