// Package feeschedule implements C2: parsing, validating, and assessing the
// four fee pairs (trade, owner-trade, owner-withdraw, host) spec.md §4.2
// describes, grounded on the validate-on-construct pattern the teacher uses
// for its own fee parameters in x/dex/types/params.go and the fee-splitting
// arithmetic in x/dex/keeper/fees.go.
package feeschedule

import (
	"cosmossdk.io/math"

	"github.com/driftpool/core/fixedpoint"
	"github.com/driftpool/core/types"
)

// FeeSchedule is the immutable, per-pool set of fee numerator/denominator
// pairs from spec.md §3. A pair with denominator 0 (and, by convention,
// numerator 0) means that fee is disabled.
type FeeSchedule struct {
	TradeNumerator, TradeDenominator                uint64
	OwnerTradeNumerator, OwnerTradeDenominator       uint64
	OwnerWithdrawNumerator, OwnerWithdrawDenominator uint64
	HostNumerator, HostDenominator                   uint64
}

// Validate checks the four pairs per spec.md §4.2: for each enabled pair,
// denominator > 0 and numerator <= denominator.
func (f FeeSchedule) Validate() error {
	pairs := []struct {
		name     string
		num, den uint64
	}{
		{"trade", f.TradeNumerator, f.TradeDenominator},
		{"owner-trade", f.OwnerTradeNumerator, f.OwnerTradeDenominator},
		{"owner-withdraw", f.OwnerWithdrawNumerator, f.OwnerWithdrawDenominator},
		{"host", f.HostNumerator, f.HostDenominator},
	}
	for _, p := range pairs {
		if p.den == 0 {
			if p.num != 0 {
				return types.ErrInvalidFee.Wrapf("%s fee: numerator must be 0 when denominator is 0", p.name)
			}
			continue
		}
		if p.num > p.den {
			return types.ErrInvalidFee.Wrapf("%s fee: numerator %d exceeds denominator %d", p.name, p.num, p.den)
		}
	}
	return nil
}

func assessCeil(gross math.Int, num, den uint64) (math.Int, error) {
	if den == 0 {
		return math.ZeroInt(), nil
	}
	return fixedpoint.MulDivCeil(gross, math.NewIntFromUint64(num), math.NewIntFromUint64(den))
}

// TradingFee computes ceil(gross * trade_num / trade_den), 0 if disabled.
func (f FeeSchedule) TradingFee(gross math.Int) (math.Int, error) {
	return assessCeil(gross, f.TradeNumerator, f.TradeDenominator)
}

// OwnerTradingFee computes ceil(gross * owner_trade_num / owner_trade_den).
func (f FeeSchedule) OwnerTradingFee(gross math.Int) (math.Int, error) {
	return assessCeil(gross, f.OwnerTradeNumerator, f.OwnerTradeDenominator)
}

// OwnerWithdrawFee computes ceil(gross * owner_withdraw_num / owner_withdraw_den),
// or 0 unconditionally when withdrawing from the fee account itself.
func (f FeeSchedule) OwnerWithdrawFee(gross math.Int, fromFeeVault bool) (math.Int, error) {
	if fromFeeVault {
		return math.ZeroInt(), nil
	}
	return assessCeil(gross, f.OwnerWithdrawNumerator, f.OwnerWithdrawDenominator)
}

// HostFee computes ceil(ownerFee * host_num / host_den), the referring
// host's carve-out of the owner's trade fee (not of gross).
func (f FeeSchedule) HostFee(ownerFee math.Int) (math.Int, error) {
	return assessCeil(ownerFee, f.HostNumerator, f.HostDenominator)
}

// PreTradeFees returns the trade fee, the owner-trade fee, and their sum —
// the total deducted from a swap's input before the curve sees it.
func (f FeeSchedule) PreTradeFees(gross math.Int) (total, tradeFee, ownerFee math.Int, err error) {
	tradeFee, err = f.TradingFee(gross)
	if err != nil {
		return math.Int{}, math.Int{}, math.Int{}, err
	}
	ownerFee, err = f.OwnerTradingFee(gross)
	if err != nil {
		return math.Int{}, math.Int{}, math.Int{}, err
	}
	total, err = fixedpoint.CheckedAdd(tradeFee, ownerFee)
	if err != nil {
		return math.Int{}, math.Int{}, math.Int{}, err
	}
	return total, tradeFee, ownerFee, nil
}
