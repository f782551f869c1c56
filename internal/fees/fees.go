// Package fees holds the compile-time fee table for maker/taker/withdraw
// costs per venue, plus the breakeven and threshold arithmetic the
// premium engine and planner build on top of it.
//
// Values are conservative defaults, not live venue-reported rates: real
// rates vary by VIP tier, coupons, and promotions, so these serve as the
// floor used to size the premium threshold, not an accounting source of
// truth.
package fees

import "github.com/s2ungeda/kac/internal/domain"

// MakerFee is indexed by domain.Venue.
var MakerFee = [4]float64{
	domain.Upbit:   0.0005, // 0.05%
	domain.Bithumb: 0.0004, // 0.04% with coupon applied
	domain.Binance: 0.0010, // 0.10% (0.075% when paid in BNB)
	domain.Mexc:    0.0000, // 0.00%, no maker fee
}

// TakerFee is indexed by domain.Venue.
var TakerFee = [4]float64{
	domain.Upbit:   0.0005,
	domain.Bithumb: 0.0004,
	domain.Binance: 0.0010,
	domain.Mexc:    0.0002,
}

// WithdrawFeeXRP is the XRP-denominated withdrawal fee per venue.
var WithdrawFeeXRP = [4]float64{
	domain.Upbit:   1.0,
	domain.Bithumb: 1.0,
	domain.Binance: 0.25,
	domain.Mexc:    0.25,
}

// MinWithdrawXRP is the smallest XRP amount each venue's withdraw API
// will accept; the transfer manager rejects a request below this
// floor before ever calling the venue.
var MinWithdrawXRP = [4]float64{
	domain.Upbit:   5.0,
	domain.Bithumb: 5.0,
	domain.Binance: 20.0,
	domain.Mexc:    10.0,
}

// MinWithdraw returns the minimum withdrawable XRP amount for venue v.
func MinWithdraw(v domain.Venue) float64 { return MinWithdrawXRP[v] }

// SafetyMarginPct is added on top of round-trip fees to absorb
// slippage and timing risk before a trade is considered breakeven.
const SafetyMarginPct = 0.1 // 0.1%

// TargetProfitPct is added on top of the breakeven premium to derive
// the optimal trading threshold.
const TargetProfitPct = 0.5 // 0.5%

// Preset premium thresholds, expressed as percent (not fraction).
const (
	ThresholdDefault     = 2.0
	ThresholdAggressive  = 1.5
	ThresholdConservative = 3.0
)

// Maker returns the maker fee rate for venue v.
func Maker(v domain.Venue) float64 { return MakerFee[v] }

// Taker returns the taker fee rate for venue v.
func Taker(v domain.Venue) float64 { return TakerFee[v] }

// Withdraw returns the XRP withdrawal fee for venue v.
func Withdraw(v domain.Venue) float64 { return WithdrawFeeXRP[v] }

// RoundTripPct returns the combined taker fee of buying at buy and
// selling at sell, as a percent.
func RoundTripPct(buy, sell domain.Venue) float64 {
	return (Taker(buy) + Taker(sell)) * 100
}

// BreakevenPct returns the minimum premium, as a percent, needed to
// clear round-trip fees plus the safety margin.
func BreakevenPct(buy, sell domain.Venue) float64 {
	return RoundTripPct(buy, sell) + SafetyMarginPct
}

// OptimalThresholdPct returns the breakeven premium plus the target
// profit margin, as a percent.
func OptimalThresholdPct(buy, sell domain.Venue) float64 {
	return BreakevenPct(buy, sell) + TargetProfitPct
}
