package liquidity

import (
	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/fees"
)

// PlannerParams configures the dual-order planner's maker heuristic.
type PlannerParams struct {
	TargetFillProb float64
	Maker          MakerParams
}

// Plan builds a DualOrderPlan for buying (maker) at buyVenue and
// selling (taker) at sellVenue, for qty, using buyBook/sellBook as the
// current order books and fx to normalize the foreign-venue price.
func Plan(buyVenue, sellVenue domain.Venue, buyBook, sellBook domain.OrderBook, qty float64, fx domain.FxRate, p PlannerParams) domain.DualOrderPlan {
	maker := MakerSlippage(buyBook, domain.Buy, p.TargetFillProb, p.Maker)
	taker := TakerSlippage(sellBook, domain.Sell, qty)

	makerPriceKRW := normalizeToKRW(buyVenue, maker.Price, fx)
	takerPriceKRW := normalizeToKRW(sellVenue, taker.ExpectedAvgPrice, fx)

	grossPct := domain.GetPremium(makerPriceKRW, takerPriceKRW)

	buyNotionalKRW := makerPriceKRW * qty
	sellNotionalKRW := takerPriceKRW * taker.FillableQty
	slippageNotionalKRW := normalizeToKRW(sellVenue, taker.SlippageNotional, fx)

	totalCostKRW := fees.Maker(buyVenue)*buyNotionalKRW + fees.Taker(sellVenue)*sellNotionalKRW + slippageNotionalKRW

	var totalCostPct float64
	if buyNotionalKRW > 0 {
		totalCostPct = totalCostKRW / buyNotionalKRW * 100
	}
	netPct := grossPct - totalCostPct

	expectedProfit := netPct / 100 * buyNotionalKRW

	return domain.DualOrderPlan{
		MakerVenue:       buyVenue,
		TakerVenue:       sellVenue,
		MakerPrice:       maker.Price,
		TakerPrice:       taker.ExpectedAvgPrice,
		MakerFeeRate:     fees.Maker(buyVenue),
		TakerFeeRate:     fees.Taker(sellVenue),
		TakerSlippage:    taker,
		TotalFeeNotional: totalCostKRW,
		GrossPremiumPct:  grossPct,
		NetPremiumPct:    netPct,
		ExpectedProfit:   expectedProfit,
		Quantity:         qty,
	}
}

// normalizeToKRW converts a venue-native price to KRW terms.
func normalizeToKRW(v domain.Venue, price float64, fx domain.FxRate) float64 {
	if v.IsKRW() {
		return price
	}
	return price * fx.Rate
}

// BreakevenPremiumPct returns the minimum premium, as a percent, needed
// to clear round-trip fees and the safety margin for buying at buy and
// selling at sell. A pure function of the fee table, used to pre-filter
// opportunities before planning.
func BreakevenPremiumPct(buy, sell domain.Venue) float64 {
	return fees.BreakevenPct(buy, sell)
}
