package domain

import "math"

// PremiumMatrix is a 4x4 matrix of premium_pct values indexed
// [buy][sell]: "buy at venue buy, sell at venue sell". The diagonal is
// always 0. A cell is NaN when either venue's price is unavailable.
type PremiumMatrix struct {
	Cells [venueCount][venueCount]float64
}

// Get returns the premium for buying at buy and selling at sell.
func (m *PremiumMatrix) Get(buy, sell Venue) float64 {
	return m.Cells[buy][sell]
}

// Set stores the premium for buying at buy and selling at sell.
func (m *PremiumMatrix) Set(buy, sell Venue, pct float64) {
	m.Cells[buy][sell] = pct
}

// Opportunity names one buy/sell cell and its premium.
type Opportunity struct {
	Buy, Sell Venue
	PremiumPct float64
}

// BestOpportunity scans off-diagonal cells and returns the one with the
// highest premium_pct, ignoring NaN cells. ok is false if every
// off-diagonal cell is NaN.
func (m *PremiumMatrix) BestOpportunity() (best Opportunity, ok bool) {
	bestPct := math.Inf(-1)
	for _, buy := range Venues {
		for _, sell := range Venues {
			if buy == sell {
				continue
			}
			pct := m.Get(buy, sell)
			if math.IsNaN(pct) {
				continue
			}
			if pct > bestPct {
				bestPct = pct
				best = Opportunity{Buy: buy, Sell: sell, PremiumPct: pct}
				ok = true
			}
		}
	}
	return best, ok
}

// GetPremium computes (sell-buy)/buy*100 in KRW terms. Returns NaN if
// buyPriceKRW is <= 0.
func GetPremium(buyPriceKRW, sellPriceKRW float64) float64 {
	if buyPriceKRW <= 0 {
		return math.NaN()
	}
	return (sellPriceKRW - buyPriceKRW) / buyPriceKRW * 100
}
