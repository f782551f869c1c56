// Package liquidity implements the depth calculator, taker/maker
// slippage models, and dual-order planner: together they decide
// whether, where, and at what price to trade once the premium engine
// flags an opportunity.
package liquidity

import "github.com/s2ungeda/kac/internal/domain"

// Alert names a liquidity condition worth surfacing to an operator.
type Alert uint8

const (
	AlertNone Alert = iota
	AlertLowBidDepth
	AlertLowAskDepth
	AlertWideSpread
	AlertHighImbalance
)

// Params configures the depth calculator's thresholds.
type Params struct {
	DepthRangePct    float64 // default 1: walk within [best*(1-r/100), best]
	MinDepthNotional float64
	MaxSpreadBps     float64
	MaxImbalanceAbs  float64 // default 0.7
}

// DefaultParams returns the documented default thresholds.
func DefaultParams() Params {
	return Params{
		DepthRangePct:   1,
		MaxImbalanceAbs: 0.7,
	}
}

// Metrics walks book's bid and ask sides within p's depth-range band
// and returns the resulting LiquidityMetrics.
func Metrics(book domain.OrderBook, p Params) domain.LiquidityMetrics {
	m := domain.LiquidityMetrics{
		Venue:   book.Venue,
		BestBid: book.BestBid(),
		BestAsk: book.BestAsk(),
	}
	mid := book.MidPrice()
	if mid > 0 {
		m.SpreadAbs = m.BestAsk - m.BestBid
		m.SpreadBps = m.SpreadAbs / mid * 10000
	}

	if m.BestBid > 0 {
		floor := m.BestBid * (1 - p.DepthRangePct/100)
		for i := 0; i < book.BidCount; i++ {
			lvl := book.Bids[i]
			if lvl.Price < floor {
				break
			}
			m.BidDepthQty += lvl.Quantity
			m.BidDepthNotional += lvl.Price * lvl.Quantity
			m.BidLevelsUsed++
		}
	}
	if m.BestAsk > 0 {
		ceil := m.BestAsk * (1 + p.DepthRangePct/100)
		for i := 0; i < book.AskCount; i++ {
			lvl := book.Asks[i]
			if lvl.Price > ceil {
				break
			}
			m.AskDepthQty += lvl.Quantity
			m.AskDepthNotional += lvl.Price * lvl.Quantity
			m.AskLevelsUsed++
		}
	}

	denom := m.BidDepthQty + m.AskDepthQty
	if denom > 0 {
		m.Imbalance = (m.BidDepthQty - m.AskDepthQty) / denom
	}
	return m
}

// Alerts reports which conditions m trips given p's thresholds.
func Alerts(m domain.LiquidityMetrics, p Params) []Alert {
	var alerts []Alert
	if p.MinDepthNotional > 0 && m.BidDepthNotional < p.MinDepthNotional {
		alerts = append(alerts, AlertLowBidDepth)
	}
	if p.MinDepthNotional > 0 && m.AskDepthNotional < p.MinDepthNotional {
		alerts = append(alerts, AlertLowAskDepth)
	}
	if p.MaxSpreadBps > 0 && m.SpreadBps > p.MaxSpreadBps {
		alerts = append(alerts, AlertWideSpread)
	}
	if p.MaxImbalanceAbs > 0 {
		abs := m.Imbalance
		if abs < 0 {
			abs = -abs
		}
		if abs > p.MaxImbalanceAbs {
			alerts = append(alerts, AlertHighImbalance)
		}
	}
	return alerts
}
