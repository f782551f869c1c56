// Package premium implements the premium engine: it holds the last
// known price per venue plus the current FX rate and recomputes the 4x4
// premium matrix on every update, notifying a callback when a cell
// crosses the configured threshold.
package premium

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/s2ungeda/kac/internal/domain"
)

// Engine recomputes the premium matrix on each price or FX update.
type Engine struct {
	mu        sync.RWMutex
	prices    [4]float64
	fxBits    uint64 // math.Float64bits(fx rate)
	matrix    domain.PremiumMatrix
	threshold float64
	onAlert   func(domain.Opportunity)
}

// New creates an Engine with the given premium-pct threshold and an
// optional alert callback, invoked whenever the recomputed matrix's
// best opportunity crosses the threshold.
func New(thresholdPct float64, onAlert func(domain.Opportunity)) *Engine {
	e := &Engine{threshold: thresholdPct, onAlert: onAlert}
	atomic.StoreUint64(&e.fxBits, math.Float64bits(0))
	return e
}

// UpdatePrice sets venue's last known price (KRW for KRW venues, USDT
// for the foreign venues) and recomputes the matrix.
func (e *Engine) UpdatePrice(venue domain.Venue, price float64) {
	e.mu.Lock()
	e.prices[venue] = price
	e.mu.Unlock()
	e.recompute()
}

// UpdateFx sets the current FX rate and recomputes the matrix.
func (e *Engine) UpdateFx(rate float64) {
	atomic.StoreUint64(&e.fxBits, math.Float64bits(rate))
	e.recompute()
}

func (e *Engine) fxRate() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.fxBits))
}

// krwPrice converts venue's last known price into KRW terms.
func (e *Engine) krwPrice(venue domain.Venue, price float64) float64 {
	if venue.IsKRW() {
		return price
	}
	return price * e.fxRate()
}

func (e *Engine) recompute() {
	e.mu.Lock()
	var m domain.PremiumMatrix
	for _, buy := range domain.Venues {
		for _, sell := range domain.Venues {
			if buy == sell {
				m.Set(buy, sell, 0)
				continue
			}
			buyPrice := e.prices[buy]
			sellPrice := e.prices[sell]
			if buyPrice <= 0 || sellPrice <= 0 {
				m.Set(buy, sell, math.NaN())
				continue
			}
			buyKRW := e.krwPrice(buy, buyPrice)
			sellKRW := e.krwPrice(sell, sellPrice)
			m.Set(buy, sell, domain.GetPremium(buyKRW, sellKRW))
		}
	}
	e.matrix = m
	e.mu.Unlock()

	if e.onAlert == nil {
		return
	}
	if best, ok := m.BestOpportunity(); ok && best.PremiumPct > e.threshold {
		e.onAlert(best)
	}
}

// Matrix returns a snapshot of the current premium matrix.
func (e *Engine) Matrix() domain.PremiumMatrix {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matrix
}
