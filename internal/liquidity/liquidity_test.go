package liquidity

import (
	"math"
	"testing"

	"github.com/s2ungeda/kac/internal/domain"
)

func TestMetricsDepthAndImbalance(t *testing.T) {
	var ob domain.OrderBook
	ob.Bids[0] = domain.PriceLevel{Price: 100, Quantity: 10}
	ob.Bids[1] = domain.PriceLevel{Price: 99.5, Quantity: 5} // within 1% band of 100
	ob.Bids[2] = domain.PriceLevel{Price: 90, Quantity: 1000} // outside band, ignored
	ob.BidCount = 3
	ob.Asks[0] = domain.PriceLevel{Price: 101, Quantity: 2}
	ob.AskCount = 1

	m := Metrics(ob, DefaultParams())
	if m.BidDepthQty != 15 {
		t.Fatalf("BidDepthQty = %v, want 15 (level outside 1%% band excluded)", m.BidDepthQty)
	}
	if m.AskDepthQty != 2 {
		t.Fatalf("AskDepthQty = %v, want 2", m.AskDepthQty)
	}
	wantImbalance := (15.0 - 2.0) / (15.0 + 2.0)
	if math.Abs(m.Imbalance-wantImbalance) > 1e-9 {
		t.Fatalf("Imbalance = %v, want %v", m.Imbalance, wantImbalance)
	}
}

func TestAlertsHighImbalance(t *testing.T) {
	m := domain.LiquidityMetrics{Imbalance: 0.9}
	alerts := Alerts(m, DefaultParams())
	found := false
	for _, a := range alerts {
		if a == AlertHighImbalance {
			found = true
		}
	}
	if !found {
		t.Fatal("expected AlertHighImbalance for |imbalance|>0.7")
	}
}

func TestPlannerProfitabilityConsistency(t *testing.T) {
	var buyBook domain.OrderBook
	buyBook.Bids[0] = domain.PriceLevel{Price: 2.13, Quantity: 1000}
	buyBook.BidCount = 1
	buyBook.Asks[0] = domain.PriceLevel{Price: 2.15, Quantity: 1000}
	buyBook.AskCount = 1

	var sellBook domain.OrderBook
	sellBook.Bids[0] = domain.PriceLevel{Price: 3100, Quantity: 1000}
	sellBook.BidCount = 1

	fx := domain.FxRate{Rate: 1400}
	p := PlannerParams{TargetFillProb: 0.8, Maker: MakerParams{FillTimePerLevel: 1, MaxWaitSec: 30}}

	plan := Plan(domain.Binance, domain.Upbit, buyBook, sellBook, 100, fx, p)

	if plan.IsProfitable() != (plan.NetPremiumPct > 0) {
		t.Fatal("IsProfitable() must match NetPremiumPct>0")
	}
	if plan.IsProfitable() != (plan.ExpectedProfit > 0) {
		t.Fatal("IsProfitable() must match ExpectedProfit>0 up to rounding")
	}
}
