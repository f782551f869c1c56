package premium

import (
	"math"
	"testing"

	"github.com/s2ungeda/kac/internal/domain"
)

// TestS1PremiumComputation reproduces the worked example: FX=1400,
// Upbit 3100 KRW, Bithumb 3099 KRW, Binance 2.15 USDT, Mexc 2.14 USDT.
func TestS1PremiumComputation(t *testing.T) {
	e := New(1.0, nil)
	e.UpdateFx(1400)
	e.UpdatePrice(domain.Upbit, 3100)
	e.UpdatePrice(domain.Bithumb, 3099)
	e.UpdatePrice(domain.Binance, 2.15)
	e.UpdatePrice(domain.Mexc, 2.14)

	m := e.Matrix()

	for _, v := range domain.Venues {
		if got := m.Get(v, v); got != 0 {
			t.Fatalf("diagonal [%v][%v] = %v, want 0", v, v, got)
		}
	}

	binanceToUpbit := m.Get(domain.Binance, domain.Upbit)
	if math.Abs(binanceToUpbit-2.990033222591362) > 1e-6 {
		t.Fatalf("[Binance][Upbit] = %v, want ~2.9900", binanceToUpbit)
	}

	upbitToBinance := m.Get(domain.Upbit, domain.Binance)
	if math.Abs(upbitToBinance-(-2.903225806451613)) > 1e-6 {
		t.Fatalf("[Upbit][Binance] = %v, want ~-2.9032", upbitToBinance)
	}

	best, ok := m.BestOpportunity()
	if !ok {
		t.Fatal("expected a best opportunity")
	}
	if best.Buy != domain.Mexc || best.Sell != domain.Upbit {
		t.Fatalf("best opportunity = %+v, want buy=Mexc sell=Upbit", best)
	}
	// (3100 - 2.14*1400) / (2.14*1400) * 100
	if math.Abs(best.PremiumPct-3.4712950600801067) > 1e-9 {
		t.Fatalf("best premium = %v, want ~3.47130", best.PremiumPct)
	}
}

func TestMissingPriceYieldsNaNCell(t *testing.T) {
	e := New(1.0, nil)
	e.UpdateFx(1400)
	e.UpdatePrice(domain.Upbit, 3100)
	// Bithumb never set; its price defaults to 0.

	m := e.Matrix()
	if !math.IsNaN(m.Get(domain.Bithumb, domain.Upbit)) {
		t.Fatal("expected NaN cell when a venue price is missing")
	}
}

func TestAlertFiresAboveThreshold(t *testing.T) {
	var fired domain.Opportunity
	count := 0
	e := New(2.0, func(o domain.Opportunity) {
		fired = o
		count++
	})
	e.UpdateFx(1400)
	e.UpdatePrice(domain.Upbit, 3100)
	e.UpdatePrice(domain.Bithumb, 3099)
	e.UpdatePrice(domain.Binance, 2.15)
	e.UpdatePrice(domain.Mexc, 2.14)

	if count == 0 {
		t.Fatal("expected alert to fire above threshold")
	}
	if fired.Buy != domain.Mexc || fired.Sell != domain.Upbit {
		t.Fatalf("fired opportunity = %+v, want buy=Mexc sell=Upbit", fired)
	}
}

// TestAlertDoesNotFireExactlyAtThreshold pins a cell sitting exactly on
// the threshold: a crossing requires strictly greater than, not equal.
func TestAlertDoesNotFireExactlyAtThreshold(t *testing.T) {
	count := 0
	e := New(2.0, func(o domain.Opportunity) {
		count++
	})
	// Both KRW venues, no FX needed: (102-100)/100*100 = 2.0 exactly.
	e.UpdatePrice(domain.Upbit, 100)
	e.UpdatePrice(domain.Bithumb, 102)

	matrix := e.Matrix()
	best, ok := matrix.BestOpportunity()
	if !ok {
		t.Fatal("expected a best opportunity")
	}
	if math.Abs(best.PremiumPct-2.0) > 1e-9 {
		t.Fatalf("best premium = %v, want exactly 2.0", best.PremiumPct)
	}
	if count != 0 {
		t.Fatalf("alert fired %d times for a cell exactly at threshold, want 0", count)
	}
}
