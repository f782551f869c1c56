package marketstate

import (
	"testing"

	"github.com/s2ungeda/kac/internal/domain"
)

func TestSetAndGetTicker(t *testing.T) {
	s := New()
	tk := domain.NewTicker(domain.Upbit, "XRP", 3100, 3099, 3101, 100, 0)
	s.SetTicker(tk)

	got, ok := s.Ticker(domain.Upbit)
	if !ok {
		t.Fatal("expected ticker to be present")
	}
	if got.Symbol() != "XRP" {
		t.Fatalf("Symbol() = %q, want XRP", got.Symbol())
	}

	if _, ok := s.Ticker(domain.Bithumb); ok {
		t.Fatal("expected no ticker set for Bithumb")
	}
}

func TestSnapshotIsConsistent(t *testing.T) {
	s := New()
	s.SetTicker(domain.NewTicker(domain.Binance, "XRPUSDT", 2.15, 2.14, 2.16, 0, 0))
	s.SetFxRate(domain.FxRate{Rate: 1400, Source: domain.FxSourceInvesting})

	tickers, _, fx := s.Snapshot()
	if tickers[domain.Binance].LastPrice != 2.15 {
		t.Fatalf("snapshot ticker price = %v, want 2.15", tickers[domain.Binance].LastPrice)
	}
	if fx.Rate != 1400 {
		t.Fatalf("snapshot fx rate = %v, want 1400", fx.Rate)
	}
}
