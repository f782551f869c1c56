package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
)

func readAllRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv %s: %v", path, err)
	}
	return rows
}

func TestPriceSinkWritesHeaderOnceAndAppendsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")

	s, err := NewPriceSink(path)
	if err != nil {
		t.Fatalf("NewPriceSink: %v", err)
	}
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.Write(PriceRecord{Timestamp: ts, Venue: domain.Upbit, Symbol: "KRW-XRP", Price: 950.5, Currency: "KRW"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s.Close()

	// Reopen and append a second record to confirm the header isn't repeated.
	s2, err := NewPriceSink(path)
	if err != nil {
		t.Fatalf("reopen NewPriceSink: %v", err)
	}
	if err := s2.Write(PriceRecord{Timestamp: ts, Venue: domain.Binance, Symbol: "XRPUSDT", Price: 0.71, Currency: "USDT"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s2.Close()

	rows := readAllRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (header + 2 records)", len(rows))
	}
	if rows[0][0] != "timestamp" || rows[0][1] != "venue" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "upbit" {
		t.Fatalf("row 1 venue = %q, want upbit", rows[1][1])
	}
	if rows[2][1] != "binance" {
		t.Fatalf("row 2 venue = %q, want binance", rows[2][1])
	}
}

func TestPremiumAlertSinkWritesExpectedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.csv")
	s, err := NewPremiumAlertSink(path)
	if err != nil {
		t.Fatalf("NewPremiumAlertSink: %v", err)
	}
	defer s.Close()

	rec := PremiumAlertRecord{
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		BuyVenue:   domain.Binance,
		SellVenue:  domain.Upbit,
		PremiumPct: 3.25,
		BuyKRW:     950.0,
		SellKRW:    981.0,
		Fx:         1340.5,
	}
	if err := s.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rows := readAllRows(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	wantHeader := []string{"timestamp", "buy_venue", "sell_venue", "premium_pct", "buy_krw", "sell_krw", "fx"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Fatalf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][1] != "binance" || rows[1][2] != "upbit" {
		t.Fatalf("unexpected venue columns: %v", rows[1])
	}
	if rows[1][3] != "3.2500" {
		t.Fatalf("premium_pct column = %q, want 3.2500", rows[1][3])
	}
}
