// Package sink implements the optional observer sinks that turn core
// events into persisted artifacts: CSV price/premium logs, JSON
// snapshots, and a Redis pub/sub channel. None of these sit on the hot
// path — the core emits events, and a sink just happens to be one of
// the listeners.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
)

// PriceRecord is one row of the price CSV: timestamp,venue,symbol,
// price,currency.
type PriceRecord struct {
	Timestamp time.Time
	Venue     domain.Venue
	Symbol    string
	Price     float64
	Currency  string
}

// PremiumAlertRecord is one row of the premium-alert CSV: timestamp,
// buy_venue,sell_venue,premium_pct,buy_krw,sell_krw,fx.
type PremiumAlertRecord struct {
	Timestamp time.Time
	BuyVenue  domain.Venue
	SellVenue domain.Venue
	PremiumPct float64
	BuyKRW     float64
	SellKRW    float64
	Fx         float64
}

// CSVWriter appends records to a CSV file, writing the header once on
// first open. It is safe for concurrent use by multiple goroutines
// feeding the same sink.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

func openCSV(path string, header []string) (*CSVWriter, error) {
	_, statErr := os.Stat(path)
	needsHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	cw := &CSVWriter{file: f, writer: w}
	if needsHeader {
		if err := cw.writeRow(header); err != nil {
			f.Close()
			return nil, err
		}
	}
	return cw, nil
}

func (w *CSVWriter) writeRow(row []string) error {
	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes and closes the underlying file.
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	return w.file.Close()
}

// PriceSink writes PriceRecord rows to a CSV file.
type PriceSink struct {
	*CSVWriter
}

// NewPriceSink opens (or appends to) the price CSV at path.
func NewPriceSink(path string) (*PriceSink, error) {
	w, err := openCSV(path, []string{"timestamp", "venue", "symbol", "price", "currency"})
	if err != nil {
		return nil, err
	}
	return &PriceSink{CSVWriter: w}, nil
}

// Write appends one price record.
func (s *PriceSink) Write(r PriceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeRow([]string{
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.Venue.String(),
		r.Symbol,
		fmt.Sprintf("%.8f", r.Price),
		r.Currency,
	})
}

// PremiumAlertSink writes PremiumAlertRecord rows to a CSV file.
type PremiumAlertSink struct {
	*CSVWriter
}

// NewPremiumAlertSink opens (or appends to) the premium-alert CSV at path.
func NewPremiumAlertSink(path string) (*PremiumAlertSink, error) {
	w, err := openCSV(path, []string{
		"timestamp", "buy_venue", "sell_venue", "premium_pct", "buy_krw", "sell_krw", "fx",
	})
	if err != nil {
		return nil, err
	}
	return &PremiumAlertSink{CSVWriter: w}, nil
}

// Write appends one premium-alert record.
func (s *PremiumAlertSink) Write(r PremiumAlertRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeRow([]string{
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.BuyVenue.String(),
		r.SellVenue.String(),
		fmt.Sprintf("%.4f", r.PremiumPct),
		fmt.Sprintf("%.2f", r.BuyKRW),
		fmt.Sprintf("%.2f", r.SellKRW),
		fmt.Sprintf("%.4f", r.Fx),
	})
}
