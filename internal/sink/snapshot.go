package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
)

// fxSnapshot is the JSON shape written for the current FX rate.
type fxSnapshot struct {
	Rate       float64   `json:"rate"`
	Source     string    `json:"source"`
	CapturedAt time.Time `json:"captured_at"`
}

// WriteFxSnapshot atomically writes the current FX rate to path as JSON.
func WriteFxSnapshot(path string, rate domain.FxRate) error {
	snap := fxSnapshot{
		Rate:       rate.Rate,
		Source:     string(rate.Source),
		CapturedAt: rate.CapturedAt,
	}
	return writeJSONAtomic(path, snap)
}

// summarySnapshot is the JSON shape written for the whole-engine
// summary: one entry per venue and one per premium-matrix cell.
type summarySnapshot struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Venues      map[string]float64 `json:"venues"`
	Premiums    map[string]float64 `json:"premiums"`
}

// WriteSummarySnapshot writes venuePrices (KRW-normalized last price
// per venue) and the full premium matrix to path as JSON. Matrix cells
// are keyed "<buy>-><sell>".
func WriteSummarySnapshot(path string, venuePrices map[domain.Venue]float64, matrix domain.PremiumMatrix) error {
	venues := make(map[string]float64, len(venuePrices))
	for v, price := range venuePrices {
		venues[v.String()] = price
	}

	premiums := make(map[string]float64, len(domain.Venues)*len(domain.Venues))
	for _, buy := range domain.Venues {
		for _, sell := range domain.Venues {
			if buy == sell {
				continue
			}
			key := fmt.Sprintf("%s->%s", buy, sell)
			premiums[key] = matrix.Get(buy, sell)
		}
	}

	snap := summarySnapshot{
		GeneratedAt: time.Now(),
		Venues:      venues,
		Premiums:    premiums,
	}
	return writeJSONAtomic(path, snap)
}

// writeJSONAtomic marshals v and writes it to path via a temp-file
// rename, so a reader never observes a partially written snapshot.
func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}
