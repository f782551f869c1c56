// Package backtest drives a Sequencer over a previously-recorded WAL
// file instead of live venue sessions, reproducing whatever market
// state and premium-matrix history that run produced.
package backtest

import (
	"context"
	"fmt"

	"github.com/s2ungeda/kac/internal/engine"
	"github.com/s2ungeda/kac/internal/storage"
)

// Replayer feeds a recorded event log into a Sequencer.
type Replayer struct {
	store *storage.EventStore
}

// NewReplayer opens the WAL at dbPath for replay.
func NewReplayer(dbPath string) (*Replayer, error) {
	store, err := storage.NewEventStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}
	return &Replayer{store: store}, nil
}

// Close releases the underlying database handle.
func (r *Replayer) Close() error {
	return r.store.Close()
}

// RunReplay loads every event in the WAL (from seq 1) and feeds it into
// sequencer in order. sequencer should be built with a nil
// *storage.EventStore so replay does not re-write the WAL it is reading
// from.
func (r *Replayer) RunReplay(ctx context.Context, sequencer *engine.Sequencer) error {
	events, err := r.store.LoadEvents(ctx, 1)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	for _, ev := range events {
		sequencer.ReplayEvent(ev)
	}
	return nil
}
