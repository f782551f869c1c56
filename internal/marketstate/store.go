// Package marketstate holds the per-venue latest ticker and order book
// as an array indexed by domain.Venue, readable concurrently by the
// premium engine and any observability path while the single sequencer
// consumer thread writes tickers and books (the FX rate is set by the
// FX poller through Sequencer.UpdateFx). Writes are rare relative to reads, so readers
// take a shared lock and the writer an exclusive one; whole records are
// copied under the lock so a reader never observes a half-written book.
package marketstate

import (
	"sync"

	"github.com/s2ungeda/kac/internal/domain"
)

// Store holds one symbol's latest ticker and order book per venue, plus
// the current FX rate shared across every symbol.
type Store struct {
	mu      sync.RWMutex
	tickers [4]domain.Ticker
	books   [4]domain.OrderBook
	haveTk  [4]bool
	haveBk  [4]bool
	fx      domain.FxRate
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// SetTicker overwrites the slot for t.Venue. Called only from the
// single sequencer consumer goroutine.
func (s *Store) SetTicker(t domain.Ticker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers[t.Venue] = t
	s.haveTk[t.Venue] = true
}

// SetBook overwrites the slot for b.Venue. Called only from the single
// sequencer consumer goroutine.
func (s *Store) SetBook(b domain.OrderBook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[b.Venue] = b
	s.haveBk[b.Venue] = true
}

// SetFxRate overwrites the shared FX rate.
func (s *Store) SetFxRate(fx domain.FxRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fx = fx
}

// Ticker returns a copy of the latest ticker for v, and whether one has
// ever been set.
func (s *Store) Ticker(v domain.Venue) (domain.Ticker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickers[v], s.haveTk[v]
}

// Book returns a copy of the latest order book for v, and whether one
// has ever been set.
func (s *Store) Book(v domain.Venue) (domain.OrderBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.books[v], s.haveBk[v]
}

// FxRate returns a copy of the current FX rate.
func (s *Store) FxRate() domain.FxRate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fx
}

// Snapshot returns copies of every venue's latest ticker and book plus
// the FX rate, taken under a single read lock so the set is consistent.
func (s *Store) Snapshot() (tickers [4]domain.Ticker, books [4]domain.OrderBook, fx domain.FxRate) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickers, s.books, s.fx
}
