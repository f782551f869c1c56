package event

import (
	"testing"

	"github.com/s2ungeda/kac/internal/domain"
)

func TestEventPool(t *testing.T) {
	ev := AcquireTickerEvent()
	ev.Ticker = domain.NewTicker(domain.Upbit, "XRP", 3100, 3099, 3101, 0, 0)

	if ev.Ticker.Symbol() != "XRP" {
		t.Error("Ticker not set")
	}

	ReleaseTickerEvent(ev)

	ev2 := AcquireTickerEvent()
	if ev2.Ticker.Symbol() != "" {
		t.Error("event should be reset after release")
	}
	ReleaseTickerEvent(ev2)
}

// BenchmarkWithoutPool measures allocation without the pool.
func BenchmarkWithoutPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := &TickerEvent{Ticker: domain.NewTicker(domain.Upbit, "XRP", 3100, 3099, 3101, 0, 0)}
		_ = ev
	}
}

// BenchmarkWithPool measures allocation with the pool.
func BenchmarkWithPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := AcquireTickerEvent()
		ev.Ticker = domain.NewTicker(domain.Upbit, "XRP", 3100, 3099, 3101, 0, 0)
		ReleaseTickerEvent(ev)
	}
}
