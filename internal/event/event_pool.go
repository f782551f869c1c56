package event

import "github.com/s2ungeda/kac/pkg/pool"

// tickerPool is a fixed-capacity pool of reusable TickerEvent values.
// The sequencer builds its TickerEvent values directly and does not
// draw from it.
var tickerPool = pool.New(1024,
	func() *TickerEvent { return &TickerEvent{} },
	func(e *TickerEvent) { *e = TickerEvent{} },
)

// AcquireTickerEvent returns a zeroed TickerEvent from the pool,
// falling back to a heap allocation if the pool is exhausted.
func AcquireTickerEvent() *TickerEvent {
	return tickerPool.Acquire()
}

// ReleaseTickerEvent resets ev and returns it to the pool.
func ReleaseTickerEvent(ev *TickerEvent) {
	tickerPool.Release(ev)
}

// Warmup pre-allocates the full pool capacity so the first burst of
// traffic after startup never takes the heap-fallback path.
func Warmup() {
	tickerPool.Warmup()
}
