package ratelimiter

import (
	"context"
	"testing"
	"time"
)

func TestTryAcquireRespectsBurst(t *testing.T) {
	l := New(10, 5)
	for i := 0; i < 5; i++ {
		if !l.TryAcquire(1) {
			t.Fatalf("acquire %d should succeed within burst", i)
		}
	}
	if l.TryAcquire(1) {
		t.Fatal("acquire beyond burst should fail immediately")
	}
}

func TestTryAcquireRefillsOverTime(t *testing.T) {
	l := New(100, 1) // 100 tokens/sec, burst 1
	if !l.TryAcquire(1) {
		t.Fatal("initial acquire should succeed")
	}
	if l.TryAcquire(1) {
		t.Fatal("bucket should be empty immediately after draining burst")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.TryAcquire(1) {
		t.Fatal("bucket should have refilled a token after 20ms at 100/s")
	}
}

func TestAcquireBlocksUntilAvailable(t *testing.T) {
	l := New(50, 1)
	l.TryAcquire(1)

	start := time.Now()
	l.Acquire(1)
	if time.Since(start) < 5*time.Millisecond {
		t.Fatal("Acquire should have waited for refill")
	}
}

func TestAcquireForTimesOut(t *testing.T) {
	l := New(1, 1)
	l.TryAcquire(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.AcquireFor(ctx, 1); err == nil {
		t.Fatal("expected deadline exceeded error")
	}
}

// TestTryAcquireRateBound checks the count of successful try_acquire(1)
// calls over a window stays within burst + rate*T, a direct translation
// of the rate-limiter testable property.
func TestTryAcquireRateBound(t *testing.T) {
	const rate = 200.0
	const burst = 10
	l := New(rate, burst)

	window := 50 * time.Millisecond
	deadline := time.Now().Add(window)
	successes := 0
	for time.Now().Before(deadline) {
		if l.TryAcquire(1) {
			successes++
		}
	}

	upperBound := burst + rate*window.Seconds() + float64(burst) // tolerance
	if float64(successes) > upperBound {
		t.Fatalf("successes=%d exceeds bound %.1f", successes, upperBound)
	}
}
