package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
)

func TestCircuitBreaker_AllowInClosed(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("test"))

	if !cb.Allow() {
		t.Error("expected Allow() true in closed state")
	}
	if cb.State() != BreakerClosed {
		t.Errorf("expected closed, got %s", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cfg := CircuitBreakerConfig{Name: "test", FailureThreshold: 3, SuccessThreshold: 2, Timeout: 100 * time.Millisecond}
	cb := NewCircuitBreaker(cfg)

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != BreakerClosed {
		t.Error("should still be closed after 2 failures")
	}

	cb.RecordFailure()
	if cb.State() != BreakerOpen {
		t.Errorf("expected open after 3 failures, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("expected Allow() false in open state")
	}
}

func TestCircuitBreaker_HalfOpenAfterTimeout(t *testing.T) {
	cfg := CircuitBreakerConfig{Name: "test", FailureThreshold: 2, SuccessThreshold: 1, Timeout: 50 * time.Millisecond}
	cb := NewCircuitBreaker(cfg)

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != BreakerOpen {
		t.Fatal("expected open state")
	}

	time.Sleep(60 * time.Millisecond)

	if !cb.Allow() {
		t.Error("expected Allow() true after timeout (half-open)")
	}
	if cb.State() != BreakerHalfOpen {
		t.Errorf("expected half-open, got %s", cb.State())
	}
}

func TestCircuitBreaker_ClosesOnSuccess(t *testing.T) {
	cfg := CircuitBreakerConfig{Name: "test", FailureThreshold: 2, SuccessThreshold: 2, Timeout: 10 * time.Millisecond}
	cb := NewCircuitBreaker(cfg)

	cb.RecordFailure()
	cb.RecordFailure()

	time.Sleep(15 * time.Millisecond)
	cb.Allow()

	cb.RecordSuccess()
	if cb.State() != BreakerHalfOpen {
		t.Error("should still be half-open after 1 success")
	}

	cb.RecordSuccess()
	if cb.State() != BreakerClosed {
		t.Errorf("expected closed after 2 successes, got %s", cb.State())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig("test"))

	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	if cb.State() != BreakerOpen {
		t.Fatal("expected open state")
	}

	cb.Reset()
	if cb.State() != BreakerClosed {
		t.Errorf("expected closed after reset, got %s", cb.State())
	}
	if !cb.Allow() {
		t.Error("expected Allow() true after reset")
	}
}

type stubClient struct {
	err error
}

func (s *stubClient) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	if s.err != nil {
		return domain.OrderResult{}, s.err
	}
	return domain.OrderResult{Status: domain.Filled, FilledQty: req.Quantity}, nil
}

func TestBreakerClient_RejectsWhenOpen(t *testing.T) {
	failing := &stubClient{err: errors.New("venue unreachable")}
	bc := NewBreakerClient(domain.Upbit, failing)
	bc.Breaker.failureThreshold = 2

	for i := 0; i < 2; i++ {
		if _, err := bc.PlaceOrder(context.Background(), domain.OrderRequest{Venue: domain.Upbit}); err == nil {
			t.Fatal("expected failure to propagate")
		}
	}
	if bc.Breaker.State() != BreakerOpen {
		t.Fatalf("expected breaker open, got %s", bc.Breaker.State())
	}

	_, err := bc.PlaceOrder(context.Background(), domain.OrderRequest{Venue: domain.Upbit})
	var breakerErr ErrBreakerOpen
	if !errors.As(err, &breakerErr) {
		t.Fatalf("expected ErrBreakerOpen, got %v", err)
	}
}

func TestBreakerClient_PassesThroughOnSuccess(t *testing.T) {
	ok := &stubClient{}
	bc := NewBreakerClient(domain.Binance, ok)

	result, err := bc.PlaceOrder(context.Background(), domain.OrderRequest{Venue: domain.Binance, Symbol: "XRPUSDT", Quantity: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilledQty != 10 {
		t.Errorf("expected filled qty 10, got %v", result.FilledQty)
	}
	if bc.Breaker.State() != BreakerClosed {
		t.Errorf("expected breaker to remain closed, got %s", bc.Breaker.State())
	}
}
