package executor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
)

// BreakerState is the circuit breaker's current mode.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // normal operation
	BreakerOpen                         // tripped, reject dispatch
	BreakerHalfOpen                     // probing recovery
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "CLOSED"
	case BreakerOpen:
		return "OPEN"
	case BreakerHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker trips dispatch to a single venue after repeated leg
// failures, so one unreachable or rate-limited venue cannot keep
// feeding doomed orders into every dual-order attempt that touches it.
type CircuitBreaker struct {
	name string
	mu   sync.RWMutex

	state        BreakerState
	failureCount int
	successCount int
	lastFailure  time.Time

	failureThreshold int
	successThreshold int
	timeout          time.Duration
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
}

// DefaultCircuitBreakerConfig returns sensible defaults for a venue client.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:             cfg.Name,
		state:            BreakerClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		timeout:          cfg.Timeout,
	}
}

// Allow reports whether a request should be dispatched.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		return true

	case BreakerOpen:
		if time.Since(cb.lastFailure) > cb.timeout {
			cb.state = BreakerHalfOpen
			cb.successCount = 0
			slog.Info("circuit breaker transitioning to half-open", slog.String("venue", cb.name))
			return true
		}
		return false

	case BreakerHalfOpen:
		return true

	default:
		return false
	}
}

// RecordSuccess records a successful order placement.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case BreakerClosed:
		cb.failureCount = 0

	case BreakerHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = BreakerClosed
			cb.failureCount = 0
			cb.successCount = 0
			slog.Info("circuit breaker closed, venue recovered", slog.String("venue", cb.name))
		}
	}
}

// RecordFailure records a failed order placement.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = time.Now()

	switch cb.state {
	case BreakerClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = BreakerOpen
			slog.Warn("circuit breaker open, venue failures exceeded threshold",
				slog.String("venue", cb.name), slog.Int("failures", cb.failureCount))
		}

	case BreakerHalfOpen:
		cb.state = BreakerOpen
		cb.successCount = 0
		slog.Warn("circuit breaker reopened, half-open probe failed", slog.String("venue", cb.name))
	}
}

// State returns the current state, for monitoring.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset forces the breaker back to closed (admin/testing use).
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = BreakerClosed
	cb.failureCount = 0
	cb.successCount = 0
	slog.Info("circuit breaker reset", slog.String("venue", cb.name))
}

// ErrBreakerOpen is returned by BreakerClient.PlaceOrder when the
// breaker is open and dispatch is being rejected without touching the
// venue at all.
type ErrBreakerOpen struct {
	Venue domain.Venue
}

func (e ErrBreakerOpen) Error() string {
	return "circuit breaker open for venue " + e.Venue.String()
}

// BreakerClient wraps a Client with a per-venue CircuitBreaker so a
// venue that starts failing repeatedly is skipped rather than retried
// into every subsequent dual-order attempt.
type BreakerClient struct {
	Client
	Breaker *CircuitBreaker
}

// NewBreakerClient wraps client with a breaker using the default config,
// named after venue.
func NewBreakerClient(venue domain.Venue, client Client) *BreakerClient {
	return &BreakerClient{
		Client:  client,
		Breaker: NewCircuitBreaker(DefaultCircuitBreakerConfig(venue.String())),
	}
}

// PlaceOrder rejects dispatch outright when the breaker is open,
// otherwise delegates and records the outcome.
func (bc *BreakerClient) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	if !bc.Breaker.Allow() {
		return domain.OrderResult{}, ErrBreakerOpen{Venue: req.Venue}
	}
	result, err := bc.Client.PlaceOrder(ctx, req)
	if err != nil {
		bc.Breaker.RecordFailure()
		return result, err
	}
	bc.Breaker.RecordSuccess()
	return result, nil
}
