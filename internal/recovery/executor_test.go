package recovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
)

type fakePlacer struct {
	failUntil int // number of leading calls that fail
	calls     int
}

func (f *fakePlacer) PlaceOrder(_ context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	f.calls++
	if f.calls <= f.failUntil {
		return domain.OrderResult{}, errors.New("rejected")
	}
	return domain.OrderResult{Status: domain.Filled, FilledQty: req.Quantity}, nil
}

func TestExecutorRunSucceedsOnFirstAttempt(t *testing.T) {
	placer := &fakePlacer{}
	e := Executor{Placer: placer}
	plan := domain.RecoveryPlan{Action: domain.RecoverySellBought, Order: domain.OrderRequest{Quantity: 100}, RetryDelay: time.Millisecond}

	got, ok := e.Run(context.Background(), plan)
	if !ok {
		t.Fatal("expected success")
	}
	if got.RetryCount != 1 {
		t.Fatalf("RetryCount = %d, want 1", got.RetryCount)
	}
}

func TestExecutorRunRetriesThenSucceeds(t *testing.T) {
	placer := &fakePlacer{failUntil: 2}
	e := Executor{Placer: placer}
	plan := domain.RecoveryPlan{Action: domain.RecoveryBuySold, Order: domain.OrderRequest{Quantity: 100}, RetryDelay: time.Millisecond, MaxRetries: 5}

	got, ok := e.Run(context.Background(), plan)
	if !ok {
		t.Fatal("expected eventual success")
	}
	if got.RetryCount != 3 {
		t.Fatalf("RetryCount = %d, want 3", got.RetryCount)
	}
}

func TestExecutorRunExhaustsRetries(t *testing.T) {
	placer := &fakePlacer{failUntil: 100}
	e := Executor{Placer: placer}
	plan := domain.RecoveryPlan{Action: domain.RecoverySellBought, Order: domain.OrderRequest{Quantity: 100}, RetryDelay: time.Millisecond, MaxRetries: 3}

	got, ok := e.Run(context.Background(), plan)
	if ok {
		t.Fatal("expected failure after exhausting retries")
	}
	if got.RetryCount != 3 {
		t.Fatalf("RetryCount = %d, want 3", got.RetryCount)
	}
	if !got.ExhaustedRetries() {
		t.Fatal("ExhaustedRetries() should be true")
	}
}

func TestExecutorRunDryRunShortCircuits(t *testing.T) {
	placer := &fakePlacer{failUntil: 100}
	e := Executor{Placer: placer, DryRun: true}
	plan := domain.RecoveryPlan{Action: domain.RecoverySellBought, Order: domain.OrderRequest{Quantity: 100}}

	_, ok := e.Run(context.Background(), plan)
	if !ok {
		t.Fatal("expected dry-run synthetic success")
	}
	if placer.calls != 0 {
		t.Fatalf("placer should not be called in dry-run, got %d calls", placer.calls)
	}
}

func TestExecutorRunNoneAndManualInterventionPassThrough(t *testing.T) {
	placer := &fakePlacer{}
	e := Executor{Placer: placer}

	got, ok := e.Run(context.Background(), domain.RecoveryPlan{Action: domain.RecoveryNone})
	if !ok || got.Action != domain.RecoveryNone {
		t.Fatal("None plan should pass through as success with no calls")
	}

	got, ok = e.Run(context.Background(), domain.RecoveryPlan{Action: domain.RecoveryManualIntervention})
	if ok || got.Action != domain.RecoveryManualIntervention {
		t.Fatal("ManualIntervention plan should pass through unchanged with ok=false")
	}
	if placer.calls != 0 {
		t.Fatalf("placer should not be called for None/ManualIntervention, got %d calls", placer.calls)
	}
}

func TestExecutorRunRespectsContextCancellation(t *testing.T) {
	placer := &fakePlacer{failUntil: 100}
	e := Executor{Placer: placer}
	plan := domain.RecoveryPlan{Action: domain.RecoverySellBought, Order: domain.OrderRequest{Quantity: 100}, RetryDelay: 50 * time.Millisecond, MaxRetries: 10}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, ok := e.Run(ctx, plan)
	if ok {
		t.Fatal("expected failure on context cancellation")
	}
}
