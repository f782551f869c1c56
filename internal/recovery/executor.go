package recovery

import (
	"context"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
)

// OrderPlacer is the minimal capability the recovery executor needs:
// placing a single corrective order. Satisfied by the executor
// package's venue clients.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)
}

// DefaultRetryDelay is the documented default spacing between
// corrective order attempts.
const DefaultRetryDelay = 100 * time.Millisecond

// Executor runs a RecoveryPlan's corrective order with bounded retries.
type Executor struct {
	Placer  OrderPlacer
	DryRun  bool // short-circuits to synthetic success, for tests/rehearsals
}

// Run attempts plan.Order up to plan.MaxRetries times, spaced by
// plan.RetryDelay (or DefaultRetryDelay if zero), stopping on the first
// successful fill. It returns the final plan (RetryCount updated) and
// whether recovery succeeded. A None or ManualIntervention plan is
// returned unchanged without placing an order; success is true for None
// and false for ManualIntervention.
func (e *Executor) Run(ctx context.Context, plan domain.RecoveryPlan) (domain.RecoveryPlan, bool) {
	if plan.Action == domain.RecoveryNone || plan.Action == domain.RecoveryManualIntervention {
		return plan, plan.Action == domain.RecoveryNone
	}

	delay := plan.RetryDelay
	if delay == 0 {
		delay = DefaultRetryDelay
	}
	maxRetries := plan.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	for plan.RetryCount < maxRetries {
		if e.DryRun {
			return plan, true
		}

		result, err := e.Placer.PlaceOrder(ctx, plan.Order)
		plan.RetryCount++
		if err == nil && result.FilledQty > 0 {
			return plan, true
		}

		if plan.RetryCount < maxRetries {
			select {
			case <-ctx.Done():
				return plan, false
			case <-time.After(delay):
			}
		}
	}
	return plan, false
}
