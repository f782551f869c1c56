// Package executor dispatches the two legs of a dual-order request in
// parallel, classifies the combined outcome, and — when enabled —
// hands a one-legged fill to the recovery package for a corrective
// order.
package executor

import (
	"context"

	"github.com/s2ungeda/kac/internal/domain"
)

// Client places a single order against one venue. Implemented per venue
// under internal/venueclient; satisfies recovery.OrderPlacer too.
type Client interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error)
}

// Outcome classifies a dispatched DualOrderRequest.
type Outcome uint8

const (
	OutcomeBothSuccess Outcome = iota
	OutcomePartialFill
	OutcomeBothFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBothSuccess:
		return "both_success"
	case OutcomePartialFill:
		return "partial_fill"
	case OutcomeBothFailed:
		return "both_failed"
	default:
		return "unknown"
	}
}
