package domain

import "time"

// RecoveryAction is the corrective move the recovery planner
// decides on after a dual-order leg outcome is classified.
type RecoveryAction uint8

const (
	RecoveryNone RecoveryAction = iota
	RecoverySellBought
	RecoveryBuySold
	RecoveryCancelBoth
	RecoveryManualIntervention
)

func (a RecoveryAction) String() string {
	switch a {
	case RecoveryNone:
		return "None"
	case RecoverySellBought:
		return "SellBought"
	case RecoveryBuySold:
		return "BuySold"
	case RecoveryCancelBoth:
		return "CancelBoth"
	case RecoveryManualIntervention:
		return "ManualIntervention"
	default:
		return "Unknown"
	}
}

// RecoveryPlan is the decision produced for a one-legged or failed dual
// order: the corrective order, why it was chosen, and the bounded-retry
// budget governing its dispatch.
type RecoveryPlan struct {
	Action       RecoveryAction
	Order        OrderRequest
	Reason       string
	RetryCount   int
	MaxRetries   int
	RetryDelay   time.Duration
}

// ExhaustedRetries reports whether the plan has used up its retry
// budget.
func (p RecoveryPlan) ExhaustedRetries() bool {
	return p.RetryCount >= p.MaxRetries
}
