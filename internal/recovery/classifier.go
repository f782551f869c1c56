// Package recovery implements the post-hoc outcome classifier and
// bounded-retry corrective executor invoked when a dual-order
// leaves exactly one leg filled.
package recovery

import "github.com/s2ungeda/kac/internal/domain"

// DefaultMaxRetries matches the documented default for the recovery
// executor's retry budget.
const DefaultMaxRetries = 3

// legState classifies one leg's outcome for the purposes of the
// recovery action table.
type legState uint8

const (
	legSuccess legState = iota
	legFailure
	legAmbiguous
)

// classifyLeg maps a LegOutcome to a legState. A clean error with zero
// fill is a Failure; a full fill with no error is a Success; anything
// else (a partial fill, or a fill alongside an error such as a
// timed-out cancel whose fill status is unconfirmed) is Ambiguous and
// needs a human.
func classifyLeg(l domain.LegOutcome) legState {
	switch {
	case l.Err == nil && l.Result.Status == domain.Filled:
		return legSuccess
	case l.Err != nil && l.Result.FilledQty == 0:
		return legFailure
	default:
		return legAmbiguous
	}
}

// Classify decides the corrective action for a dual-order request given
// its two leg outcomes, per the recovery action table: both success or
// both failure need no action; exactly one success triggers a
// corrective order against the filled quantity of the successful leg,
// opposite its side; any ambiguous leg is flagged for a human.
func Classify(req domain.DualOrderRequest, buy, sell domain.LegOutcome) domain.RecoveryPlan {
	buyState, sellState := classifyLeg(buy), classifyLeg(sell)

	switch {
	case buyState == legSuccess && sellState == legSuccess:
		return domain.RecoveryPlan{Action: domain.RecoveryNone, Reason: "both legs succeeded"}
	case buyState == legFailure && sellState == legFailure:
		return domain.RecoveryPlan{Action: domain.RecoveryNone, Reason: "both legs failed, nothing to undo"}
	case buyState == legSuccess && sellState == legFailure:
		return domain.RecoveryPlan{
			Action: domain.RecoverySellBought,
			Order: domain.OrderRequest{
				Venue:    req.Buy.Venue,
				Symbol:   req.Buy.Symbol,
				Side:     domain.Sell,
				Type:     domain.Market,
				Quantity: buy.Result.FilledQty,
			},
			Reason:     "buy leg filled, sell leg failed: liquidating the bought quantity",
			MaxRetries: DefaultMaxRetries,
		}
	case buyState == legFailure && sellState == legSuccess:
		return domain.RecoveryPlan{
			Action: domain.RecoveryBuySold,
			Order: domain.OrderRequest{
				Venue:    req.Sell.Venue,
				Symbol:   req.Sell.Symbol,
				Side:     domain.Buy,
				Type:     domain.Market,
				Quantity: sell.Result.FilledQty,
			},
			Reason:     "sell leg filled, buy leg failed: covering the sold quantity",
			MaxRetries: DefaultMaxRetries,
		}
	default:
		return domain.RecoveryPlan{Action: domain.RecoveryManualIntervention, Reason: "ambiguous leg outcome needs manual review"}
	}
}
