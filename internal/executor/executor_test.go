package executor

import (
	"context"
	"testing"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/recovery"
)

func dualReq() domain.DualOrderRequest {
	return domain.DualOrderRequest{
		RequestID: "req-1",
		Buy:       domain.OrderRequest{Venue: domain.Binance, Symbol: "XRPUSDT", Side: domain.Buy, Type: domain.Limit, Quantity: 100, LimitPrice: 2.15},
		Sell:      domain.OrderRequest{Venue: domain.Upbit, Symbol: "XRP", Side: domain.Sell, Type: domain.Limit, Quantity: 100, LimitPrice: 3100},
	}
}

// TestS3ParallelDispatchCompletesInBoundedTime reproduces the scenario:
// two mock clients each with 50ms latency; execute must complete in
// well under 2*L, and the two legs must start within 0.2*L of each
// other (testable property #9).
func TestS3ParallelDispatchCompletesInBoundedTime(t *testing.T) {
	const latency = 50 * time.Millisecond
	buy := NewMockClient(domain.Binance, latency)
	sell := NewMockClient(domain.Upbit, latency)
	e := New(map[domain.Venue]Client{domain.Binance: buy, domain.Upbit: sell})

	start := time.Now()
	result, outcome, _, err := e.Execute(context.Background(), dualReq())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeBothSuccess {
		t.Fatalf("outcome = %v, want both_success", outcome)
	}
	if elapsed > 80*time.Millisecond {
		t.Fatalf("elapsed = %v, want <= 80ms (1.6x latency)", elapsed)
	}

	skew := result.BuyLeg.StartedAt.Sub(result.SellLeg.StartedAt)
	if skew < 0 {
		skew = -skew
	}
	if skew > 10*time.Millisecond {
		t.Fatalf("leg start skew = %v, want < 0.2x latency (10ms)", skew)
	}
}

func TestExecuteRejectsInvalidRequestBeforeDispatch(t *testing.T) {
	buy := NewMockClient(domain.Binance, time.Millisecond)
	e := New(map[domain.Venue]Client{domain.Binance: buy})

	req := dualReq()
	req.Sell.Venue = domain.Binance // same venue as buy: invalid

	_, outcome, _, err := e.Execute(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if outcome != OutcomeBothFailed {
		t.Fatalf("outcome = %v, want both_failed", outcome)
	}
}

func TestExecuteRejectsUnknownVenue(t *testing.T) {
	e := New(map[domain.Venue]Client{domain.Binance: NewMockClient(domain.Binance, time.Millisecond)})
	_, _, _, err := e.Execute(context.Background(), dualReq()) // no Upbit client registered
	if err == nil {
		t.Fatal("expected error for unregistered sell venue")
	}
}

func TestExecuteClassifiesPartialFillAndRecovers(t *testing.T) {
	buy := NewMockClient(domain.Binance, time.Millisecond)
	sell := NewMockClient(domain.Upbit, time.Millisecond)
	sell.Fail = true

	e := New(map[domain.Venue]Client{domain.Binance: buy, domain.Upbit: sell})
	e.AutoRecovery = true
	e.Recoverer = &recovery.Executor{Placer: buy, DryRun: true}

	result, outcome, plan, err := e.Execute(context.Background(), dualReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomePartialFill {
		t.Fatalf("outcome = %v, want partial_fill", outcome)
	}
	if !result.BuyLeg.IsSuccess() || result.SellLeg.IsSuccess() {
		t.Fatal("expected buy leg success, sell leg failure")
	}
	if plan == nil {
		t.Fatal("expected a recovery plan")
	}
	if plan.Action != domain.RecoverySellBought {
		t.Fatalf("recovery action = %v, want SellBought", plan.Action)
	}

	snap := e.Stats.Snapshot()
	if snap.PartialFill != 1 {
		t.Fatalf("PartialFill = %d, want 1", snap.PartialFill)
	}
	if snap.RecoveryAttempts != 1 || snap.RecoverySuccess != 1 {
		t.Fatalf("recovery stats = %+v, want 1 attempt / 1 success", snap)
	}
}

func TestExecuteBothFailedRecordsStatsWithoutRecovery(t *testing.T) {
	buy := NewMockClient(domain.Binance, time.Millisecond)
	buy.Fail = true
	sell := NewMockClient(domain.Upbit, time.Millisecond)
	sell.Fail = true

	e := New(map[domain.Venue]Client{domain.Binance: buy, domain.Upbit: sell})
	e.AutoRecovery = true // no recoverer wired; must not be invoked for both_failed

	_, outcome, plan, err := e.Execute(context.Background(), dualReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeBothFailed {
		t.Fatalf("outcome = %v, want both_failed", outcome)
	}
	if plan != nil {
		t.Fatal("expected no recovery plan for both_failed outcome")
	}

	snap := e.Stats.Snapshot()
	if snap.BothFailed != 1 {
		t.Fatalf("BothFailed = %d, want 1", snap.BothFailed)
	}
	if snap.RecoveryAttempts != 0 {
		t.Fatalf("RecoveryAttempts = %d, want 0", snap.RecoveryAttempts)
	}
}

func TestExecuteHonorsPerLegTimeout(t *testing.T) {
	slow := NewMockClient(domain.Binance, 50*time.Millisecond)
	fast := NewMockClient(domain.Upbit, time.Millisecond)

	e := New(map[domain.Venue]Client{domain.Binance: slow, domain.Upbit: fast})
	e.LegTimeout = 10 * time.Millisecond

	result, outcome, _, err := e.Execute(context.Background(), dualReq())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomePartialFill {
		t.Fatalf("outcome = %v, want partial_fill (buy leg times out)", outcome)
	}
	if result.BuyLeg.Err == nil {
		t.Fatal("expected buy leg to report a timeout error")
	}
}
