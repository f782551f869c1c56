package executor

import (
	"context"
	"sync"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/errkind"
	"github.com/s2ungeda/kac/internal/recovery"
)

// DefaultLegTimeout bounds how long a single leg may take before it's
// treated as a ConnectionTimeout failure.
const DefaultLegTimeout = 30 * time.Second

// Executor dispatches DualOrderRequests across venue clients.
type Executor struct {
	Clients      map[domain.Venue]Client
	LegTimeout   time.Duration
	AutoRecovery bool
	Recoverer    *recovery.Executor
	Stats        Stats
}

// New builds an Executor wired to the given per-venue clients.
func New(clients map[domain.Venue]Client) *Executor {
	return &Executor{Clients: clients, LegTimeout: DefaultLegTimeout}
}

// validate rejects structurally invalid or unroutable requests before
// any network action is taken.
func (e *Executor) validate(req domain.DualOrderRequest) error {
	if !req.Valid() {
		return errkind.InvalidRequest("malformed dual-order request", nil)
	}
	if _, ok := e.Clients[req.Buy.Venue]; !ok {
		return errkind.InvalidRequest("no client registered for buy venue "+req.Buy.Venue.String(), nil)
	}
	if _, ok := e.Clients[req.Sell.Venue]; !ok {
		return errkind.InvalidRequest("no client registered for sell venue "+req.Sell.Venue.String(), nil)
	}
	return nil
}

// placeLeg sleeps for the leg's RTT-compensation delay, then places the
// order under a per-leg timeout, returning a LegOutcome with timing
// recorded regardless of success or failure.
func (e *Executor) placeLeg(ctx context.Context, client Client, order domain.OrderRequest, rttDelay time.Duration) domain.LegOutcome {
	start := time.Now()
	if rttDelay > 0 {
		timer := time.NewTimer(rttDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return domain.LegOutcome{Err: errkind.Timeout("leg cancelled before dispatch", ctx.Err()), StartedAt: start, EndedAt: time.Now()}
		}
	}

	timeout := e.LegTimeout
	if timeout == 0 {
		timeout = DefaultLegTimeout
	}
	legCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := client.PlaceOrder(legCtx, order)
	end := time.Now()
	if err != nil && legCtx.Err() == context.DeadlineExceeded {
		err = errkind.Timeout("leg timed out", err)
	}
	return domain.LegOutcome{Result: result, Err: err, StartedAt: start, EndedAt: end}
}

// Execute dispatches both legs of req in parallel, classifies the
// result, and — when AutoRecovery is set and the outcome is a partial
// fill — runs the recovery classifier and executor against the one
// filled leg.
func (e *Executor) Execute(ctx context.Context, req domain.DualOrderRequest) (domain.DualOrderResult, Outcome, *domain.RecoveryPlan, error) {
	if err := e.validate(req); err != nil {
		return domain.DualOrderResult{RequestID: req.RequestID}, OutcomeBothFailed, nil, err
	}

	buyClient := e.Clients[req.Buy.Venue]
	sellClient := e.Clients[req.Sell.Venue]

	started := time.Now()
	var buyLeg, sellLeg domain.LegOutcome
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		buyLeg = e.placeLeg(ctx, buyClient, req.Buy, req.BuyRTTDelay)
	}()
	go func() {
		defer wg.Done()
		sellLeg = e.placeLeg(ctx, sellClient, req.Sell, req.SellRTTDelay)
	}()
	wg.Wait()
	ended := time.Now()

	result := domain.DualOrderResult{
		RequestID: req.RequestID,
		BuyLeg:    buyLeg,
		SellLeg:   sellLeg,
		StartedAt: started,
		EndedAt:   ended,
	}
	if buyLeg.IsSuccess() && sellLeg.IsSuccess() {
		result.ActualPremium = domain.ActualPremiumFromFills(buyLeg.Result.AvgPrice, sellLeg.Result.AvgPrice)
	}

	outcome := classifyOutcome(buyLeg, sellLeg)
	e.Stats.recordOutcome(outcome, ended.Sub(started).Microseconds())

	if outcome != OutcomePartialFill || !e.AutoRecovery || e.Recoverer == nil {
		return result, outcome, nil, nil
	}

	plan := recovery.Classify(req, buyLeg, sellLeg)
	ran, ok := e.Recoverer.Run(ctx, plan)
	e.Stats.recordRecovery(ok)
	return result, outcome, &ran, nil
}

func classifyOutcome(buy, sell domain.LegOutcome) Outcome {
	switch {
	case buy.IsSuccess() && sell.IsSuccess():
		return OutcomeBothSuccess
	case !buy.IsSuccess() && !sell.IsSuccess():
		return OutcomeBothFailed
	default:
		return OutcomePartialFill
	}
}
