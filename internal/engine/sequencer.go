// Package engine implements the sequencer: the
// single consumer goroutine that drains the merged per-venue session
// event stream, updates market state, recomputes the premium matrix,
// and — off the hot path — drives dual-order execution and recovery
// when an opportunity crosses threshold.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/event"
	"github.com/s2ungeda/kac/internal/executor"
	"github.com/s2ungeda/kac/internal/liquidity"
	"github.com/s2ungeda/kac/internal/marketstate"
	"github.com/s2ungeda/kac/internal/premium"
	"github.com/s2ungeda/kac/internal/session"
	"github.com/s2ungeda/kac/internal/storage"
	"github.com/s2ungeda/kac/pkg/quant"
)

// Config holds the decision thresholds the sequencer needs beyond its
// wired components.
type Config struct {
	ThresholdPct  float64 // premium_pct an opportunity must cross to trigger execution
	MinOrderQty   float64
	MaxOrderQty   float64
	Liquidity     liquidity.Params
	Planner       liquidity.PlannerParams
	// VenueSymbols names the venue-native symbol used when building an
	// OrderRequest for that venue, indexed by domain.Venue (e.g.
	// "KRW-XRP" for Upbit, "XRPUSDT" for Binance).
	VenueSymbols [4]string
}

// tradeResult is the outcome of one executeOpportunity dispatch, routed
// back to the sequencer goroutine for WAL persistence.
type tradeResult struct {
	req     domain.DualOrderRequest
	result  domain.DualOrderResult
	outcome executor.Outcome
	plan    *domain.RecoveryPlan
}

// Sequencer drains session.Event values from a single inbox, updates
// market state and the premium engine, and arms execution when an
// opportunity crosses threshold. It is the only writer of tickers and
// order books in internal/marketstate (the FX rate is written by
// UpdateFx on its caller's goroutine) and the only writer of the event
// WAL; nothing else may call store.SaveEvent.
type Sequencer struct {
	inbox         chan session.Event
	transferInbox chan transferRecord

	store *storage.EventStore
	state *marketstate.Store
	prem  *premium.Engine
	exec  *executor.Executor

	cfg Config

	nextSeq  uint64
	inFlight atomic.Bool

	tradeDone chan tradeResult

	// opportunityHook, if set, is notified of every threshold-crossing
	// opportunity alongside the execution dispatch (e.g. a Redis
	// publish for an external dashboard). Called from the same
	// goroutine onAlert spawns, so it must not block indefinitely.
	opportunityHook func(domain.Opportunity)

	// tradeAuditHook, if set, is notified of every dual-order outcome
	// once it has been written to the WAL, alongside whatever recovery
	// plan (if any) ran for it. Called from the sequencer's own
	// goroutine in persistTradeResult, so it must not block.
	tradeAuditHook func(domain.DualOrderRequest, domain.DualOrderResult, executor.Outcome, *domain.RecoveryPlan)
}

// SetOpportunityHook installs fn to be called whenever the premium
// engine reports a threshold-crossing opportunity, in addition to the
// sequencer's own execution dispatch.
func (s *Sequencer) SetOpportunityHook(fn func(domain.Opportunity)) {
	s.opportunityHook = fn
}

// SetTradeAuditHook installs fn to be called with every dual-order
// outcome after it lands in the WAL (e.g. a secondary Postgres audit
// log for multi-instance deployments).
func (s *Sequencer) SetTradeAuditHook(fn func(domain.DualOrderRequest, domain.DualOrderResult, executor.Outcome, *domain.RecoveryPlan)) {
	s.tradeAuditHook = fn
}

type transferRecord struct {
	req domain.TransferRequest
	res domain.TransferResult
}

// NewSequencer builds a Sequencer wired to store (nil disables WAL
// persistence) and exec (the dual-order dispatcher). cfg.ThresholdPct
// is the premium_pct an opportunity must cross before the sequencer
// arms a dispatch.
func NewSequencer(inboxSize int, store *storage.EventStore, exec *executor.Executor, cfg Config) *Sequencer {
	s := &Sequencer{
		inbox:         make(chan session.Event, inboxSize),
		transferInbox: make(chan transferRecord, 64),
		store:         store,
		state:         marketstate.New(),
		exec:          exec,
		cfg:           cfg,
		nextSeq:       1,
		tradeDone:     make(chan tradeResult, 8),
	}
	s.prem = premium.New(cfg.ThresholdPct, s.onAlert)
	return s
}

// Inbox returns the send side of the session-event queue. Every
// session's Events channel is fanned into this one by the caller.
func (s *Sequencer) Inbox() chan<- session.Event {
	return s.inbox
}

// RecordTransfer is passed as a transfer.StatusFunc: it hands the
// observed transition back to the sequencer goroutine for WAL
// persistence, preserving single-writer WAL semantics even though the
// transfer manager runs on its own goroutine.
func (s *Sequencer) RecordTransfer(req domain.TransferRequest, res domain.TransferResult) {
	select {
	case s.transferInbox <- transferRecord{req: req, res: res}:
	default:
		slog.Warn("transfer record queue full, dropping", slog.String("request_id", req.RequestID))
	}
}

// MarketState exposes the market-state store for read-only observers
// (status endpoints, dashboards).
func (s *Sequencer) MarketState() *marketstate.Store { return s.state }

// PremiumMatrix returns the current premium matrix.
func (s *Sequencer) PremiumMatrix() domain.PremiumMatrix { return s.prem.Matrix() }

// Stats returns a snapshot of the executor's lifetime dispatch stats.
func (s *Sequencer) Stats() executor.Snapshot { return s.exec.Stats.Snapshot() }

// RecoverFromWAL restores market state by replaying every event from
// seq 1. Same code path as live processing minus the WAL re-write.
func (s *Sequencer) RecoverFromWAL(ctx context.Context) error {
	if s.store == nil {
		slog.Info("no store configured, starting fresh")
		return nil
	}

	lastSeq, err := s.store.GetLastSeq(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last seq: %w", err)
	}
	if lastSeq == 0 {
		slog.Info("WAL is empty, starting fresh")
		return nil
	}

	events, err := s.store.LoadEvents(ctx, 1)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	slog.Info("replaying events from WAL", slog.Int("count", len(events)))
	for _, ev := range events {
		s.replayEvent(ev)
	}

	slog.Info("state recovered from WAL", slog.Uint64("next_seq", s.nextSeq))
	return nil
}

// ReplayEvent feeds a single previously-persisted event into market
// state and the premium engine without touching the WAL, for offline
// backtest replay against a sequencer built with store == nil.
func (s *Sequencer) ReplayEvent(ev event.Event) {
	s.replayEvent(ev)
}

func (s *Sequencer) replayEvent(ev event.Event) {
	switch e := ev.(type) {
	case event.TickerEvent:
		s.state.SetTicker(e.Ticker)
		s.prem.UpdatePrice(e.Ticker.Venue, s.referencePrice(e.Ticker))
	case event.OrderBookEvent:
		s.state.SetBook(e.Book)
	case event.OrderUpdateEvent, event.TransferEvent:
		// audit records only; nothing to replay into live state
	default:
		slog.Warn("unknown event type in replay", slog.Any("type", ev.GetType()))
	}
	if ev.GetSeq() >= s.nextSeq {
		s.nextSeq = ev.GetSeq() + 1
	}
}

// ValidateSequence checks for gaps against the sequencer's own
// assignment counter, tolerating small skips for availability.
func (s *Sequencer) ValidateSequence(evSeq uint64) {
	expected := s.nextSeq
	if evSeq == expected {
		return
	}
	diff := int64(evSeq) - int64(expected)
	if diff < 0 {
		slog.Warn("sequence duplicate ignored", slog.Uint64("expected", expected), slog.Uint64("got", evSeq))
		return
	}
	if diff <= 10 {
		slog.Warn("sequence gap tolerated",
			slog.Uint64("expected", expected), slog.Uint64("got", evSeq), slog.Int64("gap", diff))
		s.nextSeq = evSeq
		return
	}
	panic(fmt.Sprintf("SEQUENCE_GAP_FATAL: expected %d, got %d", expected, evSeq))
}

// Run drains the inbox until ctx is cancelled. Must run in exactly one
// goroutine: every ticker and book write to marketstate and every WAL
// write happens here.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("sequencer started")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("critical panic detected", slog.Any("panic", r))
			s.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sequencer stopping")
			return
		case ev := <-s.inbox:
			s.processSessionEvent(ev)
		case tr := <-s.tradeDone:
			s.persistTradeResult(tr)
		case rec := <-s.transferInbox:
			s.persistTransfer(rec)
		}
	}
}

func (s *Sequencer) processSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventTicker:
		s.handleTicker(ev.Ticker)
	case session.EventOrderBook:
		s.handleOrderBook(ev.Book)
	case session.EventTrade:
		// liquidity/momentum signal only; domain.Trade is not persisted.
	case session.EventConnected:
		slog.Info("venue connected", slog.String("venue", ev.Venue.String()))
	case session.EventDisconnected:
		slog.Warn("venue disconnected", slog.String("venue", ev.Venue.String()), slog.Any("err", ev.Err))
	case session.EventError:
		slog.Warn("session error", slog.String("venue", ev.Venue.String()), slog.Any("err", ev.Err))
	}
}

func (s *Sequencer) handleTicker(t domain.Ticker) {
	s.state.SetTicker(t)
	s.prem.UpdatePrice(t.Venue, s.referencePrice(t))

	if s.store != nil {
		seq := s.nextSeq
		s.nextSeq++
		ev := event.TickerEvent{
			BaseEvent: event.BaseEvent{Seq: seq, Ts: t.TimestampU},
			Ticker:    t,
		}
		if err := s.store.SaveEvent(context.Background(), ev); err != nil {
			panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
		}
	}
}

func (s *Sequencer) handleOrderBook(b domain.OrderBook) {
	s.state.SetBook(b)

	if s.store != nil {
		seq := s.nextSeq
		s.nextSeq++
		ev := event.OrderBookEvent{
			BaseEvent: event.BaseEvent{Seq: seq, Ts: b.TimestampU},
			Book:      b,
		}
		if err := s.store.SaveEvent(context.Background(), ev); err != nil {
			panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
		}
	}
}

// referencePrice picks the price the premium engine compares across
// venues: mid price when the book side is known, falling back to last
// trade price when the ticker has no usable bid/ask yet.
func (s *Sequencer) referencePrice(t domain.Ticker) float64 {
	if mid := t.MidPrice(); mid > 0 {
		return mid
	}
	return t.LastPrice
}

// UpdateFx feeds a freshly polled FX rate into market state and the
// premium engine. Callers (the FX poller) must not call this
// concurrently with itself; the sequencer goroutine does not own this
// call, so the FX source's own single poller goroutine is the sole
// writer, matching the cadence the fx package already serializes.
func (s *Sequencer) UpdateFx(rate domain.FxRate) {
	s.state.SetFxRate(rate)
	s.prem.UpdateFx(rate.Rate)
}

// onAlert is premium.Engine's callback, invoked synchronously inside
// Engine.recompute. It must not block: it only checks the in-flight
// guard and, if clear, launches the actual planning/execution work on
// its own goroutine.
func (s *Sequencer) onAlert(opp domain.Opportunity) {
	if s.opportunityHook != nil {
		go s.opportunityHook(opp)
	}
	if s.exec == nil {
		return
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.inFlight.Store(false)
		s.executeOpportunity(opp)
	}()
}

func (s *Sequencer) executeOpportunity(opp domain.Opportunity) {
	buyBook, haveBuy := s.state.Book(opp.Buy)
	sellBook, haveSell := s.state.Book(opp.Sell)
	if !haveBuy || !haveSell {
		return
	}
	fx := s.state.FxRate()

	qty := s.cfg.MaxOrderQty
	if qty <= 0 {
		qty = s.cfg.MinOrderQty
	}
	if qty <= 0 {
		return
	}

	plan := liquidity.Plan(opp.Buy, opp.Sell, buyBook, sellBook, qty, fx, s.cfg.Planner)
	if plan.NetPremiumPct < liquidity.BreakevenPremiumPct(opp.Buy, opp.Sell) {
		return
	}

	buySymbol := s.cfg.VenueSymbols[opp.Buy]
	sellSymbol := s.cfg.VenueSymbols[opp.Sell]

	req := domain.DualOrderRequest{
		RequestID:       fmt.Sprintf("%s-%s-%d", opp.Buy, opp.Sell, time.Now().UnixNano()),
		Buy:             domain.OrderRequest{Venue: opp.Buy, Symbol: buySymbol, Side: domain.Buy, Type: domain.Limit, Quantity: plan.Quantity, LimitPrice: plan.MakerPrice},
		Sell:            domain.OrderRequest{Venue: opp.Sell, Symbol: sellSymbol, Side: domain.Sell, Type: domain.Market, Quantity: plan.Quantity},
		ExpectedPremium: plan.NetPremiumPct,
	}
	if !req.Valid() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), executor.DefaultLegTimeout+5*time.Second)
	defer cancel()

	result, outcome, recoveryPlan, err := s.exec.Execute(ctx, req)
	if err != nil {
		slog.Warn("dual-order dispatch rejected", slog.String("request_id", req.RequestID), slog.Any("err", err))
		return
	}

	select {
	case s.tradeDone <- tradeResult{req: req, result: result, outcome: outcome, plan: recoveryPlan}:
	default:
		slog.Warn("trade result queue full, dropping audit record", slog.String("request_id", req.RequestID))
	}
}

func (s *Sequencer) persistTradeResult(tr tradeResult) {
	slog.Info("dual-order dispatched",
		slog.String("request_id", tr.req.RequestID),
		slog.String("outcome", tr.outcome.String()),
		slog.Float64("expected_premium_pct", tr.req.ExpectedPremium),
		slog.Float64("actual_premium_pct", tr.result.ActualPremium))

	s.writeLegEvent(tr.req.RequestID, tr.req.Buy.Venue, "buy_leg", tr.result.BuyLeg)
	s.writeLegEvent(tr.req.RequestID, tr.req.Sell.Venue, "sell_leg", tr.result.SellLeg)

	if tr.plan != nil && tr.plan.Action != domain.RecoveryNone {
		slog.Warn("recovery plan executed",
			slog.String("request_id", tr.req.RequestID),
			slog.String("action", tr.plan.Action.String()),
			slog.String("reason", tr.plan.Reason))
	}

	if s.tradeAuditHook != nil {
		s.tradeAuditHook(tr.req, tr.result, tr.outcome, tr.plan)
	}
}

func (s *Sequencer) writeLegEvent(requestID string, venue domain.Venue, role string, leg domain.LegOutcome) {
	if s.store == nil {
		return
	}
	errMsg := ""
	if leg.Err != nil {
		errMsg = leg.Err.Error()
	}
	seq := s.nextSeq
	s.nextSeq++
	ev := event.OrderUpdateEvent{
		BaseEvent: event.BaseEvent{Seq: seq, Ts: quant.TimeStamp(leg.EndedAt.UnixMicro())},
		RequestID: requestID,
		Venue:     venue,
		Role:      role,
		OrderID:   leg.Result.VenueOrderID,
		Status:    leg.Result.Status,
		FilledQty: leg.Result.FilledQty,
		AvgPrice:  leg.Result.AvgPrice,
		Err:       errMsg,
	}
	if err := s.store.SaveEvent(context.Background(), ev); err != nil {
		panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
	}
}

func (s *Sequencer) persistTransfer(rec transferRecord) {
	slog.Info("transfer status",
		slog.String("request_id", rec.req.RequestID),
		slog.String("status", rec.res.Status.String()))

	if s.store == nil {
		return
	}
	seq := s.nextSeq
	s.nextSeq++
	ev := event.TransferEvent{
		BaseEvent:   event.BaseEvent{Seq: seq, Ts: quant.TimeStamp(time.Now().UnixMicro())},
		RequestID:   rec.req.RequestID,
		Source:      rec.req.Source,
		Destination: rec.req.Destination,
		Status:      rec.res.Status,
		TxHash:      rec.res.TxHash,
	}
	if err := s.store.SaveEvent(context.Background(), ev); err != nil {
		panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
	}
}

// DumpState writes a post-mortem snapshot of market state and the
// premium matrix to filename.
func (s *Sequencer) DumpState(filename string) {
	slog.Info("dumping internal state", slog.String("file", filename))

	tickers, books, fx := s.state.Snapshot()
	data := struct {
		NextSeq uint64                   `json:"next_seq"`
		Tickers [4]domain.Ticker         `json:"tickers"`
		Books   [4]domain.OrderBook      `json:"books"`
		FxRate  domain.FxRate            `json:"fx_rate"`
		Matrix  domain.PremiumMatrix     `json:"premium_matrix"`
	}{
		NextSeq: s.nextSeq,
		Tickers: tickers,
		Books:   books,
		FxRate:  fx,
		Matrix:  s.prem.Matrix(),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("failed to marshal state", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("failed to write state dump", slog.Any("error", err))
	}
}
