// Command kac runs the cross-venue arbitrage engine: it wires together
// the four venue sessions, the sequencer, the executor, the transfer
// manager, and the optional observability sinks, then blocks until
// SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/s2ungeda/kac/internal/audit"
	"github.com/s2ungeda/kac/internal/config"
	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/engine"
	"github.com/s2ungeda/kac/internal/event"
	"github.com/s2ungeda/kac/internal/executor"
	"github.com/s2ungeda/kac/internal/fx"
	"github.com/s2ungeda/kac/internal/infra"
	"github.com/s2ungeda/kac/internal/liquidity"
	"github.com/s2ungeda/kac/internal/logging"
	"github.com/s2ungeda/kac/internal/recovery"
	"github.com/s2ungeda/kac/internal/session"
	"github.com/s2ungeda/kac/internal/sink"
	"github.com/s2ungeda/kac/internal/storage"
	"github.com/s2ungeda/kac/internal/transfer"
	"github.com/s2ungeda/kac/internal/venueclient"
	"github.com/s2ungeda/kac/pkg/ratelimiter"
)

func main() {
	configPath := flag.String("config", infra.ResolveConfigPath(), "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logging.New(cfg)
	infra.PrintBanner(cfg)
	event.Warmup()

	workDir := infra.GetWorkspaceDir()
	if err := infra.EnsureDir(workDir); err != nil {
		slog.Error("create workspace dir", slog.Any("err", err))
		os.Exit(1)
	}

	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		slog.Error("acquire instance lock", slog.Any("err", err))
		os.Exit(1)
	}
	defer unlock()

	store, err := storage.NewEventStore(filepath.Join(workDir, "events.db"))
	if err != nil {
		slog.Error("open event store", slog.Any("err", err))
		os.Exit(1)
	}
	defer store.Close()

	clients, transferClients := buildVenueClients(cfg)

	exec := executor.New(clients)
	exec.AutoRecovery = true
	exec.Recoverer = &recovery.Executor{Placer: executor.RouterPlacer{Clients: clients}}

	seqCfg := engine.Config{
		ThresholdPct: cfg.Strategy.MinPremiumPct,
		MinOrderQty:  cfg.Strategy.MinOrderQty,
		MaxOrderQty:  cfg.Strategy.MaxOrderQty,
		Liquidity: liquidity.DefaultParams(),
		Planner: liquidity.PlannerParams{
			TargetFillProb: 0.8,
			Maker:          liquidity.MakerParams{FillTimePerLevel: 0.5, MaxWaitSec: 5},
		},
		VenueSymbols: venueSymbols(cfg),
	}
	sequencer := engine.NewSequencer(1024, store, exec, seqCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sinks := wireSinks(cfg, sequencer)
	defer sinks.Close()
	go sinks.samplePrices(ctx, sequencer)

	// transferMgr is armed here so every withdraw it is later asked to
	// run (a manual rebalance operation, not wired to any automatic
	// trigger) reports through the same WAL/sink path as everything else.
	transferMgr := transfer.New(transferClients)
	transferMgr.OnStatus = func(req domain.TransferRequest, res domain.TransferResult) {
		sequencer.RecordTransfer(req, res)
		sinks.PublishTransfer(req, res)
		sinks.RecordTransferAudit(req, res)
	}

	if err := sequencer.RecoverFromWAL(ctx); err != nil {
		slog.Error("recover from WAL", slog.Any("err", err))
		os.Exit(1)
	}
	go sequencer.Run(ctx)

	fxSource := fx.New(cfg.Fx.URL, time.Duration(cfg.Fx.PollIntervalSec)*time.Second, sequencer.UpdateFx)
	if err := fxSource.Start(ctx); err != nil {
		slog.Error("start fx source", slog.Any("err", err))
	}
	defer fxSource.Stop()

	sessions := startSessions(ctx, cfg, sequencer)
	defer func() {
		for _, s := range sessions {
			s.Stop()
		}
	}()

	slog.Info("kac engine running", slog.Int("venues", len(sessions)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutdown signal received")
}

// buildVenueClients constructs one client per enabled venue, each
// wrapped in a circuit breaker so repeated failures against one venue
// pause further dispatch to it without affecting the other three.
func buildVenueClients(cfg *config.Config) (map[domain.Venue]executor.Client, map[domain.Venue]transfer.VenueClient) {
	clients := make(map[domain.Venue]executor.Client)
	transferClients := make(map[domain.Venue]transfer.VenueClient)

	register := func(venue domain.Venue, v config.VenueConfig, build func(limiter *ratelimiter.Limiter) interface {
		executor.Client
		transfer.VenueClient
	}) {
		if !v.Enabled {
			return
		}
		limiter := ratelimiter.New(float64(v.RateLimit.RequestsPerSecond), v.RateLimit.Burst)
		client := build(limiter)
		clients[venue] = executor.NewBreakerClient(venue, client)
		transferClients[venue] = client
	}

	register(domain.Upbit, cfg.Venues.Upbit, func(l *ratelimiter.Limiter) interface {
		executor.Client
		transfer.VenueClient
	} {
		return venueclient.NewUpbitClient(cfg.Venues.Upbit.RestURL, cfg.Venues.Upbit.AccessKey, cfg.Venues.Upbit.SecretKey, l)
	})
	register(domain.Bithumb, cfg.Venues.Bithumb, func(l *ratelimiter.Limiter) interface {
		executor.Client
		transfer.VenueClient
	} {
		return venueclient.NewBithumbClient(cfg.Venues.Bithumb.RestURL, cfg.Venues.Bithumb.AccessKey, cfg.Venues.Bithumb.SecretKey, l)
	})
	register(domain.Binance, cfg.Venues.Binance, func(l *ratelimiter.Limiter) interface {
		executor.Client
		transfer.VenueClient
	} {
		return venueclient.NewBinanceClient(cfg.Venues.Binance.RestURL, cfg.Venues.Binance.AccessKey, cfg.Venues.Binance.SecretKey, l)
	})
	register(domain.Mexc, cfg.Venues.Mexc, func(l *ratelimiter.Limiter) interface {
		executor.Client
		transfer.VenueClient
	} {
		return venueclient.NewMexcClient(cfg.Venues.Mexc.RestURL, cfg.Venues.Mexc.AccessKey, cfg.Venues.Mexc.SecretKey, l)
	})

	return clients, transferClients
}

// venueSymbols builds the [4]string array the sequencer uses to name
// each venue's native symbol when constructing an OrderRequest.
func venueSymbols(cfg *config.Config) [4]string {
	var out [4]string
	for _, v := range domain.Venues {
		out[v] = cfg.Symbols.VenueSymbols[v.String()]
	}
	return out
}

// startSessions opens one WebSocket session per enabled venue and fans
// its events into the sequencer's inbox.
func startSessions(ctx context.Context, cfg *config.Config, seq *engine.Sequencer) []*session.Session {
	var sessions []*session.Session

	fan := func(s *session.Session) {
		sessions = append(sessions, s)
		s.Start(ctx)
		go func() {
			for ev := range s.Events {
				seq.Inbox() <- ev
			}
		}()
	}

	if v := cfg.Venues.Upbit; v.Enabled {
		sub := session.Subscription{Tickers: v.Symbols, OrderBooks: v.Symbols}
		scfg, err := session.UpbitConfig(v.WSURL, "kac-upbit", sub)
		if err != nil {
			slog.Error("build upbit session config", slog.Any("err", err))
		} else {
			fan(session.New(scfg))
		}
	}
	if v := cfg.Venues.Bithumb; v.Enabled {
		sub := session.Subscription{Tickers: v.Symbols, OrderBooks: v.Symbols}
		scfg, err := session.BithumbConfig(v.WSURL, sub)
		if err != nil {
			slog.Error("build bithumb session config", slog.Any("err", err))
		} else {
			fan(session.New(scfg))
		}
	}
	if v := cfg.Venues.Binance; v.Enabled {
		sub := session.Subscription{Tickers: v.Symbols, OrderBooks: v.Symbols}
		fan(session.New(session.BinanceConfig(v.WSURL, sub)))
	}
	if v := cfg.Venues.Mexc; v.Enabled {
		sub := session.Subscription{OrderBooks: v.Symbols}
		fan(session.New(session.MexcConfig(v.WSURL, sub)))
	}

	return sessions
}

// observerSinks bundles the optional, non-hot-path observers wired up
// from environment variables: none of these gate startup if absent.
type observerSinks struct {
	prices       *sink.PriceSink
	premiums     *sink.PremiumAlertSink
	publisher    *sink.Publisher
	auditRepo    *audit.Repo
	snapshotPath string
}

func wireSinks(cfg *config.Config, seq *engine.Sequencer) *observerSinks {
	obs := &observerSinks{}

	if path := os.Getenv("KAC_PRICE_CSV"); path != "" {
		if w, err := sink.NewPriceSink(path); err != nil {
			slog.Warn("open price csv sink", slog.Any("err", err))
		} else {
			obs.prices = w
		}
	}
	if path := os.Getenv("KAC_PREMIUM_CSV"); path != "" {
		if w, err := sink.NewPremiumAlertSink(path); err != nil {
			slog.Warn("open premium csv sink", slog.Any("err", err))
		} else {
			obs.premiums = w
		}
	}
	if addr := os.Getenv("KAC_REDIS_ADDR"); addr != "" {
		obs.publisher = sink.NewPublisher(addr, os.Getenv("KAC_REDIS_PASSWORD"), 0)
	}
	if dsn := os.Getenv("KAC_POSTGRES_DSN"); dsn != "" {
		repo, err := audit.New(dsn)
		if err != nil {
			slog.Warn("open postgres audit log", slog.Any("err", err))
		} else {
			obs.auditRepo = repo
		}
	}
	obs.snapshotPath = os.Getenv("KAC_SNAPSHOT_DIR")

	seq.SetOpportunityHook(func(opp domain.Opportunity) {
		if obs.premiums != nil {
			state := seq.MarketState()
			_, _, rate := state.Snapshot()
			buyTicker, _ := state.Ticker(opp.Buy)
			sellTicker, _ := state.Ticker(opp.Sell)
			_ = obs.premiums.Write(sink.PremiumAlertRecord{
				Timestamp:  time.Now(),
				BuyVenue:   opp.Buy,
				SellVenue:  opp.Sell,
				PremiumPct: opp.PremiumPct,
				BuyKRW:     buyTicker.LastPrice,
				SellKRW:    sellTicker.LastPrice,
				Fx:         rate.Rate,
			})
		}
		if obs.publisher != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := obs.publisher.PublishPremiumCrossing(ctx, opp); err != nil {
				slog.Warn("publish premium crossing", slog.Any("err", err))
			}
		}
	})

	seq.SetTradeAuditHook(func(req domain.DualOrderRequest, res domain.DualOrderResult, outcome executor.Outcome, plan *domain.RecoveryPlan) {
		if obs.auditRepo == nil {
			return
		}
		recoveryAction := ""
		if plan != nil {
			recoveryAction = plan.Action.String()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := obs.auditRepo.RecordTrade(ctx, req, res, outcome.String(), recoveryAction); err != nil {
			slog.Warn("record trade audit", slog.Any("err", err))
		}
	})

	return obs
}

// RecordTransferAudit forwards a completed transfer to the Postgres
// audit log, if one was configured.
func (o *observerSinks) RecordTransferAudit(req domain.TransferRequest, res domain.TransferResult) {
	if o.auditRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := o.auditRepo.RecordTransfer(ctx, req, res); err != nil {
		slog.Warn("record transfer audit", slog.Any("err", err))
	}
}

// samplePrices periodically snapshots market state into the price CSV
// sink and, if KAC_SNAPSHOT_DIR is set, the JSON snapshot files a
// dashboard can poll without subscribing to Redis. Off the hot path:
// this goroutine never touches the sequencer's own channels, only its
// read-only Snapshot.
func (o *observerSinks) samplePrices(ctx context.Context, seq *engine.Sequencer) {
	if o.prices == nil && o.snapshotPath == "" {
		return
	}
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tickers, _, fxRate := seq.MarketState().Snapshot()
			venuePrices := make(map[domain.Venue]float64, len(domain.Venues))
			for _, v := range domain.Venues {
				t := tickers[v]
				if t.LastPrice == 0 {
					continue
				}
				currency := "USDT"
				price := t.LastPrice
				if v.IsKRW() {
					currency = "KRW"
				} else if fxRate.Valid() {
					price = fxRate.ToKRW(t.LastPrice)
					currency = "KRW"
				}
				venuePrices[v] = price
				if o.prices != nil {
					_ = o.prices.Write(sink.PriceRecord{
						Timestamp: time.Now(),
						Venue:     v,
						Symbol:    t.Symbol(),
						Price:     price,
						Currency:  currency,
					})
				}
			}
			if o.snapshotPath != "" {
				if fxRate.Valid() {
					if err := sink.WriteFxSnapshot(filepath.Join(o.snapshotPath, "fx.json"), fxRate); err != nil {
						slog.Warn("write fx snapshot", slog.Any("err", err))
					}
				}
				if err := sink.WriteSummarySnapshot(filepath.Join(o.snapshotPath, "summary.json"), venuePrices, seq.PremiumMatrix()); err != nil {
					slog.Warn("write summary snapshot", slog.Any("err", err))
				}
			}
		}
	}
}

func (o *observerSinks) PublishTransfer(req domain.TransferRequest, res domain.TransferResult) {
	if o.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := o.publisher.PublishTransferStatus(ctx, req, res); err != nil {
		slog.Warn("publish transfer status", slog.Any("err", err))
	}
}

func (o *observerSinks) Close() {
	if o.prices != nil {
		o.prices.Close()
	}
	if o.premiums != nil {
		o.premiums.Close()
	}
	if o.publisher != nil {
		o.publisher.Close()
	}
	if o.auditRepo != nil {
		o.auditRepo.Close()
	}
}
