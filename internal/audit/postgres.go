// Package audit persists dual-order and transfer outcomes to Postgres,
// an optional durable backend alongside the SQLite WAL for deployments
// that run more than one instance against a shared audit trail.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/s2ungeda/kac/internal/domain"
)

// Repo is a Postgres-backed audit log for dual-order and transfer
// outcomes. A nil *Repo is a valid no-op so callers don't need to guard
// every call site on whether one was configured.
type Repo struct {
	db *sql.DB
}

// New opens a connection pool at dsn and ensures the audit tables
// exist.
func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS trade_audit (
  id BIGSERIAL PRIMARY KEY,
  request_id TEXT NOT NULL,
  buy_venue SMALLINT NOT NULL,
  sell_venue SMALLINT NOT NULL,
  expected_premium_pct DOUBLE PRECISION NOT NULL,
  actual_premium_pct DOUBLE PRECISION NOT NULL,
  outcome TEXT NOT NULL,
  recovery_action TEXT NOT NULL DEFAULT '',
  payload JSONB NOT NULL,
  recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trade_audit_request ON trade_audit(request_id);

CREATE TABLE IF NOT EXISTS transfer_audit (
  id BIGSERIAL PRIMARY KEY,
  request_id TEXT NOT NULL,
  source_venue SMALLINT NOT NULL,
  destination_venue SMALLINT NOT NULL,
  coin TEXT NOT NULL,
  amount DOUBLE PRECISION NOT NULL,
  status TEXT NOT NULL,
  payload JSONB NOT NULL,
  recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transfer_audit_request ON transfer_audit(request_id);
`)
	return err
}

// Close releases the underlying connection pool. Safe to call on a nil
// *Repo.
func (r *Repo) Close() error {
	if r == nil {
		return nil
	}
	return r.db.Close()
}

// RecordTrade appends a dual-order outcome to the audit log. outcome
// and recoveryAction are pre-rendered strings (executor.Outcome.String,
// domain.RecoveryAction.String) so this package doesn't need to import
// the executor.
func (r *Repo) RecordTrade(ctx context.Context, req domain.DualOrderRequest, res domain.DualOrderResult, outcome, recoveryAction string) error {
	if r == nil {
		return nil
	}
	payload, err := json.Marshal(struct {
		Request domain.DualOrderRequest
		Result  domain.DualOrderResult
	}{req, res})
	if err != nil {
		return fmt.Errorf("marshal trade payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO trade_audit (request_id, buy_venue, sell_venue, expected_premium_pct, actual_premium_pct, outcome, recovery_action, payload, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		req.RequestID, int(req.Buy.Venue), int(req.Sell.Venue), req.ExpectedPremium, res.ActualPremium, outcome, recoveryAction, payload, time.Now())
	if err != nil {
		return fmt.Errorf("insert trade audit row: %w", err)
	}
	return nil
}

// RecordTransfer appends an inter-venue transfer outcome to the audit
// log. A nil *Repo is a no-op.
func (r *Repo) RecordTransfer(ctx context.Context, req domain.TransferRequest, res domain.TransferResult) error {
	if r == nil {
		return nil
	}
	payload, err := json.Marshal(struct {
		Request domain.TransferRequest
		Result  domain.TransferResult
	}{req, res})
	if err != nil {
		return fmt.Errorf("marshal transfer payload: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO transfer_audit (request_id, source_venue, destination_venue, coin, amount, status, payload, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		req.RequestID, int(req.Source), int(req.Destination), req.Coin, req.Amount, res.Status.String(), payload, time.Now())
	if err != nil {
		return fmt.Errorf("insert transfer audit row: %w", err)
	}
	return nil
}
