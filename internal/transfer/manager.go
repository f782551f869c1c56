// Package transfer drives the inter-venue balance rebalancing state
// machine: submit a venue withdraw, poll until terminal, and
// surface every transition to a status callback.
package transfer

import (
	"context"
	"time"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/errkind"
	"github.com/s2ungeda/kac/internal/fees"
)

// DefaultPollInterval is how often the source venue is polled for
// withdraw status while a transfer is in flight.
const DefaultPollInterval = 10 * time.Second

// DefaultTimeout is how long a transfer may stay unresolved before it
// is abandoned as TransferTimeout.
const DefaultTimeout = 30 * time.Minute

// WithdrawStatus is a single poll observation from the source venue.
type WithdrawStatus struct {
	Status domain.TransferStatus
	TxHash string
	Fee    float64
}

// VenueClient is the minimal capability a venue must expose to
// participate in a transfer: submit a withdraw and report its status.
type VenueClient interface {
	// Withdraw submits the withdraw and returns the venue's transfer ID.
	Withdraw(ctx context.Context, req domain.TransferRequest) (venueTransferID string, err error)
	// WithdrawStatus polls the current state of a previously-submitted withdraw.
	WithdrawStatus(ctx context.Context, venueTransferID string) (WithdrawStatus, error)
}

// StatusFunc is invoked on every observed transfer state transition.
type StatusFunc func(domain.TransferRequest, domain.TransferResult)

// Manager runs TransferRequests to completion against per-venue clients.
type Manager struct {
	Clients      map[domain.Venue]VenueClient
	PollInterval time.Duration
	Timeout      time.Duration
	OnStatus     StatusFunc
}

// New builds a Manager with the documented default poll interval and
// timeout; override PollInterval/Timeout on the returned value for
// tests or faster-cadence venues.
func New(clients map[domain.Venue]VenueClient) *Manager {
	return &Manager{
		Clients:      clients,
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
	}
}

func (m *Manager) notify(req domain.TransferRequest, res domain.TransferResult) {
	if m.OnStatus != nil {
		m.OnStatus(req, res)
	}
}

// Initiate validates, submits, and polls a transfer to a terminal
// state. It blocks until the transfer completes, fails, is cancelled,
// or the deadline elapses.
func (m *Manager) Initiate(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	start := time.Now()

	if !req.Valid() {
		return domain.TransferResult{}, errkind.InvalidRequest("invalid transfer request", nil)
	}
	if req.Amount < fees.MinWithdraw(req.Source) {
		return domain.TransferResult{}, errkind.InvalidRequest("amount below venue minimum withdraw", nil)
	}

	client, ok := m.Clients[req.Source]
	if !ok {
		return domain.TransferResult{}, errkind.InvalidRequest("no client registered for source venue", nil)
	}

	pending := domain.TransferResult{Status: domain.TransferPending, Amount: req.Amount}
	m.notify(req, pending)

	venueID, err := client.Withdraw(ctx, req)
	if err != nil {
		result := domain.TransferResult{
			Status:       domain.TransferFailed,
			Amount:       req.Amount,
			ErrorMessage: err.Error(),
			Elapsed:      time.Since(start),
		}
		m.notify(req, result)
		return result, errkind.Exchange("withdraw submission failed", err)
	}

	processing := domain.TransferResult{VenueTransferID: venueID, Status: domain.TransferProcessing, Amount: req.Amount}
	m.notify(req, processing)

	interval := m.PollInterval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	timeout := m.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	deadline := start.Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			result := domain.TransferResult{
				VenueTransferID: venueID,
				Status:          domain.TransferFailed,
				Amount:          req.Amount,
				ErrorMessage:    ctx.Err().Error(),
				Elapsed:         time.Since(start),
			}
			m.notify(req, result)
			return result, errkind.Network("transfer cancelled", ctx.Err())

		case <-ticker.C:
			if time.Now().After(deadline) {
				result := domain.TransferResult{
					VenueTransferID: venueID,
					Status:          domain.TransferTimeout,
					Amount:          req.Amount,
					Elapsed:         time.Since(start),
				}
				m.notify(req, result)
				return result, errkind.Timeout("transfer exceeded deadline", nil)
			}

			status, err := client.WithdrawStatus(ctx, venueID)
			if err != nil {
				// A single poll failure is transient; keep polling until
				// the deadline or a terminal status is observed.
				continue
			}

			result := domain.TransferResult{
				VenueTransferID: venueID,
				TxHash:          status.TxHash,
				Status:          status.Status,
				Amount:          req.Amount,
				Fee:             status.Fee,
				Elapsed:         time.Since(start),
			}
			m.notify(req, result)

			switch status.Status {
			case domain.TransferCompleted, domain.TransferFailed, domain.TransferCancelled:
				return result, nil
			}
		}
	}
}
