package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/s2ungeda/kac/internal/domain"
)

const (
	// PremiumChannel carries premium-crossing opportunities.
	PremiumChannel = "kac:premium"
	// TransferChannel carries transfer status transitions.
	TransferChannel = "kac:transfer"
)

// premiumMessage is the JSON payload published on PremiumChannel.
type premiumMessage struct {
	Buy        string    `json:"buy_venue"`
	Sell       string    `json:"sell_venue"`
	PremiumPct float64   `json:"premium_pct"`
	At         time.Time `json:"at"`
}

// transferMessage is the JSON payload published on TransferChannel.
type transferMessage struct {
	RequestID string    `json:"request_id"`
	Source    string    `json:"source"`
	Destination string  `json:"destination"`
	Status    string    `json:"status"`
	TxHash    string    `json:"tx_hash,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher fans premium-crossing events and transfer-status
// transitions out to Redis channels, so an external dashboard or
// alerting process can subscribe without coupling to the core. It is
// optional: a nil *Publisher's methods are no-ops.
type Publisher struct {
	client *redis.Client
}

// NewPublisher opens a Redis client for addr/password/db. It does not
// eagerly connect; the first Publish call establishes the connection.
func NewPublisher(addr, password string, db int) *Publisher {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Publisher{client: client}
}

func buildPremiumMessage(opp domain.Opportunity) premiumMessage {
	return premiumMessage{
		Buy:        opp.Buy.String(),
		Sell:       opp.Sell.String(),
		PremiumPct: opp.PremiumPct,
		At:         time.Now(),
	}
}

func buildTransferMessage(req domain.TransferRequest, result domain.TransferResult) transferMessage {
	return transferMessage{
		RequestID:   req.RequestID,
		Source:      req.Source.String(),
		Destination: req.Destination.String(),
		Status:      result.Status.String(),
		TxHash:      result.TxHash,
		At:          time.Now(),
	}
}

// PublishPremiumCrossing announces one premium-matrix opportunity.
func (p *Publisher) PublishPremiumCrossing(ctx context.Context, opp domain.Opportunity) error {
	if p == nil || p.client == nil {
		return nil
	}
	payload, err := json.Marshal(buildPremiumMessage(opp))
	if err != nil {
		return fmt.Errorf("marshal premium message: %w", err)
	}
	return p.client.Publish(ctx, PremiumChannel, payload).Err()
}

// PublishTransferStatus announces one transfer-status transition.
func (p *Publisher) PublishTransferStatus(ctx context.Context, req domain.TransferRequest, result domain.TransferResult) error {
	if p == nil || p.client == nil {
		return nil
	}
	payload, err := json.Marshal(buildTransferMessage(req, result))
	if err != nil {
		return fmt.Errorf("marshal transfer message: %w", err)
	}
	return p.client.Publish(ctx, TransferChannel, payload).Err()
}

// Close releases the underlying Redis connection pool.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
