// Package event defines the sequencer's WAL record types: every record
// persisted via internal/storage and replayed on recovery implements
// Event. Ticker and order-book records mirror the wire-level
// domain.Ticker/domain.OrderBook shapes one-for-one, so persistence adds
// nothing but a sequence number and a type tag; order and transfer
// records are the sequencer's own audit trail of what it did in
// response to them.
package event

import (
	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/pkg/quant"
)

// Type tags which concrete record a stored payload decodes as.
type Type uint16

const (
	EvTicker Type = iota + 1
	EvOrderBook
	EvOrderUpdate
	EvTransferUpdate
)

// Event is the interface for all sequencer WAL records.
type Event interface {
	GetSeq() uint64
	GetTs() quant.TimeStamp
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq uint64          `json:"seq"`
	Ts  quant.TimeStamp `json:"ts"`
}

func (e BaseEvent) GetSeq() uint64         { return e.Seq }
func (e BaseEvent) GetTs() quant.TimeStamp { return e.Ts }

// TickerEvent is the WAL record of one venue ticker update, the
// highest-frequency record on the hot path.
type TickerEvent struct {
	BaseEvent
	Ticker domain.Ticker `json:"ticker"`
}

func (e TickerEvent) GetType() Type { return EvTicker }

// OrderBookEvent is the WAL record of one venue order-book update.
type OrderBookEvent struct {
	BaseEvent
	Book domain.OrderBook `json:"book"`
}

func (e OrderBookEvent) GetType() Type { return EvOrderBook }

// OrderUpdateEvent is the WAL record of a single order leg's outcome:
// one leg of a dual-order, or a recovery corrective order.
type OrderUpdateEvent struct {
	BaseEvent
	RequestID string             `json:"request_id"`
	Venue     domain.Venue       `json:"venue"`
	Role      string             `json:"role"` // "buy_leg", "sell_leg", "recovery"
	OrderID   string             `json:"order_id"`
	Status    domain.OrderStatus `json:"status"`
	FilledQty float64            `json:"filled_qty"`
	AvgPrice  float64            `json:"avg_price"`
	Err       string             `json:"err,omitempty"`
}

func (e OrderUpdateEvent) GetType() Type { return EvOrderUpdate }

// TransferEvent is the WAL record of one observed transfer state
// transition from the transfer manager.
type TransferEvent struct {
	BaseEvent
	RequestID   string                `json:"request_id"`
	Source      domain.Venue          `json:"source"`
	Destination domain.Venue          `json:"destination"`
	Status      domain.TransferStatus `json:"status"`
	TxHash      string                `json:"tx_hash,omitempty"`
}

func (e TransferEvent) GetType() Type { return EvTransferUpdate }
