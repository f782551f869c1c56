package session

import (
	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/wire"
)

// EventKind tags which field of an Event is populated.
type EventKind uint8

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventError
	EventTicker
	EventOrderBook
	EventTrade
)

// Event is the normalized output of a session: a connection lifecycle
// transition or a decoded market-data record.
type Event struct {
	Kind   EventKind
	Venue  domain.Venue
	Err    error
	Ticker domain.Ticker
	Book   domain.OrderBook
	Trade  domain.Trade
}

func recordEvent(venue domain.Venue, rec wire.Record) (Event, bool) {
	switch rec.Kind {
	case wire.KindTicker:
		return Event{Kind: EventTicker, Venue: venue, Ticker: rec.Ticker}, true
	case wire.KindOrderBook:
		return Event{Kind: EventOrderBook, Venue: venue, Book: rec.Book}, true
	case wire.KindTrade:
		return Event{Kind: EventTrade, Venue: venue, Trade: rec.Trade}, true
	default:
		return Event{}, false
	}
}
