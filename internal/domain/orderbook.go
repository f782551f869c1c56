package domain

import (
	"encoding/json"

	"github.com/s2ungeda/kac/pkg/quant"
)

// MaxBookLevels is the fixed per-side depth carried by OrderBook.
const MaxBookLevels = 20

// PriceLevel is one rung of an order book: price and quantity, both
// float64 to match upstream venue precision without fixed-point scaling.
type PriceLevel struct {
	Price    float64
	Quantity float64
}

// OrderBook is a fixed-capacity, cache-friendly order book snapshot: at
// most MaxBookLevels levels per side, bids sorted descending, asks
// sorted ascending. Invariants: BestBid() < BestAsk() when both sides
// are non-empty, and each side's prices are strictly monotone.
type OrderBook struct {
	Venue      Venue
	symbol     [symbolInlineLen]byte
	symbolLen  uint8
	TimestampU quant.TimeStamp
	Bids       [MaxBookLevels]PriceLevel
	Asks       [MaxBookLevels]PriceLevel
	BidCount   int
	AskCount   int
}

// SetSymbol copies symbol into the inline buffer, truncating if needed.
func (b *OrderBook) SetSymbol(symbol string) {
	n := len(symbol)
	if n > symbolInlineLen {
		n = symbolInlineLen
	}
	copy(b.symbol[:], symbol[:n])
	b.symbolLen = uint8(n)
}

// Symbol returns the inline symbol as a string.
func (b OrderBook) Symbol() string {
	return string(b.symbol[:b.symbolLen])
}

// orderBookWire is OrderBook's JSON wire shape: the inline symbol buffer
// is unexported and invisible to encoding/json, so marshaling goes
// through this exported mirror instead.
type orderBookWire struct {
	Venue      Venue
	Symbol     string
	TimestampU quant.TimeStamp
	Bids       [MaxBookLevels]PriceLevel
	Asks       [MaxBookLevels]PriceLevel
	BidCount   int
	AskCount   int
}

// MarshalJSON exports the inline symbol buffer as a plain string field.
func (b OrderBook) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderBookWire{
		Venue:      b.Venue,
		Symbol:     b.Symbol(),
		TimestampU: b.TimestampU,
		Bids:       b.Bids,
		Asks:       b.Asks,
		BidCount:   b.BidCount,
		AskCount:   b.AskCount,
	})
}

// UnmarshalJSON restores the inline symbol buffer from the wire shape.
func (b *OrderBook) UnmarshalJSON(data []byte) error {
	var w orderBookWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*b = OrderBook{
		Venue:      w.Venue,
		TimestampU: w.TimestampU,
		Bids:       w.Bids,
		Asks:       w.Asks,
		BidCount:   w.BidCount,
		AskCount:   w.AskCount,
	}
	b.SetSymbol(w.Symbol)
	return nil
}

// BestBid returns the top bid price, or 0 if the book has no bids.
func (b OrderBook) BestBid() float64 {
	if b.BidCount == 0 {
		return 0
	}
	return b.Bids[0].Price
}

// BestAsk returns the top ask price, or 0 if the book has no asks.
func (b OrderBook) BestAsk() float64 {
	if b.AskCount == 0 {
		return 0
	}
	return b.Asks[0].Price
}

// MidPrice returns (BestBid+BestAsk)/2, or 0 if either side is empty.
func (b OrderBook) MidPrice() float64 {
	bid, ask := b.BestBid(), b.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return (bid + ask) / 2
}

// Valid reports whether the book satisfies its crossing and monotone
// invariants.
func (b OrderBook) Valid() bool {
	if b.BidCount > 0 && b.AskCount > 0 && b.BestBid() >= b.BestAsk() {
		return false
	}
	for i := 1; i < b.BidCount; i++ {
		if b.Bids[i].Price >= b.Bids[i-1].Price {
			return false
		}
	}
	for i := 1; i < b.AskCount; i++ {
		if b.Asks[i].Price <= b.Asks[i-1].Price {
			return false
		}
	}
	return true
}
