package domain

import (
	"encoding/json"

	"github.com/s2ungeda/kac/pkg/quant"
)

// Trade is a single executed trade print normalized from a venue's wire
// feed: a liquidity/momentum signal, not persisted.
type Trade struct {
	Venue      Venue
	symbol     [symbolInlineLen]byte
	symbolLen  uint8
	Price      float64
	Quantity   float64
	IsBuyTaker bool
	TimestampU quant.TimeStamp
}

// NewTrade builds a Trade, inlining symbol into the fixed-size array.
func NewTrade(venue Venue, symbol string, price, qty float64, isBuyTaker bool, ts quant.TimeStamp) Trade {
	t := Trade{Venue: venue, Price: price, Quantity: qty, IsBuyTaker: isBuyTaker, TimestampU: ts}
	t.SetSymbol(symbol)
	return t
}

// SetSymbol copies symbol into the inline buffer, truncating if needed.
func (t *Trade) SetSymbol(symbol string) {
	n := len(symbol)
	if n > symbolInlineLen {
		n = symbolInlineLen
	}
	copy(t.symbol[:], symbol[:n])
	for i := n; i < symbolInlineLen; i++ {
		t.symbol[i] = 0
	}
	t.symbolLen = uint8(n)
}

// Symbol returns the inline symbol as a string.
func (t Trade) Symbol() string {
	return string(t.symbol[:t.symbolLen])
}

// tradeWire is Trade's JSON wire shape: the inline symbol buffer is
// unexported and invisible to encoding/json, so marshaling goes through
// this exported mirror instead.
type tradeWire struct {
	Venue      Venue
	Symbol     string
	Price      float64
	Quantity   float64
	IsBuyTaker bool
	TimestampU quant.TimeStamp
}

// MarshalJSON exports the inline symbol buffer as a plain string field.
func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(tradeWire{
		Venue:      t.Venue,
		Symbol:     t.Symbol(),
		Price:      t.Price,
		Quantity:   t.Quantity,
		IsBuyTaker: t.IsBuyTaker,
		TimestampU: t.TimestampU,
	})
}

// UnmarshalJSON restores the inline symbol buffer from the wire shape.
func (t *Trade) UnmarshalJSON(data []byte) error {
	var w tradeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Trade{
		Venue:      w.Venue,
		Price:      w.Price,
		Quantity:   w.Quantity,
		IsBuyTaker: w.IsBuyTaker,
		TimestampU: w.TimestampU,
	}
	t.SetSymbol(w.Symbol)
	return nil
}
