package domain

import (
	"encoding/json"

	"github.com/s2ungeda/kac/pkg/quant"
)

// symbolInlineLen is the fixed inline symbol capacity on Ticker, chosen
// so the record stays within one 64-byte cache line alongside its other
// fields.
const symbolInlineLen = 16

// Ticker is the cache-aligned, zero-allocation market data record
// produced by the wire codec and consumed by the market-state
// store and premium engine. Hot-path fields are float64, not
// the fixed-point quant types used by ledger/accounting domain objects:
// market data compares and combines across venues at sub-basis-point
// tolerance, where fixed-point scaling would need a wider type anyway.
type Ticker struct {
	Venue      Venue
	symbol     [symbolInlineLen]byte
	symbolLen  uint8
	LastPrice  float64
	BestBid    float64
	BestAsk    float64
	Volume24h  float64
	TimestampU quant.TimeStamp // microsecond event timestamp
}

// NewTicker builds a Ticker, inlining symbol into the fixed-size array.
// symbol longer than symbolInlineLen is truncated.
func NewTicker(venue Venue, symbol string, last, bid, ask, volume float64, ts quant.TimeStamp) Ticker {
	t := Ticker{Venue: venue, LastPrice: last, BestBid: bid, BestAsk: ask, Volume24h: volume, TimestampU: ts}
	t.SetSymbol(symbol)
	return t
}

// SetSymbol copies symbol into the inline buffer, truncating if needed.
func (t *Ticker) SetSymbol(symbol string) {
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
func (t Ticker) Symbol() string {
	return string(t.symbol[:t.symbolLen])
}

// tickerWire is Ticker's JSON wire shape: the inline symbol buffer is
// unexported and invisible to encoding/json, so marshaling goes through
// this exported mirror instead.
type tickerWire struct {
	Venue      Venue
	Symbol     string
	LastPrice  float64
	BestBid    float64
	BestAsk    float64
	Volume24h  float64
	TimestampU quant.TimeStamp
}

// MarshalJSON exports the inline symbol buffer as a plain string field.
func (t Ticker) MarshalJSON() ([]byte, error) {
	return json.Marshal(tickerWire{
		Venue:      t.Venue,
		Symbol:     t.Symbol(),
		LastPrice:  t.LastPrice,
		BestBid:    t.BestBid,
		BestAsk:    t.BestAsk,
		Volume24h:  t.Volume24h,
		TimestampU: t.TimestampU,
	})
}

// UnmarshalJSON restores the inline symbol buffer from the wire shape.
func (t *Ticker) UnmarshalJSON(data []byte) error {
	var w tickerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Ticker{
		Venue:      w.Venue,
		LastPrice:  w.LastPrice,
		BestBid:    w.BestBid,
		BestAsk:    w.BestAsk,
		Volume24h:  w.Volume24h,
		TimestampU: w.TimestampU,
	}
	t.SetSymbol(w.Symbol)
	return nil
}

// MidPrice returns (bid+ask)/2, or 0 if either side is missing.
func (t Ticker) MidPrice() float64 {
	if t.BestBid <= 0 || t.BestAsk <= 0 {
		return 0
	}
	return (t.BestBid + t.BestAsk) / 2
}

// Spread returns ask-bid.
func (t Ticker) Spread() float64 {
	return t.BestAsk - t.BestBid
}

// SpreadPct returns the spread as a percentage of mid price, or 0 if
// mid price is unavailable.
func (t Ticker) SpreadPct() float64 {
	mid := t.MidPrice()
	if mid == 0 {
		return 0
	}
	return t.Spread() / mid * 100
}
