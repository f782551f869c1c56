package wire

import (
	"encoding/json"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/pkg/quant"
)

// bithumbEnvelope mirrors Bithumb's v2 WebSocket shape, which (after the
// client's KRW- code conversion) matches Upbit's field names for ticker/
// trade frames but carries its own status/error wrapper.
type bithumbEnvelope struct {
	Status        string  `json:"status"`
	Error         string  `json:"error"`
	Type          string  `json:"type"`
	Code          string  `json:"code"`
	TradePrice    float64 `json:"trade_price"`
	TradeVolume   float64 `json:"trade_volume"`
	TradeTimeUs   int64   `json:"trade_timestamp"`
	StreamType    string  `json:"stream_type"`
	OrderbookRows []struct {
		AskPrice float64 `json:"ask_price"`
		AskSize  float64 `json:"ask_size"`
		BidPrice float64 `json:"bid_price"`
		BidSize  float64 `json:"bid_size"`
	} `json:"orderbook_units"`
}

// DecodeBithumb parses a single Bithumb WebSocket frame into a Record.
// Status/error control frames and SNAPSHOT-stream trade frames decode
// to KindNone rather than an error: they're valid, just not a record.
func DecodeBithumb(frame []byte) (Record, error) {
	var env bithumbEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Record{}, parseError("bithumb: malformed frame", err)
	}
	if env.Error != "" {
		return Record{}, parseError("bithumb: venue error: "+env.Error, nil)
	}
	if env.Type == "" {
		return Record{Kind: KindNone}, nil // status/ack frame
	}
	symbol := normalizeKRWSymbol(env.Code)

	switch env.Type {
	case "trade":
		if env.StreamType == "SNAPSHOT" {
			return Record{Kind: KindNone}, nil
		}
		ts := quant.TimeStamp(env.TradeTimeUs * 1000)
		t := domain.NewTrade(domain.Bithumb, symbol, env.TradePrice, env.TradeVolume, false, ts)
		return Record{Kind: KindTrade, Trade: t}, nil
	case "ticker":
		ts := quant.TimeStamp(env.TradeTimeUs * 1000)
		tk := domain.NewTicker(domain.Bithumb, symbol, env.TradePrice, env.TradePrice, env.TradePrice, env.TradeVolume, ts)
		return Record{Kind: KindTicker, Ticker: tk}, nil
	case "orderbook":
		var ob domain.OrderBook
		ob.Venue = domain.Bithumb
		ob.SetSymbol(symbol)
		n := len(env.OrderbookRows)
		if n > domain.MaxBookLevels {
			n = domain.MaxBookLevels
		}
		for i := 0; i < n; i++ {
			row := env.OrderbookRows[i]
			ob.Asks[i] = domain.PriceLevel{Price: row.AskPrice, Quantity: row.AskSize}
			ob.Bids[i] = domain.PriceLevel{Price: row.BidPrice, Quantity: row.BidSize}
		}
		ob.AskCount, ob.BidCount = n, n
		return Record{Kind: KindOrderBook, Book: ob}, nil
	default:
		return Record{}, parseError("bithumb: unhandled message type "+env.Type, nil)
	}
}
