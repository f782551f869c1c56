package wire

import (
	"encoding/json"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/pkg/quant"
)

// upbitEnvelope covers both Upbit's ticker and orderbook message shapes
// (the fields each type doesn't use are simply absent/zero).
type upbitEnvelope struct {
	Type      string              `json:"type"`
	Code      string              `json:"code"`
	Price     float64             `json:"trade_price"`
	Bid       float64             `json:"bid_price"`
	Ask       float64             `json:"ask_price"`
	Volume24h float64             `json:"acc_trade_volume_24h"`
	Timestamp int64               `json:"timestamp"` // ms since epoch
	Units     []upbitOrderbookRow `json:"orderbook_units"`
}

type upbitOrderbookRow struct {
	AskPrice float64 `json:"ask_price"`
	AskSize  float64 `json:"ask_size"`
	BidPrice float64 `json:"bid_price"`
	BidSize  float64 `json:"bid_size"`
}

// DecodeUpbit parses a single Upbit WebSocket frame into a Record.
func DecodeUpbit(frame []byte) (Record, error) {
	var env upbitEnvelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Record{}, parseError("upbit: malformed frame", err)
	}
	if env.Type == "" {
		return Record{}, parseError("upbit: missing type field", nil)
	}
	symbol := normalizeKRWSymbol(env.Code)
	ts := quant.TimeStamp(env.Timestamp * 1000)

	switch env.Type {
	case "ticker":
		t := domain.NewTicker(domain.Upbit, symbol, env.Price, env.Bid, env.Ask, env.Volume24h, ts)
		return Record{Kind: KindTicker, Ticker: t}, nil
	case "orderbook":
		var ob domain.OrderBook
		ob.Venue = domain.Upbit
		ob.SetSymbol(symbol)
		ob.TimestampU = ts
		for i, u := range env.Units {
			if i >= domain.MaxBookLevels {
				break
			}
			ob.Asks[i] = domain.PriceLevel{Price: u.AskPrice, Quantity: u.AskSize}
			ob.Bids[i] = domain.PriceLevel{Price: u.BidPrice, Quantity: u.BidSize}
		}
		n := len(env.Units)
		if n > domain.MaxBookLevels {
			n = domain.MaxBookLevels
		}
		ob.AskCount, ob.BidCount = n, n
		return Record{Kind: KindOrderBook, Book: ob}, nil
	default:
		return Record{}, parseError("upbit: unhandled message type "+env.Type, nil)
	}
}
