package wire

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/pkg/quant"
)

// binanceCombined is the wrapper Binance's combined-stream endpoint
// sends: {"stream": "<symbol>@<channel>", "data": {...}}. A single-
// stream connection sends the inner object directly with an "e" event
// type field instead; DecodeBinance handles both.
type binanceCombined struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type binanceTicker struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
	BestBid   string `json:"b"`
	BestAsk   string `json:"a"`
	Volume    string `json:"v"`
}

type binanceDepth struct {
	Symbol string     `json:"s"`
	Bids   [][]string `json:"bids"`
	Asks   [][]string `json:"asks"`
}

// DecodeBinance parses a single Binance combined-stream or single-stream
// WebSocket frame into a Record.
func DecodeBinance(frame []byte) (Record, error) {
	var outer binanceCombined
	if err := json.Unmarshal(frame, &outer); err != nil {
		return Record{}, parseError("binance: malformed frame", err)
	}

	if outer.Stream != "" && len(outer.Data) > 0 {
		at := strings.IndexByte(outer.Stream, '@')
		symbol := outer.Stream
		if at >= 0 {
			symbol = strings.ToUpper(outer.Stream[:at])
		}
		switch {
		case strings.Contains(outer.Stream, "@ticker"):
			return decodeBinanceTicker(outer.Data, symbol)
		case strings.Contains(outer.Stream, "@depth"):
			return decodeBinanceDepth(outer.Data, symbol)
		default:
			return Record{}, parseError("binance: unhandled stream "+outer.Stream, nil)
		}
	}

	var probe struct {
		EventType string `json:"e"`
	}
	if err := json.Unmarshal(frame, &probe); err != nil {
		return Record{}, parseError("binance: malformed frame", err)
	}
	switch probe.EventType {
	case "24hrTicker":
		return decodeBinanceTicker(frame, "")
	case "depthUpdate":
		return decodeBinanceDepth(frame, "")
	default:
		return Record{}, parseError("binance: unhandled event type "+probe.EventType, nil)
	}
}

func decodeBinanceTicker(data []byte, streamSymbol string) (Record, error) {
	var t binanceTicker
	if err := json.Unmarshal(data, &t); err != nil {
		return Record{}, parseError("binance: malformed ticker payload", err)
	}
	symbol := t.Symbol
	if symbol == "" {
		symbol = streamSymbol
	}
	price, err := strconv.ParseFloat(t.LastPrice, 64)
	if err != nil {
		return Record{}, parseError("binance: bad last price", err)
	}
	bid, _ := strconv.ParseFloat(t.BestBid, 64)
	ask, _ := strconv.ParseFloat(t.BestAsk, 64)
	vol, _ := strconv.ParseFloat(t.Volume, 64)
	ts := quant.TimeStamp(t.EventTime * 1000)
	return Record{Kind: KindTicker, Ticker: domain.NewTicker(domain.Binance, symbol, price, bid, ask, vol, ts)}, nil
}

func decodeBinanceDepth(data []byte, streamSymbol string) (Record, error) {
	var d binanceDepth
	if err := json.Unmarshal(data, &d); err != nil {
		return Record{}, parseError("binance: malformed depth payload", err)
	}
	symbol := d.Symbol
	if symbol == "" {
		symbol = streamSymbol
	}
	var ob domain.OrderBook
	ob.Venue = domain.Binance
	ob.SetSymbol(symbol)
	n := len(d.Bids)
	if n > domain.MaxBookLevels {
		n = domain.MaxBookLevels
	}
	for i := 0; i < n; i++ {
		if len(d.Bids[i]) < 2 {
			return Record{}, parseError("binance: malformed bid level", nil)
		}
		price, err := strconv.ParseFloat(d.Bids[i][0], 64)
		if err != nil {
			return Record{}, parseError("binance: bad bid price", err)
		}
		qty, err := strconv.ParseFloat(d.Bids[i][1], 64)
		if err != nil {
			return Record{}, parseError("binance: bad bid quantity", err)
		}
		ob.Bids[i] = domain.PriceLevel{Price: price, Quantity: qty}
	}
	ob.BidCount = n

	n = len(d.Asks)
	if n > domain.MaxBookLevels {
		n = domain.MaxBookLevels
	}
	for i := 0; i < n; i++ {
		if len(d.Asks[i]) < 2 {
			return Record{}, parseError("binance: malformed ask level", nil)
		}
		price, err := strconv.ParseFloat(d.Asks[i][0], 64)
		if err != nil {
			return Record{}, parseError("binance: bad ask price", err)
		}
		qty, err := strconv.ParseFloat(d.Asks[i][1], 64)
		if err != nil {
			return Record{}, parseError("binance: bad ask quantity", err)
		}
		ob.Asks[i] = domain.PriceLevel{Price: price, Quantity: qty}
	}
	ob.AskCount = n

	return Record{Kind: KindOrderBook, Book: ob}, nil
}
