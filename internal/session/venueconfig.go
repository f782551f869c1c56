package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/wire"
)

// Subscription lists the symbols a session should stream per record kind.
type Subscription struct {
	Tickers    []string
	OrderBooks []string
	Trades     []string
}

// UpbitConfig builds the session Config for Upbit: a single JSON array
// message, ticket frame first, one entry per subscribed record kind, no
// client-initiated ping (cadence 0 — the server's own ping frames keep
// the connection alive and any inbound frame resets the read deadline).
func UpbitConfig(url, ticketID string, sub Subscription) (Config, error) {
	payload, err := buildTicketedSubscribe(ticketID, sub, false)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Venue:        domain.Upbit,
		URL:          url,
		Subscribe:    []SubscribeFrame{{MessageType: websocket.TextMessage, Payload: payload}},
		Decode:       wire.DecodeUpbit,
		PingInterval: 0,
	}, nil
}

// BithumbConfig builds the session Config for Bithumb's v2 API: ticket,
// type entries, then a trailing {"format":"DEFAULT"} frame. WS ping
// opcode every 10s.
func BithumbConfig(url string, sub Subscription) (Config, error) {
	payload, err := buildTicketedSubscribe("arbitrage-kac", sub, true)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Venue:        domain.Bithumb,
		URL:          url,
		Subscribe:    []SubscribeFrame{{MessageType: websocket.TextMessage, Payload: payload}},
		Decode:       wire.DecodeBithumb,
		PingInterval: 10 * time.Second,
	}, nil
}

func buildTicketedSubscribe(ticket string, sub Subscription, withFormat bool) ([]byte, error) {
	msgs := []interface{}{map[string]string{"ticket": ticket}}
	if len(sub.Tickers) > 0 {
		msgs = append(msgs, map[string]interface{}{"type": "ticker", "codes": sub.Tickers, "isOnlyRealtime": true})
	}
	if len(sub.OrderBooks) > 0 {
		msgs = append(msgs, map[string]interface{}{"type": "orderbook", "codes": sub.OrderBooks, "isOnlyRealtime": true})
	}
	if len(sub.Trades) > 0 {
		msgs = append(msgs, map[string]interface{}{"type": "trade", "codes": sub.Trades, "isOnlyRealtime": true})
	}
	if withFormat {
		msgs = append(msgs, map[string]string{"format": "DEFAULT"})
	}
	return json.Marshal(msgs)
}

// BinanceConfig builds the session Config for Binance: subscription is
// entirely expressed in the connection URL's query string (combined
// streams), so no subscribe frames are sent. WS ping opcode every 20s.
func BinanceConfig(baseURL string, sub Subscription) Config {
	streams := make([]string, 0, len(sub.Tickers)+len(sub.OrderBooks)+len(sub.Trades))
	for _, s := range sub.Tickers {
		streams = append(streams, strings.ToLower(s)+"@ticker")
	}
	for _, s := range sub.OrderBooks {
		streams = append(streams, strings.ToLower(s)+"@depth20")
	}
	for _, s := range sub.Trades {
		streams = append(streams, strings.ToLower(s)+"@trade")
	}

	url := baseURL
	if len(streams) > 0 {
		url += "/stream?streams=" + strings.Join(streams, "/")
	}

	return Config{
		Venue:        domain.Binance,
		URL:          url,
		Decode:       wire.DecodeBinance,
		PingInterval: 20 * time.Second,
	}
}

// MexcConfig builds the session Config for MEXC: one SUBSCRIPTION
// envelope per (stream, symbol) pair sent sequentially, application-level
// {"method":"PING"} heartbeat every 30s.
func MexcConfig(url string, sub Subscription) Config {
	var frames []SubscribeFrame
	id := 1
	for _, s := range sub.OrderBooks {
		frames = append(frames, mexcSubscribeFrame(id, "spot@public.limit.depth.v3.api@"+s+"@20"))
		id++
	}
	for _, s := range sub.Trades {
		frames = append(frames, mexcSubscribeFrame(id, "spot@public.deals.v3.api@"+s))
		id++
	}
	for _, s := range sub.Tickers {
		frames = append(frames, mexcSubscribeFrame(id, "spot@public.deals.v3.api@"+s))
		id++
	}

	return Config{
		Venue:        domain.Mexc,
		URL:          url,
		Subscribe:    frames,
		Decode:       wire.DecodeMexc,
		PingInterval: 30 * time.Second,
		PingPayload:  []byte(`{"method":"PING"}`),
	}
}

func mexcSubscribeFrame(id int, param string) SubscribeFrame {
	payload, _ := json.Marshal(map[string]interface{}{
		"method": "SUBSCRIPTION",
		"params": []string{param},
		"id":     id,
	})
	return SubscribeFrame{MessageType: websocket.TextMessage, Payload: payload}
}

