package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/errkind"
	"github.com/s2ungeda/kac/internal/wire"
	"github.com/s2ungeda/kac/pkg/backoff"
)

// Decoder turns a raw frame into a wire.Record.
type Decoder func(frame []byte) (wire.Record, error)

// Config describes one venue connection.
type Config struct {
	Venue domain.Venue
	URL   string

	// Subscribe is sent as a sequence of frames once the WS handshake
	// completes; each is written before the next is sent (some venues,
	// like MEXC, require the reader to ack one subscription before the
	// next is issued — callers without that requirement can just list
	// every subscribe frame up front).
	Subscribe []SubscribeFrame

	Decode Decoder

	// PingInterval is the inactivity cadence; 0 disables pinging.
	PingInterval time.Duration
	// PingPayload, if non-nil, is sent as a text message instead of a
	// WebSocket ping opcode (MEXC's application-level {"method":"PING"}).
	PingPayload []byte

	ReadTimeout time.Duration

	// OnEvent, if set, is called synchronously on the reactor goroutine
	// instead of enqueuing to Events — short-circuits the queue per the
	// documented output contract.
	OnEvent func(Event)
}

// SubscribeFrame is one outbound subscribe message and its WS frame type.
type SubscribeFrame struct {
	MessageType int
	Payload     []byte
}

const (
	defaultReadTimeout = 60 * time.Second
	backoffBase        = 1 * time.Second
	backoffMax         = 60 * time.Second
)

// Session drives one venue's WebSocket connection lifecycle.
type Session struct {
	cfg Config

	state   atomic.Uint32
	backoff *backoff.Backoff

	Events chan Event

	mu      sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Session for the given venue config. A zero PingInterval
// disables client-initiated pings (used by venues whose server drives
// its own ping frames); callers wanting pings must set it explicitly.
// Events is buffered so a slow consumer doesn't stall the reactor
// goroutine indefinitely; callers needing backpressure should set
// cfg.OnEvent instead.
func New(cfg Config) *Session {
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	s := &Session{
		cfg:     cfg,
		backoff: backoff.New(backoffBase, backoffMax),
		Events:  make(chan Event, 256),
	}
	s.state.Store(uint32(Resolving))
	return s
}

// State returns the session's current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) { s.state.Store(uint32(st)) }

func (s *Session) emit(evt Event) {
	if s.cfg.OnEvent != nil {
		s.cfg.OnEvent(evt)
		return
	}
	select {
	case s.Events <- evt:
	default:
		slog.Warn("session event queue full, dropping event", "venue", s.cfg.Venue.String(), "kind", evt.Kind)
	}
}

// Start runs the reconnect loop in a background goroutine until ctx is
// cancelled or Stop is called.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Stop cancels the session and waits for the reactor goroutine to exit.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.closeConn()
	s.wg.Wait()
}

func (s *Session) runLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.connectAndSubscribe(ctx); err != nil {
			s.setState(Failed)
			s.emit(Event{Kind: EventError, Venue: s.cfg.Venue, Err: err})

			s.setState(BackoffWaiting)
			delay := s.backoff.NextDelay()
			slog.Warn("session reconnecting", "venue", s.cfg.Venue.String(), "err", err, "delay", delay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		s.backoff.Reset()
		s.stream(ctx)
	}
}

func (s *Session) connectAndSubscribe(ctx context.Context) error {
	s.setState(Resolving)
	s.setState(TcpConnecting)
	s.setState(TlsHandshake)
	s.setState(WsHandshake)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	header := make(http.Header)
	header.Set("User-Agent", "kac-arbitrage/1.0")

	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, header)
	if err != nil {
		return errkind.Network("dial failed", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.emit(Event{Kind: EventConnected, Venue: s.cfg.Venue})

	s.setState(Subscribing)
	for _, frame := range s.cfg.Subscribe {
		if err := s.writeFrame(frame.MessageType, frame.Payload); err != nil {
			s.closeConn()
			return errkind.Network("subscribe failed", err)
		}
	}

	if s.cfg.PingInterval > 0 {
		go s.pingLoop(ctx)
	}

	s.setState(Streaming)
	return nil
}

func (s *Session) stream(ctx context.Context) {
	for {
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.setState(Closing)
			s.closeConn()
			s.emit(Event{Kind: EventDisconnected, Venue: s.cfg.Venue, Err: errkind.Closed("read failed", err)})
			return
		}

		rec, err := s.cfg.Decode(msg)
		if err != nil {
			// A single decode failure is transient: log and keep streaming.
			slog.Warn("session decode error", "venue", s.cfg.Venue.String(), "err", err)
			continue
		}
		if evt, ok := recordEvent(s.cfg.Venue, rec); ok {
			s.emit(evt)
		}
	}
}

func (s *Session) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()
			if conn == nil {
				return
			}

			var err error
			if s.cfg.PingPayload != nil {
				err = s.writeFrame(websocket.TextMessage, s.cfg.PingPayload)
			} else {
				s.writeMu.Lock()
				err = conn.WriteMessage(websocket.PingMessage, nil)
				s.writeMu.Unlock()
			}
			if err != nil {
				slog.Warn("session ping failed", "venue", s.cfg.Venue.String(), "err", err)
				s.closeConn()
				return
			}
		}
	}
}

func (s *Session) writeFrame(msgType int, payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return errkind.InvalidState("session has no active connection", nil)
	}
	return conn.WriteMessage(msgType, payload)
}

func (s *Session) closeConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
