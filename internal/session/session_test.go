package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/s2ungeda/kac/internal/domain"
	"github.com/s2ungeda/kac/internal/wire"
	"github.com/s2ungeda/kac/pkg/backoff"
)

func httpToWS(url string) string {
	return strings.Replace(url, "http://", "ws://", 1)
}

func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func echoDecoder(frame []byte) (wire.Record, error) {
	return wire.Record{
		Kind:   wire.KindTicker,
		Ticker: domain.NewTicker(domain.Upbit, "XRP", 3100, 3099, 3101, 1, 1700000000000),
	}, nil
}

func TestSessionConnectEmitsConnectedThenTicker(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ticker"}`))
		time.Sleep(150 * time.Millisecond)
	})
	defer server.Close()

	s := New(Config{
		Venue:  domain.Upbit,
		URL:    httpToWS(server.URL),
		Decode: echoDecoder,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	var sawConnected, sawTicker bool
	deadline := time.After(500 * time.Millisecond)
	for !sawConnected || !sawTicker {
		select {
		case evt := <-s.Events:
			if evt.Kind == EventConnected {
				sawConnected = true
			}
			if evt.Kind == EventTicker {
				sawTicker = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for events, sawConnected=%v sawTicker=%v", sawConnected, sawTicker)
		}
	}
}

func TestSessionStopIsNotHanging(t *testing.T) {
	serverClosed := make(chan struct{})
	server := mockWSServer(t, func(conn *websocket.Conn) {
		<-serverClosed
	})
	defer server.Close()
	defer close(serverClosed)

	s := New(Config{Venue: domain.Binance, URL: httpToWS(server.URL), Decode: echoDecoder})

	s.Start(context.Background())
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return within timeout")
	}
}

func TestSessionOnEventCallbackShortCircuitsQueue(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ticker"}`))
		time.Sleep(150 * time.Millisecond)
	})
	defer server.Close()

	received := make(chan Event, 4)
	s := New(Config{
		Venue:   domain.Bithumb,
		URL:     httpToWS(server.URL),
		Decode:  echoDecoder,
		OnEvent: func(e Event) { received <- e },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	select {
	case evt := <-received:
		if evt.Kind != EventConnected {
			t.Fatalf("first callback event = %v, want EventConnected", evt.Kind)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("OnEvent callback was never invoked")
	}

	if len(s.Events) != 0 {
		t.Fatalf("Events queue should stay empty when OnEvent is set, got %d", len(s.Events))
	}
}

// TestReconnectBackoffMatchesExponentialSchedule reproduces the S5 scenario:
// after 4 consecutive failed connection attempts the next delay is
// min(60s, 2^4 * 1s) = 16s.
func TestReconnectBackoffMatchesExponentialSchedule(t *testing.T) {
	b := backoff.New(backoffBase, backoffMax)
	var last time.Duration
	for i := 0; i < 4; i++ {
		last = b.NextDelay()
	}
	if last != 8*time.Second {
		t.Fatalf("4th delay = %s, want 8s", last)
	}
	fifth := b.NextDelay()
	if fifth != 16*time.Second {
		t.Fatalf("5th delay = %s, want 16s (min(60, 2^4))", fifth)
	}
}

func TestReconnectBackoffResetsOnSuccess(t *testing.T) {
	b := backoff.New(backoffBase, backoffMax)
	b.NextDelay()
	b.NextDelay()
	b.Reset()
	if d := b.NextDelay(); d != backoffBase {
		t.Fatalf("delay after reset = %s, want %s", d, backoffBase)
	}
}

func TestSessionStateStringsAreDistinct(t *testing.T) {
	states := []State{Resolving, TcpConnecting, TlsHandshake, WsHandshake, Subscribing, Streaming, Closing, Failed, BackoffWaiting}
	seen := map[string]bool{}
	for _, st := range states {
		s := st.String()
		if s == "" || s == "Unknown" {
			t.Fatalf("state %d has no name", st)
		}
		if seen[s] {
			t.Fatalf("duplicate state name %q", s)
		}
		seen[s] = true
	}
}
