package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readType(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg.Type
}

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("count = %d, want %d", h.Count(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubBroadcastsToAllObservers(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a := dial(t, srv)
	b := dial(t, srv)
	if readType(t, a) != "connected" || readType(t, b) != "connected" {
		t.Fatalf("missing welcome frame")
	}
	waitForCount(t, hub, 2)

	hub.Publish(context.Background(), "dashboard:update")
	if got := readType(t, a); got != "dashboard:update" {
		t.Fatalf("a got %q", got)
	}
	if got := readType(t, b); got != "dashboard:update" {
		t.Fatalf("b got %q", got)
	}
}

func TestHubDropsClosedObservers(t *testing.T) {
	hub := NewHub(nil, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	readType(t, conn)
	waitForCount(t, hub, 1)
	_ = conn.Close()
	waitForCount(t, hub, 0)

	hub.Publish(context.Background(), "analytics:update")
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"https://app.example.com"}, nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example.com"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatalf("expected handshake to fail")
	}
}
