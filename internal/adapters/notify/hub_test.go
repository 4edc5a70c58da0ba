package notify

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{hub: hub, send: make(chan Message, sendBufferSize)}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c1, c2 := mockClient(hub), mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	// Should not panic
	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client, got %d", got)
	}
}

func TestNotifyChange(t *testing.T) {
	hub := NewHub(nil)
	at := time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC)
	hub.now = func() time.Time { return at }
	c := mockClient(hub)
	hub.Register(c)

	hub.NotifyChange("familyDetails", "renew_membership")

	select {
	case got := <-c.send:
		if got.Type != MessageConsoleUpdated || got.Screen != "familyDetails" || got.Action != "renew_membership" || !got.At.Equal(at) {
			t.Errorf("unexpected message %+v", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(nil)
	c := mockClient(hub)
	hub.Register(c)

	for i := 0; i < sendBufferSize+5; i++ {
		hub.NotifyChange("home", "set_search")
	}
	if got := len(c.send); got != sendBufferSize {
		t.Errorf("expected a full buffer of %d, got %d", sendBufferSize, got)
	}
}

func TestHandler_DeliversOverWebSocket(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(Handler(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	for hub.ClientCount() == 0 {
		if ctx.Err() != nil {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.NotifyChange("home", "refresh_data")

	var got Message
	if err := wsjson.Read(ctx, conn, &got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != MessageConsoleUpdated || got.Action != "refresh_data" {
		t.Errorf("expected refresh_data, got %q", got.Action)
	}
}

func TestOriginPatterns(t *testing.T) {
	got := originPatterns([]string{"http://localhost:3000", "https://console.example.org", "*.example.com"})
	want := []string{"localhost:3000", "console.example.org", "*.example.com"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestHandler_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(Handler(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	for hub.ClientCount() == 0 {
		if ctx.Err() != nil {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close(ws.StatusNormalClosure, "")

	for hub.ClientCount() != 0 {
		if ctx.Err() != nil {
			t.Fatal("client never unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
