package testclient

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
	"github.com/lawnchairsociety/nightmareinsilver/internal/server"
)

func startServer(t *testing.T) string {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.TickHz = 60
	cfg.Generation.Seed = 3
	srv := server.NewServer(cfg, progress.NewMemoryStore())
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		hs.Close()
	})
	return "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
}

func TestURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"localhost:8420", "ws://localhost:8420/ws"},
		{"ws://example.com/ws", "ws://example.com/ws"},
	}
	for _, tt := range tests {
		if got := URL(tt.in); got != tt.want {
			t.Errorf("URL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoginAndStart(t *testing.T) {
	url := startServer(t)
	c, err := NewTestClient("alice", url)
	if err != nil {
		t.Fatalf("NewTestClient failed: %v", err)
	}
	defer c.Close()

	if err := c.Send(server.ClientMessage{Type: server.MsgStart}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	tiles, ok := c.WaitFor(server.MsgTiles, 5*time.Second)
	if !ok || len(tiles.Tiles) == 0 {
		t.Fatalf("no tiles: %+v", tiles)
	}
	if _, ok := c.WaitFor(server.MsgFrame, 5*time.Second); !ok {
		t.Fatal("no frame after start")
	}

	c.Send(server.ClientMessage{Type: server.MsgStart})
	if !c.WaitForError("shop is closed", 5*time.Second) {
		t.Error("second start was not refused")
	}
}

func TestLoginRejected(t *testing.T) {
	url := startServer(t)
	if _, err := NewTestClient("admin", url); err == nil || !strings.Contains(err.Error(), "reserved") {
		t.Errorf("err = %v, want a reserved-name rejection", err)
	}
}

func TestClosedAfterServerDrop(t *testing.T) {
	url := startServer(t)
	c, err := Dial(url)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	c.Send(server.ClientMessage{Type: server.MsgStart})
	if !c.WaitForError("expected a login", 5*time.Second) {
		t.Error("no login error")
	}
	if !c.Closed(5 * time.Second) {
		t.Error("server did not close the connection")
	}
	if len(c.Messages()) != 1 {
		t.Errorf("messages = %+v", c.Messages())
	}
	c.ClearMessages()
	if len(c.Messages()) != 0 {
		t.Error("ClearMessages left messages")
	}
}
