package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/nightmareinsilver/internal/antispam"
	"github.com/lawnchairsociety/nightmareinsilver/internal/config"
	"github.com/lawnchairsociety/nightmareinsilver/internal/database"
	"github.com/lawnchairsociety/nightmareinsilver/internal/enemy"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

type testServer struct {
	srv   *Server
	http  *httptest.Server
	store progress.Store
	url   string
}

func newTestServer(t *testing.T, store progress.Store, tweak func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.TickHz = 60
	cfg.Generation.Seed = 7
	if tweak != nil {
		tweak(cfg)
	}
	srv := NewServer(cfg, store)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		hs.Close()
	})
	return &testServer{
		srv:   srv,
		http:  hs,
		store: store,
		url:   "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws",
	}
}

func newDBServer(t *testing.T, tweak func(*config.Config)) *testServer {
	t.Helper()
	store, err := database.OpenStore(database.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return newTestServer(t, store, tweak)
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(ts.url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

// login dials and logs in, returning the connection once the shop arrives.
func (ts *testServer) login(t *testing.T, profile, password string) *websocket.Conn {
	t.Helper()
	ws := ts.dial(t)
	send(t, ws, ClientMessage{Type: MsgLogin, Profile: profile, Password: password})
	readUntil(t, ws, MsgShop)
	return ws
}

// waitIdle blocks until no profile is playing.
func (ts *testServer) waitIdle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for ts.srv.ActiveProfiles() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("profiles still active")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func send(t *testing.T, ws *websocket.Conn, msg ClientMessage) {
	t.Helper()
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
}

// readUntil skips messages until one of type typ arrives.
func readUntil(t *testing.T, ws *websocket.Conn, typ string) ServerMessage {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg ServerMessage
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
		if msg.Type == MsgError && typ != MsgError {
			t.Fatalf("waiting for %q, got error %q", typ, msg.Message)
		}
	}
}

func expectError(t *testing.T, ws *websocket.Conn, contains string) {
	t.Helper()
	msg := readUntil(t, ws, MsgError)
	if !strings.Contains(msg.Message, contains) {
		t.Errorf("error = %q, want it to contain %q", msg.Message, contains)
	}
}

func TestLoginSendsShop(t *testing.T) {
	ts := newTestServer(t, progress.NewMemoryStore(), nil)
	ws := ts.dial(t)
	send(t, ws, ClientMessage{Type: MsgLogin, Profile: "alice"})

	msg := readUntil(t, ws, MsgShop)
	if msg.Profile != "alice" || msg.HUD == nil {
		t.Fatalf("shop = %+v", msg)
	}
	if msg.HUD.Battery != progress.MaxBattery(0) || msg.HUD.Depth != 0 {
		t.Errorf("HUD = %+v", *msg.HUD)
	}
	if len(msg.Shop) != len(progress.AllUpgrades()) {
		t.Errorf("%d shop rows", len(msg.Shop))
	}
	if ts.srv.ActiveProfiles() != 1 {
		t.Errorf("ActiveProfiles() = %d", ts.srv.ActiveProfiles())
	}
}

func TestLoginRejections(t *testing.T) {
	tests := []struct {
		name string
		msg  ClientMessage
		want string
	}{
		{"not a login", ClientMessage{Type: MsgStart}, "expected a login"},
		{"bad name", ClientMessage{Type: MsgLogin, Profile: "no spaces"}, "profile names"},
		{"empty name", ClientMessage{Type: MsgLogin}, "profile names"},
		{"reserved name", ClientMessage{Type: MsgLogin, Profile: "Admin"}, "reserved"},
	}
	ts := newTestServer(t, progress.NewMemoryStore(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := ts.dial(t)
			send(t, ws, tt.msg)
			expectError(t, ws, tt.want)
		})
	}
}

func TestDuplicateLogin(t *testing.T) {
	ts := newTestServer(t, progress.NewMemoryStore(), nil)
	ts.login(t, "alice", "")

	ws := ts.dial(t)
	send(t, ws, ClientMessage{Type: MsgLogin, Profile: "ALICE"})
	expectError(t, ws, errAlreadyPlaying.Error())
}

func TestProfileFreedOnDisconnect(t *testing.T) {
	ts := newTestServer(t, progress.NewMemoryStore(), nil)
	ws := ts.login(t, "alice", "")
	ws.Close()
	ts.waitIdle(t)

	ts.login(t, "alice", "")
}

func TestStartSendsLevel(t *testing.T) {
	ts := newTestServer(t, progress.NewMemoryStore(), nil)
	ws := ts.login(t, "alice", "")

	send(t, ws, ClientMessage{Type: MsgStart})
	tiles := readUntil(t, ws, MsgTiles)
	if tiles.Depth != 0 || len(tiles.Tiles) == 0 {
		t.Fatalf("tiles depth %d count %d", tiles.Depth, len(tiles.Tiles))
	}
	frame := readUntil(t, ws, MsgFrame)
	if frame.Frame == nil || !frame.Frame.InRun || frame.Frame.HUD.Depth != 0 {
		t.Fatalf("frame = %+v", frame.Frame)
	}

	var onLadder bool
	for _, tile := range tiles.Tiles {
		if tile.Pos == frame.Frame.Player.Pos && tile.Kind == "ladder_up" {
			onLadder = true
		}
	}
	if !onLadder {
		t.Errorf("player at %v is not on the up ladder", frame.Frame.Player.Pos)
	}

	send(t, ws, ClientMessage{Type: MsgStart})
	expectError(t, ws, "shop is closed")
}

// selectFire starts a run and cycles the attack from basic to fire.
func selectFire(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	send(t, ws, ClientMessage{Type: MsgStart})
	readUntil(t, ws, MsgFrame)

	send(t, ws, ClientMessage{Type: MsgAction, Action: "next_attack"})
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		msg := readUntil(t, ws, MsgFrame)
		if msg.Frame.HUD.Selected == enemy.Fire.String() {
			return
		}
	}
	t.Fatal("fire was never selected")
}

func TestActionSelectsAttack(t *testing.T) {
	ts := newTestServer(t, progress.NewMemoryStore(), nil)
	selectFire(t, ts.login(t, "alice", ""))
}

func TestBadActions(t *testing.T) {
	tests := []struct {
		msg  ClientMessage
		want string
	}{
		{ClientMessage{Type: MsgAction, Action: "fly"}, "unknown action"},
		{ClientMessage{Type: MsgAction, Action: "move", Dir: "up-left"}, "direction"},
		{ClientMessage{Type: "dance"}, "unknown message type"},
		{ClientMessage{Type: MsgConfirm}, "nothing to confirm"},
		{ClientMessage{Type: MsgCancel}, "nothing to cancel"},
		{ClientMessage{Type: MsgBuy, Upgrade: "wings"}, "unknown upgrade"},
		{ClientMessage{Type: MsgScores}, errNoScores.Error()},
	}
	ts := newTestServer(t, progress.NewMemoryStore(), nil)
	ws := ts.login(t, "alice", "")
	for _, tt := range tests {
		send(t, ws, tt.msg)
		expectError(t, ws, tt.want)
	}
}

func TestFloodDisconnects(t *testing.T) {
	ts := newTestServer(t, progress.NewMemoryStore(), func(cfg *config.Config) {
		cfg.Server.Flood = antispam.Config{Enabled: true, MaxMessages: 2, WindowSeconds: 60, MaxDropped: 3}
	})
	ws := ts.login(t, "alice", "")

	next := ClientMessage{Type: MsgAction, Action: "next_attack"}
	send(t, ws, next)
	send(t, ws, next)
	send(t, ws, next)
	expectError(t, ws, "slow down")
	send(t, ws, next)
	send(t, ws, next)
	expectError(t, ws, "too many messages")

	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg ServerMessage
		if err := ws.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == MsgError {
			t.Fatalf("unexpected error %q after the kick", msg.Message)
		}
	}
	ts.waitIdle(t)
}

func TestShopBuyAndRefund(t *testing.T) {
	store := progress.NewMemoryStore()
	save := progress.NewSaveData()
	save.Money = 20
	if err := store.Save(context.Background(), "alice", save); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	ts := newTestServer(t, store, nil)
	ws := ts.login(t, "alice", "")

	send(t, ws, ClientMessage{Type: MsgBuy, Upgrade: "battery"})
	msg := readUntil(t, ws, MsgShop)
	if msg.HUD.Money != 10 || msg.HUD.MaxBattery != progress.MaxBattery(1) {
		t.Errorf("after buy HUD = %+v", *msg.HUD)
	}
	for _, row := range msg.Shop {
		if row.Upgrade == "battery" && (row.Level != 1 || row.Price != progress.Price[1]) {
			t.Errorf("battery row = %+v", row)
		}
	}

	send(t, ws, ClientMessage{Type: MsgBuy, Upgrade: "battery"})
	expectError(t, ws, "money")

	send(t, ws, ClientMessage{Type: MsgRefund, Upgrade: "battery"})
	if msg := readUntil(t, ws, MsgShop); msg.HUD.Money != 20 {
		t.Errorf("after refund money = %d", msg.HUD.Money)
	}
}

func TestOriginRejected(t *testing.T) {
	ts := newTestServer(t, progress.NewMemoryStore(), nil)
	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(ts.url, header)
	if err == nil {
		t.Fatal("cross-origin dial succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v", resp)
	}
}

func TestConnectionLimit(t *testing.T) {
	ts := newTestServer(t, progress.NewMemoryStore(), func(c *config.Config) {
		c.Server.MaxPerIP = 1
	})
	ts.dial(t)

	_, resp, err := websocket.DefaultDialer.Dial(ts.url, nil)
	if err == nil {
		t.Fatal("second dial succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("response = %v", resp)
	}
}

func TestShutdownSavesProfile(t *testing.T) {
	store := progress.NewMemoryStore()
	ts := newTestServer(t, store, nil)
	selectFire(t, ts.login(t, "alice", ""))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ts.srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	save, err := store.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if save.AttackSelected != enemy.Fire {
		t.Errorf("saved attack = %v, want fire", save.AttackSelected)
	}

	if _, _, err := websocket.DefaultDialer.Dial(ts.url, nil); err == nil {
		t.Error("dial after shutdown succeeded")
	}
}

func TestScoresWithoutDatabase(t *testing.T) {
	ts := newTestServer(t, progress.NewMemoryStore(), nil)
	resp, err := http.Get(ts.http.URL + "/scores")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestScoresWithDatabase(t *testing.T) {
	ts := newDBServer(t, nil)
	ts.srv.recordRun(database.RunRecord{Profile: "alice", Score: 300, Depth: 3, Kills: 2})
	ts.srv.recordRun(database.RunRecord{Profile: "bob", Score: 4000, Depth: 9, Kills: 20, Won: true})

	resp, err := http.Get(ts.http.URL + "/scores?limit=1")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var scores []database.RunRecord
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(scores) != 1 || scores[0].Profile != "bob" || !scores[0].Won {
		t.Errorf("scores = %+v", scores)
	}

	resp, err = http.Post(ts.http.URL+"/scores", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", resp.StatusCode)
	}

	ws := ts.login(t, "carol", "")
	send(t, ws, ClientMessage{Type: MsgScores, Limit: 5})
	if msg := readUntil(t, ws, MsgScores); len(msg.Scores) != 2 {
		t.Errorf("%d scores over the socket", len(msg.Scores))
	}
}

func TestPasswordLogin(t *testing.T) {
	ts := newDBServer(t, func(c *config.Config) {
		c.Server.RateLimit = config.RateLimitConfig{MaxAttempts: 2, LockoutSeconds: 60, MaxLockoutSeconds: 60}
	})

	ws := ts.dial(t)
	send(t, ws, ClientMessage{Type: MsgLogin, Profile: "bob", Password: "short"})
	expectError(t, ws, "at least 8")

	ws = ts.login(t, "bob", "hunter22a")
	ws.Close()
	ts.waitIdle(t)

	for i := 0; i < 2; i++ {
		ws := ts.dial(t)
		send(t, ws, ClientMessage{Type: MsgLogin, Profile: "bob", Password: "wrong1234"})
		expectError(t, ws, database.ErrBadPassword.Error())
	}

	// The right password is refused while the address is locked out.
	ws = ts.dial(t)
	send(t, ws, ClientMessage{Type: MsgLogin, Profile: "bob", Password: "hunter22a"})
	expectError(t, ws, "too many failed logins")
}
