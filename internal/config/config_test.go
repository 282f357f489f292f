package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Game.FinalDepth != 9 || cfg.Game.UsesPerLevel != 5 {
		t.Errorf("game defaults = %+v", cfg.Game)
	}
	if cfg.Turn.EnemyTurnSeconds != 0.3 || cfg.Turn.EnemyMoveFraction != 0.5 ||
		cfg.Turn.EnemyMoveChance != 0.5 || cfg.Turn.MoveSeconds != 0.15 {
		t.Errorf("turn defaults = %+v", cfg.Turn)
	}
	if cfg.Generation.SlotSize != 12 || cfg.Generation.CorridorSearch != 24 {
		t.Errorf("generation defaults = %+v", cfg.Generation)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 0 {
		t.Error("Default AllowedOrigins should be empty (same-origin only)")
	}
	if cfg.Server.WebSocket.MaxMessageSize != 4096 {
		t.Errorf("MaxMessageSize = %d, want 4096", cfg.Server.WebSocket.MaxMessageSize)
	}
	if cfg.Server.MaxConnections != 64 || cfg.Server.MaxPerIP != 4 {
		t.Errorf("connection limits = %d total, %d per IP", cfg.Server.MaxConnections, cfg.Server.MaxPerIP)
	}
	want := RateLimitConfig{MaxAttempts: 5, LockoutSeconds: 30, MaxLockoutSeconds: 300}
	if cfg.Server.RateLimit != want {
		t.Errorf("RateLimit = %+v, want %+v", cfg.Server.RateLimit, want)
	}
	if !cfg.Server.Flood.Enabled || !cfg.Names.Enabled {
		t.Errorf("flood %+v names %+v should be enabled", cfg.Server.Flood, cfg.Names)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/game.yaml")
	if err != nil {
		t.Fatalf("LoadConfig should not error for missing file: %v", err)
	}
	if cfg.Game.FinalDepth != 9 {
		t.Error("Should return default config when file doesn't exist")
	}

	cfg, err = LoadConfig("")
	if err != nil || cfg == nil {
		t.Fatalf("LoadConfig(\"\") = %v, %v", cfg, err)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
generation:
  room_count_min: 3
  room_count_max: 4
  seed: 99
turn:
  enemy_turn_seconds: 0.5
game:
  final_depth: 4
  low_connection: [0.9, 0.1]
store:
  driver: memory
server:
  address: "127.0.0.1:9000"
  websocket:
    allowed_origins:
      - "https://example.com"
    max_message_size: 8192
  max_per_ip: 2
  rate_limit:
    max_attempts: 3
  flood:
    max_messages: 10
names:
  banned_words: [rude]
logging:
  level: DEBUG
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Generation.RoomCountMin != 3 || cfg.Generation.Seed != 99 {
		t.Errorf("generation = %+v", cfg.Generation)
	}
	// Unset keys keep their defaults.
	if cfg.Generation.RoomWidthMax != 8 || cfg.Turn.MoveSeconds != 0.15 {
		t.Errorf("defaults not preserved: width %d move %v", cfg.Generation.RoomWidthMax, cfg.Turn.MoveSeconds)
	}
	if cfg.Turn.EnemyTurnSeconds != 0.5 {
		t.Errorf("EnemyTurnSeconds = %v", cfg.Turn.EnemyTurnSeconds)
	}
	if cfg.Game.FinalDepth != 4 || len(cfg.Game.LowConnection) != 2 {
		t.Errorf("game = %+v", cfg.Game)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("Store.Driver = %q", cfg.Store.Driver)
	}
	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 1 || cfg.Server.WebSocket.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.WebSocket.AllowedOrigins)
	}
	if cfg.Server.MaxPerIP != 2 || cfg.Server.RateLimit.MaxAttempts != 3 || cfg.Server.RateLimit.LockoutSeconds != 30 {
		t.Errorf("server limits = %d per IP, rate limit %+v", cfg.Server.MaxPerIP, cfg.Server.RateLimit)
	}
	if cfg.Server.Flood.MaxMessages != 10 || !cfg.Server.Flood.Enabled || cfg.Server.Flood.WindowSeconds != 1 {
		t.Errorf("Flood = %+v", cfg.Server.Flood)
	}
	// Lists replace the default; reserved names stay since the key is unset.
	if len(cfg.Names.BannedWords) != 1 || len(cfg.Names.ReservedNames) == 0 {
		t.Errorf("Names = %+v", cfg.Names)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed", "game: [unclosed", "failed to parse"},
		{"final depth", "game:\n  final_depth: 0\n", "final_depth"},
		{"move fraction", "turn:\n  enemy_move_fraction: 1.5\n", "enemy_move_fraction"},
		{"low connection", "game:\n  low_connection: [2]\n", "low_connection"},
		{"driver", "store:\n  driver: mongo\n", "store driver"},
		{"tick", "server:\n  tick_hz: 0\n", "tick_hz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			if cfg == nil || cfg.Game.FinalDepth != 9 {
				t.Error("failed load should still return defaults")
			}
		})
	}
}

func TestGenerationParams(t *testing.T) {
	g := DefaultConfig().Generation
	p := g.Params(3, 9)

	if p.Depth != 3 || p.FinalDepth != 9 {
		t.Errorf("depth fields = %d/%d", p.Depth, p.FinalDepth)
	}
	if p.RoomCountMin != g.RoomCountMin || p.RoomHeightMax != g.RoomHeightMax ||
		p.SlotSize != g.SlotSize || p.CorridorSearch != g.CorridorSearch {
		t.Errorf("params %+v do not mirror %+v", p, g)
	}
	if p.IsFinal() {
		t.Error("depth 3 of 9 should not be final")
	}
	if !g.Params(9, 9).IsFinal() {
		t.Error("depth 9 of 9 should be final")
	}
}

func TestStoreDatabase(t *testing.T) {
	s := DefaultConfig().Store
	db := s.Database()
	if db.Driver != "sqlite" || db.SQLitePath != "data/nightmare.db" {
		t.Errorf("sqlite conversion = %+v", db)
	}

	s.Driver = "postgres"
	s.Postgres.Database = "nightmare"
	s.Postgres.User = "game"
	s.Postgres.Host = ""
	db = s.Database()
	if db.Driver != "postgres" || db.Postgres.Database != "nightmare" || db.Postgres.User != "game" {
		t.Errorf("postgres conversion = %+v", db.Postgres)
	}
	if db.Postgres.Host != "localhost" || db.Postgres.MaxOpenConns != 25 {
		t.Errorf("postgres defaults not applied: %+v", db.Postgres)
	}
	if err := db.Validate(); err != nil {
		t.Errorf("converted config invalid: %v", err)
	}
}

func TestTickInterval(t *testing.T) {
	s := ServerConfig{TickHz: 50}
	if got := s.TickInterval(); got != 20*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 20ms", got)
	}
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		host    string
		want    bool
	}{
		{"same origin", nil, "http://localhost:8420", "localhost:8420", true},
		{"cross origin", nil, "http://evil.com", "localhost:8420", false},
		{"no origin header", nil, "", "localhost:8420", true},
		{"wildcard", []string{"*"}, "http://evil.com", "localhost:8420", true},
		{"listed", []string{"https://example.com", "https://game.example.com"}, "https://game.example.com", "localhost:8420", true},
		{"not listed", []string{"https://example.com"}, "https://other.com", "localhost:8420", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := &WebSocketConfig{AllowedOrigins: tt.allowed}
			if got := ws.IsOriginAllowed(tt.origin, tt.host); got != tt.want {
				t.Errorf("IsOriginAllowed(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
			}
		})
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin string
		host   string
		want   bool
	}{
		{"", "localhost:8420", true},
		{"http://localhost:8420", "localhost:8420", true},
		{"https://localhost:8420/", "localhost:8420", true},
		{"http://localhost:3000", "localhost:8420", false},
		{"localhost:8420", "localhost:8420", true},
	}
	for _, tt := range tests {
		if got := isSameOrigin(tt.origin, tt.host); got != tt.want {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v", tt.origin, tt.host, got, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		cfg      PasswordConfig
		password string
		want     string
	}{
		{"default ok", DefaultConfig().Server.Password, "silver42x", ""},
		{"too short", DefaultConfig().Server.Password, "ab1", "at least 8"},
		{"no digit", DefaultConfig().Server.Password, "silversilver", "digit"},
		{"no lowercase", DefaultConfig().Server.Password, "SILVER4242", "lowercase"},
		{"needs upper", PasswordConfig{MinLength: 4, RequireUppercase: true}, "abcd", "uppercase"},
		{"zero min length uses 8", PasswordConfig{}, "short", "at least 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.ValidatePassword(tt.password)
			if tt.want == "" {
				if got != "" {
					t.Errorf("ValidatePassword(%q) = %q, want ok", tt.password, got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("ValidatePassword(%q) = %q, want mention of %q", tt.password, got, tt.want)
			}
		})
	}
}
