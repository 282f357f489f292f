// Package config loads the game YAML: generation tuning, turn pacing, run
// rules, persistence, the websocket host and audio. The logging section of the
// same file is read by the logger package.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/lawnchairsociety/nightmareinsilver/internal/antispam"
	"github.com/lawnchairsociety/nightmareinsilver/internal/database"
	"github.com/lawnchairsociety/nightmareinsilver/internal/dungeon"
	"github.com/lawnchairsociety/nightmareinsilver/internal/namefilter"
	"gopkg.in/yaml.v3"
)

// Config is the whole game configuration.
type Config struct {
	Generation GenerationConfig  `yaml:"generation"`
	Turn       TurnConfig        `yaml:"turn"`
	Game       GameConfig        `yaml:"game"`
	Store      StoreConfig       `yaml:"store"`
	Server     ServerConfig      `yaml:"server"`
	Audio      AudioConfig       `yaml:"audio"`
	Names      namefilter.Config `yaml:"names"`
}

// GenerationConfig tunes the level generator.
type GenerationConfig struct {
	RoomCountMin   int     `yaml:"room_count_min"`
	RoomCountMax   int     `yaml:"room_count_max"`
	RoomWidthMin   int     `yaml:"room_width_min"`
	RoomWidthMax   int     `yaml:"room_width_max"`
	RoomHeightMin  int     `yaml:"room_height_min"`
	RoomHeightMax  int     `yaml:"room_height_max"`
	SlotSize       int     `yaml:"slot_size"`
	CorridorSearch int     `yaml:"corridor_search"`
	SpawnBase      float64 `yaml:"spawn_base"`
	SpawnPerDepth  float64 `yaml:"spawn_per_depth"`
	SpawnMin       int     `yaml:"spawn_min"`
	SpawnMax       int     `yaml:"spawn_max"`

	// Seed for the run's random source. 0 picks one from the clock.
	Seed int64 `yaml:"seed"`

	// EnemyTable is an optional YAML file overriding spawn weights and stats.
	EnemyTable string `yaml:"enemy_table"`
}

// TurnConfig paces the enemy turn and step animations, in seconds.
type TurnConfig struct {
	EnemyTurnSeconds  float64 `yaml:"enemy_turn_seconds"`
	EnemyMoveFraction float64 `yaml:"enemy_move_fraction"` // Share of the enemy turn before enemies step
	EnemyMoveChance   float64 `yaml:"enemy_move_chance"`
	MoveSeconds       float64 `yaml:"move_seconds"`
}

// GameConfig holds run rules.
type GameConfig struct {
	FinalDepth   int `yaml:"final_depth"`
	UsesPerLevel int `yaml:"uses_per_level"`

	// LowConnection[i] is the chance a move is replaced by a random direction
	// when i levels of range remain. Index 0 also covers being out of range;
	// beyond the table the chance is 0.
	LowConnection []float64 `yaml:"low_connection"`
}

// StoreConfig selects where profiles are kept.
type StoreConfig struct {
	// Driver is "memory", "sqlite" or "postgres".
	Driver     string         `yaml:"driver"`
	SQLitePath string         `yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// ServerConfig holds websocket host settings.
type ServerConfig struct {
	Address        string          `yaml:"address"`
	TickHz         int             `yaml:"tick_hz"`
	MaxConnections int             `yaml:"max_connections"` // 0 means unlimited
	MaxPerIP       int             `yaml:"max_per_ip"`      // 0 means unlimited
	WebSocket      WebSocketConfig `yaml:"websocket"`
	Password       PasswordConfig  `yaml:"password"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	Flood          antispam.Config `yaml:"flood"`
}

// RateLimitConfig bounds failed logins per client IP.
type RateLimitConfig struct {
	MaxAttempts       int `yaml:"max_attempts"`        // Failures before lockout
	LockoutSeconds    int `yaml:"lockout_seconds"`     // First lockout, doubled on repeats
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"` // Cap on the doubled lockout
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// PasswordConfig holds profile passphrase rules.
type PasswordConfig struct {
	MinLength        int  `yaml:"min_length"`
	RequireUppercase bool `yaml:"require_uppercase"`
	RequireLowercase bool `yaml:"require_lowercase"`
	RequireDigit     bool `yaml:"require_digit"`
}

// AudioConfig controls the synthesized cue sink.
type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Volume     float64 `yaml:"volume"` // Gain in beep's log2 units, 0 is unchanged
	SampleRate int     `yaml:"sample_rate"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			RoomCountMin:   6,
			RoomCountMax:   10,
			RoomWidthMin:   4,
			RoomWidthMax:   8,
			RoomHeightMin:  4,
			RoomHeightMax:  7,
			SlotSize:       12,
			CorridorSearch: 24,
			SpawnBase:      1,
			SpawnPerDepth:  0.4,
			SpawnMin:       1,
			SpawnMax:       4,
		},
		Turn: TurnConfig{
			EnemyTurnSeconds:  0.3,
			EnemyMoveFraction: 0.5,
			EnemyMoveChance:   0.5,
			MoveSeconds:       0.15,
		},
		Game: GameConfig{
			FinalDepth:    9,
			UsesPerLevel:  5,
			LowConnection: []float64{0.50, 0.35, 0.20, 0.10},
		},
		Store: StoreConfig{
			Driver:     "sqlite",
			SQLitePath: "data/nightmare.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Server: ServerConfig{
			Address:        ":8420",
			TickHz:         30,
			MaxConnections: 64,
			MaxPerIP:       4,
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 4096,
			},
			Password: PasswordConfig{
				MinLength:        8,
				RequireLowercase: true,
				RequireDigit:     true,
			},
			RateLimit: RateLimitConfig{
				MaxAttempts:       5,
				LockoutSeconds:    30,
				MaxLockoutSeconds: 300,
			},
			Flood: antispam.DefaultConfig(),
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
		},
		Names: namefilter.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file.
// A missing file yields the defaults; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

// Validate rejects values the game cannot run with.
func (c *Config) Validate() error {
	if c.Game.FinalDepth < 1 {
		return fmt.Errorf("game.final_depth must be at least 1")
	}
	if c.Turn.EnemyTurnSeconds <= 0 || c.Turn.MoveSeconds <= 0 {
		return fmt.Errorf("turn durations must be positive")
	}
	if c.Turn.EnemyMoveFraction < 0 || c.Turn.EnemyMoveFraction > 1 {
		return fmt.Errorf("turn.enemy_move_fraction must be within [0, 1]")
	}
	for _, p := range c.Game.LowConnection {
		if p < 0 || p > 1 {
			return fmt.Errorf("game.low_connection entries must be within [0, 1]")
		}
	}
	switch c.Store.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Server.TickHz <= 0 {
		return fmt.Errorf("server.tick_hz must be positive")
	}
	return nil
}

// Params converts the generation section into generator parameters for depth.
func (g GenerationConfig) Params(depth, finalDepth int) dungeon.Params {
	return dungeon.Params{
		Depth:          depth,
		FinalDepth:     finalDepth,
		RoomCountMin:   g.RoomCountMin,
		RoomCountMax:   g.RoomCountMax,
		RoomWidthMin:   g.RoomWidthMin,
		RoomWidthMax:   g.RoomWidthMax,
		RoomHeightMin:  g.RoomHeightMin,
		RoomHeightMax:  g.RoomHeightMax,
		SlotSize:       g.SlotSize,
		CorridorSearch: g.CorridorSearch,
		SpawnBase:      g.SpawnBase,
		SpawnPerDepth:  g.SpawnPerDepth,
		SpawnMin:       g.SpawnMin,
		SpawnMax:       g.SpawnMax,
	}
}

// Database converts the store section into a database configuration.
func (s StoreConfig) Database() database.Config {
	cfg := database.DefaultConfig(s.SQLitePath)
	if s.Driver == "postgres" {
		cfg.Driver = "postgres"
		pg := database.DefaultPostgresConfig()
		if s.Postgres.Host != "" {
			pg.Host = s.Postgres.Host
		}
		if s.Postgres.Port != 0 {
			pg.Port = s.Postgres.Port
		}
		pg.User = s.Postgres.User
		pg.Password = s.Postgres.Password
		pg.Database = s.Postgres.Database
		if s.Postgres.SSLMode != "" {
			pg.SSLMode = s.Postgres.SSLMode
		}
		cfg.Postgres = pg
	}
	return cfg
}

// TickInterval is the server's simulation period.
func (s ServerConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickHz)
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	// If no origins configured, enforce same-origin policy
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// Extract host from origin URL (e.g., "http://localhost:3000" -> "localhost:3000")
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}

// ValidatePassword checks a new profile passphrase. Returns a message
// describing the problem, or "" if it is acceptable.
func (c *PasswordConfig) ValidatePassword(password string) string {
	minLen := c.MinLength
	if minLen == 0 {
		minLen = 8
	}
	if len(password) < minLen {
		return fmt.Sprintf("Password must be at least %d characters.", minLen)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if c.RequireUppercase && !hasUpper {
		return "Password must contain at least one uppercase letter."
	}
	if c.RequireLowercase && !hasLower {
		return "Password must contain at least one lowercase letter."
	}
	if c.RequireDigit && !hasDigit {
		return "Password must contain at least one digit."
	}

	return ""
}
