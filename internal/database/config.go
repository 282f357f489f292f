package database

import (
	"fmt"
	"strings"
	"time"
)

// Config holds database connection configuration.
type Config struct {
	// Driver specifies which database to use: "sqlite" or "postgres"
	Driver string

	SQLitePath string

	Postgres PostgresConfig
}

// PostgresConfig holds PostgreSQL-specific configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a SQLite config for the given file.
func DefaultConfig(sqlitePath string) Config {
	return Config{
		Driver:     string(DialectSQLite),
		SQLitePath: sqlitePath,
	}
}

// DefaultPostgresConfig returns PostgresConfig with recommended pool settings.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Validate checks that the selected driver has what it needs to connect.
func (c Config) Validate() error {
	switch DialectType(c.Driver) {
	case DialectSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite driver requires a path")
		}
	case DialectPostgres:
		if c.Postgres.Host == "" || c.Postgres.Database == "" {
			return fmt.Errorf("postgres driver requires host and database")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Driver)
	}
	return nil
}

// DSN renders the lib/pq key=value connection string. Empty fields are left
// out so libpq environment defaults still apply.
func (p PostgresConfig) DSN() string {
	var parts []string
	add := func(key, value string) {
		if value == "" {
			return
		}
		if strings.ContainsAny(value, " '\\") {
			value = "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value) + "'"
		}
		parts = append(parts, key+"="+value)
	}
	add("host", p.Host)
	if p.Port != 0 {
		add("port", fmt.Sprint(p.Port))
	}
	add("user", p.User)
	add("password", p.Password)
	add("dbname", p.Database)
	add("sslmode", p.SSLMode)
	return strings.Join(parts, " ")
}
