// Package database persists player profiles and finished runs in SQLite or
// PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
)

// Database wraps the connection pool and the dialect used to talk to it.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig connects with the configured driver and migrates the schema.
func OpenWithConfig(cfg Config) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, ok := dialect.(*PostgresDialect); ok {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init statement %q: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database opened", "driver", dialect.DriverName())
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Dialect returns the SQL dialect in use.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

func (d *Database) migrate() error {
	pk := d.dialect.PrimaryKey()
	name := d.dialect.NameType()

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id ` + pk + `,
			name ` + name + ` UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			level INTEGER NOT NULL DEFAULT 0,
			money INTEGER NOT NULL DEFAULT 0,
			range_level INTEGER NOT NULL DEFAULT 0,
			battery_level INTEGER NOT NULL DEFAULT 0,
			attack_level INTEGER NOT NULL DEFAULT 0,
			fire INTEGER NOT NULL DEFAULT 0,
			water INTEGER NOT NULL DEFAULT 0,
			grass INTEGER NOT NULL DEFAULT 0,
			fire_uses INTEGER NOT NULL DEFAULT 0,
			water_uses INTEGER NOT NULL DEFAULT 0,
			grass_uses INTEGER NOT NULL DEFAULT 0,
			battery INTEGER NOT NULL DEFAULT 25,
			attack_selected INTEGER NOT NULL DEFAULT 0,
			enemies_killed INTEGER NOT NULL DEFAULT 0,
			levels_completed INTEGER NOT NULL DEFAULT 0,
			deaths INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS runs (
			id ` + pk + `,
			profile ` + name + ` NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			depth INTEGER NOT NULL DEFAULT 0,
			kills INTEGER NOT NULL DEFAULT 0,
			won INTEGER NOT NULL DEFAULT 0,
			ended_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_score ON runs(score)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
