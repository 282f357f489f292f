package database

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Dialect abstracts the SQL differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName is the name registered with database/sql.
	DriverName() string

	// Placeholder returns the bind parameter for a 1-indexed position.
	Placeholder(position int) string

	// SupportsLastInsertID is false when inserts must use RETURNING.
	SupportsLastInsertID() bool

	// ReturningClause is appended to INSERT statements that need the new key.
	ReturningClause(column string) string

	// InitStatements run once per connection pool before migrations.
	InitStatements() []string

	// IsDuplicateKeyError reports a unique constraint violation.
	IsDuplicateKeyError(err error) bool

	// PrimaryKey is the column definition of an auto-incrementing id.
	PrimaryKey() string

	// NameType is a text column type that compares case-insensitively.
	NameType() string
}

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect returns the dialect for the given type, SQLite when unknown.
func NewDialect(dialectType DialectType) Dialect {
	switch dialectType {
	case DialectPostgres:
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}

// SQLiteDialect targets modernc.org/sqlite.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string { return "sqlite" }
func (d *SQLiteDialect) Placeholder(position int) string { return "?" }
func (d *SQLiteDialect) SupportsLastInsertID() bool { return true }
func (d *SQLiteDialect) ReturningClause(column string) string { return "" }
func (d *SQLiteDialect) PrimaryKey() string { return "INTEGER PRIMARY KEY AUTOINCREMENT" }
func (d *SQLiteDialect) NameType() string { return "TEXT COLLATE NOCASE" }

func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// PostgresDialect targets github.com/lib/pq.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string { return "postgres" }
func (d *PostgresDialect) Placeholder(position int) string { return "$" + strconv.Itoa(position) }
func (d *PostgresDialect) SupportsLastInsertID() bool { return false }
func (d *PostgresDialect) PrimaryKey() string { return "SERIAL PRIMARY KEY" }
func (d *PostgresDialect) NameType() string { return "CITEXT" }

func (d *PostgresDialect) ReturningClause(column string) string {
	return " RETURNING " + column
}

func (d *PostgresDialect) InitStatements() []string {
	return []string{"CREATE EXTENSION IF NOT EXISTS citext"}
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func (d *PostgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, uniqueViolation) ||
		strings.Contains(msg, "unique constraint")
}

// QueryBuilder rewrites queries written with ? placeholders for a dialect.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a QueryBuilder for the dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build replaces each ? with the dialect's numbered placeholder.
func (qb *QueryBuilder) Build(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(qb.dialect.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BuildWithReturning builds an INSERT that yields column on dialects that
// lack LastInsertId.
func (qb *QueryBuilder) BuildWithReturning(query, column string) string {
	return qb.Build(query) + qb.dialect.ReturningClause(column)
}
