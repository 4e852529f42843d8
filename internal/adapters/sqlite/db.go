// Package sqlite is an embedded station store backed by modernc.org/sqlite.
// It mirrors the Postgres schema and is seeded on open.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

//go:embed seed.sql
var seedSQL string

// DB wraps a SQLite connection.
type DB struct {
	conn *sql.DB
}

// Open opens the database at path (":memory:" is allowed), then applies the
// schema and seed data.
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite has a single writer, and every :memory: connection is its own database.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			slog.Warn("sqlite pragma failed", "pragma", pragma, "error", err)
		}
	}

	db := &DB{conn: conn}
	if err := db.exec(ctx, "schema", schemaSQL); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.exec(ctx, "seed", seedSQL); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("sqlite database ready", "path", path)
	return db, nil
}

func (db *DB) exec(ctx context.Context, what, script string) error {
	if _, err := db.conn.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("apply %s: %w", what, err)
	}
	return nil
}

// Ping checks that the database answers.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}
