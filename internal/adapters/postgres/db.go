package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/derniermetro/internal/pkg/metrics"
)

// DB wraps pgxpool.Pool and provides a shared connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB connection pool capped at maxConns.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Ping checks that the database answers.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// ReportPoolStats publishes pool gauges every interval until ctx is done.
func (db *DB) ReportPoolStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Close releases pool resources.
func (db *DB) Close() {
	db.Pool.Close()
}

// likePattern escapes LIKE metacharacters in q and wraps it for a substring match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
