package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samirrijal/derniermetro/internal/core/domain"
)

// StationRepo implements ports.StationRepository on SQLite.
type StationRepo struct {
	db *DB
}

// NewStationRepo creates a new StationRepo.
func NewStationRepo(db *DB) *StationRepo {
	return &StationRepo{db: db}
}

// GetByName returns the station with the exact name together with its headway.
func (r *StationRepo) GetByName(ctx context.Context, name string) (*domain.Station, error) {
	var (
		s         domain.Station
		createdAt string
	)
	err := r.db.conn.QueryRowContext(ctx, `
		SELECT s.id, s.name, s.line, h.minutes, s.created_at
		FROM stations s
		JOIN headways h ON h.station_id = s.id
		WHERE s.name = ?
	`, name).Scan(&s.ID, &s.Name, &s.Line, &s.HeadwayMinutes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("station %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get station %q: %w", name, err)
	}
	s.CreatedAt = parseTimestamp(createdAt)
	return &s, nil
}

// Suggest returns up to limit station names containing query. Case folding is
// ASCII-only, as with SQLite's lower().
func (r *StationRepo) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT name FROM stations
		WHERE lower(name) LIKE ? ESCAPE '\'
		ORDER BY name
		LIMIT ?
	`, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("suggest stations: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// List returns a page of stations ordered by name.
func (r *StationRepo) List(ctx context.Context, offset, limit int) ([]domain.Station, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT s.id, s.name, s.line, COALESCE(h.minutes, 0), s.created_at
		FROM stations s
		LEFT JOIN headways h ON h.station_id = s.id
		ORDER BY s.name
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer rows.Close()

	var out []domain.Station
	for rows.Next() {
		var (
			s         domain.Station
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Line, &s.HeadwayMinutes, &createdAt); err != nil {
			return nil, err
		}
		s.CreatedAt = parseTimestamp(createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the number of stations.
func (r *StationRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx, `SELECT count(*) FROM stations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stations: %w", err)
	}
	return n, nil
}

// Ping checks the database.
func (r *StationRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// parseTimestamp reads the RFC3339 text SQLite stores; unparsable values yield nil.
func parseTimestamp(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
