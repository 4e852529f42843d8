package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/derniermetro/internal/core/domain"
)

// StationRepo implements ports.StationRepository with pgx.
type StationRepo struct {
	db *DB
}

// NewStationRepo creates a new StationRepo.
func NewStationRepo(db *DB) *StationRepo {
	return &StationRepo{db: db}
}

// GetByName returns the station with the exact name together with its headway.
// Stations without a headway row are not served.
func (r *StationRepo) GetByName(ctx context.Context, name string) (*domain.Station, error) {
	var s domain.Station
	err := r.db.Pool.QueryRow(ctx, `
		SELECT s.id, s.name, s.line, h.minutes, s.created_at
		FROM stations s
		JOIN headways h ON h.station_id = s.id
		WHERE s.name = $1
	`, name).Scan(&s.ID, &s.Name, &s.Line, &s.HeadwayMinutes, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("station %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get station %q: %w", name, err)
	}
	return &s, nil
}

// Suggest returns up to limit station names containing query, case-insensitively.
func (r *StationRepo) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name FROM stations
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT $2
	`, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("suggest stations: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan suggestions: %w", err)
	}
	return names, nil
}

// List returns a page of stations ordered by name.
func (r *StationRepo) List(ctx context.Context, offset, limit int) ([]domain.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT s.id, s.name, s.line, COALESCE(h.minutes, 0), s.created_at
		FROM stations s
		LEFT JOIN headways h ON h.station_id = s.id
		ORDER BY s.name
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer rows.Close()

	var out []domain.Station
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(&s.ID, &s.Name, &s.Line, &s.HeadwayMinutes, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the number of stations.
func (r *StationRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM stations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stations: %w", err)
	}
	return n, nil
}

// Ping checks the database.
func (r *StationRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
