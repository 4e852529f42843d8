package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samirrijal/derniermetro/internal/core/domain"
)

// LastDepartureRepo implements ports.LastDepartureRepository on SQLite.
type LastDepartureRepo struct {
	db *DB
}

// NewLastDepartureRepo creates a new LastDepartureRepo.
func NewLastDepartureRepo(db *DB) *LastDepartureRepo {
	return &LastDepartureRepo{db: db}
}

// GetByStation returns the recorded last departure at the named station.
func (r *LastDepartureRepo) GetByStation(ctx context.Context, name string) (*domain.LastDeparture, error) {
	var d domain.LastDeparture
	err := r.db.conn.QueryRowContext(ctx, `
		SELECT s.name, l.departed_at
		FROM stations s
		JOIN last_metro l ON l.station_id = s.id
		WHERE s.name = ?
	`, name).Scan(&d.Station, &d.DepartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("last departure at %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get last departure at %q: %w", name, err)
	}
	return &d, nil
}
