package ports

import (
	"context"

	"github.com/samirrijal/derniermetro/internal/core/domain"
)

// StationRepository resolves stations and their headways.
type StationRepository interface {
	// GetByName returns the station with the exact name, or domain.ErrNotFound.
	GetByName(ctx context.Context, name string) (*domain.Station, error)
	// Suggest returns up to limit station names containing query, case-insensitively.
	Suggest(ctx context.Context, query string, limit int) ([]string, error)
	List(ctx context.Context, offset, limit int) ([]domain.Station, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// LastDepartureRepository resolves recorded last departures.
type LastDepartureRepository interface {
	// GetByStation returns the last departure at the named station, or domain.ErrNotFound.
	GetByStation(ctx context.Context, name string) (*domain.LastDeparture, error)
}
