package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samirrijal/derniermetro/internal/core/domain"
	"github.com/samirrijal/derniermetro/internal/core/ports"
)

// MaxSuggestions caps the number of names offered for an unknown station.
const MaxSuggestions = 5

// StationService handles station lookups.
type StationService struct {
	stations ports.StationRepository
	cache    ports.CacheService
}

// NewStationService creates a new StationService. cache may be nil.
func NewStationService(stations ports.StationRepository, cache ports.CacheService) *StationService {
	return &StationService{stations: stations, cache: cache}
}

// Get returns a station by exact name.
func (s *StationService) Get(ctx context.Context, name string) (*domain.Station, error) {
	if name == "" {
		return nil, fmt.Errorf("station name must not be empty")
	}

	cacheKey := "stations:name:" + strings.ToLower(name)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var st domain.Station
			if err := json.Unmarshal(data, &st); err == nil && st.Name == name {
				return &st, nil
			}
		}
	}

	st, err := s.stations.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	// Headways change rarely; 5 minutes is enough.
	if s.cache != nil {
		if data, err := json.Marshal(st); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}

	return st, nil
}

// Suggest returns up to MaxSuggestions station names containing query.
// Lookup failures yield an empty list.
func (s *StationService) Suggest(ctx context.Context, query string) []string {
	if query == "" {
		return []string{}
	}
	names, err := s.stations.Suggest(ctx, query, MaxSuggestions)
	if err != nil {
		slog.WarnContext(ctx, "station suggestion lookup failed", "query", query, "error", err)
		return []string{}
	}
	if names == nil {
		names = []string{}
	}
	if len(names) > MaxSuggestions {
		names = names[:MaxSuggestions]
	}
	return names
}

// List returns a page of stations and the total station count.
func (s *StationService) List(ctx context.Context, offset, limit int) ([]domain.Station, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	total, err := s.stations.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count stations: %w", err)
	}
	if offset >= total {
		return []domain.Station{}, total, nil
	}

	stations, err := s.stations.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list stations: %w", err)
	}
	return stations, total, nil
}

// Ping checks the station store.
func (s *StationService) Ping(ctx context.Context) error {
	return s.stations.Ping(ctx)
}

// IsNotFound reports whether err means the station does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
