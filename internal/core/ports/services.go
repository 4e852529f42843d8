package ports

import (
	"context"

	"github.com/samirrijal/derniermetro/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishLastTrain(ctx context.Context, alert *domain.LastTrainAlert) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
