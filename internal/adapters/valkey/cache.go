package valkey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/samirrijal/derniermetro/internal/pkg/metrics"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache implements ports.CacheService using Valkey (Redis-compatible).
type Cache struct {
	client valkey.Client
}

// New creates a new Valkey cache client.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client valkey.Client) *Cache {
	return &Cache{client: client}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		metrics.CacheMisses.WithLabelValues("get").Inc()
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	metrics.CacheHits.WithLabelValues("get").Inc()
	return b, nil
}

// Set stores a value with a TTL in seconds.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	cmd := c.client.Do(ctx,
		c.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Ex(time.Duration(ttlSeconds)*time.Second).Build(),
	)
	return cmd.Error()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	cmd := c.client.Do(ctx, c.client.B().Del().Key(key).Build())
	return cmd.Error()
}

// Ping checks that the server answers.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}
