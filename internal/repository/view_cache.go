package repository

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ViewCache is a generic JSON-backed Redis cache for read-side projections.
// Bind it to a value type T; pass ttl 0 for keys that should not expire.
// Cache errors are logged rather than returned — a cache miss is never fatal.
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewViewCache[T any](client *goredis.Client, ttl time.Duration, log zerolog.Logger) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl, log: log.With().Str("component", "view_cache").Logger()}
}

// Get retrieves and unmarshals a value. Returns (nil, false) on any miss or
// deserialisation error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Set marshals value and stores it under key.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache marshal error")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write error")
	}
}
