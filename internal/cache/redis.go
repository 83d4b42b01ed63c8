package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/metrics"
	"travel-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Cache stores rendered catalog listings. Every page of a kind lives in one hash so a write
// to that kind can drop all of them at once.
type Cache interface {
	Get(ctx context.Context, kind, key string, dest any) (bool, error)
	Set(ctx context.Context, kind, key string, value any) error
	Invalidate(ctx context.Context, kind string) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg utils.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    cfg.TTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, kind, key string, dest any) (bool, error) {
	data, err := c.client.HGet(ctx, catalogKey(kind), key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues(kind).Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", kind, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", kind, err)
	}
	metrics.CacheHits.WithLabelValues(kind).Inc()
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, kind, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", kind, err)
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, catalogKey(kind), key, payload)
	pipe.Expire(ctx, catalogKey(kind), c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set %s: %w", kind, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, kind string) error {
	return c.client.Del(ctx, catalogKey(kind)).Err()
}

func catalogKey(kind string) string {
	return "cache:catalog:" + kind
}

// ListKey identifies one page of a search within a list view of a kind.
func ListKey(view, search string, page, perPage int) string {
	return fmt.Sprintf("v=%s:q=%s:p=%d:n=%d", view, search, page, perPage)
}

// Noop is used when no Redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, string, any) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, string, any) error { return nil }

func (Noop) Invalidate(context.Context, string) error { return nil }
