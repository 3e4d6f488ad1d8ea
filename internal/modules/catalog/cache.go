package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "catalog:kw:"

// Cache stores per-keyword search results.
type Cache interface {
	Get(ctx context.Context, keyword string) ([]Product, bool, error)
	Set(ctx context.Context, keyword string, products []Product) error
}

// RedisCache keeps keyword results as JSON strings with a TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache returns a cache backed by rdb. A non-positive ttl defaults to ten minutes.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func cacheKey(keyword string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(keyword))
}

func (c *RedisCache) Get(ctx context.Context, keyword string) ([]Product, bool, error) {
	val, err := c.rdb.Get(ctx, cacheKey(keyword)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog cache get: %w", err)
	}
	var products []Product
	if err := json.Unmarshal(val, &products); err != nil {
		return nil, false, fmt.Errorf("catalog cache decode: %w", err)
	}
	return products, true, nil
}

func (c *RedisCache) Set(ctx context.Context, keyword string, products []Product) error {
	val, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("catalog cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(keyword), val, c.ttl).Err(); err != nil {
		return fmt.Errorf("catalog cache set: %w", err)
	}
	return nil
}
