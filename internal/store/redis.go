package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felipesbonatti/case-credit-risk-prediction/internal/model"
)

// RedisQuoteCache implements QuoteCache on Redis. Quotes are stored as JSON
// with a TTL so catalog changes after a redeploy age out on their own.
type RedisQuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisQuoteCache creates a Redis-backed quote cache.
func NewRedisQuoteCache(rdb *redis.Client, ttl time.Duration) *RedisQuoteCache {
	return &RedisQuoteCache{rdb: rdb, ttl: ttl}
}

func (c *RedisQuoteCache) GetQuote(ctx context.Context, key string) (*model.Quote, error) {
	data, err := c.rdb.Get(ctx, quoteKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get quote %s: %w", key, err)
	}

	var q model.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		// A corrupt entry is treated as a miss; the next put overwrites it.
		return nil, ErrCacheMiss
	}
	return &q, nil
}

func (c *RedisQuoteCache) PutQuote(ctx context.Context, key string, q *model.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	return c.rdb.Set(ctx, quoteKey(key), data, c.ttl).Err()
}

func quoteKey(k string) string { return fmt.Sprintf("quote:%s", k) }
