package server

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/mankihq/manki/internal/search"
	"github.com/mankihq/manki/pkg/config"
	"github.com/mankihq/manki/pkg/logger"
	"github.com/mankihq/manki/pkg/metrics"
)

const cacheKeyPrefix = "manki:search:"

// QueryCache caches search responses in redis, deduplicating concurrent
// identical queries through singleflight. The cache is strictly an
// accelerator: any redis failure falls through to the engine.
type QueryCache struct {
	client  *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewQueryCache connects to redis per cfg. An unreachable redis is logged
// and yields a nil cache, which callers treat as cache-disabled.
func NewQueryCache(cfg config.CacheConfig, m *metrics.Metrics) *QueryCache {
	log := logger.WithComponent("query-cache")
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, query cache disabled", "addr", cfg.Addr, "error", err)
		client.Close()
		return nil
	}
	log.Info("query cache connected", "addr", cfg.Addr, "ttl", cfg.TTL)
	return &QueryCache{
		client:  client,
		ttl:     cfg.TTL,
		metrics: m,
		logger:  log,
	}
}

// GetOrCompute returns the cached response for (query, lang, limit) or
// computes, caches, and returns it. The boolean reports a cache hit.
func (c *QueryCache) GetOrCompute(ctx context.Context, query, lang string, limit int, computeFn func() (*search.Response, error)) (*search.Response, bool, error) {
	if c == nil {
		resp, err := computeFn()
		return resp, false, err
	}
	key := c.buildKey(query, lang, limit)
	if resp, ok := c.get(ctx, key); ok {
		c.metrics.CacheHitsTotal.Inc()
		return resp, true, nil
	}
	c.metrics.CacheMissesTotal.Inc()
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if resp, ok := c.get(ctx, key); ok {
			return resp, nil
		}
		resp, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*search.Response), false, nil
}

func (c *QueryCache) get(ctx context.Context, key string) (*search.Response, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var resp search.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return &resp, true
}

func (c *QueryCache) set(ctx context.Context, key string, resp *search.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached query response. Called after any write that
// changes the index.
func (c *QueryCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, cacheKeyPrefix+"*", 200).Result()
		if err != nil {
			c.logger.Warn("cache invalidate failed", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.logger.Warn("cache invalidate failed", "error", err)
				return
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Debug("cache invalidated", "keys_deleted", deleted)
}

// Ping reports cache connectivity for health checks.
func (c *QueryCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the redis connection pool.
func (c *QueryCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *QueryCache) buildKey(query, lang string, limit int) string {
	raw := fmt.Sprintf("%s:lang=%s:limit=%d", query, lang, limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", cacheKeyPrefix, hash[:16])
}
