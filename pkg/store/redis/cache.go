// Package redis provides an optional read-through cache for query
// responses. The graph is immutable between reloads, so cached responses
// stay valid for their TTL; cache failures degrade to direct execution.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gowri-arun/astraq-kg/pkg/query"
)

const keyPrefix = "astrakg:query:"

// ResultCache caches serialized query responses keyed by a canonical
// hash of the request.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a cache with the given TTL. A zero TTL means
// entries never expire (until the next flush).
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

// Key returns the cache key for a request: a sha256 over its canonical
// JSON encoding.
func Key(req query.Request) string {
	data, err := json.Marshal(req)
	if err != nil {
		// Request structs always marshal; guard anyway.
		return keyPrefix + "unhashable"
	}
	sum := sha256.Sum256(data)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached serialized response for req. A miss or any
// redis error returns ok=false.
func (c *ResultCache) Get(ctx context.Context, req query.Request) ([]byte, bool) {
	data, err := c.client.Get(ctx, Key(req)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("result_cache_get_failed", "error", err)
		}
		return nil, false
	}
	return data, true
}

// Set stores the serialized response for req. Errors are logged and
// swallowed; the cache is best-effort.
func (c *ResultCache) Set(ctx context.Context, req query.Request, response []byte) {
	if err := c.client.Set(ctx, Key(req), response, c.ttl).Err(); err != nil {
		slog.Warn("result_cache_set_failed", "error", err)
	}
}

// Flush drops every cached response. Called after a graph reload.
func (c *ResultCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
