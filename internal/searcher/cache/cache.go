// Package cache stores computed search results in Redis, keyed by the exact
// raw query string. Entries expire after the configured TTL (24h by default)
// and are never invalidated on document ingest: a repeat of the same query
// within the TTL is served from here even if the collection has since grown.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/searchfoundry/docsearch/pkg/config"
	apperrors "github.com/searchfoundry/docsearch/pkg/errors"
	pkgredis "github.com/searchfoundry/docsearch/pkg/redis"
)

const keyPrefix = "search:"

// Entry is a cached search computation: the ranked document ids and the
// score each id earned.
type Entry struct {
	RankedIDs []string           `json:"ranked_ids"`
	Scores    map[string]float64 `json:"scores"`
}

// QueryCache is the Redis-backed result cache.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache with the TTL from cfg.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached entry for the raw query, or ok=false on a miss.
// Expiry is enforced by Redis itself; an expired entry is a plain miss.
// Store errors other than key-not-found are returned, not masked as misses.
func (c *QueryCache) Get(ctx context.Context, query string) (*Entry, bool, error) {
	key := keyPrefix + query
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if pkgredis.IsNilError(err) {
			c.misses.Add(1)
			return nil, false, nil
		}
		return nil, false, apperrors.Newf(apperrors.ErrStoreFailure, 502, "cache get: %v", err)
	}
	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, false, apperrors.Newf(apperrors.ErrStoreFailure, 502, "cache entry corrupt: %v", err)
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query)
	return &entry, true, nil
}

// Put stores the entry under the raw query string, overwriting any existing
// entry for the same query and restarting its TTL (last write wins).
func (c *QueryCache) Put(ctx context.Context, query string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return apperrors.Newf(apperrors.ErrStoreFailure, 502, "cache marshal: %v", err)
	}
	if err := c.client.Set(ctx, keyPrefix+query, data, c.cfg.CacheTTL); err != nil {
		return apperrors.Newf(apperrors.ErrStoreFailure, 502, "cache put: %v", err)
	}
	return nil
}

// Invalidate removes every cached result. It exists for operators; nothing
// in the ingest path calls it.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return apperrors.Newf(apperrors.ErrStoreFailure, 502, "invalidating cache: %v", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters since startup.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
