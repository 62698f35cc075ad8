// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// values.go provides a Valkey-backed JSON value cache. Storage
// statistics walk the whole storage tree, so the admin dashboard reads
// them through here; a catalog sync invalidates the lot.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// valueKeyPrefix is the Valkey key prefix for cached values.
	valueKeyPrefix = "value:"

	// DefaultValueTTL is how long a cached value stays fresh.
	DefaultValueTTL = 5 * time.Minute
)

// StorageStatsKey is the cache key for the storage statistics blob.
const StorageStatsKey = "storage_stats"

// ValueCache caches JSON-encoded values in Valkey. All operations are
// best-effort: errors are logged and reported as misses.
type ValueCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValueCache creates a value cache backed by the given Valkey client.
func NewValueCache(client *redis.Client, ttl time.Duration) *ValueCache {
	if ttl == 0 {
		ttl = DefaultValueTTL
	}
	return &ValueCache{client: client, ttl: ttl}
}

// Get loads and decodes the cached value for key into out. Returns
// false on a miss or decode failure.
func (vc *ValueCache) Get(ctx context.Context, key string, out any) bool {
	payload, err := vc.client.Get(ctx, valueKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("value cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		slog.Warn("value cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("value cache hit", "key", key)
	return true
}

// Set encodes and stores a value for key with the configured TTL.
func (vc *ValueCache) Set(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		slog.Warn("value cache encode error", "key", key, "error", err)
		return
	}
	if err := vc.client.Set(ctx, valueKeyPrefix+key, payload, vc.ttl).Err(); err != nil {
		slog.Warn("value cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached value.
func (vc *ValueCache) Invalidate(ctx context.Context, key string) {
	if err := vc.client.Del(ctx, valueKeyPrefix+key).Err(); err != nil {
		slog.Warn("value cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("value cache invalidated", "key", key)
}

// InvalidateAll removes every cached value by scanning for the prefix.
// Called after a catalog sync, since any cached read could be stale.
func (vc *ValueCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := vc.client.Scan(ctx, cursor, valueKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("value cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := vc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("value cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("value cache fully cleared", "deleted", deleted)
	}
}
