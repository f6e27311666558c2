// file: service/cache.go

package service

import (
	"context"
	"encoding/json"
	"errors"
	"modesta-resort-api/logger"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient defines the contract for a cache client.
// *redis.Client satisfies it; tests use one backed by miniredis.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

const (
	userCacheTTL     = 5 * time.Minute
	categoryCacheTTL = time.Hour

	categoriesCacheKey = "room_categories:all"
)

func userCacheKey(userID int) string {
	return "user:" + strconv.Itoa(userID)
}

// cacheGet reports a hit only when the key exists and decodes into dest.
// Every cache failure is logged and treated as a miss.
func cacheGet(ctx context.Context, c ICacheClient, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).WithField("key", key).Warn("Cache read failed, falling back to database")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Discarding undecodable cache entry")
		return false
	}
	return true
}

func cacheSet(ctx context.Context, c ICacheClient, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.Set(ctx, key, data, ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func cacheDel(ctx context.Context, c ICacheClient, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).WithField("keys", keys).Warn("Cache eviction failed")
	}
}
