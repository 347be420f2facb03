// Copyright (c) 2026 Meridia Health. All rights reserved.

package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridia-health/meridia/internal/platform/constants"
)

// cacheTTL bounds how stale a cached document can get if invalidation is
// ever missed.
const cacheTTL = 15 * time.Minute

// RedisCache implements [Cache] on Redis with a fixed TTL.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates the Redis-backed document cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

/*
Get retrieves the cached record for an identity.

Description: Returns nil without error on a miss; a corrupt cached value
is treated as a miss.

Parameters:
  - context: context.Context
  - identityID: string

Returns:
  - *Preferences: Cached record (nil on miss)
  - error: Connectivity errors
*/
func (cache *RedisCache) Get(context context.Context, identityID string) (*Preferences, error) {
	raw, err := cache.client.Get(context, cacheKey(identityID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_preferences_get_failed: %w", err)
	}

	record := &Preferences{}
	if err := json.Unmarshal(raw, record); err != nil {
		// Corrupt cache entry: drop it and report a miss.
		_ = cache.client.Del(context, cacheKey(identityID)).Err()
		return nil, nil
	}
	return record, nil
}

/*
Set stores the record with the standard cache TTL.

Parameters:
  - context: context.Context
  - record: *Preferences

Returns:
  - error: Encoding or connectivity errors
*/
func (cache *RedisCache) Set(context context.Context, record *Preferences) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis_preferences_encode_failed: %w", err)
	}
	if err := cache.client.Set(context, cacheKey(record.IdentityID), raw, cacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_preferences_set_failed: %w", err)
	}
	return nil
}

func cacheKey(identityID string) string {
	return constants.RedisPrefixPreferences + identityID
}
