// Copyright (c) 2026 ComicZone. All rights reserved.

package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comiczone/comiczone/internal/platform/constants"
)

// RedisUnreadCache implements [UnreadCache] using Redis.
type RedisUnreadCache struct {
	client *redis.Client
}

// NewUnreadCache creates a new Redis-backed UnreadCache.
func NewUnreadCache(client *redis.Client) *RedisUnreadCache {
	return &RedisUnreadCache{client: client}
}

/*
Get returns the cached unread count for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: Cached count
  - bool: false on a cache miss
  - error: Connectivity failures
*/
func (cache *RedisUnreadCache) Get(context context.Context, userID string) (int, bool, error) {
	key := constants.RedisPrefixUnreadCount + userID

	count, err := cache.client.Get(context, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis_unread_cache_get_failed: %w", err)
	}

	return count, true, nil
}

/*
Set stores the unread count with a TTL.

Parameters:
  - context: context.Context
  - userID: string
  - count: int
  - ttl: time.Duration

Returns:
  - error: Connectivity failures
*/
func (cache *RedisUnreadCache) Set(context context.Context, userID string, count int, ttl time.Duration) error {
	key := constants.RedisPrefixUnreadCount + userID

	if err := cache.client.Set(context, key, count, ttl).Err(); err != nil {
		return fmt.Errorf("redis_unread_cache_set_failed: %w", err)
	}

	return nil
}

/*
Invalidate drops the cached count after a feed mutation.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Connectivity failures
*/
func (cache *RedisUnreadCache) Invalidate(context context.Context, userID string) error {
	key := constants.RedisPrefixUnreadCount + userID

	if err := cache.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_unread_cache_invalidate_failed: %w", err)
	}

	return nil
}
