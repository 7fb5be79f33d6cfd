// Package cache keeps JSON snapshots of read models in Redis. Every method is
// best effort for callers: a nil *Cache is a cache that always misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sonuudigital/lovecakes/internal/logs"
)

const (
	keyPrefix      = "lovecakes:"
	contextTimeout = 500 * time.Millisecond
	versionTTL     = 24 * time.Hour

	ProductType = "product"
	CartType    = "cart"
)

type Recorder interface {
	CacheLookup(cacheType string, hit bool)
}

type Cache struct {
	client   redis.Cmdable
	ttl      time.Duration
	logger   logs.Logger
	recorder Recorder
}

func New(client redis.Cmdable, ttl time.Duration, logger logs.Logger, recorder Recorder) *Cache {
	return &Cache{
		client:   client,
		ttl:      ttl,
		logger:   logger,
		recorder: recorder,
	}
}

func ProductKey(accountID, productID int64) string {
	return fmt.Sprintf("%s%s:%d:%d", keyPrefix, ProductType, accountID, productID)
}

func CartKey(accountID, userID int64) string {
	return fmt.Sprintf("%s%s:%d:%d", keyPrefix, CartType, accountID, userID)
}

// VersionKey holds the mutation counter guarding the snapshot under key.
func VersionKey(key string) string {
	return key + ":v"
}

// setIfVersion stores ARGV[2] under KEYS[1] only while KEYS[2] still holds
// ARGV[1]. A missing counter reads as "0".
const setIfVersion = `if (redis.call('GET', KEYS[2]) or '0') == ARGV[1] then
  return redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
end
return false`

// GetJSON decodes the value under key into dst and reports whether it was
// found. A redis error or an undecodable value counts as a miss.
func (c *Cache) GetJSON(ctx context.Context, cacheType, key string, dst any) bool {
	if c == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, contextTimeout)
	defer cancel()

	hit := false
	defer func() {
		if c.recorder != nil {
			c.recorder.CacheLookup(cacheType, hit)
		}
	}()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("failed to read cache", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return false
	}

	hit = true
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, contextTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

// Version returns the counter guarding key. Read it before loading the
// data to cache and hand it to SetJSONIfVersion.
func (c *Cache) Version(ctx context.Context, key string) (string, error) {
	if c == nil {
		return "0", nil
	}

	ctx, cancel := context.WithTimeout(ctx, contextTimeout)
	defer cancel()

	v, err := c.client.Get(ctx, VersionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cache version %s: %w", key, err)
	}
	return v, nil
}

// SetJSONIfVersion writes value under key unless Invalidate ran since
// version was read. It reports whether the value was stored.
func (c *Cache) SetJSONIfVersion(ctx context.Context, key, version string, value any) (bool, error) {
	if c == nil {
		return false, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal cache entry %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(ctx, contextTimeout)
	defer cancel()

	err = c.client.Eval(ctx, setIfVersion, []string{key, VersionKey(key)}, version, string(data), c.ttl.Milliseconds()).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return true, nil
}

// Invalidate bumps the counter of key before deleting it, so a reader that
// loaded its data before the change cannot store it afterwards.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, contextTimeout)
	defer cancel()

	versionKey := VersionKey(key)
	var errs []error
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		errs = append(errs, fmt.Errorf("failed to bump cache version %s: %w", key, err))
	} else if err := c.client.Expire(ctx, versionKey, versionTTL).Err(); err != nil {
		errs = append(errs, fmt.Errorf("failed to expire cache version %s: %w", key, err))
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete cache entry %s: %w", key, err))
	}
	return errors.Join(errs...)
}
