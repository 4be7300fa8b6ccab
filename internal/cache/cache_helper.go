package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classward/test-delivery-service/internal/models"
)

// CacheHelper provides common caching operations for repositories.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

// CacheConfig defines cache configuration for different data types.
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Short-lived cache for frequently accessed entities
	FastCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "fast:",
	}

	TestCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "test:",
	}

	QuestionCacheConfig = CacheConfig{
		TTL:    10 * time.Minute,
		Prefix: "question:",
	}
)

// Cache errors
var (
	ErrCacheNotAvailable = fmt.Errorf("cache not available")
	ErrCacheNotFound     = fmt.Errorf("cache not found")
	ErrLockNotAcquired   = fmt.Errorf("lock not acquired")
)

// ===== KEY BUILDERS =====

func QuestionKey(id uint) string {
	return fmt.Sprintf("question:id:%d", id)
}

func TestKey(id uint, scope models.AuthContext) string {
	return fmt.Sprintf("test:id:%d:%s", id, scope.TenantID)
}

func AttemptKey(id uint) string {
	return fmt.Sprintf("attempt:id:%d", id)
}

// AttemptStartLockKey serializes attempt creation per (test, user) so two
// racing starts cannot both pass the attempt-count check.
func AttemptStartLockKey(testID uint, userID string) string {
	return fmt.Sprintf("lock:attempt-start:%d:%s", testID, userID)
}

// GetCacheKey generates a cache key with prefix.
func (c *CacheHelper) GetCacheKey(key string) string {
	return fmt.Sprintf("%s%s", c.prefix, key)
}

// Get retrieves and unmarshals data from cache.
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	cacheKey := c.GetCacheKey(key)
	data, err := c.client.Get(ctx, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

// Set marshals and stores data in cache. Degrades gracefully when no client
// is configured.
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	cacheKey := c.GetCacheKey(key)
	return c.client.Set(ctx, cacheKey, data, ttl).Err()
}

// Delete removes keys from cache.
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
	}
	return c.client.Del(ctx, cacheKeys...).Err()
}

// CacheOrExecute implements the cache-aside pattern: serve from cache when
// possible, otherwise run fetchFunc and populate the cache in the background.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetchFunc func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}

	if err != ErrCacheNotFound && err != ErrCacheNotAvailable {
		slog.Info("Cache get error, proceeding to fetch", "error", err, "key", key)
	}

	value, err := fetchFunc()
	if err != nil {
		return err
	}

	go func(parentCtx context.Context) {
		ctxWithTimeout, cancel := context.WithTimeout(context.WithoutCancel(parentCtx), 5*time.Second)
		defer cancel()
		if err := c.Set(ctxWithTimeout, key, value, ttl); err != nil {
			slog.Error("Cache set error", "error", err, "key", key)
		}
	}(ctx)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// ===== LOCKING =====

// AcquireLock takes a short SetNX lease on key. Callers must ReleaseLock.
// With no redis configured the lock is a no-op: the database unique
// constraint remains the hard guarantee.
func (c *CacheHelper) AcquireLock(ctx context.Context, key string, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	ok, err := c.client.SetNX(ctx, c.GetCacheKey(key), "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("cache lock error: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}
	return nil
}

func (c *CacheHelper) ReleaseLock(ctx context.Context, key string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.GetCacheKey(key)).Err(); err != nil {
		slog.Error("Cache unlock error", "error", err, "key", key)
	}
}

// ===== MANAGER =====

// CacheManager manages the cache helpers used across repositories.
type CacheManager struct {
	Test     *CacheHelper
	Question *CacheHelper
	Fast     *CacheHelper
	Lock     *CacheHelper
}

func NewCacheManager(client *redis.Client) *CacheManager {
	if client == nil {
		return &CacheManager{
			Test:     NewCacheHelper(nil, ""),
			Question: NewCacheHelper(nil, ""),
			Fast:     NewCacheHelper(nil, ""),
			Lock:     NewCacheHelper(nil, ""),
		}
	}

	return &CacheManager{
		Test:     NewCacheHelper(client, TestCacheConfig.Prefix),
		Question: NewCacheHelper(client, QuestionCacheConfig.Prefix),
		Fast:     NewCacheHelper(client, FastCacheConfig.Prefix),
		Lock:     NewCacheHelper(client, ""),
	}
}

// Invalidate drops an entity key from every helper; failures are logged only.
func (cm *CacheManager) Invalidate(ctx context.Context, keys ...string) {
	for _, helper := range []*CacheHelper{cm.Test, cm.Question, cm.Fast} {
		if err := helper.Delete(ctx, keys...); err != nil {
			slog.Error("Cache invalidate error", "error", err, "keys", keys)
		}
	}
}

// HealthCheck verifies cache connectivity.
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.Fast.client == nil {
		return ErrCacheNotAvailable
	}

	if _, err := cm.Fast.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
