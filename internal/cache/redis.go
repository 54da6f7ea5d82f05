package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emberdating/ember-server/internal/config"
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes a Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

// Get returns the value for key, or ("", nil) on a cache miss.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// GetExisting returns redis.Nil when the key is absent, letting callers
// distinguish a miss from an empty value (pool snapshots need this).
func (c *RedisCache) GetExisting(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.Client.Expire(ctx, key, ttl).Err()
}

// IsMiss reports whether err is the Redis key-missing sentinel.
func IsMiss(err error) bool { return errors.Is(err, redis.Nil) }

// KeyForReceivedLikeCount is the cached "who liked me" counter for a user.
func (c *RedisCache) KeyForReceivedLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:received:count:%d", userID)
}

// KeyForPoolGeneration is the per-user generation counter. INCR on every
// filter-driven rebuild; pagination never touches it.
func (c *RedisCache) KeyForPoolGeneration(userID uint64) string {
	return fmt.Sprintf("feed:pool:gen:%d", userID)
}

// KeyForPoolSnapshot addresses one immutable ranked-pool snapshot.
func (c *RedisCache) KeyForPoolSnapshot(userID, generation uint64) string {
	return fmt.Sprintf("feed:pool:%d:%d", userID, generation)
}
