package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	stperrors "github.com/matzehuels/stackplot/pkg/errors"
)

// RedisCache stores entries in Redis under a key prefix. Expiry uses
// Redis TTLs.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// DefaultRedisPrefix namespaces stackplot keys.
const DefaultRedisPrefix = "stackplot:"

// NewRedisCache connects to the server at url ("redis://host:6379/0")
// and pings it.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, stperrors.Wrap(stperrors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	c := NewRedisCacheFromClient(redis.NewClient(opts), DefaultRedisPrefix)
	if err := c.client.Ping(ctx).Err(); err != nil {
		_ = c.client.Close()
		return nil, stperrors.Wrap(stperrors.ErrCodeLoadFailed, err, "connect to redis at %s", opts.Addr)
	}
	return c, nil
}

// NewRedisCacheFromEnv connects to $STACKPLOT_REDIS_URL. ok is false if
// the variable is unset.
func NewRedisCacheFromEnv(ctx context.Context) (c *RedisCache, ok bool, err error) {
	url := os.Getenv("STACKPLOT_REDIS_URL")
	if url == "" {
		return nil, false, nil
	}
	c, err = NewRedisCache(ctx, url)
	return c, true, err
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		v, err := c.client.Get(ctx, c.prefix+key).Bytes()
		data = v
		return classify(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in the cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Del(ctx, c.prefix+key).Err())
	})
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// classify marks network failures as retryable.
func classify(err error) error {
	var ne net.Error
	if errors.As(err, &ne) {
		return Retryable(err)
	}
	return err
}

var _ Cache = (*RedisCache)(nil)
