package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by Redis.
const DefaultPrefix = "readlater:"

// Redis is a Store backed by a redis server.
type Redis struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) RedisOption {
	return func(r *Redis) { r.timeout = d }
}

// NewRedis connects to the server at url, e.g. redis://localhost:6379/0.
func NewRedis(url string, opts ...RedisOption) (*Redis, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisClient(redis.NewClient(ropts), opts...), nil
}

// NewRedisClient wraps an existing client.
func NewRedisClient(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{
		client:  client,
		prefix:  DefaultPrefix,
		timeout: 3 * time.Second,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Redis) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Get retrieves a value.
func (r *Redis) Get(key string) ([]byte, error) {
	ctx, cancel := r.ctx()
	defer cancel()

	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Put stores a value without expiry.
func (r *Redis) Put(key string, value []byte) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value.
func (r *Redis) Delete(key string) error {
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
