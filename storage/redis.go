package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis is a Storage implementation backed by Redis. It lets several
// headless clients (bots, CLIs) share one persisted session under a
// common key prefix.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures the Redis store.
type RedisOption func(*Redis)

// WithPrefix sets a key prefix; keys are stored as "{prefix}:{key}".
// Useful when multiple SDK instances share one Redis database.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// NewRedis creates a Redis-backed store over an existing client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: "hubclient"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get retrieves a value by key.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.prefixedKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

// Set stores a value without expiration; session expiry is governed by the
// token's own exp claim, not by the storage layer.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefixedKey(key), value, 0).Err()
}

// Delete removes a key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefixedKey(key)).Err()
}

// Clear removes all keys under the configured prefix using SCAN,
// which does not block the server.
func (r *Redis) Clear(ctx context.Context) error {
	pattern := r.prefixedKey("*")
	var cursor uint64

	for {
		keys, nextCursor, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (r *Redis) prefixedKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

var _ Storage = (*Redis)(nil)
