package session

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// RedisBackend stores session keys in Redis under a shared namespace so a
// fleet of rendering instances observes the same token and login/logout
// markers. Works with both single-node and cluster clients.
type RedisBackend struct {
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// RedisBackendOption customizes the backend.
type RedisBackendOption func(*RedisBackend)

// WithRedisTTL bounds the lifetime of stored values. Zero keeps them until
// deleted.
func WithRedisTTL(ttl time.Duration) RedisBackendOption {
	return func(b *RedisBackend) {
		b.ttl = ttl
	}
}

// NewRedisBackend wraps a Redis client. Keys are prefixed with
// "<namespace>:".
func NewRedisBackend(client redis.UniversalClient, namespace string, opts ...RedisBackendOption) *RedisBackend {
	if namespace == "" {
		namespace = "session"
	}

	b := &RedisBackend{client: client, namespace: namespace}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	val, err := b.client.Get(ctx, b.namespaced(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "session store read failed")
	}
	return val, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, b.namespaced(key), value, b.ttl).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session store write failed")
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.namespaced(key)).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "session store delete failed")
	}
	return nil
}

func (b *RedisBackend) namespaced(key string) string {
	return b.namespace + ":" + key
}
