package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrNotFound     = errors.New("key not found")
	ErrEncodeFailed = errors.New("failed to encode value")
	ErrDecodeFailed = errors.New("failed to decode value")
)

// Cache stores msgpack-encoded values of type T in Redis under a common
// prefix. A nil *Cache is a cache that never hits.
type Cache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New returns a cache whose entries expire after ttl; ttl=0 keeps them.
func New[T any](client *redis.Client, prefix string, ttl time.Duration) *Cache[T] {
	return &Cache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache[T]) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *Cache[T]) Set(ctx context.Context, key string, value T) error {
	if c == nil {
		return nil
	}
	data, err := msgpack.Marshal(value)
	if err != nil {
		return errors.Join(ErrEncodeFailed, err)
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

// Get returns ErrNotFound if the key does not exist.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, error) {
	var value T
	if c == nil {
		return value, ErrNotFound
	}
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return value, ErrNotFound
		}
		return value, err
	}
	if err := msgpack.Unmarshal(data, &value); err != nil {
		return value, errors.Join(ErrDecodeFailed, err)
	}
	return value, nil
}

func (c *Cache[T]) Delete(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(key)).Err()
}
