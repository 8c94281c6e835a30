package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// IdempotencyCache stores accepted submission responses by Idempotency-Key.
type IdempotencyCache struct {
	client goredis.UniversalClient
	ks     Keyspace
}

func NewIdempotencyCache(client goredis.UniversalClient, ks Keyspace) *IdempotencyCache {
	return &IdempotencyCache{client: client, ks: ks}
}

// Get returns nil, nil if the key does not exist.
func (c *IdempotencyCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.ks.Key("idempotency", key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis idempotency get: %w", err)
	}
	return val, nil
}

func (c *IdempotencyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.ks.Key("idempotency", key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}

func (c *IdempotencyCache) Reserve(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.ks.Key("idempotency", key), value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis idempotency reserve: %w", err)
	}
	return ok, nil
}

func (c *IdempotencyCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.ks.Key("idempotency", key)).Err(); err != nil {
		return fmt.Errorf("redis idempotency delete: %w", err)
	}
	return nil
}

// NonceStore remembers callback nonces until they expire.
type NonceStore struct {
	client goredis.UniversalClient
	ks     Keyspace
}

func NewNonceStore(client goredis.UniversalClient, ks Keyspace) *NonceStore {
	return &NonceStore{client: client, ks: ks}
}

// CheckAndSet reports whether nonce is new within scope and claims it.
func (s *NonceStore) CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error) {
	fresh, err := s.client.SetNX(ctx, s.ks.Key("nonce", scope, nonce), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis nonce check: %w", err)
	}
	return fresh, nil
}
