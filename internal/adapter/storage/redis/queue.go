package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Queue implements ports.Queue[T] on a Redis list. Items are JSON encoded,
// pushed with LPUSH and popped with BRPOP so the list behaves as FIFO.
type Queue[T any] struct {
	client goredis.UniversalClient
	key    string
}

// NewQueue creates a queue stored under the list ks:queue:name.
func NewQueue[T any](client goredis.UniversalClient, ks Keyspace, name string) *Queue[T] {
	return &Queue[T]{
		client: client,
		key:    ks.Key("queue", name),
	}
}

// Push appends item to the tail of the queue.
func (q *Queue[T]) Push(ctx context.Context, item T) error {
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding queue item: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("redis queue push: %w", err)
	}
	return nil
}

// Pop removes the head of the queue, waiting up to timeout for an item.
func (q *Queue[T]) Pop(ctx context.Context, timeout time.Duration) (T, bool, error) {
	var item T

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return item, false, nil
		}
		return item, false, fmt.Errorf("redis queue pop: %w", err)
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return item, false, fmt.Errorf("redis queue pop: unexpected reply of %d elements", len(res))
	}

	if err := json.Unmarshal([]byte(res[1]), &item); err != nil {
		return item, false, fmt.Errorf("decoding queue item: %w", err)
	}
	return item, true, nil
}

// Len returns the number of queued items.
func (q *Queue[T]) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis queue len: %w", err)
	}
	return n, nil
}
