package memory

import (
	"context"
	"time"
)

// Queue implements ports.Queue over a buffered channel.
type Queue[T any] struct {
	ch chan T
}

func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Push blocks while the queue is full.
func (q *Queue[T]) Push(ctx context.Context, item T) error {
	select {
	case q.ch <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) Pop(ctx context.Context, timeout time.Duration) (T, bool, error) {
	var zero T
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case item := <-q.ch:
		return item, true, nil
	case <-timer.C:
		return zero, false, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}
