package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pooled-multisender/internal/core/domain"
	"pooled-multisender/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func TestDepositStore_AbsentReadsAsZero(t *testing.T) {
	store := NewDepositStore()

	balance, exists, err := store.Get(context.Background(), "nobody.near")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.True(t, balance.IsZero())
}

func TestDepositStore_UpdateCreatesAndKeepsZeroEntries(t *testing.T) {
	ctx := context.Background()
	store := NewDepositStore()

	got, err := store.Update(ctx, "alice.near", func(cur domain.Amount, exists bool) (domain.Amount, error) {
		assert.False(t, exists)
		return cur.Add64(100), nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(100), got)

	_, err = store.Update(ctx, "alice.near", func(cur domain.Amount, exists bool) (domain.Amount, error) {
		assert.True(t, exists)
		return uint128.Zero, nil
	})
	require.NoError(t, err)

	balance, exists, err := store.Get(ctx, "alice.near")
	require.NoError(t, err)
	assert.True(t, exists, "zeroed entries persist")
	assert.True(t, balance.IsZero())
	assert.Equal(t, 1, store.Accounts())
}

func TestDepositStore_UpdateErrorLeavesBalance(t *testing.T) {
	ctx := context.Background()
	store := NewDepositStore()
	_, err := store.Update(ctx, "alice.near", func(domain.Amount, bool) (domain.Amount, error) {
		return uint128.From64(5), nil
	})
	require.NoError(t, err)

	_, err = store.Update(ctx, "alice.near", func(domain.Amount, bool) (domain.Amount, error) {
		return uint128.Zero, apperror.ErrNothingToWithdraw()
	})
	assert.True(t, apperror.Is(err, apperror.CodeNothingToWithdraw))

	balance, _, _ := store.Get(ctx, "alice.near")
	assert.Equal(t, uint128.From64(5), balance)
}

func TestDepositStore_ConcurrentUpdatesAreAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewDepositStore()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, "alice.near", func(cur domain.Amount, _ bool) (domain.Amount, error) {
				return cur.Add64(1), nil
			})
		}()
	}
	wg.Wait()

	balance, _, _ := store.Get(ctx, "alice.near")
	assert.Equal(t, uint128.From64(100), balance)
}

func TestKeyedLocker_SerializesSameKey(t *testing.T) {
	locker := NewKeyedLocker()
	var inside, maxInside int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), "alice.near", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locker.locks, "idle keys are released")
}

func TestKeyedLocker_ContextCancelledWhileWaiting(t *testing.T) {
	locker := NewKeyedLocker()
	held := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = locker.WithLock(context.Background(), "k", func(ctx context.Context) error {
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := locker.WithLock(ctx, "k", func(ctx context.Context) error { return nil })
	close(done)

	assert.True(t, apperror.Is(err, apperror.CodeLockTimeout))
}

func TestKeyedLocker_ReturnsFnError(t *testing.T) {
	locker := NewKeyedLocker()
	want := errors.New("boom")

	err := locker.WithLock(context.Background(), "k", func(ctx context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}

func TestQueue_PushPop(t *testing.T) {
	ctx := context.Background()
	q := NewQueue[int](2)

	require.NoError(t, q.Push(ctx, 1))
	require.NoError(t, q.Push(ctx, 2))
	assert.Equal(t, 2, q.Len())

	v, ok, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestQueue_PopTimesOut(t *testing.T) {
	q := NewQueue[string](1)

	_, ok, err := q.Pop(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueue_PushRespectsContext(t *testing.T) {
	q := NewQueue[int](0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, q.Push(ctx, 1), context.Canceled)
}
