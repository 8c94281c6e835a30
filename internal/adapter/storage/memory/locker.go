package memory

import (
	"context"
	"sync"

	"pooled-multisender/pkg/apperror"
)

// KeyedLocker implements ports.InvocationLocker with one channel-based mutex
// per key. Idle keys are released.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyLock)}
}

// WithLock runs fn while holding key. Waiting is abandoned when ctx is done.
func (l *KeyedLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	kl := l.acquire(key)
	defer l.release(key, kl)

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		return apperror.ErrLockTimeout(ctx.Err())
	}
	defer func() { <-kl.ch }()

	return fn(ctx)
}

func (l *KeyedLocker) acquire(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *KeyedLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}
