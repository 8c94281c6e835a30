package redis

import (
	"context"
	"fmt"
	"time"

	"pooled-multisender/pkg/apperror"

	"github.com/go-redsync/redsync/v4"
	rsgoredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LockOptions tunes mutex acquisition.
type LockOptions struct {
	// Expiry bounds how long a crashed holder keeps the key locked.
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultLockOptions suits ledger invocations that dispatch a full batch
// while holding the lock.
func DefaultLockOptions() LockOptions {
	return LockOptions{
		Expiry:     30 * time.Second,
		Tries:      32,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Locker implements ports.InvocationLocker with redsync mutexes, serializing
// invocations across every replica sharing the Redis instance.
type Locker struct {
	rs   *redsync.Redsync
	opts LockOptions
	log  zerolog.Logger
}

func NewLocker(client goredis.UniversalClient, opts LockOptions, log zerolog.Logger) *Locker {
	def := DefaultLockOptions()
	if opts.Expiry <= 0 {
		opts.Expiry = def.Expiry
	}
	if opts.Tries <= 0 {
		opts.Tries = def.Tries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = def.RetryDelay
	}
	return &Locker{
		rs:   redsync.New(rsgoredis.NewPool(client)),
		opts: opts,
		log:  log,
	}
}

// WithLock runs fn while holding the mutex for key. Failing to acquire it
// within the configured tries returns a SYS_002 error.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(
		"lock:"+key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("failed to acquire invocation lock")
		return apperror.ErrLockTimeout(fmt.Errorf("acquire %s: %w", key, err))
	}

	defer func() {
		// Release even when the invocation context was canceled mid-way.
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			l.log.Error().Err(err).Bool("ok", ok).Str("key", key).Msg("failed to release invocation lock")
		}
	}()

	return fn(ctx)
}
