package ports

import (
	"context"
	"time"

	"pooled-multisender/internal/core/domain"
)

//go:generate mockgen -source=stores.go -destination=mocks/mock_stores.go -package=mocks

// UpdateFunc computes the next balance of an account from its current one.
// exists is false when the account has no entry; current is then zero.
// Returning an error aborts the update without writing.
type UpdateFunc func(current domain.Amount, exists bool) (domain.Amount, error)

// BalanceStore is the ledger's only persistent state: account id to balance.
// Absent entries read as zero. Entries are never deleted.
type BalanceStore interface {
	// Get returns the balance of account and whether an entry exists.
	Get(ctx context.Context, account string) (domain.Amount, bool, error)
	// Update atomically applies fn to the account's entry, creating it if
	// absent, and returns the stored result.
	Update(ctx context.Context, account string, fn UpdateFunc) (domain.Amount, error)
}

// InvocationLocker serializes ledger invocations sharing a key.
type InvocationLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Queue is a FIFO handoff between the dispatching side and a worker pool.
type Queue[T any] interface {
	Push(ctx context.Context, item T) error
	// Pop blocks up to timeout. It returns ok=false when nothing arrived.
	Pop(ctx context.Context, timeout time.Duration) (item T, ok bool, err error)
}

// IdempotencyCache stores responses of already-processed submissions.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Reserve stores value only if key is absent and reports whether it did.
	Reserve(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, scope string, nonce string, ttl time.Duration) (bool, error)
}

// RateLimitStore counts requests per key in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// HealthChecker is implemented by every backing store the readiness probe
// reports on.
type HealthChecker interface {
	// Ping returns nil when the dependency is usable.
	Ping(ctx context.Context) error
	Name() string
}
