package memory

import (
	"context"
	"sync"
	"time"
)

type expiringEntry struct {
	value     []byte
	expiresAt time.Time
}

// expiringMap is a mutex-guarded map whose entries lapse after their TTL.
// Expired entries are dropped lazily on access.
type expiringMap struct {
	mu      sync.Mutex
	entries map[string]expiringEntry
	now     func() time.Time
}

func newExpiringMap() *expiringMap {
	return &expiringMap{entries: make(map[string]expiringEntry), now: time.Now}
}

func (m *expiringMap) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.value, true
}

func (m *expiringMap) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *expiringMap) set(key string, value []byte, ttl time.Duration, onlyIfAbsent bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.entries[key]; ok && onlyIfAbsent && now.Before(e.expiresAt) {
		return false
	}
	m.entries[key] = expiringEntry{value: value, expiresAt: now.Add(ttl)}
	return true
}

// IdempotencyCache implements ports.IdempotencyCache for single-process runs.
type IdempotencyCache struct {
	m *expiringMap
}

func NewIdempotencyCache() *IdempotencyCache {
	return &IdempotencyCache{m: newExpiringMap()}
}

// Get returns nil, nil if the key does not exist or has expired.
func (c *IdempotencyCache) Get(_ context.Context, key string) ([]byte, error) {
	v, _ := c.m.get(key)
	return v, nil
}

func (c *IdempotencyCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	c.m.set(key, cp, ttl, false)
	return nil
}

func (c *IdempotencyCache) Reserve(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	cp := make([]byte, len(value))
	copy(cp, value)
	return c.m.set(key, cp, ttl, true), nil
}

func (c *IdempotencyCache) Delete(_ context.Context, key string) error {
	c.m.delete(key)
	return nil
}

// NonceStore implements ports.NonceStore for single-process runs.
type NonceStore struct {
	m *expiringMap
}

func NewNonceStore() *NonceStore {
	return &NonceStore{m: newExpiringMap()}
}

func (s *NonceStore) CheckAndSet(_ context.Context, scope string, nonce string, ttl time.Duration) (bool, error) {
	return s.m.set(scope+":"+nonce, nil, ttl, true), nil
}
