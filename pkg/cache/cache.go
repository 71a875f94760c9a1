package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("key not found")

const cleanUpInterval = 10 * time.Minute

// Cache is a key/value store with optional per-key TTL.
type Cache[T any] interface {
	Set(ctx context.Context, key string, value T) error
	SetWithTTL(ctx context.Context, key string, value T, ttl time.Duration) error
	Get(ctx context.Context, key string) (T, error)
	// GetAll returns every live entry whose key is accepted by selectFunc.
	// A nil selectFunc accepts everything.
	GetAll(ctx context.Context, selectFunc func(string) bool) (map[string]T, error)
	Delete(ctx context.Context, key string) error
	UpdateTTL(ctx context.Context, key string, ttl time.Duration) error
}

type entry[T any] struct {
	value     T
	expiresAt time.Time // zero means no expiry
}

type memCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
}

// New returns an in-memory Cache. A background sweeper reclaims expired
// entries; reads never return them regardless of sweep timing.
func New[T any]() Cache[T] {
	c := &memCache[T]{
		entries: make(map[string]entry[T]),
	}

	go c.sweep()

	return c
}

func (c *memCache[T]) Set(_ context.Context, key string, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[T]{value: value}

	return nil
}

func (c *memCache[T]) SetWithTTL(_ context.Context, key string, value T, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[T]{value: value, expiresAt: time.Now().Add(ttl)}

	return nil
}

func (c *memCache[T]) Get(_ context.Context, key string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired() {
		var zero T
		return zero, ErrNotFound
	}

	return e.value, nil
}

func (c *memCache[T]) GetAll(_ context.Context, selectFunc func(string) bool) (map[string]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	values := make(map[string]T, len(c.entries))

	for key, e := range c.entries {
		if e.expired() {
			continue
		}

		if selectFunc != nil && !selectFunc(key) {
			continue
		}

		values[key] = e.value
	}

	return values, nil
}

func (c *memCache[T]) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

func (c *memCache[T]) UpdateTTL(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expired() {
		return ErrNotFound
	}

	e.expiresAt = time.Now().Add(ttl)
	c.entries[key] = e

	return nil
}

func (e entry[T]) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

func (c *memCache[T]) sweep() {
	ticker := time.NewTicker(cleanUpInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		for key, e := range c.entries {
			if e.expired() {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
