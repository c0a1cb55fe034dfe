package cache

import (
	"context"
	"time"
)

// Tier is a TTL cache filled through a Flight: a key that is missing from
// the cache is produced at most once at a time, and only successful results
// are stored.
type Tier[K ~string, V any] struct {
	cache   *TTL[K, V]
	flight  Flight[K, V]
	ttl     time.Duration
	timeout time.Duration
}

// NewTier builds a tier storing results for ttl. Each produce call is bounded
// by timeout; zero means unbounded.
func NewTier[K ~string, V any](ttl, timeout time.Duration) *Tier[K, V] {
	return &Tier[K, V]{
		cache:   NewTTL[K, V](),
		ttl:     ttl,
		timeout: timeout,
	}
}

// Get returns the cached value for key or produces it. produce receives a
// context detached from ctx's cancellation, so a caller that gives up does
// not abort the work other callers (and the cache) are waiting on.
func (t *Tier[K, V]) Get(
	ctx context.Context,
	key K,
	produce func(context.Context) (V, error),
) (V, error) {
	if v, ok := t.cache.Get(key); ok {
		return v, nil
	}

	workCtx := context.WithoutCancel(ctx)

	v, _, err := t.flight.Do(ctx, key, func() (V, error) {
		// A flight that settled between the miss above and this call has
		// already filled the cache.
		if cached, ok := t.cache.Get(key); ok {
			return cached, nil
		}

		produceCtx := workCtx
		if t.timeout > 0 {
			var cancel context.CancelFunc
			produceCtx, cancel = context.WithTimeout(workCtx, t.timeout)
			defer cancel()
		}

		produced, err := produce(produceCtx)
		if err != nil {
			return produced, err
		}

		t.cache.Set(key, produced, t.ttl)

		return produced, nil
	})

	return v, err
}

// Peek returns the cached value without producing it.
func (t *Tier[K, V]) Peek(key K) (V, bool) {
	return t.cache.Get(key)
}

func (t *Tier[K, V]) Invalidate(key K) {
	t.cache.Invalidate(key)
}

func (t *Tier[K, V]) Len() int {
	return t.cache.Len()
}

func (t *Tier[K, V]) Close() {
	t.cache.Purge()
}
