package cache

import (
	"sync"
	"time"
)

// TTL is an in-memory cache whose entries remove themselves after their
// time-to-live. Reads never extend an entry's lifetime.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*ttlEntry[V]
	now     func() time.Time
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
	timer     *time.Timer
}

func NewTTL[K comparable, V any]() *TTL[K, V] {
	return &TTL[K, V]{
		entries: make(map[K]*ttlEntry[V]),
		now:     time.Now,
	}
}

// Get returns the value stored under key. An entry past its expiry is a miss
// even if its removal timer has not fired yet.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		var zero V
		return zero, false
	}

	return entry.value, true
}

// Set stores value under key and schedules its removal after ttl. Setting an
// existing key supersedes the previous removal. A non-positive ttl removes key.
func (c *TTL[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.entries[key]; ok {
		prev.timer.Stop()
		delete(c.entries, key)
	}

	if ttl <= 0 {
		return
	}

	entry := &ttlEntry[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	entry.timer = time.AfterFunc(ttl, func() {
		c.expire(key, entry)
	})
	c.entries[key] = entry
}

// Invalidate removes key immediately. Missing keys are ignored.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.timer.Stop()
		delete(c.entries, key)
	}
}

// Len reports the number of physically present entries, expired or not.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Purge removes every entry and stops all pending timers.
func (c *TTL[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		entry.timer.Stop()
		delete(c.entries, key)
	}
}

// expire runs on the entry's timer and only removes the exact entry it was
// scheduled for.
func (c *TTL[K, V]) expire(key K, scheduled *ttlEntry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.entries[key]; ok && current == scheduled {
		delete(c.entries, key)
	}
}
