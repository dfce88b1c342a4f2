// Package dedup suppresses repeat acceptance of the same logical request
// within a sliding time window. Upstream agents re-issue identical tool calls
// on retries; the cache collapses a burst of them to one accepted write.
package dedup

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is the dedup window applied when no TTL is configured.
const DefaultTTL = 90 * time.Second

// Fingerprint derives the stable dedup key from the request content and its
// resolved date and time. Identical inputs always hash identically,
// regardless of arrival order.
func Fingerprint(content, date, timeOfDay string) string {
	base := content + "|" + date + "|" + timeOfDay
	return fmt.Sprintf("%x", sha256.Sum256([]byte(base)))
}

// Cache is a time-windowed set of recently seen keys. It holds no
// persistence; entries die with the process or the TTL, whichever first.
type Cache struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:  ttl,
		seen: make(map[string]time.Time),
	}
}

// CheckAndRecord reports whether key was seen within the TTL, recording it as
// seen at now when it was not. The sweep, lookup and insert run as one
// critical section so concurrent calls with the same key cannot both observe
// "not a duplicate". A repeat hit never refreshes the timestamp, so the
// window does not extend under a stream of duplicates.
func (c *Cache) CheckAndRecord(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweep(now)

	if _, ok := c.seen[key]; ok {
		return true
	}
	c.seen[key] = now
	return false
}

// Sweep removes every expired entry and returns how many were evicted.
func (c *Cache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweep(now)
}

// sweep requires c.mu to be held.
func (c *Cache) sweep(now time.Time) int {
	evicted := 0
	for key, seenAt := range c.seen {
		if now.Sub(seenAt) > c.ttl {
			delete(c.seen, key)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// TTL reports the configured window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
