// Package balance keeps the last coin balance fetched from the backend. Both
// the dashboard refresh and the notification poll path write it; writes are
// last-writer-wins, which is fine because every writer stores the same
// authoritative value from the latest fetch.
package balance

import (
	"sync"
	"time"
)

type Cache struct {
	mu        sync.Mutex
	value     float64
	updatedAt time.Time
	known     bool
}

func (c *Cache) Set(value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.updatedAt = time.Now()
	c.known = true
}

// Get returns the cached balance, when it was stored, and whether any fetch
// has populated it yet.
func (c *Cache) Get() (float64, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.updatedAt, c.known
}
