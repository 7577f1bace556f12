// cache.go
package cache

import (
	"sync"
	"time"

	"order-lifecycle-service/internal/model"
)

// SummaryCache es el cache de resultados de la consulta liviana:
// TTL fijo, tamaño acotado, inyectado en el servicio de lectura.
// El reloj se puede reemplazar en tests.
type SummaryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

type entry struct {
	summaries []model.OrderSummary
	expiresAt time.Time
}

func New(ttl time.Duration, max int) *SummaryCache {
	return NewWithClock(ttl, max, time.Now)
}

func NewWithClock(ttl time.Duration, max int, now func() time.Time) *SummaryCache {
	return &SummaryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		max:     max,
		now:     now,
	}
}

func (c *SummaryCache) Get(key string) ([]model.OrderSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.summaries, true
}

func (c *SummaryCache) Set(key string, summaries []model.OrderSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Si está lleno se descarta la entrada más próxima a vencer.
	if len(c.entries) >= c.max {
		if _, exists := c.entries[key]; !exists {
			c.evictOldest()
		}
	}
	c.entries[key] = entry{
		summaries: summaries,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *SummaryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *SummaryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
