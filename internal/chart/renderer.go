package chart

import (
	"fmt"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
)

// Renderer caches rendered charts by store version. A version identifies
// one state of the records, so an entry never goes stale while the process
// lives; the ttl only bounds memory held by old versions.
type Renderer struct {
	lru    *cache.LRUCache[[]byte]
	loader *cache.Loader[[]byte]
}

func NewRenderer(size int, ttl time.Duration) *Renderer {
	lru := cache.NewLRUCache[[]byte](size, ttl)
	return &Renderer{lru: lru, loader: cache.NewLoader[[]byte](lru)}
}

// Render returns the chart for the given version, drawing it on a miss.
func (r *Renderer) Render(version uint64, totals []core.CategoryTotal, format Format) ([]byte, error) {
	key := fmt.Sprintf("%s:%d", format, version)
	return r.loader.Load(key, func() ([]byte, error) {
		return Bytes(totals, format)
	})
}

// Cache exposes the underlying cache for registration with a cache.Manager.
func (r *Renderer) Cache() *cache.LRUCache[[]byte] {
	return r.lru
}
