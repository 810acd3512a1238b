// Package memory provides the default in-process nutrition cache.
package memory

import (
	"sync"

	"github.com/foodlens/meal-vision/internal/core/domain"
)

// Cache is a mutex-guarded map shared across pipeline instances. Entries are
// insert-only: an existing key is never overwritten, so concurrent runs that
// race on the same key keep the first inserted result.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]domain.NutritionLookupResult
}

func New() *Cache {
	return &Cache{entries: make(map[string]domain.NutritionLookupResult)}
}

func (c *Cache) Get(key string) (domain.NutritionLookupResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[key]
	return result, ok
}

func (c *Cache) Put(key string, result domain.NutritionLookupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; exists {
		return
	}
	c.entries[key] = result
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
