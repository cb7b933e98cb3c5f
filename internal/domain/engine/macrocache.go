package engine

import "sync"

// DefaultMacroCacheCapacity bounds a macro memo cache.
const DefaultMacroCacheCapacity = 50

// MacroCache is a bounded memoization cache for aggregated macro totals.
// When full, the oldest entry is evicted. It is an optimization only;
// aggregation results are identical with or without it. Safe for
// concurrent use, but each assignment run owns its own instance.
type MacroCache struct {
	mu       sync.Mutex
	entries  map[string]MacroTotals
	order    []string
	capacity int
}

// NewMacroCache creates a cache with the given capacity; zero or
// negative capacity falls back to the default.
func NewMacroCache(capacity int) *MacroCache {
	if capacity <= 0 {
		capacity = DefaultMacroCacheCapacity
	}
	return &MacroCache{
		entries:  make(map[string]MacroTotals, capacity),
		capacity: capacity,
	}
}

// Get returns the memoized totals for a key, if present.
func (c *MacroCache) Get(key string) (MacroTotals, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	totals, ok := c.entries[key]
	return totals, ok
}

// Put stores totals for a key, evicting the oldest entry at capacity.
// The zero value is usable and takes the default capacity.
func (c *MacroCache) Put(key string, totals MacroTotals) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		c.entries = make(map[string]MacroTotals)
	}
	if c.capacity <= 0 {
		c.capacity = DefaultMacroCacheCapacity
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = totals
		return
	}

	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = totals
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *MacroCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
