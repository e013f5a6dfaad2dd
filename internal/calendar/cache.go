package calendar

import (
	"sync"

	"go.uber.org/zap"
)

// Cache keeps built year indexes so several engines for the same year
// share one index. It is owned by the caller (or privately by a single
// engine) and is safe for concurrent use. Only year-invariant data is
// cached: nominal work-hours stay with each engine.
type Cache struct {
	logger  *zap.Logger
	cache   map[int]*YearIndex
	cacheMu sync.RWMutex
}

// NewCache creates an empty cache
func NewCache(logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		logger: logger,
		cache:  make(map[int]*YearIndex),
	}
}

// Index returns the index for year, building it on first use
func (c *Cache) Index(year int) *YearIndex {
	c.cacheMu.RLock()
	if idx, ok := c.cache[year]; ok {
		c.cacheMu.RUnlock()
		c.logger.Debug("Using cached year index", zap.Int("year", year))
		return idx
	}
	c.cacheMu.RUnlock()

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	// Another goroutine may have built it while we waited for the lock.
	if idx, ok := c.cache[year]; ok {
		return idx
	}

	idx := NewYearIndex(year)
	c.cache[year] = idx

	c.logger.Debug("Year index built and cached",
		zap.Int("year", year),
		zap.Int("days", idx.Len()),
		zap.Int("holidays", len(idx.holidays)))

	return idx
}

// Len returns the number of cached years
func (c *Cache) Len() int {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	return len(c.cache)
}

// ClearCache clears the cache
func (c *Cache) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache = make(map[int]*YearIndex)
	c.logger.Info("Calendar cache cleared")
}
