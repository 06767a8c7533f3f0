package progress

import (
	"context"
	"sync"
)

// Cache stores computed progress percentages keyed by subject ID.
// Implementations must treat misses as (0, false, nil).
type Cache interface {
	Get(ctx context.Context, subjectID string) (int, bool, error)
	Set(ctx context.Context, subjectID string, pct int) error
	Invalidate(ctx context.Context, subjectID string) error
}

// InMemoryCache is the test and single-node cache implementation.
type InMemoryCache struct {
	mu     sync.RWMutex
	values map[string]int
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{values: make(map[string]int)}
}

func (c *InMemoryCache) Get(_ context.Context, subjectID string) (int, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pct, ok := c.values[subjectID]
	return pct, ok, nil
}

func (c *InMemoryCache) Set(_ context.Context, subjectID string, pct int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[subjectID] = pct
	return nil
}

func (c *InMemoryCache) Invalidate(_ context.Context, subjectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, subjectID)
	return nil
}
