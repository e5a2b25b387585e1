package catalog

import (
	"context"
	"sync"

	"ability-lst/internal/ability"
)

// Cached keeps looked up entries in memory in front of a Store.
type Cached struct {
	Store

	mu     sync.RWMutex
	memory map[string]Entry // system + normalized key → entry
}

var _ Store = (*Cached)(nil)

// NewCached wraps store with an in-memory lookup cache.
func NewCached(store Store) *Cached {
	return &Cached{
		Store:  store,
		memory: make(map[string]Entry),
	}
}

func cacheKey(rs ability.RuleSystem, key string) string {
	return rs.Slug() + "\x00" + NormalizeKey(key)
}

// Lookup checks memory first, then the store.
func (c *Cached) Lookup(ctx context.Context, rs ability.RuleSystem, key string) (*Entry, error) {
	k := cacheKey(rs, key)

	c.mu.RLock()
	if e, ok := c.memory[k]; ok {
		c.mu.RUnlock()
		return &e, nil
	}
	c.mu.RUnlock()

	e, err := c.Store.Lookup(ctx, rs, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.memory[k] = *e
	c.mu.Unlock()

	return e, nil
}

// Upsert writes through to the store and refreshes cached entries.
func (c *Cached) Upsert(ctx context.Context, entries []Entry) error {
	if err := c.Store.Upsert(ctx, entries); err != nil {
		return err
	}

	c.mu.Lock()
	for _, e := range entries {
		k := cacheKey(e.System, e.Key)
		if _, ok := c.memory[k]; ok {
			c.memory[k] = e
		}
	}
	c.mu.Unlock()

	return nil
}
