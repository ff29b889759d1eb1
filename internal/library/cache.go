// Package library keeps every cached collection context consistent with the
// outcome of add/remove mutations against the local library.
package library

import (
	"slices"
	"sync"

	"shelfarr/internal/domain"
)

// Cache holds the fetched collection contexts. The same foreign id may live
// in several contexts at once (an author page, a series page and a search
// result set). Entries are immutable once published: a settlement patch
// swaps a replacement entry into the context slices instead of mutating the
// old one, so snapshots handed to views stay valid without locking.
type Cache struct {
	mu       sync.RWMutex
	contexts map[domain.ContextKey][]*domain.CatalogEntry
	subs     []func(domain.ContextKey)
}

// NewCache creates an empty context cache.
func NewCache() *Cache {
	return &Cache{contexts: make(map[domain.ContextKey][]*domain.CatalogEntry)}
}

// Subscribe registers a callback invoked with the key of every changed
// context. Used by the UI to re-derive views after a settlement.
func (c *Cache) Subscribe(fn func(domain.ContextKey)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Set replaces a context's entry list (fetch or refresh settlement).
func (c *Cache) Set(key domain.ContextKey, entries []*domain.CatalogEntry) {
	c.mu.Lock()
	c.contexts[key] = slices.Clone(entries)
	c.mu.Unlock()

	c.notify(key)
}

// Get returns a snapshot of a context's entry list. The slice is a copy and
// the entries are never written after publication; a later settlement swaps
// in replacement entries rather than touching these.
func (c *Cache) Get(key domain.ContextKey) ([]*domain.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries, ok := c.contexts[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(entries), true
}

// Evict discards a context entirely.
func (c *Cache) Evict(key domain.ContextKey) {
	c.mu.Lock()
	_, ok := c.contexts[key]
	delete(c.contexts, key)
	c.mu.Unlock()

	if ok {
		c.notify(key)
	}
}

// Keys returns the currently cached context keys.
func (c *Cache) Keys() []domain.ContextKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]domain.ContextKey, 0, len(c.contexts))
	for k := range c.contexts {
		keys = append(keys, k)
	}
	return keys
}

// ContextsContaining returns the keys of every cached context holding an
// entry with the given foreign id.
func (c *Cache) ContextsContaining(foreignID string) []domain.ContextKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var keys []domain.ContextKey
	for k, entries := range c.contexts {
		for _, e := range entries {
			if e.ForeignID == foreignID {
				keys = append(keys, k)
				break
			}
		}
	}
	return keys
}

// patch offers every cached entry to fn; fn returns a replacement entry
// when it wants a change and nil to leave the entry alone. Replacements are
// swapped into the context slices under the lock, the originals are never
// written. Subscribers are notified once per changed context.
func (c *Cache) patch(fn func(*domain.CatalogEntry) *domain.CatalogEntry) []domain.ContextKey {
	c.mu.Lock()
	var changed []domain.ContextKey
	for k, entries := range c.contexts {
		touched := false
		for i, e := range entries {
			if next := fn(e); next != nil {
				entries[i] = next
				touched = true
			}
		}
		if touched {
			changed = append(changed, k)
		}
	}
	c.mu.Unlock()

	for _, k := range changed {
		c.notify(k)
	}
	return changed
}

func (c *Cache) notify(key domain.ContextKey) {
	c.mu.RLock()
	subs := slices.Clone(c.subs)
	c.mu.RUnlock()

	for _, fn := range subs {
		fn(key)
	}
}
