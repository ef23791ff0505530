package facets

import (
	"sync"

	"github.com/cncf/landscape2/go/explorer/pkg/catalog"
)

type cacheKey struct {
	version uint64
	group   catalog.GroupRef
}

// Cache memoizes Build per (index version, group). Facets never depend on
// the active filters, so an entry stays valid for the lifetime of its index.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]*Options
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]*Options)}
}

// Get returns the options for the group, building them on first use.
// Entries for older index versions are evicted.
func (c *Cache) Get(idx *catalog.Index, group catalog.GroupRef) *Options {
	key := cacheKey{version: idx.Version(), group: group}

	c.mu.Lock()
	defer c.mu.Unlock()
	if opts, ok := c.entries[key]; ok {
		return opts
	}
	for k := range c.entries {
		if k.version != key.version {
			delete(c.entries, k)
		}
	}
	opts := Build(idx, group)
	c.entries[key] = opts
	return opts
}
