package restock

import "sync"

// DetailNames are the per-order display fields the list screen resolves
// lazily from the detail endpoint.
type DetailNames struct {
	WarehouseName string
	MotorbikeName string
}

// DetailCache memoizes DetailNames per order id. Entries never expire on
// their own; the cache is cleared only by an explicit refresh. It is owned
// by one controller instance and safe for concurrent use.
type DetailCache struct {
	mu    sync.RWMutex
	names map[uint64]DetailNames
}

func NewDetailCache() *DetailCache {
	return &DetailCache{names: make(map[uint64]DetailNames)}
}

func (c *DetailCache) Get(orderID uint64) (DetailNames, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names, ok := c.names[orderID]
	return names, ok
}

func (c *DetailCache) Set(orderID uint64, names DetailNames) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[orderID] = names
}

func (c *DetailCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = make(map[uint64]DetailNames)
}

func (c *DetailCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}
