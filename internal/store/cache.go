package store

import (
	"sync"

	"github.com/chatvault/chatvault/internal/archive"
)

// datasetCache holds at most capacity fully-materialized datasets,
// evicting the least-recently-accessed entry when full. Eviction drops
// only the in-memory copy; the durable record is untouched, so the next
// Get re-reads and re-populates.
type datasetCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*cacheEntry
	// clock is a monotonically increasing access counter. A counter
	// instead of wall time keeps eviction deterministic when accesses
	// land within the same tick.
	clock int64
}

type cacheEntry struct {
	ds         *archive.Dataset
	lastAccess int64
}

func newDatasetCache(capacity int) *datasetCache {
	if capacity < 1 {
		capacity = 1
	}
	return &datasetCache{
		capacity: capacity,
		entries:  make(map[string]*cacheEntry, capacity),
	}
}

// get returns the cached dataset and refreshes its last-access stamp.
func (c *datasetCache) get(fileID string) (*archive.Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[fileID]
	if !ok {
		return nil, false
	}
	c.clock++
	entry.lastAccess = c.clock
	return entry.ds, true
}

// put inserts or replaces a dataset, evicting the least-recently-accessed
// entry if the cache would exceed capacity.
func (c *datasetCache) put(fileID string, ds *archive.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock++
	if entry, ok := c.entries[fileID]; ok {
		entry.ds = ds
		entry.lastAccess = c.clock
		return
	}
	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[fileID] = &cacheEntry{ds: ds, lastAccess: c.clock}
}

func (c *datasetCache) remove(fileID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fileID)
}

func (c *datasetCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the entry with the smallest last-access stamp.
// Access stamps are unique, so there are no ties to break.
func (c *datasetCache) evictOldest() {
	var oldestKey string
	var oldest int64
	first := true
	for key, entry := range c.entries {
		if first || entry.lastAccess < oldest {
			first = false
			oldest = entry.lastAccess
			oldestKey = key
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
