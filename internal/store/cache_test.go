package store

import (
	"testing"

	"github.com/chatvault/chatvault/internal/archive"
)

func ds(fileID string) *archive.Dataset {
	return &archive.Dataset{FileID: fileID, OriginalName: fileID + ".html"}
}

func TestCacheEvictsLeastRecentlyAccessed(t *testing.T) {
	const capacity = 3
	c := newDatasetCache(capacity)

	// Fill to capacity: 1, 2, 3.
	c.put("f1", ds("f1"))
	c.put("f2", ds("f2"))
	c.put("f3", ds("f3"))

	// Touch 2 and 3, leaving 1 the least recently accessed.
	if _, ok := c.get("f2"); !ok {
		t.Fatal("f2 should be cached")
	}
	if _, ok := c.get("f3"); !ok {
		t.Fatal("f3 should be cached")
	}

	// Inserting a fourth evicts exactly f1.
	c.put("f4", ds("f4"))

	if _, ok := c.get("f1"); ok {
		t.Error("f1 should have been evicted")
	}
	for _, key := range []string{"f2", "f3", "f4"} {
		if _, ok := c.get(key); !ok {
			t.Errorf("%s should still be cached", key)
		}
	}
	if got := c.len(); got != capacity {
		t.Errorf("cache size = %d, want %d", got, capacity)
	}
}

func TestCacheGetRefreshesRecency(t *testing.T) {
	c := newDatasetCache(2)
	c.put("a", ds("a"))
	c.put("b", ds("b"))

	// a becomes the most recently accessed, so b is the eviction victim.
	c.get("a")
	c.put("c", ds("c"))

	if _, ok := c.get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.get("a"); !ok {
		t.Error("a should have survived")
	}
}

func TestCachePutReplacesInPlace(t *testing.T) {
	c := newDatasetCache(2)
	c.put("a", ds("a"))
	first, _ := c.get("a")

	replacement := ds("a")
	replacement.OriginalName = "renamed.html"
	c.put("a", replacement)

	got, ok := c.get("a")
	if !ok {
		t.Fatal("a should be cached")
	}
	if got == first || got.OriginalName != "renamed.html" {
		t.Errorf("put should replace the cached dataset, got %+v", got)
	}
	if c.len() != 1 {
		t.Errorf("cache size = %d, want 1", c.len())
	}
}

func TestCacheRemove(t *testing.T) {
	c := newDatasetCache(2)
	c.put("a", ds("a"))
	c.remove("a")
	if _, ok := c.get("a"); ok {
		t.Error("removed entry should be gone")
	}
	// Removing an absent key is a no-op.
	c.remove("nope")
}

func TestCacheMinimumCapacity(t *testing.T) {
	c := newDatasetCache(0)
	c.put("a", ds("a"))
	if _, ok := c.get("a"); !ok {
		t.Error("capacity clamps to at least one entry")
	}
}
