package cache

import (
	"testing"
	"time"
)

func TestGetSetDelete(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("empty cache must miss")
	}
	c.Set("a", "one")
	if v, ok := c.Get("a"); !ok || v != "one" {
		t.Fatalf("expected hit with %q, got %q %v", "one", v, ok)
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("deleted key must miss")
	}
}

func TestSetOverwritesInPlace(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("a", 2)
	if c.Len() != 1 {
		t.Fatalf("overwrite must not grow the cache, got %d", c.Len())
	}
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("expected latest value, got %d", v)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a so b is the eviction candidate
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("recently used entry must survive")
	}
	if c.Len() != 2 {
		t.Fatalf("cache must hold at most maxSize entries, got %d", c.Len())
	}
}

func TestExpiredEntriesMissAndPurge(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expired entry must miss")
	}
	// a was dropped on access, b is still resident until purged.
	if n := c.Purge(); n != 1 {
		t.Fatalf("expected purge to drop 1 entry, got %d", n)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
}
