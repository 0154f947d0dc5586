package cache

import (
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLRUCacheExpiry(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, 30*time.Minute).WithClock(clk.now)

	c.Set("a", "draft")
	if v, ok := c.Get("a"); !ok || v != "draft" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	clk.t = clk.t.Add(31 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry must not be returned")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be dropped on access, size=%d", c.Size())
	}
}

func TestLRUCacheTakeConsumesOnce(t *testing.T) {
	c := NewLRUCache[int](10, time.Hour)
	c.Set("k", 42)

	if v, ok := c.Take("k"); !ok || v != 42 {
		t.Fatalf("first take: %d %v", v, ok)
	}
	if _, ok := c.Take("k"); ok {
		t.Fatal("second take must miss")
	}
	if _, ok := c.Get("k"); ok {
		t.Fatal("taken key must be gone")
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // b is now the oldest
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should still be cached", k)
		}
	}
}

func TestManagerSweep(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	short := NewLRUCache[int](10, time.Minute).WithClock(clk.now)
	long := NewLRUCache[int](10, time.Hour).WithClock(clk.now)
	short.Set("x", 1)
	short.Set("y", 2)
	long.Set("z", 3)

	m := NewManager()
	m.Register(short)
	m.Register(long)

	clk.t = clk.t.Add(2 * time.Minute)
	if n := m.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	if long.Size() != 1 {
		t.Errorf("unexpired entries must survive")
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
