package secrets

import (
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	cache := NewCache(CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 10})

	cache.Set("k", "v")
	if got, ok := cache.Get("k"); !ok || got != "v" {
		t.Errorf("Get() = %q, %v; want v, true", got, ok)
	}
	if _, ok := cache.Get("missing"); ok {
		t.Error("Get(missing) hit")
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(CacheConfig{Enabled: false, TTL: time.Minute})
	cache.Set("k", "v")
	if _, ok := cache.Get("k"); ok {
		t.Error("disabled cache returned a value")
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCache(CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 10})
	cache.now = func() time.Time { return now }

	cache.Set("k", "v")
	now = now.Add(30 * time.Second)
	if _, ok := cache.Get("k"); !ok {
		t.Error("entry expired early")
	}
	now = now.Add(time.Minute)
	if _, ok := cache.Get("k"); ok {
		t.Error("entry did not expire")
	}
}

func TestCache_Eviction(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCache(CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 2})
	cache.now = func() time.Time { return now }

	cache.Set("a", "1")
	now = now.Add(time.Second)
	cache.Set("b", "2")
	now = now.Add(time.Second)
	cache.Set("c", "3")

	if cache.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", cache.Size())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("oldest entry was not evicted")
	}

	cache.Set("b", "updated")
	if cache.Size() != 2 {
		t.Errorf("overwriting an entry changed Size() to %d", cache.Size())
	}

	cache.Delete("b")
	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d", cache.Size())
	}
}
