package cache

import (
	"testing"
	"time"

	"spendwise/internal/core"
)

// TestLRUCacheEviction tests size-based eviction
func TestLRUCacheEviction(t *testing.T) {
	cache := NewLRUCache[string](3, time.Hour) // 3 items max

	// Fill beyond capacity
	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")
	cache.Set("key4", "value4") // Should evict key1

	// key1 should be evicted (LRU)
	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}

	// Others should still exist
	for _, key := range []string{"key2", "key3", "key4"} {
		if _, found := cache.Get(key); !found {
			t.Errorf("%s should still exist", key)
		}
	}
}

// TestLRUCacheRecentUseSurvivesEviction verifies that a Get refreshes recency
func TestLRUCacheRecentUseSurvivesEviction(t *testing.T) {
	cache := NewLRUCache[string](2, time.Hour)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")

	// Touch key1 so key2 becomes least recently used
	cache.Get("key1")
	cache.Set("key3", "value3")

	if _, found := cache.Get("key2"); found {
		t.Error("key2 should have been evicted")
	}
	if _, found := cache.Get("key1"); !found {
		t.Error("key1 should have survived eviction")
	}
}

// TestLRUCacheTTLExpiration tests time-based expiration
func TestLRUCacheTTLExpiration(t *testing.T) {
	cache := NewLRUCache[core.Analysis](100, 50*time.Millisecond)

	cache.Set("1:5", core.Analysis{Overall: core.OverallSummary{Transactions: 3}})

	// Should exist immediately
	got, found := cache.Get("1:5")
	if !found {
		t.Fatal("entry should exist immediately")
	}
	if got.Overall.Transactions != 3 {
		t.Errorf("Transactions = %d, want 3", got.Overall.Transactions)
	}

	// Wait for expiration
	time.Sleep(60 * time.Millisecond)

	if _, found := cache.Get("1:5"); found {
		t.Error("entry should have expired")
	}
}

// TestLRUCacheCleanExpired tests the cleanup mechanism
func TestLRUCacheCleanExpired(t *testing.T) {
	cache := NewLRUCache[string](100, 50*time.Millisecond)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")

	// Wait for expiration
	time.Sleep(60 * time.Millisecond)

	removed := cache.CleanExpired()
	if removed != 3 {
		t.Errorf("Expected 3 items cleaned, got %d", removed)
	}
	if cache.Size() != 0 {
		t.Errorf("Size = %d after cleanup, want 0", cache.Size())
	}
}

// BenchmarkLRUCache benchmarks cache performance
func BenchmarkLRUCache(b *testing.B) {
	cache := NewLRUCache[core.Analysis](1000, time.Hour)
	analysis := core.Analysis{Overall: core.OverallSummary{Transactions: 10}}

	b.ResetTimer()

	// Test mixed read/write workload
	for i := 0; i < b.N; i++ {
		key := "bench-key"
		if i%10 == 0 {
			// 10% writes
			cache.Set(key, analysis)
		} else {
			// 90% reads
			cache.Get(key)
		}
	}
}
