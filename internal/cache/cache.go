// Package cache provides a generic TTL cache with LRU eviction, plus a
// manager that sweeps expired entries on an interval.
package cache

import (
	"log/slog"
	"time"
)

// Cache is the read/write surface shared by all cache implementations.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs the periodic expiry sweep for every registered cache.
type Manager struct {
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds a cache to the sweep. Not safe to call after StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins sweeping registered caches every interval.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.run(interval)
}

func (m *Manager) run(interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			for _, c := range m.caches {
				removed += c.CleanExpired()
			}
			if removed > 0 {
				slog.Debug("Cache sweep completed", "entries_removed", removed)
			}
		case <-m.stop:
			return
		}
	}
}

// Stop ends the sweep goroutine and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}
