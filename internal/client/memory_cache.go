package client

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a TTL cache backed by a map with a background cleaner.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	cleaner *time.Ticker
	done    chan struct{}
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	m := &MemoryCache{
		entries: make(map[string]memoryEntry),
		cleaner: time.NewTicker(10 * time.Second),
		done:    make(chan struct{}),
	}
	go m.backgroundCleaner()
	return m
}

func (m *MemoryCache) backgroundCleaner() {
	for {
		select {
		case <-m.cleaner.C:
			now := time.Now()
			m.mu.Lock()
			for key, entry := range m.entries {
				if now.After(entry.expiresAt) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		case <-m.done:
			m.cleaner.Stop()
			return
		}
	}
}

// Get returns the cached value if present and not expired.
func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value with the given TTL.
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

// Delete drops a cached value.
func (m *MemoryCache) Delete(ctx context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Close stops the background cleaner.
func (m *MemoryCache) Close() error {
	close(m.done)
	return nil
}
