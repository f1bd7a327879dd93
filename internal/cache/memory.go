package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/contactmesh/geodetect/internal/model"
)

const defaultMaxEntries = 512

// Memory is a concurrent-safe in-process cache with TTL expiration and LRU
// eviction at a fixed capacity.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
}

type memoryEntry struct {
	events    []model.Event
	expiresAt time.Time
}

// Stats contains cache performance counters.
type Stats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewMemory creates an in-memory cache with the given capacity (0 uses the
// default).
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]*memoryEntry),
		maxEntries: maxEntries,
	}
}

// Get retrieves cached events. Expired entries are removed on read.
func (m *Memory) Get(_ context.Context, key Key) ([]model.Event, bool, error) {
	k := key.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[k]
	if !ok {
		m.misses.Add(1)
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.entries, k)
		m.removeFromOrder(k)
		m.misses.Add(1)
		return nil, false, nil
	}

	m.removeFromOrder(k)
	m.order = append(m.order, k)
	m.hits.Add(1)
	return entry.events, true, nil
}

// Set stores events, evicting the oldest entry when at capacity.
func (m *Memory) Set(_ context.Context, key Key, events []model.Event, ttl time.Duration) error {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	k := key.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[k]; ok {
		m.entries[k] = &memoryEntry{events: events, expiresAt: time.Now().Add(ttl)}
		m.removeFromOrder(k)
		m.order = append(m.order, k)
		return nil
	}

	for len(m.entries) >= m.maxEntries && len(m.order) > 0 {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}

	m.entries[k] = &memoryEntry{events: events, expiresAt: time.Now().Add(ttl)}
	m.order = append(m.order, k)
	return nil
}

// PurgeExpired drops expired entries and returns how many were removed.
func (m *Memory) PurgeExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var removed int64
	var remaining []string
	for _, k := range m.order {
		if entry, ok := m.entries[k]; ok && now.After(entry.expiresAt) {
			delete(m.entries, k)
			removed++
			continue
		}
		remaining = append(remaining, k)
	}
	m.order = remaining
	return removed, nil
}

// Stats returns hit/miss counters.
func (m *Memory) Stats() Stats {
	m.mu.Lock()
	entries := len(m.entries)
	m.mu.Unlock()

	hits := m.hits.Load()
	misses := m.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{Entries: entries, Hits: hits, Misses: misses, HitRate: rate}
}

// Close is a no-op for the in-memory backend.
func (m *Memory) Close() error { return nil }

func (m *Memory) removeFromOrder(key string) {
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
