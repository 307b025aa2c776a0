package session

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxSessions bounds a MemoryStore created with maxSize <= 0.
const DefaultMaxSessions = 10000

// MemoryStore keeps sessions in a map. Expired entries are dropped lazily on
// Get and eagerly when the store is full.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]memoryItem
	maxSize int
	now     func() time.Time
}

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore holding at most maxSize sessions.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxSessions
	}
	return &MemoryStore{
		items:   make(map[string]memoryItem),
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	item, ok := m.items[id]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(item.expiresAt) {
		m.mu.Lock()
		// Re-check: a concurrent Set may have refreshed it.
		if cur, ok := m.items[id]; ok && !m.now().Before(cur.expiresAt) {
			delete(m.items, id)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return item.data, nil
}

func (m *MemoryStore) Set(_ context.Context, id string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[id]; !exists && len(m.items) >= m.maxSize {
		m.evictLocked()
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.items[id] = memoryItem{data: buf, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	now := m.now()
	if !ok || !now.Before(item.expiresAt) {
		return ErrNotFound
	}
	item.expiresAt = now.Add(ttl)
	m.items[id] = item
	return nil
}

// evictLocked removes every expired entry, or the one closest to expiry when none has expired.
func (m *MemoryStore) evictLocked() {
	now := m.now()
	var (
		oldestID  string
		oldestExp time.Time
		removed   bool
	)
	for id, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, id)
			removed = true
			continue
		}
		if oldestID == "" || item.expiresAt.Before(oldestExp) {
			oldestID, oldestExp = id, item.expiresAt
		}
	}
	if !removed && oldestID != "" {
		delete(m.items, oldestID)
	}
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.items = make(map[string]memoryItem)
	m.mu.Unlock()
	return nil
}
