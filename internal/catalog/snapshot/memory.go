package snapshot

import (
	"context"
	"sync"

	"github.com/smallbiznis/glazier/internal/clock"
)

type memoryStore struct {
	mu      sync.RWMutex
	clock   clock.Clock
	entries map[string]Snapshot
}

// NewMemoryStore keeps snapshots in process. Expired entries are dropped on
// the next write.
func NewMemoryStore(c clock.Clock) Store {
	return &memoryStore{clock: c, entries: map[string]Snapshot{}}
}

func (m *memoryStore) Put(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	for id, existing := range m.entries {
		if !now.Before(existing.ExpiresAt) {
			delete(m.entries, id)
		}
	}
	m.entries[snap.ID] = snap
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.entries[id]
	if !ok || !m.clock.Now().Before(snap.ExpiresAt) {
		return Snapshot{}, ErrNotFound
	}
	return snap, nil
}
