// Package storage owns the durable key-value slots holding serialized
// session state. Each booking session gets one slot per concern (cart state,
// flow position) and backends are interchangeable.
package storage

import (
	"context"
	"sync"
)

const (
	SlotCart = "cart"
	SlotFlow = "flow"
)

// Snapshots is the persistence boundary for serialized session state. Load
// reports found=false when the slot is empty; callers treat a missing or
// corrupt payload as the empty state, never as an error to surface.
type Snapshots interface {
	Load(ctx context.Context, slot, sessionID string) (payload string, found bool, err error)
	Save(ctx context.Context, slot, sessionID, payload string) error
	Delete(ctx context.Context, slot, sessionID string) error
}

// MemorySnapshots is an in-process backend used in tests and local-only runs.
type MemorySnapshots struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemorySnapshots constructs an empty in-memory backend.
func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{slots: make(map[string]string)}
}

func (m *MemorySnapshots) Load(_ context.Context, slot, sessionID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.slots[slot+"/"+sessionID]
	return payload, ok, nil
}

func (m *MemorySnapshots) Save(_ context.Context, slot, sessionID, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot+"/"+sessionID] = payload
	return nil
}

func (m *MemorySnapshots) Delete(_ context.Context, slot, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slot+"/"+sessionID)
	return nil
}
