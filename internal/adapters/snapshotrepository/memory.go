package snapshotrepository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Amund211/riftrewind/internal/domain"
)

// InMemory is used in development when no database is configured, and in tests
type InMemory struct {
	lock      sync.Mutex
	snapshots map[string]domain.RecapSnapshot
}

func NewInMemory() *InMemory {
	return &InMemory{
		snapshots: make(map[string]domain.RecapSnapshot),
	}
}

func (m *InMemory) StoreSnapshot(ctx context.Context, snapshot domain.RecapSnapshot) error {
	if snapshot.SessionID == "" {
		return fmt.Errorf("%w: session id", domain.ErrMissingParameter)
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	snapshot.Data = slices.Clone(snapshot.Data)
	m.snapshots[snapshot.SessionID] = snapshot
	return nil
}

func (m *InMemory) GetSnapshot(ctx context.Context, sessionID string) (domain.RecapSnapshot, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	snapshot, ok := m.snapshots[sessionID]
	if !ok {
		return domain.RecapSnapshot{}, domain.ErrSnapshotNotFound
	}
	return snapshot, nil
}
