package snapshotrepository

import (
	"context"

	"github.com/Amund211/riftrewind/internal/domain"
)

// SnapshotRepository keeps the last recap loaded by each page session
type SnapshotRepository interface {
	StoreSnapshot(ctx context.Context, snapshot domain.RecapSnapshot) error
	GetSnapshot(ctx context.Context, sessionID string) (domain.RecapSnapshot, error)
}
