package app

import (
	"context"
	"fmt"

	"github.com/Amund211/riftrewind/internal/adapters/snapshotrepository"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/session"
)

// ResetSession forgets the session's recaps, comparison and chat
type ResetSession func(ctx context.Context, sess *session.Session)

func BuildResetSession(registry *session.Registry) ResetSession {
	return func(ctx context.Context, sess *session.Session) {
		if !registry.Reset(sess.ID) {
			logging.FromContext(ctx).WarnContext(ctx, "Reset of unknown session")
		}
	}
}

// GetLastRecap returns the last recap persisted for a session
type GetLastRecap func(ctx context.Context, sessionID string) (domain.RecapSnapshot, error)

func BuildGetLastRecap(repo snapshotrepository.SnapshotRepository) GetLastRecap {
	return func(ctx context.Context, sessionID string) (domain.RecapSnapshot, error) {
		if sessionID == "" {
			return domain.RecapSnapshot{}, fmt.Errorf("%w: session id", domain.ErrMissingParameter)
		}

		snapshot, err := repo.GetSnapshot(ctx, sessionID)
		if err != nil {
			return domain.RecapSnapshot{}, fmt.Errorf("failed to get snapshot: %w", err)
		}
		return snapshot, nil
	}
}
