package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/Amund211/riftrewind/internal/adapters/snapshotrepository"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/session"
)

type RecapProvider interface {
	GetMatchData(ctx context.Context, player domain.PlayerID) (domain.Recap, error)
}

// GetRecap returns the player's recap from the session cache, fetching it on a miss.
// The recap becomes the session's chat context.
type GetRecap func(ctx context.Context, sess *session.Session, player domain.PlayerID) (domain.Recap, error)

func storeSnapshot(ctx context.Context, repo snapshotrepository.SnapshotRepository, sess *session.Session, recap domain.Recap, nowFunc func() time.Time) {
	// Ignore cancellations from the request context and try to store the data anyway
	// Take a maximum of 1 second to not block the request for too long
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 1*time.Second)
	defer cancel()

	err := repo.StoreSnapshot(storeCtx, domain.RecapSnapshot{
		SessionID: sess.ID,
		RiotID:    recap.Player.RiotID(),
		Region:    recap.Player.Region,
		Data:      recap.Payload,
		StoredAt:  nowFunc(),
	})
	if err != nil {
		// NOTE: SnapshotRepository implementations handle their own error reporting
		logging.FromContext(ctx).ErrorContext(ctx, "failed to store recap snapshot", slog.String("error", err.Error()))
	}
}

func BuildGetRecap(provider RecapProvider, repo snapshotrepository.SnapshotRepository, nowFunc func() time.Time) GetRecap {
	return func(ctx context.Context, sess *session.Session, player domain.PlayerID) (domain.Recap, error) {
		if err := player.Validate(); err != nil {
			return domain.Recap{}, err
		}

		recap, fetched, err := sess.Recaps.GetOrFetch(ctx, player, func(ctx context.Context) (domain.Recap, error) {
			return provider.GetMatchData(ctx, player)
		})
		if err != nil {
			// NOTE: Returned as is, the message is shown to the visitor.
			// The provider handles its own error reporting
			return domain.Recap{}, err
		}

		if fetched {
			storeSnapshot(ctx, repo, sess, recap, nowFunc)
		}

		sess.SetCurrent(recap)

		return recap, nil
	}
}
