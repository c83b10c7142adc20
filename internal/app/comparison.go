package app

import (
	"context"

	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/Amund211/riftrewind/internal/session"
)

type ComparisonProvider interface {
	GetComparison(ctx context.Context, query domain.ComparisonQuery) (domain.Comparison, error)
}

type GetComparison func(ctx context.Context, sess *session.Session, query domain.ComparisonQuery) (domain.Comparison, error)

func BuildGetComparison(provider ComparisonProvider) GetComparison {
	return func(ctx context.Context, sess *session.Session, query domain.ComparisonQuery) (domain.Comparison, error) {
		if err := query.Validate(); err != nil {
			return domain.Comparison{}, err
		}

		// The slot only holds the most recent comparison, matched on the literal query
		if cached, ok := sess.Recaps.GetComparison(); ok && cached.Tag == query.CacheTag() {
			logging.FromContext(ctx).InfoContext(ctx, "Getting comparison", "cache", "hit")
			return cached, nil
		}
		logging.FromContext(ctx).InfoContext(ctx, "Getting comparison", "cache", "miss")

		comparison, err := provider.GetComparison(ctx, query)
		if err != nil {
			// NOTE: Returned as is, the message is shown to the visitor
			return domain.Comparison{}, err
		}

		sess.Recaps.SetComparison(ctx, comparison)

		return comparison, nil
	}
}
