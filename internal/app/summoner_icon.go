package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Amund211/riftrewind/internal/adapters/cache"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
)

type SummonerIconProvider interface {
	GetSummonerIcon(ctx context.Context, player domain.PlayerID) (string, error)
}

// GetSummonerIcon looks up the player's profile icon URL. Callers treat failures as "no icon".
type GetSummonerIcon func(ctx context.Context, player domain.PlayerID) (string, error)

func BuildGetSummonerIcon(iconCache cache.Cache[string], provider SummonerIconProvider) GetSummonerIcon {
	return func(ctx context.Context, player domain.PlayerID) (string, error) {
		if err := player.Validate(); err != nil {
			return "", err
		}

		iconURL, _, err := cache.GetOrCreate(ctx, iconCache, player.CacheKey(), func() (string, error) {
			return provider.GetSummonerIcon(ctx, player)
		})
		if err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "Failed to get summoner icon", slog.String("error", err.Error()))
			return "", fmt.Errorf("failed to get summoner icon: %w", err)
		}

		return iconURL, nil
	}
}
