package recapcache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Amund211/riftrewind/internal/adapters/cache"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/logging"
)

// Store holds the recaps and the most recent comparison seen by one page session.
// Entries are never evicted; Clear is the only way to drop them.
type Store struct {
	recaps cache.Cache[domain.Recap]

	comparisonLock sync.Mutex
	comparison     *domain.Comparison
}

func New() *Store {
	return &Store{
		recaps: cache.NewBasicCache[domain.Recap](),
	}
}

func (s *Store) Get(name, tag, region string) (domain.Recap, bool) {
	return cache.Get(s.recaps, domain.PlayerCacheKey(name, tag, region))
}

func (s *Store) Set(name, tag, region string, recap domain.Recap) {
	cache.Set(s.recaps, domain.PlayerCacheKey(name, tag, region), recap)
}

// GetOrFetch returns the cached recap for player, calling fetch on a miss.
// Concurrent misses for the same player share a single fetch.
func (s *Store) GetOrFetch(ctx context.Context, player domain.PlayerID, fetch func(ctx context.Context) (domain.Recap, error)) (domain.Recap, bool, error) {
	var fetchErr error
	recap, fetched, err := cache.GetOrCreate(ctx, s.recaps, player.CacheKey(), func() (domain.Recap, error) {
		recap, err := fetch(ctx)
		fetchErr = err
		return recap, err
	})
	if fetchErr != nil {
		// Surface the fetch error as is so the page can show it verbatim
		return domain.Recap{}, false, fetchErr
	}
	if err != nil {
		return domain.Recap{}, false, err
	}
	return recap, fetched, nil
}

func (s *Store) GetComparison() (domain.Comparison, bool) {
	s.comparisonLock.Lock()
	defer s.comparisonLock.Unlock()

	if s.comparison == nil {
		return domain.Comparison{}, false
	}
	return *s.comparison, true
}

// SetComparison replaces the comparison slot and seeds the per-player cache
// with the recap of each compared player.
func (s *Store) SetComparison(ctx context.Context, comparison domain.Comparison) {
	s.comparisonLock.Lock()
	s.comparison = &comparison
	s.comparisonLock.Unlock()

	for _, compared := range []domain.ComparedPlayer{comparison.Player1, comparison.Player2} {
		if !compared.HasRecap() {
			continue
		}
		player, err := compared.PlayerID()
		if err != nil {
			logging.FromContext(ctx).WarnContext(
				ctx, "Not seeding recap for compared player",
				slog.String("name", compared.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.Set(player.Name, player.Tag, player.Region, domain.Recap{
			Player:  player,
			Payload: compared.Recap,
		})
	}
}

func (s *Store) Clear() {
	cache.Clear(s.recaps)

	s.comparisonLock.Lock()
	defer s.comparisonLock.Unlock()
	s.comparison = nil
}
