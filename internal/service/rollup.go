package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/store"
)

const (
	// rollupCacheTTL bounds how long a reconstructed month board is served
	// from cache. Completed months are immutable, so staleness only
	// matters after a profile deletion.
	rollupCacheTTL = time.Hour

	rollupCacheCounters = 10_000
	rollupCacheMaxCost  = 1_000
)

// RollupService reconstructs past-month standings from the immutable
// reading history log. Live counters only cover the current month; any
// earlier month exists solely as history entries.
type RollupService struct {
	store  *store.Store
	cache  *ristretto.Cache[string, []domain.RankedEntry]
	logger *slog.Logger
}

// NewRollupService creates a rollup service with its board cache.
func NewRollupService(store *store.Store, logger *slog.Logger) (*RollupService, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []domain.RankedEntry]{
		NumCounters: rollupCacheCounters,
		MaxCost:     rollupCacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create rollup cache: %w", err)
	}
	return &RollupService{store: store, cache: cache, logger: logger}, nil
}

// Close releases the board cache.
func (s *RollupService) Close() {
	s.cache.Close()
}

// MonthlyXPForProfile sums a profile's XP for the given year-month from
// its history log.
func (s *RollupService) MonthlyXPForProfile(ctx context.Context, profileID, month string) (int, error) {
	if !domain.ValidMonth(month) {
		return 0, domainerrors.Validation("malformed month, expected YYYY-MM")
	}
	entries, err := s.store.ListProfileHistory(ctx, profileID)
	if err != nil {
		return 0, err
	}
	return domain.MonthlyXP(entries, month), nil
}

// HistoricalLeagueBoard ranks a league's members by XP earned in a past
// month, reconstructed from each member's history. Members whose profile
// has since been deleted are skipped. Completed months are cached; the
// running month is always computed fresh.
func (s *RollupService) HistoricalLeagueBoard(ctx context.Context, leagueID, month string) ([]domain.RankedEntry, error) {
	if !domain.ValidMonth(month) {
		return nil, domainerrors.Validation("malformed month, expected YYYY-MM")
	}

	cacheable := month < domain.CurrentMonth()

	cacheKey := leagueID + "|" + month
	if cacheable {
		if board, ok := s.cache.Get(cacheKey); ok {
			return board, nil
		}
	}

	league, err := s.store.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.LeaderboardSnapshot, 0, len(league.MemberIDs))
	for _, memberID := range league.MemberIDs {
		profile, err := s.store.GetProfile(ctx, memberID)
		if err != nil {
			if errors.Is(err, store.ErrProfileNotFound) {
				continue
			}
			return nil, err
		}
		xp, err := s.MonthlyXPForProfile(ctx, memberID, month)
		if err != nil {
			return nil, err
		}
		streak := profile.Streak.Reconcile(domain.Today())
		snapshots = append(snapshots, domain.LeaderboardSnapshot{
			ProfileID:     profile.ID,
			Name:          profile.Name,
			Level:         profile.Level,
			TotalPages:    profile.TotalPages,
			TotalXP:       profile.TotalXP,
			CurrentStreak: streak.CurrentStreak,
			LongestStreak: streak.LongestStreak,
			LastReadDate:  streak.LastReadDate,
			MonthlyXP:     xp,
			CurrentMonth:  month,
		})
	}

	board := domain.Rank(snapshots, domain.MonthlyXPMetric(month))

	if cacheable {
		s.cache.SetWithTTL(cacheKey, board, int64(len(board)+1), rollupCacheTTL)
	}
	return board, nil
}
