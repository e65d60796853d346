package service

import (
	"context"
	"log/slog"

	"github.com/familes/familes-server/internal/domain"
	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/store"
)

// LeaderboardService computes ranked views over the push-maintained
// snapshot directories. Live modes read denormalized snapshots; the
// historical mode delegates to the rollup service.
type LeaderboardService struct {
	store  *store.Store
	rollup *RollupService
	logger *slog.Logger
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(store *store.Store, rollup *RollupService, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{store: store, rollup: rollup, logger: logger}
}

// GlobalBoard ranks every profile in the directory. Supported modes are
// live_total and live_monthly; historical reconstruction is league-scoped.
func (s *LeaderboardService) GlobalBoard(ctx context.Context, mode domain.LeaderboardMode, limit int) ([]domain.RankedEntry, error) {
	metric, err := liveMetric(mode)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.store.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	reconcileSnapshots(snapshots)

	return truncate(domain.Rank(snapshots, metric), limit), nil
}

// LeagueBoard ranks a league's board for the acting member. The
// historical_monthly mode requires a month and reads the history log;
// live modes read the league's snapshot rows.
func (s *LeaderboardService) LeagueBoard(ctx context.Context, profileID, leagueID string, mode domain.LeaderboardMode, month string, limit int) ([]domain.RankedEntry, error) {
	league, err := s.store.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if !league.HasMember(profileID) {
		return nil, domainerrors.Forbidden("profile is not a member of this league")
	}

	if mode == domain.LeaderboardModeHistoricalMonthly {
		if month == domain.CurrentMonth() {
			// The open month is still accumulating, so its board comes
			// from the live counters, not from history reconstruction.
			mode = domain.LeaderboardModeLiveMonthly
		} else {
			board, err := s.rollup.HistoricalLeagueBoard(ctx, leagueID, month)
			if err != nil {
				return nil, err
			}
			return truncate(board, limit), nil
		}
	}

	metric, err := liveMetric(mode)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListLeagueBoard(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	snapshots := make([]domain.LeaderboardSnapshot, len(entries))
	for i, entry := range entries {
		snapshots[i] = entry.LeaderboardSnapshot
	}
	reconcileSnapshots(snapshots)

	return truncate(domain.Rank(snapshots, metric), limit), nil
}

// ProfileRank returns a profile's row and 1-based position on the global
// board for the given mode.
func (s *LeaderboardService) ProfileRank(ctx context.Context, profileID string, mode domain.LeaderboardMode) (*domain.RankedEntry, error) {
	board, err := s.GlobalBoard(ctx, mode, 0)
	if err != nil {
		return nil, err
	}
	for i := range board {
		if board[i].ProfileID == profileID {
			return &board[i], nil
		}
	}
	return nil, store.ErrProfileNotFound
}

func liveMetric(mode domain.LeaderboardMode) (domain.Metric, error) {
	switch mode {
	case domain.LeaderboardModeLiveTotal:
		return domain.TotalXPMetric, nil
	case domain.LeaderboardModeLiveMonthly:
		return domain.MonthlyXPMetric(domain.CurrentMonth()), nil
	default:
		return nil, domainerrors.Validation("unsupported leaderboard mode: " + string(mode))
	}
}

// reconcileSnapshots corrects stale streaks in place. Stored rows keep
// the streak as it was at publish time, and idle profiles never republish.
func reconcileSnapshots(snapshots []domain.LeaderboardSnapshot) {
	today := domain.Today()
	for i := range snapshots {
		snapshots[i] = snapshots[i].Reconciled(today)
	}
}

func truncate(board []domain.RankedEntry, limit int) []domain.RankedEntry {
	if limit > 0 && len(board) > limit {
		return board[:limit]
	}
	return board
}
