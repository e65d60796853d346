package domain

import (
	"slices"
	"time"
)

// LeaderboardMode selects what a leaderboard view ranks by.
type LeaderboardMode string

const (
	// LeaderboardModeLiveTotal ranks by all-time XP from live snapshots.
	LeaderboardModeLiveTotal LeaderboardMode = "live_total"
	// LeaderboardModeLiveMonthly ranks by the current month's live counters.
	LeaderboardModeLiveMonthly LeaderboardMode = "live_monthly"
	// LeaderboardModeHistoricalMonthly ranks a past month reconstructed
	// from the reading history log.
	LeaderboardModeHistoricalMonthly LeaderboardMode = "historical_monthly"
)

// Valid checks if the mode is valid.
func (m LeaderboardMode) Valid() bool {
	switch m {
	case LeaderboardModeLiveTotal, LeaderboardModeLiveMonthly, LeaderboardModeHistoricalMonthly:
		return true
	default:
		return false
	}
}

// LeaderboardSnapshot is the denormalized per-profile record leaderboards
// rank. The profile pushes a fresh copy into the global directory, and into
// every league it belongs to, on each XP-affecting write.
type LeaderboardSnapshot struct {
	ProfileID     string `json:"profile_id"`
	Name          string `json:"name"`
	Level         int    `json:"level"`
	TotalPages    int    `json:"total_pages"`
	TotalXP       int    `json:"total_xp"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	LastReadDate  string `json:"last_read_date,omitempty"`
	MonthlyXP     int    `json:"monthly_xp"`

	// CurrentMonth tags which month MonthlyXP counts. A stale tag means
	// the counter rolled over without being reset and reads as zero.
	CurrentMonth string `json:"current_month,omitempty"`
}

// Reconciled corrects the stored streak for display on the given date.
// Snapshots carry the streak written at publish time, which goes stale
// once the profile stops reading.
func (s LeaderboardSnapshot) Reconciled(today string) LeaderboardSnapshot {
	streak := StreakState{
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		LastReadDate:  s.LastReadDate,
	}.Reconcile(today)
	s.CurrentStreak = streak.CurrentStreak
	return s
}

// Metric extracts the ranking value from a snapshot.
type Metric func(LeaderboardSnapshot) int

// TotalXPMetric ranks by all-time XP. Records written before the XP
// migration carry pages but no XP; for those the page count stands in,
// since 1 page = 1 XP.
func TotalXPMetric(s LeaderboardSnapshot) int {
	if s.TotalXP > 0 {
		return s.TotalXP
	}
	return s.TotalPages
}

// MonthlyXPMetric ranks by the live monthly counter, but only when the
// snapshot's month tag matches the given month. A counter tagged with a
// prior month has rolled over and counts as zero.
func MonthlyXPMetric(currentMonth string) Metric {
	return func(s LeaderboardSnapshot) int {
		if s.CurrentMonth != currentMonth {
			return 0
		}
		return s.MonthlyXP
	}
}

// RankedEntry is one row of a computed leaderboard.
type RankedEntry struct {
	Rank int `json:"rank"`
	LeaderboardSnapshot
	Value int `json:"value"`
}

// Rank sorts snapshots descending by the metric and assigns 1-based ranks.
// The sort is stable, so ties keep their input order and the same input
// always produces the same output.
func Rank(snapshots []LeaderboardSnapshot, metric Metric) []RankedEntry {
	ordered := slices.Clone(snapshots)
	slices.SortStableFunc(ordered, func(a, b LeaderboardSnapshot) int {
		return metric(b) - metric(a)
	})

	entries := make([]RankedEntry, len(ordered))
	for i, s := range ordered {
		entries[i] = RankedEntry{
			Rank:                i + 1,
			LeaderboardSnapshot: s,
			Value:               metric(s),
		}
	}
	return entries
}

// LeagueLeaderboardEntry is a league-scoped snapshot document, one per
// member per league, maintained push-style by the member profile itself.
type LeagueLeaderboardEntry struct {
	LeaderboardSnapshot
	LeagueID  string    `json:"league_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
