package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile(t *testing.T) {
	p := NewProfile("prof-1", "user-1", "Alice", true)

	assert.Equal(t, "prof-1", p.ID)
	assert.Equal(t, "user-1", p.UserID)
	assert.True(t, p.IsPrimary)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, ProfileSchemaVersion, p.SchemaVersion)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestProfile_ApplyReading(t *testing.T) {
	curve := NewCurve(10, 1.5)
	p := NewProfile("prof-1", "user-1", "Alice", true)

	earned := p.ApplyReading(12, "2025-06-02", curve, 5)

	assert.Equal(t, 12, earned)
	assert.Equal(t, 12, p.TotalPages)
	assert.Equal(t, 12, p.TotalXP)
	assert.Equal(t, 2, p.Level) // 12 XP crosses the 10 XP threshold
	assert.Equal(t, 12, p.MonthlyXP)
	assert.Equal(t, "2025-06", p.CurrentMonth)
	assert.Equal(t, 1, p.Streak.CurrentStreak)
	assert.Equal(t, "2025-06-02", p.Streak.LastReadDate)
}

func TestProfile_ApplyReading_LevelInvariant(t *testing.T) {
	curve := NewCurve(10, 1.5)
	p := NewProfile("prof-1", "user-1", "Alice", true)

	dates := []string{"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04"}
	for _, d := range dates {
		p.ApplyReading(9, d, curve, 5)
		assert.Equal(t, curve.LevelFromXP(p.TotalXP), p.Level, "after %s", d)
		assert.LessOrEqual(t, p.Streak.CurrentStreak, p.Streak.LongestStreak)
	}
}

func TestProfile_ApplyReading_MonthRollover(t *testing.T) {
	curve := NewCurve(10, 1.5)
	p := NewProfile("prof-1", "user-1", "Alice", true)

	p.ApplyReading(20, "2025-06-30", curve, 5)
	require.Equal(t, 20, p.MonthlyXP)

	// The live monthly counter is never preserved across the boundary.
	p.ApplyReading(5, "2025-07-01", curve, 5)
	assert.Equal(t, 5, p.MonthlyXP)
	assert.Equal(t, "2025-07", p.CurrentMonth)
	assert.Equal(t, 25, p.TotalXP)
}

func TestProfile_ApplyReading_NonPositiveDelta(t *testing.T) {
	curve := NewCurve(10, 1.5)
	p := NewProfile("prof-1", "user-1", "Alice", true)

	assert.Equal(t, 0, p.ApplyReading(0, "2025-06-02", curve, 5))
	assert.Equal(t, 0, p.ApplyReading(-4, "2025-06-02", curve, 5))
	assert.Equal(t, 0, p.TotalXP)
	assert.Empty(t, p.Streak.LastReadDate)
}

func TestProfile_Upgrade(t *testing.T) {
	curve := NewCurve(10, 1.5)

	legacy := &Profile{TotalPages: 40, SchemaVersion: 1}
	legacy.ID = "prof-old"

	changed := legacy.Upgrade(curve)

	assert.True(t, changed)
	assert.Equal(t, 40, legacy.TotalXP)
	assert.Equal(t, curve.LevelFromXP(40), legacy.Level)
	assert.Equal(t, ProfileSchemaVersion, legacy.SchemaVersion)

	// Already-current records are left alone.
	assert.False(t, legacy.Upgrade(curve))
}

func TestProfile_JoinLeagueIdempotent(t *testing.T) {
	p := NewProfile("prof-1", "user-1", "Alice", true)

	assert.True(t, p.JoinLeague("league-1"))
	// The merge may be re-run by a retried transaction.
	assert.False(t, p.JoinLeague("league-1"))
	assert.Equal(t, []string{"league-1"}, p.Leagues)

	assert.True(t, p.JoinLeague("league-2"))
	assert.True(t, p.InLeague("league-2"))

	assert.True(t, p.LeaveLeague("league-1"))
	assert.False(t, p.LeaveLeague("league-1"))
	assert.Equal(t, []string{"league-2"}, p.Leagues)
}

func TestProfile_Snapshot_ReconcilesStreak(t *testing.T) {
	curve := NewCurve(10, 1.5)
	p := NewProfile("prof-1", "user-1", "Alice", true)
	p.ApplyReading(8, "2025-06-01", curve, 5)
	require.Equal(t, 1, p.Streak.CurrentStreak)

	// Idle since June 1st: the snapshot must not show an active streak.
	snap := p.Snapshot("2025-06-10")
	assert.Equal(t, 0, snap.CurrentStreak)
	assert.Equal(t, 1, snap.LongestStreak)

	// And the stale monthly counter must read as zero under a new month.
	snap = p.Snapshot("2025-07-03")
	assert.Equal(t, 0, snap.MonthlyXP)
	assert.Equal(t, "2025-07", snap.CurrentMonth)

	// Persisted state is untouched; it self-corrects on the next write.
	assert.Equal(t, 1, p.Streak.CurrentStreak)
	assert.Equal(t, 8, p.MonthlyXP)
}
