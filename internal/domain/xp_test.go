package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurve_XPRequiredForLevel(t *testing.T) {
	curve := NewCurve(10, 1.5)

	tests := []struct {
		level int
		want  int
	}{
		{1, 10},
		{2, 15},
		{3, 22}, // floor(10 * 1.5^2) = floor(22.5)
		{4, 33}, // floor(10 * 1.5^3) = floor(33.75)
		{0, 10}, // below 1 treated as level 1
		{-5, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, curve.XPRequiredForLevel(tt.level), "level %d", tt.level)
	}
}

func TestCurve_CumulativeXPForLevel(t *testing.T) {
	curve := NewCurve(10, 1.5)

	tests := []struct {
		level int
		want  int
	}{
		{1, 0},
		{0, 0},
		{2, 10},
		{3, 25},      // 10 + 15
		{4, 47},      // 10 + 15 + 22
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, curve.CumulativeXPForLevel(tt.level), "level %d", tt.level)
	}
}

func TestCurve_LevelFromXP(t *testing.T) {
	curve := NewCurve(10, 1.5)

	tests := []struct {
		totalXP int
		want    int
	}{
		{0, 1},
		{-10, 1},
		{9, 1},
		{10, 2},
		{24, 2},
		{25, 3},
		{46, 3},
		{47, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, curve.LevelFromXP(tt.totalXP), "xp %d", tt.totalXP)
	}
}

func TestCurve_LevelMonotonic(t *testing.T) {
	curve := NewCurve(10, 1.5)

	prev := 1
	for xp := 0; xp <= 5000; xp++ {
		level := curve.LevelFromXP(xp)
		assert.GreaterOrEqual(t, level, prev, "level dropped at xp %d", xp)
		prev = level
	}
}

func TestCurve_RoundTrip(t *testing.T) {
	curve := NewCurve(10, 1.5)

	for level := 1; level <= 30; level++ {
		threshold := curve.CumulativeXPForLevel(level)
		assert.Equal(t, level, curve.LevelFromXP(threshold), "threshold for level %d", level)
		if level > 1 {
			assert.Less(t, curve.LevelFromXP(threshold-1), level, "one below threshold for level %d", level)
		}
	}
}

func TestCurve_LevelCap(t *testing.T) {
	curve := NewCurve(10, 1.5)

	// An absurd XP total must terminate at the cap, not loop forever.
	assert.Equal(t, MaxLevel, curve.LevelFromXP(int(^uint(0)>>1)))
}

func TestCurve_ProgressFraction(t *testing.T) {
	curve := NewCurve(10, 1.5)

	assert.InDelta(t, 0.0, curve.ProgressFraction(0), 1e-9)
	assert.InDelta(t, 0.5, curve.ProgressFraction(5), 1e-9)  // 5 of 10 into level 1
	assert.InDelta(t, 0.0, curve.ProgressFraction(10), 1e-9) // exactly level 2
	assert.InDelta(t, 0.0, curve.ProgressFraction(-3), 1e-9)

	for xp := 0; xp <= 1000; xp++ {
		frac := curve.ProgressFraction(xp)
		assert.GreaterOrEqual(t, frac, 0.0, "xp %d", xp)
		assert.Less(t, frac, 1.0, "xp %d", xp)
	}
}
