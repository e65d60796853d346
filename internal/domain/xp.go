package domain

import "math"

// MaxLevel caps the level search loop so it always terminates, even if a
// corrupted record carries an absurd XP total. Nobody legitimately gets
// anywhere near this.
const MaxLevel = 1000

// Curve maps between cumulative XP and an integer level >= 1 using a
// geometric progression: advancing out of level n costs
// floor(Base * Multiplier^(n-1)) XP.
//
// Each per-level cost is floored before it is summed into the cumulative
// threshold. Summing first and flooring after would produce a different
// curve, so the order matters.
type Curve struct {
	Base       int
	Multiplier float64
}

// NewCurve creates a level curve with the given tunables.
func NewCurve(base int, multiplier float64) Curve {
	return Curve{Base: base, Multiplier: multiplier}
}

// XPRequiredForLevel returns the incremental XP needed to go from level to
// level+1. Levels below 1 are treated as level 1.
func (c Curve) XPRequiredForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(float64(c.Base) * math.Pow(c.Multiplier, float64(level-1))))
}

// CumulativeXPForLevel returns the total XP needed to reach the given level
// from zero. Level 1 is the floor; it costs nothing.
func (c Curve) CumulativeXPForLevel(level int) int {
	total := 0
	for i := 1; i < level; i++ {
		total += c.XPRequiredForLevel(i)
	}
	return total
}

// LevelFromXP returns the largest level whose cumulative threshold does not
// exceed totalXP. Negative XP should never survive validation; if it shows
// up anyway it is treated as zero.
func (c Curve) LevelFromXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}

	level := 1
	cumulative := 0
	for level < MaxLevel {
		next := cumulative + c.XPRequiredForLevel(level)
		if next > totalXP {
			break
		}
		cumulative = next
		level++
	}
	return level
}

// ProgressFraction returns how far totalXP has progressed through its
// current level, in [0, 1). Used for progress bars.
func (c Curve) ProgressFraction(totalXP int) float64 {
	if totalXP < 0 {
		totalXP = 0
	}

	level := c.LevelFromXP(totalXP)
	floor := c.CumulativeXPForLevel(level)
	required := c.XPRequiredForLevel(level)
	if required <= 0 {
		return 0
	}

	frac := float64(totalXP-floor) / float64(required)
	// Only reachable at the level cap, where XP keeps accruing past the
	// last threshold.
	if frac > 1 {
		frac = 1
	}
	return frac
}
