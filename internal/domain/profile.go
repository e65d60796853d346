package domain

import "slices"

// Current profile schema version. Version 1 records predate the XP
// migration and carry pages but no XP.
const ProfileSchemaVersion = 2

// Profile is a named reading tracker belonging to one account. An account
// may own several profiles (family members sharing one login). All
// gamification state hangs off the profile, not the account.
type Profile struct {
	Syncable
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"is_primary"`

	// TotalPages is the legacy metric from before the XP migration.
	// Still maintained because old leaderboard rows rank by it.
	TotalPages int `json:"total_pages"`
	TotalXP    int `json:"total_xp"`
	Level      int `json:"level"`

	Streak StreakState `json:"streak"`

	// MonthlyXP counts the current month only; it is never preserved
	// across the month boundary. Past months come from reading history.
	MonthlyXP    int    `json:"monthly_xp"`
	CurrentMonth string `json:"current_month,omitempty"`

	// Leagues this profile is a member of. Order is irrelevant.
	Leagues []string `json:"leagues,omitempty"`

	SchemaVersion int `json:"schema_version"`
}

// NewProfile creates a profile with gamification state zeroed.
func NewProfile(id, userID, name string, primary bool) *Profile {
	p := &Profile{
		UserID:        userID,
		Name:          name,
		IsPrimary:     primary,
		Level:         1,
		SchemaVersion: ProfileSchemaVersion,
	}
	p.ID = id
	p.InitTimestamps()
	return p
}

// Upgrade applies the versioned-record migration at load time. Version 1
// records earned pages before XP existed; their page total becomes their
// XP total (1 page = 1 XP). Returns true if the record changed and should
// be written back.
func (p *Profile) Upgrade(curve Curve) bool {
	if p.SchemaVersion >= ProfileSchemaVersion {
		return false
	}
	if p.TotalXP == 0 && p.TotalPages > 0 {
		p.TotalXP = p.TotalPages
	}
	p.Level = curve.LevelFromXP(p.TotalXP)
	p.SchemaVersion = ProfileSchemaVersion
	return true
}

// ApplyReading records pagesAdded pages read on the given date and updates
// the page total, XP total, derived level, monthly counter and streak
// state together, so the level invariant holds after every mutation.
// Returns the XP earned by this event.
func (p *Profile) ApplyReading(pagesAdded int, today string, curve Curve, dailyGoal int) int {
	if pagesAdded <= 0 {
		return 0
	}

	xpEarned := pagesAdded // 1 page = 1 XP

	p.TotalPages += pagesAdded
	p.TotalXP += xpEarned
	p.Level = curve.LevelFromXP(p.TotalXP)

	month := MonthOf(today)
	if p.CurrentMonth != month {
		// Calendar rolled over; last month's counter is gone for good.
		p.MonthlyXP = 0
		p.CurrentMonth = month
	}
	p.MonthlyXP += xpEarned

	p.Streak = p.Streak.Advance(pagesAdded, today, dailyGoal)
	p.Touch()
	return xpEarned
}

// JoinLeague appends the league id if absent. Idempotent and side-effect
// free on repeat, so the store's transaction retry can safely re-run it.
func (p *Profile) JoinLeague(leagueID string) bool {
	if slices.Contains(p.Leagues, leagueID) {
		return false
	}
	p.Leagues = append(p.Leagues, leagueID)
	p.Touch()
	return true
}

// LeaveLeague removes the league id if present.
func (p *Profile) LeaveLeague(leagueID string) bool {
	idx := slices.Index(p.Leagues, leagueID)
	if idx < 0 {
		return false
	}
	p.Leagues = slices.Delete(p.Leagues, idx, idx+1)
	p.Touch()
	return true
}

// InLeague reports league membership.
func (p *Profile) InLeague(leagueID string) bool {
	return slices.Contains(p.Leagues, leagueID)
}

// Snapshot builds the denormalized leaderboard record for this profile,
// reconciled against the given date so idle streaks read as broken.
func (p *Profile) Snapshot(today string) LeaderboardSnapshot {
	streak := p.Streak.Reconcile(today)

	monthlyXP := p.MonthlyXP
	month := p.CurrentMonth
	if month != MonthOf(today) {
		monthlyXP = 0
		month = MonthOf(today)
	}

	return LeaderboardSnapshot{
		ProfileID:     p.ID,
		Name:          p.Name,
		Level:         p.Level,
		TotalPages:    p.TotalPages,
		TotalXP:       p.TotalXP,
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
		LastReadDate:  streak.LastReadDate,
		MonthlyXP:     monthlyXP,
		CurrentMonth:  month,
	}
}
