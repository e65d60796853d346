package domain

// StreakState tracks a profile's consecutive qualifying reading days.
// A day qualifies when its page tally meets the daily goal. The state is
// only written when the profile records pages, so it can be stale for
// idle profiles; Reconcile corrects that at read time.
type StreakState struct {
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	LastReadDate   string `json:"last_read_date,omitempty"`
	PagesReadToday int    `json:"pages_read_today"`
	XPEarnedToday  int    `json:"xp_earned_today"`
}

// Advance evaluates a page-reading event against the streak state and
// returns the updated state. pagesAdded is the non-negative delta since
// the last save, today the caller's wall-clock calendar date, goal the
// daily qualification threshold.
//
// The rules:
//   - A new calendar day starts a fresh tally, even after an idle gap.
//   - Crossing the goal the day after a qualifying day extends the streak.
//   - Crossing the goal again within the same day changes nothing; the
//     increment already happened earlier today.
//   - Crossing the goal after a gap of two or more days restarts at 1.
//   - Below goal with a gap before today, the streak is already broken.
//     Below goal the day after a qualifying day, the break is deferred
//     to the next day's evaluation.
func (s StreakState) Advance(pagesAdded int, today string, goal int) StreakState {
	if pagesAdded < 0 {
		pagesAdded = 0
	}

	out := s
	sameDay := s.LastReadDate == today

	if sameDay {
		out.PagesReadToday += pagesAdded
		out.XPEarnedToday += pagesAdded
	} else {
		out.PagesReadToday = pagesAdded
		out.XPEarnedToday = pagesAdded
	}

	yesterday := Yesterday(today)

	if out.PagesReadToday >= goal {
		switch {
		case s.LastReadDate == yesterday:
			out.CurrentStreak++
		case sameDay:
			// Goal was already crossed earlier today; streak counted then.
		default:
			out.CurrentStreak = 1
		}
		if out.CurrentStreak > out.LongestStreak {
			out.LongestStreak = out.CurrentStreak
		}
	} else if s.LastReadDate != "" && s.LastReadDate < yesterday {
		out.CurrentStreak = 0
	}

	out.LastReadDate = today
	return out
}

// Reconcile returns the state as it should be displayed or ranked on the
// given date. A profile that stopped reading keeps a stale positive streak
// until its next write; this corrects the view without persisting anything.
// The stored value self-corrects on the next Advance.
func (s StreakState) Reconcile(today string) StreakState {
	out := s
	if s.LastReadDate != today {
		// Yesterday's tally is not today's.
		out.PagesReadToday = 0
		out.XPEarnedToday = 0
	}
	if s.CurrentStreak > 0 && s.LastReadDate < Yesterday(today) {
		out.CurrentStreak = 0
	}
	return out
}
