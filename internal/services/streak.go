package services

import (
	"time"

	types "github.com/yungbote/examsync-backend/internal/domain"
)

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// advanceStreak records practice on the UTC day of at.
func advanceStreak(st *types.UserPracticeStats, at time.Time) {
	day := utcDay(at)
	switch {
	case st.LastActiveDay == nil:
		st.CurrentStreak = 1
	case day.Equal(utcDay(*st.LastActiveDay)):
		if st.CurrentStreak == 0 {
			st.CurrentStreak = 1
		}
	case day.Before(utcDay(*st.LastActiveDay)):
		// Server time does not go backwards in practice; keep the later day.
		return
	case day.Equal(utcDay(*st.LastActiveDay).AddDate(0, 0, 1)):
		st.CurrentStreak++
	default:
		st.CurrentStreak = 1
	}
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	st.LastActiveDay = &day
}

// liveStreak is the streak as of now: it lapses once a full UTC day passes without practice.
func liveStreak(st *types.UserPracticeStats, now time.Time) int {
	if st == nil || st.LastActiveDay == nil {
		return 0
	}
	yesterday := utcDay(now).AddDate(0, 0, -1)
	if utcDay(*st.LastActiveDay).Before(yesterday) {
		return 0
	}
	return st.CurrentStreak
}
