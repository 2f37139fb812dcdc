package spacedrep

import (
	"time"

	types "github.com/yungbote/examsync-backend/internal/domain"
)

// FromRow loads scheduling state from a persisted row. A nil row is a new question.
func (c Config) FromRow(row *types.ReviewSchedule, now time.Time) State {
	if row == nil {
		return c.NewState(now)
	}
	return State{
		Repetitions:  row.RepetitionCount,
		Easiness:     row.EasinessFactor,
		IntervalDays: row.IntervalDays,
		DueAt:        row.DueAt,
		LastGrade:    Grade(row.LastGrade),
		Reviews:      row.ReviewCount,
		Lapses:       row.LapseCount,
		LastReviewed: row.LastReviewedAt,
	}
}

// ApplyTo writes state back into the row; identity columns are left alone.
func ApplyTo(row *types.ReviewSchedule, s State) {
	row.RepetitionCount = s.Repetitions
	row.EasinessFactor = s.Easiness
	row.IntervalDays = s.IntervalDays
	row.DueAt = s.DueAt
	row.LastGrade = int(s.LastGrade)
	row.ReviewCount = s.Reviews
	row.LapseCount = s.Lapses
	row.LastReviewedAt = s.LastReviewed
}

func (c Config) PhaseOf(row *types.ReviewSchedule) Phase {
	if row == nil {
		return PhaseNew
	}
	return c.Phase(c.FromRow(row, row.DueAt))
}
