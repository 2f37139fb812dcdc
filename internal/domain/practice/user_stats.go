package practice

import (
	"time"

	"github.com/google/uuid"
)

// UserPracticeStats holds lifetime per-user counters and the daily practice streak.
// Streak days are UTC calendar days of server_received_at.
type UserPracticeStats struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`

	AttemptsCount      int `gorm:"column:attempts_count;not null;default:0" json:"attempts_count"`
	CorrectCount       int `gorm:"column:correct_count;not null;default:0" json:"correct_count"`
	SkippedCount       int `gorm:"column:skipped_count;not null;default:0" json:"skipped_count"`
	GuessingCount      int `gorm:"column:guessing_count;not null;default:0" json:"guessing_count"`
	StruggleCount      int `gorm:"column:struggle_count;not null;default:0" json:"struggle_count"`
	MisconceptionCount int `gorm:"column:misconception_count;not null;default:0" json:"misconception_count"`

	CurrentStreak int        `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	LongestStreak int        `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`
	LastActiveDay *time.Time `gorm:"column:last_active_day" json:"last_active_day,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserPracticeStats) TableName() string { return "user_practice_stats" }
