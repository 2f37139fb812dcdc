package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewSchedule is the SM-2 state of one (user, question). Created lazily on the first
// attempt at a question.
type ReviewSchedule struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_review_user_question,unique,priority:1;index:idx_review_user_due,priority:1" json:"user_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;column:question_id;not null;index:idx_review_user_question,unique,priority:2" json:"question_id"`
	Subject    string    `gorm:"column:subject;not null" json:"subject"`
	Topic      string    `gorm:"column:topic;not null" json:"topic"`

	RepetitionCount int       `gorm:"column:repetition_count;not null;default:0" json:"repetition_count"`
	EasinessFactor  float64   `gorm:"column:easiness_factor;not null;default:2.5" json:"easiness_factor"`
	IntervalDays    int       `gorm:"column:interval_days;not null;default:0" json:"interval_days"`
	DueAt           time.Time `gorm:"column:due_at;not null;index:idx_review_user_due,priority:2" json:"due_at"`
	LastGrade       int       `gorm:"column:last_grade;not null;default:0" json:"last_grade"`
	ReviewCount     int       `gorm:"column:review_count;not null;default:0" json:"review_count"`
	LapseCount      int       `gorm:"column:lapse_count;not null;default:0" json:"lapse_count"`

	LastReviewedAt *time.Time `gorm:"column:last_reviewed_at" json:"last_reviewed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (ReviewSchedule) TableName() string { return "review_schedule" }

func (r *ReviewSchedule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
