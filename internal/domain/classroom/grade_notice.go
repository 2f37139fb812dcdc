package classroom

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GradeNotice is written by the classroom subsystem when a teacher grades an assignment.
// The sync core only reads it to merge into pull deltas.
type GradeNotice struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_grade_notice_user_created,priority:1" json:"user_id"`
	ClassroomID  uuid.UUID `gorm:"type:uuid;column:classroom_id;not null" json:"classroom_id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;column:assignment_id;not null" json:"assignment_id"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Score        float64   `gorm:"column:score;not null" json:"score"`
	MaxScore     float64   `gorm:"column:max_score;not null" json:"max_score"`
	Feedback     string    `gorm:"column:feedback" json:"feedback,omitempty"`
	GradedAt     time.Time `gorm:"column:graded_at;not null" json:"graded_at"`
	// Server time the notice became visible; pull deltas are bounded on this column.
	CreatedAt time.Time `gorm:"not null;index:idx_grade_notice_user_created,priority:2" json:"created_at"`
}

func (GradeNotice) TableName() string { return "grade_notice" }

func (g *GradeNotice) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
