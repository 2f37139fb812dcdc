package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TopicMastery is the rolling aggregate for one (user, subject, topic). It is only ever
// recomputed from accepted attempts.
type TopicMastery struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_topic_mastery_user_topic,unique,priority:1" json:"user_id"`
	Subject string    `gorm:"column:subject;not null;index:idx_topic_mastery_user_topic,unique,priority:2" json:"subject"`
	Topic   string    `gorm:"column:topic;not null;index:idx_topic_mastery_user_topic,unique,priority:3" json:"topic"`

	AttemptsCount   int     `gorm:"column:attempts_count;not null;default:0" json:"attempts_count"`
	CorrectCount    int     `gorm:"column:correct_count;not null;default:0" json:"correct_count"`
	RollingAccuracy float64 `gorm:"column:rolling_accuracy;not null;default:0" json:"rolling_accuracy"`
	// JSON array of the most recent outcomes, oldest first, bounded by the mastery window.
	RecentOutcomes datatypes.JSON `gorm:"column:recent_outcomes" json:"-"`

	GuessingCount      int `gorm:"column:guessing_count;not null;default:0" json:"guessing_count"`
	StruggleCount      int `gorm:"column:struggle_count;not null;default:0" json:"struggle_count"`
	MisconceptionCount int `gorm:"column:misconception_count;not null;default:0" json:"misconception_count"`

	LastAttemptAt *time.Time `gorm:"column:last_attempt_at" json:"last_attempt_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (TopicMastery) TableName() string { return "topic_mastery" }

func (m *TopicMastery) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TopicKey identifies a subject-topic pairing.
type TopicKey struct {
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
}

func (m *TopicMastery) Key() TopicKey { return TopicKey{Subject: m.Subject, Topic: m.Topic} }
