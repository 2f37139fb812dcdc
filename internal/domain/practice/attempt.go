package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attempt is an immutable fact: one answer (or skip) submitted by a device. It is never updated
// or deleted after insert. (UserID, AttemptID) is the idempotency key.
type Attempt struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_attempt_user_client,unique,priority:1;index:idx_attempt_user_question,priority:1" json:"user_id"`
	// Client-generated idempotency key.
	AttemptID  uuid.UUID `gorm:"type:uuid;column:attempt_id;not null;index:idx_attempt_user_client,unique,priority:2" json:"attempt_id"`
	DeviceID   string    `gorm:"column:device_id;not null" json:"device_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;column:question_id;not null;index:idx_attempt_user_question,priority:2" json:"question_id"`
	Subject    string    `gorm:"column:subject;not null" json:"subject"`
	Topic      string    `gorm:"column:topic;not null" json:"topic"`

	SelectedOption *int `gorm:"column:selected_option" json:"selected_option,omitempty"`
	// Always derived from the answer key on the server.
	IsCorrect bool `gorm:"column:is_correct;not null" json:"is_correct"`
	Skipped   bool `gorm:"column:skipped;not null" json:"skipped"`

	TimeTakenMs     *int   `gorm:"column:time_taken_ms" json:"time_taken_ms,omitempty"`
	ConfidenceLevel *int   `gorm:"column:confidence_level" json:"confidence_level,omitempty"`
	NetworkType     string `gorm:"column:network_type" json:"network_type,omitempty"`

	// Client clock, only used for ordering within a batch and analytics.
	ClientSubmittedAt time.Time `gorm:"column:client_submitted_at;not null" json:"client_submitted_at"`
	ServerReceivedAt  time.Time `gorm:"column:server_received_at;not null;index" json:"server_received_at"`
}

func (Attempt) TableName() string { return "attempt" }

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
