package content

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question is owned by the content subsystem; the sync core reads it for answer keys and
// for building pull deltas.
type Question struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Subject    string    `gorm:"column:subject;not null;index:idx_question_subject_topic,priority:1" json:"subject"`
	Topic      string    `gorm:"column:topic;not null;index:idx_question_subject_topic,priority:2" json:"topic"`
	Difficulty int       `gorm:"column:difficulty;not null;default:1" json:"difficulty"`
	Prompt     string    `gorm:"column:prompt;not null" json:"prompt"`
	// JSON array of option labels, indexed by selected_option.
	Options       datatypes.JSON `gorm:"column:options" json:"options"`
	CorrectOption int            `gorm:"column:correct_option;not null" json:"correct_option"`
	Explanation   string         `gorm:"column:explanation" json:"explanation,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// OptionCount returns the number of options, or 0 when Options is empty or malformed.
func (q *Question) OptionCount() int {
	if q == nil || len(q.Options) == 0 {
		return 0
	}
	var opts []json.RawMessage
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return 0
	}
	return len(opts)
}

// IsCorrect grades a selected option against the answer key. A nil selection is a skip and
// never correct.
func (q *Question) IsCorrect(selected *int) bool {
	if q == nil || selected == nil {
		return false
	}
	return *selected == q.CorrectOption
}
