package domain

import (
	"github.com/yungbote/examsync-backend/internal/domain/classroom"
	"github.com/yungbote/examsync-backend/internal/domain/content"
	"github.com/yungbote/examsync-backend/internal/domain/practice"
	"github.com/yungbote/examsync-backend/internal/domain/user"
)

type (
	User = user.User

	Question = content.Question

	Attempt           = practice.Attempt
	TopicMastery      = practice.TopicMastery
	TopicKey          = practice.TopicKey
	ReviewSchedule    = practice.ReviewSchedule
	UserPracticeStats = practice.UserPracticeStats

	GradeNotice = classroom.GradeNotice
)

// Models lists every persisted model, in migration order.
func Models() []any {
	return []any{
		&User{},
		&Question{},
		&Attempt{},
		&TopicMastery{},
		&ReviewSchedule{},
		&UserPracticeStats{},
		&GradeNotice{},
	}
}
