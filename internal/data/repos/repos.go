package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/examsync-backend/internal/data/repos/classroom"
	"github.com/yungbote/examsync-backend/internal/data/repos/content"
	"github.com/yungbote/examsync-backend/internal/data/repos/practice"
	"github.com/yungbote/examsync-backend/internal/data/repos/user"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type QuestionRepo = content.QuestionRepo
type UnseenFilter = content.UnseenFilter

type GradeNoticeRepo = classroom.GradeNoticeRepo

type AttemptRepo = practice.AttemptRepo
type UserWindowTotal = practice.UserWindowTotal
type TopicMasteryRepo = practice.TopicMasteryRepo
type ReviewScheduleRepo = practice.ReviewScheduleRepo
type ScheduleBucket = practice.ScheduleBucket
type UserStatsRepo = practice.UserStatsRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return content.NewQuestionRepo(db, baseLog)
}

func NewGradeNoticeRepo(db *gorm.DB, baseLog *logger.Logger) GradeNoticeRepo {
	return classroom.NewGradeNoticeRepo(db, baseLog)
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return practice.NewAttemptRepo(db, baseLog)
}

func NewTopicMasteryRepo(db *gorm.DB, baseLog *logger.Logger) TopicMasteryRepo {
	return practice.NewTopicMasteryRepo(db, baseLog)
}

func NewReviewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ReviewScheduleRepo {
	return practice.NewReviewScheduleRepo(db, baseLog)
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	return practice.NewUserStatsRepo(db, baseLog)
}

var LockUserAggregates = practice.LockUserAggregates
