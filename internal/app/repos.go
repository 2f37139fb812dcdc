package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/examsync-backend/internal/data/repos"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type Repos struct {
	Users        repos.UserRepo
	Questions    repos.QuestionRepo
	GradeNotices repos.GradeNoticeRepo
	Attempts     repos.AttemptRepo
	Mastery      repos.TopicMasteryRepo
	Schedules    repos.ReviewScheduleRepo
	Stats        repos.UserStatsRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Users:        repos.NewUserRepo(db, log),
		Questions:    repos.NewQuestionRepo(db, log),
		GradeNotices: repos.NewGradeNoticeRepo(db, log),
		Attempts:     repos.NewAttemptRepo(db, log),
		Mastery:      repos.NewTopicMasteryRepo(db, log),
		Schedules:    repos.NewReviewScheduleRepo(db, log),
		Stats:        repos.NewUserStatsRepo(db, log),
	}
}
