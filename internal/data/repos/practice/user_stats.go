package practice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/examsync-backend/internal/domain"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type UserStatsRepo interface {
	// Get returns nil, nil when the user has no stats yet.
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserPracticeStats, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.UserPracticeStats) error
}

type userStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	repoLog := baseLog.With("repo", "UserStatsRepo")
	return &userStatsRepo{db: db, log: repoLog}
}

func (r *userStatsRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserPracticeStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.UserPracticeStats
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userStatsRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.UserPracticeStats) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"attempts_count",
				"correct_count",
				"skipped_count",
				"guessing_count",
				"struggle_count",
				"misconception_count",
				"current_streak",
				"longest_streak",
				"last_active_day",
				"updated_at",
			}),
		}).
		Create(row).Error
}
