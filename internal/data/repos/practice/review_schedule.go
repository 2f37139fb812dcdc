package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examsync-backend/internal/domain"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

// ScheduleBucket counts schedule rows sharing the fields phase is derived from.
type ScheduleBucket struct {
	RepetitionCount int   `gorm:"column:repetition_count"`
	Lapsed          bool  `gorm:"column:lapsed"`
	Due             bool  `gorm:"column:due"`
	Count           int64 `gorm:"column:n"`
}

type ReviewScheduleRepo interface {
	GetByUserAndQuestions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, questionIDs []uuid.UUID) ([]*types.ReviewSchedule, error)
	Save(ctx context.Context, tx *gorm.DB, rows []*types.ReviewSchedule) error
	// ListDue returns rows with due_at <= now, earliest first.
	ListDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, subjects []string, limit int) ([]*types.ReviewSchedule, error)
	Buckets(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) ([]ScheduleBucket, error)
}

type reviewScheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ReviewScheduleRepo {
	repoLog := baseLog.With("repo", "ReviewScheduleRepo")
	return &reviewScheduleRepo{db: db, log: repoLog}
}

func (r *reviewScheduleRepo) GetByUserAndQuestions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, questionIDs []uuid.UUID) ([]*types.ReviewSchedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ReviewSchedule
	if userID == uuid.Nil || len(questionIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND question_id IN ?", userID, questionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewScheduleRepo) Save(ctx context.Context, tx *gorm.DB, rows []*types.ReviewSchedule) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	for _, row := range rows {
		if row == nil {
			continue
		}
		var err error
		if row.ID == uuid.Nil {
			err = transaction.WithContext(ctx).Create(row).Error
		} else {
			err = transaction.WithContext(ctx).Save(row).Error
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *reviewScheduleRepo) ListDue(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time, subjects []string, limit int) ([]*types.ReviewSchedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ReviewSchedule
	if userID == uuid.Nil || limit <= 0 {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ? AND due_at <= ?", userID, now.UTC())
	if len(subjects) > 0 {
		q = q.Where("subject IN ?", subjects)
	}
	if err := q.Order("due_at ASC, id ASC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewScheduleRepo) Buckets(ctx context.Context, tx *gorm.DB, userID uuid.UUID, now time.Time) ([]ScheduleBucket, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []ScheduleBucket
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ReviewSchedule{}).
		Select(`repetition_count,
			CASE WHEN lapse_count > 0 THEN 1 ELSE 0 END AS lapsed,
			CASE WHEN due_at <= ? THEN 1 ELSE 0 END AS due,
			COUNT(*) AS n`, now.UTC()).
		Where("user_id = ?", userID).
		Group("1, 2, 3").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
