package classroom

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examsync-backend/internal/domain"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type GradeNoticeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.GradeNotice) ([]*types.GradeNotice, error)
	// ListSince returns notices with after < created_at <= until, oldest first. A nil after
	// means from the beginning.
	ListSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, after *time.Time, until time.Time, limit int) ([]*types.GradeNotice, error)
}

type gradeNoticeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGradeNoticeRepo(db *gorm.DB, baseLog *logger.Logger) GradeNoticeRepo {
	repoLog := baseLog.With("repo", "GradeNoticeRepo")
	return &gradeNoticeRepo{db: db, log: repoLog}
}

func (r *gradeNoticeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.GradeNotice) ([]*types.GradeNotice, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.GradeNotice{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gradeNoticeRepo) ListSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, after *time.Time, until time.Time, limit int) ([]*types.GradeNotice, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.GradeNotice
	if userID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ? AND created_at <= ?", userID, until.UTC())
	if after != nil && !after.IsZero() {
		q = q.Where("created_at > ?", after.UTC())
	}
	q = q.Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
