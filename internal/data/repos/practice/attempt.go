package practice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/examsync-backend/internal/domain"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

// UserWindowTotal is one user's attempt totals inside a time window.
type UserWindowTotal struct {
	UserID   uuid.UUID `gorm:"column:user_id"`
	Attempts int64     `gorm:"column:attempts"`
	Correct  int64     `gorm:"column:correct"`
}

type AttemptRepo interface {
	// InsertIfAbsent stores the attempt unless (user_id, attempt_id) already exists and reports
	// whether a row was written.
	InsertIfAbsent(ctx context.Context, tx *gorm.DB, row *types.Attempt) (bool, error)
	ExistingAttemptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, attemptIDs []uuid.UUID) ([]uuid.UUID, error)
	GetByUserAndAttemptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, attemptIDs []uuid.UUID) ([]*types.Attempt, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	// WindowTotalsPage returns per-user totals for from <= server_received_at < to, for users
	// strictly after afterUser, ordered by user id.
	WindowTotalsPage(ctx context.Context, tx *gorm.DB, from, to time.Time, afterUser uuid.UUID, limit int) ([]UserWindowTotal, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	repoLog := baseLog.With("repo", "AttemptRepo")
	return &attemptRepo{db: db, log: repoLog}
}

func (r *attemptRepo) InsertIfAbsent(ctx context.Context, tx *gorm.DB, row *types.Attempt) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return false, nil
	}
	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "attempt_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *attemptRepo) ExistingAttemptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, attemptIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	out := []uuid.UUID{}
	if userID == uuid.Nil || len(attemptIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Attempt{}).
		Where("user_id = ? AND attempt_id IN ?", userID, attemptIDs).
		Pluck("attempt_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *attemptRepo) GetByUserAndAttemptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, attemptIDs []uuid.UUID) ([]*types.Attempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Attempt
	if userID == uuid.Nil || len(attemptIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND attempt_id IN ?", userID, attemptIDs).
		Order("server_received_at ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attemptRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Attempt{}).
		Where("user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *attemptRepo) WindowTotalsPage(ctx context.Context, tx *gorm.DB, from, to time.Time, afterUser uuid.UUID, limit int) ([]UserWindowTotal, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 500
	}
	var results []UserWindowTotal
	q := transaction.WithContext(ctx).
		Model(&types.Attempt{}).
		Select("user_id, COUNT(*) AS attempts, SUM(CASE WHEN is_correct THEN 1 ELSE 0 END) AS correct").
		Where("server_received_at >= ? AND server_received_at < ?", from.UTC(), to.UTC())
	if afterUser != uuid.Nil {
		q = q.Where("user_id > ?", afterUser)
	}
	if err := q.Group("user_id").
		Order("user_id ASC").
		Limit(limit).
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
