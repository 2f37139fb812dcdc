package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examsync-backend/internal/domain"
	"github.com/yungbote/examsync-backend/internal/data/repos/practice"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

// UnseenFilter narrows ListUnseen. Empty slices mean no restriction.
type UnseenFilter struct {
	Subjects []string
	Topics   []types.TopicKey
	Limit    int
}

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Question) ([]*types.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Question, error)
	// ListUnseen returns questions the user has never attempted, in random order.
	ListUnseen(ctx context.Context, tx *gorm.DB, userID uuid.UUID, f UnseenFilter) ([]*types.Question, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Question) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Question{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *questionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Question
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) ListUnseen(ctx context.Context, tx *gorm.DB, userID uuid.UUID, f UnseenFilter) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Question
	if userID == uuid.Nil || f.Limit <= 0 {
		return results, nil
	}
	seen := transaction.Session(&gorm.Session{NewDB: true}).
		Model(&types.Attempt{}).
		Select("question_id").
		Where("user_id = ?", userID)

	q := transaction.WithContext(ctx).Where("id NOT IN (?)", seen)
	if len(f.Subjects) > 0 {
		q = q.Where("subject IN ?", f.Subjects)
	}
	if len(f.Topics) > 0 {
		cond, args := practice.TopicKeyCondition(f.Topics)
		q = q.Where(cond, args...)
	}
	if err := q.Order("RANDOM()").
		Limit(f.Limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
