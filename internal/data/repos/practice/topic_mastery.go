package practice

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/examsync-backend/internal/domain"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

type TopicMasteryRepo interface {
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subjects []string) ([]*types.TopicMastery, error)
	GetByUserAndKeys(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keys []types.TopicKey) ([]*types.TopicMastery, error)
	// Save inserts rows without an id and updates the rest.
	Save(ctx context.Context, tx *gorm.DB, rows []*types.TopicMastery) error
}

type topicMasteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicMasteryRepo(db *gorm.DB, baseLog *logger.Logger) TopicMasteryRepo {
	repoLog := baseLog.With("repo", "TopicMasteryRepo")
	return &topicMasteryRepo{db: db, log: repoLog}
}

func (r *topicMasteryRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, subjects []string) ([]*types.TopicMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TopicMastery
	if userID == uuid.Nil {
		return results, nil
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if len(subjects) > 0 {
		q = q.Where("subject IN ?", subjects)
	}
	if err := q.Order("subject ASC, topic ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *topicMasteryRepo) GetByUserAndKeys(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keys []types.TopicKey) ([]*types.TopicMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.TopicMastery
	if userID == uuid.Nil || len(keys) == 0 {
		return results, nil
	}
	cond, args := TopicKeyCondition(keys)
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(cond, args...).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *topicMasteryRepo) Save(ctx context.Context, tx *gorm.DB, rows []*types.TopicMastery) error {
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

// TopicKeyCondition renders "(subject = ? AND topic = ?) OR ..." for a set of keys.
func TopicKeyCondition(keys []types.TopicKey) (string, []interface{}) {
	parts := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		parts = append(parts, "(subject = ? AND topic = ?)")
		args = append(args, k.Subject, k.Topic)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
