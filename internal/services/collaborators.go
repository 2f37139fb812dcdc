package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/examsync-backend/internal/data/repos"
	types "github.com/yungbote/examsync-backend/internal/domain"
)

// QuestionCatalog is the content subsystem as seen by the sync core.
type QuestionCatalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*types.Question, error)
	ListUnseen(ctx context.Context, userID uuid.UUID, f repos.UnseenFilter) ([]*types.Question, error)
}

// GradeFeed is the classroom subsystem's stream of graded-assignment notices.
type GradeFeed interface {
	ListSince(ctx context.Context, userID uuid.UUID, after *time.Time, until time.Time) ([]*types.GradeNotice, error)
}

type questionCatalog struct {
	repo repos.QuestionRepo
}

func NewQuestionCatalog(repo repos.QuestionRepo) QuestionCatalog {
	return &questionCatalog{repo: repo}
}

func (c *questionCatalog) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*types.Question, error) {
	return c.repo.GetByIDs(ctx, nil, ids)
}

func (c *questionCatalog) ListUnseen(ctx context.Context, userID uuid.UUID, f repos.UnseenFilter) ([]*types.Question, error) {
	return c.repo.ListUnseen(ctx, nil, userID, f)
}

type gradeFeed struct {
	repo repos.GradeNoticeRepo
}

// NewGradeFeed returns every notice in the window. The client echoes server_time back as
// last_sync_at, so a capped page would drop notices for good.
func NewGradeFeed(repo repos.GradeNoticeRepo) GradeFeed {
	return &gradeFeed{repo: repo}
}

func (f *gradeFeed) ListSince(ctx context.Context, userID uuid.UUID, after *time.Time, until time.Time) ([]*types.GradeNotice, error) {
	return f.repo.ListSince(ctx, nil, userID, after, until, 0)
}
