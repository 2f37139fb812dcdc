package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/examsync-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, displayName string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		DisplayName: displayName,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedQuestion creates a four-option question whose answer key is correctOption.
func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, subject, topic string, correctOption int) *types.Question {
	tb.Helper()
	opts, _ := json.Marshal([]string{"A", "B", "C", "D"})
	q := &types.Question{
		ID:            uuid.New(),
		Subject:       subject,
		Topic:         topic,
		Difficulty:    1,
		Prompt:        topic + " question",
		Options:       datatypes.JSON(opts),
		CorrectOption: correctOption,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func SeedQuestions(tb testing.TB, ctx context.Context, tx *gorm.DB, subject, topic string, n int) []*types.Question {
	tb.Helper()
	out := make([]*types.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, SeedQuestion(tb, ctx, tx, subject, topic, 1))
	}
	return out
}

func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, q *types.Question, correct bool, at time.Time) *types.Attempt {
	tb.Helper()
	sel := q.CorrectOption
	if !correct {
		sel = q.CorrectOption + 1
	}
	a := &types.Attempt{
		ID:                uuid.New(),
		UserID:            userID,
		AttemptID:         uuid.New(),
		DeviceID:          "seed-device",
		QuestionID:        q.ID,
		Subject:           q.Subject,
		Topic:             q.Topic,
		SelectedOption:    &sel,
		IsCorrect:         correct,
		ClientSubmittedAt: at.UTC(),
		ServerReceivedAt:  at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return a
}

func SeedGradeNotice(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string, createdAt time.Time) *types.GradeNotice {
	tb.Helper()
	g := &types.GradeNotice{
		ID:           uuid.New(),
		UserID:       userID,
		ClassroomID:  uuid.New(),
		AssignmentID: uuid.New(),
		Title:        title,
		Score:        8,
		MaxScore:     10,
		GradedAt:     createdAt.UTC(),
		CreatedAt:    createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed grade notice: %v", err)
	}
	return g
}
