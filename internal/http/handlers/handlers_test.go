package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/examsync-backend/internal/http/response"
	"github.com/yungbote/examsync-backend/internal/platform/ctxutil"
	"github.com/yungbote/examsync-backend/internal/services"
)

type stubSync struct {
	gotID   ctxutil.Identity
	gotPush services.PushRequest
	gotPull services.PullRequest
	err     error
}

func (s *stubSync) Push(ctx context.Context, id ctxutil.Identity, req services.PushRequest) (*services.PushResult, error) {
	s.gotID, s.gotPush = id, req
	if s.err != nil {
		return nil, s.err
	}
	return &services.PushResult{AcceptedCount: len(req.Attempts)}, nil
}

func (s *stubSync) Pull(ctx context.Context, id ctxutil.Identity, req services.PullRequest) (*services.PullResult, error) {
	s.gotID, s.gotPull = id, req
	if s.err != nil {
		return nil, s.err
	}
	return &services.PullResult{}, nil
}

func (s *stubSync) Stats(ctx context.Context, id ctxutil.Identity) (*services.StatsResult, error) {
	s.gotID = id
	if s.err != nil {
		return nil, s.err
	}
	return &services.StatsResult{StreakDays: 3}, nil
}

type stubBoard struct {
	limit int
	err   error
}

func (b *stubBoard) Read(ctx context.Context, id ctxutil.Identity, limit int) (*services.LeaderboardView, error) {
	b.limit = limit
	if b.err != nil {
		return nil, b.err
	}
	return &services.LeaderboardView{Stale: true}, nil
}

var testUser = uuid.MustParse("8b7a1f3e-2c1d-4a8e-9d61-3a0f5c2b7e10")

func newTestRouter(sync services.SyncService, board services.LeaderboardService, authed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if authed {
			c.Request = c.Request.WithContext(ctxutil.WithIdentity(c.Request.Context(), ctxutil.Identity{UserID: testUser}))
		}
		c.Next()
	})
	sh := NewSyncHandler(sync)
	r.POST("/sync/push", sh.Push)
	r.POST("/sync/pull", sh.Pull)
	r.GET("/sync/stats", sh.Stats)
	r.GET("/api/leaderboard", NewLeaderboardHandler(board).Get)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
	}
	return env.Error.Code
}

func TestSyncPush(t *testing.T) {
	sync := &stubSync{}
	r := newTestRouter(sync, &stubBoard{}, true)

	body := `{"device_id":"tab-1","attempts":[{"attempt_id":"a1","question_id":"q1","selected_option":2,"client_submitted_at":"2026-09-01T09:00:00Z"}]}`
	rec := do(r, http.MethodPost, "/sync/push", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if sync.gotID.UserID != testUser || sync.gotPush.DeviceID != "tab-1" || len(sync.gotPush.Attempts) != 1 {
		t.Fatalf("request = %+v", sync.gotPush)
	}
	if a := sync.gotPush.Attempts[0]; a.SelectedOption == nil || *a.SelectedOption != 2 ||
		!a.ClientSubmittedAt.Equal(time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("attempt = %+v", a)
	}
	var res services.PushResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil || res.AcceptedCount != 1 {
		t.Fatalf("result = %s", rec.Body.String())
	}
}

func TestSyncPushErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		body   string
		authed bool
		status int
		code   string
	}{
		{"malformed", nil, `{"attempts":`, true, http.StatusBadRequest, "invalid_request"},
		{"unauthenticated", nil, `{}`, false, http.StatusUnauthorized, "unauthorized"},
		{"batch too large", services.ErrBatchTooLarge, `{}`, true, http.StatusRequestEntityTooLarge, "batch_too_large"},
		{"unknown user", services.ErrUnknownUser, `{}`, true, http.StatusUnauthorized, "unknown_user"},
		{"internal", errors.New("db gone"), `{}`, true, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&stubSync{err: tc.err}, &stubBoard{}, tc.authed)
			rec := do(r, http.MethodPost, "/sync/push", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status = %d want %d", rec.Code, tc.status)
			}
			if got := errorCode(t, rec); got != tc.code {
				t.Fatalf("code = %q want %q", got, tc.code)
			}
			if tc.status == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "db gone") {
				t.Fatalf("internal error leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestSyncPullAndStats(t *testing.T) {
	sync := &stubSync{}
	r := newTestRouter(sync, &stubBoard{}, true)

	rec := do(r, http.MethodPost, "/sync/pull", `{"last_sync_at":null,"subjects":["Math"],"limit":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("pull status = %d", rec.Code)
	}
	if sync.gotPull.LastSyncAt != nil || sync.gotPull.Limit != 10 || len(sync.gotPull.Subjects) != 1 {
		t.Fatalf("pull request = %+v", sync.gotPull)
	}

	rec = do(r, http.MethodGet, "/sync/stats", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"streak_days":3`) {
		t.Fatalf("stats = %d %s", rec.Code, rec.Body.String())
	}
}

func TestLeaderboardGet(t *testing.T) {
	board := &stubBoard{}
	r := newTestRouter(&stubSync{}, board, true)

	rec := do(r, http.MethodGet, "/api/leaderboard", "")
	if rec.Code != http.StatusOK || board.limit != defaultLeaderboardLimit {
		t.Fatalf("default = %d limit=%d", rec.Code, board.limit)
	}
	rec = do(r, http.MethodGet, "/api/leaderboard?limit=5", "")
	if rec.Code != http.StatusOK || board.limit != 5 || !strings.Contains(rec.Body.String(), `"stale":true`) {
		t.Fatalf("limit=5 = %d %s", rec.Code, rec.Body.String())
	}
	rec = do(r, http.MethodGet, "/api/leaderboard?limit=abc", "")
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_limit" {
		t.Fatalf("bad limit = %d", rec.Code)
	}

	r = newTestRouter(&stubSync{}, &stubBoard{err: services.ErrLeaderboardUnavailable}, true)
	rec = do(r, http.MethodGet, "/api/leaderboard", "")
	if rec.Code != http.StatusServiceUnavailable || errorCode(t, rec) != "leaderboard_unavailable" {
		t.Fatalf("unavailable = %d", rec.Code)
	}
}

func TestReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHealthHandler(map[string]Pinger{
		"db":    func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("refused") },
	})
	r.GET("/healthcheck", h.HealthCheck)
	r.GET("/readyz", h.Ready)

	if rec := do(r, http.MethodGet, "/healthcheck", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck = %d %q", rec.Code, rec.Body.String())
	}
	rec := do(r, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "refused") {
		t.Fatalf("readyz = %d %s", rec.Code, rec.Body.String())
	}
}
