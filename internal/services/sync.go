package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/examsync-backend/internal/data/aggregates"
	"github.com/yungbote/examsync-backend/internal/data/repos"
	types "github.com/yungbote/examsync-backend/internal/domain"
	"github.com/yungbote/examsync-backend/internal/modules/practice/dedup"
	"github.com/yungbote/examsync-backend/internal/modules/practice/mastery"
	"github.com/yungbote/examsync-backend/internal/modules/practice/policy"
	"github.com/yungbote/examsync-backend/internal/modules/practice/psychometric"
	"github.com/yungbote/examsync-backend/internal/modules/practice/selection"
	"github.com/yungbote/examsync-backend/internal/modules/practice/spacedrep"
	"github.com/yungbote/examsync-backend/internal/observability"
	"github.com/yungbote/examsync-backend/internal/platform/ctxutil"
	"github.com/yungbote/examsync-backend/internal/platform/dbctx"
	"github.com/yungbote/examsync-backend/internal/platform/keylock"
	"github.com/yungbote/examsync-backend/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/examsync-backend/internal/services")

// AttemptInput is one attempt as the client recorded it offline.
type AttemptInput struct {
	AttemptID         string     `json:"attempt_id"`
	QuestionID        string     `json:"question_id"`
	SelectedOption    *int       `json:"selected_option"`
	ClientSubmittedAt *time.Time `json:"client_submitted_at"`
	TimeTakenMs       *int       `json:"time_taken_ms,omitempty"`
	ConfidenceLevel   *int       `json:"confidence_level,omitempty"`
	Skipped           bool       `json:"skipped,omitempty"`
	NetworkType       string     `json:"network_type,omitempty"`
	// Client-asserted correctness. Accepted on the wire, never trusted.
	IsCorrect *bool `json:"is_correct,omitempty"`
}

type PushRequest struct {
	DeviceID string         `json:"device_id"`
	Attempts []AttemptInput `json:"attempts"`
}

type PushResult struct {
	AcceptedCount  int       `json:"accepted_count"`
	DuplicateCount int       `json:"duplicate_count"`
	InvalidCount   int       `json:"invalid_count"`
	ServerTime     time.Time `json:"server_time"`
}

type PullRequest struct {
	LastSyncAt *time.Time `json:"last_sync_at"`
	Subjects   []string   `json:"subjects,omitempty"`
	Limit      int        `json:"limit"`
}

type PulledQuestion struct {
	ID            uuid.UUID       `json:"id"`
	Subject       string          `json:"subject"`
	Topic         string          `json:"topic"`
	Difficulty    int             `json:"difficulty"`
	Prompt        string          `json:"prompt"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectOption int             `json:"correct_option"`
	Explanation   string          `json:"explanation,omitempty"`
	// weak_topic or explore.
	Reason string `json:"reason"`
}

type DueReview struct {
	QuestionID   uuid.UUID       `json:"question_id"`
	DueAt        time.Time       `json:"due_at"`
	Subject      string          `json:"subject"`
	Topic        string          `json:"topic"`
	IntervalDays int             `json:"interval_days"`
	Phase        spacedrep.Phase `json:"phase"`
}

type PullResult struct {
	NewQuestions []PulledQuestion     `json:"new_questions"`
	DueReviews   []DueReview          `json:"due_reviews"`
	NewGrades    []*types.GradeNotice `json:"new_grades"`
	WeakTopics   []types.TopicKey     `json:"weak_topics"`
	ServerTime   time.Time            `json:"server_time"`
}

type TopicSnapshot struct {
	Subject            string     `json:"subject"`
	Topic              string     `json:"topic"`
	AttemptsCount      int        `json:"attempts_count"`
	CorrectCount       int        `json:"correct_count"`
	RollingAccuracy    float64    `json:"rolling_accuracy"`
	Weak               bool       `json:"weak"`
	GuessingCount      int        `json:"guessing_count"`
	StruggleCount      int        `json:"struggle_count"`
	MisconceptionCount int        `json:"misconception_count"`
	LastAttemptAt      *time.Time `json:"last_attempt_at,omitempty"`
}

type ReviewSummary struct {
	Due     int                     `json:"due"`
	Total   int                     `json:"total"`
	ByPhase map[spacedrep.Phase]int `json:"by_phase"`
}

type StatsResult struct {
	StreakDays         int             `json:"streak_days"`
	LongestStreak      int             `json:"longest_streak"`
	TotalAttempts      int             `json:"total_attempts"`
	OverallAccuracy    float64         `json:"overall_accuracy"`
	GuessingCount      int             `json:"guessing_count"`
	StruggleCount      int             `json:"struggle_count"`
	MisconceptionCount int             `json:"misconception_count"`
	Topics             []TopicSnapshot `json:"topics"`
	Reviews            ReviewSummary   `json:"reviews"`
	ServerTime         time.Time       `json:"server_time"`
}

type SyncService interface {
	Push(ctx context.Context, id ctxutil.Identity, req PushRequest) (*PushResult, error)
	Pull(ctx context.Context, id ctxutil.Identity, req PullRequest) (*PullResult, error)
	Stats(ctx context.Context, id ctxutil.Identity) (*StatsResult, error)
}

type SyncConfig struct {
	MaxBatch int
	Policy   policy.Policy
}

type SyncDeps struct {
	Users     repos.UserRepo
	Attempts  repos.AttemptRepo
	Mastery   repos.TopicMasteryRepo
	Schedules repos.ReviewScheduleRepo
	Stats     repos.UserStatsRepo
	Catalog   QuestionCatalog
	Grades    GradeFeed
	Tx        aggregates.TxRunner
	Locks     *keylock.Locker
	Clock     clock.Clock
	// Optional; seeded from the clock when nil.
	Rand *rand.Rand
}

type syncService struct {
	log        *logger.Logger
	deps       SyncDeps
	maxBatch   int
	policy     policy.Policy
	classifier *psychometric.Classifier

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewSyncService(baseLog *logger.Logger, cfg SyncConfig, deps SyncDeps) SyncService {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Locks == nil {
		deps.Locks = keylock.New()
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(deps.Clock.Now().UnixNano()))
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 500
	}
	return &syncService{
		log:        baseLog.With("service", "SyncService"),
		deps:       deps,
		maxBatch:   cfg.MaxBatch,
		policy:     cfg.Policy,
		classifier: psychometric.NewClassifier(cfg.Policy.Psychometric),
		rng:        rng,
	}
}

func (s *syncService) ensureUser(ctx context.Context, id ctxutil.Identity) error {
	if id.UserID == uuid.Nil {
		return ErrUnknownUser
	}
	ok, err := s.deps.Users.Exists(ctx, nil, id.UserID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return ErrUnknownUser
	}
	return nil
}

// ---------------------------------------------------------------------------
// Push
// ---------------------------------------------------------------------------

func (s *syncService) Push(ctx context.Context, id ctxutil.Identity, req PushRequest) (*PushResult, error) {
	start := time.Now()
	res, err := s.push(ctx, id, req)
	if err != nil {
		observability.Current().ObservePush(outcomeStatus(err), 0, 0, 0, time.Since(start))
		return nil, err
	}
	observability.Current().ObservePush("ok", res.AcceptedCount, res.DuplicateCount, res.InvalidCount, time.Since(start))
	return res, nil
}

func (s *syncService) push(ctx context.Context, id ctxutil.Identity, req PushRequest) (*PushResult, error) {
	ctx, span := tracer.Start(ctx, "sync.push")
	defer span.End()
	span.SetAttributes(attribute.Int("sync.batch_size", len(req.Attempts)))

	serverTime := s.deps.Clock.Now().UTC()
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}
	if len(req.Attempts) > s.maxBatch {
		return nil, ErrBatchTooLarge
	}
	if err := s.ensureUser(ctx, id); err != nil {
		return nil, err
	}
	res := &PushResult{ServerTime: serverTime}
	if len(req.Attempts) == 0 {
		return res, nil
	}

	items := make([]dedup.Item, len(req.Attempts))
	for i, in := range req.Attempts {
		items[i] = dedup.Item{AttemptID: parseID(in.AttemptID), QuestionID: parseID(in.QuestionID)}
	}

	questions, err := s.deps.Catalog.GetByIDs(ctx, dedup.QuestionIDs(items))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog lookup failed")
		return nil, pushFailed(fmt.Errorf("load questions: %w", err))
	}
	qByID := make(map[uuid.UUID]*types.Question, len(questions))
	for _, q := range questions {
		qByID[q.ID] = q
	}
	// Telemetry that cannot be right makes the item malformed.
	for i, in := range req.Attempts {
		if q, ok := qByID[items[i].QuestionID]; ok && !wellFormed(in, q) {
			items[i].QuestionID = uuid.Nil
		}
	}

	storedIDs, err := s.deps.Attempts.ExistingAttemptIDs(ctx, nil, id.UserID, dedup.AttemptIDs(items))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dedup lookup failed")
		return nil, pushFailed(fmt.Errorf("load stored attempt ids: %w", err))
	}
	stored := make(map[uuid.UUID]struct{}, len(storedIDs))
	for _, sid := range storedIDs {
		stored[sid] = struct{}{}
	}
	part := dedup.Partition(items, stored, func(qid uuid.UUID) bool {
		_, ok := qByID[qid]
		return ok
	})

	rows := s.gradeAccepted(id.UserID, deviceID, req.Attempts, items, part.Accepted, qByID, serverTime)

	var (
		inserted []*types.Attempt
		raced    int
	)
	if len(rows) > 0 {
		unlock, err := s.deps.Locks.Lock(ctx, id.UserID.String())
		if err != nil {
			return nil, err
		}
		err = s.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
			inserted, raced = inserted[:0], 0
			if err := repos.LockUserAggregates(dbc.Ctx, dbc.Tx, id.UserID); err != nil {
				return fmt.Errorf("lock user aggregates: %w", err)
			}
			for _, row := range rows {
				attempt := *row
				attempt.ID = uuid.Nil
				ok, err := s.deps.Attempts.InsertIfAbsent(dbc.Ctx, dbc.Tx, &attempt)
				if err != nil {
					return fmt.Errorf("insert attempt: %w", err)
				}
				if !ok {
					// Another device stored the same attempt between lookup and insert.
					raced++
					continue
				}
				inserted = append(inserted, &attempt)
			}
			return s.applyAggregates(dbc, id.UserID, inserted, serverTime)
		})
		unlock()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "push transaction failed")
			s.log.Error("push failed", "user_id", id.UserID, "device_id", deviceID, "batch", len(req.Attempts), "error", err)
			return nil, pushFailed(err)
		}
	}

	res.AcceptedCount = len(inserted)
	res.DuplicateCount = len(part.Duplicates) + raced
	res.InvalidCount = len(part.Invalid)
	span.SetAttributes(
		attribute.Int("sync.accepted", res.AcceptedCount),
		attribute.Int("sync.duplicate", res.DuplicateCount),
		attribute.Int("sync.invalid", res.InvalidCount),
	)
	s.log.Debug("push applied",
		"user_id", id.UserID,
		"device_id", deviceID,
		"accepted", res.AcceptedCount,
		"duplicate", res.DuplicateCount,
		"invalid", res.InvalidCount,
	)
	return res, nil
}

func parseID(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func wellFormed(in AttemptInput, q *types.Question) bool {
	if in.TimeTakenMs != nil && *in.TimeTakenMs < 0 {
		return false
	}
	if in.ConfidenceLevel != nil && (*in.ConfidenceLevel < 1 || *in.ConfidenceLevel > 5) {
		return false
	}
	if !in.Skipped && in.SelectedOption != nil {
		if *in.SelectedOption < 0 {
			return false
		}
		if n := q.OptionCount(); n > 0 && *in.SelectedOption >= n {
			return false
		}
	}
	return true
}

// gradeAccepted builds attempt rows for accepted items, ordered by client time with input
// order breaking ties. Correctness always comes from the answer key.
func (s *syncService) gradeAccepted(
	userID uuid.UUID,
	deviceID string,
	inputs []AttemptInput,
	items []dedup.Item,
	accepted []int,
	qByID map[uuid.UUID]*types.Question,
	serverTime time.Time,
) []*types.Attempt {
	order := append([]int(nil), accepted...)
	clientAt := func(i int) time.Time {
		if t := inputs[i].ClientSubmittedAt; t != nil && !t.IsZero() {
			return t.UTC()
		}
		return serverTime
	}
	sort.SliceStable(order, func(a, b int) bool {
		return clientAt(order[a]).Before(clientAt(order[b]))
	})

	rows := make([]*types.Attempt, 0, len(order))
	for _, i := range order {
		in := inputs[i]
		q := qByID[items[i].QuestionID]
		selected := in.SelectedOption
		skipped := in.Skipped || selected == nil
		if skipped {
			selected = nil
		}
		rows = append(rows, &types.Attempt{
			UserID:            userID,
			AttemptID:         items[i].AttemptID,
			DeviceID:          deviceID,
			QuestionID:        q.ID,
			Subject:           q.Subject,
			Topic:             q.Topic,
			SelectedOption:    selected,
			IsCorrect:         !skipped && q.IsCorrect(selected),
			Skipped:           skipped,
			TimeTakenMs:       in.TimeTakenMs,
			ConfidenceLevel:   in.ConfidenceLevel,
			NetworkType:       strings.TrimSpace(in.NetworkType),
			ClientSubmittedAt: clientAt(i),
			ServerReceivedAt:  serverTime,
		})
	}
	return rows
}

// applyAggregates folds newly stored attempts into mastery, schedules and user stats. Runs
// inside the push transaction with the user's lock held.
func (s *syncService) applyAggregates(dbc dbctx.Context, userID uuid.UUID, attempts []*types.Attempt, now time.Time) error {
	if len(attempts) == 0 {
		return nil
	}
	ctx, tx := dbc.Ctx, dbc.Tx

	keys := make([]types.TopicKey, 0, len(attempts))
	qids := make([]uuid.UUID, 0, len(attempts))
	seenKey := map[types.TopicKey]bool{}
	seenQ := map[uuid.UUID]bool{}
	for _, a := range attempts {
		k := types.TopicKey{Subject: a.Subject, Topic: a.Topic}
		if !seenKey[k] {
			seenKey[k] = true
			keys = append(keys, k)
		}
		if !seenQ[a.QuestionID] {
			seenQ[a.QuestionID] = true
			qids = append(qids, a.QuestionID)
		}
	}

	masteryRows, err := s.deps.Mastery.GetByUserAndKeys(ctx, tx, userID, keys)
	if err != nil {
		return fmt.Errorf("load topic mastery: %w", err)
	}
	byKey := make(map[types.TopicKey]*types.TopicMastery, len(masteryRows))
	for _, r := range masteryRows {
		byKey[r.Key()] = r
	}
	schedRows, err := s.deps.Schedules.GetByUserAndQuestions(ctx, tx, userID, qids)
	if err != nil {
		return fmt.Errorf("load review schedules: %w", err)
	}
	byQuestion := make(map[uuid.UUID]*types.ReviewSchedule, len(schedRows))
	for _, r := range schedRows {
		byQuestion[r.QuestionID] = r
	}
	stats, err := s.deps.Stats.Get(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("load user stats: %w", err)
	}
	if stats == nil {
		stats = &types.UserPracticeStats{UserID: userID}
	}

	sm2 := s.policy.Scheduler
	touchedM := make([]*types.TopicMastery, 0, len(keys))
	touchedS := make([]*types.ReviewSchedule, 0, len(qids))
	for _, a := range attempts {
		flags := s.classifier.Classify(psychometric.Telemetry{
			TimeTakenMs:     a.TimeTakenMs,
			ConfidenceLevel: a.ConfidenceLevel,
			IsCorrect:       a.IsCorrect,
			Skipped:         a.Skipped,
		})

		k := types.TopicKey{Subject: a.Subject, Topic: a.Topic}
		m := byKey[k]
		if m == nil {
			m = &types.TopicMastery{UserID: userID, Subject: a.Subject, Topic: a.Topic}
			byKey[k] = m
			touchedM = append(touchedM, m)
		} else if !containsMastery(touchedM, m) {
			touchedM = append(touchedM, m)
		}
		if err := mastery.Apply(m, mastery.Outcome{Correct: a.IsCorrect, Flags: flags, At: a.ServerReceivedAt}, s.policy.Mastery); err != nil {
			return err
		}

		sched := byQuestion[a.QuestionID]
		state := sm2.FromRow(sched, now)
		if sched == nil {
			sched = &types.ReviewSchedule{UserID: userID, QuestionID: a.QuestionID, Subject: a.Subject, Topic: a.Topic}
			byQuestion[a.QuestionID] = sched
			touchedS = append(touchedS, sched)
		} else if !containsSchedule(touchedS, sched) {
			touchedS = append(touchedS, sched)
		}
		grade := sm2.Quality(a.IsCorrect, a.TimeTakenMs, a.ConfidenceLevel)
		spacedrep.ApplyTo(sched, sm2.Review(state, grade, now))

		stats.AttemptsCount++
		if a.IsCorrect {
			stats.CorrectCount++
		}
		if a.Skipped {
			stats.SkippedCount++
		}
		if flags.Guessing {
			stats.GuessingCount++
		}
		if flags.Struggling {
			stats.StruggleCount++
		}
		if flags.Misconception {
			stats.MisconceptionCount++
		}
	}
	advanceStreak(stats, now)

	if err := s.deps.Mastery.Save(ctx, tx, touchedM); err != nil {
		return fmt.Errorf("save topic mastery: %w", err)
	}
	if err := s.deps.Schedules.Save(ctx, tx, touchedS); err != nil {
		return fmt.Errorf("save review schedules: %w", err)
	}
	if err := s.deps.Stats.Upsert(ctx, tx, stats); err != nil {
		return fmt.Errorf("save user stats: %w", err)
	}
	return nil
}

func containsMastery(rows []*types.TopicMastery, r *types.TopicMastery) bool {
	for _, x := range rows {
		if x == r {
			return true
		}
	}
	return false
}

func containsSchedule(rows []*types.ReviewSchedule, r *types.ReviewSchedule) bool {
	for _, x := range rows {
		if x == r {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Pull
// ---------------------------------------------------------------------------

func (s *syncService) Pull(ctx context.Context, id ctxutil.Identity, req PullRequest) (*PullResult, error) {
	start := time.Now()
	out, err := s.pull(ctx, id, req)
	if err != nil {
		observability.Current().ObservePull(outcomeStatus(err), 0, 0, 0, time.Since(start))
		return nil, err
	}
	observability.Current().ObservePull("ok", len(out.NewQuestions), len(out.DueReviews), len(out.NewGrades), time.Since(start))
	return out, nil
}

func (s *syncService) pull(ctx context.Context, id ctxutil.Identity, req PullRequest) (*PullResult, error) {
	ctx, span := tracer.Start(ctx, "sync.pull")
	defer span.End()

	serverTime := s.deps.Clock.Now().UTC()
	limit, err := s.pullLimit(req.Limit)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, id); err != nil {
		return nil, err
	}
	subjects := cleanSubjects(req.Subjects)
	span.SetAttributes(attribute.Int("sync.limit", limit), attribute.Int("sync.subjects", len(subjects)))

	out := &PullResult{
		NewQuestions: []PulledQuestion{},
		DueReviews:   []DueReview{},
		NewGrades:    []*types.GradeNotice{},
		WeakTopics:   []types.TopicKey{},
		ServerTime:   serverTime,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		weak, picked, err := s.pickNewQuestions(gctx, id.UserID, subjects, limit)
		if err != nil {
			return err
		}
		out.WeakTopics = weak
		out.NewQuestions = picked
		return nil
	})
	g.Go(func() error {
		rows, err := s.deps.Schedules.ListDue(gctx, nil, id.UserID, serverTime, subjects, s.policy.Pull.MaxDueReviews)
		if err != nil {
			return fmt.Errorf("list due reviews: %w", err)
		}
		for _, r := range rows {
			out.DueReviews = append(out.DueReviews, DueReview{
				QuestionID:   r.QuestionID,
				DueAt:        r.DueAt.UTC(),
				Subject:      r.Subject,
				Topic:        r.Topic,
				IntervalDays: r.IntervalDays,
				Phase:        s.policy.Scheduler.PhaseOf(r),
			})
		}
		return nil
	})
	g.Go(func() error {
		var after *time.Time
		if req.LastSyncAt != nil && !req.LastSyncAt.IsZero() {
			t := req.LastSyncAt.UTC().Add(-s.policy.Pull.GradeOverlap)
			after = &t
		}
		grades, err := s.deps.Grades.ListSince(gctx, id.UserID, after, serverTime)
		if err != nil {
			return fmt.Errorf("list grade notices: %w", err)
		}
		if grades != nil {
			out.NewGrades = grades
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pull failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("sync.new_questions", len(out.NewQuestions)),
		attribute.Int("sync.due_reviews", len(out.DueReviews)),
		attribute.Int("sync.new_grades", len(out.NewGrades)),
	)
	return out, nil
}

func (s *syncService) pullLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, ErrInvalidLimit
	case limit == 0:
		return s.policy.Pull.DefaultLimit, nil
	case limit > s.policy.Pull.MaxLimit:
		return s.policy.Pull.MaxLimit, nil
	default:
		return limit, nil
	}
}

func cleanSubjects(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (s *syncService) pickNewQuestions(ctx context.Context, userID uuid.UUID, subjects []string, limit int) ([]types.TopicKey, []PulledQuestion, error) {
	rows, err := s.deps.Mastery.ListByUser(ctx, nil, userID, subjects)
	if err != nil {
		return nil, nil, fmt.Errorf("list topic mastery: %w", err)
	}
	weak := mastery.WeakTopics(rows, s.policy.Mastery)

	pool := s.policy.Pull.CandidatePool
	var weakQs []*types.Question
	if len(weak) > 0 {
		weakQs, err = s.deps.Catalog.ListUnseen(ctx, userID, repos.UnseenFilter{Subjects: subjects, Topics: weak, Limit: pool})
		if err != nil {
			return nil, nil, fmt.Errorf("list unseen weak-topic questions: %w", err)
		}
	}
	anyQs, err := s.deps.Catalog.ListUnseen(ctx, userID, repos.UnseenFilter{Subjects: subjects, Limit: pool})
	if err != nil {
		return nil, nil, fmt.Errorf("list unseen questions: %w", err)
	}

	byID := make(map[uuid.UUID]*types.Question, len(weakQs)+len(anyQs))
	cands := make([]selection.Candidate, 0, len(weakQs)+len(anyQs))
	for _, q := range append(weakQs, anyQs...) {
		if _, dup := byID[q.ID]; dup {
			continue
		}
		byID[q.ID] = q
		cands = append(cands, selection.Candidate{QuestionID: q.ID, Key: types.TopicKey{Subject: q.Subject, Topic: q.Topic}})
	}
	// Stable input order so the injected rng alone decides the draw.
	sort.Slice(cands, func(i, j int) bool { return cands[i].QuestionID.String() < cands[j].QuestionID.String() })

	s.rngMu.Lock()
	picked := s.policy.Selection.Pick(cands, weak, limit, s.rng)
	s.rngMu.Unlock()

	weakSet := make(map[types.TopicKey]bool, len(weak))
	for _, k := range weak {
		weakSet[k] = true
	}
	out := make([]PulledQuestion, 0, len(picked))
	for _, c := range picked {
		q := byID[c.QuestionID]
		reason := "explore"
		if weakSet[c.Key] {
			reason = "weak_topic"
		}
		out = append(out, PulledQuestion{
			ID:            q.ID,
			Subject:       q.Subject,
			Topic:         q.Topic,
			Difficulty:    q.Difficulty,
			Prompt:        q.Prompt,
			Options:       json.RawMessage(q.Options),
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			Reason:        reason,
		})
	}
	if weak == nil {
		weak = []types.TopicKey{}
	}
	return weak, out, nil
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func (s *syncService) Stats(ctx context.Context, id ctxutil.Identity) (*StatsResult, error) {
	ctx, span := tracer.Start(ctx, "sync.stats")
	defer span.End()

	now := s.deps.Clock.Now().UTC()
	if err := s.ensureUser(ctx, id); err != nil {
		return nil, err
	}

	var (
		stats   *types.UserPracticeStats
		topics  []*types.TopicMastery
		buckets []repos.ScheduleBucket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.deps.Stats.Get(gctx, nil, id.UserID)
		return err
	})
	g.Go(func() (err error) {
		topics, err = s.deps.Mastery.ListByUser(gctx, nil, id.UserID, nil)
		return err
	})
	g.Go(func() (err error) {
		buckets, err = s.deps.Schedules.Buckets(gctx, nil, id.UserID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load stats: %w", err)
	}

	out := &StatsResult{
		Topics:     make([]TopicSnapshot, 0, len(topics)),
		Reviews:    ReviewSummary{ByPhase: map[spacedrep.Phase]int{}},
		ServerTime: now,
	}
	if stats != nil {
		out.StreakDays = liveStreak(stats, now)
		out.LongestStreak = stats.LongestStreak
		out.TotalAttempts = stats.AttemptsCount
		if stats.AttemptsCount > 0 {
			out.OverallAccuracy = float64(stats.CorrectCount) / float64(stats.AttemptsCount)
		}
		out.GuessingCount = stats.GuessingCount
		out.StruggleCount = stats.StruggleCount
		out.MisconceptionCount = stats.MisconceptionCount
	}
	for _, t := range topics {
		out.Topics = append(out.Topics, TopicSnapshot{
			Subject:            t.Subject,
			Topic:              t.Topic,
			AttemptsCount:      t.AttemptsCount,
			CorrectCount:       t.CorrectCount,
			RollingAccuracy:    t.RollingAccuracy,
			Weak:               mastery.IsWeak(t, s.policy.Mastery),
			GuessingCount:      t.GuessingCount,
			StruggleCount:      t.StruggleCount,
			MisconceptionCount: t.MisconceptionCount,
			LastAttemptAt:      t.LastAttemptAt,
		})
	}
	for _, b := range buckets {
		n := int(b.Count)
		lapses := 0
		if b.Lapsed {
			lapses = 1
		}
		phase := s.policy.Scheduler.Phase(spacedrep.State{Repetitions: b.RepetitionCount, Reviews: 1, Lapses: lapses})
		out.Reviews.ByPhase[phase] += n
		out.Reviews.Total += n
		if b.Due {
			out.Reviews.Due += n
		}
	}
	return out, nil
}
