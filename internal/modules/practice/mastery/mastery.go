package mastery

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gorm.io/datatypes"

	types "github.com/yungbote/examsync-backend/internal/domain"
	"github.com/yungbote/examsync-backend/internal/modules/practice/psychometric"
)

type Config struct {
	// Number of most recent outcomes rolling_accuracy is computed over.
	Window int `yaml:"window" json:"window"`
	// A topic is weak when rolling accuracy is strictly below this...
	WeakAccuracyBelow float64 `yaml:"weak_accuracy_below" json:"weak_accuracy_below"`
	// ...and it has at least this many attempts.
	MinAttemptsForWeak int `yaml:"min_attempts_for_weak" json:"min_attempts_for_weak"`
}

func DefaultConfig() Config {
	return Config{Window: 50, WeakAccuracyBelow: 0.5, MinAttemptsForWeak: 5}
}

// Outcome is one graded, classified attempt as the aggregator sees it.
type Outcome struct {
	Correct bool
	Flags   psychometric.Flags
	At      time.Time
}

// DecodeWindow reads the stored outcome window. Empty or null means no history.
func DecodeWindow(raw datatypes.JSON) ([]bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out []bool
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode outcome window: %w", err)
	}
	return out, nil
}

func encodeWindow(w []bool) datatypes.JSON {
	if w == nil {
		w = []bool{}
	}
	b, _ := json.Marshal(w)
	return datatypes.JSON(b)
}

// Apply folds one outcome into the row in place.
func Apply(row *types.TopicMastery, o Outcome, cfg Config) error {
	if row == nil {
		return fmt.Errorf("nil topic mastery row")
	}
	window, err := DecodeWindow(row.RecentOutcomes)
	if err != nil {
		return err
	}
	window = append(window, o.Correct)
	if cfg.Window > 0 && len(window) > cfg.Window {
		window = append([]bool(nil), window[len(window)-cfg.Window:]...)
	}

	row.AttemptsCount++
	if o.Correct {
		row.CorrectCount++
	}
	if o.Flags.Guessing {
		row.GuessingCount++
	}
	if o.Flags.Struggling {
		row.StruggleCount++
	}
	if o.Flags.Misconception {
		row.MisconceptionCount++
	}
	row.RollingAccuracy = accuracy(window)
	row.RecentOutcomes = encodeWindow(window)
	if !o.At.IsZero() {
		at := o.At.UTC()
		if row.LastAttemptAt == nil || at.After(*row.LastAttemptAt) {
			row.LastAttemptAt = &at
		}
	}
	return nil
}

func accuracy(window []bool) float64 {
	if len(window) == 0 {
		return 0
	}
	correct := 0
	for _, ok := range window {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(window))
}

// IsWeak reports whether a topic should bias selection. Topics with too little
// data are neutral.
func IsWeak(row *types.TopicMastery, cfg Config) bool {
	if row == nil {
		return false
	}
	return row.AttemptsCount >= cfg.MinAttemptsForWeak && row.RollingAccuracy < cfg.WeakAccuracyBelow
}

// WeakTopics returns weak topics, weakest first. Ties break on subject then topic.
func WeakTopics(rows []*types.TopicMastery, cfg Config) []types.TopicKey {
	weak := make([]*types.TopicMastery, 0, len(rows))
	for _, r := range rows {
		if IsWeak(r, cfg) {
			weak = append(weak, r)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		a, b := weak[i], weak[j]
		if a.RollingAccuracy != b.RollingAccuracy {
			return a.RollingAccuracy < b.RollingAccuracy
		}
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		return a.Topic < b.Topic
	})
	out := make([]types.TopicKey, 0, len(weak))
	for _, r := range weak {
		out = append(out, r.Key())
	}
	return out
}
