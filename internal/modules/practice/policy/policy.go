package policy

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/examsync-backend/internal/modules/practice/mastery"
	"github.com/yungbote/examsync-backend/internal/modules/practice/psychometric"
	"github.com/yungbote/examsync-backend/internal/modules/practice/selection"
	"github.com/yungbote/examsync-backend/internal/modules/practice/spacedrep"
)

//go:embed default.yaml
var defaultYAML []byte

type Pull struct {
	DefaultLimit  int `yaml:"default_limit" json:"default_limit"`
	MaxLimit      int `yaml:"max_limit" json:"max_limit"`
	MaxDueReviews int `yaml:"max_due_reviews" json:"max_due_reviews"`
	// Upper bound on unseen questions loaded per pull before selection.
	CandidatePool int `yaml:"candidate_pool" json:"candidate_pool"`
	// How far each grade delta reaches back before last_sync_at. A notice stamped before a pull
	// but committed after it is still picked up by the next pull; clients dedup by notice id.
	GradeOverlap time.Duration `yaml:"grade_overlap" json:"grade_overlap"`
}

// Policy is every tunable of the practice core.
type Policy struct {
	Psychometric psychometric.Thresholds `yaml:"psychometric" json:"psychometric"`
	Mastery      mastery.Config          `yaml:"mastery" json:"mastery"`
	Scheduler    spacedrep.Config        `yaml:"scheduler" json:"scheduler"`
	Selection    selection.Config        `yaml:"selection" json:"selection"`
	Pull         Pull                    `yaml:"pull" json:"pull"`
}

// Default returns the embedded policy. It panics only if the embedded file is broken.
func Default() Policy {
	p, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded practice policy: %v", err))
	}
	return p
}

// Load reads an override file. Keys missing from the file keep their default values.
func Load(path string) (Policy, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read practice policy: %w", err)
	}
	return parseOver(Default(), b)
}

func Parse(b []byte) (Policy, error) {
	return parseOver(Policy{}, b)
}

func parseOver(base Policy, b []byte) (Policy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	p := base
	if err := dec.Decode(&p); err != nil {
		return Policy{}, fmt.Errorf("parse practice policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	switch {
	case p.Mastery.Window < 1:
		return fmt.Errorf("mastery.window must be >= 1")
	case p.Mastery.WeakAccuracyBelow < 0 || p.Mastery.WeakAccuracyBelow > 1:
		return fmt.Errorf("mastery.weak_accuracy_below must be in [0,1]")
	case p.Mastery.MinAttemptsForWeak < 1:
		return fmt.Errorf("mastery.min_attempts_for_weak must be >= 1")
	case p.Scheduler.MinEasiness <= 1:
		return fmt.Errorf("scheduler.min_easiness must be > 1")
	case p.Scheduler.InitialEasiness < p.Scheduler.MinEasiness:
		return fmt.Errorf("scheduler.initial_easiness below min_easiness")
	case p.Scheduler.FirstInterval < 1 || p.Scheduler.SecondInterval < p.Scheduler.FirstInterval:
		return fmt.Errorf("scheduler intervals must be positive and non-decreasing")
	case p.Scheduler.MaxInterval != 0 && p.Scheduler.MaxInterval < p.Scheduler.SecondInterval:
		return fmt.Errorf("scheduler.max_interval_days below second_interval_days")
	case p.Scheduler.PassingGrade < 1 || p.Scheduler.PassingGrade > spacedrep.GradePerfect:
		return fmt.Errorf("scheduler.passing_grade must be in [1,5]")
	case p.Selection.WeakShare < 0 || p.Selection.WeakShare > 1:
		return fmt.Errorf("selection.weak_share must be in [0,1]")
	case p.Pull.DefaultLimit < 1 || p.Pull.MaxLimit < p.Pull.DefaultLimit:
		return fmt.Errorf("pull limits must satisfy 1 <= default_limit <= max_limit")
	case p.Pull.MaxDueReviews < 1:
		return fmt.Errorf("pull.max_due_reviews must be >= 1")
	case p.Pull.CandidatePool < p.Pull.MaxLimit:
		return fmt.Errorf("pull.candidate_pool must be >= max_limit")
	case p.Pull.GradeOverlap < 0:
		return fmt.Errorf("pull.grade_overlap must be >= 0")
	}
	return nil
}
