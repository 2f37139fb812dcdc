package spacedrep

import (
	"math"
	"time"
)

// Grade is the SM-2 quality score, 0..5.
type Grade int

const (
	GradeMisconception Grade = 0
	GradeIncorrect     Grade = 2
	GradeSlowCorrect   Grade = 3
	GradeCorrect       Grade = 4
	GradePerfect       Grade = 5
)

type Config struct {
	InitialEasiness float64 `yaml:"initial_easiness" json:"initial_easiness"`
	MinEasiness     float64 `yaml:"min_easiness" json:"min_easiness"`
	FirstInterval   int     `yaml:"first_interval_days" json:"first_interval_days"`
	SecondInterval  int     `yaml:"second_interval_days" json:"second_interval_days"`
	FailInterval    int     `yaml:"fail_interval_days" json:"fail_interval_days"`
	MaxInterval     int     `yaml:"max_interval_days" json:"max_interval_days"`
	PassingGrade    Grade   `yaml:"passing_grade" json:"passing_grade"`

	// Quality score inputs.
	FastAnswerMs   int `yaml:"fast_answer_ms" json:"fast_answer_ms"`
	SlowAnswerMs   int `yaml:"slow_answer_ms" json:"slow_answer_ms"`
	HighConfidence int `yaml:"high_confidence" json:"high_confidence"`
}

func DefaultConfig() Config {
	return Config{
		InitialEasiness: 2.5,
		MinEasiness:     1.3,
		FirstInterval:   1,
		SecondInterval:  6,
		FailInterval:    1,
		MaxInterval:     365,
		PassingGrade:    3,
		FastAnswerMs:    15000,
		SlowAnswerMs:    60000,
		HighConfidence:  4,
	}
}

// Quality derives q from correctness, timing and confidence.
func (c Config) Quality(correct bool, timeTakenMs, confidence *int) Grade {
	highConf := confidence != nil && *confidence >= c.HighConfidence
	if !correct {
		if highConf {
			return GradeMisconception
		}
		return GradeIncorrect
	}
	if timeTakenMs != nil && *timeTakenMs > c.SlowAnswerMs {
		return GradeSlowCorrect
	}
	if highConf && timeTakenMs != nil && *timeTakenMs <= c.FastAnswerMs {
		return GradePerfect
	}
	return GradeCorrect
}

// State is the per (user, question) scheduling state.
type State struct {
	Repetitions  int
	Easiness     float64
	IntervalDays int
	DueAt        time.Time
	LastGrade    Grade
	Reviews      int
	Lapses       int
	LastReviewed *time.Time
}

// NewState is the state of a question that has never been attempted: due immediately.
func (c Config) NewState(now time.Time) State {
	return State{
		Easiness: c.InitialEasiness,
		DueAt:    now.UTC(),
	}
}

// Review applies one graded attempt at now and returns the next state.
func (c Config) Review(s State, q Grade, now time.Time) State {
	if q < 0 {
		q = 0
	}
	if q > GradePerfect {
		q = GradePerfect
	}
	if s.Easiness < c.MinEasiness {
		s.Easiness = c.MinEasiness
	}
	now = now.UTC()

	next := s
	next.Reviews++
	next.LastGrade = q
	next.LastReviewed = &now

	if q < c.PassingGrade {
		if s.Repetitions > 0 {
			next.Lapses++
		}
		next.Repetitions = 0
		next.IntervalDays = c.failInterval()
	} else {
		next.Repetitions = s.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.IntervalDays = c.FirstInterval
		case 2:
			next.IntervalDays = c.SecondInterval
		default:
			next.IntervalDays = int(math.Round(float64(s.IntervalDays) * s.Easiness))
		}
		fq := float64(GradePerfect - q)
		next.Easiness = math.Max(c.MinEasiness, s.Easiness+(0.1-fq*(0.08+fq*0.02)))
		if next.IntervalDays < 1 {
			next.IntervalDays = 1
		}
		if c.MaxInterval > 0 && next.IntervalDays > c.MaxInterval {
			next.IntervalDays = c.MaxInterval
		}
	}

	next.DueAt = now.AddDate(0, 0, next.IntervalDays)
	return next
}

func (c Config) failInterval() int {
	if c.FailInterval < 1 {
		return 1
	}
	return c.FailInterval
}

// Phase is a derived label; it is not stored.
type Phase string

const (
	PhaseNew      Phase = "new"
	PhaseLearning Phase = "learning"
	PhaseReview   Phase = "review"
	PhaseLapsed   Phase = "lapsed"
)

// Phase labels s. A failure only lapses a question that had been passed before; a question
// failed on its first attempts is still learning.
func (c Config) Phase(s State) Phase {
	switch {
	case s.Reviews == 0:
		return PhaseNew
	case s.Repetitions == 0 && s.Lapses > 0:
		return PhaseLapsed
	case s.Repetitions >= 3:
		return PhaseReview
	default:
		return PhaseLearning
	}
}
