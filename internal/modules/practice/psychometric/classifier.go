package psychometric

// Flag is a derived label attached to a single attempt.
type Flag string

const (
	FlagGuessing      Flag = "guessing"
	FlagStruggling    Flag = "struggling"
	FlagMisconception Flag = "misconception"
)

// Thresholds are policy, not law; the defaults are what the product shipped with.
type Thresholds struct {
	// Answers faster than this (exclusive) are guesses.
	GuessingMaxMs int `yaml:"guessing_max_ms" json:"guessing_max_ms"`
	// Answers slower than this (exclusive) are struggles.
	StruggleMinMs int `yaml:"struggle_min_ms" json:"struggle_min_ms"`
	// Wrong answers at or above this confidence are misconceptions.
	MisconceptionMinConfidence int `yaml:"misconception_min_confidence" json:"misconception_min_confidence"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		GuessingMaxMs:              2000,
		StruggleMinMs:              60000,
		MisconceptionMinConfidence: 4,
	}
}

// Telemetry is the subset of an attempt the classifier looks at.
type Telemetry struct {
	TimeTakenMs     *int
	ConfidenceLevel *int
	IsCorrect       bool
	Skipped         bool
}

// Rule decides whether a single flag applies.
type Rule interface {
	Flag() Flag
	Applies(t Telemetry, th Thresholds) bool
}

type guessingRule struct{}

func (guessingRule) Flag() Flag { return FlagGuessing }

func (guessingRule) Applies(t Telemetry, th Thresholds) bool {
	return !t.Skipped && t.TimeTakenMs != nil && *t.TimeTakenMs < th.GuessingMaxMs
}

type struggleRule struct{}

func (struggleRule) Flag() Flag { return FlagStruggling }

func (struggleRule) Applies(t Telemetry, th Thresholds) bool {
	return t.TimeTakenMs != nil && *t.TimeTakenMs > th.StruggleMinMs
}

type misconceptionRule struct{}

func (misconceptionRule) Flag() Flag { return FlagMisconception }

func (misconceptionRule) Applies(t Telemetry, th Thresholds) bool {
	return !t.IsCorrect && t.ConfidenceLevel != nil && *t.ConfidenceLevel >= th.MisconceptionMinConfidence
}

// DefaultRules returns every rule; unlike error diagnosis, flags are not exclusive.
func DefaultRules() []Rule {
	return []Rule{guessingRule{}, struggleRule{}, misconceptionRule{}}
}

// Flags is the classification of one attempt.
type Flags struct {
	Guessing      bool `json:"guessing"`
	Struggling    bool `json:"struggling"`
	Misconception bool `json:"misconception"`
}

func (f Flags) Any() bool { return f.Guessing || f.Struggling || f.Misconception }

func (f Flags) List() []Flag {
	var out []Flag
	if f.Guessing {
		out = append(out, FlagGuessing)
	}
	if f.Struggling {
		out = append(out, FlagStruggling)
	}
	if f.Misconception {
		out = append(out, FlagMisconception)
	}
	return out
}

func (f *Flags) set(flag Flag) {
	switch flag {
	case FlagGuessing:
		f.Guessing = true
	case FlagStruggling:
		f.Struggling = true
	case FlagMisconception:
		f.Misconception = true
	}
}

type Classifier struct {
	rules      []Rule
	thresholds Thresholds
}

func NewClassifier(th Thresholds, rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules, thresholds: th}
}

// Classify is a pure function of the telemetry.
func (c *Classifier) Classify(t Telemetry) Flags {
	var f Flags
	for _, r := range c.rules {
		if r.Applies(t, c.thresholds) {
			f.set(r.Flag())
		}
	}
	return f
}

func (c *Classifier) Thresholds() Thresholds { return c.thresholds }
