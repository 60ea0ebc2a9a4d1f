// Package assessor is the score aggregator and classifier shared by every
// analysis pipeline. Pipelines fire rules into an Accumulator, which sums
// their contributions without bounds; Classify clamps the sum to 1 and maps
// it to a status and a confidence percentage.
package assessor

import (
	"math"

	"github.com/raysh454/vexora/internal/model"
)

// Scorer hands out accumulators bound to a weight table.
type Scorer struct {
	version string
	weights map[RuleID]float64
}

// NewScorer builds a Scorer from cfg. A nil cfg uses DefaultConfig.
func NewScorer(cfg *Config) (*Scorer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	weights := make(map[RuleID]float64, len(RuleWeights))
	for id, w := range RuleWeights {
		weights[id] = w
	}
	for name, w := range cfg.RuleWeights {
		weights[RuleID(name)] = w
	}
	return &Scorer{version: cfg.ScoringVersion, weights: weights}, nil
}

// Version identifies the scoring configuration.
func (s *Scorer) Version() string { return s.version }

// Weight returns the contribution of rule id.
func (s *Scorer) Weight(id RuleID) float64 { return s.weights[id] }

// NewAccumulator starts a fresh, per-call accumulator.
func (s *Scorer) NewAccumulator() *Accumulator {
	return &Accumulator{weights: s.weights}
}

// Accumulator collects rule contributions for a single analysis. It is not
// safe for concurrent use.
type Accumulator struct {
	weights map[RuleID]float64
	raw     float64
	factors []model.RiskFactor
	matched []RuleID
}

// Fire records rule id with its weight, severity and standard description.
func (a *Accumulator) Fire(id RuleID) {
	a.FireWith(id, DescribeRule(id))
}

// FireWith records rule id with a custom description.
func (a *Accumulator) FireWith(id RuleID, description string) {
	a.raw += a.weights[id]
	a.matched = append(a.matched, id)
	a.factors = append(a.factors, model.RiskFactor{Severity: SeverityForRule(id), Description: description})
}

// FireSilently records rule id and its weight without a risk factor.
func (a *Accumulator) FireSilently(id RuleID) {
	a.raw += a.weights[id]
	a.matched = append(a.matched, id)
}

// Add contributes delta without a factor, as the graded simulator scores do.
func (a *Accumulator) Add(delta float64) {
	a.raw += delta
}

// Factor appends a risk factor that carries no score of its own.
func (a *Accumulator) Factor(id RuleID, severity model.Severity) {
	a.matched = append(a.matched, id)
	a.factors = append(a.factors, model.RiskFactor{Severity: severity, Description: DescribeRule(id)})
}

// Score is the raw, unclamped sum.
func (a *Accumulator) Score() float64 { return a.raw }

// Factors returns the risk factors in firing order.
func (a *Accumulator) Factors() []model.RiskFactor { return a.factors }

// Matched returns the ids of fired rules in firing order.
func (a *Accumulator) Matched() []RuleID { return a.matched }

// Fired reports whether rule id fired at least once.
func (a *Accumulator) Fired(id RuleID) bool {
	for _, m := range a.matched {
		if m == id {
			return true
		}
	}
	return false
}

// Thresholds split the clamped score into statuses: [0, Warning) is safe,
// [Warning, Danger) is warning, [Danger, 1] is danger.
type Thresholds struct {
	Warning float64
	Danger  float64
}

var (
	URLThresholds   = Thresholds{Warning: 0.3, Danger: 0.6}
	MediaThresholds = Thresholds{Warning: 0.3, Danger: 0.55}
)

// Clamp bounds a raw score to [0, 1].
func Clamp(raw float64) float64 {
	if math.IsNaN(raw) || raw < 0 {
		return 0
	}
	return math.Min(raw, 1)
}

// Classify maps a raw score to a status and confidence percentage.
func (t Thresholds) Classify(raw float64) (model.Status, float64) {
	s := Clamp(raw)
	switch {
	case s < t.Warning:
		return model.StatusSafe, 100 - float64(s*100)
	case s < t.Danger:
		return model.StatusWarning, 50 + float64(s*50)
	default:
		return model.StatusDanger, math.Min(100, 70+float64(s*33.3))
	}
}
