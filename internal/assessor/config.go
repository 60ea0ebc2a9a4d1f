package assessor

import "fmt"

// Config holds runtime settings for the scorer. Keep small.
type Config struct {
	// ScoringVersion allows safe evolution of scoring logic.
	ScoringVersion string `json:"scoring_version" yaml:"scoring_version"`

	// RuleWeights overrides the built-in weight of individual rules.
	RuleWeights map[string]float64 `json:"rule_weights" yaml:"rule_weights"`
}

// DefaultConfig returns the built-in scoring configuration.
func DefaultConfig() *Config {
	return &Config{ScoringVersion: "heuristics-v1"}
}

// Validate rejects overrides for unknown rules and negative weights.
func (c *Config) Validate() error {
	for name, w := range c.RuleWeights {
		if _, ok := RuleWeights[RuleID(name)]; !ok {
			return fmt.Errorf("assessor: unknown rule %q in rule_weights", name)
		}
		if w < 0 {
			return fmt.Errorf("assessor: negative weight %v for rule %q", w, name)
		}
	}
	return nil
}
