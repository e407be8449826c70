package scoring

import "math"

// Level identifies a regime.
type Level string

// Regime is the classification result. Color is a rendering hint only.
type Regime struct {
	Level          Level  `json:"level"`
	Label          string `json:"label"`
	Color          string `json:"color"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
}

// rule is one entry of an ordered first-match-wins list.
type rule[In any] struct {
	level Level
	when  func(In) bool
}

func firstMatch[In any](rules []rule[In], in In) (Level, bool) {
	for _, r := range rules {
		if r.when(in) {
			return r.level, true
		}
	}
	return "", false
}

// Missing names the inputs of one request that had no data. A rule that
// reads a missing input never holds.
type Missing map[string]bool

// orNaN substitutes NaN for a missing input so every comparison on it fails.
func (m Missing) orNaN(name string, v float64) float64 {
	if m[name] {
		return math.NaN()
	}
	return v
}
