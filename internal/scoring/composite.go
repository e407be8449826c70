package scoring

import (
	"fmt"
	"math"
	"sort"

	"macro-signal/internal/indicator"
	"macro-signal/internal/series"
)

// Model pairs per-indicator score tables with composite weights.
type Model struct {
	Tables  map[string]ScoreTable
	Weights map[string]float64
}

// Validate rejects tables without weights, non-positive weights and bad bands.
func (m Model) Validate() error {
	if len(m.Weights) == 0 {
		return fmt.Errorf("no weights configured")
	}
	for name, w := range m.Weights {
		if w <= 0 || math.IsNaN(w) {
			return fmt.Errorf("weight for %s must be positive", name)
		}
		table, ok := m.Tables[name]
		if !ok {
			return fmt.Errorf("weight for %s has no score table", name)
		}
		if err := table.Validate(); err != nil {
			return fmt.Errorf("table %s: %w", name, err)
		}
	}
	return nil
}

// Scores computes sub-scores for every weighted indicator that has data.
// Indicators without data are left out, not scored as 0.
func (m Model) Scores(reps map[string]indicator.Representative) map[string]float64 {
	out := make(map[string]float64, len(m.Weights))
	for name := range m.Weights {
		rep, ok := reps[name]
		if !ok || !rep.HasData {
			continue
		}
		table, ok := m.Tables[name]
		if !ok {
			continue
		}
		out[name] = table.Score(rep.Value)
	}
	return out
}

// Composite renormalises the weighted sum over the indicators present.
func (m Model) Composite(scores map[string]float64) int {
	// Fixed iteration order keeps float summation independent of map order.
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	var total, weightSum float64
	for _, name := range names {
		w, ok := m.Weights[name]
		if !ok {
			continue
		}
		total += scores[name] * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return int(math.Round(clamp(total / weightSum)))
}

// ScorePoint is one entry of the composite history chart.
type ScorePoint struct {
	Time  series.PeriodKey `json:"time"`
	Score int              `json:"score"`
}

// History scores every period on which all weighted indicators have a value.
func (m Model) History(full map[string]series.Series) []ScorePoint {
	names := make([]string, 0, len(m.Weights))
	for name := range m.Weights {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return []ScorePoint{}
	}

	indexes := make(map[string]map[series.PeriodKey]float64, len(names))
	for _, name := range names {
		indexes[name] = full[name].Index()
	}

	out := make([]ScorePoint, 0, len(full[names[0]]))
	for _, o := range full[names[0]] {
		scores := make(map[string]float64, len(names))
		complete := true
		for _, name := range names {
			v, ok := indexes[name][o.Time]
			if !ok {
				complete = false
				break
			}
			scores[name] = m.Tables[name].Score(v)
		}
		if complete {
			out = append(out, ScorePoint{Time: o.Time, Score: m.Composite(scores)})
		}
	}
	return out
}
