package indicator

import (
	"fmt"

	"macro-signal/internal/series"
)

// Policy picks the single scalar that stands in for a windowed series.
// One policy is applied to every indicator of a classification call.
type Policy string

const (
	PolicyLatest            Policy = "latest"
	PolicyMean              Policy = "mean"
	PolicyWeightedLinear    Policy = "weighted_linear"
	PolicyWeightedQuadratic Policy = "weighted_quadratic"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(raw string) (Policy, error) {
	switch p := Policy(raw); p {
	case PolicyLatest, PolicyMean, PolicyWeightedLinear, PolicyWeightedQuadratic:
		return p, nil
	default:
		return "", fmt.Errorf("unknown representative policy %q", raw)
	}
}

// Representative is the scalar summary of one windowed series.
// HasData is false when the window was empty; Value is then 0.
type Representative struct {
	Value   float64      `json:"value"`
	HasData bool         `json:"hasData"`
	Slope   float64      `json:"slope"`
	Trend   series.Trend `json:"trend"`
}

// Represent applies the policy to a window.
func (p Policy) Represent(window series.Series) Representative {
	rep := Representative{
		HasData: len(window) > 0,
		Trend:   series.TrendFlat,
	}
	if !rep.HasData {
		return rep
	}

	switch p {
	case PolicyMean:
		rep.Value = series.Mean(window)
	case PolicyWeightedLinear:
		rep.Value = series.WeightedMean(window, series.LinearWeight)
	case PolicyWeightedQuadratic:
		rep.Value = series.WeightedMean(window, series.QuadraticWeight)
	default:
		last, _ := window.Last()
		rep.Value = last.Value
	}

	rep.Slope = series.Slope(window)
	rep.Trend = series.SlopeToTrend(rep.Slope)
	return rep
}
