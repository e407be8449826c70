package series

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Observation is one monthly data point.
type Observation struct {
	Time  PeriodKey `json:"time"`
	Value float64   `json:"value"`
}

// Series is an ordered run of observations, ascending by Time.
type Series []Observation

// Last returns the most recent observation.
func (s Series) Last() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[len(s)-1], true
}

// Index maps each period to its value.
func (s Series) Index() map[PeriodKey]float64 {
	idx := make(map[PeriodKey]float64, len(s))
	for _, o := range s {
		idx[o.Time] = o.Value
	}
	return idx
}

// Normalize sorts by period, drops non-finite values and malformed keys,
// and keeps the last value seen for a repeated period.
func Normalize(s Series) Series {
	byTime := make(map[PeriodKey]float64, len(s))
	for _, o := range s {
		if !o.Time.Valid() || math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			continue
		}
		byTime[o.Time] = o.Value
	}

	out := make(Series, 0, len(byTime))
	for t, v := range byTime {
		out = append(out, Observation{Time: t, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Format2 renders v with exactly two decimals; non-finite values render as 0.00.
func Format2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
