package series

// WeightFn returns the weight of the i-th observation, 0-indexed from oldest.
type WeightFn func(i int) float64

// LinearWeight weights observation i by i+1.
func LinearWeight(i int) float64 { return float64(i + 1) }

// QuadraticWeight weights observation i by (i+1)^2.
func QuadraticWeight(i int) float64 {
	w := float64(i + 1)
	return w * w
}

// Mean is the arithmetic mean of the values. An empty series yields 0,
// which callers cannot tell apart from a true zero without checking len.
func Mean(s Series) float64 {
	if len(s) == 0 {
		return 0
	}
	var total float64
	for _, o := range s {
		total += o.Value
	}
	return total / float64(len(s))
}

// WeightedMean biases the mean toward recent observations. Empty yields 0.
func WeightedMean(s Series, weight WeightFn) float64 {
	if len(s) == 0 {
		return 0
	}
	var total, weightSum float64
	for i, o := range s {
		w := weight(i)
		total += o.Value * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return total / weightSum
}

// Slope is the least-squares slope of value against index position 0..n-1.
// Calendar gaps are not compensated.
func Slope(s Series) float64 {
	n := float64(len(s))
	if len(s) < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, o := range s {
		x := float64(i)
		sumX += x
		sumY += o.Value
		sumXY += x * o.Value
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// Trend is a coarse direction derived from a slope.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendFlat    Trend = "flat"
)

// trendThreshold is unit-agnostic: the same cut applies to rates and index growth alike.
const trendThreshold = 0.02

// SlopeToTrend classifies a slope.
func SlopeToTrend(slope float64) Trend {
	switch {
	case slope > trendThreshold:
		return TrendRising
	case slope < -trendThreshold:
		return TrendFalling
	default:
		return TrendFlat
	}
}
