package scoring

import (
	"fmt"

	"macro-signal/internal/indicator"
	"macro-signal/internal/series"
)

// Economic regimes.
const (
	LevelMaxRisk          Level = "max_risk"
	LevelTighteningAlert  Level = "tightening_alert"
	LevelOptimalExpansion Level = "optimal_expansion"
	LevelStableGrowth     Level = "stable_growth"
	LevelNeutral          Level = "neutral"
)

// EconomicInputs are the representative scalars of one signal request.
type EconomicInputs struct {
	Spread float64
	M2YoY  float64
	CPIYoY float64
	// Missing is keyed by derived indicator name.
	Missing Missing
}

func (in EconomicInputs) resolved() EconomicInputs {
	return EconomicInputs{
		Spread: in.Missing.orNaN(indicator.Spread, in.Spread),
		M2YoY:  in.Missing.orNaN(indicator.M2YoY, in.M2YoY),
		CPIYoY: in.Missing.orNaN(indicator.CPIYoY, in.CPIYoY),
	}
}

// EconomicThresholds holds the breakpoints of the economic rule list.
type EconomicThresholds struct {
	MaxRiskSpread float64 `mapstructure:"max_risk_spread"`
	MaxRiskM2     float64 `mapstructure:"max_risk_m2"`
	TighteningCPI float64 `mapstructure:"tightening_cpi"`
	OptimalSpread float64 `mapstructure:"optimal_spread"`
	OptimalCPI    float64 `mapstructure:"optimal_cpi"`
	StableSpread  float64 `mapstructure:"stable_spread"`
	LiquidityM2   float64 `mapstructure:"liquidity_m2"`
}

// DefaultEconomicThresholds are the canonical breakpoints.
func DefaultEconomicThresholds() EconomicThresholds {
	return EconomicThresholds{
		MaxRiskSpread: 0,
		MaxRiskM2:     0,
		TighteningCPI: 4,
		OptimalSpread: 1.0,
		OptimalCPI:    2,
		StableSpread:  0.5,
		LiquidityM2:   0,
	}
}

func (t EconomicThresholds) rules() []rule[EconomicInputs] {
	return []rule[EconomicInputs]{
		{LevelMaxRisk, func(in EconomicInputs) bool {
			return in.Spread <= t.MaxRiskSpread && in.M2YoY <= t.MaxRiskM2
		}},
		{LevelTighteningAlert, func(in EconomicInputs) bool {
			return in.Spread > t.MaxRiskSpread && in.CPIYoY > t.TighteningCPI
		}},
		{LevelOptimalExpansion, func(in EconomicInputs) bool {
			return in.Spread >= t.OptimalSpread && in.M2YoY > t.LiquidityM2 && in.CPIYoY <= t.OptimalCPI
		}},
		{LevelStableGrowth, func(in EconomicInputs) bool {
			return in.Spread >= t.StableSpread && in.M2YoY > t.LiquidityM2
		}},
	}
}

// ClassifyEconomic walks the rule list top to bottom; neutral is the
// fallback and is expected for mixed or missing readings.
func ClassifyEconomic(in EconomicInputs, t EconomicThresholds) Regime {
	level, ok := firstMatch(t.rules(), in.resolved())
	if !ok {
		level = LevelNeutral
	}
	return economicRegime(level, in)
}

func economicRegime(level Level, in EconomicInputs) Regime {
	switch level {
	case LevelMaxRisk:
		return Regime{
			Level:          level,
			Label:          "Max Risk",
			Color:          "red",
			Description:    "Inverted or flat yield curve together with contracting money supply.",
			Recommendation: "Recession and liquidity contraction are coinciding. Cut risk assets by 70% or more and rotate into bonds and cash.",
		}
	case LevelTighteningAlert:
		return Regime{
			Level:          level,
			Label:          "Tightening Alert",
			Color:          "orange",
			Description:    "Growth continues but inflation is running hot.",
			Recommendation: fmt.Sprintf("CPI is at %s%%, which is excessive. Prepare for a rate-hike cycle and run the portfolio defensively.", series.Format2(in.CPIYoY)),
		}
	case LevelOptimalExpansion:
		return Regime{
			Level:          level,
			Label:          "Optimal Expansion",
			Color:          "green",
			Description:    "Steep curve, supportive liquidity and contained prices.",
			Recommendation: "An ideal investing environment. Increase equity exposure and long-term positions.",
		}
	case LevelStableGrowth:
		return Regime{
			Level:          level,
			Label:          "Stable Growth",
			Color:          "yellow",
			Description:    "Expansion backed by liquidity, not yet optimal.",
			Recommendation: "Hold equity weight and consider commodities or real assets against inflation risk.",
		}
	default:
		return Regime{
			Level:          LevelNeutral,
			Label:          "Neutral",
			Color:          "gray",
			Description:    "Indicators are mixed or below every threshold.",
			Recommendation: "Stay on the sidelines and wait for the next signal.",
		}
	}
}
