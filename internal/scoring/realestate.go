package scoring

import "macro-signal/internal/indicator"

// Housing regimes. There is no neutral level: contraction covers every
// reading the four explicit regimes do not.
const (
	LevelExtremeRisk       Level = "extreme_risk"
	LevelHousingTightening Level = "tightening_alert"
	LevelRecovery          Level = "recovery_signal"
	LevelEarlyExpansion    Level = "early_expansion"
	LevelContraction       Level = "contraction"
)

// RealEstateLevels lists the five regimes in evaluation order.
var RealEstateLevels = []Level{LevelExtremeRisk, LevelHousingTightening, LevelRecovery, LevelEarlyExpansion, LevelContraction}

// RealEstateInputs are the representative scalars of one housing request.
type RealEstateInputs struct {
	Rate      float64
	SaleYoY   float64
	RentYoY   float64
	PermitYoY float64
	M2YoY     float64
	// Missing is keyed by derived indicator name.
	Missing Missing
}

func (in RealEstateInputs) resolved() RealEstateInputs {
	return RealEstateInputs{
		Rate:      in.Missing.orNaN(indicator.InterestRate, in.Rate),
		SaleYoY:   in.Missing.orNaN(indicator.SaleYoY, in.SaleYoY),
		RentYoY:   in.Missing.orNaN(indicator.RentYoY, in.RentYoY),
		PermitYoY: in.Missing.orNaN(indicator.PermitYoY, in.PermitYoY),
		M2YoY:     in.Missing.orNaN(indicator.M2YoY, in.M2YoY),
	}
}

// RealEstateThresholds holds the breakpoints of the housing rule list.
type RealEstateThresholds struct {
	ExtremeRate   float64 `mapstructure:"extreme_rate"`
	ExtremePermit float64 `mapstructure:"extreme_permit"`
	ExtremeM2     float64 `mapstructure:"extreme_m2"`

	TighteningRateLow  float64 `mapstructure:"tightening_rate_low"`
	TighteningRateHigh float64 `mapstructure:"tightening_rate_high"`
	TighteningDemand   float64 `mapstructure:"tightening_demand"`
	TighteningM2       float64 `mapstructure:"tightening_m2"`

	RecoveryRate     float64 `mapstructure:"recovery_rate"`
	RecoverySaleLow  float64 `mapstructure:"recovery_sale_low"`
	RecoverySaleHigh float64 `mapstructure:"recovery_sale_high"`
	RecoveryRent     float64 `mapstructure:"recovery_rent"`
	RecoveryM2       float64 `mapstructure:"recovery_m2"`

	ExpansionRate float64 `mapstructure:"expansion_rate"`
	ExpansionSale float64 `mapstructure:"expansion_sale"`
	ExpansionRent float64 `mapstructure:"expansion_rent"`
	ExpansionM2   float64 `mapstructure:"expansion_m2"`
}

// DefaultRealEstateThresholds are the canonical breakpoints.
func DefaultRealEstateThresholds() RealEstateThresholds {
	return RealEstateThresholds{
		ExtremeRate:   3.4,
		ExtremePermit: 3,
		ExtremeM2:     5,

		TighteningRateLow:  2.8,
		TighteningRateHigh: 3.4,
		TighteningDemand:   0.2,
		TighteningM2:       6,

		RecoveryRate:     3.2,
		RecoverySaleLow:  -1,
		RecoverySaleHigh: 1.2,
		RecoveryRent:     0,
		RecoveryM2:       6,

		ExpansionRate: 2.8,
		ExpansionSale: 0.7,
		ExpansionRent: 0.4,
		ExpansionM2:   7,
	}
}

// explicit returns the four independently authored predicates in order.
func (t RealEstateThresholds) explicit() []rule[RealEstateInputs] {
	return []rule[RealEstateInputs]{
		{LevelExtremeRisk, func(in RealEstateInputs) bool {
			return in.Rate > t.ExtremeRate && in.PermitYoY > t.ExtremePermit && in.M2YoY < t.ExtremeM2 &&
				in.SaleYoY < 0 && in.RentYoY < 0
		}},
		{LevelHousingTightening, func(in RealEstateInputs) bool {
			return in.Rate >= t.TighteningRateLow && in.Rate <= t.TighteningRateHigh &&
				(in.SaleYoY > t.TighteningDemand || in.RentYoY > t.TighteningDemand) && in.M2YoY >= t.TighteningM2
		}},
		{LevelRecovery, func(in RealEstateInputs) bool {
			return in.Rate < t.RecoveryRate && in.SaleYoY > t.RecoverySaleLow && in.SaleYoY < t.RecoverySaleHigh &&
				in.RentYoY >= t.RecoveryRent && in.M2YoY >= t.RecoveryM2
		}},
		{LevelEarlyExpansion, func(in RealEstateInputs) bool {
			return in.Rate < t.ExpansionRate && in.SaleYoY >= t.ExpansionSale && in.RentYoY >= t.ExpansionRent &&
				in.M2YoY >= t.ExpansionM2
		}},
	}
}

// RawMatches reports every explicit predicate that holds on its own,
// before ordering is applied. More than one entry means the authored
// conditions overlap for this input.
func RawMatches(in RealEstateInputs, t RealEstateThresholds) []Level {
	in = in.resolved()
	var out []Level
	for _, r := range t.explicit() {
		if r.when(in) {
			out = append(out, r.level)
		}
	}
	return out
}

// Partition evaluates the mutually exclusive form of each of the five
// regimes: a regime holds when its predicate holds and no earlier one does,
// and contraction holds when none of the four explicit regimes do.
// The result always has exactly one element.
func Partition(in RealEstateInputs, t RealEstateThresholds) []Level {
	in = in.resolved()
	var out []Level
	matchedEarlier := false
	for _, r := range t.explicit() {
		if r.when(in) && !matchedEarlier {
			out = append(out, r.level)
		}
		matchedEarlier = matchedEarlier || r.when(in)
	}
	if !matchedEarlier {
		out = append(out, LevelContraction)
	}
	return out
}

// ClassifyRealEstate assigns exactly one of the five housing regimes.
func ClassifyRealEstate(in RealEstateInputs, t RealEstateThresholds) Regime {
	level, ok := firstMatch(t.explicit(), in.resolved())
	if !ok {
		level = LevelContraction
	}
	return realEstateRegime(level)
}

func realEstateRegime(level Level) Regime {
	switch level {
	case LevelExtremeRisk:
		return Regime{
			Level:          level,
			Label:          "Extreme Risk",
			Color:          "red",
			Description:    "High rates and rising supply at once; risk of sharp declines and a liquidity squeeze.",
			Recommendation: "Sell or reduce exposure; avoid leveraged purchases.",
		}
	case LevelHousingTightening:
		return Regime{
			Level:          level,
			Label:          "Tightening Alert",
			Color:          "orange",
			Description:    "Overheating phase with room for a short-term correction.",
			Recommendation: "Hold and watch; postpone new purchases until rates settle.",
		}
	case LevelRecovery:
		return Regime{
			Level:          level,
			Label:          "Recovery Signal",
			Color:          "yellow",
			Description:    "Rents rising and price declines easing; early recovery.",
			Recommendation: "Watch closely and consider selective purchases in core areas.",
		}
	case LevelEarlyExpansion:
		return Regime{
			Level:          level,
			Label:          "Early Expansion",
			Color:          "green",
			Description:    "Prices turning up with transactions recovering.",
			Recommendation: "Buy; the cycle favours owner-occupiers entering now.",
		}
	default:
		return Regime{
			Level:          LevelContraction,
			Label:          "Contraction",
			Color:          "blue",
			Description:    "Both sale and rent prices falling with thin transactions.",
			Recommendation: "Hold and watch; wait for rents to stabilise before buying.",
		}
	}
}
