package scoring

import (
	"fmt"
	"math"

	"macro-signal/internal/indicator"
)

// Band is an inclusive value range mapped to a sub-score. Use ±Inf for
// open ends.
type Band struct {
	Min   float64 `mapstructure:"min"`
	Max   float64 `mapstructure:"max"`
	Score float64 `mapstructure:"score"`
}

func (b Band) contains(v float64) bool { return v >= b.Min && v <= b.Max }

// ScoreTable is a step function: the first band containing the value
// wins, otherwise Fallback applies.
type ScoreTable struct {
	Bands    []Band  `mapstructure:"bands"`
	Fallback float64 `mapstructure:"fallback"`
}

// Score maps a value to [0,100].
func (t ScoreTable) Score(v float64) float64 {
	for _, b := range t.Bands {
		if b.contains(v) {
			return clamp(b.Score)
		}
	}
	return clamp(t.Fallback)
}

// Validate checks the bands are well formed.
func (t ScoreTable) Validate() error {
	for i, b := range t.Bands {
		if math.IsNaN(b.Min) || math.IsNaN(b.Max) || b.Min > b.Max {
			return fmt.Errorf("band %d: min %v greater than max %v", i, b.Min, b.Max)
		}
		if b.Score < 0 || b.Score > 100 {
			return fmt.Errorf("band %d: score %v outside [0,100]", i, b.Score)
		}
	}
	return nil
}

var inf = math.Inf(1)

// SpreadTable scores the 10y-3y spread.
var SpreadTable = ScoreTable{Bands: []Band{
	{Min: 1.0, Max: inf, Score: 100},
	{Min: 0.5, Max: inf, Score: 75},
	{Min: 0.0, Max: inf, Score: 50},
}, Fallback: 0}

// MoneySupplyTable scores M2 growth; above 4% is treated as excess liquidity.
var MoneySupplyTable = ScoreTable{Bands: []Band{
	{Min: 2, Max: 4, Score: 100},
	{Min: 4, Max: inf, Score: 75},
	{Min: 0, Max: inf, Score: 50},
}, Fallback: 0}

// ConsumerPriceTable scores CPI growth: 1-3% is ideal, above 4% or deflation scores 0.
var ConsumerPriceTable = ScoreTable{Bands: []Band{
	{Min: 1, Max: 3, Score: 100},
	{Min: 0, Max: 4, Score: 50},
}, Fallback: 0}

// BaseRateTable scores the policy rate level.
var BaseRateTable = ScoreTable{Bands: []Band{
	{Min: -inf, Max: 2.5, Score: 100},
	{Min: -inf, Max: 3.0, Score: 75},
	{Min: -inf, Max: 3.5, Score: 50},
}, Fallback: 0}

// SalePriceTable scores house price growth; overheating above 5% is penalised.
var SalePriceTable = ScoreTable{Bands: []Band{
	{Min: 0, Max: 5, Score: 100},
	{Min: 5, Max: inf, Score: 50},
	{Min: -1, Max: 0, Score: 50},
}, Fallback: 0}

// RentPriceTable scores jeonse (lump-sum lease) price growth.
var RentPriceTable = ScoreTable{Bands: []Band{
	{Min: 0, Max: 5, Score: 100},
	{Min: 5, Max: inf, Score: 50},
	{Min: -1, Max: 0, Score: 50},
}, Fallback: 0}

// PermitTable scores building permit growth; a supply surge is a risk.
var PermitTable = ScoreTable{Bands: []Band{
	{Min: -10, Max: 3, Score: 100},
	{Min: -inf, Max: inf, Score: 50},
}, Fallback: 0}

// RealEstateMoneySupplyTable scores M2 growth from the housing angle.
var RealEstateMoneySupplyTable = ScoreTable{Bands: []Band{
	{Min: 6, Max: inf, Score: 100},
	{Min: 4, Max: inf, Score: 75},
	{Min: 0, Max: inf, Score: 50},
}, Fallback: 0}

// EconomicModel is the canonical economic weighting.
func EconomicModel() Model {
	return Model{
		Tables: map[string]ScoreTable{
			indicator.Spread: SpreadTable,
			indicator.M2YoY:  MoneySupplyTable,
			indicator.CPIYoY: ConsumerPriceTable,
		},
		Weights: map[string]float64{
			indicator.Spread: 0.5,
			indicator.M2YoY:  0.3,
			indicator.CPIYoY: 0.2,
		},
	}
}

// RealEstateModel is the canonical housing weighting.
func RealEstateModel() Model {
	return Model{
		Tables: map[string]ScoreTable{
			indicator.InterestRate: BaseRateTable,
			indicator.SaleYoY:      SalePriceTable,
			indicator.RentYoY:      RentPriceTable,
			indicator.PermitYoY:    PermitTable,
			indicator.M2YoY:        RealEstateMoneySupplyTable,
		},
		Weights: map[string]float64{
			indicator.InterestRate: 0.30,
			indicator.SaleYoY:      0.25,
			indicator.RentYoY:      0.20,
			indicator.PermitYoY:    0.10,
			indicator.M2YoY:        0.15,
		},
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
