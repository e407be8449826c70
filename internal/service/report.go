package service

import (
	"macro-signal/internal/indicator"
	"macro-signal/internal/scoring"
	"macro-signal/internal/series"
)

// IndicatorView is one indicator as returned to clients. ChartData is
// never null; an indicator without data has Latest 0 and HasData false.
type IndicatorView struct {
	Latest    float64       `json:"latest"`
	HasData   bool          `json:"hasData"`
	Trend     series.Trend  `json:"trend"`
	ChartData series.Series `json:"chartData"`
}

// Assessment is a regime plus the narrative attached to it.
type Assessment struct {
	Level           scoring.Level `json:"level"`
	Label           string        `json:"label"`
	Color           string        `json:"color"`
	Description     string        `json:"description"`
	Recommendation  string        `json:"recommendation"`
	Analysis        string        `json:"analysis"`
	Guidance        string        `json:"guidance"`
	NarrativeStatus string        `json:"narrativeStatus"`
}

func assess(r scoring.Regime, analysis, recommendation, status string) Assessment {
	return Assessment{
		Level:           r.Level,
		Label:           r.Label,
		Color:           r.Color,
		Description:     r.Description,
		Recommendation:  recommendation,
		Analysis:        analysis,
		Guidance:        r.Recommendation,
		NarrativeStatus: status,
	}
}

// SignalReport is the economic signal response.
type SignalReport struct {
	Date               string                   `json:"date"`
	Period             indicator.Period         `json:"period"`
	Years              int                      `json:"years"`
	AsOf               series.PeriodKey         `json:"asOf"`
	Policy             indicator.Policy         `json:"policy"`
	Classification     Assessment               `json:"classification"`
	CompositeScore     int                      `json:"compositeScore"`
	Scores             map[string]float64       `json:"scores"`
	Indicators         map[string]IndicatorView `json:"indicators"`
	CompositeChartData []scoring.ScorePoint     `json:"compositeChartData"`
}

// RealEstateReport is the housing risk response.
type RealEstateReport struct {
	Date               string                   `json:"date"`
	Period             indicator.Period         `json:"period"`
	Years              int                      `json:"years"`
	AsOf               series.PeriodKey         `json:"asOf"`
	Policy             indicator.Policy         `json:"policy"`
	Risk               Assessment               `json:"risk"`
	CompositeScore     int                      `json:"compositeScore"`
	Scores             map[string]float64       `json:"scores"`
	ShortSummary       string                   `json:"shortSummary"`
	Indicators         map[string]IndicatorView `json:"indicators"`
	CompositeChartData []scoring.ScorePoint     `json:"compositeChartData"`
}
