package service

import (
	"context"
	"fmt"

	"macro-signal/internal/indicator"
	"macro-signal/internal/narrative"
	"macro-signal/internal/scoring"
)

// Signal computes the economic regime for the requested lookback period.
func (s *Service) Signal(ctx context.Context, period indicator.Period) (*SignalReport, error) {
	fam := s.opts.Economic
	asOf, date := s.asOf()
	years := period.Years()

	raw, err := s.fetchAll(ctx, fam.Catalog, asOf)
	if err != nil {
		return nil, fmt.Errorf("economic signal: %w", err)
	}

	set := indicator.BuildEconomic(raw, years, asOf, fam.Policy)
	scores := fam.Model.Scores(set.Representatives())
	composite := fam.Model.Composite(scores)

	in := scoring.EconomicInputs{
		Spread:  set.Value(indicator.Spread),
		M2YoY:   set.Value(indicator.M2YoY),
		CPIYoY:  set.Value(indicator.CPIYoY),
		Missing: set.Missing(indicator.Spread, indicator.M2YoY, indicator.CPIYoY),
	}
	regime := scoring.ClassifyEconomic(in, s.opts.EconomicThresholds)
	s.classified(string(narrative.FamilyEconomic), string(regime.Level))

	analysis, recommendation, status := s.narrate(ctx, narrative.Facts{
		Family:      narrative.FamilyEconomic,
		Years:       years,
		Regime:      regime.Label,
		Description: regime.Description,
		Figures: []narrative.Figure{
			{Label: "장단기 금리차(10Y-3Y)", Value: in.Spread},
			{Label: "M2 증가율(YoY)", Value: in.M2YoY},
			{Label: "소비자물가(YoY)", Value: in.CPIYoY},
			{Label: "생산자물가(YoY)", Value: set.Value(indicator.PPIYoY)},
		},
	}, regime.Recommendation)

	s.logger.Info().
		Str("period", string(period)).
		Str("as_of", asOf.String()).
		Str("level", string(regime.Level)).
		Int("composite", composite).
		Msg("economic signal computed")

	return &SignalReport{
		Date:               date,
		Period:             period,
		Years:              years,
		AsOf:               asOf,
		Policy:             fam.Policy,
		Classification:     assess(regime, analysis, recommendation, status),
		CompositeScore:     composite,
		Scores:             roundScores(scores),
		Indicators:         indicatorViews(set),
		CompositeChartData: windowScores(fam.Model.History(fullSeries(set)), years, asOf),
	}, nil
}
