package service

import (
	"context"
	"fmt"

	"macro-signal/internal/indicator"
	"macro-signal/internal/narrative"
	"macro-signal/internal/scoring"
	"macro-signal/internal/series"
)

// RealEstate computes the housing risk regime for the requested period.
func (s *Service) RealEstate(ctx context.Context, period indicator.Period) (*RealEstateReport, error) {
	fam := s.opts.RealEstate
	asOf, date := s.asOf()
	years := period.Years()

	raw, err := s.fetchAll(ctx, fam.Catalog, asOf)
	if err != nil {
		return nil, fmt.Errorf("real estate risk: %w", err)
	}

	set := indicator.BuildRealEstate(raw, years, asOf, fam.Policy)
	scores := fam.Model.Scores(set.Representatives())
	composite := fam.Model.Composite(scores)

	in := scoring.RealEstateInputs{
		Rate:      set.Value(indicator.InterestRate),
		SaleYoY:   set.Value(indicator.SaleYoY),
		RentYoY:   set.Value(indicator.RentYoY),
		PermitYoY: set.Value(indicator.PermitYoY),
		M2YoY:     set.Value(indicator.M2YoY),
		Missing:   set.Missing(indicator.InterestRate, indicator.SaleYoY, indicator.RentYoY, indicator.PermitYoY, indicator.M2YoY),
	}
	regime := scoring.ClassifyRealEstate(in, s.opts.RealEstateThresholds)
	s.classified(string(narrative.FamilyRealEstate), string(regime.Level))

	analysis, recommendation, status := s.narrate(ctx, narrative.Facts{
		Family:      narrative.FamilyRealEstate,
		Years:       years,
		Regime:      regime.Label,
		Description: regime.Description,
		Figures: []narrative.Figure{
			{Label: "기준금리", Value: in.Rate},
			{Label: "주택매매가격지수(YoY)", Value: in.SaleYoY},
			{Label: "주택전세가격지수(YoY)", Value: in.RentYoY},
			{Label: "건축허가면적(YoY)", Value: in.PermitYoY},
			{Label: "광의통화량(M2 YoY)", Value: in.M2YoY},
		},
	}, regime.Recommendation)

	s.logger.Info().
		Str("period", string(period)).
		Str("as_of", asOf.String()).
		Str("level", string(regime.Level)).
		Int("composite", composite).
		Msg("real estate risk computed")

	return &RealEstateReport{
		Date:               date,
		Period:             period,
		Years:              years,
		AsOf:               asOf,
		Policy:             fam.Policy,
		Risk:               assess(regime, analysis, recommendation, status),
		CompositeScore:     composite,
		Scores:             roundScores(scores),
		ShortSummary:       shortSummary(in, regime),
		Indicators:         indicatorViews(set),
		CompositeChartData: windowScores(fam.Model.History(fullSeries(set)), years, asOf),
	}, nil
}

func shortSummary(in scoring.RealEstateInputs, r scoring.Regime) string {
	return fmt.Sprintf("rate %s%%, sale %s%%, rent %s%%, permits %s%%, M2 %s%% -> %s",
		series.Format2(in.Rate),
		series.Format2(in.SaleYoY),
		series.Format2(in.RentYoY),
		series.Format2(in.PermitYoY),
		series.Format2(in.M2YoY),
		r.Label,
	)
}
