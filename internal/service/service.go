package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"macro-signal/internal/fetcher"
	"macro-signal/internal/indicator"
	"macro-signal/internal/narrative"
	"macro-signal/internal/scoring"
	"macro-signal/internal/series"
)

// ErrRequiredSeries is returned when a series marked Required comes back empty.
var ErrRequiredSeries = errors.New("required series unavailable")

// Observer receives pipeline-level events. *metrics.Recorder satisfies it.
type Observer interface {
	ObserveNarrative(outcome string)
	ObserveClassification(family, level string)
}

// Family configures one classification family.
type Family struct {
	Catalog []indicator.Definition
	Policy  indicator.Policy
	Model   scoring.Model
}

// Options hold everything the pipeline needs besides its collaborators.
type Options struct {
	Economic             Family
	RealEstate           Family
	EconomicThresholds   scoring.EconomicThresholds
	RealEstateThresholds scoring.RealEstateThresholds
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// DefaultOptions returns the canonical catalogs, policies and models.
func DefaultOptions() Options {
	return Options{
		Economic: Family{
			Catalog: indicator.EconomicCatalog(),
			Policy:  indicator.PolicyLatest,
			Model:   scoring.EconomicModel(),
		},
		RealEstate: Family{
			Catalog: indicator.RealEstateCatalog(),
			Policy:  indicator.PolicyWeightedQuadratic,
			Model:   scoring.RealEstateModel(),
		},
		EconomicThresholds:   scoring.DefaultEconomicThresholds(),
		RealEstateThresholds: scoring.DefaultRealEstateThresholds(),
		Clock:                time.Now,
	}
}

// Service runs the fetch, derive, score, classify and narrate pipeline.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	opts     Options
	fetcher  fetcher.SeriesFetcher
	narrator narrative.Narrator
	observer Observer
	logger   zerolog.Logger
}

// New constructs the pipeline. narrator and observer may be nil.
func New(opts Options, f fetcher.SeriesFetcher, n narrative.Narrator, observer Observer, logger zerolog.Logger) (*Service, error) {
	if f == nil {
		return nil, fmt.Errorf("series fetcher is required")
	}
	if err := opts.Economic.Model.Validate(); err != nil {
		return nil, fmt.Errorf("economic model: %w", err)
	}
	if err := opts.RealEstate.Model.Validate(); err != nil {
		return nil, fmt.Errorf("real estate model: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if n == nil {
		n = narrative.Static{}
	}
	return &Service{
		opts:     opts,
		fetcher:  f,
		narrator: n,
		observer: observer,
		logger:   logger.With().Str("component", "service").Logger(),
	}, nil
}

// asOf is the current calendar month and the request date.
func (s *Service) asOf() (series.PeriodKey, string) {
	now := s.opts.Clock()
	return series.PeriodOf(now), now.Format("2006-01-02")
}

// fetchAll issues every fetch concurrently. Fetch failures are absorbed by
// the fetcher as empty series; request cancellation or an empty required
// series fails the call and cancels the fetches still in flight.
func (s *Service) fetchAll(ctx context.Context, defs []indicator.Definition, end series.PeriodKey) (indicator.Raw, error) {
	results := make([]series.Series, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	for i, def := range defs {
		g.Go(func() error {
			out := s.fetcher.Fetch(gctx, def, end)
			if out == nil {
				out = series.Series{}
			}
			results[i] = out
			if err := gctx.Err(); err != nil {
				return err
			}
			if def.Required && len(out) == 0 {
				return fmt.Errorf("%w: %s", ErrRequiredSeries, def.Key())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	raw := make(indicator.Raw, len(defs))
	for i, def := range defs {
		raw[def.Name] = results[i]
	}
	return raw, nil
}

func (s *Service) narrate(ctx context.Context, facts narrative.Facts, staticRecommendation string) (string, string, string) {
	outcome := s.narrator.Narrate(ctx, narrative.BuildPrompt(facts))
	label := narrative.Label(outcome)
	if s.observer != nil {
		s.observer.ObserveNarrative(label)
	}
	if d, ok := outcome.(narrative.Degraded); ok {
		s.logger.Info().Str("family", string(facts.Family)).Str("reason", d.Reason).Msg("narrative degraded to static text")
	}
	analysis, recommendation := narrative.Resolve(outcome, staticRecommendation)
	return analysis, recommendation, label
}

func (s *Service) classified(family, level string) {
	if s.observer != nil {
		s.observer.ObserveClassification(family, level)
	}
}

func indicatorViews(set *indicator.Set) map[string]IndicatorView {
	out := make(map[string]IndicatorView, len(set.Items))
	for _, name := range set.Order {
		d := set.Items[name]
		window := d.Window
		if window == nil {
			window = series.Series{}
		}
		out[name] = IndicatorView{
			Latest:    series.Round2(d.Representative.Value),
			HasData:   d.Representative.HasData,
			Trend:     d.Representative.Trend,
			ChartData: window,
		}
	}
	return out
}

func fullSeries(set *indicator.Set) map[string]series.Series {
	out := make(map[string]series.Series, len(set.Items))
	for name, d := range set.Items {
		out[name] = d.Full
	}
	return out
}

func windowScores(points []scoring.ScorePoint, years int, asOf series.PeriodKey) []scoring.ScorePoint {
	cutoff := asOf.AddYears(-years)
	out := make([]scoring.ScorePoint, 0, len(points))
	for _, p := range points {
		if p.Time >= cutoff {
			out = append(out, p)
		}
	}
	return out
}

func roundScores(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for k, v := range scores {
		out[k] = series.Round2(v)
	}
	return out
}
