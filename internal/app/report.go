package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"macro-signal/internal/indicator"
	"macro-signal/internal/scoring"
	"macro-signal/internal/series"
	"macro-signal/internal/service"
)

// snapshot is the family-independent view of one pipeline run.
type snapshot struct {
	family     string
	period     indicator.Period
	asOf       series.PeriodKey
	policy     indicator.Policy
	assessment service.Assessment
	composite  int
	scores     map[string]float64
	indicators map[string]service.IndicatorView
	history    []scoring.ScorePoint
	summary    string
}

func (a *App) snapshot(ctx context.Context, family, rawPeriod string) (*snapshot, error) {
	svc, err := a.newService()
	if err != nil {
		return nil, err
	}
	period := indicator.ParsePeriod(rawPeriod)

	switch family {
	case FamilySignal, "":
		r, err := svc.Signal(ctx, period)
		if err != nil {
			return nil, err
		}
		return &snapshot{
			family:     FamilySignal,
			period:     r.Period,
			asOf:       r.AsOf,
			policy:     r.Policy,
			assessment: r.Classification,
			composite:  r.CompositeScore,
			scores:     r.Scores,
			indicators: r.Indicators,
			history:    r.CompositeChartData,
		}, nil
	case FamilyRealEstate:
		r, err := svc.RealEstate(ctx, period)
		if err != nil {
			return nil, err
		}
		return &snapshot{
			family:     FamilyRealEstate,
			period:     r.Period,
			asOf:       r.AsOf,
			policy:     r.Policy,
			assessment: r.Risk,
			composite:  r.CompositeScore,
			scores:     r.Scores,
			indicators: r.Indicators,
			history:    r.CompositeChartData,
			summary:    r.ShortSummary,
		}, nil
	default:
		return nil, fmt.Errorf("unknown family %q (want %s or %s)", family, FamilySignal, FamilyRealEstate)
	}
}

func (s *snapshot) indicatorNames() []string {
	names := make([]string, 0, len(s.indicators))
	for name := range s.indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Report runs the pipeline once and prints the result as a table.
func (a *App) Report(ctx context.Context, opts ReportOptions, w io.Writer) error {
	snap, err := a.snapshot(ctx, opts.Family, opts.Period)
	if err != nil {
		return err
	}

	as := snap.assessment
	fmt.Fprintf(w, "Family:     %s\n", snap.family)
	fmt.Fprintf(w, "Period:     %s (as of %s, policy %s)\n", snap.period, snap.asOf, snap.policy)
	fmt.Fprintf(w, "Regime:     %s [%s, %s]\n", as.Label, as.Level, as.Color)
	fmt.Fprintf(w, "Composite:  %d\n", snap.composite)
	if snap.summary != "" {
		fmt.Fprintf(w, "Summary:    %s\n", snap.summary)
	}
	fmt.Fprintln(w)

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Indicator\tLatest\tTrend\tScore\tPoints")
	for _, name := range snap.indicatorNames() {
		view := snap.indicators[name]
		latest := "-"
		if view.HasData {
			latest = series.Format2(view.Latest)
		}
		score := "-"
		if v, ok := snap.scores[name]; ok {
			score = series.Format2(v)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%d\n", name, latest, view.Trend, score, len(view.ChartData))
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Analysis (%s):\n%s\n", as.NarrativeStatus, sanitizeInline(as.Analysis))
	fmt.Fprintf(w, "Recommendation:\n%s\n", sanitizeInline(as.Recommendation))
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\r", " ")
	return strings.TrimSpace(cleaned)
}
