package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"macro-signal/internal/alerting"
	"macro-signal/internal/config"
	"macro-signal/internal/indicator"
	"macro-signal/internal/narrative"
	"macro-signal/internal/series"
)

// rampFetcher returns 48 monthly points ending at end, rising linearly.
type rampFetcher struct{}

var rampBase = map[string]float64{
	indicator.Rate3Y:       3.0,
	indicator.Rate10Y:      3.6,
	indicator.MoneySupply:  3000,
	indicator.ConsumerPx:   110,
	indicator.ProducerPx:   120,
	indicator.BaseRate:     3.5,
	indicator.SalePrice:    95,
	indicator.RentPrice:    98,
	indicator.BuildPermits: 4000,
}

func (rampFetcher) Fetch(_ context.Context, def indicator.Definition, end series.PeriodKey) series.Series {
	base, ok := rampBase[def.Name]
	if !ok {
		return series.Series{}
	}
	const n = 48
	out := make(series.Series, 0, n)
	for i := 0; i < n; i++ {
		t := end.Time().AddDate(0, -(n - 1 - i), 0)
		out = append(out, series.Observation{
			Time:  series.PeriodOf(t),
			Value: base * (1 + 0.004*float64(i)),
		})
	}
	return out
}

type recordingNotifier struct {
	digests []alerting.Digest
}

func (n *recordingNotifier) Notify(_ context.Context, d alerting.Digest) error {
	n.digests = append(n.digests, d)
	return nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	a := NewApp(cfg, zerolog.New(io.Discard))
	a.fetcher = rampFetcher{}
	a.narrator = narrative.Static{}
	a.clock = func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }
	return a
}

func TestReportSignal(t *testing.T) {
	a := newTestApp(t)

	var buf bytes.Buffer
	if err := a.Report(context.Background(), ReportOptions{Family: FamilySignal, Period: "3y"}, &buf); err != nil {
		t.Fatalf("report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Family:     signal", "as of 202406", "Indicator", indicator.Spread, indicator.M2YoY, indicator.CPIYoY} {
		if !strings.Contains(out, want) {
			t.Fatalf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestReportRealEstateIncludesSummary(t *testing.T) {
	a := newTestApp(t)

	var buf bytes.Buffer
	if err := a.Report(context.Background(), ReportOptions{Family: FamilyRealEstate, Period: "bogus"}, &buf); err != nil {
		t.Fatalf("report: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Summary:") || !strings.Contains(out, "Period:     1y") {
		t.Fatalf("unexpected report output:\n%s", out)
	}
}

func TestReportUnknownFamily(t *testing.T) {
	a := newTestApp(t)
	if err := a.Report(context.Background(), ReportOptions{Family: "stocks"}, io.Discard); err == nil {
		t.Fatalf("unknown family should fail")
	}
}

func TestExportCSVDownsamples(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "out", "signal.csv")

	err := a.Export(context.Background(), ExportOptions{Family: FamilySignal, Period: "1y", CSVPath: path, MaxPoints: 5})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("expected header plus 5 rows, got %d", len(records))
	}
	header := records[0]
	if header[0] != "period" || header[len(header)-1] != "composite_score" {
		t.Fatalf("unexpected header %v", header)
	}
	for i := 2; i < len(records); i++ {
		if records[i][0] <= records[i-1][0] {
			t.Fatalf("rows not ordered by period: %s then %s", records[i-1][0], records[i][0])
		}
	}
}

func TestExportPNG(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "realestate.png")

	if err := a.Export(context.Background(), ExportOptions{Family: FamilyRealEstate, Period: "3y", PNGPath: path}); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("output is not a PNG")
	}
}

func TestExportRequiresTarget(t *testing.T) {
	a := newTestApp(t)
	if err := a.Export(context.Background(), ExportOptions{Family: FamilySignal}); err == nil {
		t.Fatalf("export without --csv or --png should fail")
	}
}

func TestDigestCoversBothFamilies(t *testing.T) {
	a := newTestApp(t)
	svc, err := a.newService()
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	n := &recordingNotifier{}
	bucket := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	if err := a.digest(context.Background(), svc, n, indicator.Period1Y, bucket); err != nil {
		t.Fatalf("digest: %v", err)
	}
	if len(n.digests) != 1 {
		t.Fatalf("expected one digest, got %d", len(n.digests))
	}
	d := n.digests[0]
	if d.AsOf != "202406" || d.Period != "1y" || !d.Bucket.Equal(bucket) {
		t.Fatalf("unexpected digest header %+v", d)
	}
	if len(d.Lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(d.Lines))
	}
	if d.Lines[0].Family != string(narrative.FamilyEconomic) || d.Lines[1].Family != string(narrative.FamilyRealEstate) {
		t.Fatalf("unexpected families %q, %q", d.Lines[0].Family, d.Lines[1].Family)
	}
	for _, l := range d.Lines {
		if l.Label == "" || l.Recommendation == "" {
			t.Fatalf("line missing label or recommendation: %+v", l)
		}
	}
}

func TestNewNotifierFallsBackToLog(t *testing.T) {
	a := newTestApp(t)
	if _, ok := a.newNotifier().(*alerting.LogNotifier); !ok {
		t.Fatalf("expected log notifier when telegram is disabled")
	}
	a.Config.Alerting.Enabled = true
	a.Config.Alerting.Telegram.Enabled = true
	a.Config.Alerting.Telegram.BotToken = "token"
	a.Config.Alerting.Telegram.ChatID = "1"
	if _, ok := a.newNotifier().(*alerting.TelegramNotifier); !ok {
		t.Fatalf("expected telegram notifier when enabled")
	}
}

func TestDownsample(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := downsample(items, 4)
	want := []int{0, 3, 6, 9}
	if len(got) != len(want) {
		t.Fatalf("downsample len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("downsample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if got := downsample(items, 0); len(got) != len(items) {
		t.Fatalf("max 0 should keep everything")
	}
}
