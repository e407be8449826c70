package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"macro-signal/internal/series"
)

// exportRow is one month of the wide export table.
type exportRow struct {
	Period    series.PeriodKey
	Values    map[string]float64
	Composite *int
}

// Export renders indicator chart data as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	snap, err := a.snapshot(ctx, opts.Family, opts.Period)
	if err != nil {
		return err
	}

	names := snap.indicatorNames()
	rows := buildRows(snap, names)
	if len(rows) == 0 {
		a.Logger.Info().Str("family", snap.family).Msg("no chart data found for export window")
		return nil
	}

	downsampled := downsample(rows, opts.MaxPoints)
	a.Logger.Info().
		Str("family", snap.family).
		Int("total", len(rows)).
		Int("exported", len(downsampled)).
		Msg("exporting chart data")

	if opts.CSVPath != "" {
		if err := writeRowsCSV(opts.CSVPath, names, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		width, height := a.Config.Export.ChartWidth, a.Config.Export.ChartHeight
		if err := writeRowsPNG(opts.PNGPath, names, downsampled, width, height); err != nil {
			return err
		}
	}

	return nil
}

// buildRows joins every indicator window and the composite history by month.
func buildRows(snap *snapshot, names []string) []exportRow {
	byPeriod := make(map[series.PeriodKey]*exportRow)
	row := func(p series.PeriodKey) *exportRow {
		r, ok := byPeriod[p]
		if !ok {
			r = &exportRow{Period: p, Values: make(map[string]float64)}
			byPeriod[p] = r
		}
		return r
	}

	for _, name := range names {
		for _, o := range snap.indicators[name].ChartData {
			row(o.Time).Values[name] = o.Value
		}
	}
	for _, pt := range snap.history {
		score := pt.Score
		row(pt.Time).Composite = &score
	}

	rows := make([]exportRow, 0, len(byPeriod))
	for _, r := range byPeriod {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows
}

func downsample[T any](items []T, max int) []T {
	if max <= 0 || len(items) <= max {
		return items
	}
	if max == 1 {
		return items[len(items)-1:]
	}

	result := make([]T, 0, max)
	step := float64(len(items)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(items) {
			idx = len(items) - 1
		}
		result = append(result, items[idx])
	}
	return result
}

func writeRowsCSV(path string, names []string, rows []exportRow) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := append([]string{"period"}, names...)
	header = append(header, "composite_score")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		record := make([]string, 0, len(header))
		record = append(record, string(r.Period))
		for _, name := range names {
			v, ok := r.Values[name]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, series.Format2(v))
		}
		composite := ""
		if r.Composite != nil {
			composite = strconv.Itoa(*r.Composite)
		}
		record = append(record, composite)
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeRowsPNG(path string, names []string, rows []exportRow, width, height int) error {
	var lines []chart.Series
	for _, name := range names {
		var x []time.Time
		var y []float64
		for _, r := range rows {
			if v, ok := r.Values[name]; ok {
				x = append(x, r.Period.Time())
				y = append(y, v)
			}
		}
		if len(x) < 2 {
			continue
		}
		lines = append(lines, chart.TimeSeries{Name: name, XValues: x, YValues: y})
	}

	var cx []time.Time
	var cy []float64
	for _, r := range rows {
		if r.Composite != nil {
			cx = append(cx, r.Period.Time())
			cy = append(cy, float64(*r.Composite))
		}
	}
	if len(cx) >= 2 {
		lines = append(lines, chart.TimeSeries{
			Name:    "Composite score",
			XValues: cx,
			YValues: cy,
			YAxis:   chart.YAxisSecondary,
		})
	}

	if len(lines) == 0 {
		return errors.New("not enough data points to render a chart")
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Indicator (%)",
			ValueFormatter: valueFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Composite score",
			ValueFormatter: valueFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
