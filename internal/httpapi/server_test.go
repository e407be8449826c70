package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"macro-signal/internal/indicator"
	"macro-signal/internal/metrics"
	"macro-signal/internal/series"
	"macro-signal/internal/service"
)

func noopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakePipeline struct {
	gotPeriod indicator.Period
	err       error
	panicMsg  string
}

func (f *fakePipeline) Signal(_ context.Context, p indicator.Period) (*service.SignalReport, error) {
	f.gotPeriod = p
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &service.SignalReport{Period: p, Years: p.Years(), CompositeScore: 42}, nil
}

func (f *fakePipeline) RealEstate(_ context.Context, p indicator.Period) (*service.RealEstateReport, error) {
	f.gotPeriod = p
	if f.err != nil {
		return nil, f.err
	}
	return &service.RealEstateReport{Period: p, Years: p.Years()}, nil
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSignalEndpoint(t *testing.T) {
	p := &fakePipeline{}
	srv := NewServer(Config{CORS: true}, p, nil, noopLogger())

	rec := do(t, srv.Handler(), "/signal?period=3y")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if p.gotPeriod != indicator.Period3Y {
		t.Fatalf("period = %s", p.gotPeriod)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["compositeScore"].(float64) != 42 {
		t.Fatalf("unexpected body %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("response should carry a request id")
	}
}

func TestAPIAliasAndPeriodDefaults(t *testing.T) {
	cases := map[string]indicator.Period{
		"/api/realestate":             indicator.Period1Y,
		"/api/realestate?period=5y":   indicator.Period5Y,
		"/realestate?period=bogus":    indicator.Period1Y,
		"/api/signal?period=":         indicator.Period1Y,
		"/signal?period=3y&period=5y": indicator.Period3Y,
	}
	for target, want := range cases {
		p := &fakePipeline{}
		srv := NewServer(Config{}, p, nil, noopLogger())
		rec := do(t, srv.Handler(), target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		if p.gotPeriod != want {
			t.Fatalf("%s: period = %s, want %s", target, p.gotPeriod, want)
		}
	}
}

func TestConfiguredDefaultPeriod(t *testing.T) {
	cases := map[string]indicator.Period{
		"/signal":                  indicator.Period5Y,
		"/api/signal?period=":      indicator.Period5Y,
		"/realestate?period=bogus": indicator.Period5Y,
		"/realestate?period=3y":    indicator.Period3Y,
	}
	for target, want := range cases {
		p := &fakePipeline{}
		srv := NewServer(Config{DefaultPeriod: indicator.Period5Y}, p, nil, noopLogger())
		rec := do(t, srv.Handler(), target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", target, rec.Code)
		}
		if p.gotPeriod != want {
			t.Fatalf("%s: period = %s, want %s", target, p.gotPeriod, want)
		}
	}
}

func TestServerConfigDefaults(t *testing.T) {
	p := &fakePipeline{}
	srv := NewServer(Config{DefaultPeriod: "10y"}, p, nil, noopLogger())
	if srv.cfg.Port != 3000 || srv.cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("zero config not defaulted: %+v", srv.cfg)
	}

	rec := do(t, srv.Handler(), "/signal")
	if rec.Code != http.StatusOK || p.gotPeriod != indicator.Period1Y {
		t.Fatalf("unknown configured default should fall back to 1y, got %d %s", rec.Code, p.gotPeriod)
	}
}

func TestPipelineErrorIs500(t *testing.T) {
	p := &fakePipeline{err: errors.New("required series unavailable: 721Y001")}
	srv := NewServer(Config{}, p, nil, noopLogger())

	rec := do(t, srv.Handler(), "/realestate")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || !strings.Contains(body.Error, "required series") {
		t.Fatalf("unexpected error body %q (%v)", rec.Body.String(), err)
	}
}

func TestPanicIs500(t *testing.T) {
	p := &fakePipeline{panicMsg: "boom"}
	srv := NewServer(Config{}, p, nil, noopLogger())

	rec := do(t, srv.Handler(), "/signal")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Fatalf("panic should produce an {error} body, got %q", rec.Body.String())
	}
}

func TestUnknownRouteIsJSON(t *testing.T) {
	srv := NewServer(Config{}, &fakePipeline{}, nil, noopLogger())
	rec := do(t, srv.Handler(), "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	m := metrics.New()
	srv := NewServer(Config{}, &fakePipeline{}, m, noopLogger())

	if rec := do(t, srv.Handler(), "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	do(t, srv.Handler(), "/signal")

	rec := do(t, srv.Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `macrosignal_http_requests_total{method="GET",route="/signal",status="200"} 1`) {
		t.Fatalf("request metric missing:\n%s", rec.Body.String())
	}
}

type emptyFetcher struct{}

func (emptyFetcher) Fetch(context.Context, indicator.Definition, series.PeriodKey) series.Series {
	return series.Series{}
}

func TestZeroRowIndicatorStill200(t *testing.T) {
	opts := service.DefaultOptions()
	opts.Clock = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	svc, err := service.New(opts, emptyFetcher{}, nil, nil, noopLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	srv := NewServer(Config{}, svc, nil, noopLogger())

	for _, target := range []string{"/signal", "/realestate"} {
		rec := do(t, srv.Handler(), target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d body %s", target, rec.Code, rec.Body.String())
		}
		var body struct {
			Indicators map[string]struct {
				Latest    float64               `json:"latest"`
				ChartData *[]series.Observation `json:"chartData"`
			} `json:"indicators"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Indicators) == 0 {
			t.Fatalf("%s: indicators missing", target)
		}
		for name, ind := range body.Indicators {
			if ind.ChartData == nil || len(*ind.ChartData) != 0 {
				t.Fatalf("%s: %s chartData should be [], got %v", target, name, ind.ChartData)
			}
			if ind.Latest != 0 {
				t.Fatalf("%s: %s latest = %v", target, name, ind.Latest)
			}
		}
	}
}
