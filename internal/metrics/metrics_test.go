package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.ObserveFetch("721Y001", "ok", 20*time.Millisecond)
	r.ObserveFetch("721Y001", "ok", 10*time.Millisecond)
	r.ObserveFetch("101Y004", "empty", time.Millisecond)
	r.ObserveNarrative("degraded")
	r.ObserveClassification("economic", "neutral")

	out := scrape(t, r)
	for _, want := range []string{
		`macrosignal_fetch_total{outcome="ok",stat_code="721Y001"} 2`,
		`macrosignal_fetch_total{outcome="empty",stat_code="101Y004"} 1`,
		`macrosignal_narrative_total{outcome="degraded"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveFetch("x", "ok", time.Second)
	r.ObserveNarrative("success")
	r.ObserveClassification("economic", "neutral")
	r.ObserveRequest("/signal", "GET", "200", time.Second)
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.ObserveClassification("real_estate", "contraction")

	out := scrape(t, r)
	if !strings.Contains(out, `macrosignal_classification_total{family="real_estate",level="contraction"} 1`) {
		t.Fatalf("metrics output missing classification counter:\n%s", out)
	}
}
