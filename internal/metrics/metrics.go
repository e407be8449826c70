package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so tests and multiple App instances
// never collide on the global one. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	fetches         *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	narratives      *prometheus.CounterVec
	classifications *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New builds a recorder and registers every collector.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrosignal_fetch_total",
				Help: "Upstream statistic fetches by outcome",
			},
			[]string{"stat_code", "outcome"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrosignal_fetch_duration_seconds",
				Help:    "Upstream statistic fetch latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"stat_code"},
		),
		narratives: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrosignal_narrative_total",
				Help: "Narrative requests by outcome",
			},
			[]string{"outcome"},
		),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrosignal_classification_total",
				Help: "Regime classifications by family and level",
			},
			[]string{"family", "level"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "macrosignal_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "macrosignal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route", "method"},
		),
	}
	r.registry.MustRegister(r.fetches, r.fetchDuration, r.narratives, r.classifications, r.requests, r.requestDuration)
	return r
}

// ObserveFetch records one fetch attempt.
func (r *Recorder) ObserveFetch(statCode, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(statCode, outcome).Inc()
	r.fetchDuration.WithLabelValues(statCode).Observe(elapsed.Seconds())
}

// ObserveNarrative records whether a narrative succeeded or degraded.
func (r *Recorder) ObserveNarrative(outcome string) {
	if r == nil {
		return
	}
	r.narratives.WithLabelValues(outcome).Inc()
}

// ObserveClassification records the regime assigned to one request.
func (r *Recorder) ObserveClassification(family, level string) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(family, level).Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(route, method, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, method, status).Inc()
	r.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
