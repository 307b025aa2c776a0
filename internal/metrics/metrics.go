// Package metrics exposes Prometheus counters for the board service.
//
// Callers depend on the Recorder interface; Noop satisfies it when metrics are
// disabled and in tests that do not care about them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Identity resolution outcomes.
const (
	OutcomeCached   = "cached"
	OutcomeExisting = "existing"
	OutcomeCreated  = "created"
	OutcomeError    = "error"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Recorder records application events.
type Recorder interface {
	// RecordIdentityResolution counts a resolution by provider and outcome.
	RecordIdentityResolution(provider, outcome string)
	// RecordLogin counts a login attempt; method is "form" or a provider name.
	RecordLogin(method string, success bool)
	RecordLogout()
	// RecordHTTPRequest observes one request; route is the router pattern, not the raw path.
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	HTTPRequestStarted()
	HTTPRequestFinished()
}

var _ Recorder = (*Metrics)(nil)

// Metrics is the Prometheus-backed Recorder. Each instance owns its registry,
// so tests can create as many as they like without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	IdentityResolutionsTotal *prometheus.CounterVec
	LoginsTotal              *prometheus.CounterVec
	LogoutsTotal             prometheus.Counter

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

// New registers all collectors, plus the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		IdentityResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardsvc_identity_resolutions_total",
				Help: "Social identity resolutions by provider and outcome",
			},
			[]string{"provider", "outcome"}, // outcome: cached, existing, created, error
		),
		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardsvc_logins_total",
				Help: "Login attempts by method and result",
			},
			[]string{"method", "result"},
		),
		LogoutsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "boardsvc_logouts_total",
				Help: "Completed logouts",
			},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boardsvc_http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "boardsvc_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "boardsvc_http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
		),
	}
}

// Handler serves this instance's registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordIdentityResolution(provider, outcome string) {
	if provider == "" {
		provider = "none"
	}
	m.IdentityResolutionsTotal.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) RecordLogin(method string, success bool) {
	result := resultSuccess
	if !success {
		result = resultFailure
	}
	m.LoginsTotal.WithLabelValues(method, result).Inc()
}

func (m *Metrics) RecordLogout() {
	m.LogoutsTotal.Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) HTTPRequestStarted()  { m.HTTPRequestsInFlight.Inc() }
func (m *Metrics) HTTPRequestFinished() { m.HTTPRequestsInFlight.Dec() }
