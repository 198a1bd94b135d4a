package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported on /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	percoRequests *prometheus.CounterVec
	percoDuration *prometheus.HistogramVec
	tokenExpiry   prometheus.Gauge
	lookups       *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		percoRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perco_requests_total",
			Help: "Calls to the Perco API by operation and outcome.",
		}, []string{"op", "outcome"}),
		percoDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "perco_request_duration_seconds",
			Help:    "Latency of Perco API calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		tokenExpiry: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "perco_token_expiry_timestamp_seconds",
			Help: "Unix time the current Perco token expires, 0 when unknown.",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_lookups_total",
			Help: "Directory lookups by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(m.percoRequests, m.percoDuration, m.tokenExpiry, m.lookups, m.httpRequests, m.httpDuration)
	return m
}

// ObservePerco records one Perco call.
func (m *Metrics) ObservePerco(op string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.percoRequests.WithLabelValues(op, outcome).Inc()
	m.percoDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetTokenExpiry publishes the expiry of the current Perco token.
func (m *Metrics) SetTokenExpiry(t time.Time) {
	if m == nil {
		return
	}
	if t.IsZero() {
		m.tokenExpiry.Set(0)
		return
	}
	m.tokenExpiry.Set(float64(t.Unix()))
}

// ObserveLookup counts a directory lookup with outcome found, not_found or error.
func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
