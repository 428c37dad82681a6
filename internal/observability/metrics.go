package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UpstreamMetrics records calls made to the floor API.
type UpstreamMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewUpstreamMetrics registers the upstream collectors on reg.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	factory := promauto.With(reg)
	return &UpstreamMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "floorview_upstream_requests_total",
			Help: "Total number of floor API requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "floorview_upstream_request_duration_seconds",
			Help:    "Floor API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// Observe records one finished request. A nil receiver is a no-op.
func (m *UpstreamMetrics) Observe(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, outcome).Inc()
	m.latency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Track returns a function that records the request when called (e.g. defer).
func (m *UpstreamMetrics) Track(operation string) func(outcome string) {
	start := time.Now()
	return func(outcome string) {
		m.Observe(operation, outcome, start)
	}
}
