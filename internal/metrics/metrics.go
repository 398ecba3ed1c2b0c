// Package metrics exposes Prometheus counters and histograms for the remote
// server, modeled on the s3-encryption-gateway's internal/metrics package.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry groups the metrics a remote server instance emits. A fresh
// Registry can be built per-test to avoid collisions with the global
// default registerer.
type Registry struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewRegistry registers Shard's remote-server metrics against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shard_remote_requests_total",
			Help: "Count of remote protocol requests by endpoint, method and outcome.",
		}, []string{"endpoint", "method", "status"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shard_remote_request_duration_seconds",
			Help:    "Latency of remote protocol requests by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
	}
}

// Observe records one request's outcome and duration.
func (r *Registry) Observe(endpoint, method, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.Requests.WithLabelValues(endpoint, method, status).Inc()
	r.Duration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}
