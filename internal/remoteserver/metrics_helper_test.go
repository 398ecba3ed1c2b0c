package remoteserver

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"shard/internal/metrics"
)

// newTestRegistry isolates each test's metrics from the global default
// registerer so repeated test runs never collide on metric names.
func newTestRegistry(t *testing.T) *metrics.Registry {
	t.Helper()
	return metrics.NewRegistry(prometheus.NewRegistry())
}
