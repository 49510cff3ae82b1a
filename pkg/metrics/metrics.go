// Package metrics holds the Prometheus collectors shared by the HTTP layer.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// NewRequestDuration creates the HTTP request latency histogram, labelled by
// method, route pattern and status code, and registers it on reg. If an
// identical collector is already registered the existing one is returned.
func NewRequestDuration(reg prometheus.Registerer) (*prometheus.HistogramVec, error) {
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "userdir",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests.",
		Buckets:   DefaultBuckets,
	}, []string{"method", "route", "code"})

	if err := reg.Register(hist); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
		}

		return nil, fmt.Errorf("could not register request duration histogram: %w", err)
	}

	return hist, nil
}
