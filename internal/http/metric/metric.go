package metric

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the HTTP server metrics.
type Metrics struct {
	InflightRequests prometheus.Gauge
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		InflightRequests: register(prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "catalogue",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Number of HTTP requests currently being served.",
		})),
		RequestsTotal: register(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalogue",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "path"})),
		RequestDuration: register(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalogue",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"})),
	}
}

// register adds the collector to the default registry, reusing the
// existing collector when one with the same descriptor is already there.
func register[C prometheus.Collector](c C) C {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(C)
		}
		panic(err)
	}
	return c
}
