// Package metrics holds the Prometheus collectors of the server on a
// dedicated registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Login results.
const (
	LoginSuccess     = "success"
	LoginFailure     = "failure"
	LoginRateLimited = "rate_limited"
)

type Metrics struct {
	registry        *prometheus.Registry
	loginTotal      *prometheus.CounterVec
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers all collectors plus the Go and process collectors on a new
// registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notekeeper",
			Subsystem: "auth",
			Name:      "login_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notekeeper",
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Count of handled gRPC requests",
		}, []string{"method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "notekeeper",
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of gRPC handlers",
			Buckets:   histogramBuckets,
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		m.loginTotal,
		m.requestTotal,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveLogin(result string) {
	m.loginTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRequest(method, code string, d time.Duration) {
	m.requestTotal.WithLabelValues(method, code).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}
