package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are the server's Prometheus collectors.
type metrics struct {
	// requests counts HTTP requests.
	// Labels: route, method, status
	requests *prometheus.CounterVec
	// evalLatency measures evaluation time.
	// Labels: outcome (ok, error, timeout)
	evalLatency *prometheus.HistogramVec
	// evalErrors counts failed evaluations.
	// Labels: class
	evalErrors *prometheus.CounterVec
	// varSets counts variable assignments.
	// Labels: status (ok, error)
	varSets *prometheus.CounterVec
	// limited counts requests rejected by the rate limit.
	limited prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "decicalc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"route", "method", "status"}),
		evalLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "decicalc",
			Subsystem: "eval",
			Name:      "latency_seconds",
			Help:      "Expression evaluation latency in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"outcome"}),
		evalErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "decicalc",
			Subsystem: "eval",
			Name:      "errors_total",
			Help:      "Total failed evaluations by error class",
		}, []string{"class"}),
		varSets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "decicalc",
			Subsystem: "vars",
			Name:      "sets_total",
			Help:      "Total variable assignments by status",
		}, []string{"status"}),
		limited: f.NewCounter(prometheus.CounterOpts{
			Namespace: "decicalc",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total API requests rejected by the rate limit",
		}),
	}
}

func (m *metrics) recordEval(outcome string, sec float64) {
	m.evalLatency.WithLabelValues(outcome).Observe(sec)
}

func (m *metrics) recordEvalError(class string) {
	m.evalErrors.WithLabelValues(class).Inc()
}

func (m *metrics) recordSet(ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.varSets.WithLabelValues(status).Inc()
}
