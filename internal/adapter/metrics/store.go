package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics holds Prometheus metrics for permission store operations.
type StoreMetrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewStoreMetrics creates and registers store metrics on the given registry.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of backing store commands, by command and status.",
		}, []string{"command", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of backing store commands in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"command"}),
	}

	reg.MustRegister(m.Operations, m.Duration)
	return m
}

// Observe records one command.
func (m *StoreMetrics) Observe(command string, seconds float64, failed bool) {
	status := "success"
	if failed {
		status = "error"
	}
	m.Operations.WithLabelValues(command, status).Inc()
	m.Duration.WithLabelValues(command).Observe(seconds)
}
