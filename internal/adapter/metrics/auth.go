package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/ticketdash/internal/domain"
)

// AuthMetrics holds Prometheus metrics for the login flow and the
// authorization chain.
type AuthMetrics struct {
	Verdicts     *prometheus.CounterVec
	Decisions    *prometheus.CounterVec
	Logins       *prometheus.CounterVec
	BreakerState *prometheus.GaugeVec
}

// NewAuthMetrics creates and registers authorization metrics on the given registry.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "verdicts_total",
			Help:      "Total number of authority source verdicts, by source and verdict.",
		}, []string{"source", "verdict"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Total number of authorization decisions, by result and reason.",
		}, []string{"result", "reason"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Total number of completed OAuth callbacks, by outcome.",
		}, []string{"outcome"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per dependency (0=closed, 1=half-open, 2=open).",
		}, []string{"dependency"}),
	}

	reg.MustRegister(m.Verdicts, m.Decisions, m.Logins, m.BreakerState)
	return m
}

func (m *AuthMetrics) ObserveVerdict(source string, verdict domain.Verdict) {
	m.Verdicts.WithLabelValues(source, verdict.String()).Inc()
}

func (m *AuthMetrics) ObserveDecision(authorized bool, reason string) {
	result := "denied"
	if authorized {
		result = "granted"
	}
	m.Decisions.WithLabelValues(result, reason).Inc()
}

// ObserveLogin records the outcome of one OAuth callback, e.g. "success"
// or the error code the browser is redirected with.
func (m *AuthMetrics) ObserveLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// BreakerStateFunc returns a callback suitable for botapi.Options.
func (m *AuthMetrics) BreakerStateFunc(dependency string) func(string) {
	gauge := m.BreakerState.WithLabelValues(dependency)
	gauge.Set(0)
	return func(state string) {
		switch state {
		case "open":
			gauge.Set(2)
		case "half-open":
			gauge.Set(1)
		default:
			gauge.Set(0)
		}
	}
}
