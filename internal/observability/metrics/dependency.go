package metrics

import "github.com/prometheus/client_golang/prometheus"

var breakerStates = []string{"closed", "half-open", "open"}

// DependencyMetrics tracks retries and circuit breaker state of outbound calls.
// It satisfies resilience.Observer.
type DependencyMetrics struct {
	service      string
	retriesTotal *prometheus.CounterVec
	breakerState *prometheus.GaugeVec
}

func newDependencyMetrics(service string) *DependencyMetrics {
	return &DependencyMetrics{
		service: service,
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dependency",
				Name:      "retries_total",
				Help:      "Total retried calls to external dependencies by operation.",
			},
			[]string{"service", "operation"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "dependency",
				Name:      "circuit_breaker_state",
				Help:      "Current circuit breaker state per operation (1 for the active state).",
			},
			[]string{"service", "operation", "state"},
		),
	}
}

func (m *DependencyMetrics) register(registry *prometheus.Registry) {
	registry.MustRegister(m.retriesTotal, m.breakerState)
}

func (m *DependencyMetrics) ObserveRetry(operation string) {
	m.retriesTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *DependencyMetrics) ObserveBreakerState(operation, state string) {
	for _, s := range breakerStates {
		value := 0.0
		if s == state {
			value = 1
		}
		m.breakerState.WithLabelValues(m.service, operation, s).Set(value)
	}
}
