package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox relay.
type Metrics struct {
	Published           prometheus.Counter
	PublishFailures     prometheus.Counter
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with relay metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examreg_audit_relay_published_total",
			Help: "Total number of outbox entries published to the sink",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examreg_audit_relay_publish_failures_total",
			Help: "Total number of outbox batches the sink rejected",
		}),
		CircuitBreakerState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "examreg_audit_relay_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

// AddPublished adds n to the published counter.
func (m *Metrics) AddPublished(n int) {
	m.Published.Add(float64(n))
}

// IncPublishFailures increments the publish failures counter.
func (m *Metrics) IncPublishFailures() {
	m.PublishFailures.Inc()
}

// SetCircuitBreakerState sets the circuit breaker state gauge.
func (m *Metrics) SetCircuitBreakerState(open bool) {
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
