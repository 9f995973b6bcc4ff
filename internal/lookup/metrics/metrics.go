package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks catalog availability.
type Metrics struct {
	StoreFailures prometheus.Counter
	StaleServed   prometheus.Counter
	CircuitState  prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		StoreFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examreg_lookup_store_failures_total",
			Help: "Catalog reads that failed against the backing store",
		}),
		StaleServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "examreg_lookup_stale_served_total",
			Help: "Catalog reads answered from the last known good snapshot",
		}),
		CircuitState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "examreg_lookup_circuit_state",
			Help: "Catalog circuit breaker state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) IncrementStoreFailures() {
	m.StoreFailures.Inc()
}

func (m *Metrics) IncrementStaleServed() {
	m.StaleServed.Inc()
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if open {
		m.CircuitState.Set(1)
		return
	}
	m.CircuitState.Set(0)
}
