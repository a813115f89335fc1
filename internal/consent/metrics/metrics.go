package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for consent operations.
type Metrics struct {
	ConsentsCreated    prometheus.Counter
	ConsentsSuperseded prometheus.Counter
}

// New registers and returns consent metrics collectors.
func New() *Metrics {
	return &Metrics{
		ConsentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "refchain_consents_created_total",
			Help: "Total number of consents created",
		}),
		ConsentsSuperseded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "refchain_consents_superseded_total",
			Help: "Total number of consents revoked by a superseding creation",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.ConsentsCreated.Inc()
}

func (m *Metrics) AddSuperseded(count int) {
	m.ConsentsSuperseded.Add(float64(count))
}
