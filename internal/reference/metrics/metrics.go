package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for reference lifecycle operations.
type Metrics struct {
	RequestsCreated  *prometheus.CounterVec
	Resends          *prometheus.CounterVec
	Completions      *prometheus.CounterVec
	Declines         *prometheus.CounterVec
	DeliveryFailures prometheus.Counter
}

// New registers and returns reference metrics collectors.
func New() *Metrics {
	return &Metrics{
		RequestsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refchain_reference_requests_created_total",
			Help: "Total reference requests created, labeled by reference type",
		}, []string{"reference_type"}),
		Resends: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refchain_reference_resends_total",
			Help: "Total reminder resends, labeled by outcome",
		}, []string{"outcome"}),
		Completions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refchain_reference_completions_total",
			Help: "Total completed references, labeled by reference type",
		}, []string{"reference_type"}),
		Declines: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refchain_reference_declines_total",
			Help: "Total declined references, labeled by decline reason",
		}, []string{"reason"}),
		DeliveryFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "refchain_reference_delivery_failures_total",
			Help: "Total notification deliveries reported failed by the gateway",
		}),
	}
}

func (m *Metrics) IncrementCreated(referenceType string) {
	m.RequestsCreated.WithLabelValues(referenceType).Inc()
}

func (m *Metrics) IncrementResend(outcome string) {
	m.Resends.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementCompleted(referenceType string) {
	m.Completions.WithLabelValues(referenceType).Inc()
}

func (m *Metrics) IncrementDeclined(reason string) {
	m.Declines.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementDeliveryFailure() {
	m.DeliveryFailures.Inc()
}
