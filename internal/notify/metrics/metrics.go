package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for notification dispatch.
type Metrics struct {
	NotificationsSent *prometheus.CounterVec
}

// New registers and returns notification metrics collectors.
func New() *Metrics {
	return &Metrics{
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refchain_notifications_sent_total",
			Help: "Total notification dispatch attempts, labeled by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) IncrementSent(kind string, delivered bool) {
	outcome := "delivered"
	if !delivered {
		outcome = "failed"
	}
	m.NotificationsSent.WithLabelValues(kind, outcome).Inc()
}
