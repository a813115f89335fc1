package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the scoring engine.
type Metrics struct {
	Verifications          *prometheus.CounterVec
	VerifiedTenants        prometheus.Counter
	VerificationLatency    prometheus.Histogram
	PercentageDistribution prometheus.Histogram
}

// New registers and returns verification metrics collectors.
func New() *Metrics {
	return &Metrics{
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "refchain_verifications_total",
			Help: "Total verification computations, labeled by outcome",
		}, []string{"outcome"}),
		VerifiedTenants: promauto.NewCounter(prometheus.CounterOpts{
			Name: "refchain_verified_tenants_total",
			Help: "Total tenants newly crossing the verified threshold",
		}),
		VerificationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "refchain_verification_duration_seconds",
			Help:    "Time spent computing and persisting a verification",
			Buckets: prometheus.DefBuckets,
		}),
		PercentageDistribution: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "refchain_verification_percentage",
			Help:    "Distribution of computed verification percentages",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
	}
}

func (m *Metrics) IncrementVerification(outcome string) {
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementVerifiedTenant() {
	m.VerifiedTenants.Inc()
}

func (m *Metrics) ObserveLatency(seconds float64) {
	m.VerificationLatency.Observe(seconds)
}

func (m *Metrics) ObservePercentage(percentage int) {
	m.PercentageDistribution.Observe(float64(percentage))
}
