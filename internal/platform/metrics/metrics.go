package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds service-level Prometheus metrics. Module-specific metrics
// live next to their module.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	SubjectsCreated prometheus.Counter
}

// New creates and registers service-level metrics.
func New() *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agrilink_http_requests_total",
			Help: "Total HTTP requests by route and status class",
		}, []string{"route", "status"}),
		SubjectsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agrilink_verification_subjects_created_total",
			Help: "Total number of verification subjects registered",
		}),
	}
}

// IncrementSubjectsCreated increments the subjects created counter by 1.
func (m *Metrics) IncrementSubjectsCreated() {
	m.SubjectsCreated.Inc()
}
