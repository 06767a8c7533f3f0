package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
// Tracks state transitions, document uploads, and the review backlog.
type Metrics struct {
	Transitions      *prometheus.CounterVec
	DocumentUploads  *prometheus.CounterVec
	PendingRequests  prometheus.Gauge
	SubmitDuration   prometheus.Histogram
	DecisionDuration prometheus.Histogram
}

// New creates a Metrics instance with all verification module metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agrilink_verification_transitions_total",
			Help: "Total verification status transitions by target status",
		}, []string{"to"}),
		DocumentUploads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agrilink_verification_document_uploads_total",
			Help: "Total document upload attempts by result",
		}, []string{"result"}),
		PendingRequests: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "agrilink_verification_pending_requests",
			Help: "Verification requests currently awaiting review",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agrilink_verification_submit_duration_seconds",
			Help:    "Duration of Submit operations (gate check plus snapshot write)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		DecisionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agrilink_verification_decision_duration_seconds",
			Help:    "Duration of admin approve/reject operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementTransition records a completed transition into the given status.
func (m *Metrics) IncrementTransition(to string) {
	m.Transitions.WithLabelValues(to).Inc()
}

// IncrementUpload records a document upload attempt.
// result is "accepted", "rejected_size", "rejected_type", or "rejected_state".
func (m *Metrics) IncrementUpload(result string) {
	m.DocumentUploads.WithLabelValues(result).Inc()
}

// ObserveSubmit records the duration of a Submit operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

// ObserveDecision records the duration of an approve or reject operation.
func (m *Metrics) ObserveDecision(start time.Time) {
	m.DecisionDuration.Observe(time.Since(start).Seconds())
}
