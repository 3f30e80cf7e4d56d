package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the workflow module.
type Metrics struct {
	// Submission outcomes by status and failure kind
	SubmissionOutcome *prometheus.CounterVec

	// Issuance API call latency
	IssuanceLatency prometheus.Histogram

	// Overall submission processing latency
	ProcessLatency prometheus.Histogram
}

// New creates a new Metrics instance with all workflow module metrics registered.
func New() *Metrics {
	return &Metrics{
		SubmissionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "keydesk_workflow_submissions_total",
			Help: "Total processed submissions by status and failure kind",
		}, []string{"status", "kind"}), // kind: "", "identity", "transport", "api", ...

		IssuanceLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "keydesk_workflow_issuance_duration_seconds",
			Help:    "Duration of credential issuance API calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		ProcessLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "keydesk_workflow_process_duration_seconds",
			Help:    "Duration of full submission processing including notification and recording",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementOutcome records a submission outcome.
func (m *Metrics) IncrementOutcome(status, kind string) {
	if m != nil {
		m.SubmissionOutcome.WithLabelValues(status, kind).Inc()
	}
}

// ObserveIssuanceLatency records the duration of an issuance API call.
func (m *Metrics) ObserveIssuanceLatency(d time.Duration) {
	if m != nil {
		m.IssuanceLatency.Observe(d.Seconds())
	}
}

// ObserveProcessLatency records the total processing duration for one submission.
func (m *Metrics) ObserveProcessLatency(d time.Duration) {
	if m != nil {
		m.ProcessLatency.Observe(d.Seconds())
	}
}
