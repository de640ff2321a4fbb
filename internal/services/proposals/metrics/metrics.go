// Package metrics records proposal intake outcomes for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for proposals_intake_total.
const (
	OutcomeEligible               = "eligible"
	OutcomeNotEligible            = "not_eligible"
	OutcomeInvalid                = "invalid"
	OutcomeDuplicate              = "duplicate"
	OutcomeDocumentKindRejected   = "document_kind_rejected"
	OutcomeEligibilityUnavailable = "eligibility_unavailable"
	OutcomeBusy                   = "busy"
	OutcomeError                  = "error"
)

// Metrics tracks intake outcomes and the latency of the external analysis call.
type Metrics struct {
	IntakeTotal         *prometheus.CounterVec
	IntakeDuration      prometheus.Histogram
	EligibilityDuration *prometheus.HistogramVec
}

// New registers the proposal metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IntakeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proposals_intake_total",
			Help: "Proposal submissions by outcome",
		}, []string{"outcome"}),
		IntakeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "proposals_intake_duration_seconds",
			Help:    "Duration of proposal intake including the eligibility call",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		EligibilityDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proposals_eligibility_duration_seconds",
			Help:    "Duration of eligibility analysis calls by result",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"result"}),
	}
}

// ObserveIntake records one finished submission.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveIntake(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.IntakeTotal.WithLabelValues(outcome).Inc()
	m.IntakeDuration.Observe(time.Since(start).Seconds())
}

// ObserveEligibility records one analysis call.
func (m *Metrics) ObserveEligibility(result string, start time.Time) {
	if m == nil {
		return
	}
	m.EligibilityDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
