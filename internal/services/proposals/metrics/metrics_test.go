package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveIntakeCountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveIntake(OutcomeEligible, time.Now())
	m.ObserveIntake(OutcomeEligible, time.Now())
	m.ObserveIntake(OutcomeDuplicate, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.IntakeTotal.WithLabelValues(OutcomeEligible)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntakeTotal.WithLabelValues(OutcomeDuplicate)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.IntakeDuration))
}

func TestObserveEligibility(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveEligibility("eligible", time.Now())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "proposals_eligibility_duration_seconds")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveIntake(OutcomeError, time.Now())
	m.ObserveEligibility("unknown", time.Now())
}

func TestNewRegistersOncePerRegistry(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
