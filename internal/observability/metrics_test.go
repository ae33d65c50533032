package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	m.EventsAssigned.WithLabelValues("pin_drop").Inc()
	m.EventsAssigned.WithLabelValues("metro").Add(2)
	m.ImpactsScored.Add(5)
	m.AssignErrors.Inc()
	m.AssignmentDuration.Observe(0.12)
	m.GeocodeRequests.WithLabelValues("match").Inc()
	m.GeocodeCache.WithLabelValues("hit").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsAssigned.WithLabelValues("pin_drop")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsAssigned.WithLabelValues("metro")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.ImpactsScored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AssignErrors))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"impact_engine_events_assigned_total",
		"impact_engine_trade_area_impacts_total",
		"impact_engine_assignment_errors_total",
		"impact_engine_assignment_duration_seconds",
		"impact_engine_geocode_requests_total",
		"impact_engine_geocode_cache_total",
	} {
		assert.True(t, names[want], "metric %s not registered", want)
	}
}
