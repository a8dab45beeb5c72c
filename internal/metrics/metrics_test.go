package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOutcome("success", 0.5)
	m.ObserveOutcome("success", 1.5)
	m.ObserveOutcome("size_limit_exceeded", 0.1)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Conversions.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Conversions.WithLabelValues("size_limit_exceeded")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["markitdown_conversions_total"])
	assert.True(t, names["markitdown_conversion_duration_seconds"])
}
