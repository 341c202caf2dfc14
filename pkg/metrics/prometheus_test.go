package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.RecordDerive("dashboard")
	r.RecordDerive("dashboard")
	r.RecordError("fetch_prices")
	r.RecordStale("kafka")
	r.RecordLatency("dashboard_seconds", 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.derived.WithLabelValues("dashboard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("fetch_prices")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stale.WithLabelValues("kafka")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.latency))
}

func TestRecorder_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg)
	require.NoError(t, err)
	b, err := New(reg)
	require.NoError(t, err)

	a.RecordError("x")
	b.RecordError("x")
	assert.Equal(t, 2.0, testutil.ToFloat64(a.errors.WithLabelValues("x")))
}
