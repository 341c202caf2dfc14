package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint_Records(t *testing.T) {
	m, err := NewEndpoint(prometheus.NewRegistry())
	require.NoError(t, err)

	m.CacheResult("dashboard", true)
	m.CacheResult("dashboard", false)
	m.CacheResult("dashboard", false)
	m.Limited("dashboard")
	m.Error("chart", "ERR_BAD_REQUEST")
	m.Observe("chart", 0.001)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cache.WithLabelValues("dashboard", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Cache.WithLabelValues("dashboard", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("dashboard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("chart", "ERR_BAD_REQUEST")))
}

func TestEndpoint_NilSafe(t *testing.T) {
	var m *Endpoint
	m.Observe("x", 1)
	m.Error("x", "y")
	m.CacheResult("x", true)
	m.Limited("x")
}
