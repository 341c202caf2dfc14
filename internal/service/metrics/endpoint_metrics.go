package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Endpoint holds the per-endpoint series the API handlers record.
type Endpoint struct {
	Latency     *prometheus.HistogramVec
	Errors      *prometheus.CounterVec
	Cache       *prometheus.CounterVec
	RateLimited *prometheus.CounterVec
}

func NewEndpoint(reg prometheus.Registerer) (*Endpoint, error) {
	m := &Endpoint{
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stocklens",
				Subsystem: "api",
				Name:      "latency_seconds",
				Help:      "Latency of api endpoints",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stocklens",
				Subsystem: "api",
				Name:      "errors_total",
				Help:      "Errors by api endpoint",
			},
			[]string{"endpoint", "code"},
		),
		Cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stocklens",
				Subsystem: "api",
				Name:      "cache_lookups_total",
				Help:      "Response cache lookups by result",
			},
			[]string{"endpoint", "result"},
		),
		RateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stocklens",
				Subsystem: "api",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"endpoint"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Latency, m.Errors, m.Cache, m.RateLimited} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, fmt.Errorf("register endpoint metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Endpoint) Observe(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.Latency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Endpoint) Error(endpoint, code string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(endpoint, code).Inc()
}

func (m *Endpoint) CacheResult(endpoint string, hit bool) {
	if m == nil {
		return
	}
	res := "miss"
	if hit {
		res = "hit"
	}
	m.Cache.WithLabelValues(endpoint, res).Inc()
}

func (m *Endpoint) Limited(endpoint string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(endpoint).Inc()
}
