package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	derived *prometheus.CounterVec
	errors  *prometheus.CounterVec
	stale   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// New creates a recorder and registers its collectors on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		derived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_derive_total",
				Help: "Completed reconciliation cycles by kind",
			},
			[]string{"kind"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		stale: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stocklens_stale_results_total",
				Help: "Results discarded because a newer cycle superseded them",
			},
			[]string{"source"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stocklens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	var err error
	if r.derived, err = register(reg, r.derived); err != nil {
		return nil, err
	}
	if r.errors, err = register(reg, r.errors); err != nil {
		return nil, err
	}
	if r.stale, err = register(reg, r.stale); err != nil {
		return nil, err
	}
	if r.latency, err = register(reg, r.latency); err != nil {
		return nil, err
	}
	return r, nil
}

// register returns the collector already on reg when one with the same
// descriptor exists, so recorders built on one registry share series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metrics: %w", err)
	}
	return c, nil
}

func (r *Recorder) RecordDerive(kind string) {
	r.derived.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordStale(source string) {
	r.stale.WithLabelValues(source).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
