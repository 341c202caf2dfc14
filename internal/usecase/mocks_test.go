package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/services/analytics"
)

type MockForecastSource struct {
	mock.Mock
}

func (m *MockForecastSource) Prices(ctx context.Context, ticker string, period domrepo.Period) (models.PriceQueryResult, error) {
	args := m.Called(ctx, ticker, period)
	return args.Get(0).(models.PriceQueryResult), args.Error(1)
}

func (m *MockForecastSource) Predictions(ctx context.Context, ticker string, days int) (models.PredictionQueryResult, error) {
	args := m.Called(ctx, ticker, days)
	return args.Get(0).(models.PredictionQueryResult), args.Error(1)
}

func (m *MockForecastSource) History(ctx context.Context, ticker string, limit int) (models.PredictionHistoryResult, error) {
	args := m.Called(ctx, ticker, limit)
	return args.Get(0).(models.PredictionHistoryResult), args.Error(1)
}

func (m *MockForecastSource) Accuracy(ctx context.Context, ticker string) (models.AccuracyQueryResult, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(models.AccuracyQueryResult), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishDerived(ctx context.Context, ev *models.DerivedEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *MockPublisher) Close() error { return nil }

// fakeMetrics counts calls by name.
type fakeMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{counts: map[string]int{}} }

func (f *fakeMetrics) inc(k string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[k]++
}

func (f *fakeMetrics) get(k string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[k]
}

func (f *fakeMetrics) RecordDerive(kind string)      { f.inc("derive:" + kind) }
func (f *fakeMetrics) RecordError(kind string)       { f.inc("error:" + kind) }
func (f *fakeMetrics) RecordStale(source string)     { f.inc("stale:" + source) }
func (f *fakeMetrics) RecordLatency(string, float64) {}

func newDeriver() *Deriver {
	return NewDeriver(analytics.NewMerger(), analytics.NewGrader(nil), analytics.NewRanker())
}

func d(s string) models.Date { return models.MustParseDate(s) }

func f(v float64) *float64 { return &v }
