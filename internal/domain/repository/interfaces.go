package repository

import (
	"context"

	"StockLens/internal/domain/models"
)

// ForecastSource fetches the raw inputs the reconciliation core consumes.
// Implementations return empty collections, not errors, when a ticker simply
// has no data.
type ForecastSource interface {
	Prices(ctx context.Context, ticker string, period Period) (models.PriceQueryResult, error)
	Predictions(ctx context.Context, ticker string, days int) (models.PredictionQueryResult, error)
	History(ctx context.Context, ticker string, limit int) (models.PredictionHistoryResult, error)
	Accuracy(ctx context.Context, ticker string) (models.AccuracyQueryResult, error)
}

// Publisher emits derived events.
type Publisher interface {
	PublishDerived(ctx context.Context, ev *models.DerivedEvent) error
	Close() error
}

type Metrics interface {
	RecordDerive(kind string)
	RecordError(kind string)
	RecordStale(source string)
	RecordLatency(op string, seconds float64)
}
