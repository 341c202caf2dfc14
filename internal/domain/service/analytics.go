package service

import (
	"StockLens/internal/domain/models"
)

// SeriesMerger aligns price history, evaluated forecasts and forward forecasts
// into one date-ordered chart series.
type SeriesMerger interface {
	Merge(window []models.PricePoint, evaluated []models.PredictionRecord, forward []models.ForwardPrediction) ([]models.MergedPoint, error)
}

// AccuracyGrader turns a raw metric value into a qualitative grade.
type AccuracyGrader interface {
	Grade(metric models.MetricID, value *float64) models.MetricGrade
	GradeAll(metrics models.AccuracyMetrics) []models.MetricGrade
}

// ImportanceRanker tags dominant features and computes display widths.
type ImportanceRanker interface {
	Rank(features []models.FeatureImportance) []models.ImportanceEntry
}
