package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	"StockLens/internal/services/analytics"
	pkgch "StockLens/pkg/clickhouse"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/util"
)

const (
	// accuracyHistoryLimit bounds how many recent records feed accuracy metrics.
	accuracyHistoryLimit = 100
	// correctionLookback bounds how many recent evaluated records feed the bias factor.
	correctionLookback = 30
)

// ForecastSchema is the DDL for the tables CHForecastStore reads.
var ForecastSchema = []string{
	`CREATE TABLE IF NOT EXISTS stock_prices (
        ticker LowCardinality(String),
        date Date,
        open Float64,
        high Float64,
        low Float64,
        close Nullable(Float64),
        volume Float64
    ) ENGINE = ReplacingMergeTree ORDER BY (ticker, date)`,
	`CREATE TABLE IF NOT EXISTS predictions (
        ticker LowCardinality(String),
        prediction_date Date,
        target_date Date,
        predicted_price Float64,
        actual_price Nullable(Float64),
        model String
    ) ENGINE = ReplacingMergeTree ORDER BY (ticker, prediction_date, target_date)`,
	`CREATE TABLE IF NOT EXISTS feature_importance (
        ticker LowCardinality(String),
        feature String,
        importance Float64,
        description String,
        computed_at DateTime
    ) ENGINE = ReplacingMergeTree(computed_at) ORDER BY (ticker, feature)`,
}

const (
	qPrices = `
        SELECT date, open, high, low, close, volume
        FROM stock_prices FINAL
        WHERE ticker = ? AND date >= ?
        ORDER BY date ASC`
	qHistory = `
        SELECT target_date, predicted_price, actual_price
        FROM predictions FINAL
        WHERE ticker = ?
        ORDER BY target_date DESC
        LIMIT ?`
	qEvaluated = `
        SELECT target_date, predicted_price, actual_price
        FROM predictions FINAL
        WHERE ticker = ? AND actual_price IS NOT NULL
        ORDER BY target_date DESC
        LIMIT ?`
	qForward = `
        SELECT target_date, predicted_price
        FROM predictions FINAL
        WHERE ticker = ?
          AND prediction_date = (SELECT max(prediction_date) FROM predictions WHERE ticker = ?)
          AND target_date > prediction_date
        ORDER BY target_date ASC
        LIMIT ?`
	qImportance = `
        SELECT feature, importance, description
        FROM feature_importance FINAL
        WHERE ticker = ?
        ORDER BY importance DESC`
)

// CHForecastStore implements ForecastSource backed by ClickHouse. It derives
// accuracy and correction from stored records instead of trusting a backend.
type CHForecastStore struct {
	ch  *pkgch.Client
	l   *applogger.Logger
	now func() time.Time
}

var _ domrepo.ForecastSource = (*CHForecastStore)(nil)

func NewCHForecastStore(ch *pkgch.Client, l *applogger.Logger) *CHForecastStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHForecastStore{ch: ch, l: l, now: time.Now}
}

func (s *CHForecastStore) Prices(ctx context.Context, ticker string, period domrepo.Period) (models.PriceQueryResult, error) {
	ticker = util.NormalizeTicker(ticker)
	period = domrepo.NormalizePeriod(string(period))
	from := models.DateOf(s.now().UTC()).AddDays(-period.Days())

	out := models.PriceQueryResult{Ticker: ticker, Period: string(period), Interval: "1d", Prices: []models.OHLCV{}}
	rows, err := s.ch.QueryContext(ctx, qPrices, ticker, from.Time())
	if err != nil {
		s.l.Error("clickhouse prices query error", applogger.String("ticker", ticker), applogger.Error(err))
		return out, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day     time.Time
			p       models.OHLCV
			closePx sql.NullFloat64
		)
		if err := rows.Scan(&day, &p.Open, &p.High, &p.Low, &closePx, &p.Volume); err != nil {
			return out, fmt.Errorf("scan price: %w", err)
		}
		p.Date = models.DateOf(day)
		p.Close = nullable(closePx)
		out.Prices = append(out.Prices, p)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("rows: %w", err)
	}
	out.Count = len(out.Prices)
	return out, nil
}

func (s *CHForecastStore) History(ctx context.Context, ticker string, limit int) (models.PredictionHistoryResult, error) {
	ticker = util.NormalizeTicker(ticker)
	out := models.PredictionHistoryResult{Ticker: ticker, History: []models.HistoryItem{}}

	records, err := s.records(ctx, qHistory, ticker, limit)
	if err != nil {
		return out, err
	}
	for _, r := range records {
		item := models.HistoryItem{
			TargetDate:     r.TargetDate,
			PredictedPrice: r.PredictedPrice,
			ActualPrice:    r.ActualPrice,
			ErrorPercent:   analytics.ErrorPercent(r),
		}
		if item.ErrorPercent != nil {
			out.EvaluatedCount++
		}
		out.History = append(out.History, item)
	}
	out.TotalCount = len(records)
	return out, nil
}

func (s *CHForecastStore) Predictions(ctx context.Context, ticker string, days int) (models.PredictionQueryResult, error) {
	ticker = util.NormalizeTicker(ticker)
	out := models.PredictionQueryResult{
		Ticker:            ticker,
		Predictions:       []models.ForwardPrediction{},
		FeatureImportance: []models.FeatureImportance{},
	}

	rows, err := s.ch.QueryContext(ctx, qForward, ticker, ticker, days)
	if err != nil {
		s.l.Error("clickhouse forward query error", applogger.String("ticker", ticker), applogger.Error(err))
		return out, fmt.Errorf("query forward predictions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			day time.Time
			f   models.ForwardPrediction
		)
		if err := rows.Scan(&day, &f.PredictedPrice); err != nil {
			return out, fmt.Errorf("scan forward prediction: %w", err)
		}
		f.Date = models.DateOf(day)
		out.Predictions = append(out.Predictions, f)
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("rows: %w", err)
	}

	importance, err := s.importance(ctx, ticker)
	if err != nil {
		return out, err
	}
	out.FeatureImportance = importance

	evaluated, err := s.records(ctx, qEvaluated, ticker, correctionLookback)
	if err != nil {
		return out, err
	}
	info := analytics.ComputeCorrection(evaluated)
	out.CorrectionInfo = &info
	out.Predictions = analytics.CorrectForward(out.Predictions, info)
	return out, nil
}

func (s *CHForecastStore) Accuracy(ctx context.Context, ticker string) (models.AccuracyQueryResult, error) {
	ticker = util.NormalizeTicker(ticker)
	out := models.AccuracyQueryResult{Ticker: ticker}

	all, err := s.records(ctx, qHistory, ticker, accuracyHistoryLimit)
	if err != nil {
		return out, err
	}
	evaluated, err := s.records(ctx, qEvaluated, ticker, accuracyHistoryLimit)
	if err != nil {
		return out, err
	}
	out.TotalPredictions = len(all)
	out.Metrics, out.EvaluatedCount = analytics.ComputeAccuracy(evaluated)
	// both are newest first, so the lookback is a prefix
	info := analytics.ComputeCorrection(evaluated[:min(len(evaluated), correctionLookback)])
	out.CorrectionInfo = &info
	return out, nil
}

// records runs a history query and returns at most limit predictions, newest first.
func (s *CHForecastStore) records(ctx context.Context, query, ticker string, limit int) ([]models.PredictionRecord, error) {
	rows, err := s.ch.QueryContext(ctx, query, ticker, limit)
	if err != nil {
		s.l.Error("clickhouse history query error", applogger.String("ticker", ticker), applogger.Error(err))
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]models.PredictionRecord, 0, limit)
	for rows.Next() {
		var (
			day    time.Time
			r      models.PredictionRecord
			actual sql.NullFloat64
		)
		if err := rows.Scan(&day, &r.PredictedPrice, &actual); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		r.TargetDate = models.DateOf(day)
		r.ActualPrice = nullable(actual)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHForecastStore) importance(ctx context.Context, ticker string) ([]models.FeatureImportance, error) {
	rows, err := s.ch.QueryContext(ctx, qImportance, ticker)
	if err != nil {
		return nil, fmt.Errorf("query feature importance: %w", err)
	}
	defer rows.Close()

	out := []models.FeatureImportance{}
	for rows.Next() {
		var f models.FeatureImportance
		if err := rows.Scan(&f.Feature, &f.Importance, &f.Description); err != nil {
			return nil, fmt.Errorf("scan feature importance: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float(v.Float64)
}
