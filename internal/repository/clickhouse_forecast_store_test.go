package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	pkgch "StockLens/pkg/clickhouse"
)

func newMockStore(t *testing.T) (*CHForecastStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewCHForecastStore(pkgch.Wrap(db, nil, 0), nil)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC) }
	return s, mock
}

func day(s string) time.Time { return models.MustParseDate(s).Time() }

// historyRows returns n evaluated rows newest first, each 10% under actual.
func historyRows(n int) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"target_date", "predicted_price", "actual_price"})
	start := models.MustParseDate("2026-02-01")
	for i := n - 1; i >= 0; i-- {
		rows.AddRow(start.AddDays(i).Time(), 100.0, 110.0)
	}
	return rows
}

func TestCHForecastStore_Prices(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(qPrices).
		WithArgs("AAPL", day("2026-01-29")).
		WillReturnRows(sqlmock.NewRows([]string{"date", "open", "high", "low", "close", "volume"}).
			AddRow(day("2026-02-27"), 1.0, 2.0, 0.5, 1.5, 1000.0).
			AddRow(day("2026-02-28"), 1.5, 2.5, 1.0, nil, 900.0))

	got, err := s.Prices(context.Background(), "aapl", domrepo.Period("1mo"))
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
	pts := got.ClosePoints()
	assert.Equal(t, 1.5, *pts[0].Close)
	assert.Nil(t, pts[1].Close)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHForecastStore_History(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(qHistory).
		WithArgs("MSFT", 10).
		WillReturnRows(sqlmock.NewRows([]string{"target_date", "predicted_price", "actual_price"}).
			AddRow(day("2026-02-03"), 101.0, nil).
			AddRow(day("2026-02-02"), 100.0, 103.0))

	got, err := s.History(context.Background(), "MSFT", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalCount)
	assert.Equal(t, 1, got.EvaluatedCount)
	assert.Nil(t, got.History[0].ErrorPercent)
	require.NotNil(t, got.History[1].ErrorPercent)
	assert.Equal(t, 3.0, *got.History[1].ErrorPercent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHForecastStore_PredictionsAreCorrected(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(qForward).
		WithArgs("AAPL", "AAPL", 7).
		WillReturnRows(sqlmock.NewRows([]string{"target_date", "predicted_price"}).
			AddRow(day("2026-03-02"), 200.0))
	mock.ExpectQuery(qImportance).
		WithArgs("AAPL").
		WillReturnRows(sqlmock.NewRows([]string{"feature", "importance", "description"}).
			AddRow("close_lag_1", 0.6, "yesterday's close"))
	mock.ExpectQuery(qEvaluated).
		WithArgs("AAPL", correctionLookback).
		WillReturnRows(historyRows(5))

	got, err := s.Predictions(context.Background(), "AAPL", 7)
	require.NoError(t, err)
	require.Len(t, got.Predictions, 1)
	require.NotNil(t, got.CorrectionInfo)
	assert.True(t, got.CorrectionInfo.IsCorrected)
	require.NotNil(t, got.Predictions[0].CorrectedPrice)
	assert.InDelta(t, 220.0, *got.Predictions[0].CorrectedPrice, 1e-9)
	require.Len(t, got.FeatureImportance, 1)
	assert.Equal(t, "close_lag_1", got.FeatureImportance[0].Feature)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHForecastStore_Accuracy(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(qHistory).
		WithArgs("AAPL", accuracyHistoryLimit).
		WillReturnRows(historyRows(3).AddRow(day("2026-02-10"), 120.0, nil))
	mock.ExpectQuery(qEvaluated).
		WithArgs("AAPL", accuracyHistoryLimit).
		WillReturnRows(historyRows(3))

	got, err := s.Accuracy(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalPredictions)
	assert.Equal(t, 3, got.EvaluatedCount)
	require.NotNil(t, got.Metrics.MAE)
	assert.Equal(t, 10.0, *got.Metrics.MAE)
	require.NotNil(t, got.CorrectionInfo)
	assert.False(t, got.CorrectionInfo.IsCorrected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCHForecastStore_QueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(qHistory).WillReturnError(errors.New("connection reset"))

	_, err := s.Accuracy(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query history")
}

func TestCHForecastStore_AccuracyCorrectionUsesNewestEvaluated(t *testing.T) {
	s, mock := newMockStore(t)

	// 40 evaluated rows newest first: the newest 30 are exact, the older ten
	// miss by 10%, so a correction over all of them would be non-zero.
	evaluated := sqlmock.NewRows([]string{"target_date", "predicted_price", "actual_price"})
	start := models.MustParseDate("2026-01-01")
	for i := 39; i >= 0; i-- {
		actual := 100.0
		if i < 10 {
			actual = 110.0
		}
		evaluated.AddRow(start.AddDays(i).Time(), 100.0, actual)
	}
	mock.ExpectQuery(qHistory).
		WithArgs("AAPL", accuracyHistoryLimit).
		WillReturnRows(historyRows(1))
	mock.ExpectQuery(qEvaluated).
		WithArgs("AAPL", accuracyHistoryLimit).
		WillReturnRows(evaluated)

	got, err := s.Accuracy(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 40, got.EvaluatedCount)
	require.NotNil(t, got.CorrectionInfo)
	assert.True(t, got.CorrectionInfo.IsCorrected)
	assert.Equal(t, 30, got.CorrectionInfo.DataCount)
	assert.Equal(t, 0.0, got.CorrectionInfo.Factor)
	require.NoError(t, mock.ExpectationsWereMet())
}
