package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/domain/models"
)

func d(s string) models.Date { return models.MustParseDate(s) }

func f(v float64) *float64 { return &v }

func window(points ...float64) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(points))
	start := d("2026-01-01")
	for i, c := range points {
		out = append(out, models.PricePoint{Date: start.AddDays(i), Close: f(c)})
	}
	return out
}

func TestMerge_EndToEnd(t *testing.T) {
	prices := []models.PricePoint{
		{Date: d("2026-01-01"), Close: f(100)},
		{Date: d("2026-01-02"), Close: f(102)},
	}
	evaluated := []models.PredictionRecord{
		{TargetDate: d("2026-01-02"), PredictedPrice: 101, ActualPrice: f(102)},
	}
	forward := []models.ForwardPrediction{
		{Date: d("2026-01-03"), PredictedPrice: 105},
	}

	got, err := NewMerger().Merge(prices, evaluated, forward)
	require.NoError(t, err)

	want := []models.MergedPoint{
		{Date: d("2026-01-01"), Price: f(100)},
		{Date: d("2026-01-02"), Price: f(102), Predicted: f(102)},
		{Date: d("2026-01-03"), Predicted: f(105)},
	}
	assert.Equal(t, want, got)
}

func TestMerge_WindowOnly(t *testing.T) {
	prices := window(10, 11, 12, 13)
	got, err := NewMerger().Merge(prices, nil, nil)
	require.NoError(t, err)

	require.Len(t, got, len(prices))
	for i, p := range got {
		assert.Nil(t, p.Predicted, "point %d", i)
		assert.Equal(t, prices[i].Date, p.Date)
		assert.Equal(t, *prices[i].Close, *p.Price)
	}
}

func TestMerge_AttachesEvaluatedInsideWindow(t *testing.T) {
	prices := window(10, 11, 12)
	evaluated := []models.PredictionRecord{
		{TargetDate: d("2026-01-02"), PredictedPrice: 10.5, ActualPrice: f(11)},
	}
	got, err := NewMerger().Merge(prices, evaluated, nil)
	require.NoError(t, err)

	require.Len(t, got, 3)
	require.NotNil(t, got[1].Predicted)
	assert.Equal(t, 10.5, *got[1].Predicted)
	assert.Equal(t, 11.0, *got[1].Price)
	assert.Nil(t, got[0].Predicted)
	assert.Nil(t, got[2].Predicted)
}

func TestMerge_DropsOutOfWindowAndUnevaluated(t *testing.T) {
	prices := window(10, 11)
	evaluated := []models.PredictionRecord{
		{TargetDate: d("2025-12-20"), PredictedPrice: 9, ActualPrice: f(9.5)},
		{TargetDate: d("2026-02-01"), PredictedPrice: 20, ActualPrice: f(21)},
		{TargetDate: d("2026-01-01"), PredictedPrice: 30},
	}
	got, err := NewMerger().Merge(prices, evaluated, nil)
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, p := range got {
		assert.Nil(t, p.Predicted)
	}
}

func TestMerge_BridgeOverridesEvaluated(t *testing.T) {
	prices := window(10, 11, 12)
	evaluated := []models.PredictionRecord{
		{TargetDate: d("2026-01-03"), PredictedPrice: 99, ActualPrice: f(12)},
	}
	forward := []models.ForwardPrediction{
		{Date: d("2026-01-04"), PredictedPrice: 13, CorrectedPrice: f(13.5)},
		{Date: d("2026-01-05"), PredictedPrice: 14},
	}
	got, err := NewMerger().Merge(prices, evaluated, forward)
	require.NoError(t, err)

	require.Len(t, got, 5)
	assert.Equal(t, 12.0, *got[2].Predicted)
	assert.Equal(t, *got[2].Price, *got[2].Predicted)

	assert.Nil(t, got[3].Price)
	assert.Equal(t, 13.5, *got[3].Predicted)
	assert.Nil(t, got[4].Price)
	assert.Equal(t, 14.0, *got[4].Predicted)
}

func TestMerge_EmptyWindowIgnoresForward(t *testing.T) {
	forward := []models.ForwardPrediction{{Date: d("2026-01-04"), PredictedPrice: 13}}
	got, err := NewMerger().Merge(nil, nil, forward)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestMerge_SortsAndDeduplicatesWindow(t *testing.T) {
	prices := []models.PricePoint{
		{Date: d("2026-01-03"), Close: f(3)},
		{Date: d("2026-01-01"), Close: f(1)},
		{Date: d("2026-01-02"), Close: f(2)},
		{Date: d("2026-01-01"), Close: f(1.5)},
	}
	got, err := NewMerger().Merge(prices, nil, nil)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, d("2026-01-01"), got[0].Date)
	assert.Equal(t, 1.5, *got[0].Price)
	assert.Equal(t, d("2026-01-03"), got[2].Date)
}

func TestMerge_KeepsDuplicateForwardDates(t *testing.T) {
	forward := []models.ForwardPrediction{
		{Date: d("2026-01-03"), PredictedPrice: 5},
		{Date: d("2026-01-03"), PredictedPrice: 6},
	}
	got, err := NewMerger().Merge(window(1, 2), nil, forward)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, 5.0, *got[2].Predicted)
	assert.Equal(t, 6.0, *got[3].Predicted)
}

func TestMerge_TimestampAndDateKeysMatch(t *testing.T) {
	prices := []models.PricePoint{{Date: d("2026-01-02T00:00:00Z"), Close: f(102)}}
	evaluated := []models.PredictionRecord{
		{TargetDate: d("2026-01-02"), PredictedPrice: 101, ActualPrice: f(102)},
	}
	got, err := NewMerger().Merge(prices, evaluated, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Predicted)
	assert.Equal(t, 101.0, *got[0].Predicted)
}

func TestMerge_MissingCloseIsInvalid(t *testing.T) {
	prices := []models.PricePoint{
		{Date: d("2026-01-01"), Close: f(1)},
		{Date: d("2026-01-02")},
	}
	_, err := NewMerger().Merge(prices, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidSeriesElement)
}

func TestMerge_Idempotent(t *testing.T) {
	prices := window(10, 11, 12)
	evaluated := []models.PredictionRecord{{TargetDate: d("2026-01-02"), PredictedPrice: 10.8, ActualPrice: f(11)}}
	forward := []models.ForwardPrediction{{Date: d("2026-01-04"), PredictedPrice: 13}}

	m := NewMerger()
	first, err := m.Merge(prices, evaluated, forward)
	require.NoError(t, err)
	second, err := m.Merge(prices, evaluated, forward)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// inputs untouched
	assert.Nil(t, forward[0].CorrectedPrice)
	assert.Equal(t, 12.0, *prices[2].Close)
}
