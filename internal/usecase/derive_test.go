package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/domain/models"
)

func TestTrailingWindow(t *testing.T) {
	pts := []models.PricePoint{
		{Date: d("2026-01-01"), Close: f(1)},
		{Date: d("2026-01-20"), Close: f(2)},
		{Date: d("2026-01-21")},
		{Date: d("2026-01-30"), Close: f(3)},
	}
	got, dropped := TrailingWindow(pts, 11)
	assert.Equal(t, 1, dropped)
	require.Len(t, got, 2)
	assert.Equal(t, d("2026-01-20"), got[0].Date)
	assert.Equal(t, d("2026-01-30"), got[1].Date)

	all, _ := TrailingWindow(pts, 0)
	assert.Len(t, all, 3)

	none, dropped := TrailingWindow(nil, 30)
	assert.Empty(t, none)
	assert.Zero(t, dropped)
}

func TestDeriver_Derive(t *testing.T) {
	out, err := newDeriver().Derive(DeriveInput{
		Window: []models.PricePoint{{Date: d("2026-01-01"), Close: f(100)}},
		History: []models.PredictionRecord{
			{TargetDate: d("2026-01-01"), PredictedPrice: 99, ActualPrice: f(100)},
			{TargetDate: d("2026-01-01"), PredictedPrice: 42},
		},
		Metrics:  models.AccuracyMetrics{MAE: f(1)},
		Features: []models.FeatureImportance{{Feature: "x", Importance: 0.5}},
	})
	require.NoError(t, err)
	require.Len(t, out.Chart, 1)
	assert.Equal(t, 99.0, *out.Chart[0].Predicted)
	assert.Len(t, out.Grades, 4)
	assert.True(t, out.Importance[0].Dominant)
}

func TestDeriver_DeriveKeepsGradesOnMergeError(t *testing.T) {
	out, err := newDeriver().Derive(DeriveInput{
		Window:  []models.PricePoint{{Date: d("2026-01-01")}},
		Metrics: models.AccuracyMetrics{MAE: f(1)},
	})
	require.ErrorIs(t, err, models.ErrInvalidSeriesElement)
	assert.NotNil(t, out.Chart)
	assert.Empty(t, out.Chart)
	assert.Len(t, out.Grades, 4)
}
