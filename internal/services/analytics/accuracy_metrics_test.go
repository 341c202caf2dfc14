package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/domain/models"
)

func TestComputeAccuracy(t *testing.T) {
	records := []models.PredictionRecord{
		// deliberately out of date order
		{TargetDate: d("2026-01-03"), PredictedPrice: 104, ActualPrice: f(100)},
		{TargetDate: d("2026-01-01"), PredictedPrice: 100, ActualPrice: f(100)},
		{TargetDate: d("2026-01-02"), PredictedPrice: 102, ActualPrice: f(104)},
		{TargetDate: d("2026-01-04"), PredictedPrice: 110},
	}

	got, n := ComputeAccuracy(records)
	require.Equal(t, 3, n)

	// errors: 0, 2, -4
	require.NotNil(t, got.MAE)
	assert.InDelta(t, 2.0, *got.MAE, 1e-9)
	require.NotNil(t, got.RMSE)
	assert.InDelta(t, 2.582, *got.RMSE, 1e-4)
	require.NotNil(t, got.MAPE)
	// (0 + 2/104 + 4/100)/3*100
	assert.InDelta(t, 1.97, *got.MAPE, 1e-9)

	// moves: pred +2 actual +4 (hit), pred +2 actual -4 (miss)
	require.NotNil(t, got.DirectionAccuracy)
	assert.InDelta(t, 50.0, *got.DirectionAccuracy, 1e-9)
}

func TestComputeAccuracy_TooFew(t *testing.T) {
	got, n := ComputeAccuracy([]models.PredictionRecord{
		{TargetDate: d("2026-01-01"), PredictedPrice: 1, ActualPrice: f(1)},
		{TargetDate: d("2026-01-02"), PredictedPrice: 1},
	})
	assert.Equal(t, 1, n)
	assert.Equal(t, models.AccuracyMetrics{}, got)
}

func TestErrorPercent(t *testing.T) {
	got := ErrorPercent(models.PredictionRecord{PredictedPrice: 100, ActualPrice: f(103.456)})
	require.NotNil(t, got)
	assert.Equal(t, 3.46, *got)

	assert.Nil(t, ErrorPercent(models.PredictionRecord{PredictedPrice: 100}))
	assert.Nil(t, ErrorPercent(models.PredictionRecord{ActualPrice: f(1)}))
}

func TestComputeCorrection(t *testing.T) {
	var records []models.PredictionRecord
	for i := 0; i < 4; i++ {
		records = append(records, models.PredictionRecord{
			TargetDate: d("2026-01-01").AddDays(i), PredictedPrice: 100, ActualPrice: f(110),
		})
	}
	info := ComputeCorrection(records)
	assert.False(t, info.IsCorrected)
	assert.Equal(t, 4, info.DataCount)
	assert.Equal(t, 100.0, ApplyCorrection(100, info))

	// newest ratio 0.2 weighs 1, the four older 0.1 weigh 1.25..2
	records = append(records, models.PredictionRecord{
		TargetDate: d("2026-01-05"), PredictedPrice: 100, ActualPrice: f(120),
	})
	info = ComputeCorrection(records)
	require.True(t, info.IsCorrected)
	assert.Equal(t, 5, info.DataCount)
	// (0.2*1 + 0.1*(1.25+1.5+1.75+2)) / 7.5
	assert.InDelta(t, 0.1133, info.Factor, 1e-9)
	assert.InDelta(t, 12.0, info.AvgErrorPct, 1e-9)
	assert.InDelta(t, 111.33, ApplyCorrection(100, info), 1e-9)
}

func TestComputeCorrection_OldestWeighsMost(t *testing.T) {
	records := []models.PredictionRecord{
		{TargetDate: d("2026-01-05"), PredictedPrice: 100, ActualPrice: f(100)},
		{TargetDate: d("2026-01-04"), PredictedPrice: 100, ActualPrice: f(100)},
		{TargetDate: d("2026-01-01"), PredictedPrice: 100, ActualPrice: f(110)},
		{TargetDate: d("2026-01-03"), PredictedPrice: 100, ActualPrice: f(100)},
		{TargetDate: d("2026-01-02"), PredictedPrice: 100, ActualPrice: f(100)},
	}
	info := ComputeCorrection(records)
	require.True(t, info.IsCorrected)
	// only the oldest errs, at weight 2 of 7.5
	assert.Equal(t, 0.0267, info.Factor)
	assert.Equal(t, 2.0, info.AvgErrorPct)
	assert.Equal(t, d("2026-01-05"), records[0].TargetDate)
}

func TestCorrectForward(t *testing.T) {
	forward := []models.ForwardPrediction{{Date: d("2026-02-01"), PredictedPrice: 50}}
	info := models.CorrectionInfo{IsCorrected: true, Factor: 0.1}

	got := CorrectForward(forward, info)
	require.NotNil(t, got[0].CorrectedPrice)
	assert.InDelta(t, 55.0, *got[0].CorrectedPrice, 1e-9)
	assert.Nil(t, forward[0].CorrectedPrice)
}
