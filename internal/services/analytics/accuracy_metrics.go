package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"StockLens/internal/domain/models"
)

// MinEvaluatedForAccuracy is the fewest evaluated records metrics are computed from.
const MinEvaluatedForAccuracy = 2

// ComputeAccuracy derives MAE, MAPE, RMSE and directional accuracy from the
// evaluated records. Unevaluated records are ignored. Below
// MinEvaluatedForAccuracy every metric is absent.
func ComputeAccuracy(records []models.PredictionRecord) (models.AccuracyMetrics, int) {
	evaluated := evaluatedOnly(records)
	n := len(evaluated)
	if n < MinEvaluatedForAccuracy {
		return models.AccuracyMetrics{}, n
	}

	var absSum, sqSum, pctSum float64
	pctCount := 0
	for _, r := range evaluated {
		diff := *r.ActualPrice - r.PredictedPrice
		absSum += math.Abs(diff)
		sqSum += diff * diff
		if *r.ActualPrice != 0 {
			pctSum += math.Abs(diff / *r.ActualPrice)
			pctCount++
		}
	}

	out := models.AccuracyMetrics{
		MAE:  models.Float(round(absSum/float64(n), 4)),
		RMSE: models.Float(round(math.Sqrt(sqSum/float64(n)), 4)),
	}
	if pctCount > 0 {
		out.MAPE = models.Float(round(pctSum/float64(pctCount)*100, 2))
	}

	sort.SliceStable(evaluated, func(i, j int) bool {
		return evaluated[i].TargetDate.Before(evaluated[j].TargetDate)
	})
	correct := 0
	for i := 1; i < n; i++ {
		predMove := evaluated[i].PredictedPrice - evaluated[i-1].PredictedPrice
		actualMove := *evaluated[i].ActualPrice - *evaluated[i-1].ActualPrice
		if (predMove > 0 && actualMove > 0) || (predMove < 0 && actualMove < 0) {
			correct++
		}
	}
	out.DirectionAccuracy = models.Float(round(float64(correct)/float64(n-1)*100, 2))
	return out, n
}

// ErrorPercent is (actual-predicted)/predicted*100, nil when not computable.
func ErrorPercent(r models.PredictionRecord) *float64 {
	if r.ActualPrice == nil || r.PredictedPrice == 0 {
		return nil
	}
	return models.Float(round((*r.ActualPrice-r.PredictedPrice)/r.PredictedPrice*100, 2))
}

func evaluatedOnly(records []models.PredictionRecord) []models.PredictionRecord {
	out := make([]models.PredictionRecord, 0, len(records))
	for _, r := range records {
		if r.Evaluated() {
			out = append(out, r)
		}
	}
	return out
}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
