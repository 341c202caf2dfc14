package analytics

import (
	"math"
	"sort"

	"StockLens/internal/domain/models"
)

// MinEvaluatedForCorrection is the fewest usable records a bias factor is estimated from.
const MinEvaluatedForCorrection = 5

// ComputeCorrection estimates a multiplicative bias from past errors. Records
// are taken newest target date first and their ratios
// (actual-predicted)/predicted are averaged with weights rising linearly from
// 1 to 2 in that order, so the newest record weighs 1 and the oldest 2.
func ComputeCorrection(records []models.PredictionRecord) models.CorrectionInfo {
	evaluated := evaluatedOnly(records)
	if len(evaluated) < MinEvaluatedForCorrection {
		return models.CorrectionInfo{DataCount: len(evaluated)}
	}
	sort.SliceStable(evaluated, func(i, j int) bool {
		return evaluated[i].TargetDate.After(evaluated[j].TargetDate)
	})

	ratios := make([]float64, 0, len(evaluated))
	for _, r := range evaluated {
		if r.PredictedPrice == 0 {
			continue
		}
		ratios = append(ratios, (*r.ActualPrice-r.PredictedPrice)/r.PredictedPrice)
	}
	if len(ratios) == 0 {
		return models.CorrectionInfo{}
	}

	var wSum, wxSum, absSum float64
	for i, x := range ratios {
		w := 1.0
		if len(ratios) > 1 {
			w = 1 + float64(i)/float64(len(ratios)-1)
		}
		wSum += w
		wxSum += w * x
		absSum += math.Abs(x)
	}
	return models.CorrectionInfo{
		IsCorrected: true,
		Factor:      round(wxSum/wSum, 4),
		DataCount:   len(ratios),
		AvgErrorPct: round(absSum/float64(len(ratios))*100, 2),
	}
}

// ApplyCorrection scales price by (1+factor) when info is a live correction.
func ApplyCorrection(price float64, info models.CorrectionInfo) float64 {
	if !info.IsCorrected {
		return price
	}
	return round(price*(1+info.Factor), 4)
}

// CorrectForward fills CorrectedPrice on each forecast. The input is not modified.
func CorrectForward(forward []models.ForwardPrediction, info models.CorrectionInfo) []models.ForwardPrediction {
	out := make([]models.ForwardPrediction, len(forward))
	copy(out, forward)
	for i := range out {
		out[i].CorrectedPrice = models.Float(ApplyCorrection(out[i].PredictedPrice, info))
	}
	return out
}
