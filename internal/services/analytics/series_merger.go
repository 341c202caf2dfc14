package analytics

import (
	"fmt"
	"sort"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
)

// Merger is the stateless SeriesMerger.
type Merger struct{}

func NewMerger() *Merger { return &Merger{} }

// Merge builds the chart series: the price window augmented with evaluated
// forecasts that fall inside it, followed by the forward forecasts.
//
// When forward forecasts exist, the last historical point's Predicted is set to
// its own Price so the forecast line starts at the last actual close. That
// overwrite wins over an evaluated forecast attached to the same day.
func (Merger) Merge(window []models.PricePoint, evaluated []models.PredictionRecord, forward []models.ForwardPrediction) ([]models.MergedPoint, error) {
	if len(window) == 0 {
		return []models.MergedPoint{}, nil
	}

	byDate := make(map[models.Date]*models.MergedPoint, len(window))
	for i, p := range window {
		if p.Close == nil {
			return nil, fmt.Errorf("price window[%d] %s: missing close: %w", i, p.Date, models.ErrInvalidSeriesElement)
		}
		if p.Date.IsZero() {
			return nil, fmt.Errorf("price window[%d]: missing date: %w", i, models.ErrInvalidSeriesElement)
		}
		price := *p.Close
		byDate[p.Date] = &models.MergedPoint{Date: p.Date, Price: &price}
	}

	for _, rec := range evaluated {
		if !rec.Evaluated() {
			continue
		}
		pt, ok := byDate[rec.TargetDate]
		if !ok {
			// outside the window; the series never extends backwards
			continue
		}
		predicted := rec.PredictedPrice
		pt.Predicted = &predicted
	}

	out := make([]models.MergedPoint, 0, len(byDate)+len(forward))
	for _, pt := range byDate {
		out = append(out, *pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	if len(forward) == 0 {
		return out, nil
	}

	// bridge point
	last := &out[len(out)-1]
	bridge := *last.Price
	last.Predicted = &bridge

	for _, f := range forward {
		v := f.Value()
		out = append(out, models.MergedPoint{Date: f.Date, Predicted: &v})
	}
	return out, nil
}

var _ domsvc.SeriesMerger = Merger{}
