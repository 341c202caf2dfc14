package usecase

import (
	"fmt"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
)

// Deriver runs the three reconciliation transforms over one set of inputs.
// It holds no per-call state and is safe for concurrent use.
type Deriver struct {
	merger domsvc.SeriesMerger
	grader domsvc.AccuracyGrader
	ranker domsvc.ImportanceRanker
}

func NewDeriver(m domsvc.SeriesMerger, g domsvc.AccuracyGrader, r domsvc.ImportanceRanker) *Deriver {
	return &Deriver{merger: m, grader: g, ranker: r}
}

type DeriveInput struct {
	Window   []models.PricePoint
	History  []models.PredictionRecord
	Forward  []models.ForwardPrediction
	Metrics  models.AccuracyMetrics
	Features []models.FeatureImportance
}

type Derived struct {
	Chart      []models.MergedPoint
	Grades     []models.MetricGrade
	Importance []models.ImportanceEntry
}

// Derive merges, grades and ranks. Unevaluated history records are dropped
// before merging. Grades and importance are still returned when the merge fails.
func (d *Deriver) Derive(in DeriveInput) (Derived, error) {
	out := Derived{
		Grades:     d.grader.GradeAll(in.Metrics),
		Importance: d.ranker.Rank(in.Features),
		Chart:      []models.MergedPoint{},
	}
	chart, err := d.merger.Merge(in.Window, EvaluatedOnly(in.History), in.Forward)
	if err != nil {
		return out, fmt.Errorf("merge chart: %w", err)
	}
	out.Chart = chart
	return out, nil
}

func (d *Deriver) Chart(window []models.PricePoint, history []models.PredictionRecord, forward []models.ForwardPrediction) ([]models.MergedPoint, error) {
	return d.merger.Merge(window, EvaluatedOnly(history), forward)
}

func (d *Deriver) Grades(m models.AccuracyMetrics) []models.MetricGrade {
	return d.grader.GradeAll(m)
}

func (d *Deriver) Importance(f []models.FeatureImportance) []models.ImportanceEntry {
	return d.ranker.Rank(f)
}

// EvaluatedOnly keeps records whose actual price is known.
func EvaluatedOnly(records []models.PredictionRecord) []models.PredictionRecord {
	out := make([]models.PredictionRecord, 0, len(records))
	for _, r := range records {
		if r.Evaluated() {
			out = append(out, r)
		}
	}
	return out
}

// TrailingWindow keeps points with a close inside the last days calendar days
// ending at the newest such point. The second result counts points dropped
// for lacking a close.
func TrailingWindow(points []models.PricePoint, days int) ([]models.PricePoint, int) {
	complete := make([]models.PricePoint, 0, len(points))
	var newest models.Date
	for _, p := range points {
		if p.Close == nil || p.Date.IsZero() {
			continue
		}
		complete = append(complete, p)
		if p.Date.After(newest) {
			newest = p.Date
		}
	}
	dropped := len(points) - len(complete)
	if days <= 0 || len(complete) == 0 {
		return complete, dropped
	}

	cutoff := newest.AddDays(-(days - 1))
	out := complete[:0]
	for _, p := range complete {
		if !p.Date.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, dropped
}
