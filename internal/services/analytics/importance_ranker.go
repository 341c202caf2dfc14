package analytics

import (
	"math"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
)

const (
	DefaultDominantCount   = 3
	DefaultMinDisplayWidth = 2.0 // percent of a full bar
)

// Ranker tags the leading features of an already-sorted importance list.
type Ranker struct {
	dominant int
	minWidth float64
}

type RankerOption func(*Ranker)

// WithDominantCount sets how many leading entries are flagged dominant.
func WithDominantCount(n int) RankerOption {
	return func(r *Ranker) {
		if n >= 0 {
			r.dominant = n
		}
	}
}

// WithMinDisplayWidth sets the visible floor for display widths.
func WithMinDisplayWidth(w float64) RankerOption {
	return func(r *Ranker) {
		if w >= 0 {
			r.minWidth = w
		}
	}
}

func NewRanker(opts ...RankerOption) *Ranker {
	r := &Ranker{dominant: DefaultDominantCount, minWidth: DefaultMinDisplayWidth}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank keeps the caller's order. Callers sort by importance descending.
func (r *Ranker) Rank(features []models.FeatureImportance) []models.ImportanceEntry {
	out := make([]models.ImportanceEntry, 0, len(features))
	for i, f := range features {
		width := f.Importance * 100
		// a NaN weight is treated as missing and gets the floor
		if width < r.minWidth || math.IsNaN(width) {
			width = r.minWidth
		}
		out = append(out, models.ImportanceEntry{
			Feature:      f.Feature,
			Importance:   f.Importance,
			Description:  f.Description,
			Dominant:     i < r.dominant,
			DisplayWidth: width,
		})
	}
	return out
}

var _ domsvc.ImportanceRanker = (*Ranker)(nil)
