package analytics

import (
	"fmt"

	"StockLens/internal/domain/models"
)

// Direction tells which way a metric improves.
type Direction string

const (
	// LowerIsBetter: bands are ascending upper bounds, the first bound strictly
	// above the value wins.
	LowerIsBetter Direction = "lower_is_better"
	// HigherIsBetter: bands are descending lower bounds, the first bound the
	// value meets or exceeds wins.
	HigherIsBetter Direction = "higher_is_better"
)

// Band is one row of a threshold table.
type Band struct {
	Bound float64
	Label string
	Tier  models.Tier
}

// ThresholdTable is the ordered grading table of one metric. Otherwise is the
// final, unbounded band.
type ThresholdTable struct {
	Direction Direction
	Bands     []Band
	Otherwise Band
}

// GradingPolicy maps every metric to its threshold table.
type GradingPolicy map[models.MetricID]ThresholdTable

const (
	labelVeryAccurate     = "very accurate"
	labelGood             = "good"
	labelNeedsImprovement = "needs improvement"
	labelExcellent        = "excellent"
	labelFair             = "fair"
	labelPoor             = "poor"
)

func costTable(good, fair float64) ThresholdTable {
	return ThresholdTable{
		Direction: LowerIsBetter,
		Bands: []Band{
			{Bound: good, Label: labelVeryAccurate, Tier: models.TierGood},
			{Bound: fair, Label: labelGood, Tier: models.TierFair},
		},
		Otherwise: Band{Label: labelNeedsImprovement, Tier: models.TierPoor},
	}
}

// DefaultPolicy returns the reference thresholds.
func DefaultPolicy() GradingPolicy {
	return GradingPolicy{
		models.MetricMAE:  costTable(5, 15),
		models.MetricMAPE: costTable(5, 10),
		models.MetricRMSE: costTable(8, 20),
		models.MetricDirectionAccuracy: {
			Direction: HigherIsBetter,
			Bands: []Band{
				{Bound: 60, Label: labelExcellent, Tier: models.TierGood},
				{Bound: 50, Label: labelFair, Tier: models.TierFair},
			},
			Otherwise: Band{Label: labelPoor, Tier: models.TierPoor},
		},
	}
}

// Clone returns a deep copy so callers can override tables without touching p.
func (p GradingPolicy) Clone() GradingPolicy {
	out := make(GradingPolicy, len(p))
	for k, t := range p {
		bands := make([]Band, len(t.Bands))
		copy(bands, t.Bands)
		t.Bands = bands
		out[k] = t
	}
	return out
}

// Validate checks that every metric has a table and that bounds are ordered
// the way their direction requires.
func (p GradingPolicy) Validate() error {
	for _, m := range models.Metrics {
		t, ok := p[m]
		if !ok {
			return fmt.Errorf("grading policy: no table for %s", m)
		}
		if err := t.validate(); err != nil {
			return fmt.Errorf("grading policy %s: %w", m, err)
		}
	}
	for m := range p {
		if !m.Valid() {
			return fmt.Errorf("grading policy: unknown metric %q", m)
		}
	}
	return nil
}

func (t ThresholdTable) validate() error {
	if t.Direction != LowerIsBetter && t.Direction != HigherIsBetter {
		return fmt.Errorf("direction must be %q or %q, got %q", LowerIsBetter, HigherIsBetter, t.Direction)
	}
	if t.Otherwise.Label == "" {
		return fmt.Errorf("otherwise label is required")
	}
	for i, b := range t.Bands {
		if b.Label == "" {
			return fmt.Errorf("band %d: label is required", i)
		}
		if i == 0 {
			continue
		}
		prev := t.Bands[i-1].Bound
		if t.Direction == LowerIsBetter && b.Bound <= prev {
			return fmt.Errorf("band %d: bound %v must be greater than %v", i, b.Bound, prev)
		}
		if t.Direction == HigherIsBetter && b.Bound >= prev {
			return fmt.Errorf("band %d: bound %v must be less than %v", i, b.Bound, prev)
		}
	}
	return nil
}

// match returns the band value falls into.
func (t ThresholdTable) match(value float64) Band {
	for _, b := range t.Bands {
		switch t.Direction {
		case LowerIsBetter:
			if value < b.Bound {
				return b
			}
		case HigherIsBetter:
			if value >= b.Bound {
				return b
			}
		}
	}
	return t.Otherwise
}
