package analytics

import (
	"math"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
)

// Grader classifies accuracy statistics with an injected GradingPolicy.
type Grader struct {
	policy GradingPolicy
}

// NewGrader uses policy as-is; a nil policy means DefaultPolicy.
func NewGrader(policy GradingPolicy) *Grader {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Grader{policy: policy}
}

// Grade returns the grade for value, or NoGrade when the value is absent
// (nil or NaN) or the metric has no table.
func (g *Grader) Grade(metric models.MetricID, value *float64) models.MetricGrade {
	if value == nil || math.IsNaN(*value) {
		return models.NoGrade(metric)
	}
	table, ok := g.policy[metric]
	if !ok {
		return models.NoGrade(metric)
	}
	b := table.match(*value)
	return models.MetricGrade{Metric: metric, Grade: b.Label, Tier: b.Tier}
}

// GradeAll grades every metric in display order.
func (g *Grader) GradeAll(metrics models.AccuracyMetrics) []models.MetricGrade {
	out := make([]models.MetricGrade, 0, len(models.Metrics))
	for _, m := range models.Metrics {
		out = append(out, g.Grade(m, metrics.Value(m)))
	}
	return out
}

var _ domsvc.AccuracyGrader = (*Grader)(nil)
