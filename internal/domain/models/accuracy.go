package models

// MetricID identifies one accuracy statistic. The set is closed.
type MetricID string

const (
	MetricMAE               MetricID = "mae"
	MetricMAPE              MetricID = "mape"
	MetricRMSE              MetricID = "rmse"
	MetricDirectionAccuracy MetricID = "direction_accuracy"
)

// Metrics lists every metric id in display order.
var Metrics = []MetricID{MetricMAE, MetricMAPE, MetricRMSE, MetricDirectionAccuracy}

// Valid reports whether m belongs to the closed metric set.
func (m MetricID) Valid() bool {
	switch m {
	case MetricMAE, MetricMAPE, MetricRMSE, MetricDirectionAccuracy:
		return true
	default:
		return false
	}
}

// Tier is the coarse quality bucket a grade falls into.
type Tier string

const (
	TierGood Tier = "good"
	TierFair Tier = "fair"
	TierPoor Tier = "poor"
	TierNone Tier = "none"
)

// NoGradeLabel is the label carried by the NoGrade sentinel.
const NoGradeLabel = "no grade"

// MetricGrade is the qualitative grade for one metric value.
type MetricGrade struct {
	Metric MetricID `json:"metric"`
	Grade  string   `json:"grade"`
	Tier   Tier     `json:"tier"`
}

// NoGrade returns the sentinel for an absent value.
func NoGrade(m MetricID) MetricGrade {
	return MetricGrade{Metric: m, Grade: NoGradeLabel, Tier: TierNone}
}

// IsNoGrade reports whether g is the absent-value sentinel.
func (g MetricGrade) IsNoGrade() bool { return g.Tier == TierNone }

// AccuracyMetrics are the raw error statistics; any of them may be absent.
type AccuracyMetrics struct {
	MAE               *float64 `json:"mae"`
	MAPE              *float64 `json:"mape"`
	RMSE              *float64 `json:"rmse"`
	DirectionAccuracy *float64 `json:"direction_accuracy"`
}

// Value returns the raw value for m, or nil.
func (a AccuracyMetrics) Value(m MetricID) *float64 {
	switch m {
	case MetricMAE:
		return a.MAE
	case MetricMAPE:
		return a.MAPE
	case MetricRMSE:
		return a.RMSE
	case MetricDirectionAccuracy:
		return a.DirectionAccuracy
	default:
		return nil
	}
}

// CorrectionInfo describes the bias correction applied to forward predictions.
type CorrectionInfo struct {
	IsCorrected bool    `json:"is_corrected"`
	Factor      float64 `json:"factor"`
	DataCount   int     `json:"data_count"`
	AvgErrorPct float64 `json:"avg_error_pct"`
}
