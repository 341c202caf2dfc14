package models

import "time"

// Dashboard is the derived view for one ticker and one fetch cycle.
// Note: no transport (json/http) concerns here beyond field tags.
type Dashboard struct {
	Ticker     string            `json:"ticker"`
	Seq        uint64            `json:"seq"`
	Timestamp  time.Time         `json:"timestamp"`
	Chart      []MergedPoint     `json:"chart"`
	Grades     []MetricGrade     `json:"grades"`
	Importance []ImportanceEntry `json:"importance"`
	Correction *CorrectionInfo   `json:"correction,omitempty"`
	Accuracy   *AccuracySummary  `json:"accuracy,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// AccuracySummary carries the counts that accompany graded metrics.
type AccuracySummary struct {
	TotalPredictions int             `json:"total_predictions"`
	EvaluatedCount   int             `json:"evaluated_count"`
	Metrics          AccuracyMetrics `json:"metrics"`
}

// ForecastEvent is the message consumed from the forecast topic.
type ForecastEvent struct {
	Ticker            string              `json:"ticker"`
	Seq               uint64              `json:"seq"`
	Prices            []PricePoint        `json:"prices"`
	History           []PredictionRecord  `json:"history"`
	Predictions       []ForwardPrediction `json:"predictions"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	Metrics           AccuracyMetrics     `json:"metrics"`
}

// DerivedEvent is published after a forecast event has been reconciled.
type DerivedEvent struct {
	Ticker     string            `json:"ticker"`
	Seq        uint64            `json:"seq"`
	Chart      []MergedPoint     `json:"chart"`
	Grades     []MetricGrade     `json:"grades"`
	Importance []ImportanceEntry `json:"importance"`
	DerivedAt  time.Time         `json:"derived_at"`
}
