package models

import "errors"

// ErrInvalidSeriesElement marks a price or prediction element missing a required field.
var ErrInvalidSeriesElement = errors.New("invalid series element")

// PricePoint is one trading day's close. Close is required; nil is a contract violation.
type PricePoint struct {
	Date  Date     `json:"date"`
	Close *float64 `json:"close"`
}

// PredictionRecord is a historical forecast. ActualPrice stays nil until the
// target date has passed and an actual close has been reconciled.
type PredictionRecord struct {
	TargetDate     Date     `json:"target_date"`
	PredictedPrice float64  `json:"predicted_price"`
	ActualPrice    *float64 `json:"actual_price"`
}

// Evaluated reports whether the record has an actual price to compare against.
func (r PredictionRecord) Evaluated() bool { return r.ActualPrice != nil }

// ForwardPrediction is a forecast for a date after the last known close.
type ForwardPrediction struct {
	Date           Date     `json:"date"`
	PredictedPrice float64  `json:"predicted_price"`
	CorrectedPrice *float64 `json:"corrected_price,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"` // [0,1]
}

// Value is the price a chart should draw: corrected when present, raw otherwise.
func (p ForwardPrediction) Value() float64 {
	if p.CorrectedPrice != nil {
		return *p.CorrectedPrice
	}
	return p.PredictedPrice
}

// MergedPoint is one chart-ready point. At least one of Price/Predicted is set.
type MergedPoint struct {
	Date      Date     `json:"date"`
	Price     *float64 `json:"price,omitempty"`
	Predicted *float64 `json:"predicted,omitempty"`
}

// Float returns a pointer to v. Handy for optional fields.
func Float(v float64) *float64 { return &v }
