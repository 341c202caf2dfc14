package models

// Shapes returned by the backend prediction API. Only fields the
// reconciliation core reads are typed strictly.

type OHLCV struct {
	Date   Date     `json:"date"`
	Open   float64  `json:"open"`
	High   float64  `json:"high"`
	Low    float64  `json:"low"`
	Close  *float64 `json:"close"`
	Volume float64  `json:"volume"`
}

type PriceQueryResult struct {
	Ticker   string  `json:"ticker"`
	Period   string  `json:"period"`
	Interval string  `json:"interval"`
	Count    int     `json:"count"`
	Prices   []OHLCV `json:"prices"`
}

type PredictionQueryResult struct {
	Ticker            string              `json:"ticker,omitempty"`
	CurrentPrice      float64             `json:"current_price,omitempty"`
	Predictions       []ForwardPrediction `json:"predictions"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	CorrectionInfo    *CorrectionInfo     `json:"correction_info,omitempty"`
}

type HistoryItem struct {
	TargetDate     Date     `json:"target_date"`
	PredictedPrice float64  `json:"predicted_price"`
	ActualPrice    *float64 `json:"actual_price"`
	ErrorPercent   *float64 `json:"error_percent,omitempty"`
}

type PredictionHistoryResult struct {
	Ticker         string        `json:"ticker,omitempty"`
	TotalCount     int           `json:"total_count,omitempty"`
	EvaluatedCount int           `json:"evaluated_count,omitempty"`
	History        []HistoryItem `json:"history"`
}

type AccuracyQueryResult struct {
	Ticker           string          `json:"ticker,omitempty"`
	TotalPredictions int             `json:"total_predictions"`
	EvaluatedCount   int             `json:"evaluated_count"`
	Metrics          AccuracyMetrics `json:"metrics"`
	CorrectionInfo   *CorrectionInfo `json:"correction_info"`
}

// ClosePoints converts upstream OHLCV rows to price points.
func (r PriceQueryResult) ClosePoints() []PricePoint {
	out := make([]PricePoint, 0, len(r.Prices))
	for _, p := range r.Prices {
		out = append(out, PricePoint{Date: p.Date, Close: p.Close})
	}
	return out
}

// Records converts history rows to prediction records.
func (r PredictionHistoryResult) Records() []PredictionRecord {
	out := make([]PredictionRecord, 0, len(r.History))
	for _, h := range r.History {
		out = append(out, PredictionRecord{
			TargetDate:     h.TargetDate,
			PredictedPrice: h.PredictedPrice,
			ActualPrice:    h.ActualPrice,
		})
	}
	return out
}
