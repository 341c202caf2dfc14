package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type DashboardRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,ticker"`
	// Zero leaves the choice to the configured defaults.
	Days  int `query:"days" json:"days" validate:"omitempty,gte=1,lte=365"`
	Ahead int `query:"ahead" json:"ahead" validate:"omitempty,gte=1,lte=30"`
	Limit int `query:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

type ChartRequest struct {
	Prices      []PricePoint        `json:"prices"`
	History     []PredictionRecord  `json:"history"`
	Predictions []ForwardPrediction `json:"predictions"`
}

type GradesRequest struct {
	Metrics AccuracyMetrics `json:"metrics"`
}

type ImportanceRequest struct {
	FeatureImportance []FeatureImportance `json:"feature_importance" validate:"dive"`
}
