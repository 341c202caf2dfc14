package models

// FeatureImportance is one model input's contribution as reported upstream.
type FeatureImportance struct {
	Feature     string  `json:"feature"`
	Importance  float64 `json:"importance" validate:"gte=0,lte=1"`
	Description string  `json:"description"`
}

// ImportanceEntry is a ranked feature tagged for display.
// Importance is never altered; only DisplayWidth is clamped.
type ImportanceEntry struct {
	Feature      string  `json:"feature"`
	Importance   float64 `json:"importance"`
	Description  string  `json:"description"`
	Dominant     bool    `json:"dominant"`
	DisplayWidth float64 `json:"display_width"`
}
