package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency and reuse.
// Engine-level validation still runs after binding; the tags here only reject
// obviously malformed payloads early.

// Save is a pointer so an explicit false survives defaulting; omitted means true.

type FeasibilityRequest struct {
	UserID string           `json:"userId" validate:"required"`
	Input  FeasibilityInput `json:"input" validate:"required"`
	Save   *bool            `json:"save" default:"true"`
}

type ForecastRequest struct {
	UserID string        `json:"userId" validate:"required"`
	Input  ForecastInput `json:"input" validate:"required"`
	Save   *bool         `json:"save" default:"true"`
}

type OptimizationRequest struct {
	UserID string            `json:"userId" validate:"required"`
	Input  OptimizationInput `json:"input" validate:"required"`
	Save   *bool             `json:"save" default:"true"`
}

type HistoryRequest struct {
	UserID string `query:"userId" validate:"required"`
	Type   string `query:"type" validate:"omitempty,oneof=business_feasibility demand_forecast optimization"`
	From   string `query:"from"`
	To     string `query:"to"`
	Limit  int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

type GenerateRecommendationsRequest struct {
	UserID string `json:"userId" validate:"required"`
	Season string `json:"season" validate:"omitempty,oneof=spring summer fall winter"`
}
