package models

import "time"

// RecommendationKind classifies what a recommendation item is about.
type RecommendationKind string

const (
	RecommendationBusiness RecommendationKind = "business"
	RecommendationMarket   RecommendationKind = "market"
	RecommendationResource RecommendationKind = "resource"
)

// RecommendationItem is one derived suggestion. Confidence is 0..1 and comes
// from the metrics of the underlying analysis, not from a model.
type RecommendationItem struct {
	ID          string             `json:"id"`
	SetID       string             `json:"set_id"`
	Kind        RecommendationKind `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Confidence  float64            `json:"confidence"`
	Source      string             `json:"source"`
	AnalysisID  string             `json:"analysis_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// RecommendationSet groups the items generated from one pass over a user's
// analysis history.
type RecommendationSet struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	Summary   string               `json:"summary"`
	Items     []RecommendationItem `json:"items"`
	CreatedAt time.Time            `json:"created_at"`
}
