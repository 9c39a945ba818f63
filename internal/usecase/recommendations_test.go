package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"arina/internal/domain/models"
	"arina/pkg/cache"
	"arina/pkg/logger"
)

func newTestRecommendations(t *testing.T) (*RecommendationService, *AnalysisService) {
	t.Helper()
	svc, _ := newTestService(t, "direct")
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	recSvc := NewRecommendationService(svc.store, cache.NewMemoryCache(), time.Hour, log)
	return recSvc, svc
}

func TestGenerateRecommendationsEmptyHistory(t *testing.T) {
	recSvc, _ := newTestRecommendations(t)

	set, err := recSvc.Generate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(set.Items) != 0 {
		t.Errorf("expected no items, got %d", len(set.Items))
	}
	if !strings.Contains(set.Summary, "No saved analyses") {
		t.Errorf("summary = %q", set.Summary)
	}
}

func TestGenerateRecommendationsFromAnalyses(t *testing.T) {
	recSvc, svc := newTestRecommendations(t)
	ctx := context.Background()

	if _, _, err := svc.AnalyzeFeasibility(ctx, "user-1", validFeasibilityInput(), true); err != nil {
		t.Fatalf("feasibility: %v", err)
	}
	if _, _, err := svc.GenerateForecast(ctx, "user-1", validForecastInput(), true); err != nil {
		t.Fatalf("forecast: %v", err)
	}

	set, err := recSvc.Generate(ctx, "user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(set.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(set.Items))
	}

	kinds := map[models.RecommendationKind]bool{}
	for _, it := range set.Items {
		kinds[it.Kind] = true
		if it.Confidence < 0 || it.Confidence > 1 {
			t.Errorf("confidence %f out of range", it.Confidence)
		}
		if it.AnalysisID == "" {
			t.Error("item should point back at its analysis")
		}
	}
	if !kinds[models.RecommendationBusiness] || !kinds[models.RecommendationMarket] {
		t.Errorf("kinds = %+v, want business and market", kinds)
	}

	// The moving average lags the rising series, so the projection lands
	// below the last observed period.
	found := false
	for _, it := range set.Items {
		if it.Kind == models.RecommendationMarket && strings.Contains(it.Title, "Softening demand") {
			found = true
		}
	}
	if !found {
		t.Error("expected a softening demand recommendation")
	}
}

func TestLatestReturnsCachedSet(t *testing.T) {
	recSvc, svc := newTestRecommendations(t)
	ctx := context.Background()

	if _, _, err := svc.AnalyzeFeasibility(ctx, "user-1", validFeasibilityInput(), true); err != nil {
		t.Fatalf("feasibility: %v", err)
	}
	generated, err := recSvc.Generate(ctx, "user-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	latest, err := recSvc.Latest(ctx, "user-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.ID != generated.ID {
		t.Fatalf("latest = %+v, want set %s", latest, generated.ID)
	}

	none, err := recSvc.Latest(ctx, "user-2")
	if err != nil {
		t.Fatalf("latest for empty user: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil set for user without history, got %+v", none)
	}
}
