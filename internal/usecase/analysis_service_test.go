package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"arina/internal/analysis"
	"arina/internal/analysis/feasibility"
	"arina/internal/domain/models"
	"arina/internal/repository"
	"arina/pkg/cache"
	"arina/pkg/logger"
)

type stubMetrics struct {
	mu       sync.Mutex
	analyses int
	errors   int
}

func (m *stubMetrics) RecordAnalysis(backend string, typ models.AnalysisType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses++
}

func (m *stubMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors++
}

func (m *stubMetrics) RecordObjective(typ string, value float64) {}
func (m *stubMetrics) RecordLatency(op string, seconds float64)  {}

func newTestService(t *testing.T, backend string) (*AnalysisService, *stubMetrics) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	metrics := &stubMetrics{}
	store := repository.NewMemoryAnalysisStore()
	rec := NewRecorder(nil, store, metrics, backend)
	engines := NewCalculationEngines(feasibility.DefaultPolicy())
	c := cache.NewMemoryCache()
	return NewAnalysisService(engines, rec, store, c, log), metrics
}

func validFeasibilityInput() models.FeasibilityInput {
	return models.FeasibilityInput{
		BusinessName: "Catfish Pond",
		InvestmentCosts: []models.CostItem{
			{ID: "1", Name: "Pond construction", Quantity: 1, Price: 20_000_000, Amount: 20_000_000},
		},
		OperationalCosts: []models.CostItem{
			{ID: "2", Name: "Feed", Quantity: 100, Price: 15_000, Amount: 1_500_000},
		},
		ProductionCostPerUnit: 7_000,
		MonthlySalesVolume:    1_000,
		Markup:                50,
		ProjectLifespan:       5,
	}
}

func validForecastInput() models.ForecastInput {
	return models.ForecastInput{
		ProductName: "Chili",
		HistoricalDemand: []models.HistoricalDemand{
			{ID: "1", Period: "Month 1", Demand: 100},
			{ID: "2", Period: "Month 2", Demand: 110},
			{ID: "3", Period: "Month 3", Demand: 120},
			{ID: "4", Period: "Month 4", Demand: 130},
		},
		Method:       models.MethodSMA,
		PeriodLength: 3,
	}
}

func TestAnalyzeFeasibilitySaves(t *testing.T) {
	svc, metrics := newTestService(t, "direct")
	ctx := context.Background()

	result, outcome, err := svc.AnalyzeFeasibility(ctx, "user-1", validFeasibilityInput(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Saved || outcome.AnalysisID == "" {
		t.Fatalf("expected saved outcome with id, got %+v", outcome)
	}
	if result.UnitCost <= 0 {
		t.Errorf("expected computed result, got %+v", result)
	}

	rec, err := svc.Get(ctx, "user-1", outcome.AnalysisID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("saved record not found")
	}
	if rec.Type != models.TypeBusinessFeasibility {
		t.Errorf("type = %s, want %s", rec.Type, models.TypeBusinessFeasibility)
	}
	if metrics.analyses != 1 {
		t.Errorf("analyses metric = %d, want 1", metrics.analyses)
	}
}

func TestAnalyzeFeasibilitySkipsSave(t *testing.T) {
	svc, _ := newTestService(t, "direct")
	ctx := context.Background()

	_, outcome, err := svc.AnalyzeFeasibility(ctx, "user-1", validFeasibilityInput(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Saved || outcome.AnalysisID != "" {
		t.Fatalf("expected unsaved outcome, got %+v", outcome)
	}

	now := time.Now().UTC()
	recs, err := svc.History(ctx, "user-1", "", now.Add(-time.Hour), now.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty history, got %d records", len(recs))
	}
}

func TestValidationErrorDoesNotSave(t *testing.T) {
	svc, metrics := newTestService(t, "direct")
	ctx := context.Background()

	input := validFeasibilityInput()
	input.MonthlySalesVolume = 0
	_, _, err := svc.AnalyzeFeasibility(ctx, "user-1", input, true)

	var vErr *analysis.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if metrics.analyses != 0 {
		t.Errorf("nothing should be recorded on validation failure")
	}
}

func TestSaveFailureDoesNotFailRequest(t *testing.T) {
	// An unknown backend makes every record attempt fail.
	svc, metrics := newTestService(t, "bogus")
	ctx := context.Background()

	result, outcome, err := svc.AnalyzeFeasibility(ctx, "user-1", validFeasibilityInput(), true)
	if err != nil {
		t.Fatalf("computation must survive a failed save, got %v", err)
	}
	if outcome.Saved {
		t.Error("outcome should report the failed save")
	}
	if outcome.Error == "" {
		t.Error("outcome should carry the save error")
	}
	if result.UnitCost <= 0 {
		t.Errorf("result should still be computed, got %+v", result)
	}
	if metrics.errors != 1 {
		t.Errorf("errors metric = %d, want 1", metrics.errors)
	}
}

func TestHistoryFiltersAndOwnership(t *testing.T) {
	svc, _ := newTestService(t, "direct")
	ctx := context.Background()

	_, o1, err := svc.AnalyzeFeasibility(ctx, "user-1", validFeasibilityInput(), true)
	if err != nil {
		t.Fatalf("feasibility: %v", err)
	}
	if _, _, err := svc.GenerateForecast(ctx, "user-1", validForecastInput(), true); err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if _, _, err := svc.GenerateForecast(ctx, "user-2", validForecastInput(), true); err != nil {
		t.Fatalf("forecast user-2: %v", err)
	}

	now := time.Now().UTC()
	from, to := now.Add(-time.Hour), now.Add(time.Hour)

	all, err := svc.History(ctx, "user-1", "", from, to, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("history len = %d, want 2", len(all))
	}

	forecasts, err := svc.History(ctx, "user-1", models.TypeDemandForecast, from, to, 10)
	if err != nil {
		t.Fatalf("history typed: %v", err)
	}
	if len(forecasts) != 1 || forecasts[0].Type != models.TypeDemandForecast {
		t.Fatalf("typed history = %+v", forecasts)
	}

	// Another user's record is invisible.
	rec, err := svc.Get(ctx, "user-2", o1.AnalysisID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Error("user-2 must not see user-1's record")
	}
}

func TestDeleteRemovesAndInvalidates(t *testing.T) {
	svc, _ := newTestService(t, "direct")
	ctx := context.Background()

	_, outcome, err := svc.AnalyzeFeasibility(ctx, "user-1", validFeasibilityInput(), true)
	if err != nil {
		t.Fatalf("feasibility: %v", err)
	}

	now := time.Now().UTC()
	from, to := now.Add(-time.Hour), now.Add(time.Hour)

	// Prime the cache, then delete and expect a fresh read.
	if _, err := svc.History(ctx, "user-1", "", from, to, 10); err != nil {
		t.Fatalf("history: %v", err)
	}
	if err := svc.Delete(ctx, "user-1", outcome.AnalysisID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	recs, err := svc.History(ctx, "user-1", "", from, to, 10)
	if err != nil {
		t.Fatalf("history after delete: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty history after delete, got %d", len(recs))
	}

	rec, err := svc.Get(ctx, "user-1", outcome.AnalysisID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if rec != nil {
		t.Error("record should be gone")
	}
}

func TestDeleteIgnoresForeignRecord(t *testing.T) {
	svc, _ := newTestService(t, "direct")
	ctx := context.Background()

	_, outcome, err := svc.AnalyzeFeasibility(ctx, "user-1", validFeasibilityInput(), true)
	if err != nil {
		t.Fatalf("feasibility: %v", err)
	}
	if err := svc.Delete(ctx, "user-2", outcome.AnalysisID); err != nil {
		t.Fatalf("foreign delete should be a no-op, got %v", err)
	}

	rec, err := svc.Get(ctx, "user-1", outcome.AnalysisID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Error("record must survive a foreign delete")
	}
}
