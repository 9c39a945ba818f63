package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arina/internal/domain/models"
	drepo "arina/internal/domain/repository"
	"arina/pkg/cache"
	"arina/pkg/logger"
)

const recommendationLookback = 90 * 24 * time.Hour

// RecommendationService derives advisory suggestions from a user's saved
// analyses. Confidence scores come from the stored metrics (ROI, MAPE,
// objective feasibility), never from guesswork.
type RecommendationService struct {
	store drepo.AnalysisStore
	cache cache.Service
	ttl   time.Duration
	log   *logger.Logger
}

// NewRecommendationService creates a RecommendationService instance.
func NewRecommendationService(store drepo.AnalysisStore, c cache.Service, ttl time.Duration, log *logger.Logger) *RecommendationService {
	return &RecommendationService{store: store, cache: c, ttl: ttl, log: log}
}

// Generate scans the user's recent analyses and produces a fresh
// recommendation set. The set is cached for the configured TTL.
func (s *RecommendationService) Generate(ctx context.Context, userID string) (*models.RecommendationSet, error) {
	now := time.Now().UTC()
	recs, err := s.store.List(ctx, userID, "", now.Add(-recommendationLookback), now, 100)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	set := &models.RecommendationSet{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
	}
	for _, rec := range recs {
		items := s.itemsFromRecord(set.ID, rec)
		set.Items = append(set.Items, items...)
	}
	set.Summary = summarizeSet(set)

	if s.cache != nil {
		if b, err := json.Marshal(set); err == nil {
			if err := s.cache.Set(ctx, recommendationKey(userID), string(b), s.ttl); err != nil {
				s.log.Debug("recommendation cache set failed", logger.Error(err))
			}
		}
	}
	return set, nil
}

// Latest returns the most recently generated set for the user, or nil when
// none is cached.
func (s *RecommendationService) Latest(ctx context.Context, userID string) (*models.RecommendationSet, error) {
	if s.cache == nil {
		return nil, nil
	}
	var raw string
	if err := s.cache.Get(ctx, recommendationKey(userID), &raw); err != nil {
		if err == cache.ErrCacheMiss {
			return nil, nil
		}
		return nil, err
	}
	var set models.RecommendationSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, fmt.Errorf("decode cached recommendations: %w", err)
	}
	return &set, nil
}

func (s *RecommendationService) itemsFromRecord(setID string, rec *models.AnalysisRecord) []models.RecommendationItem {
	switch rec.Type {
	case models.TypeBusinessFeasibility:
		var res models.FeasibilityResult
		if err := decodeResults(rec, &res); err != nil {
			return nil
		}
		return feasibilityItems(setID, rec, res)
	case models.TypeDemandForecast:
		var res models.ForecastResult
		if err := decodeResults(rec, &res); err != nil {
			return nil
		}
		return forecastItems(setID, rec, res)
	case models.TypeOptimization:
		var res models.OptimizationResult
		if err := decodeResults(rec, &res); err != nil {
			return nil
		}
		return optimizationItems(setID, rec, res)
	}
	return nil
}

func feasibilityItems(setID string, rec *models.AnalysisRecord, res models.FeasibilityResult) []models.RecommendationItem {
	item := models.RecommendationItem{
		ID:         uuid.NewString(),
		SetID:      setID,
		Kind:       models.RecommendationBusiness,
		Source:     string(rec.Type),
		AnalysisID: rec.ID,
		CreatedAt:  rec.CreatedAt,
	}
	if res.Feasible {
		item.Title = "Viable business plan"
		item.Description = fmt.Sprintf("The analyzed plan returned %.1f%% annual ROI with payback in %.1f months. Consider proceeding with the planned investment.", res.ROI, res.PaybackPeriod)
		item.Confidence = clamp01(res.ROI / 100)
	} else {
		item.Title = "Plan needs rework"
		item.Description = fmt.Sprintf("The analyzed plan returned %.1f%% annual ROI, below a viable threshold. Revisit cost structure or pricing before committing capital.", res.ROI)
		item.Confidence = 0.7
	}
	return []models.RecommendationItem{item}
}

func forecastItems(setID string, rec *models.AnalysisRecord, res models.ForecastResult) []models.RecommendationItem {
	if len(res.Forecasted) == 0 {
		return nil
	}
	next := res.Forecasted[len(res.Forecasted)-1]
	var lastActual float64
	if n := len(res.Chart.Historical); n > 0 {
		lastActual = res.Chart.Historical[n-1].Value
	}

	item := models.RecommendationItem{
		ID:         uuid.NewString(),
		SetID:      setID,
		Kind:       models.RecommendationMarket,
		Source:     string(rec.Type),
		AnalysisID: rec.ID,
		CreatedAt:  rec.CreatedAt,
		Confidence: clamp01(1 - res.Accuracy.MAPE/100),
	}
	switch {
	case next.Forecast > lastActual:
		item.Title = fmt.Sprintf("Rising demand for %s", res.ProductName)
		item.Description = fmt.Sprintf("Projected demand for %s is %.0f units, up from %.0f last period. Consider scaling production.", next.Period, next.Forecast, lastActual)
	case next.Forecast < lastActual:
		item.Title = fmt.Sprintf("Softening demand for %s", res.ProductName)
		item.Description = fmt.Sprintf("Projected demand for %s is %.0f units, down from %.0f last period. Avoid oversupply.", next.Period, next.Forecast, lastActual)
	default:
		item.Title = fmt.Sprintf("Stable demand for %s", res.ProductName)
		item.Description = fmt.Sprintf("Projected demand for %s holds at %.0f units. Maintain current production levels.", next.Period, next.Forecast)
	}
	return []models.RecommendationItem{item}
}

func optimizationItems(setID string, rec *models.AnalysisRecord, res models.OptimizationResult) []models.RecommendationItem {
	item := models.RecommendationItem{
		ID:         uuid.NewString(),
		SetID:      setID,
		Kind:       models.RecommendationResource,
		Source:     string(rec.Type),
		AnalysisID: rec.ID,
		CreatedAt:  rec.CreatedAt,
	}
	if !res.Feasible {
		item.Title = "Conflicting resource constraints"
		item.Description = fmt.Sprintf("The plan %q has no allocation satisfying all constraints. Relax the tightest limits and re-run.", res.Name)
		item.Confidence = 0.9
		return []models.RecommendationItem{item}
	}

	// Surface the largest allocation as the headline.
	var top models.ResolvedVariable
	for _, v := range res.Variables {
		if v.Value > top.Value {
			top = v
		}
	}
	item.Title = "Optimal resource allocation found"
	item.Description = fmt.Sprintf("Best allocation for %q puts the most weight on %s (%.2f). Objective value: %.2f.", res.Name, top.Name, top.Value, res.ObjectiveValue)
	item.Confidence = 0.8
	return []models.RecommendationItem{item}
}

func summarizeSet(set *models.RecommendationSet) string {
	if len(set.Items) == 0 {
		return "No saved analyses to draw on yet. Run a feasibility, forecast or optimization analysis first."
	}
	counts := map[models.RecommendationKind]int{}
	for _, it := range set.Items {
		counts[it.Kind]++
	}
	return fmt.Sprintf("%d recommendations: %d business, %d market, %d resource.",
		len(set.Items),
		counts[models.RecommendationBusiness],
		counts[models.RecommendationMarket],
		counts[models.RecommendationResource])
}

func decodeResults(rec *models.AnalysisRecord, dest interface{}) error {
	b, err := json.Marshal(rec.Data.Results)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func recommendationKey(userID string) string {
	return "recommendations:" + userID
}
