package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arina/internal/domain/models"
	drepo "arina/internal/domain/repository"
	"arina/internal/domain/service"
	"arina/pkg/cache"
	"arina/pkg/logger"
)

const (
	historyCacheTTL = 2 * time.Minute
	recordTimeout   = 5 * time.Second
)

// SaveOutcome reports what happened to the persistence side of an analysis
// request. Computation and persistence succeed or fail independently: a
// failed save never fails the request.
type SaveOutcome struct {
	AnalysisID string `json:"analysisId,omitempty"`
	Saved      bool   `json:"saved"`
	Error      string `json:"error,omitempty"`
}

// AnalysisService runs the calculation engines and records their results.
type AnalysisService struct {
	engines  service.Engines
	recorder *Recorder
	store    drepo.AnalysisStore
	cache    cache.Service
	log      *logger.Logger
}

// NewAnalysisService creates an AnalysisService instance.
func NewAnalysisService(engines service.Engines, recorder *Recorder, store drepo.AnalysisStore, c cache.Service, log *logger.Logger) *AnalysisService {
	return &AnalysisService{
		engines:  engines,
		recorder: recorder,
		store:    store,
		cache:    c,
		log:      log,
	}
}

// AnalyzeFeasibility runs the business feasibility engine and optionally
// records the result.
func (s *AnalysisService) AnalyzeFeasibility(ctx context.Context, userID string, input models.FeasibilityInput, save bool) (models.FeasibilityResult, SaveOutcome, error) {
	result, err := s.engines.AnalyzeFeasibility(input)
	if err != nil {
		return models.FeasibilityResult{}, SaveOutcome{}, err
	}
	outcome := s.record(ctx, userID, models.TypeBusinessFeasibility, input, result, save)
	return result, outcome, nil
}

// GenerateForecast runs the demand forecasting engine and optionally records
// the result.
func (s *AnalysisService) GenerateForecast(ctx context.Context, userID string, input models.ForecastInput, save bool) (models.ForecastResult, SaveOutcome, error) {
	result, err := s.engines.GenerateForecast(input)
	if err != nil {
		return models.ForecastResult{}, SaveOutcome{}, err
	}
	outcome := s.record(ctx, userID, models.TypeDemandForecast, input, result, save)
	return result, outcome, nil
}

// RunOptimization runs the optimization engine and optionally records the
// result. An infeasible program is a normal result and is recorded like any
// other.
func (s *AnalysisService) RunOptimization(ctx context.Context, userID string, input models.OptimizationInput, save bool) (models.OptimizationResult, SaveOutcome, error) {
	result, err := s.engines.RunOptimization(input)
	if err != nil {
		return models.OptimizationResult{}, SaveOutcome{}, err
	}
	outcome := s.record(ctx, userID, models.TypeOptimization, input, result, save)
	return result, outcome, nil
}

func (s *AnalysisService) record(ctx context.Context, userID string, typ models.AnalysisType, input, result interface{}, save bool) SaveOutcome {
	if !save {
		return SaveOutcome{Saved: false}
	}

	rec := &models.AnalysisRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Data:      models.AnalysisData{Input: input, Results: result},
		CreatedAt: time.Now().UTC(),
	}

	rctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	if err := s.recorder.Record(rctx, rec); err != nil {
		s.log.Warn("analysis save failed",
			logger.String("user_id", userID),
			logger.String("type", string(typ)),
			logger.Error(err))
		return SaveOutcome{Saved: false, Error: err.Error()}
	}

	s.invalidateHistory(rctx, userID)
	return SaveOutcome{AnalysisID: rec.ID, Saved: true}
}

// History lists a user's saved analyses, newest first. Results are cached
// briefly per query.
func (s *AnalysisService) History(ctx context.Context, userID string, typ models.AnalysisType, from, to time.Time, limit int) ([]*models.AnalysisRecord, error) {
	if typ != "" && !typ.Valid() {
		return nil, fmt.Errorf("unknown analysis type: %s", typ)
	}
	key := historyKey(userID, typ, from, to, limit)

	// Cached as a JSON string so memory and redis layers behave identically.
	if s.cache != nil {
		var cached string
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			var recs []*models.AnalysisRecord
			if err := json.Unmarshal([]byte(cached), &recs); err == nil {
				return recs, nil
			}
		}
	}

	recs, err := s.store.List(ctx, userID, typ, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	if s.cache != nil {
		if b, err := json.Marshal(recs); err == nil {
			if err := s.cache.Set(ctx, key, string(b), historyCacheTTL); err != nil {
				s.log.Debug("history cache set failed", logger.Error(err))
			}
		}
	}
	return recs, nil
}

// Get fetches one saved analysis owned by the user. Returns nil when the
// record does not exist or belongs to someone else.
func (s *AnalysisService) Get(ctx context.Context, userID, id string) (*models.AnalysisRecord, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	if rec == nil || rec.UserID != userID {
		return nil, nil
	}
	return rec, nil
}

// Delete removes one saved analysis owned by the user.
func (s *AnalysisService) Delete(ctx context.Context, userID, id string) error {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get analysis: %w", err)
	}
	if rec == nil || rec.UserID != userID {
		return nil
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	s.invalidateHistory(ctx, userID)
	return nil
}

// Health reports storage availability.
func (s *AnalysisService) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

func (s *AnalysisService) invalidateHistory(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "history:"+userID+":*"); err != nil {
		s.log.Debug("history cache invalidate failed", logger.Error(err))
	}
}

func historyKey(userID string, typ models.AnalysisType, from, to time.Time, limit int) string {
	return fmt.Sprintf("history:%s:%s:%d:%d:%d", userID, typ, from.Unix(), to.Unix(), limit)
}
