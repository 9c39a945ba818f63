package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"arina/internal/domain/models"
	"arina/internal/domain/repository"
)

// MemoryAnalysisStore is an in-memory AnalysisStore used in tests and as a
// fallback when no ClickHouse endpoint is configured.
type MemoryAnalysisStore struct {
	mu   sync.RWMutex
	recs map[string]*models.AnalysisRecord
}

// NewMemoryAnalysisStore creates an empty in-memory store.
func NewMemoryAnalysisStore() repository.AnalysisStore {
	return &MemoryAnalysisStore{recs: make(map[string]*models.AnalysisRecord)}
}

func (s *MemoryAnalysisStore) Init(ctx context.Context) error { return nil }

func (s *MemoryAnalysisStore) Save(ctx context.Context, rec *models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.recs[rec.ID] = &cp
	return nil
}

func (s *MemoryAnalysisStore) SaveBatch(ctx context.Context, recs []*models.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		if rec == nil || rec.ID == "" {
			continue
		}
		cp := *rec
		s.recs[rec.ID] = &cp
	}
	return nil
}

func (s *MemoryAnalysisStore) List(ctx context.Context, userID string, typ models.AnalysisType, from, to time.Time, limit int) ([]*models.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.AnalysisRecord
	for _, rec := range s.recs {
		if rec.UserID != userID {
			continue
		}
		if typ != "" && rec.Type != typ {
			continue
		}
		if rec.CreatedAt.Before(from) || rec.CreatedAt.After(to) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryAnalysisStore) Get(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryAnalysisStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

func (s *MemoryAnalysisStore) Health(ctx context.Context) error { return nil }

func (s *MemoryAnalysisStore) Close() error { return nil }
