package repository

import (
	"context"
	"time"

	"arina/internal/domain/models"
)

// AnalysisStore persists computed analysis records. The engines never touch
// it; only the recording path after a result is computed does.
type AnalysisStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Save(ctx context.Context, rec *models.AnalysisRecord) error
	SaveBatch(ctx context.Context, recs []*models.AnalysisRecord) error
	List(ctx context.Context, userID string, typ models.AnalysisType, from, to time.Time, limit int) ([]*models.AnalysisRecord, error)
	Get(ctx context.Context, id string) (*models.AnalysisRecord, error)
	Delete(ctx context.Context, id string) error
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher hands analysis records to the asynchronous persistence backend.
type Publisher interface {
	Publish(ctx context.Context, rec *models.AnalysisRecord) error
	PublishBatch(ctx context.Context, recs []*models.AnalysisRecord) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordAnalysis(backend string, typ models.AnalysisType)
	RecordError(kind string)
	RecordObjective(typ string, value float64)
	RecordLatency(op string, seconds float64)
}
