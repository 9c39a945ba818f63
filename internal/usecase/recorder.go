package usecase

import (
	"context"
	"fmt"
	"time"

	"arina/internal/domain/models"
	drepo "arina/internal/domain/repository"
)

// Recorder routes computed analysis records to the configured persistence
// backend: "direct" writes straight to storage, "kafka" publishes for the
// consumer to persist.
type Recorder struct {
	pub     drepo.Publisher
	store   drepo.AnalysisStore
	metrics drepo.Metrics
	backend string
}

// NewRecorder creates a Recorder instance.
func NewRecorder(pub drepo.Publisher, store drepo.AnalysisStore, metrics drepo.Metrics, backend string) *Recorder {
	return &Recorder{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Record persists a single analysis record via the configured backend.
func (r *Recorder) Record(ctx context.Context, rec *models.AnalysisRecord) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}

	start := time.Now()
	var err error

	switch r.backend {
	case "kafka":
		err = r.pub.Publish(ctx, rec)
	case "direct":
		err = r.store.Save(ctx, rec)
	default:
		err = fmt.Errorf("unknown backend: %s", r.backend)
	}

	if err != nil {
		r.metrics.RecordError("record")
		return fmt.Errorf("record analysis: %w", err)
	}

	r.metrics.RecordAnalysis(r.backend, rec.Type)
	if res, ok := rec.Data.Results.(models.OptimizationResult); ok && res.Feasible {
		r.metrics.RecordObjective(string(res.Mode), res.ObjectiveValue)
	}
	r.metrics.RecordLatency("record", time.Since(start).Seconds())

	return nil
}

// RecordBatch persists multiple records in one backend call.
func (r *Recorder) RecordBatch(ctx context.Context, recs []*models.AnalysisRecord) error {
	if len(recs) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch r.backend {
	case "kafka":
		err = r.pub.PublishBatch(ctx, recs)
	case "direct":
		err = r.store.SaveBatch(ctx, recs)
	default:
		err = fmt.Errorf("unknown backend: %s", r.backend)
	}

	if err != nil {
		r.metrics.RecordError("record_batch")
		return fmt.Errorf("record batch: %w", err)
	}

	for _, rec := range recs {
		r.metrics.RecordAnalysis(r.backend, rec.Type)
	}
	r.metrics.RecordLatency("record_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (r *Recorder) Close() {
	if r.pub != nil {
		_ = r.pub.Close()
	}
	if r.store != nil {
		_ = r.store.Close()
	}
}
