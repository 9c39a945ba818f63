package usecase

import (
	"context"
	"encoding/json"
	"time"

	"arina/internal/domain/models"
	domrepo "arina/internal/domain/repository"
	pkgkafka "arina/pkg/kafka"
)

// KafkaRecordsHandler consumes published analysis records and writes them to
// storage. It is the persistence half of the "kafka" backend.
type KafkaRecordsHandler struct {
	topic   string
	storage domrepo.AnalysisStore
	metrics domrepo.Metrics
}

func NewKafkaRecordsHandler(topic string, storage domrepo.AnalysisStore, metrics domrepo.Metrics) *KafkaRecordsHandler {
	return &KafkaRecordsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaRecordsHandler) Topic() string { return h.topic }

func (h *KafkaRecordsHandler) Handle(ctx context.Context, b []byte) error {
	var rec models.AnalysisRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if rec.ID == "" || rec.UserID == "" || !rec.Type.Valid() {
		h.metrics.RecordError("consumer_invalid_record")
		return nil // drop, retrying cannot fix a malformed record
	}

	// E2E latency from compute time to persistence (approx)
	h.metrics.RecordLatency("persist_e2e_seconds", time.Since(rec.CreatedAt).Seconds())

	start := time.Now()
	err := h.storage.Save(ctx, &rec)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordAnalysis("direct", rec.Type)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaRecordsHandler)(nil)
