package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"arina/internal/domain/models"
	"arina/internal/domain/repository"
	pkgkafka "arina/pkg/kafka"
)

// ClickHouseAnalysisStore implements AnalysisStore on ClickHouse. Records are
// stored as JSON documents alongside the columns the history queries filter
// on.
type ClickHouseAnalysisStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseAnalysisStore creates ClickHouse-backed analysis storage.
func NewClickHouseAnalysisStore(db *sql.DB, table string) repository.AnalysisStore {
	return &ClickHouseAnalysisStore{db: db, table: table}
}

func (s *ClickHouseAnalysisStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseAnalysisStore) Save(ctx context.Context, rec *models.AnalysisRecord) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	doc, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("marshal analysis data: %w", err)
	}
	q := fmt.Sprintf("INSERT INTO %s (id, user_id, type, data, created_at) VALUES (?, ?, ?, ?, ?)", s.table)
	_, err = s.db.ExecContext(ctx, q, rec.ID, rec.UserID, string(rec.Type), string(doc), rec.CreatedAt)
	return err
}

func (s *ClickHouseAnalysisStore) SaveBatch(ctx context.Context, recs []*models.AnalysisRecord) error {
	if len(recs) == 0 {
		return nil
	}
	values := make([]string, 0, len(recs))
	args := make([]interface{}, 0, len(recs)*5)
	for _, rec := range recs {
		if rec == nil || rec.ID == "" {
			continue
		}
		doc, err := json.Marshal(rec.Data)
		if err != nil {
			return fmt.Errorf("marshal analysis data: %w", err)
		}
		values = append(values, "(?, ?, ?, ?, ?)")
		args = append(args, rec.ID, rec.UserID, string(rec.Type), string(doc), rec.CreatedAt)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (id, user_id, type, data, created_at) VALUES %s", s.table, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *ClickHouseAnalysisStore) List(ctx context.Context, userID string, typ models.AnalysisType, from, to time.Time, limit int) ([]*models.AnalysisRecord, error) {
	q := fmt.Sprintf("SELECT id, user_id, type, data, created_at FROM %s WHERE user_id = ? AND created_at >= ? AND created_at <= ?", s.table)
	args := []interface{}{userID, from, to}
	if typ != "" {
		q += " AND type = ?"
		args = append(args, string(typ))
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.AnalysisRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *ClickHouseAnalysisStore) Get(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	q := fmt.Sprintf("SELECT id, user_id, type, data, created_at FROM %s WHERE id = ? LIMIT 1", s.table)
	rows, err := s.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return scanRecord(rows)
}

func (s *ClickHouseAnalysisStore) Delete(ctx context.Context, id string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table)
	_, err := s.db.ExecContext(ctx, q, id)
	return err
}

func (s *ClickHouseAnalysisStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseAnalysisStore) Close() error {
	return nil // Managed by pkg
}

func scanRecord(rows *sql.Rows) (*models.AnalysisRecord, error) {
	var rec models.AnalysisRecord
	var typ, doc string
	if err := rows.Scan(&rec.ID, &rec.UserID, &typ, &doc, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Type = models.AnalysisType(typ)
	if err := json.Unmarshal([]byte(doc), &rec.Data); err != nil {
		return nil, fmt.Errorf("unmarshal analysis data: %w", err)
	}
	return &rec, nil
}

// KafkaAnalysisPublisher implements Publisher for Kafka. Records are keyed
// by user id so one user's history stays ordered within a partition.
type KafkaAnalysisPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAnalysisPublisher creates a Kafka publisher.
func NewKafkaAnalysisPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaAnalysisPublisher{producer: producer, topic: topic}
}

func (p *KafkaAnalysisPublisher) Publish(ctx context.Context, rec *models.AnalysisRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(rec.UserID), rec)
}

func (p *KafkaAnalysisPublisher) PublishBatch(ctx context.Context, recs []*models.AnalysisRecord) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(recs))
	for i, rec := range recs {
		msgs[i] = pkgkafka.Message{Key: []byte(rec.UserID), Value: rec}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAnalysisPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
