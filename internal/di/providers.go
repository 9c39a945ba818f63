package di

import (
	"context"
	"fmt"
	"time"

	"arina/internal/domain/repository"
	"arina/internal/domain/service"
	"arina/internal/handler/api"
	internalrepo "arina/internal/repository"
	"arina/internal/usecase"
	"arina/pkg/cache"
	pkgch "arina/pkg/clickhouse"
	"arina/pkg/config"
	xhttp "arina/pkg/http"
	pkgkafka "arina/pkg/kafka"
	applogger "arina/pkg/logger"
	"arina/pkg/metrics"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, table := cfg.ClickHouse.Database, cfg.ClickHouse.Table
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (id String, user_id String, type String, data String, created_at DateTime64(3)) ENGINE=MergeTree ORDER BY (user_id, created_at)", db, table),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when the direct
// backend is configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideAnalysisStore creates ClickHouse-backed analysis storage.
func ProvideAnalysisStore(chClient *pkgch.Client, cfg *config.Config) repository.AnalysisStore {
	return internalrepo.NewClickHouseAnalysisStore(chClient.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
}

// ProvideAnalysisPublisher creates the Kafka publisher for the async backend.
func ProvideAnalysisPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAnalysisPublisher(producer, cfg.Kafka.Topic)
}

// ProvideCache creates the cache service: layered over Redis when enabled,
// otherwise in-process memory only.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemorySize)), nil
	}
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redisCache, cache.WithLayeredMemorySize(cfg.Cache.MemorySize)), nil
}

// ProvideEngines creates the calculation engine set.
func ProvideEngines(cfg *config.Config) service.Engines {
	return usecase.NewCalculationEngines(cfg.Analysis.Feasibility)
}

// ProvideRecorder creates the persistence router.
func ProvideRecorder(pub repository.Publisher, store repository.AnalysisStore, m repository.Metrics, cfg *config.Config) *usecase.Recorder {
	return usecase.NewRecorder(pub, store, m, cfg.Backend.Type)
}

// ProvideAnalysisService creates the analysis use case.
func ProvideAnalysisService(
	engines service.Engines,
	recorder *usecase.Recorder,
	store repository.AnalysisStore,
	c cache.Service,
	logger *applogger.Logger,
) *usecase.AnalysisService {
	return usecase.NewAnalysisService(engines, recorder, store, c, logger)
}

// ProvideRecommendationService creates the recommendation use case.
func ProvideRecommendationService(store repository.AnalysisStore, c cache.Service, cfg *config.Config, logger *applogger.Logger) *usecase.RecommendationService {
	return usecase.NewRecommendationService(store, c, cfg.Analysis.Recommendations.TTL, logger)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(logger *applogger.Logger, analyses *usecase.AnalysisService, recs *usecase.RecommendationService) xhttp.Handler {
	return api.NewAnalysisHandler(logger, analyses, recs)
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when the direct
// backend is configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaRecordsHandler registers the persistence handler for the
// records topic.
func ProvideKafkaRecordsHandler(store repository.AnalysisStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaRecordsHandler {
	return usecase.NewKafkaRecordsHandler(cfg.Kafka.Topic, store, m)
}
