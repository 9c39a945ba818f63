package di

import (
	"context"
	"time"

	"arina/internal/usecase"
	pkgch "arina/pkg/clickhouse"
	"arina/pkg/config"
	xhttp "arina/pkg/http"
	pkgkafka "arina/pkg/kafka"
	applogger "arina/pkg/logger"
	"arina/pkg/server"
)

// kafkaLogPublisher adapts the Kafka producer to the log collector.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (k kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return k.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaRecordsHandler,
	chClient *pkgch.Client,
	recorder *usecase.Recorder,
) *server.App {
	var mh pkgkafka.MessageHandler
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
		mh = kh
	}

	// Aggregated log shipping rides the same broker as the records topic.
	if producer != nil {
		logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topic + ".logs",
			Publisher:      kafkaLogPublisher{producer: producer},
		})
	}

	app := server.New(cfg, logger, handler, consumer, mh, chClient)
	app.AddCloser(recorder.Close)
	return app
}
