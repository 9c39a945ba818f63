//go:build wireinject
// +build wireinject

package di

import (
	"arina/pkg/config"
	"arina/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient services
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideAnalysisStore,
		ProvideAnalysisPublisher,

		// Use cases
		ProvideEngines,
		ProvideRecorder,
		ProvideAnalysisService,
		ProvideRecommendationService,
		ProvideKafkaRecordsHandler,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
