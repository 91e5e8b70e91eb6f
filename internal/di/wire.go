//go:build wireinject
// +build wireinject

package di

import (
	"AirCast/pkg/config"
	"AirCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,

		// Repositories
		ProvideReadingStorage,
		ProvideReadingPublisher,
		ProvideReadingStore,
		ProvideForecastStore,
		ProvideSensorStream,

		// Forecast machinery
		ProvideGenerator,
		ProvideEnhancer,
		ProvideForecastCache,

		// Use cases
		ProvideReadingProcessor,
		ProvideReadingCollector,
		ProvideKafkaReadingsHandler,
		ProvideForecastUseCase,
		ProvideReadingsUseCase,
		ProvideBatchRunner,
		ProvideAlertQueue,
		ProvideAlertChecker,

		// HTTP surface and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
