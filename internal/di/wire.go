//go:build wireinject
// +build wireinject

package di

import (
	"StockLens/pkg/config"
	"StockLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,
		ProvideEndpointMetrics,

		// Reconciliation core
		ProvideGradingPolicy,
		ProvideDeriver,

		// Sources and caches
		ProvideClickHouseClient,
		ProvideForecastSource,
		ProvideRedisCache,
		ProvideLocalCache,
		ProvideResponseCache,
		ProvideRateLimiter,

		// HTTP
		ProvideDashboardUseCase,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Kafka
		ProvideKafkaProducer,
		ProvidePublisher,
		ProvideKafkaConsumer,
		ProvideForecastEventHandler,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
