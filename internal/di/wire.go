//go:build wireinject
// +build wireinject

package di

import (
	"OracleAgent/pkg/config"
	"OracleAgent/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPClient,

		// Infrastructure
		ProvideMempool,
		ProvideFeeEstimator,
		ProvideMarketFetcher,
		ProvideQuoteCache,
		ProvideStorage,
		ProvideEventPublisher,
		ProvideKafkaConsumer,
		ProvideTextGenerator,

		// Use cases
		ProvideMarketUseCase,
		ProvideRecommendationEngine,
		ProvideNarrativeService,
		ProvideScenarioUseCase,
		ProvideEventsHandler,

		// HTTP
		ProvideRateLimiter,
		ProvideHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
