package di

import (
	"context"
	"fmt"
	"time"

	"OracleAgent/internal/domain/repository"
	dsvc "OracleAgent/internal/domain/service"
	"OracleAgent/internal/handler/api"
	internalrepo "OracleAgent/internal/repository"
	"OracleAgent/internal/service/coingecko"
	"OracleAgent/internal/service/fees"
	"OracleAgent/internal/service/llm"
	"OracleAgent/internal/service/ratelimit"
	"OracleAgent/internal/usecase"
	"OracleAgent/pkg/cache"
	pkgch "OracleAgent/pkg/clickhouse"
	"OracleAgent/pkg/config"
	xhttp "OracleAgent/pkg/http"
	pkgkafka "OracleAgent/pkg/kafka"
	applogger "OracleAgent/pkg/logger"
	"OracleAgent/pkg/metrics"
	"OracleAgent/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the outbound client shared by every upstream call.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Market.Timeout))
}

// ProvideMempool returns nil unless fees come from the mempool API.
func ProvideMempool(cfg *config.Config, client *xhttp.Client, l *applogger.Logger) *fees.Mempool {
	if cfg.Fees.Source != "mempool" {
		return nil
	}
	return fees.NewMempool(cfg.Fees.MempoolURL, cfg.Fees.Schedule, client, l)
}

// ProvideFeeEstimator picks the mempool estimator when configured, else the static table.
func ProvideFeeEstimator(m *fees.Mempool) dsvc.FeeEstimator {
	if m != nil {
		return m
	}
	return fees.NewStatic()
}

// ProvideMarketFetcher creates the CoinGecko fetcher.
func ProvideMarketFetcher(cfg *config.Config, client *xhttp.Client, fe dsvc.FeeEstimator, l *applogger.Logger) dsvc.MarketFetcher {
	return coingecko.New(cfg.Market.BaseURL, client, fe, l, coingecko.WithAPIKey(cfg.Market.APIKey))
}

// ProvideQuoteCache returns nil when caching is disabled; Redis when enabled, memory otherwise.
func ProvideQuoteCache(cfg *config.Config) (cache.Service, func(), error) {
	if cfg.Market.CacheTTL <= 0 {
		return nil, func() {}, nil
	}
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("quote cache: %w", err)
		}
		return rc, func() { _ = rc.Close() }, nil
	}
	mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(16), cache.WithMemoryCleanup(time.Minute))
	return mc, func() { _ = mc.Close() }, nil
}

// ProvideStorage opens the configured backend and ensures its tables exist.
func ProvideStorage(cfg *config.Config) (repository.Storage, func(), error) {
	var store *internalrepo.SQLStore
	switch cfg.Storage.Backend {
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store = internalrepo.NewClickHouseStore(client)
	default:
		s, err := internalrepo.NewSQLiteStore(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		store = s
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("storage schema: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// ProvideEventPublisher publishes to Kafka when enabled and drops events otherwise.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
	return pub, func() { _ = pub.Close() }, nil
}

// ProvideKafkaConsumer returns nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.GroupID),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideEventsHandler consumes the recommendations topic.
func ProvideEventsHandler(cfg *config.Config, m repository.Metrics) *usecase.RecommendationEventsHandler {
	return usecase.NewRecommendationEventsHandler(cfg.Kafka.Topic, m)
}

// ProvideTextGenerator returns nil when no credential is configured.
func ProvideTextGenerator(cfg *config.Config) (dsvc.TextGenerator, error) {
	return llm.New(llm.Settings{
		Provider:  cfg.AI.Provider,
		APIKey:    cfg.AI.APIKey,
		BaseURL:   cfg.AI.BaseURL,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
		Timeout:   cfg.AI.Timeout,
	})
}

func ProvideMarketUseCase(cfg *config.Config, f dsvc.MarketFetcher, c cache.Service, m repository.Metrics, l *applogger.Logger) *usecase.MarketUseCase {
	return usecase.NewMarketUseCase(f, c, cfg.Market.CacheTTL, m, l)
}

func ProvideRecommendationEngine(gen dsvc.TextGenerator, l *applogger.Logger) *usecase.RecommendationEngine {
	return usecase.NewRecommendationEngine(gen, l)
}

func ProvideNarrativeService(gen dsvc.TextGenerator, m repository.Metrics, l *applogger.Logger) *usecase.NarrativeService {
	return usecase.NewNarrativeService(gen, m, l)
}

func ProvideScenarioUseCase(
	store repository.Storage,
	market *usecase.MarketUseCase,
	engine *usecase.RecommendationEngine,
	pub repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ScenarioUseCase {
	return usecase.NewScenarioUseCase(store, market, engine, pub, m, l)
}

// ProvideRateLimiter returns nil when rate limiting is switched off (capacity <= 0).
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if cfg.RateLimit.Capacity <= 0 {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	cfg *config.Config,
	l *applogger.Logger,
	market *usecase.MarketUseCase,
	scenarios *usecase.ScenarioUseCase,
	narrative *usecase.NarrativeService,
	store repository.Storage,
	limiter *ratelimit.Limiter,
) *api.OracleHandler {
	return api.NewOracleHandler(l, market, scenarios, narrative, store,
		api.WithBasePath(cfg.Server.BasePath),
		api.WithRateLimiter(limiter),
		api.WithStream(api.StreamConfig{
			Interval: cfg.Stream.Interval,
			Origins:  cfg.Server.CORSOrigins,
		}),
	)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.OracleHandler, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, cfg.Metrics.SlowThreshold))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	eh *usecase.RecommendationEventsHandler,
	limiter *ratelimit.Limiter,
	mempool *fees.Mempool,
) *server.App {
	var jobs []server.BackgroundJob
	if mempool != nil {
		jobs = append(jobs, mempool)
	}
	return server.New(cfg, l, srv, consumer, eh, limiter, jobs...)
}
