package di

import (
	"context"
	"fmt"
	"time"

	"StockLens/internal/domain/models"
	"StockLens/internal/domain/repository"
	"StockLens/internal/handler/api"
	internalrepo "StockLens/internal/repository"
	icache "StockLens/internal/service/cache"
	imetrics "StockLens/internal/service/metrics"
	"StockLens/internal/service/ratelimit"
	"StockLens/internal/services/analytics"
	"StockLens/internal/services/upstream"
	"StockLens/internal/usecase"
	pkgch "StockLens/pkg/clickhouse"
	"StockLens/pkg/config"
	xhttp "StockLens/pkg/http"
	pkgkafka "StockLens/pkg/kafka"
	applogger "StockLens/pkg/logger"
	"StockLens/pkg/metrics"
	"StockLens/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry shared by every component.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) (repository.Metrics, error) {
	return metrics.New(reg)
}

func ProvideEndpointMetrics(reg *prometheus.Registry) (*imetrics.Endpoint, error) {
	return imetrics.NewEndpoint(reg)
}

// ProvideGradingPolicy overlays configured threshold tables on the defaults.
func ProvideGradingPolicy(cfg *config.Config) (analytics.GradingPolicy, error) {
	policy := analytics.DefaultPolicy().Clone()
	for id, t := range cfg.Grading {
		table := analytics.ThresholdTable{
			Direction: analytics.Direction(t.Direction),
			Otherwise: analytics.Band{Bound: t.Otherwise.Bound, Label: t.Otherwise.Label, Tier: models.Tier(t.Otherwise.Tier)},
		}
		for _, b := range t.Bands {
			table.Bands = append(table.Bands, analytics.Band{Bound: b.Bound, Label: b.Label, Tier: models.Tier(b.Tier)})
		}
		policy[models.MetricID(id)] = table
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("grading config: %w", err)
	}
	return policy, nil
}

func ProvideDeriver(cfg *config.Config, policy analytics.GradingPolicy) *usecase.Deriver {
	ranker := analytics.NewRanker(
		analytics.WithDominantCount(cfg.Importance.DominantCount),
		analytics.WithMinDisplayWidth(cfg.Importance.MinDisplayWidth),
	)
	return usecase.NewDeriver(analytics.NewMerger(), analytics.NewGrader(policy), ranker)
}

// ProvideClickHouseClient connects to ClickHouse when it is the configured
// source; otherwise it returns nil.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if cfg.Source != config.SourceClickHouse {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(l,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.ForecastSchema); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideForecastSource picks the HTTP backend or the ClickHouse store.
func ProvideForecastSource(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.ForecastSource, error) {
	switch cfg.Source {
	case config.SourceHTTP:
		return upstream.NewClient(cfg, l.With(applogger.String("component", "upstream"))), nil
	case config.SourceClickHouse:
		if ch == nil {
			return nil, fmt.Errorf("clickhouse source selected but no client")
		}
		return internalrepo.NewCHForecastStore(ch, l.With(applogger.String("component", "clickhouse"))), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

// ProvideRedisCache returns nil when redis is disabled.
func ProvideRedisCache(cfg *config.Config, l *applogger.Logger) (*icache.RedisCache, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	return rc, cleanup, nil
}

func ProvideLocalCache() *icache.TTLCache {
	return icache.NewTTLCache()
}

// ProvideResponseCache puts the local cache in front of redis when redis is
// enabled. Local copies live at most 15s so instances converge quickly.
func ProvideResponseCache(local *icache.TTLCache, rc *icache.RedisCache) icache.BytesCache {
	if rc == nil {
		return local
	}
	return icache.NewLayered(local, rc, 15*time.Second)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

func ProvideDashboardUseCase(
	cfg *config.Config,
	source repository.ForecastSource,
	deriver *usecase.Deriver,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.DashboardUseCase {
	// sessions get their own gate; kafka events are keyed by ticker
	uc := usecase.NewDashboardUseCase(source, deriver, usecase.NewCycleGate(), m, l.With(applogger.String("component", "dashboard")))
	return uc.WithDefaults(cfg.Chart.WindowDays, cfg.Chart.ForwardDays, cfg.Chart.HistoryLimit)
}

func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	deriver *usecase.Deriver,
	dashboard *usecase.DashboardUseCase,
	cache icache.BytesCache,
	limiter *ratelimit.Limiter,
	em *imetrics.Endpoint,
) *api.DeriveEchoHandler {
	opts := []api.HandlerOption{
		api.WithCache(cache, cfg.Cache.TTL),
		api.WithEndpointMetrics(em),
	}
	if limiter != nil {
		opts = append(opts, api.WithRateLimiter(limiter))
	}
	return api.NewDeriveEchoHandler(l, deriver, dashboard, opts...)
}

func ProvideHTTPServer(
	cfg *config.Config,
	h *api.DeriveEchoHandler,
	reg *prometheus.Registry,
	l *applogger.Logger,
	ch *pkgch.Client,
	rc *icache.RedisCache,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins),
		xhttp.WithServerLogger(l.With(applogger.String("component", "http"))),
	}
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	opts = append(opts, xhttp.WithMetrics(reg, reg, path))
	if ch != nil {
		opts = append(opts, xhttp.WithHealthCheck("clickhouse", ch.Health))
	}
	if rc != nil {
		opts = append(opts, xhttp.WithHealthCheck("redis", rc.Ping))
	}
	return xhttp.NewServer([]xhttp.Handler{h}, opts...)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher returns nil when there is no producer.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.OutputTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, or nil
// when kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, reg *prometheus.Registry, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
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
		pkgkafka.WithConsumerLogger(l.With(applogger.String("component", "kafka"))),
		pkgkafka.WithConsumerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TraceHook(), pkgkafka.LoggingHook(l)))
	return consumer, nil
}

// ProvideForecastEventHandler returns nil when there is nothing to publish to.
func ProvideForecastEventHandler(
	cfg *config.Config,
	deriver *usecase.Deriver,
	pub repository.Publisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.ForecastEventHandler {
	if pub == nil {
		return nil
	}
	return usecase.NewForecastEventHandler(cfg.Kafka.InputTopic, deriver, usecase.NewCycleGate(), pub, m,
		l.With(applogger.String("component", "forecast_events")))
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	handler *usecase.ForecastEventHandler,
	pub repository.Publisher,
	local *icache.TTLCache,
	limiter *ratelimit.Limiter,
) *server.App {
	app := server.New(cfg, l, srv)
	if consumer != nil && handler != nil {
		app.SetConsumer(consumer, handler, pub)
	}
	app.AddJanitor("response_cache", local.Sweep)
	if limiter != nil {
		app.AddJanitor("rate_limiter", limiter.Evict)
	}
	return app
}
