package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"AirCast/internal/domain/repository"
	domsvc "AirCast/internal/domain/service"
	"AirCast/internal/forecast"
	"AirCast/internal/handler/api"
	mid "AirCast/internal/middleware"
	internalrepo "AirCast/internal/repository"
	"AirCast/internal/service/sensorstream"
	"AirCast/internal/services/enhance"
	"AirCast/internal/usecase"
	pkgcache "AirCast/pkg/cache"
	pkgch "AirCast/pkg/clickhouse"
	"AirCast/pkg/config"
	xhttp "AirCast/pkg/http"
	pkgkafka "AirCast/pkg/kafka"
	"AirCast/pkg/logger"
	"AirCast/pkg/metrics"
	"AirCast/pkg/queue"
	"AirCast/pkg/server"
)

// ProvideLogger creates the application logger from the environment.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	lc := &logger.Config{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}
	if cfg.Environment == "development" {
		lc.Level = "debug"
		lc.Format = "console"
	}
	return logger.New(lc)
}

// ProvideClickHouseClient creates a ClickHouse client and applies the schema.
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

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
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

// ProvideReadingStorage creates the ClickHouse write-side repository.
func ProvideReadingStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".aq_readings")
}

// ProvideReadingPublisher creates the Kafka publisher repository.
func ProvideReadingPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates the ingest consumer. Returns nil when the
// backend writes straight to ClickHouse and no consumer is needed.
func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
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

// ProvideKafkaReadingsHandler registers the handler for the readings topic.
func ProvideKafkaReadingsHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaReadingsHandler {
	return usecase.NewKafkaReadingsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideSensorStream creates the sensor gateway WebSocket stream.
func ProvideSensorStream(cfg *config.Config, log *logger.Logger) repository.SensorStream {
	return sensorstream.New(
		log,
		cfg.Sensor.APIKey,
		cfg.Sensor.WebSocketURL,
		cfg.Sensor.Stations,
		cfg.Sensor.ReconnectDelay,
		cfg.Sensor.PingInterval,
	)
}

// ProvideReadingProcessor creates the reading processor use case.
func ProvideReadingProcessor(
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.ReadingProcessor {
	return usecase.NewReadingProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvideReadingCollector creates the collector with its ingest pipeline.
func ProvideReadingCollector(
	stream repository.SensorStream,
	processor *usecase.ReadingProcessor,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.ReadingCollector {
	bufSize := cfg.Backend.BatchSize
	if bufSize <= 0 {
		bufSize = 2000
	}
	opts := []mid.PipelineOption{
		mid.WithMaxRPS(50),
		mid.WithBufferSize(bufSize),
	}
	if cfg.Backend.BatchTimeout > 0 {
		opts = append(opts, mid.WithRetryBackoff(cfg.Backend.BatchTimeout))
	}
	pipe := mid.NewIngestPipeline(processor, m, opts...)
	return usecase.NewReadingCollector(stream, processor, m, pipe)
}

// ProvideReadingStore creates the ClickHouse read-side repository.
func ProvideReadingStore(chClient *pkgch.Client, cfg *config.Config) repository.ReadingStore {
	return internalrepo.NewCHReadingStore(chClient.DB(), cfg.ClickHouse.Database+".aq_readings")
}

// ProvideForecastStore creates the forecast persistence repository.
func ProvideForecastStore(chClient *pkgch.Client, cfg *config.Config) repository.ForecastStore {
	return internalrepo.NewCHForecastStore(chClient.DB(), cfg.ClickHouse.Database+".aq_forecasts")
}

// ProvideGenerator creates the ensemble forecast generator.
func ProvideGenerator() *forecast.Generator {
	return forecast.NewGenerator()
}

// ProvideEnhancer creates the AI enhancement client, or nil when disabled.
func ProvideEnhancer(cfg *config.Config) domsvc.Enhancer {
	if !cfg.Enhancer.Enabled {
		return nil
	}
	return enhance.NewHTTPEnhancer(cfg)
}

// ProvideRedisClient creates the shared Redis client, or nil when disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideForecastCache picks Redis-backed caching when Redis is configured
// and falls back to the in-process cache otherwise.
func ProvideForecastCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}

	host, port := "localhost", 6379
	if h, p, err := net.SplitHostPort(cfg.Redis.Addr); err == nil {
		host = h
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}

	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideForecastUseCase creates the forecast use case.
func ProvideForecastUseCase(
	cfg *config.Config,
	readings repository.ReadingStore,
	gen *forecast.Generator,
	enhancer domsvc.Enhancer,
	cache pkgcache.Service,
	log *logger.Logger,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(cfg, readings, gen, enhancer, cache, log)
}

// ProvideReadingsUseCase creates the readings query use case.
func ProvideReadingsUseCase(readings repository.ReadingStore) *usecase.ReadingsUseCase {
	return usecase.NewReadingsUseCase(readings)
}

// ProvideBatchRunner creates the periodic forecast batch runner.
func ProvideBatchRunner(
	cfg *config.Config,
	fc *usecase.ForecastUseCase,
	store repository.ForecastStore,
	m repository.Metrics,
	cache pkgcache.Service,
	log *logger.Logger,
) *usecase.BatchRunner {
	return usecase.NewBatchRunner(cfg, fc, store, m, cache, log)
}

// ProvideAlertQueue creates the Redis-backed alert dispatch queue. Returns
// nil when alerts or Redis are disabled.
func ProvideAlertQueue(cfg *config.Config, log *logger.Logger, rdb *redis.Client) *queue.RedisQueue {
	if !cfg.Alerts.Enabled || rdb == nil {
		return nil
	}
	q := queue.NewRedisQueue(log, &queue.QueueConfig{
		Workers:    2,
		QueueSize:  256,
		RetryLimit: 3,
		RetryDelay: 5 * time.Second,
	}, rdb, queue.ModeProducerConsumer)
	q.RegisterJob(usecase.NewAlertDispatchJob(log, cfg.Alerts.QueueTopic))
	q.RegisterJob(usecase.NewLogDigestJob(log))

	// Repeated error lines flow through the queue as one digest entry.
	log.AddCollector(&logger.CollectionConfig{
		TimeInterval:   time.Minute,
		CountThreshold: 100,
		Topic:          usecase.LogDigestType,
		Publisher:      q,
	})
	return q
}

// ProvideAlertChecker creates the threshold checker, or nil when disabled.
func ProvideAlertChecker(
	cfg *config.Config,
	readings repository.ReadingStore,
	q *queue.RedisQueue,
	log *logger.Logger,
) *usecase.AlertChecker {
	if !cfg.Alerts.Enabled || q == nil {
		return nil
	}
	return usecase.NewAlertChecker(cfg, readings, q, log)
}

// ProvideHTTPHandler creates the echo API handler.
func ProvideHTTPHandler(
	log *logger.Logger,
	fc *usecase.ForecastUseCase,
	readings *usecase.ReadingsUseCase,
	batch *usecase.BatchRunner,
) xhttp.Handler {
	return api.NewForecastEchoHandler(log, fc, readings, batch)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	collector *usecase.ReadingCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaReadingsHandler,
	chClient *pkgch.Client,
	batch *usecase.BatchRunner,
	alerts *usecase.AlertChecker,
	alertQueue *queue.RedisQueue,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.LoggingHook(log))
	}
	app := server.New(cfg, log, collector, consumer, kh, chClient, batch, alerts, alertQueue)
	app.SetHTTPHandler(handler)
	return app
}
