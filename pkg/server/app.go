package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"AirCast/internal/usecase"
	pkgch "AirCast/pkg/clickhouse"
	"AirCast/pkg/config"
	xhttp "AirCast/pkg/http"
	pkgkafka "AirCast/pkg/kafka"
	applogger "AirCast/pkg/logger"
	"AirCast/pkg/queue"
)

// App encapsulates the entire application lifecycle: sensor collector,
// ingest consumer, batch forecast runner, alert checker and the HTTP API.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	collector   *usecase.ReadingCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	batch       *usecase.BatchRunner
	alerts      *usecase.AlertChecker
	alertQueue  *queue.RedisQueue
}

// New creates a new App instance with all dependencies. consumer, kh,
// alerts and alertQueue may be nil depending on configuration.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.ReadingCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	batch *usecase.BatchRunner,
	alerts *usecase.AlertChecker,
	alertQueue *queue.RedisQueue,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		collector:  collector,
		consumer:   consumer,
		kh:         kh,
		chClient:   chClient,
		batch:      batch,
		alerts:     alerts,
		alertQueue: alertQueue,
	}
}

// SetHTTPHandler allows DI to inject the HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsEndpoint(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
		xhttp.WithLogger(a.log),
	)

	// Sensor collector
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("collector error", applogger.Error(err))
			}
		}()
		a.log.Info("collector started", applogger.Strings("stations", a.cfg.Sensor.Stations))
	}

	// Ingest consumer
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Batch forecast runner
	if a.batch != nil {
		a.batch.Start(ctx)
		a.log.Info("batch runner started",
			applogger.Duration("interval", a.cfg.Forecast.BatchInterval))
	}

	// Alert checker + dispatch queue
	if a.alertQueue != nil {
		if err := a.alertQueue.Start(); err != nil {
			a.log.Error("alert queue start error", applogger.Error(err))
		}
	}
	if a.alerts != nil {
		a.alerts.Start(ctx)
		a.log.Info("alert checker started",
			applogger.Duration("interval", a.cfg.Alerts.Interval))
	}

	// HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down")

	if a.alerts != nil {
		a.alerts.Stop()
	}
	if a.batch != nil {
		a.batch.Stop()
	}

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.alertQueue != nil {
		if err := a.alertQueue.Stop(shutdownCtx); err != nil {
			a.log.Warn("alert queue stop error", applogger.Error(err))
		}
	}

	if a.collector != nil && a.collector.Processor() != nil {
		a.collector.Processor().Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
