package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"AirCast/internal/domain/models"
	domrepo "AirCast/internal/domain/repository"
	pkgcache "AirCast/pkg/cache"
	"AirCast/pkg/config"
	"AirCast/pkg/logger"
)

// batchLockKey guards against overlapping batch runs across replicas.
const batchLockKey = "lock:forecast-batch"

// ErrNoPersistedForecast is returned when an area has no batch output yet.
var ErrNoPersistedForecast = errors.New("no persisted forecast")

// BatchRunner regenerates and persists forecasts for every configured area
// on an interval. Areas run sequentially with a small delay between them so
// a batch never slams the reading store; one area failing never aborts the
// run.
type BatchRunner struct {
	cfg     *config.Config
	fc      *ForecastUseCase
	store   domrepo.ForecastStore
	metrics domrepo.Metrics
	cache   pkgcache.Service
	log     *logger.Logger
	stopCh  chan struct{}
}

// NewBatchRunner creates a batch runner. cache may be nil, which disables
// run locking and forecast invalidation.
func NewBatchRunner(cfg *config.Config, fc *ForecastUseCase, store domrepo.ForecastStore, metrics domrepo.Metrics, cache pkgcache.Service, log *logger.Logger) *BatchRunner {
	return &BatchRunner{
		cfg:     cfg,
		fc:      fc,
		store:   store,
		metrics: metrics,
		cache:   cache,
		log:     log,
		stopCh:  make(chan struct{}),
	}
}

// Start runs batches on the configured interval until the context is
// cancelled or Stop is called. An immediate first run primes the store.
func (r *BatchRunner) Start(ctx context.Context) {
	interval := r.cfg.Forecast.BatchInterval
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		r.RunOnce(ctx, 0)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.RunOnce(ctx, 0)
			}
		}
	}()
}

// Stop halts the periodic runs.
func (r *BatchRunner) Stop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
}

// RunOnce generates and persists forecasts for every configured area.
// hours <= 0 falls back to the configured default horizon. Returns the
// number of areas that succeeded.
func (r *BatchRunner) RunOnce(ctx context.Context, hours int) int {
	start := time.Now()
	ok := 0
	if hours <= 0 {
		hours = r.cfg.Forecast.DefaultHours
	}
	if r.cfg.Forecast.MaxHours > 0 && hours > r.cfg.Forecast.MaxHours {
		hours = r.cfg.Forecast.MaxHours
	}

	if r.cache != nil {
		acquired, err := r.cache.TryLock(ctx, batchLockKey, 10*time.Minute)
		if err == nil && !acquired {
			r.log.Info("batch run skipped, another instance holds the lock")
			return 0
		}
		if err == nil {
			defer func() { _ = r.cache.Unlock(context.Background(), batchLockKey) }()
		}
	}

	for i, area := range r.fc.Areas() {
		if i > 0 && r.cfg.Forecast.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return ok
			case <-time.After(r.cfg.Forecast.BatchDelay):
			}
		}

		set, err := r.fc.Generate(ctx, area, hours)
		if err != nil {
			r.metrics.RecordError("batch_generate")
			r.log.Error("batch: generate failed",
				logger.String("area", area.Name), logger.Error(err))
			continue
		}

		if err := r.store.Replace(ctx, area.Name, set.GeneratedAt, set.Forecasts); err != nil {
			r.metrics.RecordError("batch_persist")
			r.log.Error("batch: persist failed",
				logger.String("area", area.Name), logger.Error(err))
			continue
		}

		if r.cache != nil {
			// Drop stale cached responses so the next read sees this run.
			_ = r.cache.DeleteByPattern(ctx, pkgcache.AreaPattern(strings.ToLower(area.Name)))
		}

		if len(set.Forecasts) > 0 {
			r.metrics.RecordLastAQI(area.Name, float64(set.Forecasts[0].PredictedAQI))
		}
		ok++
	}

	r.metrics.RecordLatency("batch_run", time.Since(start).Seconds())
	r.log.Info("batch run complete",
		logger.Int("areas_ok", ok),
		logger.Int("areas_total", len(r.fc.Areas())),
		logger.Duration("took", time.Since(start)))
	return ok
}

// Persisted returns the last batch output for an area without touching the
// generator or the response cache.
func (r *BatchRunner) Persisted(ctx context.Context, area string) (*models.ForecastSet, error) {
	meta, ok := r.fc.Area(area)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArea, area)
	}
	fs, generatedAt, err := r.store.Latest(ctx, meta.Name)
	if err != nil {
		return nil, fmt.Errorf("load persisted %s: %w", meta.Name, err)
	}
	if len(fs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPersistedForecast, meta.Name)
	}
	return &models.ForecastSet{Area: meta, GeneratedAt: generatedAt, Forecasts: fs}, nil
}
