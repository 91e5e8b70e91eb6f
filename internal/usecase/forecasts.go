package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"AirCast/internal/domain/models"
	domrepo "AirCast/internal/domain/repository"
	domsvc "AirCast/internal/domain/service"
	"AirCast/internal/forecast"
	svcmetrics "AirCast/internal/service/metrics"
	"AirCast/internal/services/enhance"
	pkgcache "AirCast/pkg/cache"
	"AirCast/pkg/config"
	"AirCast/pkg/logger"
)

// ErrUnknownArea is returned when a requested area is not configured.
var ErrUnknownArea = errors.New("unknown area")

// ForecastUseCase generates the multi-horizon forecast set for one area:
// history window in, ensemble out, optional enhancement on top.
type ForecastUseCase struct {
	cfg      *config.Config
	readings domrepo.ReadingStore
	gen      *forecast.Generator
	enhancer domsvc.Enhancer
	cache    pkgcache.Service
	log      *logger.Logger
	areas    map[string]models.AreaMeta
}

// NewForecastUseCase creates the per-area forecast use case. enhancer and
// cache may be nil.
func NewForecastUseCase(
	cfg *config.Config,
	readings domrepo.ReadingStore,
	gen *forecast.Generator,
	enhancer domsvc.Enhancer,
	cache pkgcache.Service,
	log *logger.Logger,
) *ForecastUseCase {
	areas := make(map[string]models.AreaMeta, len(cfg.Forecast.Areas))
	for _, a := range cfg.Forecast.Areas {
		areas[strings.ToLower(a.Name)] = models.AreaMeta{
			Name:      a.Name,
			District:  a.District,
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
		}
	}
	return &ForecastUseCase{
		cfg:      cfg,
		readings: readings,
		gen:      gen,
		enhancer: enhancer,
		cache:    cache,
		log:      log,
		areas:    areas,
	}
}

// Area resolves a configured area by case-insensitive name.
func (uc *ForecastUseCase) Area(name string) (models.AreaMeta, bool) {
	a, ok := uc.areas[strings.ToLower(name)]
	return a, ok
}

// Areas lists all configured areas.
func (uc *ForecastUseCase) Areas() []models.AreaMeta {
	out := make([]models.AreaMeta, 0, len(uc.areas))
	for _, a := range uc.areas {
		out = append(out, a)
	}
	return out
}

// GetForecast returns the forecast set for an area, serving from cache
// when a fresh entry exists.
func (uc *ForecastUseCase) GetForecast(ctx context.Context, area string, hours int) (*models.ForecastSet, error) {
	meta, ok := uc.Area(area)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArea, area)
	}
	if hours <= 0 {
		hours = uc.cfg.Forecast.DefaultHours
	}
	if hours > uc.cfg.Forecast.MaxHours {
		hours = uc.cfg.Forecast.MaxHours
	}

	key := pkgcache.ForecastKey(strings.ToLower(meta.Name), hours)
	if uc.cache != nil {
		var cached models.ForecastSet
		if err := uc.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	set, err := uc.generate(ctx, meta, hours)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, set, uc.cfg.Forecast.CacheTTL); err != nil {
			uc.log.Warn("forecast cache write failed",
				logger.String("area", meta.Name), logger.Error(err))
		}
	}
	return set, nil
}

// Generate builds a fresh forecast set for a configured area, bypassing
// the cache. The batch runner uses it directly.
func (uc *ForecastUseCase) Generate(ctx context.Context, meta models.AreaMeta, hours int) (*models.ForecastSet, error) {
	return uc.generate(ctx, meta, hours)
}

func (uc *ForecastUseCase) generate(ctx context.Context, meta models.AreaMeta, hours int) (*models.ForecastSet, error) {
	history, err := uc.readings.GetLatestN(ctx, meta.Name, uc.cfg.Forecast.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", meta.Name, err)
	}
	weather, err := uc.readings.LatestWeather(ctx, meta.Name)
	if err != nil {
		return nil, fmt.Errorf("load weather %s: %w", meta.Name, err)
	}

	baseline, err := uc.gen.Generate(history, weather, meta, hours)
	if err != nil {
		return nil, err
	}

	return &models.ForecastSet{
		Area:        meta,
		GeneratedAt: time.Now().UTC(),
		Forecasts:   uc.enhance(ctx, meta, baseline),
	}, nil
}

// enhance runs the optional enhancer; any failure falls back to the
// untouched baseline.
func (uc *ForecastUseCase) enhance(ctx context.Context, meta models.AreaMeta, baseline []models.Forecast) []models.EnhancedForecast {
	if uc.enhancer == nil || !uc.cfg.Enhancer.Enabled {
		return enhance.Baseline(baseline)
	}
	enhanced, err := uc.enhancer.Enhance(ctx, meta, baseline)
	if err != nil {
		uc.log.Warn("enhancer failed, serving baseline",
			logger.String("area", meta.Name), logger.Error(err))
		svcmetrics.EnhancerFallbacks.Inc()
		return enhance.Baseline(baseline)
	}
	if len(enhanced) != len(baseline) {
		uc.log.Warn("enhancer returned wrong sequence length, serving baseline",
			logger.String("area", meta.Name),
			logger.Int("got", len(enhanced)), logger.Int("want", len(baseline)))
		svcmetrics.EnhancerFallbacks.Inc()
		return enhance.Baseline(baseline)
	}
	return enhanced
}
