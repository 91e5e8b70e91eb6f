package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	models "AirCast/internal/domain/models"
	"AirCast/internal/forecast"
	svcmetrics "AirCast/internal/service/metrics"
	"AirCast/internal/service/ratelimit"
	"AirCast/internal/usecase"
	xhttp "AirCast/pkg/http"
	xlogger "AirCast/pkg/logger"
)

// Per-client budget for forecast reads; batch triggers share one bucket
// since a run touches every area.
const (
	forecastRateCapacity = 30
	forecastRefillPerSec = 0.5
	batchRateCapacity    = 2
	batchRefillPerSec    = 1.0 / 60
)

// ForecastEchoHandler exposes the forecasting API over Echo.
type ForecastEchoHandler struct {
	logger   *xlogger.Logger
	fc       *usecase.ForecastUseCase
	readings *usecase.ReadingsUseCase
	batch    *usecase.BatchRunner
	limiter  *ratelimit.Limiter
}

func NewForecastEchoHandler(logger *xlogger.Logger, fc *usecase.ForecastUseCase, readings *usecase.ReadingsUseCase, batch *usecase.BatchRunner) *ForecastEchoHandler {
	svcmetrics.Register()
	return &ForecastEchoHandler{logger: logger, fc: fc, readings: readings, batch: batch, limiter: ratelimit.New()}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/forecast", h.Forecast)
	g.GET("/forecast/latest", h.LatestForecast)
	g.GET("/readings", h.Readings)
	g.POST("/forecast/run", h.BatchRun)
	g.GET("/areas", h.Areas)
	e.GET("/health", h.Health)
}

func (h *ForecastEchoHandler) Forecast(c echo.Context) error {
	start := time.Now()
	if !h.limiter.Allow("forecast:"+c.RealIP(), forecastRateCapacity, forecastRefillPerSec) {
		return h.rateLimited(c)
	}
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.ForecastErrors.WithLabelValues("forecast").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	set, err := h.fc.GetForecast(c.Request().Context(), req.Area, req.Hours)
	if err != nil {
		svcmetrics.ForecastErrors.WithLabelValues("forecast").Inc()
		return h.mapError(c, err)
	}

	svcmetrics.ForecastLatency.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, set)
}

// LatestForecast serves the last batch-persisted forecast set for an area.
// Unlike /forecast it never triggers generation.
func (h *ForecastEchoHandler) LatestForecast(c echo.Context) error {
	start := time.Now()
	if !h.limiter.Allow("forecast:"+c.RealIP(), forecastRateCapacity, forecastRefillPerSec) {
		return h.rateLimited(c)
	}
	req := &models.LatestForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.ForecastErrors.WithLabelValues("forecast_latest").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	set, err := h.batch.Persisted(c.Request().Context(), req.Area)
	if err != nil {
		svcmetrics.ForecastErrors.WithLabelValues("forecast_latest").Inc()
		return h.mapError(c, err)
	}

	svcmetrics.ForecastLatency.WithLabelValues("forecast_latest").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, set)
}

func (h *ForecastEchoHandler) Readings(c echo.Context) error {
	start := time.Now()
	req := &models.ReadingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.ForecastErrors.WithLabelValues("readings").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	if req.From != "" || req.To != "" {
		to := xhttp.ParseTimeDefault(req.To, time.Now().UTC())
		from, ok := xhttp.ParseTime(req.From)
		if !ok {
			from = to.Add(-24 * time.Hour)
		}
		res, err := h.readings.GetReadings(ctx, usecase.GetReadingsParams{
			Area:  req.Area,
			From:  from,
			To:    to,
			Limit: req.N,
		})
		if err != nil {
			svcmetrics.ForecastErrors.WithLabelValues("readings").Inc()
			h.logger.Error("readings usecase error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid readings range").WithError(err))
		}
		svcmetrics.ForecastLatency.WithLabelValues("readings").Observe(time.Since(start).Seconds())
		return xhttp.ListResponse(c, res.Readings, int64(res.Count))
	}

	rs, err := h.readings.Latest(ctx, req.Area, req.N)
	if err != nil {
		svcmetrics.ForecastErrors.WithLabelValues("readings").Inc()
		h.logger.Error("readings usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	svcmetrics.ForecastLatency.WithLabelValues("readings").Observe(time.Since(start).Seconds())
	return xhttp.ListResponse(c, rs, int64(len(rs)))
}

// BatchRun triggers an immediate regeneration of every configured area.
func (h *ForecastEchoHandler) BatchRun(c echo.Context) error {
	if !h.limiter.Allow("batch", batchRateCapacity, batchRefillPerSec) {
		return h.rateLimited(c)
	}
	req := &models.BatchRunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// Echo only binds query params on GET; a bare POST still accepts ?hours=.
	if v := c.QueryParam("hours"); v != "" {
		req.Hours = xhttp.ParseIntDefault(v, req.Hours)
	}

	ok := h.batch.RunOnce(c.Request().Context(), req.Hours)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"areas_ok":    ok,
		"areas_total": len(h.fc.Areas()),
		"hours":       req.Hours,
	})
}

func (h *ForecastEchoHandler) Areas(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.fc.Areas())
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ForecastEchoHandler) rateLimited(c echo.Context) error {
	return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests"))
}

// mapError translates core sentinels into client errors; everything else
// is an internal failure.
func (h *ForecastEchoHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnknownArea):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("area not configured").WithError(err))
	case errors.Is(err, usecase.ErrNoPersistedForecast):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no batch forecast yet").WithError(err))
	case errors.Is(err, forecast.ErrInsufficientHistory):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("not enough history to forecast").WithError(err))
	case errors.Is(err, forecast.ErrInvalidInput):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("invalid forecast input").WithError(err))
	default:
		h.logger.Error("forecast usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}

var _ xhttp.Handler = (*ForecastEchoHandler)(nil)
