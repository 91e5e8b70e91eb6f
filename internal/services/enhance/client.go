package enhance

import (
	"context"
	"fmt"

	"AirCast/internal/domain/models"
	domsvc "AirCast/internal/domain/service"
	"AirCast/internal/forecast"
	"AirCast/pkg/config"
)

// HTTPEnhancer posts a baseline forecast set to the external generative
// service and applies the returned per-hour adjustments. The core's output
// clamps are re-applied after every delta so enhancement can never push a
// forecast outside the ensemble's bounds.
type HTTPEnhancer struct {
	base *HTTPServiceBase
}

// NewHTTPEnhancer creates an enhancer client from config.
func NewHTTPEnhancer(cfg *config.Config) *HTTPEnhancer {
	return &HTTPEnhancer{base: NewHTTPServiceBase(cfg)}
}

type enhanceRequest struct {
	Area      string            `json:"area"`
	District  string            `json:"district"`
	Forecasts []forecastPayload `json:"forecasts"`
}

type forecastPayload struct {
	HorizonHours int     `json:"horizon_hours"`
	AQI          int     `json:"aqi"`
	PM25         float64 `json:"pm25"`
	PM10         float64 `json:"pm10"`
	Confidence   float64 `json:"confidence"`
	Season       string  `json:"season"`
	AreaType     string  `json:"area_type"`
}

type enhanceResponse struct {
	Adjustments []adjustment `json:"adjustments"`
	Insight     string       `json:"insight"`
}

type adjustment struct {
	HorizonHours    int     `json:"horizon_hours"`
	AQIDelta        int     `json:"aqi_delta"`
	PM25Delta       float64 `json:"pm25_delta"`
	ConfidenceDelta float64 `json:"confidence_delta"`
}

// Enhance posts the baseline and applies adjustments by horizon. A horizon
// the service does not mention is carried through unadjusted but still
// marked enhanced, since the service saw and accepted it.
func (e *HTTPEnhancer) Enhance(ctx context.Context, area models.AreaMeta, baseline []models.Forecast) ([]models.EnhancedForecast, error) {
	req := enhanceRequest{
		Area:      area.Name,
		District:  area.District,
		Forecasts: make([]forecastPayload, 0, len(baseline)),
	}
	for _, f := range baseline {
		req.Forecasts = append(req.Forecasts, forecastPayload{
			HorizonHours: f.HorizonHours,
			AQI:          f.PredictedAQI,
			PM25:         f.PredictedPM25,
			PM10:         f.PredictedPM10,
			Confidence:   f.ConfidenceScore,
			Season:       f.Features.Season,
			AreaType:     f.Features.AreaType,
		})
	}

	var resp enhanceResponse
	if err := e.base.PostJSONWithRetry(ctx, "/enhance", req, &resp, 3); err != nil {
		return nil, fmt.Errorf("enhance %s: %w", area.Name, err)
	}

	byHorizon := make(map[int]adjustment, len(resp.Adjustments))
	for _, a := range resp.Adjustments {
		byHorizon[a.HorizonHours] = a
	}

	out := make([]models.EnhancedForecast, 0, len(baseline))
	for _, f := range baseline {
		ef := models.EnhancedForecast{Forecast: f, Enhanced: true, Insight: resp.Insight}
		if a, ok := byHorizon[f.HorizonHours]; ok {
			ef.AQIDelta = a.AQIDelta
			ef.PM25Delta = a.PM25Delta
			ef.PredictedAQI = forecast.ClampAQI(f.PredictedAQI + a.AQIDelta)
			ef.PredictedPM25 = forecast.FloorPM(f.PredictedPM25 + a.PM25Delta)
			ef.ConfidenceScore = forecast.ClampConfidence(f.ConfidenceScore + a.ConfidenceDelta)
		}
		out = append(out, ef)
	}
	return out, nil
}

// Baseline wraps a forecast sequence untouched, used whenever enhancement
// is disabled or fails.
func Baseline(baseline []models.Forecast) []models.EnhancedForecast {
	out := make([]models.EnhancedForecast, 0, len(baseline))
	for _, f := range baseline {
		out = append(out, models.EnhancedForecast{Forecast: f})
	}
	return out
}

var _ domsvc.Enhancer = (*HTTPEnhancer)(nil)
