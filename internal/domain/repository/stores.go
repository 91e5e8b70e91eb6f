package repository

import (
	"context"
	"time"

	"AirCast/internal/domain/models"
)

// ReadingStore provides read access to the historical reading windows the
// forecasting core consumes. Results are ordered newest-first: index 0 is
// the most recent sample.
type ReadingStore interface {
	GetLatestN(ctx context.Context, area string, n int) ([]models.Reading, error)
	GetRange(ctx context.Context, area string, from, to time.Time) ([]models.Reading, error)
	LatestWeather(ctx context.Context, area string) (models.WeatherSnapshot, error)
}

// ForecastStore persists generated forecasts. Replace removes the previous
// forecast set for an area before inserting the new one. Latest returns the
// persisted set with the generation time it was written under.
type ForecastStore interface {
	Replace(ctx context.Context, area string, generatedAt time.Time, fs []models.EnhancedForecast) error
	Latest(ctx context.Context, area string) ([]models.EnhancedForecast, time.Time, error)
}
