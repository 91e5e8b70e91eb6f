package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"AirCast/internal/domain/models"
	"AirCast/internal/domain/repository"
	"AirCast/internal/forecast"
)

// CHForecastStore implements ForecastStore over the aq_forecasts table.
type CHForecastStore struct {
	db    *sql.DB
	table string
}

// NewCHForecastStore creates a ClickHouse-backed forecast store.
func NewCHForecastStore(db *sql.DB, table string) repository.ForecastStore {
	return &CHForecastStore{db: db, table: table}
}

// Replace drops the previous forecast set for an area and inserts the new
// one. Readers joining mid-replace may see a partial set for a moment; the
// batch runner is the only writer so sets never interleave.
func (s *CHForecastStore) Replace(ctx context.Context, area string, generatedAt time.Time, fs []models.EnhancedForecast) error {
	del := fmt.Sprintf("ALTER TABLE %s DELETE WHERE area = ?", s.table)
	if _, err := s.db.ExecContext(ctx, del, area); err != nil {
		return fmt.Errorf("delete forecasts: %w", err)
	}
	if len(fs) == 0 {
		return nil
	}

	values := make([]string, 0, len(fs))
	args := make([]interface{}, 0, len(fs)*12)
	for _, f := range fs {
		enhanced := uint8(0)
		if f.Enhanced {
			enhanced = 1
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			area,
			generatedAt,
			int32(f.HorizonHours),
			int32(f.PredictedAQI),
			f.PredictedPM25,
			f.PredictedPM10,
			f.ConfidenceScore,
			f.ModelVersion,
			enhanced,
			int32(f.AQIDelta),
			f.PM25Delta,
			f.Insight,
		)
	}

	q := fmt.Sprintf(`INSERT INTO %s (area, generated_at, horizon_hours, predicted_aqi,
		predicted_pm25, predicted_pm10, confidence, model_version, enhanced,
		aqi_delta, pm25_delta, insight) VALUES %s`, s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert forecasts: %w", err)
	}
	return nil
}

// Latest returns the persisted forecast set for an area ordered by horizon,
// along with the batch generation time it was written under.
func (s *CHForecastStore) Latest(ctx context.Context, area string) ([]models.EnhancedForecast, time.Time, error) {
	q := fmt.Sprintf(`SELECT generated_at, horizon_hours, predicted_aqi, predicted_pm25, predicted_pm10,
		confidence, model_version, enhanced, aqi_delta, pm25_delta, insight
		FROM %s WHERE area = ? ORDER BY horizon_hours ASC`, s.table)

	rows, err := s.db.QueryContext(ctx, q, area)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	var (
		out         []models.EnhancedForecast
		generatedAt time.Time
	)
	for rows.Next() {
		var (
			f        models.EnhancedForecast
			gen      time.Time
			horizon  int32
			aqi      int32
			enhanced uint8
			aqiDelta int32
		)
		if err := rows.Scan(&gen, &horizon, &aqi, &f.PredictedPM25, &f.PredictedPM10,
			&f.ConfidenceScore, &f.ModelVersion, &enhanced, &aqiDelta,
			&f.PM25Delta, &f.Insight); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan forecast: %w", err)
		}
		f.HorizonHours = int(horizon)
		f.PredictedAQI = int(aqi)
		f.Enhanced = enhanced == 1
		f.AQIDelta = int(aqiDelta)
		if f.ModelVersion == "" {
			f.ModelVersion = forecast.ModelVersion
		}
		if gen.After(generatedAt) {
			generatedAt = gen
		}
		out = append(out, f)
	}
	return out, generatedAt, rows.Err()
}
