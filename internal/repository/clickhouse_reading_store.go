package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"AirCast/internal/domain/models"
	"AirCast/internal/domain/repository"
)

// Neutral weather baseline used when the latest reading carries no value
// for a field. These sit at the predictors' factor pivot points so a
// missing field contributes a 1.0 factor rather than skewing the forecast.
const (
	neutralTemperature = 25.0
	neutralHumidity    = 60.0
	neutralPressure    = 1013.0
	neutralWindSpeed   = 2.0
)

// CHReadingStore implements ReadingStore over the aq_readings table.
type CHReadingStore struct {
	db    *sql.DB
	table string
}

// NewCHReadingStore creates a ClickHouse-backed reading store.
func NewCHReadingStore(db *sql.DB, table string) repository.ReadingStore {
	return &CHReadingStore{db: db, table: table}
}

const readingSelectColumns = `ts, aqi, pm25, pm10, no2, so2, co, o3,
	temperature, humidity, pressure, wind_speed, wind_direction, visibility`

// GetLatestN returns up to n readings for an area, newest first.
func (s *CHReadingStore) GetLatestN(ctx context.Context, area string, n int) ([]models.Reading, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE area = ? ORDER BY ts DESC LIMIT ?", readingSelectColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, area, n)
	if err != nil {
		return nil, fmt.Errorf("query latest readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// GetRange returns readings within [from, to], newest first.
func (s *CHReadingStore) GetRange(ctx context.Context, area string, from, to time.Time) ([]models.Reading, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE area = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC", readingSelectColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, area, from, to)
	if err != nil {
		return nil, fmt.Errorf("query reading range: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// LatestWeather builds the current-conditions snapshot from the most
// recent reading. Missing fields fall back to neutral values.
func (s *CHReadingStore) LatestWeather(ctx context.Context, area string) (models.WeatherSnapshot, error) {
	q := fmt.Sprintf(`SELECT temperature, humidity, pressure, wind_speed, wind_direction
		FROM %s WHERE area = ? ORDER BY ts DESC LIMIT 1`, s.table)

	var temp, hum, press, wind, windDir sql.NullFloat64
	err := s.db.QueryRowContext(ctx, q, area).Scan(&temp, &hum, &press, &wind, &windDir)
	if err != nil {
		if err == sql.ErrNoRows {
			return neutralWeather(), nil
		}
		return models.WeatherSnapshot{}, fmt.Errorf("query latest weather: %w", err)
	}

	w := neutralWeather()
	if temp.Valid {
		w.Temperature = temp.Float64
	}
	if hum.Valid {
		w.Humidity = hum.Float64
	}
	if press.Valid {
		w.Pressure = press.Float64
	}
	if wind.Valid {
		w.WindSpeed = wind.Float64
	}
	if windDir.Valid {
		w.WindDirection = windDir.Float64
	}
	return w, nil
}

func neutralWeather() models.WeatherSnapshot {
	return models.WeatherSnapshot{
		Temperature: neutralTemperature,
		Humidity:    neutralHumidity,
		Pressure:    neutralPressure,
		WindSpeed:   neutralWindSpeed,
	}
}

func scanReadings(rows *sql.Rows) ([]models.Reading, error) {
	var readings []models.Reading
	for rows.Next() {
		var (
			ts   time.Time
			vals [13]sql.NullFloat64
		)
		dest := make([]interface{}, 0, 14)
		dest = append(dest, &ts)
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}

		r := models.Reading{Timestamp: ts}
		assign := func(i int, f **float64) {
			if vals[i].Valid {
				v := vals[i].Float64
				*f = &v
			}
		}
		assign(0, &r.AQI)
		assign(1, &r.PM25)
		assign(2, &r.PM10)
		assign(3, &r.NO2)
		assign(4, &r.SO2)
		assign(5, &r.CO)
		assign(6, &r.O3)
		assign(7, &r.Temperature)
		assign(8, &r.Humidity)
		assign(9, &r.Pressure)
		assign(10, &r.WindSpeed)
		assign(11, &r.WindDirection)
		assign(12, &r.Visibility)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}
