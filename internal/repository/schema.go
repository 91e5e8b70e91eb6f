package repository

import "fmt"

// SchemaStatements returns idempotent DDL for the reading and forecast
// tables. Pollutant and weather columns on aq_readings are Nullable:
// stations frequently omit fields, and the feature extractor treats a
// missing value differently from zero.
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.aq_readings (
			ts DateTime,
			area LowCardinality(String),
			aqi Nullable(Float64),
			pm25 Nullable(Float64),
			pm10 Nullable(Float64),
			no2 Nullable(Float64),
			so2 Nullable(Float64),
			co Nullable(Float64),
			o3 Nullable(Float64),
			temperature Nullable(Float64),
			humidity Nullable(Float64),
			pressure Nullable(Float64),
			wind_speed Nullable(Float64),
			wind_direction Nullable(Float64),
			visibility Nullable(Float64)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(ts)
		ORDER BY (area, ts)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.aq_forecasts (
			area LowCardinality(String),
			generated_at DateTime,
			horizon_hours Int32,
			predicted_aqi Int32,
			predicted_pm25 Float64,
			predicted_pm10 Float64,
			confidence Float64,
			model_version String,
			enhanced UInt8,
			aqi_delta Int32,
			pm25_delta Float64,
			insight String
		) ENGINE = MergeTree()
		ORDER BY (area, generated_at, horizon_hours)`, database),
	}
}
