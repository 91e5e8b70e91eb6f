package models

import "time"

// Reading is a single historical sensor/weather sample for an area.
// Pollutant and weather fields are optional: a nil pointer means the
// station did not report that field for this hour.
type Reading struct {
	Timestamp     time.Time `json:"timestamp"`
	AQI           *float64  `json:"aqi,omitempty"`
	PM25          *float64  `json:"pm25,omitempty"`
	PM10          *float64  `json:"pm10,omitempty"`
	NO2           *float64  `json:"no2,omitempty"`
	SO2           *float64  `json:"so2,omitempty"`
	CO            *float64  `json:"co,omitempty"`
	O3            *float64  `json:"o3,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	Humidity      *float64  `json:"humidity,omitempty"`
	Pressure      *float64  `json:"pressure,omitempty"`
	WindSpeed     *float64  `json:"wind_speed,omitempty"`
	WindDirection *float64  `json:"wind_direction,omitempty"`
	Visibility    *float64  `json:"visibility,omitempty"`
}

// AreaMeta identifies a monitored city area. Latitude/longitude are carried
// for traceability only; the forecasting core never uses them numerically.
type AreaMeta struct {
	Name      string  `json:"name"`
	District  string  `json:"district"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherSnapshot holds current conditions used as the weather baseline
// for every forecast horizon of a generation call.
type WeatherSnapshot struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
}
