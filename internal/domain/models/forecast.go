package models

import "time"

// Season labels used by the seasonal predictor and confidence scoring.
const (
	SeasonWinter      = "winter"
	SeasonSummer      = "summer"
	SeasonMonsoon     = "monsoon"
	SeasonPostMonsoon = "post_monsoon"
)

// Area type labels derived from the district name.
const (
	AreaCentral = "central"
	AreaNorth   = "north"
	AreaSouth   = "south"
	AreaEast    = "east"
	AreaWest    = "west"
)

// FeatureVector is the engineered input for one target hour. It is built
// fresh per horizon by the feature extractor and carried on the resulting
// forecast for traceability.
type FeatureVector struct {
	AQI24hAvg  float64 `json:"aqi_24h_avg"`
	PM2524hAvg float64 `json:"pm25_24h_avg"`
	PM1024hAvg float64 `json:"pm10_24h_avg"`
	NO224hAvg  float64 `json:"no2_24h_avg"`

	AQITrend3h  float64 `json:"aqi_trend_3h"`
	PM25Trend3h float64 `json:"pm25_trend_3h"`

	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	WindSpeed   float64 `json:"wind_speed"`
	WindDir     float64 `json:"wind_direction"`

	HourOfDay int    `json:"hour_of_day"`
	DayOfWeek int    `json:"day_of_week"`
	Month     int    `json:"month"`
	IsWeekend bool   `json:"is_weekend"`
	Season    string `json:"season"`
	AreaType  string `json:"area_type"`
}

// ComponentOutput is the unclamped prediction of a single component model.
type ComponentOutput struct {
	AQI  float64
	PM25 float64
	PM10 float64
}

// Forecast is one hour's ensemble prediction for an area.
type Forecast struct {
	PredictedAQI    int           `json:"predicted_aqi"`
	PredictedPM25   float64       `json:"predicted_pm25"`
	PredictedPM10   float64       `json:"predicted_pm10"`
	ConfidenceScore float64       `json:"confidence_score"`
	HorizonHours    int           `json:"horizon_hours"`
	Features        FeatureVector `json:"features"`
	ModelVersion    string        `json:"model_version"`
}

// EnhancedForecast wraps a baseline forecast with the optional adjustments
// returned by the external generative service. When the enhancer fails or is
// disabled the baseline is carried through untouched and Enhanced is false.
type EnhancedForecast struct {
	Forecast
	Enhanced  bool    `json:"enhanced"`
	AQIDelta  int     `json:"aqi_delta,omitempty"`
	PM25Delta float64 `json:"pm25_delta,omitempty"`
	Insight   string  `json:"insight,omitempty"`
}

// ForecastSet is the full response for one area.
type ForecastSet struct {
	Area        AreaMeta           `json:"area"`
	GeneratedAt time.Time          `json:"generated_at"`
	Forecasts   []EnhancedForecast `json:"forecasts"`
}

// Alert is raised when a pollutant in the latest reading crosses its
// configured threshold for an area.
type Alert struct {
	Area        string    `json:"area"`
	Pollutant   string    `json:"pollutant"`
	Level       string    `json:"level"` // "warning" | "critical"
	Value       float64   `json:"value"`
	Threshold   float64   `json:"threshold"`
	TriggeredAt time.Time `json:"triggered_at"`
}
