package forecast

import (
	"math"

	"AirCast/internal/domain/models"
)

// ModelVersion tags every forecast produced by this ensemble.
const ModelVersion = "aircast-ensemble-v1"

// Fixed ensemble weights; they sum to 1.0 and are not configurable per call.
const (
	weightLinear   = 0.3
	weightSeasonal = 0.4
	weightWeather  = 0.3
)

// Confidence factors per season: monsoon weather is the most volatile,
// post-monsoon the most stable.
var seasonConfidence = map[string]float64{
	models.SeasonMonsoon:     0.6,
	models.SeasonSummer:      0.8,
	models.SeasonWinter:      0.85,
	models.SeasonPostMonsoon: 0.9,
}

// Combine merges the three component outputs into the hour's forecast.
// AQI is clamped to the 0-500 index scale; particulates are floored at zero
// but have no upper clamp.
func Combine(linear, seasonal, weather models.ComponentOutput, f models.FeatureVector, horizonHours int) models.Forecast {
	aqi := weightLinear*linear.AQI + weightSeasonal*seasonal.AQI + weightWeather*weather.AQI
	pm25 := weightLinear*linear.PM25 + weightSeasonal*seasonal.PM25 + weightWeather*weather.PM25
	pm10 := weightLinear*linear.PM10 + weightSeasonal*seasonal.PM10 + weightWeather*weather.PM10

	return models.Forecast{
		PredictedAQI:    clampAQI(int(math.Round(aqi))),
		PredictedPM25:   math.Max(0, round1(pm25)),
		PredictedPM10:   math.Max(0, round1(pm10)),
		ConfidenceScore: confidence(f, horizonHours),
		HorizonHours:    horizonHours,
		Features:        f,
		ModelVersion:    ModelVersion,
	}
}

// confidence starts from the horizon decay and is damped by extreme wind,
// extreme humidity and the season factor, then clamped to [0.1, 1.0].
func confidence(f models.FeatureVector, horizonHours int) float64 {
	c := math.Max(0.3, 1-float64(horizonHours)/48.0)
	if f.WindSpeed > 10 || f.WindSpeed < 0.5 {
		c *= 0.8
	}
	if f.Humidity > 90 || f.Humidity < 20 {
		c *= 0.9
	}
	if sf, ok := seasonConfidence[f.Season]; ok {
		c *= sf
	}
	if c < 0.1 {
		c = 0.1
	}
	if c > 1.0 {
		c = 1.0
	}
	return round2(c)
}

// ClampAQI bounds an AQI value to the 0-500 index scale. Exposed for
// post-adjustment layers that must honor the same bounds as the ensemble.
func ClampAQI(v int) int { return clampAQI(v) }

// FloorPM floors a particulate concentration at zero and rounds it to one
// decimal, matching the ensemble's output resolution.
func FloorPM(v float64) float64 { return math.Max(0, round1(v)) }

// ClampConfidence bounds a confidence score to [0.1, 1.0] at two decimals.
func ClampConfidence(v float64) float64 {
	if v < 0.1 {
		v = 0.1
	}
	if v > 1.0 {
		v = 1.0
	}
	return round2(v)
}

func clampAQI(v int) int {
	if v < 0 {
		return 0
	}
	if v > 500 {
		return 500
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
