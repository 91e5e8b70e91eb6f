package forecast

import (
	"math"

	"AirCast/internal/domain/models"
)

// pollutantMultipliers is a per-pollutant scaling triple used by the seasonal model.
type pollutantMultipliers struct {
	AQI  float64
	PM25 float64
	PM10 float64
}

// seasonMultipliers: winter traps pollutants near ground, monsoon rain washes
// them out, summer and post-monsoon sit in between.
var seasonMultipliers = map[string]pollutantMultipliers{
	models.SeasonWinter:      {AQI: 1.3, PM25: 1.4, PM10: 1.3},
	models.SeasonSummer:      {AQI: 1.1, PM25: 1.0, PM10: 1.2},
	models.SeasonMonsoon:     {AQI: 0.6, PM25: 0.6, PM10: 0.7},
	models.SeasonPostMonsoon: {AQI: 1.0, PM25: 1.0, PM10: 1.0},
}

// hourlyMultipliers captures the two traffic peaks (07-10, 18-21) and the
// night trough (00-05). Hours without an entry multiply by 1.0 — an absent
// key is a neutral hour, never a zero.
var hourlyMultipliers = map[int]float64{
	0: 0.6, 1: 0.6, 2: 0.6, 3: 0.65, 4: 0.65, 5: 0.7,
	7: 1.3, 8: 1.5, 9: 1.4, 10: 1.2,
	18: 1.3, 19: 1.5, 20: 1.4, 21: 1.2,
}

const weekendMultiplier = 0.85

func hourlyMultiplier(hour int) float64 {
	if m, ok := hourlyMultipliers[hour]; ok {
		return m
	}
	return 1.0
}

// PredictLinearTrend extrapolates the 3h trend onto the 24h baseline, with the
// trend contribution saturating at a full day out. PM10 intentionally rides on
// the PM2.5 trend scaled by 1.2: the two particulate fractions are tightly
// correlated and PM10 trend data is too sparse to trust on its own.
func PredictLinearTrend(f models.FeatureVector, horizonHours int) models.ComponentOutput {
	scale := math.Min(float64(horizonHours)/24.0, 1.0)
	return models.ComponentOutput{
		AQI:  f.AQI24hAvg + f.AQITrend3h*scale,
		PM25: f.PM2524hAvg + f.PM25Trend3h*scale,
		PM10: f.PM1024hAvg + f.PM25Trend3h*1.2*scale,
	}
}

// PredictSeasonal applies the season, hour-of-day and weekend multipliers to
// the 24h baselines.
func PredictSeasonal(f models.FeatureVector, _ int) models.ComponentOutput {
	sm, ok := seasonMultipliers[f.Season]
	if !ok {
		sm = pollutantMultipliers{AQI: 1, PM25: 1, PM10: 1}
	}
	hm := hourlyMultiplier(f.HourOfDay)
	wm := 1.0
	if f.IsWeekend {
		wm = weekendMultiplier
	}
	return models.ComponentOutput{
		AQI:  f.AQI24hAvg * sm.AQI * hm * wm,
		PM25: f.PM2524hAvg * sm.PM25 * hm * wm,
		PM10: f.PM1024hAvg * sm.PM10 * hm * wm,
	}
}

// PredictWeatherResponse scales the 24h baselines by four independent weather
// factors. Wind disperses pollutants (floored at 0.5), humidity and heat hold
// them, low pressure lets them accumulate. All factors apply uniformly across
// the three pollutants.
func PredictWeatherResponse(f models.FeatureVector, _ int) models.ComponentOutput {
	wind := math.Max(0.5, 1-(f.WindSpeed-2)*0.1)
	humidity := 1 + (f.Humidity-60)*0.005
	temp := 1 + (f.Temperature-25)*0.01
	pressure := 1 + (1013-f.Pressure)*0.001
	factor := wind * humidity * temp * pressure

	return models.ComponentOutput{
		AQI:  f.AQI24hAvg * factor,
		PM25: f.PM2524hAvg * factor,
		PM10: f.PM1024hAvg * factor,
	}
}
