package forecast

import (
	"strings"
	"time"

	"AirCast/internal/domain/models"
)

// MinHistory is the minimum number of hourly readings required to build a
// feature vector. The rolling averages below read exactly this many samples.
const MinHistory = 24

// Extract builds the feature vector for a single target hour. History must be
// ordered newest-first (index 0 is the most recent sample); the caller is
// responsible for enforcing len(history) >= MinHistory.
func Extract(history []models.Reading, weather models.WeatherSnapshot, area models.AreaMeta, horizonHours int, now time.Time) models.FeatureVector {
	target := now.Add(time.Duration(horizonHours) * time.Hour)
	wd := int(target.Weekday())

	return models.FeatureVector{
		AQI24hAvg:  rollingAvg(history, MinHistory, func(r models.Reading) *float64 { return r.AQI }),
		PM2524hAvg: rollingAvg(history, MinHistory, func(r models.Reading) *float64 { return r.PM25 }),
		PM1024hAvg: rollingAvg(history, MinHistory, func(r models.Reading) *float64 { return r.PM10 }),
		NO224hAvg:  rollingAvg(history, MinHistory, func(r models.Reading) *float64 { return r.NO2 }),

		AQITrend3h:  trend3h(history, func(r models.Reading) *float64 { return r.AQI }),
		PM25Trend3h: trend3h(history, func(r models.Reading) *float64 { return r.PM25 }),

		Temperature: weather.Temperature,
		Humidity:    weather.Humidity,
		Pressure:    weather.Pressure,
		WindSpeed:   weather.WindSpeed,
		WindDir:     weather.WindDirection,

		HourOfDay: target.Hour(),
		DayOfWeek: wd,
		Month:     int(target.Month()),
		IsWeekend: wd == 0 || wd == 6,
		Season:    SeasonForMonth(int(target.Month())),
		AreaType:  AreaTypeForDistrict(area.District),
	}
}

// rollingAvg averages the non-nil values of a field among the newest n
// readings. A window with zero non-nil values yields 0, not NaN, so downstream
// arithmetic stays total.
func rollingAvg(history []models.Reading, n int, get func(models.Reading) *float64) float64 {
	if n > len(history) {
		n = len(history)
	}
	sum := 0.0
	count := 0
	for i := 0; i < n; i++ {
		if v := get(history[i]); v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// trend3h is the most recent value minus the oldest of the newest three.
// Fewer than two non-nil values in that window yields a flat trend.
func trend3h(history []models.Reading, get func(models.Reading) *float64) float64 {
	n := 3
	if n > len(history) {
		n = len(history)
	}
	var newest, oldest *float64
	nonNil := 0
	for i := 0; i < n; i++ {
		v := get(history[i])
		if v == nil {
			continue
		}
		nonNil++
		if newest == nil {
			newest = v
		}
		oldest = v
	}
	if nonNil < 2 {
		return 0
	}
	return *newest - *oldest
}

// SeasonForMonth maps a calendar month (1-12) to the local season label.
func SeasonForMonth(month int) string {
	switch month {
	case 12, 1, 2:
		return models.SeasonWinter
	case 3, 4, 5:
		return models.SeasonSummer
	case 6, 7, 8, 9:
		return models.SeasonMonsoon
	default:
		return models.SeasonPostMonsoon
	}
}

// AreaTypeForDistrict classifies a free-text district name into a coarse
// region. First substring match wins; unmatched districts fall to west.
func AreaTypeForDistrict(district string) string {
	d := strings.ToLower(district)
	for _, at := range []string{models.AreaCentral, models.AreaNorth, models.AreaSouth, models.AreaEast} {
		if strings.Contains(d, at) {
			return at
		}
	}
	return models.AreaWest
}
