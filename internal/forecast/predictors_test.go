package forecast

import (
	"math"
	"testing"

	"AirCast/internal/domain/models"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func baseFeatures() models.FeatureVector {
	return models.FeatureVector{
		AQI24hAvg:   100,
		PM2524hAvg:  40,
		PM1024hAvg:  60,
		AQITrend3h:  12,
		PM25Trend3h: 6,
		Temperature: 25,
		Humidity:    60,
		Pressure:    1013,
		WindSpeed:   2,
		HourOfDay:   12,
		Month:       10,
		Season:      models.SeasonPostMonsoon,
	}
}

func TestLinearTrendScaling(t *testing.T) {
	f := baseFeatures()

	got := PredictLinearTrend(f, 12)
	if !almost(got.AQI, 100+12*0.5) {
		t.Fatalf("aqi at 12h: expected 106 got %v", got.AQI)
	}
	if !almost(got.PM25, 40+6*0.5) {
		t.Fatalf("pm25 at 12h: expected 43 got %v", got.PM25)
	}

	// trend contribution saturates at 24h
	at24 := PredictLinearTrend(f, 24)
	at48 := PredictLinearTrend(f, 48)
	if !almost(at24.AQI, at48.AQI) {
		t.Fatalf("trend must saturate at 24h: %v vs %v", at24.AQI, at48.AQI)
	}
}

func TestLinearTrendPM10RidesPM25(t *testing.T) {
	f := baseFeatures()
	got := PredictLinearTrend(f, 24)
	if !almost(got.PM10, 60+6*1.2) {
		t.Fatalf("pm10 must follow pm25 trend x1.2, got %v", got.PM10)
	}
}

func TestSeasonalNeutralHour(t *testing.T) {
	f := baseFeatures() // hour 12 has no multiplier entry, post-monsoon, weekday
	got := PredictSeasonal(f, 1)
	if !almost(got.AQI, 100) || !almost(got.PM25, 40) || !almost(got.PM10, 60) {
		t.Fatalf("neutral hour must pass baselines through, got %+v", got)
	}
}

func TestSeasonalRushHourAndWeekend(t *testing.T) {
	f := baseFeatures()
	f.HourOfDay = 8
	rush := PredictSeasonal(f, 1)
	if !almost(rush.AQI, 150) {
		t.Fatalf("08:00 peak: expected 150 got %v", rush.AQI)
	}

	f.IsWeekend = true
	weekend := PredictSeasonal(f, 1)
	if !almost(weekend.AQI, 150*weekendMultiplier) {
		t.Fatalf("weekend damping missing: got %v", weekend.AQI)
	}
}

func TestSeasonalMonsoonSuppression(t *testing.T) {
	f := baseFeatures()
	f.Season = models.SeasonMonsoon
	got := PredictSeasonal(f, 1)
	if got.AQI >= 100 || got.PM25 >= 40 {
		t.Fatalf("monsoon must suppress, got %+v", got)
	}
	if !almost(got.PM10, 60*0.7) {
		t.Fatalf("monsoon pm10: expected 42 got %v", got.PM10)
	}
}

func TestWeatherResponseNeutral(t *testing.T) {
	f := baseFeatures() // wind 2, humidity 60, temp 25, pressure 1013: all factors 1
	got := PredictWeatherResponse(f, 1)
	if !almost(got.AQI, 100) || !almost(got.PM25, 40) || !almost(got.PM10, 60) {
		t.Fatalf("neutral weather must pass baselines through, got %+v", got)
	}
}

func TestWeatherResponseWindFloor(t *testing.T) {
	f := baseFeatures()
	f.WindSpeed = 20 // raw factor would be -0.8; floor at 0.5
	got := PredictWeatherResponse(f, 1)
	if !almost(got.AQI, 50) {
		t.Fatalf("wind floor: expected 50 got %v", got.AQI)
	}
}

func TestWeatherResponseFactorsMultiply(t *testing.T) {
	f := baseFeatures()
	f.Humidity = 80    // 1.1
	f.Temperature = 35 // 1.1
	f.Pressure = 1003  // 1.01
	got := PredictWeatherResponse(f, 1)
	want := 100 * 1.1 * 1.1 * 1.01
	if !almost(got.AQI, want) {
		t.Fatalf("expected %v got %v", want, got.AQI)
	}
}

func TestHourlyMultiplierDefault(t *testing.T) {
	for _, h := range []int{6, 11, 12, 13, 14, 15, 16, 17, 22, 23} {
		if hourlyMultiplier(h) != 1.0 {
			t.Fatalf("hour %d must default to 1.0", h)
		}
	}
	if hourlyMultiplier(8) != 1.5 || hourlyMultiplier(19) != 1.5 {
		t.Fatalf("peak hours must hit 1.5")
	}
	if hourlyMultiplier(0) != 0.6 {
		t.Fatalf("night trough must hit 0.6")
	}
}
