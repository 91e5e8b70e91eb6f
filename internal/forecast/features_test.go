package forecast

import (
	"testing"
	"time"

	"AirCast/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

// hourlyHistory builds n newest-first readings with constant values.
func hourlyHistory(n int, aqi, pm25 float64) []models.Reading {
	out := make([]models.Reading, n)
	now := time.Date(2024, 10, 16, 11, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		out[i] = models.Reading{
			Timestamp: now.Add(-time.Duration(i) * time.Hour),
			AQI:       fp(aqi),
			PM25:      fp(pm25),
			PM10:      fp(pm25 * 1.5),
			NO2:       fp(30),
		}
	}
	return out
}

func TestRollingAvgSkipsNil(t *testing.T) {
	h := hourlyHistory(24, 100, 40)
	h[3].AQI = nil
	h[7].AQI = nil
	got := rollingAvg(h, 24, func(r models.Reading) *float64 { return r.AQI })
	if got != 100 {
		t.Fatalf("expected 100 got %v", got)
	}
}

func TestRollingAvgAllNil(t *testing.T) {
	h := hourlyHistory(24, 100, 40)
	for i := range h {
		h[i].SO2 = nil
	}
	got := rollingAvg(h, 24, func(r models.Reading) *float64 { return r.SO2 })
	if got != 0 {
		t.Fatalf("expected 0 for all-nil window, got %v", got)
	}
}

func TestTrend3h(t *testing.T) {
	h := hourlyHistory(24, 100, 40)
	h[0].AQI = fp(120)
	h[2].AQI = fp(90)
	got := trend3h(h, func(r models.Reading) *float64 { return r.AQI })
	if got != 30 {
		t.Fatalf("expected trend 30 got %v", got)
	}
}

func TestTrend3hSparse(t *testing.T) {
	h := hourlyHistory(24, 100, 40)
	h[0].AQI = nil
	h[1].AQI = nil
	got := trend3h(h, func(r models.Reading) *float64 { return r.AQI })
	if got != 0 {
		t.Fatalf("expected flat trend with <2 non-nil values, got %v", got)
	}
}

func TestSeasonForMonth(t *testing.T) {
	cases := map[int]string{
		12: models.SeasonWinter, 1: models.SeasonWinter, 2: models.SeasonWinter,
		3: models.SeasonSummer, 5: models.SeasonSummer,
		6: models.SeasonMonsoon, 9: models.SeasonMonsoon,
		10: models.SeasonPostMonsoon, 11: models.SeasonPostMonsoon,
	}
	for m, want := range cases {
		if got := SeasonForMonth(m); got != want {
			t.Fatalf("month %d: expected %s got %s", m, want, got)
		}
	}
}

func TestAreaTypeForDistrict(t *testing.T) {
	cases := map[string]string{
		"South Zone":          models.AreaSouth,
		"NORTH DELHI":         models.AreaNorth,
		"Central Business":    models.AreaCentral,
		"Eastern Suburbs":     models.AreaEast,
		"Unknown":             models.AreaWest,
		"":                    models.AreaWest,
		"central south mixed": models.AreaCentral, // priority order wins
	}
	for district, want := range cases {
		if got := AreaTypeForDistrict(district); got != want {
			t.Fatalf("district %q: expected %s got %s", district, want, got)
		}
	}
}

func TestExtractTemporalFields(t *testing.T) {
	h := hourlyHistory(24, 100, 40)
	now := time.Date(2024, 10, 18, 22, 0, 0, 0, time.UTC) // Friday
	wx := models.WeatherSnapshot{Temperature: 25, Humidity: 60, Pressure: 1013, WindSpeed: 2}
	area := models.AreaMeta{Name: "Riverside", District: "South Zone"}

	f := Extract(h, wx, area, 4, now) // Saturday 02:00
	if f.HourOfDay != 2 {
		t.Fatalf("expected hour 2 got %d", f.HourOfDay)
	}
	if f.DayOfWeek != 6 {
		t.Fatalf("expected Saturday(6) got %d", f.DayOfWeek)
	}
	if !f.IsWeekend {
		t.Fatalf("expected weekend")
	}
	if f.Month != 10 || f.Season != models.SeasonPostMonsoon {
		t.Fatalf("unexpected month/season %d/%s", f.Month, f.Season)
	}
	if f.AreaType != models.AreaSouth {
		t.Fatalf("expected south got %s", f.AreaType)
	}
	if f.AQI24hAvg != 100 || f.PM2524hAvg != 40 {
		t.Fatalf("unexpected rolling averages %v/%v", f.AQI24hAvg, f.PM2524hAvg)
	}
	if f.WindSpeed != 2 || f.Humidity != 60 {
		t.Fatalf("weather baseline not carried through")
	}
}
