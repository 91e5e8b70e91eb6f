package forecast

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"AirCast/internal/domain/models"
)

// Wednesday 11:00 UTC, post-monsoon; horizon 1 lands on a neutral weekday hour.
var frozenNow = time.Date(2024, 10, 16, 11, 0, 0, 0, time.UTC)

func testGenerator() *Generator {
	return NewGenerator(WithNow(func() time.Time { return frozenNow }))
}

func calmWeather() models.WeatherSnapshot {
	return models.WeatherSnapshot{Temperature: 25, Humidity: 60, Pressure: 1013, WindSpeed: 2}
}

func TestGenerateSequenceShape(t *testing.T) {
	g := testGenerator()
	fs, err := g.Generate(hourlyHistory(30, 100, 40), calmWeather(), models.AreaMeta{Name: "Midtown", District: "Central"}, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fs) != 12 {
		t.Fatalf("expected 12 forecasts got %d", len(fs))
	}
	for i, f := range fs {
		if f.HorizonHours != i+1 {
			t.Fatalf("horizon at index %d: expected %d got %d", i, i+1, f.HorizonHours)
		}
	}
}

func TestGenerateInsufficientHistory(t *testing.T) {
	g := testGenerator()
	_, err := g.Generate(hourlyHistory(23, 100, 40), calmWeather(), models.AreaMeta{}, 1)
	if !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory got %v", err)
	}

	if _, err := g.Generate(hourlyHistory(24, 100, 40), calmWeather(), models.AreaMeta{}, 1); err != nil {
		t.Fatalf("24 readings must be enough: %v", err)
	}
}

func TestGenerateInvalidInput(t *testing.T) {
	g := testGenerator()
	for _, hours := range []int{0, -1} {
		_, err := g.Generate(hourlyHistory(30, 100, 40), calmWeather(), models.AreaMeta{}, hours)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("hours=%d: expected ErrInvalidInput got %v", hours, err)
		}
	}

	h := hourlyHistory(30, 100, 40)
	h[5].Timestamp = time.Time{}
	_, err := g.Generate(h, calmWeather(), models.AreaMeta{}, 1)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero timestamp: expected ErrInvalidInput got %v", err)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := testGenerator()
	area := models.AreaMeta{Name: "Harbor", District: "East Side"}
	a, err := g.Generate(hourlyHistory(30, 100, 40), calmWeather(), area, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := g.Generate(hourlyHistory(30, 100, 40), calmWeather(), area, 24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical inputs under a frozen clock must produce identical output")
	}
}

func TestGenerateSteadyStateScenario(t *testing.T) {
	g := testGenerator()
	fs, err := g.Generate(hourlyHistory(30, 100, 40), calmWeather(), models.AreaMeta{Name: "Flats", District: "West End"}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := fs[0]
	// no trend, all multipliers neutral: the ensemble reproduces the baseline
	if f.PredictedAQI < 97 || f.PredictedAQI > 103 {
		t.Fatalf("steady state aqi should stay near 100, got %d", f.PredictedAQI)
	}
	if f.ConfidenceScore != 0.88 {
		t.Fatalf("expected confidence 0.88 got %v", f.ConfidenceScore)
	}
}

func TestGenerateConfidenceDecay(t *testing.T) {
	g := testGenerator()
	fs, err := g.Generate(hourlyHistory(30, 100, 40), calmWeather(), models.AreaMeta{}, 48)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(fs); i++ {
		if fs[i].ConfidenceScore > fs[i-1].ConfidenceScore {
			t.Fatalf("confidence must be non-increasing: h=%d %v > h=%d %v",
				i+1, fs[i].ConfidenceScore, i, fs[i-1].ConfidenceScore)
		}
	}
	if fs[47].ConfidenceScore >= fs[0].ConfidenceScore {
		t.Fatalf("48h confidence must sit visibly below 1h")
	}
}

func TestGenerateBounds(t *testing.T) {
	g := testGenerator()
	h := hourlyHistory(30, 480, 320)
	wx := models.WeatherSnapshot{Temperature: 42, Humidity: 95, Pressure: 990, WindSpeed: 0.2}
	fs, err := g.Generate(h, wx, models.AreaMeta{District: "North"}, 48)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range fs {
		if f.PredictedAQI < 0 || f.PredictedAQI > 500 {
			t.Fatalf("aqi out of range: %d", f.PredictedAQI)
		}
		if f.PredictedPM25 < 0 || f.PredictedPM10 < 0 {
			t.Fatalf("particulates must be non-negative")
		}
		if f.ConfidenceScore < 0.1 || f.ConfidenceScore > 1.0 {
			t.Fatalf("confidence out of range: %v", f.ConfidenceScore)
		}
	}
}
