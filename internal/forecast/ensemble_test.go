package forecast

import (
	"testing"

	"AirCast/internal/domain/models"
)

func TestCombineWeights(t *testing.T) {
	f := baseFeatures()
	linear := models.ComponentOutput{AQI: 100, PM25: 40, PM10: 60}
	seasonal := models.ComponentOutput{AQI: 200, PM25: 50, PM10: 70}
	weather := models.ComponentOutput{AQI: 100, PM25: 40, PM10: 60}

	got := Combine(linear, seasonal, weather, f, 1)
	// 0.3*100 + 0.4*200 + 0.3*100 = 140
	if got.PredictedAQI != 140 {
		t.Fatalf("expected aqi 140 got %d", got.PredictedAQI)
	}
	// 0.3*40 + 0.4*50 + 0.3*40 = 44
	if got.PredictedPM25 != 44.0 {
		t.Fatalf("expected pm25 44.0 got %v", got.PredictedPM25)
	}
	if got.ModelVersion != ModelVersion {
		t.Fatalf("missing model version tag")
	}
	if got.HorizonHours != 1 {
		t.Fatalf("horizon not carried")
	}
}

func TestCombineClampsAQI(t *testing.T) {
	f := baseFeatures()
	huge := models.ComponentOutput{AQI: 4000, PM25: 900, PM10: 1200}
	got := Combine(huge, huge, huge, f, 1)
	if got.PredictedAQI != 500 {
		t.Fatalf("aqi must clamp to 500, got %d", got.PredictedAQI)
	}
	// particulates have no upper clamp
	if got.PredictedPM25 != 900.0 {
		t.Fatalf("pm25 must not be clamped above, got %v", got.PredictedPM25)
	}

	neg := models.ComponentOutput{AQI: -50, PM25: -10, PM10: -10}
	got = Combine(neg, neg, neg, f, 1)
	if got.PredictedAQI != 0 || got.PredictedPM25 != 0 || got.PredictedPM10 != 0 {
		t.Fatalf("negative outputs must floor at 0, got %+v", got)
	}
}

func TestConfidenceWorkedExample(t *testing.T) {
	f := baseFeatures() // wind 2, humidity 60, post-monsoon
	// (1 - 1/48) * 0.9 = 0.88125 -> 0.88
	if c := confidence(f, 1); c != 0.88 {
		t.Fatalf("expected 0.88 got %v", c)
	}
}

func TestConfidenceHorizonFloor(t *testing.T) {
	f := baseFeatures()
	// max(0.3, 1-48/48) * 0.9 = 0.27
	if c := confidence(f, 48); c != 0.27 {
		t.Fatalf("expected 0.27 got %v", c)
	}
	// beyond the floor the decay term stops changing
	if confidence(f, 60) != confidence(f, 48) {
		t.Fatalf("decay must floor at 0.3")
	}
}

func TestConfidencePenalties(t *testing.T) {
	f := baseFeatures()
	base := confidence(f, 1)

	f.WindSpeed = 12
	windy := confidence(f, 1)
	if windy >= base {
		t.Fatalf("extreme wind must reduce confidence: %v vs %v", windy, base)
	}

	f = baseFeatures()
	f.Humidity = 95
	humid := confidence(f, 1)
	if humid >= base {
		t.Fatalf("extreme humidity must reduce confidence: %v vs %v", humid, base)
	}

	f = baseFeatures()
	f.Season = models.SeasonMonsoon
	monsoon := confidence(f, 1)
	if monsoon >= base {
		t.Fatalf("monsoon must reduce confidence: %v vs %v", monsoon, base)
	}
}

func TestConfidenceBounds(t *testing.T) {
	f := baseFeatures()
	f.WindSpeed = 15
	f.Humidity = 95
	f.Season = models.SeasonMonsoon
	c := confidence(f, 72)
	if c < 0.1 || c > 1.0 {
		t.Fatalf("confidence out of bounds: %v", c)
	}
}
