package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"AirCast/internal/domain/models"
	"AirCast/internal/forecast"
	"AirCast/pkg/cache"
	"AirCast/pkg/config"
	"AirCast/pkg/logger"
)

func fp(v float64) *float64 { return &v }

type fakeReadingStore struct {
	history     []models.Reading
	weather     models.WeatherSnapshot
	err         error
	latestCalls int
	rangeFrom   time.Time
	rangeTo     time.Time
}

func (s *fakeReadingStore) GetLatestN(_ context.Context, _ string, n int) ([]models.Reading, error) {
	s.latestCalls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.history) > n {
		return s.history[:n], nil
	}
	return s.history, nil
}

func (s *fakeReadingStore) GetRange(_ context.Context, _ string, from, to time.Time) ([]models.Reading, error) {
	s.rangeFrom, s.rangeTo = from, to
	return s.history, s.err
}

func (s *fakeReadingStore) LatestWeather(_ context.Context, _ string) (models.WeatherSnapshot, error) {
	return s.weather, s.err
}

type fakeEnhancer struct {
	err   error
	calls int
}

func (e *fakeEnhancer) Enhance(_ context.Context, _ models.AreaMeta, baseline []models.Forecast) ([]models.EnhancedForecast, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([]models.EnhancedForecast, 0, len(baseline))
	for _, f := range baseline {
		ef := models.EnhancedForecast{Forecast: f, Enhanced: true, AQIDelta: 5, Insight: "haze building"}
		ef.PredictedAQI = forecast.ClampAQI(f.PredictedAQI + 5)
		out = append(out, ef)
	}
	return out, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Backend.Type = "clickhouse"
	cfg.Forecast.Areas = []config.Area{
		{Name: "Anand Vihar", District: "East Delhi"},
		{Name: "Connaught Place", District: "Central Delhi"},
	}
	cfg.Forecast.DefaultHours = 24
	cfg.Forecast.MaxHours = 72
	cfg.Forecast.HistoryWindow = 48
	cfg.Forecast.CacheTTL = time.Minute
	cfg.Enhancer.Enabled = true
	return cfg
}

func testHistory(n int) []models.Reading {
	ts := time.Date(2024, 10, 16, 11, 0, 0, 0, time.UTC)
	out := make([]models.Reading, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Reading{
			Timestamp: ts.Add(-time.Duration(i) * time.Hour),
			AQI:       fp(100),
			PM25:      fp(40),
			PM10:      fp(60),
		})
	}
	return out
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestGetForecastUnknownArea(t *testing.T) {
	uc := NewForecastUseCase(testConfig(), &fakeReadingStore{}, forecast.NewGenerator(), nil, nil, testLogger(t))
	_, err := uc.GetForecast(context.Background(), "Atlantis", 24)
	if !errors.Is(err, ErrUnknownArea) {
		t.Fatalf("expected ErrUnknownArea, got %v", err)
	}
}

func TestGetForecastCaseInsensitiveArea(t *testing.T) {
	store := &fakeReadingStore{history: testHistory(48)}
	uc := NewForecastUseCase(testConfig(), store, forecast.NewGenerator(), nil, nil, testLogger(t))

	set, err := uc.GetForecast(context.Background(), "anand vihar", 6)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if set.Area.Name != "Anand Vihar" {
		t.Fatalf("area name = %q", set.Area.Name)
	}
	if len(set.Forecasts) != 6 {
		t.Fatalf("forecasts = %d, want 6", len(set.Forecasts))
	}
	for i, f := range set.Forecasts {
		if f.HorizonHours != i+1 {
			t.Fatalf("forecast %d horizon = %d", i, f.HorizonHours)
		}
		if f.Enhanced {
			t.Fatal("enhancer is nil, forecasts must stay baseline")
		}
	}
}

func TestGetForecastHoursClampedToMax(t *testing.T) {
	store := &fakeReadingStore{history: testHistory(48)}
	uc := NewForecastUseCase(testConfig(), store, forecast.NewGenerator(), nil, nil, testLogger(t))

	set, err := uc.GetForecast(context.Background(), "Anand Vihar", 500)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if len(set.Forecasts) != 72 {
		t.Fatalf("forecasts = %d, want 72 (max)", len(set.Forecasts))
	}
}

func TestGetForecastInsufficientHistory(t *testing.T) {
	store := &fakeReadingStore{history: testHistory(10)}
	uc := NewForecastUseCase(testConfig(), store, forecast.NewGenerator(), nil, nil, testLogger(t))

	_, err := uc.GetForecast(context.Background(), "Anand Vihar", 24)
	if !errors.Is(err, forecast.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestGetForecastServedFromCache(t *testing.T) {
	store := &fakeReadingStore{history: testHistory(48)}
	uc := NewForecastUseCase(testConfig(), store, forecast.NewGenerator(), nil, cache.NewMemoryCache(), testLogger(t))

	first, err := uc.GetForecast(context.Background(), "Anand Vihar", 6)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	second, err := uc.GetForecast(context.Background(), "Anand Vihar", 6)
	if err != nil {
		t.Fatalf("GetForecast (cached): %v", err)
	}

	if store.latestCalls != 1 {
		t.Fatalf("store reads = %d, want 1 (second hit must come from cache)", store.latestCalls)
	}
	if len(second.Forecasts) != len(first.Forecasts) {
		t.Fatalf("cached forecasts = %d, want %d", len(second.Forecasts), len(first.Forecasts))
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Fatal("cached set must carry the original generation time")
	}
}

func TestEnhancerApplied(t *testing.T) {
	store := &fakeReadingStore{history: testHistory(48)}
	enh := &fakeEnhancer{}
	uc := NewForecastUseCase(testConfig(), store, forecast.NewGenerator(), enh, nil, testLogger(t))

	set, err := uc.GetForecast(context.Background(), "Anand Vihar", 3)
	if err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if enh.calls != 1 {
		t.Fatalf("enhancer calls = %d", enh.calls)
	}
	for _, f := range set.Forecasts {
		if !f.Enhanced {
			t.Fatal("expected enhanced forecasts")
		}
		if f.AQIDelta != 5 {
			t.Fatalf("aqi delta = %d", f.AQIDelta)
		}
	}
}

func TestEnhancerFailureFallsBackToBaseline(t *testing.T) {
	store := &fakeReadingStore{history: testHistory(48)}
	enh := &fakeEnhancer{err: errors.New("service down")}
	uc := NewForecastUseCase(testConfig(), store, forecast.NewGenerator(), enh, nil, testLogger(t))

	set, err := uc.GetForecast(context.Background(), "Anand Vihar", 3)
	if err != nil {
		t.Fatalf("enhancer failure must not fail the request: %v", err)
	}
	if len(set.Forecasts) != 3 {
		t.Fatalf("forecasts = %d", len(set.Forecasts))
	}
	for _, f := range set.Forecasts {
		if f.Enhanced {
			t.Fatal("fallback forecasts must not be marked enhanced")
		}
		if f.AQIDelta != 0 || f.Insight != "" {
			t.Fatal("fallback forecasts must carry no adjustments")
		}
	}
}

func TestEnhancerDisabledSkipsCall(t *testing.T) {
	cfg := testConfig()
	cfg.Enhancer.Enabled = false
	store := &fakeReadingStore{history: testHistory(48)}
	enh := &fakeEnhancer{}
	uc := NewForecastUseCase(cfg, store, forecast.NewGenerator(), enh, nil, testLogger(t))

	if _, err := uc.GetForecast(context.Background(), "Anand Vihar", 3); err != nil {
		t.Fatalf("GetForecast: %v", err)
	}
	if enh.calls != 0 {
		t.Fatalf("enhancer should not be called when disabled, calls = %d", enh.calls)
	}
}
