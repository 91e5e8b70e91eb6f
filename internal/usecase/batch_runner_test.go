package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"AirCast/internal/domain/models"
	"AirCast/internal/forecast"
	"AirCast/pkg/cache"
)

type fakeForecastStore struct {
	mu        sync.Mutex
	replaced  map[string]int
	persisted map[string][]models.EnhancedForecast
	genTimes  map[string]time.Time
	failArea  string
}

func (s *fakeForecastStore) Replace(_ context.Context, area string, generatedAt time.Time, fs []models.EnhancedForecast) error {
	if area == s.failArea {
		return errors.New("insert failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaced == nil {
		s.replaced = make(map[string]int)
		s.persisted = make(map[string][]models.EnhancedForecast)
		s.genTimes = make(map[string]time.Time)
	}
	s.replaced[area] = len(fs)
	s.persisted[area] = fs
	s.genTimes[area] = generatedAt
	return nil
}

func (s *fakeForecastStore) Latest(_ context.Context, area string) ([]models.EnhancedForecast, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted[area], s.genTimes[area], nil
}

type fakeMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func (m *fakeMetrics) RecordMessageSent(string, string) {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
}
func (m *fakeMetrics) RecordLastAQI(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64) {}

func TestBatchRunOncePersistsAllAreas(t *testing.T) {
	cfg := testConfig()
	rs := &fakeReadingStore{history: testHistory(48)}
	fc := NewForecastUseCase(cfg, rs, forecast.NewGenerator(), nil, nil, testLogger(t))
	fs := &fakeForecastStore{}

	runner := NewBatchRunner(cfg, fc, fs, &fakeMetrics{}, cache.NewMemoryCache(), testLogger(t))
	ok := runner.RunOnce(context.Background(), 0)

	if ok != 2 {
		t.Fatalf("areas ok = %d, want 2", ok)
	}
	for _, area := range []string{"Anand Vihar", "Connaught Place"} {
		if n := fs.replaced[area]; n != cfg.Forecast.DefaultHours {
			t.Fatalf("area %s persisted %d forecasts, want %d", area, n, cfg.Forecast.DefaultHours)
		}
	}
}

func TestBatchRunOnceIsolatesAreaFailure(t *testing.T) {
	cfg := testConfig()
	rs := &fakeReadingStore{history: testHistory(48)}
	fc := NewForecastUseCase(cfg, rs, forecast.NewGenerator(), nil, nil, testLogger(t))
	fs := &fakeForecastStore{failArea: "Anand Vihar"}
	m := &fakeMetrics{}

	runner := NewBatchRunner(cfg, fc, fs, m, cache.NewMemoryCache(), testLogger(t))
	ok := runner.RunOnce(context.Background(), 0)

	if ok != 1 {
		t.Fatalf("areas ok = %d, want 1", ok)
	}
	if fs.replaced["Connaught Place"] == 0 {
		t.Fatal("healthy area must still be persisted")
	}
	if m.errors["batch_persist"] != 1 {
		t.Fatalf("batch_persist errors = %d, want 1", m.errors["batch_persist"])
	}
}

func TestBatchRunOnceGenerateFailure(t *testing.T) {
	cfg := testConfig()
	rs := &fakeReadingStore{history: testHistory(5)} // below minimum window
	fc := NewForecastUseCase(cfg, rs, forecast.NewGenerator(), nil, nil, testLogger(t))
	fs := &fakeForecastStore{}
	m := &fakeMetrics{}

	runner := NewBatchRunner(cfg, fc, fs, m, cache.NewMemoryCache(), testLogger(t))
	ok := runner.RunOnce(context.Background(), 0)

	if ok != 0 {
		t.Fatalf("areas ok = %d, want 0", ok)
	}
	if m.errors["batch_generate"] != 2 {
		t.Fatalf("batch_generate errors = %d, want 2", m.errors["batch_generate"])
	}
}

func TestBatchRunOnceHonorsHours(t *testing.T) {
	cfg := testConfig()
	rs := &fakeReadingStore{history: testHistory(48)}
	fc := NewForecastUseCase(cfg, rs, forecast.NewGenerator(), nil, nil, testLogger(t))
	fs := &fakeForecastStore{}

	runner := NewBatchRunner(cfg, fc, fs, &fakeMetrics{}, cache.NewMemoryCache(), testLogger(t))
	if ok := runner.RunOnce(context.Background(), 6); ok != 2 {
		t.Fatalf("areas ok = %d, want 2", ok)
	}

	for _, area := range []string{"Anand Vihar", "Connaught Place"} {
		if n := fs.replaced[area]; n != 6 {
			t.Fatalf("area %s persisted %d forecasts, want 6", area, n)
		}
	}
}

func TestPersistedServesLastRun(t *testing.T) {
	cfg := testConfig()
	rs := &fakeReadingStore{history: testHistory(48)}
	fc := NewForecastUseCase(cfg, rs, forecast.NewGenerator(), nil, nil, testLogger(t))
	fs := &fakeForecastStore{}

	runner := NewBatchRunner(cfg, fc, fs, &fakeMetrics{}, cache.NewMemoryCache(), testLogger(t))
	runner.RunOnce(context.Background(), 6)

	set, err := runner.Persisted(context.Background(), "anand vihar")
	if err != nil {
		t.Fatalf("Persisted: %v", err)
	}
	if set.Area.Name != "Anand Vihar" {
		t.Fatalf("area = %q", set.Area.Name)
	}
	if len(set.Forecasts) != 6 {
		t.Fatalf("forecasts = %d, want 6", len(set.Forecasts))
	}
	if !set.GeneratedAt.Equal(fs.genTimes["Anand Vihar"]) {
		t.Fatal("persisted set must carry the batch generation time")
	}
}

func TestPersistedErrors(t *testing.T) {
	cfg := testConfig()
	rs := &fakeReadingStore{history: testHistory(48)}
	fc := NewForecastUseCase(cfg, rs, forecast.NewGenerator(), nil, nil, testLogger(t))
	runner := NewBatchRunner(cfg, fc, &fakeForecastStore{}, &fakeMetrics{}, cache.NewMemoryCache(), testLogger(t))

	if _, err := runner.Persisted(context.Background(), "Atlantis"); !errors.Is(err, ErrUnknownArea) {
		t.Fatalf("expected ErrUnknownArea, got %v", err)
	}
	if _, err := runner.Persisted(context.Background(), "Anand Vihar"); !errors.Is(err, ErrNoPersistedForecast) {
		t.Fatalf("expected ErrNoPersistedForecast, got %v", err)
	}
}
