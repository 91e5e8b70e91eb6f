package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"AirCast/internal/domain/models"
	"AirCast/internal/forecast"
	"AirCast/internal/usecase"
	"AirCast/pkg/config"
	"AirCast/pkg/logger"
)

func fp(v float64) *float64 { return &v }

type stubReadingStore struct {
	mu         sync.Mutex
	history    []models.Reading
	rangeCalls int
	rangeFrom  time.Time
	rangeTo    time.Time
}

func (s *stubReadingStore) GetLatestN(_ context.Context, _ string, n int) ([]models.Reading, error) {
	if len(s.history) > n {
		return s.history[:n], nil
	}
	return s.history, nil
}

func (s *stubReadingStore) GetRange(_ context.Context, _ string, from, to time.Time) ([]models.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rangeCalls++
	s.rangeFrom, s.rangeTo = from, to
	return s.history, nil
}

func (s *stubReadingStore) LatestWeather(_ context.Context, _ string) (models.WeatherSnapshot, error) {
	return models.WeatherSnapshot{}, nil
}

type stubForecastStore struct {
	mu        sync.Mutex
	persisted map[string][]models.EnhancedForecast
	genAt     time.Time
	replaced  map[string]int
}

func (s *stubForecastStore) Replace(_ context.Context, area string, generatedAt time.Time, fs []models.EnhancedForecast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.persisted == nil {
		s.persisted = make(map[string][]models.EnhancedForecast)
		s.replaced = make(map[string]int)
	}
	s.persisted[area] = fs
	s.replaced[area] = len(fs)
	s.genAt = generatedAt
	return nil
}

func (s *stubForecastStore) Latest(_ context.Context, area string) ([]models.EnhancedForecast, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted[area], s.genAt, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordMessageSent(string, string) {}
func (stubMetrics) RecordError(string)               {}
func (stubMetrics) RecordLastAQI(string, float64)    {}
func (stubMetrics) RecordLatency(string, float64)    {}

func apiConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Backend.Type = "clickhouse"
	cfg.Forecast.Areas = []config.Area{{Name: "Anand Vihar", District: "East Delhi"}}
	cfg.Forecast.DefaultHours = 24
	cfg.Forecast.MaxHours = 72
	cfg.Forecast.HistoryWindow = 48
	return cfg
}

func apiHistory(n int) []models.Reading {
	ts := time.Date(2024, 10, 16, 11, 0, 0, 0, time.UTC)
	out := make([]models.Reading, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Reading{
			Timestamp: ts.Add(-time.Duration(i) * time.Hour),
			AQI:       fp(100), PM25: fp(40), PM10: fp(60),
		})
	}
	return out
}

func newTestServer(t *testing.T, store *stubReadingStore, fstore *stubForecastStore) (*echo.Echo, *usecase.BatchRunner) {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	cfg := apiConfig()
	fc := usecase.NewForecastUseCase(cfg, store, forecast.NewGenerator(), nil, nil, log)
	readings := usecase.NewReadingsUseCase(store)
	batch := usecase.NewBatchRunner(cfg, fc, fstore, stubMetrics{}, nil, log)

	e := echo.New()
	NewForecastEchoHandler(log, fc, readings, batch).RegisterRoutes(e)
	return e, batch
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, e *echo.Echo, method, target string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestReadingsRangeQuery(t *testing.T) {
	store := &stubReadingStore{history: apiHistory(4)}
	e, _ := newTestServer(t, store, &stubForecastStore{})

	env := doRequest(t, e, http.MethodGet,
		"/api/readings?area=Anand+Vihar&from=2024-10-16T08:40:00Z&to=2024-10-16T11:05:00Z")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	if store.rangeCalls != 1 {
		t.Fatalf("range queries = %d, want 1", store.rangeCalls)
	}
	if !store.rangeFrom.Equal(time.Date(2024, 10, 16, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("range from = %v", store.rangeFrom)
	}
}

func TestReadingsWithoutRangeUsesLatest(t *testing.T) {
	store := &stubReadingStore{history: apiHistory(4)}
	e, _ := newTestServer(t, store, &stubForecastStore{})

	env := doRequest(t, e, http.MethodGet, "/api/readings?area=Anand+Vihar&n=2")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	if store.rangeCalls != 0 {
		t.Fatal("latest-n must not hit the range query")
	}
}

func TestLatestForecastBeforeAnyBatch(t *testing.T) {
	e, _ := newTestServer(t, &stubReadingStore{history: apiHistory(48)}, &stubForecastStore{})

	env := doRequest(t, e, http.MethodGet, "/api/forecast/latest?area=Anand+Vihar")
	if env.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before the first batch run", env.Status)
	}
}

func TestLatestForecastServesBatchOutput(t *testing.T) {
	fstore := &stubForecastStore{}
	e, batch := newTestServer(t, &stubReadingStore{history: apiHistory(48)}, fstore)

	if ok := batch.RunOnce(context.Background(), 6); ok != 1 {
		t.Fatalf("batch areas ok = %d", ok)
	}

	env := doRequest(t, e, http.MethodGet, "/api/forecast/latest?area=anand+vihar")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	var set models.ForecastSet
	if err := json.Unmarshal(env.Data, &set); err != nil {
		t.Fatalf("decode set: %v", err)
	}
	if len(set.Forecasts) != 6 {
		t.Fatalf("forecasts = %d, want 6", len(set.Forecasts))
	}
	if set.Area.Name != "Anand Vihar" {
		t.Fatalf("area = %q", set.Area.Name)
	}
}

func TestBatchRunHonorsHoursParam(t *testing.T) {
	fstore := &stubForecastStore{}
	e, _ := newTestServer(t, &stubReadingStore{history: apiHistory(48)}, fstore)

	env := doRequest(t, e, http.MethodPost, "/api/forecast/run?hours=6")
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d", env.Status)
	}
	if n := fstore.replaced["Anand Vihar"]; n != 6 {
		t.Fatalf("persisted %d forecasts, want 6", n)
	}
}

func TestForecastUnknownArea(t *testing.T) {
	e, _ := newTestServer(t, &stubReadingStore{history: apiHistory(48)}, &stubForecastStore{})

	env := doRequest(t, e, http.MethodGet, "/api/forecast?area=Atlantis")
	if env.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", env.Status)
	}
}
