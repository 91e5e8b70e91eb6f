package usecase

import (
	"context"
	"testing"
	"time"

	"AirCast/internal/domain/models"
)

type fakeQueue struct {
	published []models.Alert
	types     []string
}

func (q *fakeQueue) PublishMessage(_ context.Context, msgType string, payload interface{}) error {
	q.types = append(q.types, msgType)
	if a, ok := payload.(models.Alert); ok {
		q.published = append(q.published, a)
	}
	return nil
}

func TestAlertEvaluateThresholds(t *testing.T) {
	cfg := testConfig()
	cfg.Alerts.Thresholds.AQIWarning = 200
	cfg.Alerts.Thresholds.AQICritical = 300
	cfg.Alerts.Thresholds.PM25Warning = 90
	cfg.Alerts.Thresholds.PM25Critical = 150

	checker := NewAlertChecker(cfg, &fakeReadingStore{}, &fakeQueue{}, testLogger(t))

	tests := []struct {
		name      string
		reading   models.Reading
		wantCount int
		wantLevel string
	}{
		{"below thresholds", models.Reading{AQI: fp(150), PM25: fp(50)}, 0, ""},
		{"aqi warning", models.Reading{AQI: fp(220)}, 1, "warning"},
		{"aqi critical wins over warning", models.Reading{AQI: fp(320)}, 1, "critical"},
		{"both pollutants fire", models.Reading{AQI: fp(220), PM25: fp(160)}, 2, ""},
		{"nil fields never fire", models.Reading{}, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.reading.Timestamp = time.Now()
			alerts := checker.evaluate("Anand Vihar", tt.reading)
			if len(alerts) != tt.wantCount {
				t.Fatalf("alerts = %d, want %d", len(alerts), tt.wantCount)
			}
			if tt.wantLevel != "" && alerts[0].Level != tt.wantLevel {
				t.Fatalf("level = %q, want %q", alerts[0].Level, tt.wantLevel)
			}
		})
	}
}

func TestAlertCheckOnceEnqueues(t *testing.T) {
	cfg := testConfig()
	cfg.Alerts.Thresholds.AQIWarning = 200

	store := &fakeReadingStore{history: []models.Reading{
		{Timestamp: time.Now(), AQI: fp(250)},
	}}
	q := &fakeQueue{}
	checker := NewAlertChecker(cfg, store, q, testLogger(t))

	raised := checker.CheckOnce(context.Background())
	// both configured areas share the fake store's latest reading
	if raised != 2 {
		t.Fatalf("raised = %d, want 2", raised)
	}
	for _, typ := range q.types {
		if typ != AlertTypeTriggered {
			t.Fatalf("message type = %q", typ)
		}
	}
	if q.published[0].Pollutant != "aqi" || q.published[0].Level != "warning" {
		t.Fatalf("unexpected alert: %+v", q.published[0])
	}
}
