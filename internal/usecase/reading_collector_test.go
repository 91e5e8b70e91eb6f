package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"AirCast/internal/domain/models"
)

// flakyStream mimics the gateway client: its first read session reports one
// error and closes both channels, the session after a reconnect delivers
// readings.
type flakyStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
}

func (s *flakyStream) Connect(context.Context) error   { return nil }
func (s *flakyStream) Subscribe(context.Context) error { return nil }
func (s *flakyStream) Close() error                    { return nil }
func (s *flakyStream) IsConnected() bool               { return true }

func (s *flakyStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return nil
}

func (s *flakyStream) Read(context.Context) (<-chan *models.StationReading, <-chan error) {
	s.mu.Lock()
	s.reads++
	first := s.reads == 1
	s.mu.Unlock()

	readings := make(chan *models.StationReading, 8)
	errs := make(chan error, 1)
	if first {
		errs <- errors.New("connection dropped")
		close(readings)
		close(errs)
		return readings, errs
	}
	readings <- &models.StationReading{Area: "Anand Vihar", Timestamp: time.Now().Unix(), AQI: 180}
	return readings, errs
}

type recordingStorage struct {
	stored chan *models.StationReading
}

func (s *recordingStorage) Store(_ context.Context, r *models.StationReading) error {
	s.stored <- r
	return nil
}
func (s *recordingStorage) StoreBatch(_ context.Context, rs []*models.StationReading) error {
	for _, r := range rs {
		s.stored <- r
	}
	return nil
}
func (s *recordingStorage) Health(context.Context) error { return nil }
func (s *recordingStorage) Close() error                 { return nil }

func TestCollectorResumesReadsAfterStreamError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &flakyStream{}
	storage := &recordingStorage{stored: make(chan *models.StationReading, 8)}
	proc := NewReadingProcessor(nil, storage, &fakeMetrics{}, "clickhouse")
	collector := NewReadingCollector(stream, proc, &fakeMetrics{}, nil)

	if err := collector.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case r := <-storage.stored:
		if r.Area != "Anand Vihar" {
			t.Fatalf("stored area = %q", r.Area)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reading after reconnect never reached storage")
	}

	stream.mu.Lock()
	defer stream.mu.Unlock()
	if stream.reconnects != 1 {
		t.Fatalf("reconnects = %d, want 1", stream.reconnects)
	}
	if stream.reads != 2 {
		t.Fatalf("read sessions = %d, want 2 (reads must restart after reconnect)", stream.reads)
	}
}
