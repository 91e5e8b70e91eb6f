package repository

import (
	"context"

	"AirCast/internal/domain/models"
)

// SensorStream is a live feed of station readings (WebSocket gateway).
type SensorStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.StationReading, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher pushes readings onto the ingest bus.
type Publisher interface {
	Publish(ctx context.Context, r *models.StationReading) error
	PublishBatch(ctx context.Context, rs []*models.StationReading) error
	Close() error
}

// Storage persists raw station readings.
type Storage interface {
	Store(ctx context.Context, r *models.StationReading) error
	StoreBatch(ctx context.Context, rs []*models.StationReading) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational counters for the ingest and forecast paths.
type Metrics interface {
	RecordMessageSent(backend, area string)
	RecordError(kind string)
	RecordLastAQI(area string, aqi float64)
	RecordLatency(op string, seconds float64)
}
