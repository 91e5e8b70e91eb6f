package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"AirCast/internal/domain/models"
	"AirCast/internal/domain/repository"
	pkgkafka "AirCast/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse. It writes raw
// station readings straight into aq_readings when the ingest backend is
// configured as "clickhouse".
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

const readingColumns = "ts, area, aqi, pm25, pm10, no2, temperature, humidity, pressure, wind_speed"

func readingArgs(r *models.StationReading) []interface{} {
	return []interface{}{
		time.Unix(r.Timestamp, 0),
		r.Area,
		r.AQI,
		r.PM25,
		r.PM10,
		r.NO2,
		r.Temperature,
		r.Humidity,
		r.Pressure,
		r.WindSpeed,
	}
}

func (s *ClickHouseStorage) Store(ctx context.Context, r *models.StationReading) error {
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, readingColumns)
	_, err := s.db.ExecContext(ctx, q, readingArgs(r)...)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, rs []*models.StationReading) error {
	if len(rs) == 0 {
		return nil
	}
	// Multi-row VALUES in chunks to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(rs); start += chunkSize {
		end := start + chunkSize
		if end > len(rs) {
			end = len(rs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*10)
		for _, r := range rs[start:end] {
			if r == nil || r.Area == "" || r.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, readingArgs(r)...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, readingColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // connection pool is owned by pkg/clickhouse
}

// KafkaPublisher implements Publisher for Kafka. Readings are keyed by
// area so each area stays ordered within its partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.StationReading) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Area), r)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, rs []*models.StationReading) error {
	if len(rs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(rs))
	for i, r := range rs {
		msgs[i] = pkgkafka.Message{Key: []byte(r.Area), Value: r}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
