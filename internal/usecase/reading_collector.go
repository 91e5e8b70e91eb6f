package usecase

import (
	"context"
	"time"

	"AirCast/internal/domain/models"
	drepo "AirCast/internal/domain/repository"
	mid "AirCast/internal/middleware"
)

// ReadingCollector pulls station readings off the sensor stream and feeds
// them through the ingest pipeline.
type ReadingCollector struct {
	stream  drepo.SensorStream
	proc    *ReadingProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewReadingCollector creates a new ReadingCollector instance.
func NewReadingCollector(stream drepo.SensorStream, proc *ReadingProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *ReadingCollector {
	return &ReadingCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the sensor stream is connected.
func (c *ReadingCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *ReadingCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	rCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, rCh, errCh)
	return nil
}

func (c *ReadingCollector) consume(ctx context.Context, rCh <-chan *models.StationReading, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				if rCh == nil {
					return
				}
				continue
			}
			if err == nil {
				continue
			}
			c.metrics.RecordError("stream")
			// The stream's read loop closes its channels after reporting an
			// error, so reads must be restarted on the new connection.
			rCh, errCh = c.reopen(ctx)
			if rCh == nil {
				return
			}
		case r, ok := <-rCh:
			if !ok {
				rCh = nil
				if errCh == nil {
					return
				}
				continue
			}
			if r == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, r)
			} else {
				_ = c.proc.Process(ctx, r)
			}
			c.metrics.RecordLastAQI(r.Area, r.AQI)
		}
	}
}

// reopen reconnects the stream until it succeeds and returns fresh read
// channels. Returns nil channels only when the context ends first.
func (c *ReadingCollector) reopen(ctx context.Context) (<-chan *models.StationReading, <-chan error) {
	for {
		if err := c.stream.Reconnect(ctx); err == nil {
			rCh, errCh := c.stream.Read(ctx)
			return rCh, errCh
		}
		c.metrics.RecordError("stream_reconnect")
		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(time.Second):
		}
	}
}

// Processor returns the underlying ReadingProcessor for lifecycle management.
func (c *ReadingCollector) Processor() *ReadingProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *ReadingCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
