package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"AirCast/internal/domain/models"
	domrepo "AirCast/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, r *models.StationReading) error
}

// IngestPipeline sits between the sensor gateway and the ingest backend.
// It validates, throttles per area, and buffers when downstream is
// unavailable so bursts from the gateway do not get lost.
type IngestPipeline struct {
	proc       Proc
	metrics    domrepo.Metrics
	maxRPS     int
	bufSize    int
	maxBackoff time.Duration
	bufCh      chan *models.StationReading
	stopCh     chan struct{}
	started    bool
	mu         sync.Mutex
	lastSeen   map[string]time.Time // per-area last accepted time
}

type PipelineOption func(*IngestPipeline)

// WithMaxRPS sets the max readings per second per area.
func WithMaxRPS(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithRetryBackoff caps how long a failed flush backs off before the
// buffered readings are retried.
func WithRetryBackoff(d time.Duration) PipelineOption {
	return func(p *IngestPipeline) {
		if d > 0 {
			p.maxBackoff = d
		}
	}
}

// NewIngestPipeline creates a new pipeline.
func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:       proc,
		metrics:    metrics,
		maxRPS:     20,
		bufSize:    1000,
		maxBackoff: 2 * time.Second,
		bufCh:      make(chan *models.StationReading, 1000),
		stopCh:     make(chan struct{}),
		lastSeen:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.StationReading, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered readings.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case r := <-p.bufCh:
				if r == nil {
					continue
				}
				if err := p.proc.Process(ctx, r); err != nil {
					if backoff < p.maxBackoff {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- r:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards a reading downstream,
// buffering on errors.
func (p *IngestPipeline) Process(ctx context.Context, r *models.StationReading) error {
	start := time.Now()
	if err := validateReading(r); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(r.Area, start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, r); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- r:
			p.metrics.RecordLatency("pipeline_buffer_depth", float64(len(p.bufCh)))
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateReading(r *models.StationReading) error {
	if r == nil {
		return fmt.Errorf("reading nil")
	}
	if r.Area == "" {
		return fmt.Errorf("area empty")
	}
	if r.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if r.AQI < 0 || r.PM25 < 0 || r.PM10 < 0 {
		return fmt.Errorf("negative pollutant value")
	}
	return nil
}

func (p *IngestPipeline) allow(area string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[area]
	if last.IsZero() {
		p.lastSeen[area] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[area] = now
	return true
}
