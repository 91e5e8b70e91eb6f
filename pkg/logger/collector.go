package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Publisher delivers aggregated log batches to a transport (e.g. a queue).
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectionConfig struct {
	TimeInterval   time.Duration // flush interval
	CountThreshold int           // max unique entries before an early flush
	Topic          string        // message type for the published batch
	Publisher      Publisher
}

type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector deduplicates repeated log lines and publishes them in
// batches, on a timer or when the unique-entry threshold is hit. Identical
// lines collapse into one entry with a count, so an error storm becomes a
// handful of digest entries instead of thousands of messages.
type LogCollector struct {
	config  *CollectionConfig
	entries map[string]*AggregatedLogEntry
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	ctx, cancel := context.WithCancel(context.Background())

	lc := &LogCollector{
		config:  config,
		entries: make(map[string]*AggregatedLogEntry),
		ctx:     ctx,
		cancel:  cancel,
	}

	lc.wg.Add(1)
	go lc.flushLoop()

	return lc
}

func (lc *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := entryKey(level, message, fields, caller)

	lc.mu.Lock()
	defer lc.mu.Unlock()

	if e, ok := lc.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		lc.entries[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	if len(lc.entries) >= lc.config.CountThreshold {
		lc.flushLocked()
	}
}

// entryKey identifies a unique log line. Two lines collapse only when
// level, message, fields, and call site all match.
func entryKey(level, message string, fields map[string]interface{}, caller string) string {
	payload, _ := json.Marshal(struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{level, message, fields, caller})

	return fmt.Sprintf("%x", sha256.Sum256(payload))
}

func (lc *LogCollector) flushLoop() {
	defer lc.wg.Done()

	ticker := time.NewTicker(lc.config.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lc.mu.Lock()
			lc.flushLocked()
			lc.mu.Unlock()
		case <-lc.ctx.Done():
			// final flush before shutdown
			lc.mu.Lock()
			lc.flushLocked()
			lc.mu.Unlock()
			return
		}
	}
}

// flushLocked snapshots and clears the entry map, then publishes the
// snapshot off the lock. Caller must hold mu.
func (lc *LogCollector) flushLocked() {
	if len(lc.entries) == 0 {
		return
	}

	batch := make([]AggregatedLogEntry, 0, len(lc.entries))
	for _, e := range lc.entries {
		batch = append(batch, *e)
	}
	lc.entries = make(map[string]*AggregatedLogEntry)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := lc.config.Publisher.PublishMessage(ctx, lc.config.Topic, batch); err != nil {
			fmt.Printf("failed to send aggregated logs: %v\n", err)
		}
	}()
}

func (lc *LogCollector) Close() {
	lc.cancel()
	lc.wg.Wait()
}
