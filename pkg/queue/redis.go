package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"AirCast/pkg/logger"
)

// QueueMode defines the operation mode of the queue.
type QueueMode int

const (
	ModeProducerConsumer QueueMode = iota
	ModeProducerOnly
	ModeConsumerOnly
)

const (
	defaultKeyPrefix  = "aircast:queue"
	brpopTimeout      = time.Second
	retryScanInterval = 5 * time.Second
)

// RedisQueue is a Redis-backed work queue with delayed retries and a
// dead-letter list. Alert dispatch and log digest jobs run through it.
//
// Layout: a LIST holds ready messages, a ZSET (scored by retry deadline)
// holds messages awaiting retry, and a second LIST collects messages that
// exhausted their retries.
type RedisQueue struct {
	logger  *logger.Logger
	config  *QueueConfig
	client  *redis.Client
	mode    QueueMode
	running bool

	mu   sync.RWMutex
	jobs map[string]Job

	wg     sync.WaitGroup
	stopCh chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	readyKey string
	retryKey string
	deadKey  string
}

// RedisQueueOption configures RedisQueue.
type RedisQueueOption func(*RedisQueue)

// WithKeyPrefix sets a custom key prefix.
func WithKeyPrefix(prefix string) RedisQueueOption {
	return func(q *RedisQueue) {
		q.readyKey = prefix + ":messages"
		q.retryKey = prefix + ":retry"
		q.deadKey = prefix + ":dlq"
	}
}

// NewRedisQueue creates a new Redis queue.
func NewRedisQueue(lgr *logger.Logger, config *QueueConfig, client *redis.Client, mode QueueMode, opts ...RedisQueueOption) *RedisQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &RedisQueue{
		logger: lgr,
		config: config,
		client: client,
		mode:   mode,
		jobs:   make(map[string]Job),
		stopCh: make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	WithKeyPrefix(defaultKeyPrefix)(q)

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// NewRedisPublisher creates a publisher-only queue.
func NewRedisPublisher(lgr *logger.Logger, client *redis.Client, opts ...RedisQueueOption) *RedisQueue {
	q := NewRedisQueue(lgr, &QueueConfig{}, client, ModeProducerOnly, opts...)
	if err := q.Start(); err != nil {
		lgr.Error("redis publisher start failed", logger.Error(err))
	}
	return q
}

// NewRedisConsumer creates a consumer-only queue.
func NewRedisConsumer(lgr *logger.Logger, config *QueueConfig, client *redis.Client, jobs []Job, opts ...RedisQueueOption) *RedisQueue {
	q := NewRedisQueue(lgr, config, client, ModeConsumerOnly, opts...)
	q.RegisterJobs(jobs)
	return q
}

// RegisterJobs registers multiple jobs.
func (q *RedisQueue) RegisterJobs(jobs []Job) {
	for _, job := range jobs {
		q.RegisterJob(job)
	}
}

// RegisterJob registers a handler for one message type.
func (q *RedisQueue) RegisterJob(job Job) {
	if q.mode == ModeProducerOnly {
		q.logger.Warn("job registration ignored in producer-only mode",
			logger.String("job", job.Name()))
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, dup := q.jobs[job.Type()]; dup {
		q.logger.Warn("job already registered", logger.String("job", job.Name()))
		return
	}

	q.jobs[job.Type()] = job
	q.logger.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

// Start verifies connectivity and, unless producer-only, spawns workers
// plus the retry mover.
func (q *RedisQueue) Start() error {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return fmt.Errorf("queue already running")
	}
	q.running = true
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := q.client.Ping(ctx).Err(); err != nil {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
		return fmt.Errorf("redis ping: %w", err)
	}

	if q.mode == ModeProducerOnly {
		q.logger.Info("redis publisher started",
			logger.String("addr", q.client.Options().Addr))
		return nil
	}

	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.wg.Add(1)
	go q.retryMover()

	q.logger.Info("redis queue started",
		logger.Int("workers", q.config.Workers),
		logger.String("addr", q.client.Options().Addr))
	return nil
}

// Stop gracefully stops the queue, waiting for workers up to ctx deadline.
func (q *RedisQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.cancel()
	if q.mode != ModeProducerOnly {
		close(q.stopCh)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		q.logger.Warn("timeout waiting for queue workers", logger.Error(ctx.Err()))
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-done:
		q.logger.Info("redis queue stopped")
		return nil
	}
}

// Enqueue pushes a message onto the ready list.
func (q *RedisQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.running {
		return fmt.Errorf("queue not running")
	}
	if q.mode != ModeProducerOnly {
		if _, ok := q.jobs[msgType]; !ok {
			return fmt.Errorf("no job registered for type: %s", msgType)
		}
	}

	data, err := json.Marshal(Message{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := q.client.LPush(ctx, q.readyKey, data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

// PublishMessage implements QueueService.
func (q *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	return q.Enqueue(ctx, msgType, payload)
}

func (q *RedisQueue) worker(id int) {
	defer q.wg.Done()
	q.logger.Info("queue worker started", logger.Int("worker_id", id))

	for {
		select {
		case <-q.stopCh:
			return
		case <-q.ctx.Done():
			return
		default:
		}

		msg, ok := q.popNext()
		if !ok {
			continue
		}
		q.dispatch(msg)
	}
}

// popNext blocks briefly on the ready list. Returns false on timeout or
// transient error so the worker loop can re-check for shutdown.
func (q *RedisQueue) popNext() (Message, bool) {
	ctx, cancel := context.WithTimeout(q.ctx, brpopTimeout)
	defer cancel()

	res, err := q.client.BRPop(ctx, brpopTimeout, q.readyKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Message{}, false
		}
		q.logger.Error("brpop error", logger.Error(err))
		time.Sleep(time.Second)
		return Message{}, false
	}
	if len(res) < 2 {
		return Message{}, false
	}

	var msg Message
	if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
		q.logger.Error("unmarshal message", logger.Error(err))
		return Message{}, false
	}
	return msg, true
}

func (q *RedisQueue) dispatch(msg Message) {
	q.mu.RLock()
	job, ok := q.jobs[msg.Type]
	q.mu.RUnlock()
	if !ok {
		q.logger.Error("no job found",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	if err := job.Handle(q.ctx, normalizePayload(msg.Payload)); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		q.retryOrBury(msg, job, err)
	}
}

// normalizePayload re-encodes map payloads produced by json.Unmarshal so
// job handlers can ParsePayload into their own types.
func normalizePayload(payload interface{}) interface{} {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return payload
	}
	b, err := json.Marshal(m)
	if err != nil {
		return payload
	}
	return json.RawMessage(b)
}

func (q *RedisQueue) retryOrBury(msg Message, job Job, cause error) {
	q.logger.Error("message processing error",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(cause))

	if msg.Attempts >= q.config.RetryLimit {
		q.logger.Error("max retries reached",
			logger.String("id", msg.ID),
			logger.String("job", job.Name()))
		q.pushEncoded(q.deadKey, msg)
		return
	}

	msg.Attempts++
	data, err := json.Marshal(msg)
	if err != nil {
		q.logger.Error("marshal retry", logger.Error(err))
		return
	}
	err = q.client.ZAdd(context.Background(), q.retryKey, redis.Z{
		Score:  float64(time.Now().Add(q.config.RetryDelay).Unix()),
		Member: data,
	}).Err()
	if err != nil {
		q.logger.Error("zadd retry", logger.Error(err))
	}
}

func (q *RedisQueue) pushEncoded(key string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		q.logger.Error("marshal dlq", logger.Error(err))
		return
	}
	if err := q.client.LPush(context.Background(), key, data).Err(); err != nil {
		q.logger.Error("lpush dlq", logger.Error(err))
	}
}

// retryMover periodically moves due retry entries back onto the ready
// list. ZRem and LPush run in one transaction so a message is never lost
// or duplicated between the two structures.
func (q *RedisQueue) retryMover() {
	defer q.wg.Done()

	ticker := time.NewTicker(retryScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopCh:
			return
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.moveDueRetries()
		}
	}
}

func (q *RedisQueue) moveDueRetries() {
	due, err := q.client.ZRangeByScoreWithScores(q.ctx, q.retryKey, &redis.ZRangeBy{
		Min: "0",
		Max: strconv.FormatInt(time.Now().Unix(), 10),
	}).Result()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		q.logger.Error("fetch retry messages", logger.Error(err))
		return
	}

	for _, z := range due {
		select {
		case <-q.ctx.Done():
			return
		default:
		}

		data := z.Member.(string)

		pipe := q.client.TxPipeline()
		pipe.ZRem(q.ctx, q.retryKey, data)
		pipe.LPush(q.ctx, q.readyKey, data)
		if _, err := pipe.Exec(q.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			q.logger.Error("move retry to queue", logger.Error(err))
		}
	}
}
