package usecase

import (
	"context"
	"time"

	"AirCast/internal/domain/models"
	domrepo "AirCast/internal/domain/repository"
	"AirCast/pkg/config"
	"AirCast/pkg/logger"
	"AirCast/pkg/queue"
)

// AlertTypeTriggered is the queue message type for threshold alerts.
const AlertTypeTriggered = "alert.triggered"

// AlertChecker watches the latest reading per area and enqueues an alert
// job whenever a pollutant crosses its configured threshold. Critical
// thresholds win over warning when both are crossed.
type AlertChecker struct {
	cfg      *config.Config
	readings domrepo.ReadingStore
	queue    queue.QueueService
	topic    string
	log      *logger.Logger
	stopCh   chan struct{}
}

// NewAlertChecker creates an alert checker publishing on the configured
// queue topic.
func NewAlertChecker(cfg *config.Config, readings domrepo.ReadingStore, q queue.QueueService, log *logger.Logger) *AlertChecker {
	topic := cfg.Alerts.QueueTopic
	if topic == "" {
		topic = AlertTypeTriggered
	}
	return &AlertChecker{
		cfg:      cfg,
		readings: readings,
		queue:    q,
		topic:    topic,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start runs checks on the configured interval.
func (c *AlertChecker) Start(ctx context.Context) {
	interval := c.cfg.Alerts.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.CheckOnce(ctx)
			}
		}
	}()
}

// Stop halts the periodic checks.
func (c *AlertChecker) Stop() {
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
}

// CheckOnce evaluates thresholds against the latest reading of every
// configured area. Returns the number of alerts enqueued.
func (c *AlertChecker) CheckOnce(ctx context.Context) int {
	raised := 0
	for _, area := range c.cfg.Forecast.Areas {
		latest, err := c.readings.GetLatestN(ctx, area.Name, 1)
		if err != nil {
			c.log.Error("alerts: load latest reading",
				logger.String("area", area.Name), logger.Error(err))
			continue
		}
		if len(latest) == 0 {
			continue
		}
		for _, a := range c.evaluate(area.Name, latest[0]) {
			if err := c.queue.PublishMessage(ctx, c.topic, a); err != nil {
				c.log.Error("alerts: enqueue",
					logger.String("area", a.Area),
					logger.String("pollutant", a.Pollutant),
					logger.Error(err))
				continue
			}
			raised++
		}
	}
	return raised
}

func (c *AlertChecker) evaluate(area string, r models.Reading) []models.Alert {
	t := c.cfg.Alerts.Thresholds
	now := time.Now().UTC()

	var alerts []models.Alert
	check := func(pollutant string, value *float64, warning, critical float64) {
		if value == nil {
			return
		}
		switch {
		case critical > 0 && *value >= critical:
			alerts = append(alerts, models.Alert{
				Area: area, Pollutant: pollutant, Level: "critical",
				Value: *value, Threshold: critical, TriggeredAt: now,
			})
		case warning > 0 && *value >= warning:
			alerts = append(alerts, models.Alert{
				Area: area, Pollutant: pollutant, Level: "warning",
				Value: *value, Threshold: warning, TriggeredAt: now,
			})
		}
	}

	check("aqi", r.AQI, t.AQIWarning, t.AQICritical)
	check("pm25", r.PM25, t.PM25Warning, t.PM25Critical)
	check("pm10", r.PM10, t.PM10Warning, t.PM10Critical)
	return alerts
}

// AlertDispatchJob consumes triggered alerts off the queue. Delivery here
// is structured logging; notification channels hang off this job.
type AlertDispatchJob struct {
	log   *logger.Logger
	topic string
}

// NewAlertDispatchJob creates the dispatch job. An empty topic uses the
// default alert topic; it must match what the checker publishes.
func NewAlertDispatchJob(log *logger.Logger, topic string) *AlertDispatchJob {
	if topic == "" {
		topic = AlertTypeTriggered
	}
	return &AlertDispatchJob{log: log, topic: topic}
}

func (j *AlertDispatchJob) Name() string { return "alert-dispatch" }
func (j *AlertDispatchJob) Type() string { return j.topic }

func (j *AlertDispatchJob) Handle(ctx context.Context, payload interface{}) error {
	alert, err := queue.ParsePayload[models.Alert](payload)
	if err != nil {
		return err
	}
	j.log.Warn("air quality alert",
		logger.String("area", alert.Area),
		logger.String("pollutant", alert.Pollutant),
		logger.String("level", alert.Level),
		logger.Float64("value", alert.Value),
		logger.Float64("threshold", alert.Threshold))
	return nil
}

var _ queue.Job = (*AlertDispatchJob)(nil)
