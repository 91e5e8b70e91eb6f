package usecase

import (
	"context"

	"AirCast/pkg/logger"
	"AirCast/pkg/queue"
)

// LogDigestType is the queue message type for aggregated error logs.
const LogDigestType = "log.digest"

// LogDigestJob consumes aggregated error-log batches and replays them as a
// compact summary, so repeated failures show up as one line with a count.
type LogDigestJob struct {
	log *logger.Logger
}

func NewLogDigestJob(log *logger.Logger) *LogDigestJob {
	return &LogDigestJob{log: log}
}

func (j *LogDigestJob) Name() string { return "log-digest" }

func (j *LogDigestJob) Type() string { return LogDigestType }

func (j *LogDigestJob) Handle(ctx context.Context, payload interface{}) error {
	entries, err := queue.ParsePayload[[]logger.AggregatedLogEntry](payload)
	if err != nil {
		return err
	}
	for _, e := range *entries {
		j.log.Info("error digest",
			logger.String("message", e.Message),
			logger.String("caller", e.Caller),
			logger.Int("count", e.Count),
			logger.Any("first_seen", e.FirstSeen),
			logger.Any("last_seen", e.LastSeen))
	}
	return nil
}

var _ queue.Job = (*LogDigestJob)(nil)
