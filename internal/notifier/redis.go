package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zaydhassan/AspireOn/internal/model"
)

// DefaultChannel is the pub/sub channel run reports are published on.
const DefaultChannel = "insights.refreshed"

var _ model.RunNotifier = (*RedisNotifier)(nil)

// RedisNotifier publishes each run report as JSON on a Redis channel so
// other services can react to refreshed insights.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRedisNotifier returns a notifier publishing on channel (DefaultChannel
// when empty).
func NewRedisNotifier(client redis.UniversalClient, channel string, logger *slog.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{
		client:  client,
		channel: channel,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// runMessage is the published wire shape.
type runMessage struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Succeeded  int              `json:"succeeded"`
	Failed     int              `json:"failed"`
	Outcomes   []outcomeMessage `json:"outcomes"`
}

type outcomeMessage struct {
	Industry   string `json:"industry"`
	Success    bool   `json:"success"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func encodeRunMessage(r model.RunReport) ([]byte, error) {
	msg := runMessage{
		RunID:      r.RunID.String(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Succeeded:  r.Succeeded(),
		Failed:     len(r.Failed()),
		Outcomes:   make([]outcomeMessage, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		om := outcomeMessage{
			Industry:   o.Industry,
			Success:    o.Success,
			Kind:       string(o.Kind),
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			om.Error = o.Err.Error()
		}
		msg.Outcomes = append(msg.Outcomes, om)
	}
	return json.Marshal(msg)
}

// NotifyRun publishes the report. Runs with no outcomes are not published.
func (n *RedisNotifier) NotifyRun(report model.RunReport) error {
	if len(report.Outcomes) == 0 {
		return nil
	}
	payload, err := encodeRunMessage(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	receivers, err := n.client.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("redis publish %s: %w", n.channel, err)
	}
	n.logger.Info("run report published",
		"run_id", report.RunID.String(),
		"channel", n.channel,
		"receivers", receivers,
	)
	return nil
}
