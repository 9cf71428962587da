package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/zaydhassan/AspireOn/internal/model"
)

// Ensure SlackNotifier implements model.RunNotifier.
var _ model.RunNotifier = (*SlackNotifier)(nil)

// maxListedFailures caps the failure lines in one message.
const maxListedFailures = 10

// SlackNotifier posts run summaries to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each run summary to Slack.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// NotifyRun sends one Block Kit message per run. Runs with no outcomes are
// not posted.
func (s *SlackNotifier) NotifyRun(report model.RunReport) error {
	if len(report.Outcomes) == 0 {
		return nil
	}

	body, err := json.Marshal(buildPayload(report))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack run summary sent", "run_id", report.RunID.String(), "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack run summary sent", "run_id", report.RunID.String())
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Fields   []slackText `json:"fields,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func buildPayload(r model.RunReport) slackPayload {
	failed := r.Failed()

	icon := "✅"
	if len(failed) > 0 {
		icon = "⚠️"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: icon + " Industry insights refreshed"},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Succeeded:*\n%d", r.Succeeded())},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Failed:*\n%d", len(failed))},
			},
		},
	}

	if len(failed) > 0 {
		lines := make([]string, 0, maxListedFailures+1)
		for i, o := range failed {
			if i == maxListedFailures {
				lines = append(lines, fmt.Sprintf("…and %d more", len(failed)-maxListedFailures))
				break
			}
			lines = append(lines, fmt.Sprintf("• `%s` (%s)", o.Industry, o.Kind))
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: strings.Join(lines, "\n")},
		})
	}

	blocks = append(blocks,
		slackBlock{
			Type: "context",
			Elements: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("Run %s · %s", r.RunID, r.FinishedAt.Sub(r.StartedAt).Round(time.Second))},
			},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}
