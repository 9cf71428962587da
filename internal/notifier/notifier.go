package notifier

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zaydhassan/AspireOn/internal/model"
)

// MultiNotifier fans a report out to several notifiers. Every notifier is
// tried; the joined error reports the ones that failed.
type MultiNotifier []model.RunNotifier

var _ model.RunNotifier = MultiNotifier(nil)

func (m MultiNotifier) NotifyRun(report model.RunReport) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyRun(report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendTestMessage sends a sample report to verify the integration works.
func SendTestMessage(n model.RunNotifier) error {
	now := time.Now()
	report := model.RunReport{
		RunID:      uuid.New(),
		StartedAt:  now.Add(-42 * time.Second),
		FinishedAt: now,
		Outcomes: []model.JobRunOutcome{
			{Industry: "tech-software-development", Success: true, Duration: 12 * time.Second},
			{Industry: "finance-banking", Success: true, Duration: 9 * time.Second},
			{
				Industry: "healthcare-nursing",
				Err:      fmt.Errorf("test notification: %w", model.ErrMalformedAIResponse),
				Kind:     model.KindMalformedResponse,
				Duration: 7 * time.Second,
			},
		},
	}
	return n.NotifyRun(report)
}
