//go:generate mockgen -source=run.go -destination=mocks/run_mock.go -package=mocks

package model

import (
	"time"

	"github.com/google/uuid"
)

// JobRunOutcome is the result of refreshing one industry within a run.
// It is never persisted.
type JobRunOutcome struct {
	Industry string
	Success  bool
	Err      error
	Kind     ErrorKind
	Duration time.Duration
}

// RunReport collects the outcomes of a single insight job execution.
type RunReport struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []JobRunOutcome
}

// Succeeded returns the number of industries refreshed without error.
func (r RunReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Success {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that carry an error, in run order.
func (r RunReport) Failed() []JobRunOutcome {
	var failed []JobRunOutcome
	for _, o := range r.Outcomes {
		if !o.Success {
			failed = append(failed, o)
		}
	}
	return failed
}

// RunNotifier publishes a run summary somewhere a human or service will see it.
type RunNotifier interface {
	NotifyRun(report RunReport) error
}
