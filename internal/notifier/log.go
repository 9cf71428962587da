package notifier

import (
	"log/slog"

	"github.com/zaydhassan/AspireOn/internal/model"
)

// Ensure LogNotifier implements model.RunNotifier.
var _ model.RunNotifier = (*LogNotifier)(nil)

// LogNotifier writes run summaries to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each run via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyRun logs one line per failed industry, then a summary.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) NotifyRun(report model.RunReport) error {
	runID := report.RunID.String()
	for _, o := range report.Failed() {
		n.logger.Warn("industry not refreshed",
			"run_id", runID,
			"industry", o.Industry,
			"kind", string(o.Kind),
			"error", o.Err,
		)
	}
	n.logger.Info("insight run summary",
		"run_id", runID,
		"industries", len(report.Outcomes),
		"succeeded", report.Succeeded(),
		"failed", len(report.Failed()),
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	return nil
}
