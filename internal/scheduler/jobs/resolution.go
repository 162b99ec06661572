package jobs

import (
	"context"

	"github.com/jaylee/argos/internal/outcome"
	"github.com/jaylee/argos/pkg/logger"
)

// ResolutionJob sweeps the pending signals every minute so each
// horizon is resolved close to its due time.
type ResolutionJob struct {
	tracker *outcome.Tracker
	logger  *logger.Logger
}

// NewResolutionJob creates the pending-signal resolution job
func NewResolutionJob(tracker *outcome.Tracker, log *logger.Logger) *ResolutionJob {
	return &ResolutionJob{tracker: tracker, logger: log}
}

// Name returns the job name
func (j *ResolutionJob) Name() string {
	return "outcome_resolution"
}

// Schedule returns the cron schedule (every minute, with seconds)
func (j *ResolutionJob) Schedule() string {
	return "0 * * * * *"
}

// Run resolves every due horizon across the pending signals
func (j *ResolutionJob) Run(ctx context.Context) error {
	if err := j.tracker.ResolvePending(ctx); err != nil {
		return err
	}
	j.logger.WithField("pending", j.tracker.PendingCount()).Debug("resolution sweep complete")
	return nil
}
