package scheduler

import (
	"context"
	"fmt"

	"github.com/orangecx/cxpipe/internal/cleaning"
	"github.com/orangecx/cxpipe/internal/validation"
	"github.com/orangecx/cxpipe/pkg/logger"
)

// RefreshJob runs the full clean-then-certify cycle on a schedule. A run
// that fails certification is a job failure so it shows up in the history
// and triggers the retry path.
type RefreshJob struct {
	schedule string
	pipeline *cleaning.Pipeline
	suite    *validation.Suite
	log      *logger.Logger
}

// NewRefreshJob creates the recurring refresh job.
func NewRefreshJob(schedule string, pipeline *cleaning.Pipeline, suite *validation.Suite, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		schedule: schedule,
		pipeline: pipeline,
		suite:    suite,
		log:      log,
	}
}

// Name returns the job name.
func (j *RefreshJob) Name() string {
	return "cx_refresh"
}

// Schedule returns the cron expression.
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one clean+validate cycle.
func (j *RefreshJob) Run(ctx context.Context) error {
	result, err := j.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("cleaning run: %w", err)
	}

	report := j.suite.Run(result.Shops, result.Reviews, result.Surveys)
	if !report.IsCertified() {
		failures := report.Failures()
		return fmt.Errorf("run %s failed certification: %d failing checks, overall score %.4f",
			result.RunID, len(failures), report.OverallScore())
	}

	j.log.WithFields(map[string]interface{}{
		"run_id":        result.RunID,
		"overall_score": report.OverallScore(),
	}).Info("Scheduled refresh certified")
	return nil
}
