package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orangecx/cxpipe/pkg/logger"
)

// flakyJob fails its first failures runs, then succeeds.
type flakyJob struct {
	name     string
	failures int
	runs     int
}

func (j *flakyJob) Name() string     { return j.name }
func (j *flakyJob) Schedule() string { return "0 0 6 * * *" }

func (j *flakyJob) Run(ctx context.Context) error {
	j.runs++
	if j.runs <= j.failures {
		return errors.New("refresh source unavailable")
	}
	return nil
}

func testScheduler() *Scheduler {
	s := New(logger.Nop())
	s.retryDelay = time.Millisecond
	return s
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := testScheduler()

	require.NoError(t, s.AddJob(&flakyJob{name: "refresh"}))
	err := s.AddJob(&flakyJob{name: "refresh"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJobRejectsBadCron(t *testing.T) {
	s := testScheduler()

	job := &badScheduleJob{}
	err := s.AddJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to schedule")
}

type badScheduleJob struct{}

func (j *badScheduleJob) Name() string                  { return "broken" }
func (j *badScheduleJob) Schedule() string              { return "not a cron expression" }
func (j *badScheduleJob) Run(ctx context.Context) error { return nil }

func TestRunJobUnknownJob(t *testing.T) {
	s := testScheduler()

	err := s.RunJob("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunJobRecoversWithinRetryBudget(t *testing.T) {
	s := testScheduler()
	job := &flakyJob{name: "refresh", failures: 2}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	// Two failures plus the final successful attempt.
	assert.Equal(t, 3, job.runs)

	history, err := s.History("refresh")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.True(t, history.Results[0].Success)
	assert.Empty(t, history.Results[0].Error)
	assert.InDelta(t, 1.0, history.SuccessRate(), 1e-9)
}

func TestRunJobExhaustsRetries(t *testing.T) {
	s := testScheduler()
	job := &flakyJob{name: "refresh", failures: 100}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	// Initial attempt plus maxRetries, then give up.
	assert.Equal(t, s.maxRetries+1, job.runs)

	history, err := s.History("refresh")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Equal(t, "refresh source unavailable", history.Results[0].Error)
	assert.InDelta(t, 0.0, history.SuccessRate(), 1e-9)
}

func TestHistoryUnknownJob(t *testing.T) {
	s := testScheduler()

	_, err := s.History("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestJobHistoryWindow(t *testing.T) {
	var h JobHistory
	for i := 0; i < 120; i++ {
		h.AddResult(JobResult{JobName: "refresh", Success: i%2 == 0})
	}

	// Only the last 100 results are kept.
	assert.Len(t, h.Results, 100)

	latest := h.LatestResults(5)
	require.Len(t, latest, 5)
	assert.Equal(t, h.Results[len(h.Results)-1], latest[4])

	assert.Len(t, h.LatestResults(500), 100)
	assert.Empty(t, (&JobHistory{}).LatestResults(3))

	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
	assert.InDelta(t, 0.0, (&JobHistory{}).SuccessRate(), 1e-9)
}
