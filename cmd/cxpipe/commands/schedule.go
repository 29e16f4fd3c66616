package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orangecx/cxpipe/internal/scheduler"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the clean+validate cycle on a cron schedule",
	Long: `Starts a scheduler that re-runs the full clean and certify cycle
on the configured cron expression (CX_SCHEDULE, seconds field included).

Example:
  go run ./cmd/cxpipe schedule
  go run ./cmd/cxpipe schedule --cron "0 0 */6 * * *"`,
	RunE: runSchedule,
}

var scheduleCron string

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "cron expression override")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, err := initDeps()
	if err != nil {
		return err
	}

	spec := cfg.Schedule
	if scheduleCron != "" {
		spec = scheduleCron
	}

	job := scheduler.NewRefreshJob(spec, newPipeline(cfg, log), newSuite(cfg, log), log)

	sched := scheduler.New(log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}

	sched.Start()
	fmt.Printf("Scheduler running (%s). Ctrl+C to stop.\n", spec)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	printJobHistory(sched, job.Name())
	return nil
}

// printJobHistory summarizes the recorded runs on shutdown.
func printJobHistory(sched *scheduler.Scheduler, jobName string) {
	history, err := sched.History(jobName)
	if err != nil || len(history.Results) == 0 {
		return
	}

	fmt.Printf("\n%s: %d runs, %.0f%% success\n",
		jobName, len(history.Results), history.SuccessRate()*100)
	for _, r := range history.LatestResults(5) {
		status := "OK"
		if !r.Success {
			status = "FAILED: " + r.Error
		}
		fmt.Printf("  %s  %-8s %s\n",
			r.StartTime.Format("2006-01-02 15:04:05"), r.Duration.Round(time.Millisecond), status)
	}
}
