package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Clean, validate, and optionally load in one pass",
	Long: `Runs the cleaning pipeline, certifies the result, and with --load
pushes the certified tables to the configured warehouse targets.

Example:
  go run ./cmd/cxpipe run
  go run ./cmd/cxpipe run --load`,
	RunE: runRun,
}

var runLoad bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runLoad, "load", false, "load certified tables to the warehouse")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, log, err := initDeps()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	pipeline := newPipeline(cfg, log)
	result, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("cleaning run failed: %w", err)
	}

	suite := newSuite(cfg, log)
	report := suite.Run(result.Shops, result.Reviews, result.Surveys)

	printReport(report)
	if !report.IsCertified() {
		return fmt.Errorf("certification failed: one or more dimensions below %.0f%%",
			report.Threshold*100)
	}

	if !runLoad {
		return nil
	}
	return loadToWarehouse(ctx, cfg, log, result.RunID, result.Tables(), report)
}
