package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run the cleaning pipeline over the raw extracts",
	Long: `Builds dim_shops, fact_reviews and fact_surveys from the four raw
extracts and writes them, plus the cleaning log, to the output directory.

Example:
  go run ./cmd/cxpipe clean
  go run ./cmd/cxpipe clean --data-dir ./data --output-dir ./clean_output`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, log, err := initDeps()
	if err != nil {
		return err
	}

	pipeline := newPipeline(cfg, log)
	result, err := pipeline.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("cleaning run failed: %w", err)
	}

	fmt.Println("=== Cleaning Run ===")
	fmt.Printf("Run ID:   %s\n", result.RunID)
	fmt.Printf("Duration: %s\n", result.Duration())
	fmt.Println()
	for _, t := range result.Tables() {
		fmt.Printf("  %-14s %6d rows x %2d columns\n", t.Name, t.NumRows(), t.NumCols())
	}

	fmt.Println("\nOperations:")
	for _, op := range result.Ledger.Ops {
		fmt.Printf("  [%s] %s: %d -> %d (%+d)\n",
			op.Operation, op.Description, op.RowsBefore, op.RowsAfter, op.RowsDiff())
	}

	return nil
}
