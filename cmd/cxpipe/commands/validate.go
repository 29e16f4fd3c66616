package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orangecx/cxpipe/internal/table"
	"github.com/orangecx/cxpipe/internal/validation"
	"github.com/orangecx/cxpipe/pkg/config"
	"github.com/orangecx/cxpipe/pkg/logger"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the quality gate over the clean tables",
	Long: `Loads the clean tables from the output directory, runs the full
check catalog, writes the validation ledger and failures subset, and
reports the certification verdict.

Example:
  go run ./cmd/cxpipe validate
  go run ./cmd/cxpipe validate --threshold 0.99`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, log, err := initDeps()
	if err != nil {
		return err
	}

	report, _, err := validateCleanTables(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	printReport(report)
	if !report.IsCertified() {
		return fmt.Errorf("certification failed: one or more dimensions below %.0f%%",
			report.Threshold*100)
	}
	return nil
}

// validateCleanTables loads the clean tables, runs the gate, and persists
// the full ledger plus the failures-only subset.
func validateCleanTables(ctx context.Context, cfg *config.Config, log *logger.Logger) (*validation.Report, []*table.Table, error) {
	loader := &table.CSVLoader{Dir: cfg.OutputDir}

	shops, err := loader.Load(ctx, "dim_shops")
	if err != nil {
		return nil, nil, fmt.Errorf("load dim_shops: %w", err)
	}
	reviews, err := loader.Load(ctx, "fact_reviews")
	if err != nil {
		return nil, nil, fmt.Errorf("load fact_reviews: %w", err)
	}
	surveys, err := loader.Load(ctx, "fact_surveys")
	if err != nil {
		return nil, nil, fmt.Errorf("load fact_surveys: %w", err)
	}

	suite := newSuite(cfg, log)
	report := suite.Run(shops, reviews, surveys)

	sink := &table.CSVSink{Dir: cfg.OutputDir}
	if err := sink.Store(ctx, report.Snapshot()); err != nil {
		return nil, nil, fmt.Errorf("persist validation results: %w", err)
	}
	if len(report.Failures()) > 0 {
		if err := sink.Store(ctx, report.FailuresSnapshot()); err != nil {
			return nil, nil, fmt.Errorf("persist validation failures: %w", err)
		}
	}

	return report, []*table.Table{shops, reviews, surveys}, nil
}

func printReport(report *validation.Report) {
	fmt.Println("=== Validation Summary ===")

	fmt.Println("\nBy dimension:")
	for _, d := range report.Dimensions() {
		score := report.DimensionScore(d)
		fmt.Printf("  %s %-12s %5.1f%%\n", passMark(score >= report.Threshold), d, score*100)
	}

	fmt.Println("\nBy table:")
	for _, name := range report.Tables() {
		score := report.TableScore(name)
		fmt.Printf("  %s %-20s %5.1f%%\n", passMark(score >= report.Threshold), name, score*100)
	}

	fmt.Printf("\nOverall score: %.1f%%\n", report.OverallScore()*100)

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Printf("\nFailing checks (%d):\n", len(failures))
		for _, r := range failures {
			fmt.Printf("  [%s] %s / %s: %d of %d failed", r.Dimension, r.Table, r.Check, r.Failed, r.Total)
			if r.Details != "" {
				fmt.Printf(" (%s)", r.Details)
			}
			fmt.Println()
		}
	}

	if report.IsCertified() {
		fmt.Println("\nVERDICT: CERTIFIED - data approved for warehouse load")
	} else {
		fmt.Println("\nVERDICT: NOT CERTIFIED - review failing checks above")
	}
}

func passMark(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
