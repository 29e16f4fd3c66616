package commands

import (
	"github.com/spf13/cobra"

	"github.com/orangecx/cxpipe/internal/cleaning"
	"github.com/orangecx/cxpipe/internal/table"
	"github.com/orangecx/cxpipe/internal/validation"
	"github.com/orangecx/cxpipe/pkg/config"
	"github.com/orangecx/cxpipe/pkg/logger"
)

var (
	// Global flags
	dataDir   string
	outputDir string
	threshold float64
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cxpipe",
	Short: "CX data pipeline - cleaning and quality gate",
	Long: `cxpipe turns four raw CX extracts (shop identity, shop metadata,
customer reviews, SMS surveys) into three analysis-ready tables and
certifies them against a dimension-scored quality gate.

Usage:
  go run ./cmd/cxpipe [command]

Examples:
  go run ./cmd/cxpipe clean
  go run ./cmd/cxpipe validate --threshold 0.99
  go run ./cmd/cxpipe run --load
  go run ./cmd/cxpipe schedule`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory with the raw extracts (default from env)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory for clean artifacts (default from env)")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 0, "certification threshold override (0 = from env)")
}

// initDeps loads config and builds the logger, applying flag overrides.
func initDeps() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if threshold > 0 {
		cfg.Validation.Threshold = threshold
	}

	return cfg, logger.New(cfg), nil
}

// newPipeline wires the CSV collaborators into a pipeline.
func newPipeline(cfg *config.Config, log *logger.Logger) *cleaning.Pipeline {
	loader := &table.CSVLoader{Dir: cfg.Data.Dir, Files: cfg.SourceFiles()}
	sink := &table.CSVSink{Dir: cfg.OutputDir}
	return cleaning.NewPipeline(loader, sink, log)
}

// newSuite builds the quality gate from config.
func newSuite(cfg *config.Config, log *logger.Logger) *validation.Suite {
	return validation.NewSuite(validation.SuiteConfig{
		Threshold:           cfg.Validation.Threshold,
		DistributionCeiling: cfg.Validation.DistributionCeiling,
		DateMin:             cfg.Validation.DateMin,
		DateMax:             cfg.Validation.DateMax,
	}, log)
}
