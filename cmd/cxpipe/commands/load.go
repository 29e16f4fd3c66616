package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/orangecx/cxpipe/internal/table"
	"github.com/orangecx/cxpipe/internal/validation"
	"github.com/orangecx/cxpipe/internal/warehouse"
	"github.com/orangecx/cxpipe/pkg/config"
	"github.com/orangecx/cxpipe/pkg/database"
	"github.com/orangecx/cxpipe/pkg/logger"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load previously cleaned tables to the warehouse",
	Long: `Re-validates the clean tables in the output directory and, if
certified, loads them to the configured warehouse targets (Postgres via
DATABASE_URL, SQLite via CX_SQLITE_PATH). Uncertified tables are refused.

Example:
  go run ./cmd/cxpipe load`,
	RunE: runLoadCmd,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoadCmd(cmd *cobra.Command, args []string) error {
	cfg, log, err := initDeps()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	report, tables, err := validateCleanTables(ctx, cfg, log)
	if err != nil {
		return err
	}
	if !report.IsCertified() {
		printReport(report)
		return fmt.Errorf("refusing load: tables are not certified")
	}

	return loadToWarehouse(ctx, cfg, log, uuid.NewString(), tables, report)
}

// loadToWarehouse pushes certified tables to every configured target.
func loadToWarehouse(ctx context.Context, cfg *config.Config, log *logger.Logger, runID string, tables []*table.Table, report *validation.Report) error {
	if cfg.Warehouse.DatabaseURL == "" && cfg.Warehouse.SQLitePath == "" {
		return fmt.Errorf("no warehouse target configured (set DATABASE_URL or CX_SQLITE_PATH)")
	}

	if cfg.Warehouse.DatabaseURL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to warehouse: %w", err)
		}
		defer db.Close()

		if err := warehouse.NewPostgres(db.Pool, log).Load(ctx, runID, tables, report); err != nil {
			return fmt.Errorf("postgres load: %w", err)
		}
		fmt.Println("Loaded to Postgres warehouse")
	}

	if cfg.Warehouse.SQLitePath != "" {
		if err := warehouse.NewSQLiteMart(cfg.Warehouse.SQLitePath, log).Load(ctx, runID, tables, report); err != nil {
			return fmt.Errorf("sqlite load: %w", err)
		}
		fmt.Printf("Loaded to SQLite mart: %s\n", cfg.Warehouse.SQLitePath)
	}

	return nil
}
