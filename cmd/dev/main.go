package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"trendspotter/adapters/sqlsource"
	"trendspotter/app"
	"trendspotter/domain/core"
	"trendspotter/internal"
	"trendspotter/internal/config"
	"trendspotter/internal/session"
	"trendspotter/internal/testkit"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendspotter-dev",
		Short: "TrendSpotter development tools",
	}

	rootCmd.AddCommand(
		newSeedCmd(),
		newSmokeTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	var driver, dsn, table string
	var days int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load synthetic campaign data into a database",
		Long: `Create a table of synthetic campaign rows so the SQL source has something to query.

For sqlite the DSN is a file path.

Example: trendspotter-dev seed --driver sqlite --dsn ./dev_campaigns.db --days 60`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedDatabase(cmd.Context(), driver, dsn, table, days, seed)
		},
	}

	cmd.Flags().StringVar(&driver, "driver", sqlsource.DriverSQLite, "Database driver: sqlite|postgres|mysql")
	cmd.Flags().StringVar(&dsn, "dsn", "./dev_campaigns.db", "Data source name")
	cmd.Flags().StringVar(&table, "table", "campaigns", "Table to create and fill")
	cmd.Flags().IntVar(&days, "days", 60, "Days of data per campaign")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic data")
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run the whole pipeline on synthetic data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context())
		},
	}
	return cmd
}

func seedDatabase(ctx context.Context, driver, dsn, table string, days int, seed int64) error {
	cfg := testkit.DefaultCampaignConfig()
	cfg.Days = days
	cfg.Seed = seed
	cfg.MissingRate = 0.02
	cfg.DuplicateRows = 5

	campaigns, err := testkit.GenerateCampaigns(cfg)
	if err != nil {
		return err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := testkit.SeedTable(ctx, db, table, campaigns); err != nil {
		return err
	}
	fmt.Printf("Seeded %d rows into %s (%s)\n", len(campaigns.Rows), table, driver)
	return nil
}

func runSmokeTests(ctx context.Context) error {
	fmt.Println("Running smoke tests...")

	dir, err := os.MkdirTemp("", "trendspotter-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	cfg := &config.Config{
		AI:      config.AIConfig{Provider: config.ProviderGemini, Model: "gemini-pro"},
		Server:  config.ServerConfig{MaxUploadMB: 50},
		Reports: config.ReportConfig{OutputDir: dir, Title: config.DefaultReportTitle, PDFCompress: true},
	}
	rs := app.NewReportService(cfg, nil, internal.NewLogger(internal.LogLevelWarn))

	genCfg := testkit.DefaultCampaignConfig()
	genCfg.MissingRate = 0.05
	genCfg.DuplicateRows = 3
	campaigns, err := testkit.GenerateCampaigns(genCfg)
	if err != nil {
		return err
	}

	dbPath := filepath.Join(dir, "smoke.db")
	s := session.New(core.NewSessionID())

	tests := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"csv_upload", func(ctx context.Context) error {
			data, err := campaigns.CSV()
			if err != nil {
				return err
			}
			_, err = rs.LoadUpload(ctx, s, "campaigns.csv", data)
			return err
		}},
		{"xlsx_upload", func(ctx context.Context) error {
			data, err := campaigns.XLSX()
			if err != nil {
				return err
			}
			_, err = rs.LoadUpload(ctx, s, "campaigns.xlsx", data)
			return err
		}},
		{"sql_load", func(ctx context.Context) error {
			if err := seedDatabase(ctx, sqlsource.DriverSQLite, dbPath, "campaigns", genCfg.Days, genCfg.Seed); err != nil {
				return err
			}
			desc := sqlsource.Descriptor{Driver: sqlsource.DriverSQLite, Database: dbPath}
			loaded, err := rs.LoadSQL(ctx, s, desc, "SELECT * FROM campaigns")
			if err != nil {
				return err
			}
			if loaded.Info.Rows == 0 {
				return fmt.Errorf("no rows loaded")
			}
			return nil
		}},
		{"clean", func(ctx context.Context) error {
			cleaned, err := rs.Clean(ctx, s)
			if err != nil {
				return err
			}
			if n := cleaned.Dataset.NullTotal(); n != 0 {
				return fmt.Errorf("%d missing values left after cleaning", n)
			}
			return nil
		}},
		{"analyze", func(ctx context.Context) error {
			analyzed, err := rs.Analyze(ctx, s)
			if err != nil {
				return err
			}
			if len(analyzed.Charts) == 0 {
				return fmt.Errorf("no charts built")
			}
			return nil
		}},
		{"export_pdf", func(ctx context.Context) error {
			_, err := rs.ExportPDF(ctx, s)
			return err
		}},
		{"export_pptx", func(ctx context.Context) error {
			_, err := rs.ExportPPTX(ctx, s)
			return err
		}},
	}

	passed := 0
	for _, test := range tests {
		fmt.Printf("  Running %s...", test.name)
		if err := test.fn(ctx); err != nil {
			fmt.Printf(" FAILED: %v\n", err)
		} else {
			fmt.Println(" PASSED")
			passed++
		}
	}

	fmt.Printf("\nSmoke tests: %d/%d passed\n", passed, len(tests))
	if passed < len(tests) {
		return fmt.Errorf("some smoke tests failed")
	}
	return nil
}
