package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"trendspotter/adapters/report"
	"trendspotter/adapters/sqlsource"
	"trendspotter/app"
	"trendspotter/domain/core"
	"trendspotter/internal"
	"trendspotter/internal/charts"
	"trendspotter/internal/config"
	"trendspotter/internal/container"
	"trendspotter/internal/session"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "trendspotter",
		Short:        "TrendSpotter CLI for profiling AdTech data and exporting reports",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newDescribeCmd(),
		newReportCmd(),
		newSQLCmd(),
		newChartsCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliRuntime is one container plus a fresh session, built per invocation
type cliRuntime struct {
	container *container.Container
	reports   *app.ReportService
	session   *session.Session
}

func newRuntime(outputDir string) (*cliRuntime, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if outputDir != "" {
		cfg.Reports.OutputDir = outputDir
	}

	level := internal.LogLevelWarn
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = internal.ParseLogLevel(env)
	}
	c, err := container.New(cfg, internal.NewLogger(level))
	if err != nil {
		return nil, err
	}
	return &cliRuntime{container: c, reports: c.Reports, session: session.New(core.NewSessionID())}, nil
}

func (rt *cliRuntime) close() {
	_ = rt.container.Shutdown(context.Background())
}

func newDescribeCmd() *cobra.Command {
	var clean bool
	var summary bool

	cmd := &cobra.Command{
		Use:   "describe [file]",
		Short: "Print the dataset profile and per-column statistics",
		Long: `Load a CSV or Excel file and print its shape, column types, null counts
and descriptive statistics for every numeric column.

Example: trendspotter describe campaigns.csv --clean --summary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime("")
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.loadFile(cmd.Context(), args[0], clean); err != nil {
				return err
			}
			if err := rt.printProfile(cmd.OutOrStdout()); err != nil {
				return err
			}
			if summary {
				return rt.printExecutiveSummary(cmd.Context(), cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "Clean the dataset before profiling")
	cmd.Flags().BoolVar(&summary, "summary", false, "Also print an executive summary of the metrics")
	return cmd
}

func newReportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Analyze a file and export the PDF report and/or slide deck",
		Long: `Run the whole pipeline on a CSV or Excel file: load, optionally clean,
generate insights and write the requested documents.

Without --pdf or --pptx a PDF is written to REPORT_DIR.

Example: trendspotter report campaigns.csv --clean --pdf out/report.pdf --pptx out/deck.pptx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime("")
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.loadFile(cmd.Context(), args[0], opts.clean); err != nil {
				return err
			}
			return rt.analyzeAndExport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.bind(cmd)
	return cmd
}

func newChartsCmd() *cobra.Command {
	var clean bool
	var format string

	cmd := &cobra.Command{
		Use:   "charts [file]",
		Short: "Print the chart specifications for a file as YAML or JSON",
		Long: `Build the summary and AdTech charts for a CSV or Excel file and print
their declarative specs. No model call is made.

Example: trendspotter charts campaigns.csv --format json > charts.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unsupported format %q (yaml|json)", format)
			}
			rt, err := newRuntime("")
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.loadFile(cmd.Context(), args[0], clean); err != nil {
				return err
			}
			specs, err := rt.reports.Charts(rt.session)
			if err != nil {
				return err
			}
			return writeSpecs(cmd.OutOrStdout(), specs, format)
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "Clean the dataset before building charts")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml|json")
	return cmd
}

func writeSpecs(w io.Writer, specs charts.Specs, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(specs)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(specs); err != nil {
		return err
	}
	return enc.Close()
}

func newSQLCmd() *cobra.Command {
	var desc sqlsource.Descriptor
	var query string
	var describeOnly bool
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Load a query result from PostgreSQL, MySQL or SQLite",
		Long: `Run a query and profile the result, or export a report from it.
For sqlite, --database is the path of the database file.

Example: trendspotter sql --driver postgres --host localhost --database ads --user report \
  --query "SELECT * FROM daily_campaigns" --pptx deck.pptx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime("")
			if err != nil {
				return err
			}
			defer rt.close()

			ctx := cmd.Context()
			if desc.Password == "" {
				desc.Password = os.Getenv("TRENDSPOTTER_DB_PASSWORD")
			}
			if _, err := rt.reports.LoadSQL(ctx, rt.session, desc, query); err != nil {
				return err
			}
			if opts.clean {
				if _, err := rt.reports.Clean(ctx, rt.session); err != nil {
					return err
				}
			}
			if describeOnly {
				return rt.printProfile(cmd.OutOrStdout())
			}
			return rt.analyzeAndExport(ctx, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&desc.Driver, "driver", sqlsource.DriverPostgres, "Database type: postgres|mysql|sqlite")
	cmd.Flags().StringVar(&desc.Host, "host", "localhost", "Database host")
	cmd.Flags().IntVar(&desc.Port, "port", 0, "Database port (default per driver)")
	cmd.Flags().StringVar(&desc.Database, "database", "", "Database name, or file path for sqlite")
	cmd.Flags().StringVar(&desc.User, "user", "", "Database user")
	cmd.Flags().StringVar(&desc.Password, "password", "", "Database password (or TRENDSPOTTER_DB_PASSWORD)")
	cmd.Flags().StringVar(&desc.SSLMode, "sslmode", "", "PostgreSQL sslmode")
	cmd.Flags().StringVar(&query, "query", "", "SQL query to run")
	cmd.Flags().BoolVar(&describeOnly, "describe", false, "Print the profile instead of exporting documents")
	_ = cmd.MarkFlagRequired("query")
	_ = cmd.MarkFlagRequired("database")
	opts.bind(cmd)
	return cmd
}

// exportOptions are the flags shared by report and sql
type exportOptions struct {
	clean    bool
	pdfPath  string
	pptxPath string
}

func (o *exportOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.clean, "clean", false, "Clean the dataset before analysis")
	cmd.Flags().StringVar(&o.pdfPath, "pdf", "", "Write the PDF report to this path")
	cmd.Flags().StringVar(&o.pptxPath, "pptx", "", "Write the slide deck to this path")
}

func (rt *cliRuntime) loadFile(ctx context.Context, path string, clean bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if _, err := rt.reports.LoadUpload(ctx, rt.session, filepath.Base(path), data); err != nil {
		return err
	}
	if clean {
		loaded, err := rt.reports.Clean(ctx, rt.session)
		if err != nil {
			return err
		}
		if r := loaded.CleanReport; r != nil {
			fmt.Fprintf(os.Stderr, "Cleaned: %d -> %d rows (%d duplicates removed)\n", r.OriginalRows, r.CleanedRows, r.DuplicatesRemoved)
		}
	}
	return nil
}

func (rt *cliRuntime) printProfile(w io.Writer) error {
	loaded, err := rt.session.Loaded()
	if err != nil {
		return err
	}
	ordered, err := rt.reports.OrderedMetrics(rt.session)
	if err != nil {
		return err
	}

	info := loaded.Info
	fmt.Fprintf(w, "Source:  %s (%s)\n", loaded.Source.Name, loaded.Source.Kind)
	fmt.Fprintf(w, "Rows:    %s\n", humanize.Comma(int64(info.Rows)))
	fmt.Fprintf(w, "Columns: %d\n", info.Columns)
	fmt.Fprintf(w, "Memory:  %s\n\n", humanize.IBytes(uint64(info.MemoryBytes)))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tNULLS")
	for _, name := range info.ColumnNames {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", name, info.Types[name], info.NullCounts[name])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(ordered) == 0 {
		fmt.Fprintln(w, "\nNo numeric columns.")
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "COLUMN\tMEAN\tMEDIAN\tSTD\tMIN\tMAX\t")
	for _, ns := range ordered {
		s := ns.Stats
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n", ns.Column, s.Mean, s.Median, s.Std, s.Min, s.Max)
	}
	return tw.Flush()
}

func (rt *cliRuntime) printExecutiveSummary(ctx context.Context, w io.Writer) error {
	summary, err := rt.reports.ExecutiveSummary(ctx, rt.session)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(summary.Text))
	return nil
}

func (rt *cliRuntime) analyzeAndExport(ctx context.Context, w io.Writer, opts exportOptions) error {
	analyzed, err := rt.reports.Analyze(ctx, rt.session)
	if err != nil {
		return err
	}
	if n := analyzed.Narrative; n != nil && n.Fallback {
		fmt.Fprintf(os.Stderr, "AI insights unavailable (%s), using the automated summary\n", n.CauseMessage())
	}

	pdfPath := opts.pdfPath
	if pdfPath == "" && opts.pptxPath == "" {
		pdfPath = "-"
	}

	if pdfPath != "" {
		artifact, err := rt.reports.ExportPDF(ctx, rt.session)
		if err != nil {
			return err
		}
		if err := place(w, artifact, pdfPath); err != nil {
			return err
		}
	}
	if opts.pptxPath != "" {
		artifact, err := rt.reports.ExportPPTX(ctx, rt.session)
		if err != nil {
			return err
		}
		if err := place(w, artifact, opts.pptxPath); err != nil {
			return err
		}
	}
	return nil
}

// place moves a written document to target; "-" leaves it in REPORT_DIR
func place(w io.Writer, artifact *report.Artifact, target string) error {
	if target == "-" {
		fmt.Fprintf(w, "Wrote %s\n", artifact.Path)
		return nil
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.Rename(artifact.Path, target); err != nil {
		if err := copyFile(artifact.Path, target); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		_ = os.Remove(artifact.Path)
	}
	fmt.Fprintf(w, "Wrote %s\n", target)
	return nil
}

// copyFile covers renames across filesystems
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
