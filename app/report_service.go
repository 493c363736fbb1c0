package app

import (
	"context"
	"fmt"
	"time"

	"trendspotter/adapters/excel"
	"trendspotter/adapters/report"
	"trendspotter/adapters/sqlsource"
	"trendspotter/internal"
	"trendspotter/internal/charts"
	"trendspotter/internal/cleaning"
	"trendspotter/internal/config"
	"trendspotter/internal/errors"
	"trendspotter/internal/insight"
	"trendspotter/internal/profiling"
	"trendspotter/internal/session"
	"trendspotter/internal/usage"
	"trendspotter/ports"
)

// ReportService drives every user action against one session: load, clean,
// analyze and export. Each action runs under the session gate and commits a
// new state only when it succeeds.
type ReportService struct {
	reader    ports.TabularReader
	sqlLoader *sqlsource.Loader
	cleaner   *cleaning.Cleaner
	metrics   *profiling.Calculator
	charts    *charts.Builder
	generator *insight.Generator
	usage     *usage.Tracker
	pdf       *report.PDFExporter
	pptx      *report.PPTXExporter
	title     string
	logger    *internal.Logger
	now       func() time.Time
}

// NewReportService wires the components from configuration. A nil client
// puts the insight generator in demo mode.
func NewReportService(cfg *config.Config, client ports.LLMClient, logger *internal.Logger) *ReportService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	tracker := usage.NewTracker()
	return &ReportService{
		reader:    excel.NewDataReader(logger),
		sqlLoader: sqlsource.NewLoader(logger),
		cleaner:   cleaning.NewCleaner(logger),
		metrics:   profiling.NewCalculator(),
		charts:    charts.NewBuilder(),
		generator: insight.NewGenerator(client, insight.GeneratorConfig{
			Provider:   cfg.AI.Provider,
			Model:      cfg.AI.Model,
			MaxTokens:  cfg.AI.MaxTokens,
			PromptsDir: cfg.AI.PromptsDir,
			Usage:      tracker,
		}, logger),
		usage:  tracker,
		pdf:    report.NewPDFExporter(cfg.Reports.OutputDir, cfg.Reports.PDFCompress, logger),
		pptx:   report.NewPPTXExporter(cfg.Reports.OutputDir, logger),
		title:  cfg.Reports.Title,
		logger: logger,
		now:    time.Now,
	}
}

// DemoMode reports whether narratives come from the fallback path only
func (rs *ReportService) DemoMode() bool {
	return rs.generator.DemoMode()
}

// Usage summarizes model token usage since startup
func (rs *ReportService) Usage() usage.Summary {
	return rs.usage.Summary()
}

// LoadUpload parses an uploaded file and makes it the current dataset
func (rs *ReportService) LoadUpload(ctx context.Context, s *session.Session, filename string, data []byte) (session.Loaded, error) {
	release, err := s.Begin()
	if err != nil {
		return session.Loaded{}, err
	}
	defer release()

	rs.logger.Info("[ReportService] loading upload %s (%d bytes)", filename, len(data))
	ds, err := rs.reader.LoadFile(filename, data)
	if err != nil {
		rs.logger.Warn("[ReportService] upload %s rejected: %v", filename, err)
		return session.Loaded{}, err
	}

	loaded := session.NewLoaded(ds, session.Source{Kind: session.SourceUpload, Name: filename}, rs.now())
	s.Commit(loaded)
	rs.logger.Info("[ReportService] loaded %d rows x %d columns from %s", loaded.Info.Rows, loaded.Info.Columns, filename)
	return loaded, nil
}

// LoadSQL runs query against the described database and makes the result current
func (rs *ReportService) LoadSQL(ctx context.Context, s *session.Session, desc sqlsource.Descriptor, query string) (session.Loaded, error) {
	release, err := s.Begin()
	if err != nil {
		return session.Loaded{}, err
	}
	defer release()

	ds, err := rs.sqlLoader.LoadSQL(ctx, desc, query)
	if err != nil {
		rs.logger.Warn("[ReportService] SQL load from %s failed: %v", desc.Redacted(), err)
		return session.Loaded{}, err
	}

	loaded := session.NewLoaded(ds, session.Source{Kind: session.SourceSQL, Name: desc.Redacted()}, rs.now())
	s.Commit(loaded)
	rs.logger.Info("[ReportService] loaded %d rows x %d columns from %s", loaded.Info.Rows, loaded.Info.Columns, desc.Redacted())
	return loaded, nil
}

// Clean replaces the current dataset with its cleaned version
func (rs *ReportService) Clean(ctx context.Context, s *session.Session) (session.Loaded, error) {
	release, err := s.Begin()
	if err != nil {
		return session.Loaded{}, err
	}
	defer release()

	current, err := s.Loaded()
	if err != nil {
		return session.Loaded{}, err
	}

	cleaned, rep := rs.cleaner.Clean(current.Dataset)
	next := current.WithCleaned(cleaned, rep, rs.cleaner.DetectDateColumns(cleaned))
	s.Commit(next)
	return next, nil
}

// Analyze generates the narrative and the chart set for the current dataset.
// A failing model call degrades to the fallback narrative and still commits.
func (rs *ReportService) Analyze(ctx context.Context, s *session.Session) (session.Loaded, error) {
	release, err := s.Begin()
	if err != nil {
		return session.Loaded{}, err
	}
	defer release()

	current, err := s.Loaded()
	if err != nil {
		return session.Loaded{}, err
	}

	startTime := time.Now()
	narrative := rs.generator.GenerateNarrative(ctx, insight.SummarizeForPrompt(current.Dataset))
	specs := rs.charts.All(current.Dataset)

	if narrative.Fallback {
		rs.logger.Warn("[ReportService] analysis used fallback narrative: %s", narrative.CauseMessage())
	}
	rs.logger.Info("[ReportService] analysis finished in %v (%d charts)", time.Since(startTime), len(specs))

	next := current.WithAnalysis(narrative, specs)
	s.Commit(next)
	return next, nil
}

// ClearAnalysis drops narrative and charts, keeping the dataset
func (rs *ReportService) ClearAnalysis(s *session.Session) error {
	release, err := s.Begin()
	if err != nil {
		return err
	}
	defer release()

	current, err := s.Loaded()
	if err != nil {
		return err
	}
	s.Commit(current.WithoutAnalysis())
	return nil
}

// Metrics computes descriptive statistics for the current dataset
func (rs *ReportService) Metrics(s *session.Session) (profiling.Record, error) {
	current, err := s.Loaded()
	if err != nil {
		return nil, err
	}
	return rs.metrics.BasicMetrics(current.Dataset), nil
}

// OrderedMetrics computes statistics in dataset column order. Stats and
// order come from one read of the session state.
func (rs *ReportService) OrderedMetrics(s *session.Session) ([]profiling.NamedStats, error) {
	current, err := s.Loaded()
	if err != nil {
		return nil, err
	}
	return rs.metrics.BasicMetrics(current.Dataset).Ordered(current.Dataset, 0), nil
}

// Charts builds the chart set for the current dataset without touching
// the model or the session state
func (rs *ReportService) Charts(s *session.Session) (charts.Specs, error) {
	current, err := s.Loaded()
	if err != nil {
		return nil, err
	}
	return rs.charts.All(current.Dataset), nil
}

// ExecutiveSummary asks the model for a short summary of the current metrics.
// It does not change session state.
func (rs *ReportService) ExecutiveSummary(ctx context.Context, s *session.Session) (insight.Narrative, error) {
	metrics, err := rs.Metrics(s)
	if err != nil {
		return insight.Narrative{}, err
	}
	return rs.generator.GenerateExecutiveSummary(ctx, metrics), nil
}

// ExportPDF writes the paper report, falling back to the basic document
func (rs *ReportService) ExportPDF(ctx context.Context, s *session.Session) (*report.Artifact, error) {
	return rs.export(s, "PDF", rs.pdf.Export, rs.pdf.ExportBasic)
}

// ExportPPTX writes the slide deck, falling back to the one-slide deck
func (rs *ReportService) ExportPPTX(ctx context.Context, s *session.Session) (*report.Artifact, error) {
	return rs.export(s, "PPTX", rs.pptx.Export, rs.pptx.ExportBasic)
}

type exportFunc func(report.Input) (*report.Artifact, error)

func (rs *ReportService) export(s *session.Session, format string, full, basic exportFunc) (*report.Artifact, error) {
	release, err := s.Begin()
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.Loaded()
	if err != nil {
		return nil, err
	}

	in := rs.exportInput(current)
	artifact, err := full(in)
	if err == nil {
		return artifact, nil
	}

	rs.logger.Error("[ReportService] %s export failed, writing fallback document: %v", format, err)
	artifact, basicErr := basic(in)
	if basicErr != nil {
		return nil, errors.RenderFailure(fmt.Sprintf("%s export and fallback both failed", format), basicErr)
	}
	return artifact, nil
}

// exportInput assembles already computed values; exporters never recompute them
func (rs *ReportService) exportInput(l session.Loaded) report.Input {
	in := report.Input{
		Title:       rs.title,
		Dataset:     l.Dataset,
		Metrics:     rs.metrics.BasicMetrics(l.Dataset),
		GeneratedAt: rs.now(),
	}
	if l.Narrative != nil {
		in.Narrative = l.Narrative.Text
		in.NarrativeFallback = l.Narrative.Fallback
	}
	return in
}
