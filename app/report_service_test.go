package app

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trendspotter/adapters/llm"
	"trendspotter/adapters/report"
	"trendspotter/adapters/sqlsource"
	"trendspotter/domain/core"
	"trendspotter/internal"
	"trendspotter/internal/config"
	"trendspotter/internal/errors"
	"trendspotter/internal/session"
	"trendspotter/internal/testkit"
	"trendspotter/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adsCSV = `date,campaign,clicks,conversions,cost
2024-01-01,search,10,2,5.5
2024-01-01,search,10,2,5.5
2024-01-02,social,20,4,
2024-01-03,,0,0,1.25
`

func testConfig(dir string) *config.Config {
	return &config.Config{
		AI:      config.AIConfig{Provider: config.ProviderGemini, Model: "gemini-pro", MaxTokens: 256},
		Server:  config.ServerConfig{MaxUploadMB: 1},
		Reports: config.ReportConfig{OutputDir: dir, Title: config.DefaultReportTitle},
	}
}

func newService(t *testing.T, client ports.LLMClient) *ReportService {
	t.Helper()
	return NewReportService(testConfig(t.TempDir()), client, internal.NewNopLogger())
}

func loadedSession(t *testing.T, rs *ReportService) *session.Session {
	t.Helper()
	s := session.New(core.NewSessionID())
	_, err := rs.LoadUpload(context.Background(), s, "ads.csv", []byte(adsCSV))
	require.NoError(t, err)
	return s
}

func TestLoadUpload(t *testing.T) {
	rs := newService(t, nil)
	s := session.New(core.NewSessionID())

	loaded, err := rs.LoadUpload(context.Background(), s, "ads.csv", []byte(adsCSV))
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Info.Rows)
	assert.Equal(t, 5, loaded.Info.Columns)
	assert.Equal(t, session.SourceUpload, loaded.Source.Kind)
	assert.Equal(t, "ads.csv", loaded.Source.Name)
}

func TestFailedLoadKeepsPriorState(t *testing.T) {
	rs := newService(t, nil)
	s := loadedSession(t, rs)

	_, err := rs.LoadUpload(context.Background(), s, "broken.csv", []byte{0xff, 0xfe, 0x00})
	assert.True(t, errors.HasCode(err, errors.CodeParseFailure))

	_, err = rs.LoadSQL(context.Background(), s,
		sqlsource.Descriptor{Driver: sqlsource.DriverSQLite, Database: filepath.Join(t.TempDir(), "x.db")},
		"SELECT * FROM missing_table")
	assert.True(t, errors.HasCode(err, errors.CodeQueryFailure))

	current, err := s.Loaded()
	require.NoError(t, err)
	assert.Equal(t, "ads.csv", current.Source.Name)
	assert.Equal(t, 4, current.Info.Rows)
}

func TestActionsRequireDataset(t *testing.T) {
	rs := newService(t, nil)
	s := session.New(core.NewSessionID())

	_, err := rs.Clean(context.Background(), s)
	assert.True(t, errors.HasCode(err, errors.CodeNoDataset))
	_, err = rs.Analyze(context.Background(), s)
	assert.True(t, errors.HasCode(err, errors.CodeNoDataset))
	_, err = rs.Metrics(s)
	assert.True(t, errors.HasCode(err, errors.CodeNoDataset))
	_, err = rs.ExportPDF(context.Background(), s)
	assert.True(t, errors.HasCode(err, errors.CodeNoDataset))
}

func TestBusySessionRejectsAction(t *testing.T) {
	rs := newService(t, nil)
	s := loadedSession(t, rs)

	release, err := s.Begin()
	require.NoError(t, err)
	defer release()

	_, err = rs.Clean(context.Background(), s)
	assert.True(t, errors.HasCode(err, errors.CodeSessionBusy))
}

func TestCleanResetsAnalysis(t *testing.T) {
	client := &llm.MockLLMClient{Response: "Search drives most conversions."}
	rs := newService(t, client)
	s := loadedSession(t, rs)

	analyzed, err := rs.Analyze(context.Background(), s)
	require.NoError(t, err)
	require.True(t, analyzed.InsightsGenerated)
	assert.Equal(t, "Search drives most conversions.", analyzed.Narrative.Text)
	assert.Contains(t, analyzed.Charts, "conversion_rate")

	cleaned, err := rs.Clean(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, cleaned.InsightsGenerated)
	assert.Nil(t, cleaned.Narrative)
	assert.Equal(t, 3, cleaned.Info.Rows)
	require.NotNil(t, cleaned.CleanReport)
	assert.Equal(t, 1, cleaned.CleanReport.DuplicatesRemoved)
	assert.Equal(t, []string{"date"}, cleaned.DateColumns)
}

func TestAnalyzeFallsBackWhenModelFails(t *testing.T) {
	client := &llm.MockLLMClient{Error: fmt.Errorf("quota exceeded")}
	rs := newService(t, client)
	s := loadedSession(t, rs)

	analyzed, err := rs.Analyze(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, analyzed.Narrative)
	assert.True(t, analyzed.Narrative.Fallback)
	assert.Contains(t, analyzed.Narrative.Text, "Rows: 4")
	assert.Equal(t, 1, client.Calls)
}

func TestClearAnalysis(t *testing.T) {
	rs := newService(t, &llm.MockLLMClient{})
	s := loadedSession(t, rs)
	_, err := rs.Analyze(context.Background(), s)
	require.NoError(t, err)

	require.NoError(t, rs.ClearAnalysis(s))
	current, err := s.Loaded()
	require.NoError(t, err)
	assert.False(t, current.InsightsGenerated)
	assert.Equal(t, 4, current.Info.Rows)
}

func TestMetrics(t *testing.T) {
	rs := newService(t, nil)
	s := loadedSession(t, rs)

	metrics, err := rs.Metrics(s)
	require.NoError(t, err)
	assert.Contains(t, metrics, "clicks")
	assert.Equal(t, 1, metrics["cost"].NullCount)
	assert.InDelta(t, 10.0, metrics["clicks"].Mean, 1e-9)
}

func TestChartsLeaveSessionUnchanged(t *testing.T) {
	rs := newService(t, nil)
	s := loadedSession(t, rs)

	specs, err := rs.Charts(s)
	require.NoError(t, err)
	assert.Contains(t, specs, "conversion_rate")

	current, err := s.Loaded()
	require.NoError(t, err)
	assert.False(t, current.InsightsGenerated)
	assert.Empty(t, current.Charts)

	_, err = rs.Charts(session.New(core.NewSessionID()))
	assert.True(t, errors.HasCode(err, errors.CodeNoDataset))
}

func TestExportPDFAndPPTX(t *testing.T) {
	rs := newService(t, &llm.MockLLMClient{})
	s := loadedSession(t, rs)
	_, err := rs.Analyze(context.Background(), s)
	require.NoError(t, err)

	pdf, err := rs.ExportPDF(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pdf.Filename, "adtech_report_"))
	_, err = os.Stat(pdf.Path)
	assert.NoError(t, err)

	deck, err := rs.ExportPPTX(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, report.ContentTypePPTX, deck.ContentType)
	assert.True(t, strings.HasSuffix(deck.Filename, ".pptx"))
}

func TestExportFallsBackToBasicDocument(t *testing.T) {
	rs := newService(t, nil)
	s := loadedSession(t, rs)

	failing := func(report.Input) (*report.Artifact, error) {
		return nil, errors.RenderFailure("font missing", nil)
	}
	artifact, err := rs.export(s, "PDF", failing, rs.pdf.ExportBasic)
	require.NoError(t, err)
	assert.Equal(t, report.BasicPDFFilename, artifact.Filename)
}

func TestExportFailsWhenFallbackFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	rs := NewReportService(testConfig(filepath.Join(blocker, "out")), nil, internal.NewNopLogger())
	s := loadedSession(t, rs)

	_, err := rs.ExportPPTX(context.Background(), s)
	assert.True(t, errors.HasCode(err, errors.CodeRenderFailure))
}

func TestExecutiveSummaryInDemoMode(t *testing.T) {
	rs := newService(t, nil)
	s := loadedSession(t, rs)

	summary, err := rs.ExecutiveSummary(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, summary.Fallback)
	assert.Contains(t, summary.Text, "clicks")

	_, err = rs.ExecutiveSummary(context.Background(), session.New(core.NewSessionID()))
	assert.True(t, errors.HasCode(err, errors.CodeNoDataset))
}

func TestUsageIsTrackedAcrossActions(t *testing.T) {
	rs := newService(t, &llm.MockLLMClient{})
	s := loadedSession(t, rs)

	_, err := rs.Analyze(context.Background(), s)
	require.NoError(t, err)
	_, err = rs.ExecutiveSummary(context.Background(), s)
	require.NoError(t, err)

	u := rs.Usage()
	assert.Equal(t, 2, u.RequestCount)
	assert.Positive(t, u.TotalTokens)
}

func TestSyntheticWorkbookPipeline(t *testing.T) {
	cfg := testkit.DefaultCampaignConfig()
	cfg.Days = 14
	cfg.MissingRate = 0.05
	cfg.DuplicateRows = 4
	campaigns, err := testkit.GenerateCampaigns(cfg)
	require.NoError(t, err)
	book, err := campaigns.XLSX()
	require.NoError(t, err)

	rs := newService(t, &llm.MockLLMClient{})
	s := session.New(core.NewSessionID())

	loaded, err := rs.LoadUpload(context.Background(), s, "campaigns.xlsx", book)
	require.NoError(t, err)
	assert.Equal(t, len(campaigns.Rows), loaded.Info.Rows)

	cleaned, err := rs.Clean(context.Background(), s)
	require.NoError(t, err)
	assert.LessOrEqual(t, cleaned.Info.Rows, len(campaigns.Rows)-1)
	assert.Zero(t, cleaned.Dataset.NullTotal())

	analyzed, err := rs.Analyze(context.Background(), s)
	require.NoError(t, err)
	assert.Contains(t, analyzed.Charts.Keys(), "conversion_rate")

	deck, err := rs.ExportPPTX(context.Background(), s)
	require.NoError(t, err)
	assert.NotEqual(t, report.BasicPPTXFilename, deck.Filename)
}

func slideText(t *testing.T, path, part string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != part {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("%s not found in %s", part, path)
	return ""
}

func TestSessionsExportingInTheSameMinuteKeepTheirOwnDocuments(t *testing.T) {
	rs := newService(t, nil)
	fixed := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)
	rs.now = func() time.Time { return fixed }

	a := loadedSession(t, rs)
	b := session.New(core.NewSessionID())
	_, err := rs.LoadUpload(context.Background(), b, "small.csv", []byte("campaign,clicks\nsearch,1\nsocial,2\n"))
	require.NoError(t, err)

	deckA, err := rs.ExportPPTX(context.Background(), a)
	require.NoError(t, err)
	deckB, err := rs.ExportPPTX(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, deckA.Filename, deckB.Filename)
	assert.NotEqual(t, deckA.Path, deckB.Path)
	assert.Contains(t, slideText(t, deckA.Path, "ppt/slides/slide3.xml"), "Total Rows: 4")
	assert.Contains(t, slideText(t, deckB.Path, "ppt/slides/slide3.xml"), "Total Rows: 2")
}

func TestOrderedMetricsFollowDatasetOrder(t *testing.T) {
	rs := newService(t, nil)
	s := loadedSession(t, rs)

	ordered, err := rs.OrderedMetrics(s)
	require.NoError(t, err)
	var names []string
	for _, ns := range ordered {
		names = append(names, ns.Column)
	}
	assert.Equal(t, []string{"clicks", "conversions", "cost"}, names)

	_, err = rs.OrderedMetrics(session.New(core.NewSessionID()))
	assert.True(t, errors.HasCode(err, errors.CodeNoDataset))
}
