package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trendspotter/adapters/report"
	"trendspotter/internal"
	"trendspotter/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *config.Config {
	return &config.Config{
		AI:      config.AIConfig{Provider: config.ProviderGemini, Model: "gemini-pro"},
		Server:  config.ServerConfig{MaxUploadMB: 1},
		Reports: config.ReportConfig{OutputDir: "reports"},
	}
}

func TestNewWithoutKeyIsDemoMode(t *testing.T) {
	c, err := New(baseConfig(), internal.NewNopLogger())
	require.NoError(t, err)
	assert.Nil(t, c.LLMClient)
	assert.True(t, c.Reports.DemoMode())
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestNewWithKeyBuildsClient(t *testing.T) {
	cfg := baseConfig()
	cfg.AI.APIKey = "test-key"

	c, err := New(cfg, internal.NewNopLogger())
	require.NoError(t, err)
	assert.NotNil(t, c.LLMClient)
	assert.False(t, c.Reports.DemoMode())
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestJanitorStopsOnShutdown(t *testing.T) {
	c, err := New(baseConfig(), internal.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, c.StartJanitor("@every 1s"))
	c.Sessions.GetOrCreate("")
	c.Sweep()
	assert.Equal(t, 1, c.Sessions.Len(), "fresh sessions survive")
	require.NoError(t, c.Shutdown(context.Background()))
}

func TestJanitorRejectsBadSchedule(t *testing.T) {
	c, err := New(baseConfig(), internal.NewNopLogger())
	require.NoError(t, err)
	assert.Error(t, c.StartJanitor("whenever"))
}

func TestSweepPrunesExpiredExports(t *testing.T) {
	cfg := baseConfig()
	cfg.Reports.OutputDir = t.TempDir()
	cfg.Reports.Retention = time.Hour

	stale := filepath.Join(cfg.Reports.OutputDir, report.BasicPDFFilename)
	require.NoError(t, os.WriteFile(stale, []byte("%PDF"), 0o644))
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	c, err := New(cfg, internal.NewNopLogger())
	require.NoError(t, err)
	c.Sweep()
	assert.NoFileExists(t, stale)
}
