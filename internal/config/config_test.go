package config

import (
	"testing"
	"time"

	"trendspotter/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "LLM_MODEL", "LLM_BASE_URL",
		"MAX_TOKENS", "TEMPERATURE", "LLM_TIMEOUT", "PROMPTS_DIR",
		"PORT", "GIN_MODE", "API_PORT", "MAX_UPLOAD_MB",
		"REPORT_DIR", "REPORT_TITLE", "PDF_COMPRESS", "REPORT_RETENTION",
		"SESSION_SWEEP_SCHEDULE", "SESSION_IDLE_TIMEOUT", "API_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-pro", cfg.AI.Model)
	assert.True(t, cfg.AI.DemoMode())
	assert.Zero(t, cfg.AI.Timeout)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "8081", cfg.Server.APIPort)
	assert.Equal(t, int64(50*1024*1024), cfg.Server.MaxUploadBytes())
	assert.Equal(t, DefaultReportTitle, cfg.Reports.Title)
	assert.True(t, cfg.Reports.PDFCompress)
	assert.NotEmpty(t, cfg.Reports.OutputDir)
	assert.Equal(t, 24*time.Hour, cfg.Reports.Retention)
	assert.Equal(t, "@every 10m", cfg.Server.SweepSchedule)
	assert.Equal(t, 2*time.Hour, cfg.Server.SessionIdleTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.APIAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("TEMPERATURE", "0.9")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("PDF_COMPRESS", "false")
	t.Setenv("REPORT_TITLE", "Q3 Review")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SESSION_IDLE_TIMEOUT", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.False(t, cfg.AI.DemoMode())
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.InDelta(t, 0.9, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, int64(5*1024*1024), cfg.Server.MaxUploadBytes())
	assert.False(t, cfg.Reports.PDFCompress)
	assert.Equal(t, "Q3 Review", cfg.Reports.Title)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.APIAllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.Server.SessionIdleTimeout)
}

func TestMalformedNumbersFallBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_TOKENS", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.AI.MaxTokens)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "claude")
	_, err := Load()
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))

	cfg := &Config{
		AI:      AIConfig{Provider: ProviderGemini},
		Server:  ServerConfig{MaxUploadMB: 0},
		Reports: ReportConfig{OutputDir: "/tmp"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Server.MaxUploadMB = 1
	cfg.Reports.OutputDir = " "
	assert.Error(t, cfg.Validate())

	cfg.Reports.OutputDir = "/tmp"
	assert.NoError(t, cfg.Validate())

	cfg.Server.SweepSchedule = "every now and then"
	assert.True(t, errors.HasCode(cfg.Validate(), errors.CodeConfigInvalid))

	cfg.Server.SweepSchedule = "*/5 * * * *"
	assert.NoError(t, cfg.Validate())
}
