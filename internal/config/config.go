package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"trendspotter/internal/errors"

	"github.com/robfig/cron/v3"
)

// Config represents the complete application configuration
type Config struct {
	AI      AIConfig
	Server  ServerConfig
	Reports ReportConfig
}

// AIConfig holds AI/LLM related settings. An empty APIKey selects demo mode.
type AIConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration // zero means no client-side timeout
	PromptsDir  string
}

// DemoMode reports whether no credential was configured.
func (c AIConfig) DemoMode() bool {
	return strings.TrimSpace(c.APIKey) == ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port        string
	GinMode     string
	APIPort     string
	MaxUploadMB int

	// SweepSchedule is a cron expression ("@every 10m" style accepted)
	// for dropping idle sessions and expired exports
	SweepSchedule      string
	SessionIdleTimeout time.Duration

	// APIAllowedOrigins feeds the CORS policy of the headless API
	APIAllowedOrigins []string
}

// MaxUploadBytes is the upload cap in bytes.
func (c ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// ReportConfig holds export settings
type ReportConfig struct {
	OutputDir   string
	Title       string
	PDFCompress bool
	Retention   time.Duration // exports older than this are pruned; 0 keeps them
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultReportTitle = "AdTech Performance Report"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		AI:      loadAIConfig(),
		Server:  loadServerConfig(),
		Reports: loadReportConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAIConfig() AIConfig {
	provider := strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini))

	var apiKey, model string
	switch provider {
	case ProviderOpenAI:
		apiKey = os.Getenv("OPENAI_API_KEY")
		model = getEnvOrDefault("LLM_MODEL", "gpt-4o-mini")
	default:
		apiKey = os.Getenv("GEMINI_API_KEY")
		model = getEnvOrDefault("LLM_MODEL", "gemini-pro")
	}

	return AIConfig{
		Provider:    provider,
		APIKey:      apiKey,
		Model:       model,
		BaseURL:     getEnvOrDefault("LLM_BASE_URL", ""),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 1024),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.4),
		Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 0),
		PromptsDir:  getEnvOrDefault("PROMPTS_DIR", ""),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:        getEnvOrDefault("PORT", "8080"),
		GinMode:     getEnvOrDefault("GIN_MODE", "debug"),
		APIPort:     getEnvOrDefault("API_PORT", "8081"),
		MaxUploadMB: getEnvIntOrDefault("MAX_UPLOAD_MB", 50),

		SweepSchedule:      getEnvOrDefault("SESSION_SWEEP_SCHEDULE", "@every 10m"),
		SessionIdleTimeout: getEnvDurationOrDefault("SESSION_IDLE_TIMEOUT", 2*time.Hour),

		APIAllowedOrigins: getEnvListOrDefault("API_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func loadReportConfig() ReportConfig {
	return ReportConfig{
		OutputDir:   getEnvOrDefault("REPORT_DIR", os.TempDir()),
		Title:       getEnvOrDefault("REPORT_TITLE", DefaultReportTitle),
		PDFCompress: getEnvBoolOrDefault("PDF_COMPRESS", true),
		Retention:   getEnvDurationOrDefault("REPORT_RETENTION", 24*time.Hour),
	}
}

// Validate checks the loaded values for consistency
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return errors.ConfigInvalid("unsupported LLM_PROVIDER: " + c.AI.Provider)
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if strings.TrimSpace(c.Reports.OutputDir) == "" {
		return errors.ConfigInvalid("report output directory is required")
	}
	if c.Server.SweepSchedule != "" {
		if _, err := cron.ParseStandard(c.Server.SweepSchedule); err != nil {
			return errors.ConfigInvalid("invalid SESSION_SWEEP_SCHEDULE: " + err.Error())
		}
	}
	if c.Reports.Retention < 0 || c.Server.SessionIdleTimeout < 0 {
		return errors.ConfigInvalid("retention and idle timeout cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated value, dropping blanks
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
