package llm

import (
	"time"

	"trendspotter/internal/config"
)

// Provider names
const (
	ProviderGemini = config.ProviderGemini
	ProviderOpenAI = config.ProviderOpenAI
)

// Config holds LLM adapter configuration
type Config struct {
	Provider    string        // "gemini" (default) or "openai"
	Model       string        // e.g., "gemini-pro"
	APIKey      string        // Provider API key
	BaseURL     string        // Optional endpoint override
	Temperature float64       // 0.0-1.0, lower = more deterministic
	MaxTokens   int           // Max tokens in response
	Timeout     time.Duration // Zero means no client-side timeout
}

// ConfigFromApp maps the application AI settings onto the adapter config
func ConfigFromApp(ai config.AIConfig) Config {
	return Config{
		Provider:    ai.Provider,
		Model:       ai.Model,
		APIKey:      ai.APIKey,
		BaseURL:     ai.BaseURL,
		Temperature: ai.Temperature,
		MaxTokens:   ai.MaxTokens,
		Timeout:     ai.Timeout,
	}
}
