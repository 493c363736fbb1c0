package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trendspotter/ports"

	"github.com/tidwall/gjson"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// NewClient creates an LLM client for the configured provider
func NewClient(config Config) (ports.LLMClient, error) {
	return newLLMClient(config)
}

// newLLMClient creates an LLM client based on config
func newLLMClient(config Config) (ports.LLMClient, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("missing %s API key", config.Provider)
	}

	baseURL := strings.TrimSpace(config.BaseURL)

	switch config.Provider {
	case ProviderOpenAI:
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		return &OpenAIClient{
			APIKey:      config.APIKey,
			BaseURL:     baseURL,
			Timeout:     config.Timeout,
			Temperature: config.Temperature,
		}, nil
	case ProviderGemini, "":
		if baseURL == "" {
			baseURL = defaultGeminiBaseURL
		}
		return &GeminiClient{
			APIKey:      config.APIKey,
			BaseURL:     baseURL,
			Timeout:     config.Timeout,
			Temperature: config.Temperature,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}
}

// MockLLMClient is a mock LLM client for testing
type MockLLMClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors
	Calls    int
	Prompts  []string
}

func (m *MockLLMClient) ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	// Default mock response
	return "1. Clicks are concentrated in a few campaigns.\n2. Spend rises faster than conversions.\nWe recommend reviewing bids on low-converting campaigns.", nil
}

func (m *MockLLMClient) ChatCompletionWithUsage(ctx context.Context, model string, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	content, err := m.ChatCompletion(ctx, model, prompt, maxTokens)
	if err != nil {
		return nil, err
	}
	// rough four-characters-per-token estimate
	promptTokens, completionTokens := len(prompt)/4, len(content)/4
	return &ports.LLMResponse{Content: content, Usage: &ports.UsageData{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		Model:            model,
		Provider:         "mock",
	}}, nil
}

// OpenAIClient implements LLMClient for OpenAI-compatible chat completions
type OpenAIClient struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

func (c *OpenAIClient) ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	resp, err := c.ChatCompletionWithUsage(ctx, model, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *OpenAIClient) ChatCompletionWithUsage(ctx context.Context, model string, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("missing model")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	// Chat Completions API (kept minimal: one system + one user message)
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	}
	body := reqBody{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: "You are a data analyst at an AdTech company. Answer concisely."},
			{Role: "user", Content: prompt},
		},
		Temperature: c.Temperature,
		MaxTokens:   maxTokens,
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.APIKey}
	respRaw, err := postJSON(ctx, c.Timeout, endpoint, headers, body, "openai")
	if err != nil {
		return nil, err
	}

	content := gjson.GetBytes(respRaw, "choices.0.message.content")
	if !content.Exists() {
		return nil, fmt.Errorf("openai response missing choices")
	}
	return &ports.LLMResponse{
		Content: content.String(),
		Usage: &ports.UsageData{
			PromptTokens:     int(gjson.GetBytes(respRaw, "usage.prompt_tokens").Int()),
			CompletionTokens: int(gjson.GetBytes(respRaw, "usage.completion_tokens").Int()),
			TotalTokens:      int(gjson.GetBytes(respRaw, "usage.total_tokens").Int()),
			Model:            model,
			Provider:         ProviderOpenAI,
		},
	}, nil
}

// GeminiClient implements LLMClient for the Gemini generateContent REST endpoint
type GeminiClient struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
}

func (c *GeminiClient) ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error) {
	resp, err := c.ChatCompletionWithUsage(ctx, model, prompt, maxTokens)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *GeminiClient) ChatCompletionWithUsage(ctx context.Context, model string, prompt string, maxTokens int) (*ports.LLMResponse, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("missing model")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Parts []part `json:"parts"`
	}
	type generationConfig struct {
		Temperature     float64 `json:"temperature,omitempty"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	}
	type reqBody struct {
		Contents         []content        `json:"contents"`
		GenerationConfig generationConfig `json:"generationConfig"`
	}
	body := reqBody{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: c.Temperature, MaxOutputTokens: maxTokens},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(model))
	headers := map[string]string{"x-goog-api-key": c.APIKey}
	respRaw, err := postJSON(ctx, c.Timeout, endpoint, headers, body, "gemini")
	if err != nil {
		return nil, err
	}

	parts := gjson.GetBytes(respRaw, "candidates.0.content.parts.#.text")
	var sb strings.Builder
	for _, p := range parts.Array() {
		sb.WriteString(p.String())
	}
	if sb.Len() == 0 {
		if reason := gjson.GetBytes(respRaw, "promptFeedback.blockReason"); reason.Exists() {
			return nil, fmt.Errorf("gemini blocked the prompt: %s", reason.String())
		}
		return nil, fmt.Errorf("gemini response missing candidates")
	}

	return &ports.LLMResponse{
		Content: sb.String(),
		Usage: &ports.UsageData{
			PromptTokens:     int(gjson.GetBytes(respRaw, "usageMetadata.promptTokenCount").Int()),
			CompletionTokens: int(gjson.GetBytes(respRaw, "usageMetadata.candidatesTokenCount").Int()),
			TotalTokens:      int(gjson.GetBytes(respRaw, "usageMetadata.totalTokenCount").Int()),
			Model:            model,
			Provider:         ProviderGemini,
		},
	}, nil
}

// postJSON sends one request and returns the body of a 2xx response.
// A zero timeout leaves the call bounded only by ctx.
func postJSON(ctx context.Context, timeout time.Duration, endpoint string, headers map[string]string, body interface{}, service string) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", service, err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(respRaw, "error.message").String()
		if msg == "" {
			msg = string(respRaw)
		}
		return nil, fmt.Errorf("%s http %d: %s", service, resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(respRaw) {
		return nil, fmt.Errorf("%s returned invalid JSON", service)
	}
	return respRaw, nil
}
