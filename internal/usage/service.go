// Package usage keeps a process-wide tally of language model token usage.
package usage

import (
	"sync"
	"time"

	"trendspotter/ports"
)

// Operation types for categorization
const (
	OpNarrative        = "narrative"
	OpExecutiveSummary = "executive_summary"
)

// Record is a single model call's token usage
type Record struct {
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	OperationType    string    `json:"operation_type"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	CreatedAt        time.Time `json:"created_at"`
}

// ModelUsage represents usage aggregated by model
type ModelUsage struct {
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	TotalTokens  int    `json:"total_tokens"`
	RequestCount int    `json:"request_count"`
}

// Summary provides aggregated usage statistics since startup
type Summary struct {
	TotalTokens           int                   `json:"total_tokens"`
	TotalPromptTokens     int                   `json:"total_prompt_tokens"`
	TotalCompletionTokens int                   `json:"total_completion_tokens"`
	RequestCount          int                   `json:"request_count"`
	ByModel               map[string]ModelUsage `json:"by_model"`
	ByOperation           map[string]int        `json:"by_operation"`
}

// Tracker handles LLM usage tracking. Records are kept in memory only.
type Tracker struct {
	mu      sync.Mutex
	records []Record
	now     func() time.Time
}

// NewTracker creates an empty usage tracker
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// RecordUsage stores usage reported by the provider. Provider and model fall
// back to the given defaults when the response left them empty. Invalid token
// counts are dropped; tracking never fails the caller.
func (t *Tracker) RecordUsage(operationType, provider, model string, data *ports.UsageData) bool {
	if t == nil || data == nil {
		return false
	}
	if data.PromptTokens < 0 || data.CompletionTokens < 0 || data.TotalTokens < 0 {
		return false
	}

	rec := Record{
		Provider:         firstNonEmpty(data.Provider, provider),
		Model:            firstNonEmpty(data.Model, model),
		OperationType:    operationType,
		PromptTokens:     data.PromptTokens,
		CompletionTokens: data.CompletionTokens,
		TotalTokens:      data.TotalTokens,
	}
	if rec.TotalTokens == 0 {
		rec.TotalTokens = rec.PromptTokens + rec.CompletionTokens
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	rec.CreatedAt = t.now()
	t.records = append(t.records, rec)
	return true
}

// Summary aggregates every record so far
func (t *Tracker) Summary() Summary {
	s := Summary{ByModel: make(map[string]ModelUsage), ByOperation: make(map[string]int)}
	if t == nil {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range t.records {
		s.TotalTokens += rec.TotalTokens
		s.TotalPromptTokens += rec.PromptTokens
		s.TotalCompletionTokens += rec.CompletionTokens
		s.RequestCount++
		s.ByOperation[rec.OperationType] += rec.TotalTokens

		m := s.ByModel[rec.Model]
		m.Model = rec.Model
		m.Provider = rec.Provider
		m.TotalTokens += rec.TotalTokens
		m.RequestCount++
		s.ByModel[rec.Model] = m
	}
	return s
}

// Records returns a copy of the raw records
func (t *Tracker) Records() []Record {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
