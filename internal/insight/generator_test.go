package insight

import (
	"context"
	"fmt"
	"testing"

	"trendspotter/adapters/llm"
	"trendspotter/domain/dataset"
	"trendspotter/internal"
	"trendspotter/internal/errors"
	"trendspotter/internal/profiling"
	"trendspotter/internal/usage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adDataset() *dataset.Dataset {
	return dataset.New(
		dataset.Column{Name: "date", Kind: dataset.KindText, Values: []dataset.Value{
			dataset.Text("2024-01-01"), dataset.Text("2024-01-02"), dataset.Text("2024-01-03"),
		}},
		dataset.Column{Name: "clicks", Kind: dataset.KindNumeric, Values: []dataset.Value{
			dataset.Number(10), dataset.Number(20), dataset.Missing(),
		}},
		dataset.Column{Name: "conversions", Kind: dataset.KindNumeric, Values: []dataset.Value{
			dataset.Number(2), dataset.Number(4), dataset.Number(0),
		}},
	)
}

func newTestGenerator(client *llm.MockLLMClient) *Generator {
	cfg := GeneratorConfig{Provider: "gemini", Model: "gemini-pro", MaxTokens: 512}
	if client == nil {
		return NewGenerator(nil, cfg, internal.NewNopLogger())
	}
	return NewGenerator(client, cfg, internal.NewNopLogger())
}

func TestSummarizeForPrompt(t *testing.T) {
	s := SummarizeForPrompt(adDataset())

	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 3, s.Columns)
	assert.Equal(t, []string{"clicks", "conversions"}, s.NumericColumns)
	assert.Equal(t, []string{"date"}, s.CategoricalColumns)
	assert.Equal(t, []string{"date"}, s.DateColumns)
	assert.Equal(t, 1, s.MissingValues)
	assert.Len(t, s.SampleRows, 3)
	assert.Equal(t, []string{"2024-01-03", "", "0"}, s.SampleRows[2])
	assert.Equal(t, 1, s.Stats["clicks"].NullCount)
	assert.Equal(t, "conversions", s.Roles.Conversion)
}

func TestGuessDateColumnsByNameIgnoresValues(t *testing.T) {
	assert.Equal(t, []string{"Start Time", "update_date"}, GuessDateColumnsByName([]string{"Start Time", "day", "update_date"}))
}

func TestGenerateNarrativeReturnsModelText(t *testing.T) {
	client := &llm.MockLLMClient{Response: "Clicks doubled between the first two days."}
	g := newTestGenerator(client)

	n := g.GenerateNarrative(context.Background(), SummarizeForPrompt(adDataset()))

	assert.False(t, n.Fallback)
	assert.NoError(t, n.Cause)
	assert.Equal(t, "Clicks doubled between the first two days.", n.Text)
	assert.Equal(t, "gemini-pro", n.Model)
	require.Equal(t, 1, client.Calls)

	prompt := client.Prompts[0]
	assert.Contains(t, prompt, "- Rows: 3")
	assert.Contains(t, prompt, "- Numeric columns: clicks, conversions")
	assert.Contains(t, prompt, "FOCUS: Conversion rate can be derived as conversions / clicks")
	assert.Contains(t, prompt, "2024-01-01 | 10 | 2")
}

func TestGenerateNarrativeFallsBackOnEndpointFailure(t *testing.T) {
	client := &llm.MockLLMClient{Error: fmt.Errorf("gemini http 401: invalid key")}
	g := newTestGenerator(client)

	n := g.GenerateNarrative(context.Background(), SummarizeForPrompt(adDataset()))

	assert.True(t, n.Fallback)
	assert.True(t, errors.HasCode(n.Cause, errors.CodeEndpointFailure))
	assert.NotEmpty(t, n.Text)
	assert.Contains(t, n.Text, "Rows: 3")
	assert.Contains(t, n.Text, "Columns: 3")
	assert.Equal(t, 1, client.Calls, "exactly one attempt")
}

func TestGenerateNarrativeFallsBackOnEmptyResponse(t *testing.T) {
	client := &llm.MockLLMClient{Response: "   "}
	n := newTestGenerator(client).GenerateNarrative(context.Background(), SummarizeForPrompt(adDataset()))
	assert.True(t, n.Fallback)
}

func TestDemoModeMakesNoCall(t *testing.T) {
	g := newTestGenerator(nil)
	require.True(t, g.DemoMode())

	n := g.GenerateNarrative(context.Background(), SummarizeForPrompt(adDataset()))
	assert.True(t, n.Fallback)
	assert.Contains(t, n.CauseMessage(), "demo mode")
	assert.Contains(t, n.Text, "Recommendation:")
}

func TestFallbackNarrativeIsDeterministic(t *testing.T) {
	s := SummarizeForPrompt(adDataset())
	assert.Equal(t, FallbackNarrative(s), FallbackNarrative(s))
	assert.Contains(t, FallbackNarrative(Summary{Rows: 12345, Columns: 2}), "Rows: 12,345")
}

func TestGenerateExecutiveSummary(t *testing.T) {
	metrics := profiling.NewCalculator().BasicMetrics(adDataset())

	client := &llm.MockLLMClient{Response: "Performance is steady."}
	n := newTestGenerator(client).GenerateExecutiveSummary(context.Background(), metrics)
	assert.Equal(t, "Performance is steady.", n.Text)
	assert.Contains(t, client.Prompts[0], "- clicks: mean=15.00")

	failing := &llm.MockLLMClient{Error: fmt.Errorf("quota")}
	n = newTestGenerator(failing).GenerateExecutiveSummary(context.Background(), metrics)
	assert.True(t, n.Fallback)
	assert.Contains(t, n.Text, "- conversions: mean=2.00")
}

func TestSuccessfulCallsAreTracked(t *testing.T) {
	tracker := usage.NewTracker()
	g := NewGenerator(&llm.MockLLMClient{}, GeneratorConfig{Provider: "gemini", Model: "gemini-pro", Usage: tracker}, internal.NewNopLogger())

	g.GenerateNarrative(context.Background(), SummarizeForPrompt(adDataset()))
	g.GenerateExecutiveSummary(context.Background(), profiling.NewCalculator().BasicMetrics(adDataset()))

	s := tracker.Summary()
	assert.Equal(t, 2, s.RequestCount)
	assert.Positive(t, s.TotalTokens)
	assert.Contains(t, s.ByOperation, usage.OpNarrative)
	assert.Contains(t, s.ByOperation, usage.OpExecutiveSummary)

	failing := NewGenerator(&llm.MockLLMClient{Error: fmt.Errorf("boom")}, GeneratorConfig{Usage: tracker}, internal.NewNopLogger())
	failing.GenerateNarrative(context.Background(), SummarizeForPrompt(adDataset()))
	assert.Equal(t, 2, tracker.Summary().RequestCount)
}
