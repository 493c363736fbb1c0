// Package insight turns a dataset summary into narrative text through a hosted
// language model, falling back to a deterministic narrative when the call fails.
package insight

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"trendspotter/ai"
	"trendspotter/internal"
	"trendspotter/internal/errors"
	"trendspotter/internal/profiling"
	"trendspotter/internal/usage"
	"trendspotter/ports"

	"github.com/dustin/go-humanize"
)

var errDemoMode = stderrors.New("no API key configured (demo mode)")

// Narrative is generated text plus where it came from
type Narrative struct {
	Text        string    `json:"text"`
	Fallback    bool      `json:"fallback"`
	Cause       error     `json:"-"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// CauseMessage is the failure text behind a fallback, empty otherwise
func (n Narrative) CauseMessage() string {
	if n.Cause == nil {
		return ""
	}
	return n.Cause.Error()
}

// GeneratorConfig holds the model settings for narrative generation
type GeneratorConfig struct {
	Provider   string
	Model      string
	MaxTokens  int
	PromptsDir string

	// Usage receives token counts of successful calls; nil disables tracking
	Usage *usage.Tracker
}

// Generator composes prompts and makes one model call per request
type Generator struct {
	client  ports.LLMClient
	prompts *ai.PromptManager
	config  GeneratorConfig
	logger  *internal.Logger
	now     func() time.Time
}

// NewGenerator creates a generator. A nil client selects demo mode: every
// request returns the fallback narrative without any network call.
func NewGenerator(client ports.LLMClient, config GeneratorConfig, logger *internal.Logger) *Generator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Generator{
		client:  client,
		prompts: ai.NewPromptManager(config.PromptsDir),
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// DemoMode reports whether no model client is configured
func (g *Generator) DemoMode() bool {
	return g.client == nil
}

// BuildPrompt renders the data summary prompt
func (g *Generator) BuildPrompt(s Summary) (string, error) {
	focus := ai.CompileFocusFragments(ai.FocusHints{
		ConversionColumn: s.Roles.Conversion,
		ClickColumn:      s.Roles.Click,
		CostColumn:       s.Roles.Cost,
		DateColumn:       s.Roles.Date,
		Rows:             s.Rows,
		Columns:          s.Columns,
		MissingValues:    s.MissingValues,
	})
	focusBlock := ""
	if len(focus) > 0 {
		focusBlock = "\n" + strings.Join(focus, "\n") + "\n"
	}

	return g.prompts.RenderPrompt(ai.PromptDataSummary, map[string]string{
		"ROWS":                strconv.Itoa(s.Rows),
		"COLUMNS":             strconv.Itoa(s.Columns),
		"NUMERIC_COLUMNS":     listOrNone(s.NumericColumns),
		"CATEGORICAL_COLUMNS": listOrNone(s.CategoricalColumns),
		"DATE_COLUMNS":        listOrNone(s.DateColumns),
		"MISSING_VALUES":      strconv.Itoa(s.MissingValues),
		"SAMPLE_ROWS":         s.sampleTable(),
		"BASIC_STATS":         s.statsTable(),
		"FOCUS":               focusBlock,
	})
}

// GenerateNarrative makes a single model call with the rendered summary prompt.
// Any failure yields the fallback narrative; it never returns an error.
func (g *Generator) GenerateNarrative(ctx context.Context, s Summary) Narrative {
	prompt, err := g.BuildPrompt(s)
	if err != nil {
		return g.fallback(FallbackNarrative(s), errors.Wrap(err, "failed to render prompt"))
	}
	return g.complete(ctx, usage.OpNarrative, prompt, func() string { return FallbackNarrative(s) })
}

// GenerateExecutiveSummary asks for a short executive summary of the metrics record
func (g *Generator) GenerateExecutiveSummary(ctx context.Context, metrics profiling.Record) Narrative {
	prompt, err := g.prompts.RenderPrompt(ai.PromptExecutiveSummary, map[string]string{
		"METRICS": formatMetrics(metrics),
	})
	if err != nil {
		return g.fallback(FallbackExecutiveSummary(metrics), errors.Wrap(err, "failed to render prompt"))
	}
	return g.complete(ctx, usage.OpExecutiveSummary, prompt, func() string { return FallbackExecutiveSummary(metrics) })
}

func (g *Generator) complete(ctx context.Context, what, prompt string, fallbackText func() string) Narrative {
	if g.DemoMode() {
		g.logger.Warn("[InsightGenerator] %s: %v, using fallback", what, errDemoMode)
		return g.fallback(fallbackText(), errors.EndpointFailure(g.config.Provider, errDemoMode))
	}

	startTime := time.Now()
	resp, err := g.client.ChatCompletionWithUsage(ctx, g.config.Model, prompt, g.config.MaxTokens)
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = fmt.Errorf("empty response")
	}
	if err != nil {
		g.logger.Warn("[InsightGenerator] %s request failed after %v: %v", what, time.Since(startTime), err)
		return g.fallback(fallbackText(), errors.EndpointFailure(g.config.Provider, err))
	}

	if resp.Usage != nil {
		g.config.Usage.RecordUsage(what, g.config.Provider, g.config.Model, resp.Usage)
		g.logger.Info("[InsightGenerator] %s generated by %s in %v (%d tokens)",
			what, g.config.Model, time.Since(startTime), resp.Usage.TotalTokens)
	}
	return Narrative{
		Text:        resp.Content,
		Provider:    g.config.Provider,
		Model:       g.config.Model,
		GeneratedAt: g.now(),
	}
}

func (g *Generator) fallback(text string, cause error) Narrative {
	return Narrative{
		Text:        text,
		Fallback:    true,
		Cause:       cause,
		Provider:    g.config.Provider,
		Model:       g.config.Model,
		GeneratedAt: g.now(),
	}
}

// FallbackNarrative is built from the summary alone and is deterministic
func FallbackNarrative(s Summary) string {
	var sb strings.Builder
	sb.WriteString("Automated data summary (AI insights unavailable)\n\n")
	fmt.Fprintf(&sb, "Rows: %s\n", humanize.Comma(int64(s.Rows)))
	fmt.Fprintf(&sb, "Columns: %d\n", s.Columns)
	fmt.Fprintf(&sb, "Numeric columns: %s\n", listOrNone(s.NumericColumns))
	fmt.Fprintf(&sb, "Categorical columns: %s\n", listOrNone(s.CategoricalColumns))
	fmt.Fprintf(&sb, "Missing values: %d\n", s.MissingValues)

	if len(s.NumericColumns) > 0 {
		sb.WriteString("\nKey statistics:\n")
		sb.WriteString(s.statsTable())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if s.MissingValues > 0 {
		fmt.Fprintf(&sb, "Recommendation: clean the dataset to resolve %d missing values before drawing conclusions.\n", s.MissingValues)
	}
	if s.Roles.Conversion != "" && s.Roles.Click != "" {
		fmt.Fprintf(&sb, "Recommendation: track conversion rate (%s / %s) by campaign.\n", s.Roles.Conversion, s.Roles.Click)
	}
	sb.WriteString("Recommendation: configure a language model API key to enable AI-generated insights.\n")
	return sb.String()
}

// FallbackExecutiveSummary restates the metrics without interpretation
func FallbackExecutiveSummary(metrics profiling.Record) string {
	var sb strings.Builder
	sb.WriteString("Executive summary (AI insights unavailable)\n\n")
	if len(metrics) == 0 {
		sb.WriteString("No numeric metrics are available for this dataset.\n")
		return sb.String()
	}
	sb.WriteString(formatMetrics(metrics))
	sb.WriteString("\n")
	return sb.String()
}

func formatMetrics(metrics profiling.Record) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, formatStatsLine(name, metrics[name]))
	}
	return strings.Join(lines, "\n")
}
