package report

import (
	"fmt"
	"os"
	"strings"

	"trendspotter/domain/core"
	"trendspotter/internal"
	"trendspotter/internal/errors"
)

const (
	pptxNarrativeChars   = 500
	pptxMaxRecommends    = 5
	pptxMaxMetricColumns = 6
	pptxBodyWidth        = 80 // characters per wrapped body line
	pptxBodyMaxLines     = 16
	pptxTitleWidth       = 40
	pptxTitleMaxLines    = 2
)

var defaultRecommendations = []string{
	"Optimize campaign targeting based on performance metrics",
	"Consider A/B testing for underperforming ad creatives",
	"Reallocate budget to high-conversion channels",
	"Implement real-time monitoring for anomaly detection",
	"Schedule regular performance reviews",
}

// PPTXExporter writes the slide deck
type PPTXExporter struct {
	outputDir string
	logger    *internal.Logger
}

// NewPPTXExporter creates a deck exporter writing into outputDir
func NewPPTXExporter(outputDir string, logger *internal.Logger) *PPTXExporter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PPTXExporter{outputDir: outputDir, logger: logger}
}

// Export writes six slides: title, executive summary, dataset overview,
// key metrics, recommendations and closing
func (e *PPTXExporter) Export(in Input) (*Artifact, error) {
	if in.Dataset == nil {
		return nil, errors.RenderFailure("no dataset to render", nil)
	}

	generatedAt := in.generatedAt()
	filename := PPTXFilename(generatedAt)
	path, err := prepareOutput(e.outputDir, filename)
	if err != nil {
		return nil, err
	}

	d := deck{
		Title:   in.title(DefaultTitle),
		Created: generatedAt,
		Slides: []slide{
			titleSlide(in.title(DefaultTitle),
				"Generated: "+core.NewTimestamp(generatedAt).Display(),
				"TrendSpotter Automated Insights"),
			bodySlide("Executive Summary", executiveLines(in.narrative())),
			bodySlide("Dataset Overview", overviewLines(in)),
			bodySlide("Key Metrics", metricLines(in)),
			bodySlide("Actionable Recommendations", recommendationLines(in.narrative())),
			titleSlide("Thank You", "Generated by TrendSpotter", "Automated Insights Engine"),
		},
	}

	if err := writeDeckFile(path, d); err != nil {
		return nil, errors.RenderFailure("failed to write slide deck", err)
	}

	e.logger.Info("[PPTXExporter] wrote %s (%d slides)", path, len(d.Slides))
	return &Artifact{Path: path, Filename: filename, ContentType: ContentTypePPTX}, nil
}

// ExportBasic writes the one-slide fallback deck
func (e *PPTXExporter) ExportBasic(in Input) (*Artifact, error) {
	path, err := prepareOutput(e.outputDir, BasicPPTXFilename)
	if err != nil {
		return nil, err
	}

	d := deck{
		Title:   "AdTech Report",
		Created: in.generatedAt(),
		Slides:  []slide{titleSlide("AdTech Report", "Generated by TrendSpotter")},
	}
	if err := writeDeckFile(path, d); err != nil {
		return nil, errors.RenderFailure("failed to write basic slide deck", err)
	}

	e.logger.Warn("[PPTXExporter] wrote fallback deck %s", path)
	return &Artifact{Path: path, Filename: BasicPPTXFilename, ContentType: ContentTypePPTX}, nil
}

func writeDeckFile(path string, d deck) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return writeDeck(f, d)
}

func titleSlide(title string, subtitle ...string) slide {
	return slide{Boxes: []textBox{
		{
			Name: "Title", X: emuPerInch / 2, Y: 2 * emuPerInch,
			W: slideWidth - emuPerInch, H: 3 * emuPerInch / 2,
			Lines: WrapText(title, pptxTitleWidth, pptxTitleMaxLines), Size: 4000, Bold: true, Center: true,
		},
		{
			Name: "Subtitle", X: emuPerInch / 2, Y: 7 * emuPerInch / 2,
			W: slideWidth - emuPerInch, H: 3 * emuPerInch / 2,
			Lines: subtitle, Size: 2000, Center: true,
		},
	}}
}

func bodySlide(title string, body []string) slide {
	return slide{Boxes: []textBox{
		{
			Name: "Title", X: emuPerInch / 2, Y: emuPerInch / 4,
			W: slideWidth - emuPerInch, H: emuPerInch,
			Lines: []string{title}, Size: 3200, Bold: true,
		},
		{
			Name: "Content", X: emuPerInch / 2, Y: 3 * emuPerInch / 2,
			W: slideWidth - emuPerInch, H: slideHeight - 2*emuPerInch,
			Lines: body, Size: 1400,
		},
	}}
}

func executiveLines(narrative string) []string {
	return wrapAll([]string{"Key Insights:", "", truncateRunes(narrative, pptxNarrativeChars)})
}

func overviewLines(in Input) []string {
	ds := in.Dataset
	numeric := ds.NumericColumns()
	text := ds.TextColumns()

	lines := []string{
		fmt.Sprintf("Total Rows: %d", ds.Rows()),
		fmt.Sprintf("Total Columns: %d", ds.Width()),
		"",
		fmt.Sprintf("Numeric Columns (%d):", len(numeric)),
	}
	lines = append(lines, listWithOverflow(numeric, 5)...)
	lines = append(lines, "", fmt.Sprintf("Categorical Columns (%d):", len(text)))
	lines = append(lines, listWithOverflow(text, 3)...)
	return wrapAll(lines)
}

func listWithOverflow(names []string, limit int) []string {
	var out []string
	for i, name := range names {
		if i == limit {
			out = append(out, fmt.Sprintf("  ... and %d more", len(names)-limit))
			break
		}
		out = append(out, "  - "+name)
	}
	return out
}

func metricLines(in Input) []string {
	metrics := in.Metrics.Ordered(in.Dataset, pptxMaxMetricColumns)
	if len(metrics) == 0 {
		return []string{"No numeric columns available."}
	}
	var lines []string
	for _, m := range metrics {
		lines = append(lines,
			truncateRunes(m.Column, 40)+":",
			fmt.Sprintf("  Mean: %.2f | Min: %.2f | Max: %.2f | Std Dev: %.2f",
				m.Stats.Mean, m.Stats.Min, m.Stats.Max, m.Stats.Std),
		)
	}
	return wrapAll(lines)
}

// recommendationLines picks narrative lines mentioning a recommendation,
// or the canned list when there are none
func recommendationLines(narrative string) []string {
	var picked []string
	for _, line := range strings.Split(narrative, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if trimmed == "" || !(strings.Contains(lower, "recommend") || strings.Contains(lower, "suggest")) {
			continue
		}
		picked = append(picked, strings.TrimLeft(trimmed, "-*• "))
		if len(picked) == pptxMaxRecommends {
			break
		}
	}
	if len(picked) == 0 {
		picked = defaultRecommendations
	}

	lines := make([]string, 0, len(picked))
	for i, r := range picked {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, r))
	}
	return wrapAll(lines)
}

// wrapAll wraps every line to the body width and caps the result at the
// body line limit, marking a cut with "..."
func wrapAll(lines []string) []string {
	var out []string
	for _, l := range lines {
		out = append(out, WrapText(l, pptxBodyWidth, 0)...)
	}
	if len(out) > pptxBodyMaxLines {
		out = out[:pptxBodyMaxLines]
		out[len(out)-1] = truncateRunes(strings.TrimRight(out[len(out)-1], " "), pptxBodyWidth-3)
		if !strings.HasSuffix(out[len(out)-1], "...") {
			out[len(out)-1] += "..."
		}
	}
	return out
}
