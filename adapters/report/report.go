// Package report renders already-computed dataset facts, metrics and narrative
// text into downloadable documents. It never recomputes statistics or calls
// the language model.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"trendspotter/domain/core"
	"trendspotter/domain/dataset"
	"trendspotter/internal/errors"
	"trendspotter/internal/profiling"
)

// Content types of the produced documents
const (
	ContentTypePDF  = "application/pdf"
	ContentTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// Fallback document names
const (
	BasicPDFFilename  = "adtech_report_basic.pdf"
	BasicPPTXFilename = "adtech_presentation_basic.pptx"
)

// NoInsightsText stands in for a narrative that was never generated
const NoInsightsText = "AI insights not generated"

// Input is everything an exporter renders
type Input struct {
	Title             string
	Dataset           *dataset.Dataset
	Metrics           profiling.Record
	Narrative         string
	NarrativeFallback bool
	GeneratedAt       time.Time
}

func (in Input) narrative() string {
	if strings.TrimSpace(in.Narrative) == "" {
		return NoInsightsText
	}
	return in.Narrative
}

func (in Input) title(defaultTitle string) string {
	if strings.TrimSpace(in.Title) == "" {
		return defaultTitle
	}
	return in.Title
}

func (in Input) generatedAt() time.Time {
	if in.GeneratedAt.IsZero() {
		return time.Now()
	}
	return in.GeneratedAt
}

// Artifact is a document written to local storage
type Artifact struct {
	Path        string `json:"path"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// PDFFilename is the timestamped paper report name
func PDFFilename(t time.Time) string {
	return fmt.Sprintf("adtech_report_%s.pdf", core.NewTimestamp(t).FileStamp())
}

// PPTXFilename is the timestamped slide deck name
func PPTXFilename(t time.Time) string {
	return fmt.Sprintf("adtech_presentation_%s.pptx", core.NewTimestamp(t).FileStamp())
}

// prepareOutput makes sure dir exists and reserves a unique file in it.
// The on-disk name is filename with a random suffix before the extension, so
// concurrent exports with the same download name never share a path.
func prepareOutput(dir, filename string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.RenderFailure(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	ext := filepath.Ext(filename)
	f, err := os.CreateTemp(dir, strings.TrimSuffix(filename, ext)+"_*"+ext)
	if err != nil {
		return "", errors.RenderFailure(fmt.Sprintf("failed to reserve output file in %s", dir), err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", errors.RenderFailure("failed to reserve output file", err)
	}
	return path, nil
}

// truncateRunes cuts s to at most n runes, appending "..." when it was cut
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// WrapText word-wraps text to width runes per line and keeps at most maxLines
// lines. When anything is dropped the last kept line ends with "...".
// Blank input lines are preserved as paragraph breaks.
func WrapText(text string, width, maxLines int) []string {
	if width < 4 {
		width = 4
	}

	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		lines = append(lines, wrapParagraph(para, width)...)
	}

	if maxLines <= 0 || len(lines) <= maxLines {
		return lines
	}

	lines = lines[:maxLines]
	last := []rune(strings.TrimRight(lines[maxLines-1], " "))
	if len(last) > width-3 {
		last = last[:width-3]
	}
	lines[maxLines-1] = string(last) + "..."
	return lines
}

// wrapParagraph wraps one paragraph. Its leading whitespace is kept as an
// indent on every wrapped line.
func wrapParagraph(para string, width int) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	indent := para[:len(para)-len(strings.TrimLeft(para, " \t"))]
	if utf8.RuneCountInString(indent) > width/2 {
		indent = ""
	}
	width -= utf8.RuneCountInString(indent)

	var lines []string
	var current []rune
	for _, word := range words {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			lines = append(lines, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	if indent != "" {
		for i := range lines {
			lines[i] = indent + lines[i]
		}
	}
	return lines
}
