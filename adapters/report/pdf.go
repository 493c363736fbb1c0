package report

import (
	"fmt"
	"strings"

	"trendspotter/internal"
	"trendspotter/internal/errors"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
)

// DefaultTitle heads every document unless the input sets one
const DefaultTitle = "AdTech Performance Report"

const (
	pdfLeft          = 100.0
	pdfValueColumn   = 200.0
	pdfTopStart      = 100.0
	pdfBottomLimit   = 100.0
	pdfLineHeight    = 15.0
	pdfMetricSpacing = 25.0
	pdfMaxMetricCols = 6
	pdfFooterText    = "Generated by TrendSpotter - Automated AdTech Insights Engine"
)

// PDFExporter writes the paper report
type PDFExporter struct {
	outputDir string
	compress  bool
	logger    *internal.Logger
}

// NewPDFExporter creates a PDF exporter writing into outputDir
func NewPDFExporter(outputDir string, compress bool, logger *internal.Logger) *PDFExporter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PDFExporter{outputDir: outputDir, compress: compress, logger: logger}
}

// Export renders cover, dataset summary, narrative and key metrics sections
func (e *PDFExporter) Export(in Input) (*Artifact, error) {
	if in.Dataset == nil {
		return nil, errors.RenderFailure("no dataset to render", nil)
	}

	generatedAt := in.generatedAt()
	filename := PDFFilename(generatedAt)
	path, err := prepareOutput(e.outputDir, filename)
	if err != nil {
		return nil, err
	}

	pdf := e.newDocument(in.title(DefaultTitle))
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()
	bottom := pageHeight - pdfBottomLimit

	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(pdfLeft, pageHeight-50, pdfFooterText)
		pdf.Text(pdfLeft, pageHeight-40, fmt.Sprintf("Page %d", pdf.PageNo()))
	})

	// Cover
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(pdfLeft, 100, tr(in.title(DefaultTitle)))
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pdfLeft, 130, "Generated: "+generatedAt.Format("2006-01-02 15:04"))
	pdf.SetTextColor(128, 128, 128)
	pdf.Text(pdfLeft, 145, "Confidential - For Internal Use Only")
	pdf.SetTextColor(0, 0, 0)

	// Dataset summary
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pdfLeft, 180, "Dataset Summary:")
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(pdfLeft, 200, "Rows: "+humanize.Comma(int64(in.Dataset.Rows())))
	pdf.Text(pdfLeft, 220, fmt.Sprintf("Columns: %d", in.Dataset.Width()))
	if in.NarrativeFallback {
		pdf.Text(pdfLeft, 240, "AI insights unavailable - automated summary included")
	} else {
		pdf.Text(pdfLeft, 240, "Generated with AI Insights")
	}

	// Narrative
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pdfLeft, 280, "AI-Generated Insights:")
	pdf.SetFont("Helvetica", "", 10)

	pageWidth, _ := pdf.GetPageSize()
	textWidth := pageWidth - 2*pdfLeft
	y := 300.0
	for _, line := range strings.Split(in.narrative(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, wrapped := range pdf.SplitLines([]byte(tr(strings.TrimRight(line, "\r"))), textWidth) {
			if y > bottom {
				pdf.AddPage()
				pdf.SetFont("Helvetica", "", 10)
				y = pdfTopStart
			}
			pdf.Text(pdfLeft, y, string(wrapped))
			y += pdfLineHeight
		}
	}

	// Key metrics
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pdfLeft, pdfTopStart, "Key Metrics Summary")
	y = pdfTopStart + 40
	metrics := in.Metrics.Ordered(in.Dataset, pdfMaxMetricCols)
	if len(metrics) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(pdfLeft, y, "No numeric columns available.")
	}
	for _, m := range metrics {
		if y > bottom {
			pdf.AddPage()
			y = pdfTopStart
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(pdfLeft, y, fitWidth(pdf, tr(m.Column+":"), pdfValueColumn-pdfLeft-5))
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(pdfValueColumn, y, fmt.Sprintf("Mean: %.2f | Max: %.2f | Min: %.2f", m.Stats.Mean, m.Stats.Max, m.Stats.Min))
		y += pdfMetricSpacing
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return nil, errors.RenderFailure("failed to write PDF report", err)
	}

	e.logger.Info("[PDFExporter] wrote %s (%d pages)", path, pdf.PageCount())
	return &Artifact{Path: path, Filename: filename, ContentType: ContentTypePDF}, nil
}

// ExportBasic writes the minimal fallback document: title, timestamp and row count
func (e *PDFExporter) ExportBasic(in Input) (*Artifact, error) {
	path, err := prepareOutput(e.outputDir, BasicPDFFilename)
	if err != nil {
		return nil, err
	}

	pdf := e.newDocument(in.title(DefaultTitle))
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(pdfLeft, 42, tr(in.title(DefaultTitle)))
	pdf.Text(pdfLeft, 62, "Generated: "+in.generatedAt().Format("2006-01-02 15:04:05"))
	pdf.Text(pdfLeft, 82, fmt.Sprintf("Rows: %d", in.Dataset.Rows()))
	pdf.Text(pdfLeft, 102, "Charts and insights included in full version")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return nil, errors.RenderFailure("failed to write basic PDF report", err)
	}

	e.logger.Warn("[PDFExporter] wrote fallback report %s", path)
	return &Artifact{Path: path, Filename: BasicPDFFilename, ContentType: ContentTypePDF}, nil
}

func (e *PDFExporter) newDocument(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetCompression(e.compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(title, true)
	pdf.SetCreator("TrendSpotter", false)
	return pdf
}

// fitWidth clips an already translated (single-byte) string so it renders
// within width points at the current font
func fitWidth(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
