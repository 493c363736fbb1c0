package ui

import (
	"html/template"

	"trendspotter/internal/cleaning"
	"trendspotter/internal/profiling"
	"trendspotter/internal/session"
	"trendspotter/ui/middleware"

	"github.com/gin-gonic/gin"
)

// indexPage is everything the single page shows for the current session
type indexPage struct {
	Title    string
	DemoMode bool

	Loaded      bool
	Source      session.Source
	Rows        int
	Columns     int
	MemoryBytes int64
	ColumnNames []string
	Types       map[string]string
	NullCounts  map[string]int
	Preview     [][]string
	Stats       []profiling.NamedStats
	CleanReport *cleaning.Report
	DateColumns []string

	InsightsGenerated bool
	NarrativeHTML     template.HTML
	Fallback          bool
	FallbackReason    string
	ChartKeys         []string
}

func (s *Server) handleIndex(c *gin.Context) {
	page := indexPage{Title: s.title, DemoMode: s.reports.DemoMode()}

	sess := middleware.Session(c)
	if loaded, err := sess.Loaded(); err == nil {
		page.Loaded = true
		page.Source = loaded.Source
		page.Rows = loaded.Info.Rows
		page.Columns = loaded.Info.Columns
		page.MemoryBytes = loaded.Info.MemoryBytes
		page.ColumnNames = loaded.Info.ColumnNames
		page.NullCounts = loaded.Info.NullCounts
		page.Types = make(map[string]string, len(loaded.Info.Types))
		for name, kind := range loaded.Info.Types {
			page.Types[name] = string(kind)
		}
		page.Preview = loaded.Dataset.Head(defaultPreviewRows)
		page.CleanReport = loaded.CleanReport
		page.DateColumns = loaded.DateColumns
		page.InsightsGenerated = loaded.InsightsGenerated

		if metrics, err := s.reports.Metrics(sess); err == nil {
			page.Stats = metrics.Ordered(loaded.Dataset, 0)
		}
		if loaded.Narrative != nil {
			page.NarrativeHTML = s.render.RenderNarrative(loaded.Narrative.Text)
			page.Fallback = loaded.Narrative.Fallback
			page.FallbackReason = loaded.Narrative.CauseMessage()
		}
		page.ChartKeys = loaded.Charts.Keys()
	}

	s.renderTemplate(c, "index.html", page)
}
