package ui

import (
	"net/http"

	"trendspotter/adapters/report"
	"trendspotter/internal/session"
	"trendspotter/ui/middleware"

	"github.com/gin-gonic/gin"
)

func (s *Server) analysisResponse(l session.Loaded) gin.H {
	resp := gin.H{"insights_generated": l.InsightsGenerated}
	if l.Narrative != nil {
		resp["narrative"] = l.Narrative
		resp["narrative_html"] = string(s.render.RenderNarrative(l.Narrative.Text))
		resp["fallback_reason"] = l.Narrative.CauseMessage()
	}
	if l.Charts != nil {
		resp["charts"] = l.Charts
	}
	return resp
}

func (s *Server) handleAnalyze(c *gin.Context) {
	loaded, err := s.reports.Analyze(c.Request.Context(), middleware.Session(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.analysisResponse(loaded))
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	loaded, err := middleware.Session(c).Loaded()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.analysisResponse(loaded))
}

func (s *Server) handleClearAnalysis(c *gin.Context) {
	if err := s.reports.ClearAnalysis(middleware.Session(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleExecutiveSummary returns a short summary of the metrics without touching the session's insights
func (s *Server) handleExecutiveSummary(c *gin.Context) {
	summary, err := s.reports.ExecutiveSummary(c.Request.Context(), middleware.Session(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":         summary,
		"summary_html":    s.render.RenderNarrative(summary.Text),
		"fallback_reason": summary.CauseMessage(),
	})
}

func (s *Server) handleUsage(c *gin.Context) {
	c.JSON(http.StatusOK, s.reports.Usage())
}

func (s *Server) handleExportPDF(c *gin.Context) {
	artifact, err := s.reports.ExportPDF(c.Request.Context(), middleware.Session(c))
	s.sendArtifact(c, artifact, err)
}

func (s *Server) handleExportPPTX(c *gin.Context) {
	artifact, err := s.reports.ExportPPTX(c.Request.Context(), middleware.Session(c))
	s.sendArtifact(c, artifact, err)
}

func (s *Server) sendArtifact(c *gin.Context, artifact *report.Artifact, err error) {
	if err != nil {
		s.respondError(c, err)
		return
	}
	// ServeContent keeps an explicit Content-Type
	c.Header("Content-Type", artifact.ContentType)
	c.FileAttachment(artifact.Path, artifact.Filename)
}
