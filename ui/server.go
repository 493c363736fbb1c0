package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"trendspotter/app"
	"trendspotter/internal"
	"trendspotter/internal/container"
	"trendspotter/internal/session"
	"trendspotter/ui/services"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server is the interactive web shell
type Server struct {
	router    *gin.Engine
	reports   *app.ReportService
	sessions  *session.Store
	render    *services.RenderService
	templates *template.Template
	maxUpload int64
	title     string
	logger    *internal.Logger
}

// NewServer builds the router over the container's services
func NewServer(c *container.Container) (*Server, error) {
	funcMap := template.FuncMap{
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
		"bytes": func(n int64) string { return humanize.IBytes(uint64(n)) },
		"join":  strings.Join,
		"f2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		reports:   c.Reports,
		sessions:  c.Sessions,
		render:    services.NewRenderService(),
		templates: templates,
		maxUpload: c.Config.Server.MaxUploadBytes(),
		title:     c.Config.Reports.Title,
		logger:    c.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)

	data := s.router.Group("/api/data")
	data.POST("/upload", s.handleUpload)
	data.POST("/sql", s.handleSQL)
	data.GET("/preview", s.handlePreview)
	data.GET("/info", s.handleInfo)
	data.GET("/stats", s.handleStats)
	data.POST("/clean", s.handleClean)

	s.router.POST("/api/analysis", s.handleAnalyze)
	s.router.GET("/api/analysis", s.handleGetAnalysis)
	s.router.DELETE("/api/analysis", s.handleClearAnalysis)
	s.router.POST("/api/analysis/summary", s.handleExecutiveSummary)
	s.router.GET("/api/usage", s.handleUsage)

	s.router.GET("/api/reports/pdf", s.handleExportPDF)
	s.router.GET("/api/reports/pptx", s.handleExportPPTX)
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("[Server] starting TrendSpotter UI on http://%s", addr)
	return s.router.Run(addr)
}

// renderTemplate renders into a buffer first so template errors never
// produce a half-written page
func (s *Server) renderTemplate(c *gin.Context, name string, data interface{}) {
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("[Server] template %s failed: %v", name, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed"})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, buf.String())
}
