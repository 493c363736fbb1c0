package ui

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"trendspotter/adapters/sqlsource"
	"trendspotter/internal/errors"
	"trendspotter/internal/session"
	"trendspotter/ui/middleware"

	"github.com/gin-gonic/gin"
)

const defaultPreviewRows = 10

// sqlRequest is the body of POST /api/data/sql
type sqlRequest struct {
	sqlsource.Descriptor
	Query string `json:"query" form:"query" binding:"required"`
}

// respondError writes err as JSON with the status its code maps to
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[Server] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func loadedResponse(l session.Loaded) gin.H {
	return gin.H{
		"info":               l.Info,
		"source":             l.Source,
		"loaded_at":          l.LoadedAt,
		"clean_report":       l.CleanReport,
		"date_columns":       l.DateColumns,
		"insights_generated": l.InsightsGenerated,
	}
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload limit", "code": errors.CodeInvalidInput})
			return
		}
		s.respondError(c, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}

	f, err := header.Open()
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to read upload"))
		return
	}

	loaded, err := s.reports.LoadUpload(c.Request.Context(), middleware.Session(c), header.Filename, data)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loadedResponse(loaded))
}

func (s *Server) handleSQL(c *gin.Context) {
	var req sqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	loaded, err := s.reports.LoadSQL(c.Request.Context(), middleware.Session(c), req.Descriptor, req.Query)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loadedResponse(loaded))
}

func (s *Server) handlePreview(c *gin.Context) {
	loaded, err := middleware.Session(c).Loaded()
	if err != nil {
		s.respondError(c, err)
		return
	}

	n, err := strconv.Atoi(c.DefaultQuery("rows", strconv.Itoa(defaultPreviewRows)))
	if err != nil || n < 1 {
		n = defaultPreviewRows
	}

	c.JSON(http.StatusOK, gin.H{
		"columns": loaded.Dataset.ColumnNames(),
		"rows":    loaded.Dataset.Head(n),
		"total":   loaded.Info.Rows,
	})
}

func (s *Server) handleInfo(c *gin.Context) {
	loaded, err := middleware.Session(c).Loaded()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"info":      loaded.Info,
		"memory_mb": loaded.Info.MemoryMB(),
		"source":    loaded.Source,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	metrics, err := s.reports.OrderedMetrics(middleware.Session(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"metrics": metrics})
}

func (s *Server) handleClean(c *gin.Context) {
	loaded, err := s.reports.Clean(c.Request.Context(), middleware.Session(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loadedResponse(loaded))
}
