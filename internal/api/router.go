// Package api is the headless HTTP surface: one request runs the whole
// load, clean, analyze and export pipeline in a throwaway session.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"trendspotter/app"
	"trendspotter/domain/core"
	"trendspotter/internal"
	"trendspotter/internal/container"
	"trendspotter/internal/errors"
	"trendspotter/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Formats accepted by POST /v1/reports
const (
	FormatPDF  = "pdf"
	FormatPPTX = "pptx"
)

// Handler serves the report API
type Handler struct {
	reports   *app.ReportService
	logger    *internal.Logger
	maxUpload int64
	started   time.Time
}

// NewRouter builds the chi router over the container's report service
func NewRouter(c *container.Container) http.Handler {
	h := &Handler{
		reports:   c.Reports,
		logger:    c.Logger,
		maxUpload: c.Config.Server.MaxUploadBytes(),
		started:   time.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: c.Config.Server.APIAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.handleHealth)
	r.Post("/v1/reports", h.handleReport)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"demo_mode": h.reports.DemoMode(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"llm_usage": h.reports.Usage(),
	})
}

// handleReport reads the multipart "file" field, runs the pipeline and
// streams the document back. ?format=pdf|pptx (default pdf), ?clean=true
// cleans before analysis.
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatPPTX {
		writeError(w, errors.InvalidInput("format must be pdf or pptx"))
		return
	}
	clean, _ := strconv.ParseBool(r.URL.Query().Get("clean"))

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errors.InvalidInput("failed to read upload: "+err.Error()))
		return
	}

	ctx := r.Context()
	s := session.New(core.NewSessionID())
	reqID := middleware.GetReqID(ctx)
	h.logger.Info("[API] %s report for %s (format=%s clean=%t)", reqID, header.Filename, format, clean)

	if _, err := h.reports.LoadUpload(ctx, s, header.Filename, data); err != nil {
		writeError(w, err)
		return
	}
	if clean {
		if _, err := h.reports.Clean(ctx, s); err != nil {
			writeError(w, err)
			return
		}
	}
	if _, err := h.reports.Analyze(ctx, s); err != nil {
		writeError(w, err)
		return
	}

	export := h.reports.ExportPDF
	if format == FormatPPTX {
		export = h.reports.ExportPPTX
	}
	artifact, err := export(ctx, s)
	if err != nil {
		writeError(w, err)
		return
	}
	defer os.Remove(artifact.Path)

	f, err := os.Open(artifact.Path)
	if err != nil {
		writeError(w, errors.RenderFailure("failed to open rendered document", err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Warn("[API] %s streaming %s aborted: %v", reqID, artifact.Filename, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
