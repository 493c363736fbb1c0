package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"trendspotter/internal"
	"trendspotter/internal/config"
	"trendspotter/internal/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adsCSV = "campaign,clicks,conversions\nsearch,10,2\nsearch,10,2\nsocial,20,4\n"

func testConfig(outputDir string) *config.Config {
	return &config.Config{
		AI:      config.AIConfig{Provider: config.ProviderGemini, Model: "gemini-pro"},
		Server:  config.ServerConfig{MaxUploadMB: 1},
		Reports: config.ReportConfig{OutputDir: outputDir, Title: config.DefaultReportTitle},
	}
}

func newRouter(t *testing.T, outputDir string) http.Handler {
	t.Helper()
	return newRouterWithConfig(t, testConfig(outputDir))
}

func newRouterWithConfig(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	c, err := container.New(cfg, internal.NewNopLogger())
	require.NoError(t, err)
	return NewRouter(c)
}

func reportRequest(t *testing.T, query, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/reports"+query, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(t, t.TempDir()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["demo_mode"])
	assert.Contains(t, body, "llm_usage")
}

func TestReportPDF(t *testing.T) {
	dir := t.TempDir()
	w := httptest.NewRecorder()
	newRouter(t, dir).ServeHTTP(w, reportRequest(t, "", "ads.csv", adsCSV))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "adtech_report_")
	assert.Contains(t, w.Body.String(), "Rows: 3")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "document removed after streaming")
}

func TestReportPPTXWithClean(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(t, t.TempDir()).ServeHTTP(w, reportRequest(t, "?format=pptx&clean=true", "ads.csv", adsCSV))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)

	var slides int
	for _, f := range zr.File {
		if len(f.Name) > len("ppt/slides/slide") && f.Name[:len("ppt/slides/slide")] == "ppt/slides/slide" {
			slides++
		}
	}
	assert.Equal(t, 6, slides)
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(t, t.TempDir()).ServeHTTP(w, reportRequest(t, "?format=docx", "ads.csv", adsCSV))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportParseFailure(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(t, t.TempDir()).ServeHTTP(w, reportRequest(t, "", "ads.parquet", "PAR1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "PARSE_FAILURE", body["code"])
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Server.APIAllowedOrigins = []string{"https://dash.example"}
	router := newRouterWithConfig(t, cfg)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/v1/reports", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, "https://dash.example", preflight("https://dash.example").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, preflight("https://evil.example").Header().Get("Access-Control-Allow-Origin"))
}
