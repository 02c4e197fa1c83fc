package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spacesedan/moodboard/internal/apperrors"
	"github.com/spacesedan/moodboard/internal/export"
	"github.com/spacesedan/moodboard/internal/extractor"
	"github.com/spacesedan/moodboard/internal/models"
)

const (
	sessionHeader  = "X-Session-ID"
	userHeader     = "X-User-ID"
	defaultSession = "default"
	defaultUser    = "anonymous"

	// Uploads past this size are rejected before parsing.
	maxUploadBytes = 10 << 20
)

type analyzeRequest struct {
	// Texts is the explicit batch; Raw is a pasted blob split into lines
	// at the input boundary, where the 50-text cap truncates rather than
	// rejects.
	Texts []models.TextItem `json:"texts"`
	Raw   string            `json:"raw,omitempty"`
}

type analyzeResponse struct {
	Results []models.SentimentResult `json:"results"`
	Stats   models.SummaryStats      `json:"stats"`
	Warning string                   `json:"warning,omitempty"`
}

type extractResponse struct {
	Texts   []string `json:"texts"`
	Count   int      `json:"count"`
	Warning string   `json:"warning,omitempty"`
}

func (h *Handlers) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	items := req.Texts
	var warning string
	if len(items) == 0 && req.Raw != "" {
		items, warning = itemsFromRaw(req.Raw)
	}

	results, stats, err := h.Pipeline.Analyze(c.Request().Context(), sessionID(c), items)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, analyzeResponse{Results: results, Stats: stats, Warning: warning})
}

// itemsFromRaw splits a pasted blob into one item per non-empty line,
// truncating past the cap the same way the file extractor does.
func itemsFromRaw(raw string) ([]models.TextItem, string) {
	var items []models.TextItem
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			items = append(items, models.TextItem{Text: trimmed})
		}
	}

	if len(items) > extractor.MaxTexts {
		trunc := &apperrors.Truncation{Original: len(items), Kept: extractor.MaxTexts}
		return items[:extractor.MaxTexts], trunc.Message()
	}
	return items, ""
}

func (h *Handlers) handleExtract(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("missing file upload"))
	}
	if fileHeader.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, errorBody("file too large"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("unreadable file upload"))
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("unreadable file upload"))
	}

	texts, trunc, err := extractor.Extract(fileHeader.Filename, string(content))
	if err != nil {
		return writeError(c, err)
	}

	resp := extractResponse{Texts: texts, Count: len(texts)}
	if trunc != nil {
		resp.Warning = trunc.Message()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handlers) handleResults(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Sessions.Get(sessionID(c)).Results())
}

func (h *Handlers) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Sessions.Get(sessionID(c)).Stats())
}

func (h *Handlers) handleClearResults(c echo.Context) error {
	h.Sessions.Get(sessionID(c)).Clear()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) handleExportCSV(c echo.Context) error {
	results := h.Sessions.Get(sessionID(c)).Results()
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sentiment-analysis.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(export.ToCSV(results)))
}

func (h *Handlers) handleExportJSON(c echo.Context) error {
	results := h.Sessions.Get(sessionID(c)).Results()
	payload, err := export.ToJSON(results)
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="sentiment-analysis.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, payload)
}

func (h *Handlers) handleExportReport(c echo.Context) error {
	store := h.Sessions.Get(sessionID(c))
	html := export.ReportHTML(c.QueryParam("title"), time.Now(), store.Results(), store.Stats())
	return c.HTMLBlob(http.StatusOK, html)
}

type saveRequest struct {
	Title      string `json:"title"`
	SourceType string `json:"source_type"`
}

func (h *Handlers) handleSaveAnalysis(c echo.Context) error {
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}

	results := h.Sessions.Get(sessionID(c)).Results()
	if len(results) == 0 {
		return c.JSON(http.StatusBadRequest, errorBody("no results to save"))
	}

	analysis, err := h.History.Save(c.Request().Context(), userID(c), req.Title, req.SourceType, results)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, analysis)
}

func (h *Handlers) handleListAnalyses(c echo.Context) error {
	analyses, err := h.History.List(c.Request().Context(), userID(c))
	if err != nil {
		return writeError(c, err)
	}
	if analyses == nil {
		analyses = []models.Analysis{}
	}
	return c.JSON(http.StatusOK, analyses)
}

func (h *Handlers) handleLoadAnalysis(c echo.Context) error {
	loaded, err := h.History.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	// restore=true also replaces the live session set with the loaded
	// results, in their saved order.
	if c.QueryParam("restore") == "true" {
		results := make([]models.SentimentResult, 0, len(loaded.Items))
		for _, item := range loaded.Items {
			results = append(results, item.Result())
		}
		h.Sessions.Get(sessionID(c)).Replace(results)
	}

	return c.JSON(http.StatusOK, loaded)
}

func (h *Handlers) handleDeleteAnalysis(c echo.Context) error {
	if err := h.History.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func sessionID(c echo.Context) string {
	if id := c.Request().Header.Get(sessionHeader); id != "" {
		return id
	}
	return defaultSession
}

func userID(c echo.Context) string {
	if id := c.Request().Header.Get(userHeader); id != "" {
		return id
	}
	return defaultUser
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps the pipeline taxonomy onto HTTP statuses. Batch failures
// never leave partial state behind, so a non-2xx body is the whole story.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrEmptyBatch),
		errors.Is(err, apperrors.ErrBatchTooLarge),
		errors.Is(err, apperrors.ErrUnsupportedFormat),
		errors.Is(err, apperrors.ErrEmptyExtraction):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAnalysisInFlight):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, apperrors.ErrQuotaExhausted):
		status = http.StatusPaymentRequired
	case errors.Is(err, apperrors.ErrOracleUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, apperrors.ErrAnalysisNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		slog.Error("[API] Request failed", slog.String("error", err.Error()))
	}
	return c.JSON(status, errorBody(fmt.Sprintf("%v", err)))
}
