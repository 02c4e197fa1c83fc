package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/moodboard/internal/analyzer"
	"github.com/spacesedan/moodboard/internal/apperrors"
	"github.com/spacesedan/moodboard/internal/models"
	"github.com/spacesedan/moodboard/internal/pipeline"
	"github.com/spacesedan/moodboard/internal/session"
)

type stubAnalyzer struct {
	entries []models.OracleEntry
	err     error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, batch *analyzer.Batch) ([]models.OracleEntry, error) {
	return s.entries, s.err
}

type stubHistory struct {
	saved    *models.Analysis
	loaded   *models.AnalysisWithItems
	analyses []models.Analysis
	err      error
}

func (s *stubHistory) Save(ctx context.Context, userID, title, sourceType string, results []models.SentimentResult) (*models.Analysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.saved, nil
}

func (s *stubHistory) Load(ctx context.Context, analysisID string) (*models.AnalysisWithItems, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.loaded, nil
}

func (s *stubHistory) Delete(ctx context.Context, analysisID string) error {
	return s.err
}

func (s *stubHistory) List(ctx context.Context, userID string) ([]models.Analysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.analyses, nil
}

func newTestServer(backend analyzer.Analyzer, hist *stubHistory) (*echo.Echo, *session.Manager) {
	sessions := session.NewManager()
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}

	e := echo.New()
	RegisterRoutes(e, &Handlers{
		Pipeline: pipeline.NewService(backend, nil, sessions, newID),
		Sessions: sessions,
		History:  hist,
	})
	return e, sessions
}

func doJSON(e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	backend := &stubAnalyzer{entries: []models.OracleEntry{
		{Index: 1, Sentiment: "positive", Confidence: 0.9, Keywords: []string{"love"}, Explanation: "good"},
	}}
	e, sessions := newTestServer(backend, &stubHistory{})

	rec := doJSON(e, http.MethodPost, "/v1/analyze", analyzeRequest{
		Texts: []models.TextItem{{Text: "Love it", ID: "x"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "x", resp.Results[0].ID)
	assert.Equal(t, "positive", resp.Results[0].Sentiment)
	assert.Equal(t, 1, resp.Stats.Total)
	assert.Empty(t, resp.Warning)

	assert.Len(t, sessions.Get(defaultSession).Results(), 1)
}

func TestAnalyzeRawPasteTruncates(t *testing.T) {
	e, _ := newTestServer(&stubAnalyzer{}, &stubHistory{})

	var sb strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}

	rec := doJSON(e, http.MethodPost, "/v1/analyze", analyzeRequest{Raw: sb.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Results, 50)
	assert.Contains(t, resp.Warning, "60 texts")
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		backendErr error
		wantStatus int
	}{
		{"rate limited", apperrors.ErrRateLimited, http.StatusTooManyRequests},
		{"quota exhausted", apperrors.ErrQuotaExhausted, http.StatusPaymentRequired},
		{"oracle down", apperrors.ErrOracleUnavailable, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, sessions := newTestServer(&stubAnalyzer{err: tt.backendErr}, &stubHistory{})

			rec := doJSON(e, http.MethodPost, "/v1/analyze", analyzeRequest{
				Texts: []models.TextItem{{Text: "hi"}},
			})
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, sessions.Get(defaultSession).Results())
		})
	}
}

func TestAnalyzeEmptyBatch(t *testing.T) {
	e, _ := newTestServer(&stubAnalyzer{}, &stubHistory{})

	rec := doJSON(e, http.MethodPost, "/v1/analyze", analyzeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractEndpoint(t *testing.T) {
	e, _ := newTestServer(&stubAnalyzer{}, &stubHistory{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("Great!\n\nTerrible.\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/files/extract", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp extractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Great!", "Terrible."}, resp.Texts)
	assert.Equal(t, 2, resp.Count)
}

func TestExtractEndpointUnsupported(t *testing.T) {
	e, _ := newTestServer(&stubAnalyzer{}, &stubHistory{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "image.png")
	part.Write([]byte("binary"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/files/extract", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultsLifecycle(t *testing.T) {
	backend := &stubAnalyzer{entries: []models.OracleEntry{
		{Index: 1, Sentiment: "positive", Confidence: 0.9},
	}}
	e, _ := newTestServer(backend, &stubHistory{})

	doJSON(e, http.MethodPost, "/v1/analyze", analyzeRequest{
		Texts: []models.TextItem{{Text: "hi"}},
	})

	rec := doJSON(e, http.MethodGet, "/v1/results", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var results []models.SentimentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Len(t, results, 1)

	rec = doJSON(e, http.MethodGet, "/v1/results/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats models.SummaryStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Total)

	rec = doJSON(e, http.MethodDelete, "/v1/results", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/results", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Empty(t, results)
}

func TestExportCSVEndpoint(t *testing.T) {
	backend := &stubAnalyzer{entries: []models.OracleEntry{
		{Index: 1, Sentiment: "positive", Confidence: 0.9},
	}}
	e, _ := newTestServer(backend, &stubHistory{})
	doJSON(e, http.MethodPost, "/v1/analyze", analyzeRequest{
		Texts: []models.TextItem{{Text: "hi"}},
	})

	rec := doJSON(e, http.MethodGet, "/v1/export/csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Text,Sentiment,Confidence,Keywords,Explanation\n"))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "sentiment-analysis.csv")
}

func TestSaveRequiresResults(t *testing.T) {
	e, _ := newTestServer(&stubAnalyzer{}, &stubHistory{})

	rec := doJSON(e, http.MethodPost, "/v1/history", saveRequest{Title: "t", SourceType: "manual"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveAnalysis(t *testing.T) {
	backend := &stubAnalyzer{entries: []models.OracleEntry{
		{Index: 1, Sentiment: "positive", Confidence: 0.9},
	}}
	hist := &stubHistory{saved: &models.Analysis{ID: "a1", Title: "t"}}
	e, _ := newTestServer(backend, hist)

	doJSON(e, http.MethodPost, "/v1/analyze", analyzeRequest{
		Texts: []models.TextItem{{Text: "hi"}},
	})

	rec := doJSON(e, http.MethodPost, "/v1/history", saveRequest{Title: "t", SourceType: "manual"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var analysis models.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "a1", analysis.ID)
}

func TestLoadAnalysisRestore(t *testing.T) {
	hist := &stubHistory{loaded: &models.AnalysisWithItems{
		Analysis: models.Analysis{ID: "a1"},
		Items: []models.AnalysisItem{
			{ID: "r1", AnalysisID: "a1", TextContent: "hello", Sentiment: "positive", Confidence: 0.9, Keywords: []string{"hey"}, Explanation: "e"},
		},
	}}
	e, sessions := newTestServer(&stubAnalyzer{}, hist)

	rec := doJSON(e, http.MethodGet, "/v1/history/a1?restore=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	restored := sessions.Get(defaultSession).Results()
	require.Len(t, restored, 1)
	assert.Equal(t, "hello", restored[0].Text)
	assert.Equal(t, "positive", restored[0].Sentiment)
}

func TestDeleteAnalysisNotFound(t *testing.T) {
	e, _ := newTestServer(&stubAnalyzer{}, &stubHistory{err: apperrors.ErrAnalysisNotFound})

	rec := doJSON(e, http.MethodDelete, "/v1/history/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAnalysesEmpty(t *testing.T) {
	e, _ := newTestServer(&stubAnalyzer{}, &stubHistory{})

	rec := doJSON(e, http.MethodGet, "/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
