package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/moodboard/internal/models"
)

func sampleResults() []models.SentimentResult {
	return []models.SentimentResult{
		{
			ID:          "1",
			Text:        `She said "wow"`,
			Sentiment:   models.SentimentPositive,
			Confidence:  0.923,
			Keywords:    []string{"wow", "excited"},
			Explanation: "Enthusiastic reaction.",
		},
		{
			ID:          "2",
			Text:        "meh",
			Sentiment:   models.SentimentNeutral,
			Confidence:  0.5,
			Keywords:    []string{},
			Explanation: models.DefaultExplanation,
		},
	}
}

func TestToCSV(t *testing.T) {
	csv := ToCSV(sampleResults())
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "Text,Sentiment,Confidence,Keywords,Explanation", lines[0])
	assert.Equal(t, `"She said ""wow""",positive,92.3%,"wow, excited","Enthusiastic reaction."`, lines[1])
	assert.Contains(t, lines[2], "50.0%")
}

func TestToCSVEmpty(t *testing.T) {
	csv := ToCSV(nil)
	assert.Equal(t, "Text,Sentiment,Confidence,Keywords,Explanation\n", csv)
}

func TestToJSONRoundTrip(t *testing.T) {
	payload, err := ToJSON(sampleResults())
	require.NoError(t, err)

	var decoded []models.SentimentResult
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, sampleResults(), decoded)
}

func TestReportMarkdown(t *testing.T) {
	longText := strings.Repeat("x", 80)
	results := []models.SentimentResult{
		{
			ID:         "1",
			Text:       longText,
			Sentiment:  models.SentimentNegative,
			Confidence: 0.8,
			Keywords:   []string{"k1", "k2", "k3", "k4", "k5"},
		},
	}
	stats := models.SummaryStats{Total: 1, Negative: 1, AvgConfidence: 0.8}

	md := ReportMarkdown("Weekly Mood", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), results, stats)

	assert.Contains(t, md, "# Weekly Mood")
	assert.Contains(t, md, "Generated: 2026-03-01 12:00:00")
	assert.Contains(t, md, "- Negative: 1 (100.0%)")
	assert.Contains(t, md, "- Positive: 0 (0.0%)")
	assert.Contains(t, md, strings.Repeat("x", 60)+"...")
	assert.NotContains(t, md, strings.Repeat("x", 61))
	assert.Contains(t, md, "k1, k2, k3")
	assert.NotContains(t, md, "k4")
	assert.Contains(t, md, "Negative | 80.0%")
}

func TestReportMarkdownTruncatesOnRuneBoundary(t *testing.T) {
	longText := strings.Repeat("a", 59) + "éclair"
	results := []models.SentimentResult{
		{ID: "1", Text: longText, Sentiment: models.SentimentNeutral, Confidence: 0.5},
	}

	md := ReportMarkdown("", time.Now(), results, models.SummaryStats{Total: 1, Neutral: 1})

	assert.True(t, utf8.ValidString(md))
	assert.Contains(t, md, strings.Repeat("a", 59)+"é...")
	assert.NotContains(t, md, "éc")
}

func TestReportMarkdownDefaultTitle(t *testing.T) {
	md := ReportMarkdown("", time.Now(), nil, models.SummaryStats{})
	assert.Contains(t, md, "# Sentiment Analysis Report")
	assert.Contains(t, md, "- Positive: 0 (0.0%)")
}

func TestReportHTML(t *testing.T) {
	html := string(ReportHTML("Mood", time.Now(), sampleResults(), models.SummaryStats{Total: 2, Positive: 1, Neutral: 1}))
	assert.Contains(t, html, "<h1>Mood</h1>")
	assert.Contains(t, html, "<table>")
}
