package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/moodboard/internal/models"
)

func TestNewAnalysisSnapshotCounts(t *testing.T) {
	results := []models.SentimentResult{
		{Sentiment: models.SentimentPositive},
		{Sentiment: models.SentimentPositive},
		{Sentiment: models.SentimentNegative},
		{Sentiment: models.SentimentNeutral},
		{Sentiment: "unknown"}, // anything unrecognized counts as neutral
	}

	analysis := NewAnalysis("a1", "u1", "My batch", "csv", results)

	assert.Equal(t, "a1", analysis.ID)
	assert.Equal(t, "u1", analysis.UserID)
	assert.Equal(t, "My batch", analysis.Title)
	assert.Equal(t, "csv", analysis.SourceType)
	assert.Equal(t, 5, analysis.TotalTexts)
	assert.Equal(t, 2, analysis.PositiveCount)
	assert.Equal(t, 1, analysis.NegativeCount)
	assert.Equal(t, 2, analysis.NeutralCount)
}

func TestNewAnalysisEmpty(t *testing.T) {
	analysis := NewAnalysis("a1", "u1", "empty", "manual", nil)
	assert.Equal(t, 0, analysis.TotalTexts)
	assert.Equal(t, 0, analysis.PositiveCount)
}

func TestAnalysisItemRoundTrip(t *testing.T) {
	item := models.AnalysisItem{
		ID:          "r1",
		AnalysisID:  "a1",
		Position:    0,
		TextContent: "Love it",
		Sentiment:   models.SentimentPositive,
		Confidence:  0.95,
		Keywords:    []string{"love"},
		Explanation: "positive tone",
	}

	assert.Equal(t, models.SentimentResult{
		ID:          "r1",
		Text:        "Love it",
		Sentiment:   models.SentimentPositive,
		Confidence:  0.95,
		Keywords:    []string{"love"},
		Explanation: "positive tone",
	}, item.Result())
}
