// Package history defines the persistence adapter the pipeline saves
// completed batches through. Transaction mechanics belong to the provider;
// the core only relies on the contracts below.
package history

import (
	"context"

	"github.com/spacesedan/moodboard/internal/models"
)

// Store persists completed analyses.
//
// Save derives the aggregate counts from exactly the results passed in; they
// are a snapshot, never recomputed. Load returns items in their original
// order so a saved batch maps 1:1 back onto a result list. Delete cascades
// to child items.
type Store interface {
	Save(ctx context.Context, userID, title, sourceType string, results []models.SentimentResult) (*models.Analysis, error)
	Load(ctx context.Context, analysisID string) (*models.AnalysisWithItems, error)
	Delete(ctx context.Context, analysisID string) error
	List(ctx context.Context, userID string) ([]models.Analysis, error)
}

// NewAnalysis builds the snapshot record for a result set. Counts are
// computed here, at save time, and frozen into the record.
func NewAnalysis(id, userID, title, sourceType string, results []models.SentimentResult) models.Analysis {
	analysis := models.Analysis{
		ID:         id,
		UserID:     userID,
		Title:      title,
		SourceType: sourceType,
		TotalTexts: len(results),
	}
	for _, r := range results {
		switch r.Sentiment {
		case models.SentimentPositive:
			analysis.PositiveCount++
		case models.SentimentNegative:
			analysis.NegativeCount++
		default:
			analysis.NeutralCount++
		}
	}
	return analysis
}
