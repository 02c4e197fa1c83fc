package analyzer

import (
	"fmt"
	"strings"

	"github.com/spacesedan/moodboard/internal/apperrors"
	"github.com/spacesedan/moodboard/internal/models"
)

// MaxBatchSize is the hard ceiling on texts per oracle call. The extractor
// enforces the same limit at the upload boundary; both checks stay.
const MaxBatchSize = 50

const systemPrompt = `You are a sentiment analysis expert specializing in social media content. Analyze the sentiment of each text and provide structured results.

For each text, determine:
1. sentiment: "positive", "negative", or "neutral"
2. confidence: A number between 0.5 and 1.0 representing how confident you are
3. keywords: 2-5 key words or phrases that drive the sentiment
4. explanation: A brief (1-2 sentence) explanation of why this sentiment was assigned

Consider context, sarcasm, emojis, and social media language patterns.`

// Batch is a validated group of texts ready for one oracle call.
type Batch struct {
	Items []models.TextItem
}

// BuildBatch validates items and wraps them for submission. It fails before
// any network cost: ErrEmptyBatch for zero items, ErrBatchTooLarge past the
// cap. Identifier assignment is deferred to reconciliation so that
// caller-supplied ids survive the round trip.
func BuildBatch(items []models.TextItem) (*Batch, error) {
	if len(items) == 0 {
		return nil, apperrors.ErrEmptyBatch
	}
	if len(items) > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", apperrors.ErrBatchTooLarge, len(items))
	}
	return &Batch{Items: items}, nil
}

// SystemPrompt returns the instruction message for the oracle.
func (b *Batch) SystemPrompt() string {
	return systemPrompt
}

// UserPrompt embeds every text with its 1-based position. The positions are
// what the oracle echoes back as "index" and what reconciliation matches on.
func (b *Batch) UserPrompt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze the sentiment of these %d social media texts:\n\n", len(b.Items))

	for i, item := range b.Items {
		fmt.Fprintf(&sb, "[%d] %q\n\n", i+1, item.Text)
	}

	sb.WriteString(`Respond with a JSON array of results in this exact format:
[
  {
    "index": 1,
    "sentiment": "positive",
    "confidence": 0.92,
    "keywords": ["amazing", "love", "excited"],
    "explanation": "Strong positive language with excitement indicators."
  }
]`)
	return sb.String()
}
