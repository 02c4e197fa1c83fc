package models

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

const (
	// MinConfidence and MaxConfidence bound every stored confidence value.
	MinConfidence = 0.5
	MaxConfidence = 1.0

	// MaxKeywords caps the keyword list on a single result.
	MaxKeywords = 5

	// DefaultExplanation is used when the oracle gives us nothing usable.
	DefaultExplanation = "Unable to determine sentiment."
)

// TextItem is one user-submitted text awaiting classification. The ID is
// optional; when empty a fresh one is assigned during reconciliation.
type TextItem struct {
	Text string `json:"text"`
	ID   string `json:"id,omitempty"`
}

// SentimentResult is the classified form of a TextItem. Immutable once built;
// a re-analysis produces a new slice, never edits in place.
type SentimentResult struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Sentiment   string   `json:"sentiment"`
	Confidence  float64  `json:"confidence"`
	Keywords    []string `json:"keywords"`
	Explanation string   `json:"explanation"`
}

// SummaryStats aggregates a result set in a single pass.
type SummaryStats struct {
	Total         int     `json:"total"`
	Positive      int     `json:"positive"`
	Negative      int     `json:"negative"`
	Neutral       int     `json:"neutral"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// ValidSentiment reports whether s is one of the three recognized labels.
func ValidSentiment(s string) bool {
	return s == SentimentPositive || s == SentimentNegative || s == SentimentNeutral
}

// ClampConfidence coerces any oracle-supplied confidence into the
// [MinConfidence, MaxConfidence] range. Zero (missing) clamps to the floor.
func ClampConfidence(c float64) float64 {
	if c < MinConfidence {
		return MinConfidence
	}
	if c > MaxConfidence {
		return MaxConfidence
	}
	return c
}
