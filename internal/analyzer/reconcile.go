package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spacesedan/moodboard/internal/apperrors"
	"github.com/spacesedan/moodboard/internal/models"
)

// IDGenerator mints identifiers for results whose input carried none.
// Injected so reconciliation stays deterministic under test.
type IDGenerator func() string

// Reconcile aligns the oracle's raw entries back onto the original input
// list. The returned slice always has exactly len(items) results in input
// order; malformed or absent entries degrade to per-item defaults, never to
// an error.
func Reconcile(items []models.TextItem, entries []models.OracleEntry, newID IDGenerator) []models.SentimentResult {
	results := make([]models.SentimentResult, 0, len(items))

	for i, item := range items {
		entry := matchEntry(entries, i)

		id := item.ID
		if id == "" {
			id = newID()
		}

		results = append(results, resultFromEntry(id, item.Text, entry))
	}

	return results
}

// matchEntry finds the oracle entry for 0-based input position i: first the
// entry declaring index i+1 (first match wins on duplicates), then the entry
// at raw position i when no index matches. Returns nil when neither exists.
func matchEntry(entries []models.OracleEntry, i int) *models.OracleEntry {
	for j := range entries {
		if entries[j].Index == i+1 {
			return &entries[j]
		}
	}
	if i < len(entries) {
		return &entries[i]
	}
	return nil
}

func resultFromEntry(id, text string, entry *models.OracleEntry) models.SentimentResult {
	result := models.SentimentResult{
		ID:          id,
		Text:        text,
		Sentiment:   models.SentimentNeutral,
		Confidence:  models.MinConfidence,
		Keywords:    []string{},
		Explanation: models.DefaultExplanation,
	}
	if entry == nil {
		return result
	}

	if models.ValidSentiment(entry.Sentiment) {
		result.Sentiment = entry.Sentiment
	}
	result.Confidence = models.ClampConfidence(entry.Confidence)
	if len(entry.Keywords) > 0 {
		keywords := entry.Keywords
		if len(keywords) > models.MaxKeywords {
			keywords = keywords[:models.MaxKeywords]
		}
		result.Keywords = keywords
	}
	if entry.Explanation != "" {
		result.Explanation = entry.Explanation
	}
	return result
}

// ParseOracleEntries pulls the result array out of the oracle's message
// content. Models wrap their JSON in prose or markdown fences more often
// than not, so the first balanced array span is located before parsing.
// Failure here is a batch-level error, not a per-item default.
func ParseOracleEntries(content string) ([]models.OracleEntry, error) {
	cleaned := stripFences(content)

	span, ok := firstArraySpan(cleaned)
	if !ok {
		// Some responses wrap the array as {"results": [...]} with no
		// other array present; try the object shape before giving up.
		var wrapped models.OracleResponse
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && wrapped.Results != nil {
			return wrapped.Results, nil
		}
		return nil, fmt.Errorf("%w: no JSON array found in oracle response", apperrors.ErrOracleUnavailable)
	}

	var entries []models.OracleEntry
	if err := json.Unmarshal([]byte(span), &entries); err != nil {
		return nil, fmt.Errorf("%w: malformed oracle response: %v", apperrors.ErrOracleUnavailable, err)
	}
	return entries, nil
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(content string) string {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}

// firstArraySpan returns the first balanced [...] span in s, skipping
// brackets inside JSON string literals.
func firstArraySpan(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '[':
			if !inString {
				if start < 0 {
					start = i
				}
				depth++
			}
		case ']':
			if !inString && start >= 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
