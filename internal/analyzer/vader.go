package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/moodboard/internal/models"
)

const (
	positiveThreshold = 0.20
	negativeThreshold = -0.20
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	bareURLPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// VaderAnalyzer scores batches locally with VADER. No network, no quota; it
// produces the same entry shape as the remote oracle so reconciliation is
// shared between backends.
type VaderAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (a *VaderAnalyzer) Analyze(_ context.Context, batch *Batch) ([]models.OracleEntry, error) {
	entries := make([]models.OracleEntry, 0, len(batch.Items))

	for i, item := range batch.Items {
		plain := markdownToPlainText(item.Text)
		scores := a.analyzer.PolarityScores(plain)

		label := models.SentimentNeutral
		if scores.Compound >= positiveThreshold {
			label = models.SentimentPositive
		} else if scores.Compound <= negativeThreshold {
			label = models.SentimentNegative
		}

		entries = append(entries, models.OracleEntry{
			Index:       i + 1,
			Sentiment:   label,
			Confidence:  confidenceFromCompound(scores.Compound),
			Keywords:    []string{},
			Explanation: fmt.Sprintf("VADER compound score %.2f.", scores.Compound),
		})
	}

	return entries, nil
}

// confidenceFromCompound maps a compound score in [-1, 1] onto the
// [0.5, 1.0] confidence range: the further from zero, the more confident.
func confidenceFromCompound(compound float64) float64 {
	if compound < 0 {
		compound = -compound
	}
	return models.ClampConfidence(0.5 + compound/2)
}

// markdownToPlainText renders markdown and flattens it to a single line,
// dropping links so URLs don't skew token scoring.
func markdownToPlainText(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")

	rendered := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := stripTags(string(rendered))
	plain = bareURLPattern.ReplaceAllString(plain, "")

	return strings.Join(strings.Fields(plain), " ")
}

func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			sb.WriteRune(' ')
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
