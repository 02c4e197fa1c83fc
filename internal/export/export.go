// Package export renders a result set for download: CSV, pretty-printed
// JSON, and a printable report.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/moodboard/internal/models"
)

const truncateTextAt = 60

// ToCSV renders results with the fixed header row. Text and explanation
// fields are double-quote-escaped; confidence is a percentage with one
// decimal place.
func ToCSV(results []models.SentimentResult) string {
	var sb strings.Builder
	sb.WriteString("Text,Sentiment,Confidence,Keywords,Explanation\n")

	for _, r := range results {
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%s\n",
			quote(r.Text),
			r.Sentiment,
			percent(r.Confidence),
			quote(strings.Join(r.Keywords, ", ")),
			quote(r.Explanation))
	}
	return sb.String()
}

// ToJSON renders the raw result list, pretty-printed.
func ToJSON(results []models.SentimentResult) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}

// ReportMarkdown builds the printable report: title, generation timestamp,
// summary counts with percentages, and a results table with texts truncated
// to 60 characters and the top 3 keywords.
func ReportMarkdown(title string, generatedAt time.Time, results []models.SentimentResult, stats models.SummaryStats) string {
	if title == "" {
		title = "Sentiment Analysis Report"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04:05"))

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Total Texts: %d\n", stats.Total)
	fmt.Fprintf(&sb, "- Positive: %d (%s)\n", stats.Positive, share(stats.Positive, stats.Total))
	fmt.Fprintf(&sb, "- Negative: %d (%s)\n", stats.Negative, share(stats.Negative, stats.Total))
	fmt.Fprintf(&sb, "- Neutral: %d (%s)\n\n", stats.Neutral, share(stats.Neutral, stats.Total))

	sb.WriteString("## Results\n\n")
	sb.WriteString("| Text | Sentiment | Confidence | Keywords |\n")
	sb.WriteString("| --- | --- | --- | --- |\n")
	for _, r := range results {
		keywords := r.Keywords
		if len(keywords) > 3 {
			keywords = keywords[:3]
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			cell(truncate(r.Text)),
			capitalize(r.Sentiment),
			percent(r.Confidence),
			cell(strings.Join(keywords, ", ")))
	}
	return sb.String()
}

// ReportHTML renders the markdown report to printable HTML.
func ReportHTML(title string, generatedAt time.Time, results []models.SentimentResult, stats models.SummaryStats) []byte {
	md := ReportMarkdown(title, generatedAt, results, stats)
	return blackfriday.Run([]byte(md), blackfriday.WithExtensions(blackfriday.CommonExtensions))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func percent(confidence float64) string {
	return fmt.Sprintf("%.1f%%", confidence*100)
}

func share(count, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}

// truncate cuts on rune boundaries so multi-byte text survives intact.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) > truncateTextAt {
		return string(runes[:truncateTextAt]) + "..."
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// cell escapes pipes so free text cannot break the markdown table.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
