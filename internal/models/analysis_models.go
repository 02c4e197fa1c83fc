package models

import "time"

// Analysis is a saved batch. The aggregate counts are a snapshot computed at
// save time from the result set; they are never recomputed afterward.
type Analysis struct {
	ID            string    `json:"id" dynamodbav:"id"`
	UserID        string    `json:"user_id" dynamodbav:"user_id"`
	Title         string    `json:"title" dynamodbav:"title"`
	SourceType    string    `json:"source_type" dynamodbav:"source_type"`
	TotalTexts    int       `json:"total_texts" dynamodbav:"total_texts"`
	PositiveCount int       `json:"positive_count" dynamodbav:"positive_count"`
	NegativeCount int       `json:"negative_count" dynamodbav:"negative_count"`
	NeutralCount  int       `json:"neutral_count" dynamodbav:"neutral_count"`
	CreatedAt     time.Time `json:"created_at" dynamodbav:"created_at"`
}

// AnalysisItem is one persisted result row, keyed to its parent Analysis.
// Items are written in the same logical operation as the parent and removed
// with it on delete.
type AnalysisItem struct {
	ID          string    `json:"id" dynamodbav:"id"`
	AnalysisID  string    `json:"analysis_id" dynamodbav:"analysis_id"`
	Position    int       `json:"position" dynamodbav:"position"`
	TextContent string    `json:"text_content" dynamodbav:"text_content"`
	Sentiment   string    `json:"sentiment" dynamodbav:"sentiment"`
	Confidence  float64   `json:"confidence" dynamodbav:"confidence"`
	Keywords    []string  `json:"keywords" dynamodbav:"keywords"`
	Explanation string    `json:"explanation" dynamodbav:"explanation"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
}

// AnalysisWithItems is an Analysis joined with its ordered items.
type AnalysisWithItems struct {
	Analysis
	Items []AnalysisItem `json:"items"`
}

// Result converts a persisted item back to its in-memory form. Together with
// the save path this round-trips a result list exactly.
func (i AnalysisItem) Result() SentimentResult {
	keywords := i.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return SentimentResult{
		ID:          i.ID,
		Text:        i.TextContent,
		Sentiment:   i.Sentiment,
		Confidence:  i.Confidence,
		Keywords:    keywords,
		Explanation: i.Explanation,
	}
}
