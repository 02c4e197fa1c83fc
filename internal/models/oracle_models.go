package models

// OracleEntry is one element of the classification oracle's response array.
// Every field is optional on the wire; missing fields are defaulted during
// reconciliation rather than rejected.
type OracleEntry struct {
	Index       int      `json:"index"`
	Sentiment   string   `json:"sentiment"`
	Confidence  float64  `json:"confidence"`
	Keywords    []string `json:"keywords"`
	Explanation string   `json:"explanation"`
}

// OracleResponse covers the wrapped response shape; the oracle may also
// return a bare array, which the reconciler handles directly.
type OracleResponse struct {
	Results []OracleEntry `json:"results"`
}
