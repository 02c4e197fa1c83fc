package config

import "os"

const (
	BackendOpenAI = "openai"
	BackendVader  = "vader"
)

// Config is the typed view of the service environment.
type Config struct {
	HTTPAddr string

	// AnalyzerBackend selects the classification oracle: "openai" (the
	// default) or "vader" for fully offline scoring.
	AnalyzerBackend string
	OpenAIModel     string

	AnalysesTable string
	ItemsTable    string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		AnalyzerBackend: getenv("ANALYZER_BACKEND", BackendOpenAI),
		OpenAIModel:     getenv("OPENAI_MODEL", "gpt-4o-mini"),
		AnalysesTable:   getenv("ANALYSES_TABLE", "Analyses"),
		ItemsTable:      getenv("ANALYSIS_ITEMS_TABLE", "AnalysisItems"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
