package clients

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Timeout for individual classification requests; the core enforces no
// timeout of its own and relies on the transport's.
const openAIRequestTimeout = 60 * time.Second

var (
	openAIClientInstance *openai.Client
	openAIOnce           sync.Once
)

// GetOpenAIClient returns the shared chat-completion client. OPENAI_API_KEY
// must be set; OPENAI_BASE_URL optionally points at a gateway.
func GetOpenAIClient() *openai.Client {
	openAIOnce.Do(func() {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			slog.Error("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
			panic("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
		}

		opts := []option.RequestOption{
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
		}
		if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}

		openAIClientInstance = openai.NewClient(opts...)
		slog.Info("[OpenAIClient] OpenAI client initialized",
			slog.Duration("timeout", openAIRequestTimeout))
	})
	return openAIClientInstance
}
