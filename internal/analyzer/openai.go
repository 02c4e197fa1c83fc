package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/spacesedan/moodboard/internal/apperrors"
	"github.com/spacesedan/moodboard/internal/models"
)

// OpenAIAnalyzer sends batches to a chat-completion oracle. One request per
// batch, no automatic retries: a failure surfaces immediately and the caller
// decides whether to re-trigger.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

func NewOpenAIAnalyzer(client *openai.Client, model string) *OpenAIAnalyzer {
	return &OpenAIAnalyzer{client: client, model: model}
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, batch *Batch) ([]models.OracleEntry, error) {
	start := time.Now()
	slog.Info("[OpenAIAnalyzer] Sending batch for classification",
		slog.Int("batch_size", len(batch.Items)),
		slog.String("model", a.model))

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(batch.SystemPrompt()),
			openai.UserMessage(batch.UserPrompt()),
		}),
		Model: openai.F(openai.ChatModel(a.model)),
	})
	if err != nil {
		return nil, mapOracleError(err)
	}

	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("%w: empty completion", apperrors.ErrOracleUnavailable)
	}

	entries, err := ParseOracleEntries(completion.Choices[0].Message.Content)
	if err != nil {
		slog.Error("[OpenAIAnalyzer] Failed to parse oracle response",
			slog.String("error", err.Error()),
			slog.String("raw_response", snippet(completion.Choices[0].Message.Content, 200)))
		return nil, err
	}

	slog.Info("[OpenAIAnalyzer] Batch classified",
		slog.Int("entries", len(entries)),
		slog.Duration("duration", time.Since(start)))
	return entries, nil
}

// mapOracleError folds transport failures into the batch-level taxonomy:
// 429 is retryable by the caller, 402 is fatal, everything else is a generic
// oracle failure.
func mapOracleError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", apperrors.ErrRateLimited, err)
		case http.StatusPaymentRequired:
			return fmt.Errorf("%w: %v", apperrors.ErrQuotaExhausted, err)
		}
	}
	return fmt.Errorf("%w: %v", apperrors.ErrOracleUnavailable, err)
}

func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return s
}
