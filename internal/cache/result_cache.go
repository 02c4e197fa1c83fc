// Package cache keeps classified texts in valkey so identical texts seen
// again (across sessions or re-uploads) skip the oracle call.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/moodboard/internal/models"
)

const (
	keyPrefix = "sentiment:cache:"
	cacheTTL  = 24 * time.Hour
)

// CachedResult is the stored portion of a classification. Ids are excluded:
// identifier assignment belongs to reconciliation, never reused across calls.
type CachedResult struct {
	Sentiment   string   `json:"sentiment"`
	Confidence  float64  `json:"confidence"`
	Keywords    []string `json:"keywords"`
	Explanation string   `json:"explanation"`
}

// ResultCache is a best-effort layer: any valkey failure degrades to a miss
// or a skipped write, never to a pipeline error.
type ResultCache struct {
	client valkey.Client
}

func NewResultCache(client valkey.Client) *ResultCache {
	return &ResultCache{client: client}
}

// Lookup returns the cached classification for text, or ok=false on a miss.
func (c *ResultCache) Lookup(ctx context.Context, text string) (CachedResult, bool) {
	var cached CachedResult

	raw, err := c.client.Do(ctx, c.client.B().Get().Key(cacheKey(text)).Build()).AsBytes()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("[ResultCache] Lookup failed",
				slog.String("error", err.Error()))
		}
		return cached, false
	}

	if err := json.Unmarshal(raw, &cached); err != nil {
		slog.Warn("[ResultCache] Dropping unreadable cache entry",
			slog.String("error", err.Error()))
		return cached, false
	}
	return cached, true
}

// Store writes one classification with a TTL. Errors are logged and dropped.
func (c *ResultCache) Store(ctx context.Context, text string, result models.SentimentResult) {
	payload, err := json.Marshal(CachedResult{
		Sentiment:   result.Sentiment,
		Confidence:  result.Confidence,
		Keywords:    result.Keywords,
		Explanation: result.Explanation,
	})
	if err != nil {
		return
	}

	err = c.client.Do(ctx, c.client.B().Set().
		Key(cacheKey(text)).
		Value(string(payload)).
		ExSeconds(int64(cacheTTL.Seconds())).
		Build()).Error()
	if err != nil {
		slog.Warn("[ResultCache] Store failed",
			slog.String("error", err.Error()))
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return keyPrefix + hex.EncodeToString(sum[:])
}
