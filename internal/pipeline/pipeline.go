// Package pipeline chains the stages between raw user input and the session
// result set: validation, cache lookup, the oracle call, and reconciliation.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/moodboard/internal/analyzer"
	"github.com/spacesedan/moodboard/internal/apperrors"
	"github.com/spacesedan/moodboard/internal/cache"
	"github.com/spacesedan/moodboard/internal/models"
	"github.com/spacesedan/moodboard/internal/session"
)

// Service runs the classification pipeline. Results is nil, the session
// store untouched, whenever an error is returned: a failed batch commits
// nothing.
type Service struct {
	backend  analyzer.Analyzer
	cache    *cache.ResultCache // nil disables caching
	sessions *session.Manager
	newID    analyzer.IDGenerator

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewService(backend analyzer.Analyzer, resultCache *cache.ResultCache, sessions *session.Manager, newID analyzer.IDGenerator) *Service {
	return &Service{
		backend:  backend,
		cache:    resultCache,
		sessions: sessions,
		newID:    newID,
		inFlight: make(map[string]struct{}),
	}
}

// Analyze classifies items and atomically replaces the session's result set.
// At most one batch may be in flight per session; concurrent triggers get
// ErrAnalysisInFlight instead of queueing. There are no automatic retries
// and no mid-flight cancellation beyond ctx.
func (s *Service) Analyze(ctx context.Context, sessionID string, items []models.TextItem) ([]models.SentimentResult, models.SummaryStats, error) {
	batch, err := analyzer.BuildBatch(items)
	if err != nil {
		return nil, models.SummaryStats{}, err
	}

	if !s.acquire(sessionID) {
		return nil, models.SummaryStats{}, apperrors.ErrAnalysisInFlight
	}
	defer s.release(sessionID)

	start := time.Now()
	results, err := s.classify(ctx, batch)
	if err != nil {
		return nil, models.SummaryStats{}, err
	}

	store := s.sessions.Get(sessionID)
	store.Replace(results)

	slog.Info("[Pipeline] Batch analyzed",
		slog.String("session_id", sessionID),
		slog.Int("texts", len(results)),
		slog.Duration("duration", time.Since(start)))
	return results, store.Stats(), nil
}

// classify resolves cached texts locally and sends only the misses to the
// backend, then merges everything back into input order.
func (s *Service) classify(ctx context.Context, batch *analyzer.Batch) ([]models.SentimentResult, error) {
	hits := make(map[int]cache.CachedResult)
	var misses []models.TextItem
	if s.cache != nil {
		for i, item := range batch.Items {
			if cached, ok := s.cache.Lookup(ctx, item.Text); ok {
				hits[i] = cached
			} else {
				misses = append(misses, item)
			}
		}
	} else {
		misses = batch.Items
	}

	var fresh []models.SentimentResult
	if len(misses) > 0 {
		missBatch := &analyzer.Batch{Items: misses}
		entries, err := s.backend.Analyze(ctx, missBatch)
		if err != nil {
			return nil, err
		}
		fresh = analyzer.Reconcile(misses, entries, s.newID)

		if s.cache != nil {
			for _, r := range fresh {
				s.cache.Store(ctx, r.Text, r)
			}
		}
	}

	if len(hits) == 0 {
		return fresh, nil
	}
	slog.Info("[Pipeline] Served texts from cache",
		slog.Int("cached", len(hits)),
		slog.Int("classified", len(fresh)))

	results := make([]models.SentimentResult, 0, len(batch.Items))
	next := 0
	for i, item := range batch.Items {
		cached, ok := hits[i]
		if !ok {
			results = append(results, fresh[next])
			next++
			continue
		}

		id := item.ID
		if id == "" {
			id = s.newID()
		}
		keywords := cached.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		results = append(results, models.SentimentResult{
			ID:          id,
			Text:        item.Text,
			Sentiment:   cached.Sentiment,
			Confidence:  models.ClampConfidence(cached.Confidence),
			Keywords:    keywords,
			Explanation: cached.Explanation,
		})
	}
	return results, nil
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}
