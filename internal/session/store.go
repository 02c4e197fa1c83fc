// Package session holds the current in-memory result set per dashboard
// session. Nothing here is persisted; a session lives until it is cleared or
// the process exits.
package session

import (
	"sync"

	"github.com/spacesedan/moodboard/internal/models"
)

// Store is one session's result set. Writes are atomic whole-list
// replacements; readers always see either the previous batch or the new one,
// never a partial update.
type Store struct {
	mu      sync.Mutex
	results []models.SentimentResult
}

func NewStore() *Store {
	return &Store{}
}

// Replace overwrites the held list in full.
func (s *Store) Replace(results []models.SentimentResult) {
	copied := cloneResults(results)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = copied
}

// Clear empties the held list.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
}

// Results returns a copy of the held list in order.
func (s *Store) Results() []models.SentimentResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneResults(s.results)
}

// cloneResults copies the list along with each Keywords slice, so neither
// side can write through to the other's backing arrays.
func cloneResults(results []models.SentimentResult) []models.SentimentResult {
	copied := append([]models.SentimentResult(nil), results...)
	for i := range copied {
		copied[i].Keywords = append([]string(nil), copied[i].Keywords...)
	}
	return copied
}

// Stats aggregates the held list in a single pass. AvgConfidence is 0 for an
// empty list.
func (s *Store) Stats() models.SummaryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.SummaryStats{Total: len(s.results)}
	if len(s.results) == 0 {
		return stats
	}

	var confidenceSum float64
	for _, r := range s.results {
		switch r.Sentiment {
		case models.SentimentPositive:
			stats.Positive++
		case models.SentimentNegative:
			stats.Negative++
		default:
			stats.Neutral++
		}
		confidenceSum += r.Confidence
	}
	stats.AvgConfidence = confidenceSum / float64(len(s.results))

	return stats
}

// Manager hands out one Store per session id, creating on first use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Store
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Store)}
}

func (m *Manager) Get(sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, ok := m.sessions[sessionID]
	if !ok {
		store = NewStore()
		m.sessions[sessionID] = store
	}
	return store
}
