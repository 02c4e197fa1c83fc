// Package analyzer holds the batch request builder, the classification
// backends, and the reconciliation that maps raw oracle output back onto the
// submitted texts.
package analyzer

import (
	"context"

	"github.com/spacesedan/moodboard/internal/models"
)

// Analyzer is one classification backend: given a validated batch it returns
// raw oracle entries for reconciliation. Transport-level failures surface as
// batch errors; per-entry gaps are left for the reconciler to default.
type Analyzer interface {
	Analyze(ctx context.Context, batch *Batch) ([]models.OracleEntry, error)
}
