// Package apperrors defines the error taxonomy shared across the pipeline.
// Per-item defects (a missing oracle field) never appear here; those are
// recovered locally by defaulting. These errors are batch-level: when one is
// returned, nothing was partially applied.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat - uploaded file extension is not csv, txt, or json.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyExtraction - a supported file yielded zero usable texts.
	ErrEmptyExtraction = errors.New("no usable texts found in file")

	// ErrEmptyBatch / ErrBatchTooLarge - request validation, caught before
	// any network cost is incurred.
	ErrEmptyBatch    = errors.New("batch contains no texts")
	ErrBatchTooLarge = errors.New("batch exceeds the maximum of 50 texts")

	// ErrRateLimited - oracle answered 429; the caller may re-trigger
	// manually, nothing retries automatically.
	ErrRateLimited = errors.New("classification service rate limit exceeded")

	// ErrQuotaExhausted - oracle answered 402; fatal to the batch.
	ErrQuotaExhausted = errors.New("classification service quota exhausted")

	// ErrOracleUnavailable - any other oracle failure, including an
	// unparseable response body.
	ErrOracleUnavailable = errors.New("classification service unavailable")

	// ErrAnalysisInFlight - a batch is already running for this session.
	ErrAnalysisInFlight = errors.New("an analysis is already in progress for this session")

	// ErrPersistence - the history store failed; in-memory results are
	// left intact regardless.
	ErrPersistence = errors.New("history persistence failed")

	// ErrAnalysisNotFound - no saved analysis with the requested id.
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// Truncation is the non-fatal advisory raised when an input set exceeds the
// 50-text cap. Processing continues with the truncated set.
type Truncation struct {
	Original int
	Kept     int
}

func (t *Truncation) Message() string {
	return fmt.Sprintf("input contains %d texts; only the first %d will be analyzed", t.Original, t.Kept)
}
