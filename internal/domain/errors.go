package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch signals a vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidFilter signals a malformed metadata filter.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidTopK signals a negative result cap.
	ErrInvalidTopK = errors.New("invalid top-k")
	// ErrEmbeddingUnavailable signals an embedding provider failure.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrCancelled signals a caller-aborted operation.
	ErrCancelled = errors.New("operation cancelled")
	// ErrEngineClosed signals an operation on a torn-down engine.
	ErrEngineClosed = errors.New("engine closed")

	// ErrBatchTooLarge signals a batch exceeding the configured size limit.
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrRateLimited signals a rate limit hit at the embedding provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
)

// DimensionError wraps ErrDimensionMismatch with the offending and expected lengths.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: got %d, want %d", ErrDimensionMismatch.Error(), e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionError creates a dimension mismatch error.
func NewDimensionError(got, want int) error {
	return &DimensionError{Got: got, Want: want}
}
