package matchengine

import "github.com/talentgrid/matchengine/internal/domain"

// Sentinel errors returned by engine operations. Match with errors.Is.
var (
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrInvalidFilter          = domain.ErrInvalidFilter
	ErrInvalidTopK            = domain.ErrInvalidTopK
	ErrEmbeddingUnavailable   = domain.ErrEmbeddingUnavailable
	ErrCancelled              = domain.ErrCancelled
	ErrEngineClosed           = domain.ErrEngineClosed
	ErrBatchTooLarge          = domain.ErrBatchTooLarge
	ErrRateLimited            = domain.ErrRateLimited
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
)
