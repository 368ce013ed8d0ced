// Package query implements the ranking engine: exhaustive cosine scoring of
// an index snapshot with metadata filtering and deterministic top-K selection.
package query

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/talentgrid/matchengine/internal/domain"
	"github.com/talentgrid/matchengine/internal/domain/match"
	"github.com/talentgrid/matchengine/internal/domain/metadata"
	"github.com/talentgrid/matchengine/internal/metrics"
)

// cancelCheckInterval is how many records are scanned between context checks.
const cancelCheckInterval = 1024

// Service ranks stored records against a query vector.
type Service struct {
	idx    Snapshotter
	logger *zap.Logger
}

// New creates a query service.
func New(idx Snapshotter, logger *zap.Logger) *Service {
	return &Service{idx: idx, logger: logger}
}

// Query scores every record in the current snapshot that passes the filter
// and returns the topK best hits, ordered by descending score with ties
// broken by ascending id.
//
// topK == 0 is a valid request that yields an empty result; a negative topK
// is an error. If fewer than topK records pass the filter, all of them are
// returned. A cancelled context aborts the scan and returns ErrCancelled,
// never a partial list.
func (s *Service) Query(
	ctx context.Context, vector []float32, topK int, filter metadata.Filter,
) ([]match.Result, error) {
	if topK < 0 {
		return nil, fmt.Errorf("top-k must not be negative, got %d: %w", topK, domain.ErrInvalidTopK)
	}

	snap, err := s.idx.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("index snapshot: %w", err)
	}

	if dim := snap.Dimension(); dim > 0 && len(vector) != dim {
		return nil, domain.NewDimensionError(len(vector), dim)
	}

	if topK == 0 {
		return []match.Result{}, nil
	}

	start := time.Now()

	// Honor cancellation even when the snapshot yields nothing to scan.
	if ctxErr := ctx.Err(); ctxErr != nil {
		metrics.QueryDuration.WithLabelValues("cancelled").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %w", domain.ErrCancelled, ctxErr)
	}

	heap := newTopKHeap(topK)
	queryNorm := sumOfSquares(vector)
	scanned := 0

	for rec := range snap.All() {
		scanned++
		if scanned%cancelCheckInterval == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				metrics.QueryDuration.WithLabelValues("cancelled").Observe(time.Since(start).Seconds())
				return nil, fmt.Errorf("%w: %w", domain.ErrCancelled, ctxErr)
			}
		}

		if !filter.IsEmpty() && !filter.Matches(rec.Metadata()) {
			continue
		}

		score := cosine(vector, queryNorm, rec.Vector())
		heap.offer(match.New(rec.ID(), score, rec.Metadata().Clone()))
	}

	results := heap.drain()

	duration := time.Since(start)
	metrics.QueryDuration.WithLabelValues("success").Observe(duration.Seconds())
	metrics.QueryRecordsScanned.Observe(float64(scanned))

	s.logger.Debug("Query completed",
		zap.Int("top_k", topK),
		zap.Int("scanned", scanned),
		zap.Int("results", len(results)),
		zap.Duration("duration", duration),
	)

	return results, nil
}

// cosine computes dot(q, v) / (‖q‖·‖v‖) with float64 accumulation.
// A zero-norm vector on either side yields exactly 0, never NaN.
func cosine(q []float32, qNorm float64, v []float32) float64 {
	if qNorm == 0 {
		return 0
	}
	var dot, vNorm float64
	for i, qi := range q {
		vi := float64(v[i])
		dot += float64(qi) * vi
		vNorm += vi * vi
	}
	if vNorm == 0 {
		return 0
	}
	return dot / (math.Sqrt(qNorm) * math.Sqrt(vNorm))
}

func sumOfSquares(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return sum
}
