// Package batch implements the batch coordinator: multi-item upserts and
// multi-query fan-out with per-item isolation, so one item's failure never
// aborts or rolls back its siblings.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talentgrid/matchengine/internal/domain"
	dombatch "github.com/talentgrid/matchengine/internal/domain/batch"
	"github.com/talentgrid/matchengine/internal/domain/match"
	"github.com/talentgrid/matchengine/internal/domain/metadata"
	"github.com/talentgrid/matchengine/internal/domain/record"
	"github.com/talentgrid/matchengine/internal/metrics"
)

// MaxBatchSize is the default maximum number of items per batch request.
const MaxBatchSize = 100

// Service coordinates batch operations over the index and query engine.
type Service struct {
	idx          Upserter
	del          Deleter
	queries      Querier
	embed        Embedder
	maxBatchSize int
	logger       *zap.Logger
}

// New creates a batch coordinator.
func New(idx Upserter, del Deleter, queries Querier, embed Embedder, logger *zap.Logger) *Service {
	return &Service{
		idx: idx, del: del, queries: queries, embed: embed,
		maxBatchSize: MaxBatchSize, logger: logger,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert applies records independently and reports a per-record outcome.
// A record failing validation leaves sibling records' writes intact; the
// call is never an all-or-nothing transaction. A cancelled context marks
// the remaining, unapplied records as cancelled.
func (s *Service) Upsert(ctx context.Context, records []record.Record) []dombatch.Result {
	results := make([]dombatch.Result, len(records))

	if len(records) > s.maxBatchSize {
		err := fmt.Errorf("batch size %d exceeds %d: %w", len(records), s.maxBatchSize, domain.ErrBatchTooLarge)
		for i, rec := range records {
			results[i] = dombatch.NewError(rec.ID(), err)
		}
		return results
	}

	for i, rec := range records {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err := fmt.Errorf("%w: %w", domain.ErrCancelled, ctxErr)
			for j := i; j < len(records); j++ {
				results[j] = dombatch.NewError(records[j].ID(), err)
			}
			break
		}

		if err := s.idx.Upsert(rec); err != nil {
			results[i] = dombatch.NewError(rec.ID(), fmt.Errorf("upsert: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(rec.ID())
	}

	s.recordOutcomes("upsert", results)
	return results
}

// Delete removes ids independently and reports a per-id outcome. Missing
// ids count as successes (deletion is idempotent).
func (s *Service) Delete(ctx context.Context, ids []string) []dombatch.Result {
	results := make([]dombatch.Result, len(ids))

	if len(ids) > s.maxBatchSize {
		err := fmt.Errorf("batch size %d exceeds %d: %w", len(ids), s.maxBatchSize, domain.ErrBatchTooLarge)
		for i, id := range ids {
			results[i] = dombatch.NewError(id, err)
		}
		return results
	}

	for i, id := range ids {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err := fmt.Errorf("%w: %w", domain.ErrCancelled, ctxErr)
			for j := i; j < len(ids); j++ {
				results[j] = dombatch.NewError(ids[j], err)
			}
			break
		}

		if _, err := s.del.Delete(id); err != nil {
			results[i] = dombatch.NewError(id, fmt.Errorf("delete: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(id)
	}

	s.recordOutcomes("delete", results)
	return results
}

// ProfileItem is one text profile in a batch ingest call.
type ProfileItem struct {
	ID       string
	Text     string
	Metadata metadata.Metadata
}

// UpsertProfiles embeds and stores profiles one by one with per-item
// isolation. Quota and rate-limit errors from the provider cascade to the
// remaining items, since retrying them in the same call cannot succeed;
// any other failure stays confined to its own item.
func (s *Service) UpsertProfiles(ctx context.Context, items []ProfileItem) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		err := fmt.Errorf("batch size %d exceeds %d: %w", len(items), s.maxBatchSize, domain.ErrBatchTooLarge)
		for i, item := range items {
			results[i] = dombatch.NewError(item.ID, err)
		}
		return results
	}

	for i, item := range items {
		rec, cascade, err := s.vectorizeProfile(ctx, item)
		if err != nil {
			results[i] = dombatch.NewError(item.ID, err)
			if cascade {
				for j := i + 1; j < len(items); j++ {
					results[j] = dombatch.NewError(items[j].ID, err)
				}
				break
			}
			continue
		}

		if err := s.idx.Upsert(rec); err != nil {
			results[i] = dombatch.NewError(item.ID, fmt.Errorf("upsert: %w", err))
			continue
		}
		results[i] = dombatch.NewOK(item.ID)
	}

	s.recordOutcomes("upsert_profile", results)
	return results
}

// vectorizeProfile embeds one profile text and builds its record.
// cascade=true means a quota or rate-limit error: skip remaining items.
func (s *Service) vectorizeProfile(
	ctx context.Context, item ProfileItem,
) (record.Record, bool, error) {
	res, err := s.embed.Embed(ctx, item.Text)
	if err != nil {
		cascade := errors.Is(err, domain.ErrEmbeddingQuotaExceeded) ||
			errors.Is(err, domain.ErrRateLimited)
		return record.Record{}, cascade, fmt.Errorf("vectorize: %w", err)
	}

	rec, err := record.New(item.ID, res.Embedding, item.Metadata)
	if err != nil {
		return record.Record{}, false, fmt.Errorf("build record: %w", err)
	}
	return rec, false, nil
}

// Request is one query in a batch query call.
type Request struct {
	Vector []float32
	Filter metadata.Filter
}

// Outcome is the per-query result of a batch query call, positionally
// aligned with the input requests.
type Outcome struct {
	Results []match.Result
	Err     error
}

// Query executes requests concurrently, each against its own snapshot,
// sharing one topK cap. Per-item isolation holds: a request's error, a
// cancellation included, lands in its own outcome only.
func (s *Service) Query(ctx context.Context, requests []Request, topK int) []Outcome {
	outcomes := make([]Outcome, len(requests))

	if len(requests) > s.maxBatchSize {
		err := fmt.Errorf("batch size %d exceeds %d: %w", len(requests), s.maxBatchSize, domain.ErrBatchTooLarge)
		for i := range outcomes {
			outcomes[i].Err = err
		}
		return outcomes
	}

	g := errgroup.Group{}
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, req := range requests {
		g.Go(func() error {
			results, err := s.queries.Query(ctx, req.Vector, topK, req.Filter)
			if err != nil {
				outcomes[i] = Outcome{Err: fmt.Errorf("query [%d]: %w", i, err)}
				return nil
			}
			outcomes[i] = Outcome{Results: results}
			return nil
		})
	}

	// Workers never return errors; Wait is for completion only.
	_ = g.Wait()

	for _, o := range outcomes {
		status := "ok"
		if o.Err != nil {
			status = "error"
		}
		metrics.BatchItemsTotal.WithLabelValues("query", status).Inc()
	}
	return outcomes
}

func (s *Service) recordOutcomes(operation string, results []dombatch.Result) {
	failed := 0
	for _, r := range results {
		metrics.BatchItemsTotal.WithLabelValues(operation, string(r.Status())).Inc()
		if r.Status() == dombatch.StatusError {
			failed++
		}
	}
	if failed > 0 {
		s.logger.Warn("Batch completed with failures",
			zap.String("operation", operation),
			zap.Int("total", len(results)),
			zap.Int("failed", failed),
		)
	}
}
