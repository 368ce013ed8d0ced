package matchengine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/talentgrid/matchengine/internal/db"
	dbRedis "github.com/talentgrid/matchengine/internal/db/redis"
	"github.com/talentgrid/matchengine/internal/domain"
	"github.com/talentgrid/matchengine/internal/domain/record"
	"github.com/talentgrid/matchengine/internal/index"
	"github.com/talentgrid/matchengine/internal/metrics"
	budgetrepo "github.com/talentgrid/matchengine/internal/repository/budget"
	"github.com/talentgrid/matchengine/internal/repository/embcache"
	"github.com/talentgrid/matchengine/internal/transport/hashembed"
	"github.com/talentgrid/matchengine/internal/transport/openai"
	batchuc "github.com/talentgrid/matchengine/internal/usecase/batch"
	embeddinguc "github.com/talentgrid/matchengine/internal/usecase/embedding"
	matchinguc "github.com/talentgrid/matchengine/internal/usecase/matching"
	queryuc "github.com/talentgrid/matchengine/internal/usecase/query"
)

const (
	defaultReadinessTimeout = 10 * time.Second

	budgetDailyTTL   = 48 * time.Hour
	budgetMonthlyTTL = 35 * 24 * time.Hour
)

// Engine is the matchengine entry point. It owns the in-memory vector
// index and the services around it. Safe for concurrent use.
type Engine struct {
	idx      *index.Index
	querySvc *queryuc.Service
	batchSvc *batchuc.Service
	matchSvc *matchinguc.Service
	store    db.Store
	logger   *zap.Logger
}

// New creates an Engine. Without options it holds an index whose
// dimension is inferred from the first upsert, and a deterministic hash
// embedder for text operations.
func New(opts ...Option) (*Engine, error) {
	cfg := &engineConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.dimension < 0 {
		return nil, fmt.Errorf("matchengine: negative dimension %d", cfg.dimension)
	}

	if cfg.enableMetric {
		metrics.RegisterEngineMetrics()
		metrics.RegisterEmbeddingMetrics()
	}

	var store db.Store
	if cfg.enableCache {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    []string{cfg.cacheAddr},
			Password: cfg.cachePass,
		})
		if err != nil {
			return nil, fmt.Errorf("matchengine: create cache store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("matchengine: cache not ready: %w", err)
		}
		store = s
	}

	emb := buildEmbedder(cfg, store, logger)

	idx := index.New(cfg.dimension)
	querySvc := queryuc.New(idx, logger)
	batchSvc := batchuc.New(idx, idx, querySvc, emb, logger)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	matchSvc := matchinguc.New(querySvc, idx, emb, logger)

	return &Engine{
		idx:      idx,
		querySvc: querySvc,
		batchSvc: batchSvc,
		matchSvc: matchSvc,
		store:    store,
		logger:   logger,
	}, nil
}

// buildEmbedder assembles the embedding pipeline: base provider, then
// instruction prefix, then cache, then budget and instrumentation.
func buildEmbedder(cfg *engineConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	var (
		emb      domain.Embedder
		provider string
		model    string
	)
	switch {
	case cfg.embedder != nil:
		emb = &embedderAdapter{inner: cfg.embedder}
		provider, model = "custom", "custom"
	case cfg.openAI != nil:
		provider = cfg.openAI.Provider
		if provider == "" {
			provider = "openai"
		}
		model = cfg.openAI.Model
		if model == "" {
			model = domain.DefaultVectorConfig().Model
		}
		emb = openai.NewEmbedder(&openai.Config{
			APIKey:     cfg.openAI.APIKey,
			BaseURL:    cfg.openAI.BaseURL,
			Model:      model,
			Dimensions: cfg.openAI.Dimensions,
			Provider:   provider,
			Logger:     logger,
		})
	default:
		emb = hashembed.New(cfg.dimension)
		provider, model = "hash", "fnv32a"
	}

	if cfg.instruction != "" {
		emb = domain.NewInstructionEmbedder(emb, cfg.instruction)
	}

	if store != nil {
		emb = embcache.New(emb, store, metrics.EmbeddingCacheTotal, logger)
	}

	var budget embeddinguc.BudgetChecker
	if cfg.budget != nil {
		action := embeddinguc.BudgetActionWarn
		if cfg.budget.Reject {
			action = embeddinguc.BudgetActionReject
		}
		tracker := embeddinguc.NewBudgetTracker(
			provider, cfg.budget.DailyTokenLimit, cfg.budget.MonthlyTokenLimit,
			action, logger,
		)
		if store != nil {
			tracker = tracker.WithStore(
				context.Background(),
				budgetrepo.New(store, budgetDailyTTL, budgetMonthlyTTL),
			)
		}
		budget = tracker
	}

	return embeddinguc.NewInstrumentedEmbedder(emb, provider, model, budget, logger)
}

// Upsert creates or fully replaces the record with the given id.
func (e *Engine) Upsert(rec Record) error {
	r, err := toDomainRecord(rec)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	if err := e.idx.Upsert(r); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	e.syncIndexGauges()
	return nil
}

// Delete removes records by id and returns how many existed. Missing
// ids are ignored.
func (e *Engine) Delete(ids ...string) (int, error) {
	n, err := e.idx.Delete(ids...)
	if err != nil {
		return 0, fmt.Errorf("delete: %w", err)
	}
	e.syncIndexGauges()
	return n, nil
}

// Fetch retrieves records by id, positionally aligned with ids.
func (e *Engine) Fetch(ids []string) ([]FetchResult, error) {
	found, err := e.idx.Fetch(ids)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	out := make([]FetchResult, len(found))
	for i, f := range found {
		out[i] = FetchResult{ID: f.ID, Found: f.Found}
		if f.Found {
			out[i].Record = fromDomainRecord(f.Record)
		}
	}
	return out, nil
}

// Stats returns the record count, dimension and approximate vector
// memory footprint.
func (e *Engine) Stats() (Stats, error) {
	st, err := e.idx.Stats()
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return Stats{Count: st.Count, Dimension: st.Dimension, MemoryBytes: st.MemoryBytes}, nil
}

// Clear removes every record. The index dimension stays fixed.
func (e *Engine) Clear() error {
	if err := e.idx.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	e.syncIndexGauges()
	return nil
}

// Query returns the topK records most similar to vector, best first.
// A nil filter matches everything.
func (e *Engine) Query(
	ctx context.Context, vector []float32, topK int, filter Filter,
) ([]MatchResult, error) {
	flt, err := toDomainFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	results, err := e.querySvc.Query(ctx, vector, topK, flt)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return fromMatchResults(results), nil
}

// BatchUpsert stores records with per-item isolation. The returned
// slice is positionally aligned with records.
func (e *Engine) BatchUpsert(ctx context.Context, records []Record) ([]BatchResult, error) {
	recs := make([]record.Record, len(records))
	for i, r := range records {
		var err error
		recs[i], err = toDomainRecord(r)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	results := fromBatchResults(e.batchSvc.Upsert(ctx, recs))
	e.syncIndexGauges()
	return results, nil
}

// BatchDelete removes records by id with per-item isolation.
func (e *Engine) BatchDelete(ctx context.Context, ids []string) []BatchResult {
	results := fromBatchResults(e.batchSvc.Delete(ctx, ids))
	e.syncIndexGauges()
	return results
}

// BatchUpsertProfiles embeds profile texts and stores the resulting
// vectors with per-item isolation.
func (e *Engine) BatchUpsertProfiles(
	ctx context.Context, items []ProfileItem,
) ([]BatchResult, error) {
	ucItems := make([]batchuc.ProfileItem, len(items))
	for i, item := range items {
		meta, err := toDomainMetadata(item.Metadata)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		ucItems[i] = batchuc.ProfileItem{ID: item.ID, Text: item.Text, Metadata: meta}
	}
	results := fromBatchResults(e.batchSvc.UpsertProfiles(ctx, ucItems))
	e.syncIndexGauges()
	return results, nil
}

// BatchQuery executes queries concurrently with one shared topK cap.
// Outcomes are positionally aligned with requests.
func (e *Engine) BatchQuery(
	ctx context.Context, requests []QueryRequest, topK int,
) ([]QueryOutcome, error) {
	reqs := make([]batchuc.Request, len(requests))
	for i, r := range requests {
		flt, err := toDomainFilter(r.Filter)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		reqs[i] = batchuc.Request{Vector: r.Vector, Filter: flt}
	}
	outcomes := e.batchSvc.Query(ctx, reqs, topK)
	out := make([]QueryOutcome, len(outcomes))
	for i, o := range outcomes {
		out[i] = QueryOutcome{Err: o.Err}
		if o.Err == nil {
			out[i].Results = fromMatchResults(o.Results)
		}
	}
	return out, nil
}

// UpsertProfile embeds a profile text and stores it under the given id.
func (e *Engine) UpsertProfile(
	ctx context.Context, id, profileText string, meta Metadata,
) error {
	m, err := toDomainMetadata(meta)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	if err := e.matchSvc.UpsertProfile(ctx, id, profileText, m); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	e.syncIndexGauges()
	return nil
}

// FindSimilar embeds the given text and returns the closest profiles.
func (e *Engine) FindSimilar(
	ctx context.Context, profileText string, filter Filter, limit int,
) ([]MatchResult, error) {
	flt, err := toDomainFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("find similar: %w", err)
	}
	results, err := e.matchSvc.FindSimilar(ctx, profileText, flt, limit)
	if err != nil {
		return nil, fmt.Errorf("find similar: %w", err)
	}
	return fromMatchResults(results), nil
}

// MatchToRole ranks indexed profiles against a role description and an
// optional list of desired traits.
func (e *Engine) MatchToRole(
	ctx context.Context, roleDescription string, traits []string, limit int,
) ([]MatchResult, error) {
	results, err := e.matchSvc.MatchToRole(ctx, roleDescription, traits, limit)
	if err != nil {
		return nil, fmt.Errorf("match to role: %w", err)
	}
	return fromMatchResults(results), nil
}

// Close releases the index and any cache connection. Further operations
// return ErrEngineClosed. Idempotent.
func (e *Engine) Close() {
	e.idx.Close()
	if e.store != nil {
		e.store.Close()
	}
}

func (e *Engine) syncIndexGauges() {
	st, err := e.idx.Stats()
	if err != nil {
		return
	}
	metrics.IndexRecords.Set(float64(st.Count))
	metrics.IndexMemoryBytes.Set(float64(st.MemoryBytes))
}

// embedderAdapter wraps the public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
