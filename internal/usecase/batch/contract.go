package batch

import (
	"context"

	"github.com/talentgrid/matchengine/internal/domain"
	"github.com/talentgrid/matchengine/internal/domain/match"
	"github.com/talentgrid/matchengine/internal/domain/metadata"
	"github.com/talentgrid/matchengine/internal/domain/record"
)

// Upserter writes single records into the index.
type Upserter interface {
	Upsert(rec record.Record) error
}

// Deleter removes records from the index. Missing ids are ignored.
type Deleter interface {
	Delete(ids ...string) (int, error)
}

// Querier executes a single ranked query.
type Querier interface {
	Query(ctx context.Context, vector []float32, topK int, filter metadata.Filter) ([]match.Result, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
