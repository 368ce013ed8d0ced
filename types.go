package matchengine

import (
	"context"
	"fmt"

	"github.com/talentgrid/matchengine/internal/domain"
	dombatch "github.com/talentgrid/matchengine/internal/domain/batch"
	"github.com/talentgrid/matchengine/internal/domain/match"
	"github.com/talentgrid/matchengine/internal/domain/metadata"
	"github.com/talentgrid/matchengine/internal/domain/record"
)

// Metadata is an untyped metadata map. Supported value types: string,
// bool, float64, int, int64 and []string (unordered set of strings).
type Metadata map[string]any

// Filter is a conjunction of exact-equality constraints on metadata
// fields. Same value types as Metadata apply. An empty (or nil) filter
// matches every record.
type Filter map[string]any

// Record is a profile vector with its metadata.
type Record struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// MatchResult is a single ranked hit.
type MatchResult struct {
	ID       string
	Score    float64
	Metadata Metadata
}

// FetchResult is the outcome of one id in a Fetch call.
type FetchResult struct {
	ID     string
	Found  bool
	Record Record
}

// BatchResult is the outcome of one item in a batch operation.
type BatchResult struct {
	ID  string
	OK  bool
	Err error
}

// Stats describes the current index state.
type Stats struct {
	Count       int
	Dimension   int
	MemoryBytes int64
}

// ProfileItem is a text profile to vectorize and index in one batch step.
type ProfileItem struct {
	ID       string
	Text     string
	Metadata Metadata
}

// QueryRequest is one query in a batch query call.
type QueryRequest struct {
	Vector []float32
	Filter Filter
}

// QueryOutcome holds the results or the error of one batch query.
type QueryOutcome struct {
	Results []MatchResult
	Err     error
}

// Embedder converts text into a vector embedding.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult holds an embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// toValue converts a public metadata value into the internal typed variant.
func toValue(v any) (metadata.Value, error) {
	switch t := v.(type) {
	case string:
		return metadata.String(t), nil
	case bool:
		return metadata.Bool(t), nil
	case float64:
		return metadata.Number(t), nil
	case int:
		return metadata.Number(float64(t)), nil
	case int64:
		return metadata.Number(float64(t)), nil
	case []string:
		return metadata.StringSet(t...), nil
	default:
		return metadata.Value{}, fmt.Errorf("unsupported metadata value type %T", v)
	}
}

func toDomainMetadata(m Metadata) (metadata.Metadata, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(metadata.Metadata, len(m))
	for k, v := range m {
		val, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("metadata key %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

func toDomainFilter(f Filter) (metadata.Filter, error) {
	if len(f) == 0 {
		return metadata.Filter{}, nil
	}
	conds := make(map[string]metadata.Value, len(f))
	for k, v := range f {
		val, err := toValue(v)
		if err != nil {
			return metadata.Filter{}, fmt.Errorf("%w: key %q: %v", domain.ErrInvalidFilter, k, err)
		}
		conds[k] = val
	}
	flt, err := metadata.NewFilter(conds)
	if err != nil {
		return metadata.Filter{}, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}
	return flt, nil
}

func fromDomainMetadata(m metadata.Metadata) Metadata {
	if len(m) == 0 {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		switch v.Kind() {
		case metadata.KindString:
			s, _ := v.AsString()
			out[k] = s
		case metadata.KindNumber:
			n, _ := v.AsNumber()
			out[k] = n
		case metadata.KindBool:
			b, _ := v.AsBool()
			out[k] = b
		case metadata.KindStringSet:
			set, _ := v.AsStringSet()
			out[k] = set
		}
	}
	return out
}

func toDomainRecord(r Record) (record.Record, error) {
	meta, err := toDomainMetadata(r.Metadata)
	if err != nil {
		return record.Record{}, err
	}
	return record.New(r.ID, r.Vector, meta)
}

func fromDomainRecord(r record.Record) Record {
	return Record{
		ID:       r.ID(),
		Vector:   r.Vector(),
		Metadata: fromDomainMetadata(r.Metadata()),
	}
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{
			ID:  r.ID(),
			OK:  r.Status() == dombatch.StatusOK,
			Err: r.Err(),
		}
	}
	return out
}

func fromMatchResults(results []match.Result) []MatchResult {
	out := make([]MatchResult, len(results))
	for i := range results {
		r := &results[i]
		out[i] = MatchResult{
			ID:       r.ID(),
			Score:    r.Score(),
			Metadata: fromDomainMetadata(r.Metadata()),
		}
	}
	return out
}
