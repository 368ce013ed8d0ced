// Package match defines the ranked result value object returned by queries.
package match

import "github.com/talentgrid/matchengine/internal/domain/metadata"

// Result is a single ranked hit. Score is cosine similarity in [-1, 1];
// higher is more similar. Results are never mutated once produced.
type Result struct {
	id    string
	score float64
	meta  metadata.Metadata
}

// New creates a ranked result.
func New(id string, score float64, meta metadata.Metadata) Result {
	return Result{id: id, score: score, meta: meta}
}

// ID returns the record identifier.
func (r *Result) ID() string { return r.id }

// Score returns the similarity score.
func (r *Result) Score() float64 { return r.score }

// Metadata returns the record metadata, as stored at upsert time.
func (r *Result) Metadata() metadata.Metadata { return r.meta }
