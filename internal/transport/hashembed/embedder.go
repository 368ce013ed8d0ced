// Package hashembed provides a deterministic, dependency-free embedding
// provider for development and tests. It folds token hashes into a
// fixed-dimension bag-of-words vector and L2-normalizes it, so identical
// texts always embed identically and word overlap yields positive cosine
// similarity. It is not a semantic model and must not ship to production.
package hashembed

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/talentgrid/matchengine/internal/domain"
)

// Compile-time checks: Embedder implements the provider contracts.
var (
	_ domain.Embedder      = (*Embedder)(nil)
	_ domain.BatchEmbedder = (*Embedder)(nil)
)

// Embedder is the deterministic hashing provider.
type Embedder struct {
	dimensions int
}

// New creates a hashing provider with the given output dimension.
func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = domain.DefaultVectorConfig().Dimensions
	}
	return &Embedder{dimensions: dimensions}
}

// Dimensions returns the output vector length.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Embed implements domain.Embedder. Token usage is reported as zero: no
// provider tokens are consumed locally.
func (e *Embedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: e.vectorize(text)}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	embeddings := make([][]float32, len(texts))
	for i, t := range texts {
		embeddings[i] = e.vectorize(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
}

func (e *Embedder) vectorize(text string) []float32 {
	vec := make([]float32, e.dimensions)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[int(h.Sum32())%e.dimensions]++
	}
	normalize(vec)
	return vec
}

// tokenize lowercases and splits on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		default:
			return true
		}
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range vec {
		vec[i] *= inv
	}
}
