package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/talentgrid/matchengine/internal/db"
	"github.com/talentgrid/matchengine/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	callCount int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.callCount++
	return m.result, m.err
}

// mockKVStore implements the consumer store interface for tests.
type mockKVStore struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) Set(_ context.Context, key string, value []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func TestEmbed_MissCallsInnerAndCaches(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3},
		TotalTokens: 5,
	}}
	store := newMockKVStore()
	emb := New(inner, store, nil, zap.NewNop())

	result, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalTokens != 5 {
		t.Errorf("miss should carry inner token usage, got %d", result.TotalTokens)
	}
	if inner.callCount != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.callCount)
	}
	if len(store.data) != 1 {
		t.Errorf("expected 1 cached entry, got %d", len(store.data))
	}
	for key := range store.data {
		if !strings.HasPrefix(key, "matchengine:emb_cache:") {
			t.Errorf("unexpected cache key %q", key)
		}
	}
}

func TestEmbed_HitSkipsInner(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3},
		TotalTokens: 5,
	}}
	store := newMockKVStore()
	emb := New(inner, store, nil, zap.NewNop())

	if _, err := emb.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("warm-up: %v", err)
	}

	result, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.callCount != 1 {
		t.Errorf("hit should not call inner again, got %d calls", inner.callCount)
	}
	if result.TotalTokens != 0 {
		t.Errorf("hit should report zero tokens, got %d", result.TotalTokens)
	}
	want := []float32{0.1, 0.2, 0.3}
	for i, v := range result.Embedding {
		if v != want[i] {
			t.Fatalf("embedding roundtrip = %v, want %v", result.Embedding, want)
		}
	}
}

func TestEmbed_DifferentTextsDifferentKeys(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	store := newMockKVStore()
	emb := New(inner, store, nil, zap.NewNop())

	_, _ = emb.Embed(context.Background(), "hello")
	_, _ = emb.Embed(context.Background(), "world")

	if len(store.data) != 2 {
		t.Errorf("expected 2 cached entries, got %d", len(store.data))
	}
	if inner.callCount != 2 {
		t.Errorf("expected 2 inner calls, got %d", inner.callCount)
	}
}

func TestEmbed_StoreGetFailureDegradesToMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	store := newMockKVStore()
	store.getErr = errors.New("store down")
	emb := New(inner, store, nil, zap.NewNop())

	result, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("store failure must not fail the embed: %v", err)
	}
	if len(result.Embedding) != 1 {
		t.Errorf("embedding = %v", result.Embedding)
	}
	if inner.callCount != 1 {
		t.Errorf("expected inner call on degraded miss, got %d", inner.callCount)
	}
}

func TestEmbed_StoreSetFailureIgnored(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	store := newMockKVStore()
	store.setErr = errors.New("store down")
	emb := New(inner, store, nil, zap.NewNop())

	if _, err := emb.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("set failure must not fail the embed: %v", err)
	}
}

func TestEmbed_CorruptCacheEntryDegradesToMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	store := newMockKVStore()
	emb := New(inner, store, nil, zap.NewNop())

	// Place a value whose length is not a multiple of 4 under the key.
	_, _ = emb.Embed(context.Background(), "hello")
	for key := range store.data {
		store.data[key] = []byte{1, 2, 3}
	}

	result, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("corrupt entry must not fail the embed: %v", err)
	}
	if inner.callCount != 2 {
		t.Errorf("expected re-embed on corrupt entry, got %d calls", inner.callCount)
	}
	if len(result.Embedding) != 1 {
		t.Errorf("embedding = %v", result.Embedding)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &mockEmbedder{err: innerErr}
	emb := New(inner, newMockKVStore(), nil, zap.NewNop())

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestVectorCodec_Roundtrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	out, err := bytesToVector(vectorToCacheBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}
