// Package index implements the in-memory vector index: exact storage and
// direct-identifier retrieval of records. Ranking lives in usecase/query.
//
// Concurrency follows a copy-on-write pattern: the record table is an
// immutable state behind an atomic pointer. Readers (Fetch, Stats, Snapshot)
// load the pointer and never block; writers (Upsert, Delete, Clear) serialize
// on a mutex, clone the state, and publish the clone. A reader therefore
// observes either the pre- or post-write table, never a partial write.
package index

import (
	"iter"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/talentgrid/matchengine/internal/domain"
	"github.com/talentgrid/matchengine/internal/domain/record"
)

const bytesPerComponent = 4 // float32

// state is the immutable record table published to readers.
type state struct {
	dimension int // 0 until fixed by construction or first upsert
	records   map[string]record.Record
}

// Index is the exact in-memory vector index.
type Index struct {
	writeMu sync.Mutex // serializes writers only
	state   atomic.Pointer[state]
	closed  atomic.Bool
}

// New creates an empty index. A dimension of 0 leaves the dimension open
// until the first successful upsert fixes it; a positive dimension fixes
// it at construction.
func New(dimension int) *Index {
	idx := &Index{}
	idx.state.Store(&state{dimension: dimension, records: map[string]record.Record{}})
	return idx
}

// Upsert inserts or fully replaces the record for its identifier. The first
// upsert into a dimensionless index fixes the dimension; any later vector of
// a different length fails with a dimension mismatch and leaves stored state
// untouched.
func (idx *Index) Upsert(rec record.Record) error {
	if idx.closed.Load() {
		return domain.ErrEngineClosed
	}

	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	cur := idx.state.Load()
	dim := cur.dimension
	if dim == 0 {
		dim = rec.Dimension()
	}
	if rec.Dimension() != dim {
		return domain.NewDimensionError(rec.Dimension(), dim)
	}

	next := &state{dimension: dim, records: cloneRecords(cur.records)}
	next.records[rec.ID()] = rec
	idx.state.Store(next)
	return nil
}

// Delete removes the given identifiers and returns how many were present.
// Missing identifiers are ignored; deletion is idempotent, never an error.
func (idx *Index) Delete(ids ...string) (int, error) {
	if idx.closed.Load() {
		return 0, domain.ErrEngineClosed
	}

	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	cur := idx.state.Load()
	removed := 0
	for _, id := range ids {
		if _, ok := cur.records[id]; ok {
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	next := &state{dimension: cur.dimension, records: cloneRecords(cur.records)}
	for _, id := range ids {
		delete(next.records, id)
	}
	idx.state.Store(next)
	return removed, nil
}

// Clear removes all records. The dimension stays fixed; only constructing a
// fresh index resets it.
func (idx *Index) Clear() error {
	if idx.closed.Load() {
		return domain.ErrEngineClosed
	}

	idx.writeMu.Lock()
	defer idx.writeMu.Unlock()

	cur := idx.state.Load()
	idx.state.Store(&state{dimension: cur.dimension, records: map[string]record.Record{}})
	return nil
}

// FetchResult is the per-identifier outcome of a Fetch: either the stored
// record or an explicit miss. A miss is a normal outcome, not an error.
type FetchResult struct {
	ID     string
	Record record.Record
	Found  bool
}

// Fetch resolves identifiers against the current snapshot. The result list
// is positionally aligned with ids, so callers can batch-resolve mixed
// hit/miss sets. Returned records are deep copies.
func (idx *Index) Fetch(ids []string) ([]FetchResult, error) {
	if idx.closed.Load() {
		return nil, domain.ErrEngineClosed
	}

	cur := idx.state.Load()
	out := make([]FetchResult, len(ids))
	for i, id := range ids {
		rec, ok := cur.records[id]
		out[i] = FetchResult{ID: id, Found: ok}
		if ok {
			out[i].Record = record.Reconstruct(
				rec.ID(), slices.Clone(rec.Vector()), rec.Metadata().Clone(),
			)
		}
	}
	return out, nil
}

// Stats describes index occupancy for capacity monitoring.
type Stats struct {
	Count       int
	Dimension   int
	MemoryBytes int64
}

// Stats returns record count, configured dimension, and the approximate
// vector memory footprint. Purely observational.
func (idx *Index) Stats() (Stats, error) {
	if idx.closed.Load() {
		return Stats{}, domain.ErrEngineClosed
	}

	cur := idx.state.Load()
	return Stats{
		Count:       len(cur.records),
		Dimension:   cur.dimension,
		MemoryBytes: int64(len(cur.records)) * int64(cur.dimension) * bytesPerComponent,
	}, nil
}

// Snapshot is a point-in-time, immutable view of the index used by query
// scans. It stays valid after later writes; it just no longer reflects them.
type Snapshot struct {
	s *state
}

// Snapshot returns the current point-in-time view.
func (idx *Index) Snapshot() (Snapshot, error) {
	if idx.closed.Load() {
		return Snapshot{}, domain.ErrEngineClosed
	}
	return Snapshot{s: idx.state.Load()}, nil
}

// Dimension returns the snapshot's fixed dimension (0 if not yet fixed).
func (s Snapshot) Dimension() int { return s.s.dimension }

// Count returns the number of records in the snapshot.
func (s Snapshot) Count() int { return len(s.s.records) }

// All iterates the snapshot's records in unspecified order. Callers must
// not mutate yielded records.
func (s Snapshot) All() iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		for _, rec := range s.s.records {
			if !yield(rec) {
				return
			}
		}
	}
}

// Close tears the index down. Every subsequent operation fails with
// ErrEngineClosed. Close is idempotent.
func (idx *Index) Close() {
	idx.closed.Store(true)
}

func cloneRecords(m map[string]record.Record) map[string]record.Record {
	c := make(map[string]record.Record, len(m)+1)
	for k, v := range m {
		c[k] = v
	}
	return c
}
