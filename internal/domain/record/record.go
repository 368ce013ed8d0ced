// Package record defines the vector record aggregate, the unit of storage
// in the matching index.
package record

import (
	"fmt"
	"slices"

	"github.com/talentgrid/matchengine/internal/domain/metadata"
)

// MaxIDLength is the maximum record identifier length.
const MaxIDLength = 256

// Record is a stored (id, vector, metadata) triple (immutable value object).
// The vector and metadata are copied at construction, so a Record never
// aliases caller-owned memory.
type Record struct {
	id     string
	vector []float32
	meta   metadata.Metadata
}

// New validates and creates a Record. The identifier must be non-empty and
// at most MaxIDLength bytes; the vector must be non-empty. Dimension
// agreement with the index is enforced at the index boundary, not here.
func New(id string, vector []float32, meta metadata.Metadata) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record ID is required")
	}
	if len(id) > MaxIDLength {
		return Record{}, fmt.Errorf("record ID too long (max %d)", MaxIDLength)
	}
	if len(vector) == 0 {
		return Record{}, fmt.Errorf("record vector is required")
	}
	return Record{
		id:     id,
		vector: slices.Clone(vector),
		meta:   meta.Clone(),
	}, nil
}

// Reconstruct creates a Record without validation or copying (index hydration).
func Reconstruct(id string, vector []float32, meta metadata.Metadata) Record {
	return Record{id: id, vector: vector, meta: meta}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Vector returns the stored vector. Callers must not mutate it.
func (r *Record) Vector() []float32 { return r.vector }

// Metadata returns the stored metadata. Callers must not mutate it.
func (r *Record) Metadata() metadata.Metadata { return r.meta }

// Dimension returns the vector length.
func (r *Record) Dimension() int { return len(r.vector) }
