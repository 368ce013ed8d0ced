package query

import "github.com/talentgrid/matchengine/internal/index"

// Snapshotter provides point-in-time views of the vector index.
type Snapshotter interface {
	Snapshot() (index.Snapshot, error)
}
