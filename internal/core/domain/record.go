package domain

import (
	"time"

	"github.com/google/uuid"
)

// VersionRecord is the persisted form of a snapshot: a Base Entity's content
// as of one Project Version, encoded as JSON. Payload is nil for REMOVED.
type VersionRecord struct {
	ID               uuid.UUID        `json:"id"`
	CreatedAt        time.Time        `json:"created_at"`
	BaseEntityID     uuid.UUID        `json:"base_entity_id"`
	ProjectID        uuid.UUID        `json:"project_id"`
	Kind             EntityKind       `json:"kind"`
	Version          ProjectVersion   `json:"version"`
	ModificationType ModificationType `json:"modification_type"`
	Payload          []byte           `json:"payload,omitempty"`
}

// Record is a VersionRecord with its payload decoded into content type C.
type Record[C any] struct {
	VersionRecord
	Content Content[C]
}

func (r *Record[C]) IsRemoved() bool {
	return r.ModificationType.IsRemoval()
}
