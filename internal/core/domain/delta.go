package domain

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

// EntityDelta partitions the entities that differ between two project
// versions. The three sets are disjoint and sorted.
type EntityDelta struct {
	Added    []uuid.UUID `json:"added"`
	Modified []uuid.UUID `json:"modified"`
	Removed  []uuid.UUID `json:"removed"`
}

func NewEntityDelta(added, modified, removed []uuid.UUID) EntityDelta {
	return EntityDelta{
		Added:    SortedIDs(added),
		Modified: SortedIDs(modified),
		Removed:  SortedIDs(removed),
	}
}

// Reverse returns the delta seen from the other direction.
func (d EntityDelta) Reverse() EntityDelta {
	return EntityDelta{
		Added:    slices.Clone(d.Removed),
		Modified: slices.Clone(d.Modified),
		Removed:  slices.Clone(d.Added),
	}
}

func (d EntityDelta) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}

// ProjectDelta is the delta of every entity kind between two versions.
type ProjectDelta struct {
	Baseline   ProjectVersion `json:"baseline"`
	Target     ProjectVersion `json:"target"`
	Artifacts  EntityDelta    `json:"artifacts"`
	TraceLinks EntityDelta    `json:"trace_links"`
	Documents  EntityDelta    `json:"documents"`
}

// SortedIDs returns a sorted copy of ids.
func SortedIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	slices.SortFunc(out, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return out
}
