package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityKind names one family of versioned entities.
type EntityKind string

const (
	KindArtifact  EntityKind = "artifact"
	KindTraceLink EntityKind = "trace_link"
	KindDocument  EntityKind = "document"
)

var supportedKinds = map[EntityKind]bool{
	KindArtifact:  true,
	KindTraceLink: true,
	KindDocument:  true,
}

func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(strings.ToLower(strings.TrimSpace(s)))
	if !supportedKinds[k] {
		return "", ErrInvalidEntityKind
	}
	return k, nil
}

// BaseEntity is the version-independent identity of a trackable thing.
// It is created by the first commit that introduces it and never deleted.
type BaseEntity struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	ProjectID uuid.UUID  `json:"project_id"`
	Kind      EntityKind `json:"kind"`
	Name      string     `json:"name"`
}

// NewBaseEntity creates a new BaseEntity
func NewBaseEntity(projectID uuid.UUID, kind EntityKind, name string) (*BaseEntity, error) {
	if projectID == uuid.Nil {
		return nil, ErrMissingProjectID
	}
	if !supportedKinds[kind] {
		return nil, ErrInvalidEntityKind
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidEntityName
	}

	return &BaseEntity{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		ProjectID: projectID,
		Kind:      kind,
		Name:      name,
	}, nil
}
