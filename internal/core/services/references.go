package services

import (
	"context"
	"errors"
	"fmt"

	"artifact-version-service/internal/core/domain"
)

// ReferenceResolver checks that the entities a content value points at exist
// at the version it is committed to.
type ReferenceResolver[C any] interface {
	Resolve(ctx context.Context, version domain.ProjectVersion, content C) error
}

type ReferenceResolverFunc[C any] func(ctx context.Context, version domain.ProjectVersion, content C) error

func (f ReferenceResolverFunc[C]) Resolve(ctx context.Context, version domain.ProjectVersion, content C) error {
	return f(ctx, version, content)
}

// ArtifactReferences resolves artifact names against the artifact store.
type ArtifactReferences struct {
	artifacts *VersionedStore[domain.Artifact]
}

func NewArtifactReferences(artifacts *VersionedStore[domain.Artifact]) *ArtifactReferences {
	return &ArtifactReferences{artifacts: artifacts}
}

// Exists returns nil when an artifact with the name is effective at version.
func (r *ArtifactReferences) Exists(ctx context.Context, version domain.ProjectVersion, name string) error {
	entity, err := r.artifacts.EntityByName(ctx, version.ProjectID, name)
	if errors.Is(err, domain.ErrUnknownBaseEntity) {
		return fmt.Errorf("%w: artifact %q does not exist", domain.ErrUnresolvedReference, name)
	}
	if err != nil {
		return err
	}

	rec, err := r.artifacts.EffectiveStateAt(ctx, entity.ID, version)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: artifact %q is not present at version %s", domain.ErrUnresolvedReference, name, version)
	}
	return nil
}

// TraceLinks requires both ends of a link to resolve.
func (r *ArtifactReferences) TraceLinks() ReferenceResolver[domain.TraceLink] {
	return ReferenceResolverFunc[domain.TraceLink](func(ctx context.Context, version domain.ProjectVersion, link domain.TraceLink) error {
		if err := r.Exists(ctx, version, link.Source); err != nil {
			return err
		}
		return r.Exists(ctx, version, link.Target)
	})
}

// Documents requires every listed artifact to resolve.
func (r *ArtifactReferences) Documents() ReferenceResolver[domain.Document] {
	return ReferenceResolverFunc[domain.Document](func(ctx context.Context, version domain.ProjectVersion, doc domain.Document) error {
		for _, name := range doc.Artifacts {
			if err := r.Exists(ctx, version, name); err != nil {
				return err
			}
		}
		return nil
	})
}
