package services

import (
	"artifact-version-service/internal/core/domain"
)

// EntityKind is the capability set the generic store, commit processor and
// delta engine need from one kind of content.
type EntityKind[C any] struct {
	Kind          domain.EntityKind
	NaturalKey    func(C) string
	ContentEquals func(a, b C) bool
}

var (
	ArtifactKind = EntityKind[domain.Artifact]{
		Kind:          domain.KindArtifact,
		NaturalKey:    domain.Artifact.NaturalKey,
		ContentEquals: domain.Artifact.Equal,
	}

	TraceLinkKind = EntityKind[domain.TraceLink]{
		Kind:          domain.KindTraceLink,
		NaturalKey:    domain.TraceLink.NaturalKey,
		ContentEquals: domain.TraceLink.Equal,
	}

	DocumentKind = EntityKind[domain.Document]{
		Kind:          domain.KindDocument,
		NaturalKey:    domain.Document.NaturalKey,
		ContentEquals: domain.Document.Equal,
	}
)

// sameContent compares two record states; two removals are equal.
func (k EntityKind[C]) sameContent(a, b domain.Content[C]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	if aok != bok {
		return false
	}
	return !aok || k.ContentEquals(av, bv)
}
