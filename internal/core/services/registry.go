package services

import (
	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
)

// KindServices bundles the store, commit processor and delta engine of one
// entity kind.
type KindServices[C any] struct {
	Store   *VersionedStore[C]
	Commits *CommitProcessor[C]
	Delta   *DeltaEngine[C]
}

func newKindServices[C any](kind EntityKind[C], entities ports.BaseEntityRepository, records ports.VersionRecordRepository, versions *ProjectVersionService, refs ReferenceResolver[C], notifier ports.ChangeNotifier, locks *VersionLocks) *KindServices[C] {
	store := NewVersionedStore(kind, entities, records)
	return &KindServices[C]{
		Store:   store,
		Commits: NewCommitProcessor(store, versions, refs, notifier, locks),
		Delta:   NewDeltaEngine(store),
	}
}

// Registry holds every service the primary adapters need. It is built once by
// the process entry point and passed explicitly to handlers and importers.
type Registry struct {
	Versions   *ProjectVersionService
	Artifacts  *KindServices[domain.Artifact]
	TraceLinks *KindServices[domain.TraceLink]
	Documents  *KindServices[domain.Document]
	Delta      *ProjectDeltaService
}

// NewRegistry wires the services over one set of repositories. All kinds share
// a lock set so commits to the same version are serialized across kinds.
func NewRegistry(versionRepo ports.ProjectVersionRepository, entityRepo ports.BaseEntityRepository, recordRepo ports.VersionRecordRepository, notifier ports.ChangeNotifier) *Registry {
	versions := NewProjectVersionService(versionRepo)
	locks := NewVersionLocks()

	artifacts := newKindServices(ArtifactKind, entityRepo, recordRepo, versions, nil, notifier, locks)
	refs := NewArtifactReferences(artifacts.Store)
	traceLinks := newKindServices(TraceLinkKind, entityRepo, recordRepo, versions, refs.TraceLinks(), notifier, locks)
	documents := newKindServices(DocumentKind, entityRepo, recordRepo, versions, refs.Documents(), notifier, locks)

	return &Registry{
		Versions:   versions,
		Artifacts:  artifacts,
		TraceLinks: traceLinks,
		Documents:  documents,
		Delta:      NewProjectDeltaService(versions, artifacts.Delta, traceLinks.Delta, documents.Delta),
	}
}
