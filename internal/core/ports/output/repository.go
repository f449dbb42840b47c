package ports

import (
	"context"

	"github.com/google/uuid"

	"artifact-version-service/internal/core/domain"
)

// ProjectVersionRepository persists the version lattice of each project.
type ProjectVersionRepository interface {
	// Create fails with domain.ErrProjectVersionConflict when the project
	// already has a version with the same ordinals.
	Create(ctx context.Context, version *domain.ProjectVersion) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectVersion, error)
	// ListByProject returns the project's versions in ascending order.
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectVersion, error)
}

// BaseEntityRepository provides keyed lookup of base entities by id and by
// (project, kind, natural key).
type BaseEntityRepository interface {
	// Create fails with domain.ErrBaseEntityConflict when the natural key is taken.
	Create(ctx context.Context, entity *domain.BaseEntity) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BaseEntity, error)
	GetByName(ctx context.Context, projectID uuid.UUID, kind domain.EntityKind, name string) (*domain.BaseEntity, error)
}

// VersionRecordRepository owns the append-only record log.
type VersionRecordRepository interface {
	// Append stores a new record atomically. A second record for the same
	// (base entity, project version) pair fails with domain.ErrDuplicateVersionRecord.
	Append(ctx context.Context, record *domain.VersionRecord) error
	// GetAt returns the record stored exactly at version.
	GetAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error)
	// GetLatestAt returns the record with the greatest version <= version.
	// Both lookups return domain.ErrRecordNotFound when nothing matches.
	GetLatestAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error)
	// ListLatestAt returns, for every base entity of the kind in the version's
	// project, its record with the greatest version <= version.
	ListLatestAt(ctx context.Context, kind domain.EntityKind, version domain.ProjectVersion) ([]*domain.VersionRecord, error)
	// ListHistory returns every record of the entity, oldest first.
	ListHistory(ctx context.Context, entityID uuid.UUID) ([]*domain.VersionRecord, error)
}

// ChangeNotifier receives the outcome of each commit that applied records.
type ChangeNotifier interface {
	Notify(ctx context.Context, notification domain.CommitNotification)
}
