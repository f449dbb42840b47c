package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
)

var (
	_ ports.ProjectVersionRepository = (*VersionRepository)(nil)
	_ ports.BaseEntityRepository     = (*EntityRepository)(nil)
	_ ports.VersionRecordRepository  = (*RecordRepository)(nil)
)

func newVersion(t *testing.T, store *Store, projectID uuid.UUID, major, minor, revision int) *domain.ProjectVersion {
	v, err := domain.NewProjectVersion(projectID, major, minor, revision)
	require.NoError(t, err)
	require.NoError(t, store.Versions().Create(context.Background(), v))
	return v
}

func TestVersionRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	projectID := uuid.New()

	v2 := newVersion(t, store, projectID, 2, 0, 0)
	v1 := newVersion(t, store, projectID, 1, 5, 3)
	newVersion(t, store, uuid.New(), 1, 0, 0)

	list, err := store.Versions().ListByProject(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, v1.ID, list[0].ID)
	assert.Equal(t, v2.ID, list[1].ID)

	dup, err := domain.NewProjectVersion(projectID, 2, 0, 0)
	require.NoError(t, err)
	assert.ErrorIs(t, store.Versions().Create(ctx, dup), domain.ErrProjectVersionConflict)

	_, err = store.Versions().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrProjectVersionNotFound)
}

func TestRecordRepository(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	projectID := uuid.New()

	v1 := newVersion(t, store, projectID, 1, 0, 0)
	v2 := newVersion(t, store, projectID, 2, 0, 0)
	v3 := newVersion(t, store, projectID, 3, 0, 0)

	entity, err := domain.NewBaseEntity(projectID, domain.KindArtifact, "RE-1")
	require.NoError(t, err)
	require.NoError(t, store.Entities().Create(ctx, entity))

	again, err := domain.NewBaseEntity(projectID, domain.KindArtifact, "RE-1")
	require.NoError(t, err)
	assert.ErrorIs(t, store.Entities().Create(ctx, again), domain.ErrBaseEntityConflict)

	record := func(v *domain.ProjectVersion, modType domain.ModificationType) *domain.VersionRecord {
		return &domain.VersionRecord{
			ID: uuid.New(), BaseEntityID: entity.ID, ProjectID: projectID,
			Kind: domain.KindArtifact, Version: *v, ModificationType: modType,
			Payload: []byte(`{"name":"RE-1"}`),
		}
	}

	records := store.Records()
	// appended out of order
	require.NoError(t, records.Append(ctx, record(v3, domain.ModModified)))
	require.NoError(t, records.Append(ctx, record(v1, domain.ModAdded)))
	assert.ErrorIs(t, records.Append(ctx, record(v1, domain.ModModified)), domain.ErrDuplicateVersionRecord)

	history, err := records.ListHistory(ctx, entity.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, v1.ID, history[0].Version.ID)
	assert.Equal(t, v3.ID, history[1].Version.ID)

	at2, err := records.GetLatestAt(ctx, entity.ID, *v2)
	require.NoError(t, err)
	assert.Equal(t, domain.ModAdded, at2.ModificationType)

	// returned records are copies
	at2.Payload[0] = 'X'
	again2, err := records.GetLatestAt(ctx, entity.ID, *v2)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), again2.Payload[0])

	_, err = records.GetAt(ctx, entity.ID, *v2)
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	latest, err := records.ListLatestAt(ctx, domain.KindArtifact, *v3)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, domain.ModModified, latest[0].ModificationType)
}
