package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/testutil"
)

func pv(projectID uuid.UUID, major, minor, revision int) *domain.ProjectVersion {
	return &domain.ProjectVersion{ID: uuid.New(), ProjectID: projectID, Major: major, Minor: minor, Revision: revision}
}

func TestProjectVersionService_Create(t *testing.T) {
	repo := new(testutil.MockProjectVersionRepo)
	svc := NewProjectVersionService(repo)

	projectID := uuid.New()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ProjectVersion")).Return(nil)

	version, err := svc.Create(context.Background(), projectID, 1, 2, 3)
	assert.NoError(t, err)
	assert.Equal(t, "1.2.3", version.String())
	assert.Equal(t, projectID, version.ProjectID)
	repo.AssertExpectations(t)
}

func TestProjectVersionService_Create_Invalid(t *testing.T) {
	repo := new(testutil.MockProjectVersionRepo)
	svc := NewProjectVersionService(repo)

	_, err := svc.Create(context.Background(), uuid.New(), -1, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidProjectVersion)

	_, err = svc.Create(context.Background(), uuid.Nil, 1, 0, 0)
	assert.ErrorIs(t, err, domain.ErrMissingProjectID)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProjectVersionService_Create_Conflict(t *testing.T) {
	repo := new(testutil.MockProjectVersionRepo)
	svc := NewProjectVersionService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrProjectVersionConflict)

	_, err := svc.Create(context.Background(), uuid.New(), 1, 0, 0)
	assert.ErrorIs(t, err, domain.ErrProjectVersionConflict)
}

func TestProjectVersionService_CreateNext(t *testing.T) {
	projectID := uuid.New()
	existing := []*domain.ProjectVersion{pv(projectID, 1, 4, 2), pv(projectID, 1, 0, 0)}

	tests := []struct {
		bump domain.VersionBump
		want string
	}{
		{domain.BumpMajor, "2.0.0"},
		{domain.BumpMinor, "1.5.0"},
		{domain.BumpRevision, "1.4.3"},
	}
	for _, tt := range tests {
		t.Run(string(tt.bump), func(t *testing.T) {
			repo := new(testutil.MockProjectVersionRepo)
			svc := NewProjectVersionService(repo)
			repo.On("ListByProject", mock.Anything, projectID).Return(existing, nil)
			repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ProjectVersion")).Return(nil)

			version, err := svc.CreateNext(context.Background(), projectID, tt.bump)
			require.NoError(t, err)
			assert.Equal(t, tt.want, version.String())
		})
	}
}

func TestProjectVersionService_CreateNext_FirstVersion(t *testing.T) {
	repo := new(testutil.MockProjectVersionRepo)
	svc := NewProjectVersionService(repo)

	projectID := uuid.New()
	repo.On("ListByProject", mock.Anything, projectID).Return([]*domain.ProjectVersion{}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ProjectVersion")).Return(nil)

	version, err := svc.CreateNext(context.Background(), projectID, domain.BumpMinor)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", version.String())
}

func TestProjectVersionService_CreateNext_InvalidBump(t *testing.T) {
	repo := new(testutil.MockProjectVersionRepo)
	svc := NewProjectVersionService(repo)

	projectID := uuid.New()
	repo.On("ListByProject", mock.Anything, projectID).Return([]*domain.ProjectVersion{}, nil)

	_, err := svc.CreateNext(context.Background(), projectID, "patch")
	assert.ErrorIs(t, err, domain.ErrInvalidVersionBump)
}

func TestProjectVersionService_List_Sorted(t *testing.T) {
	repo := new(testutil.MockProjectVersionRepo)
	svc := NewProjectVersionService(repo)

	projectID := uuid.New()
	repo.On("ListByProject", mock.Anything, projectID).Return([]*domain.ProjectVersion{
		pv(projectID, 2, 0, 0), pv(projectID, 1, 10, 0), pv(projectID, 1, 2, 5),
	}, nil)

	versions, err := svc.List(context.Background(), projectID)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "1.2.5", versions[0].String())
	assert.Equal(t, "1.10.0", versions[1].String())
	assert.Equal(t, "2.0.0", versions[2].String())
}

func TestProjectVersionService_Latest_NoVersions(t *testing.T) {
	repo := new(testutil.MockProjectVersionRepo)
	svc := NewProjectVersionService(repo)

	projectID := uuid.New()
	repo.On("ListByProject", mock.Anything, projectID).Return([]*domain.ProjectVersion{}, nil)

	_, err := svc.Latest(context.Background(), projectID)
	assert.ErrorIs(t, err, domain.ErrProjectVersionNotFound)
}

func TestProjectVersionService_Preceding(t *testing.T) {
	repo := new(testutil.MockProjectVersionRepo)
	svc := NewProjectVersionService(repo)

	projectID := uuid.New()
	v1, v2, v3 := pv(projectID, 1, 0, 0), pv(projectID, 1, 1, 0), pv(projectID, 2, 0, 0)
	repo.On("ListByProject", mock.Anything, projectID).Return([]*domain.ProjectVersion{v3, v1, v2}, nil)

	prev, err := svc.Preceding(context.Background(), *v3)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, prev.ID)

	prev, err = svc.Preceding(context.Background(), *v1)
	require.NoError(t, err)
	assert.Nil(t, prev)
}
