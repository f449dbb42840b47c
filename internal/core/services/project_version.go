package services

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
)

// ProjectVersionService maintains the total order of versions in a project.
type ProjectVersionService struct {
	repo ports.ProjectVersionRepository
}

func NewProjectVersionService(repo ports.ProjectVersionRepository) *ProjectVersionService {
	return &ProjectVersionService{repo: repo}
}

func (s *ProjectVersionService) Create(ctx context.Context, projectID uuid.UUID, major, minor, revision int) (*domain.ProjectVersion, error) {
	version, err := domain.NewProjectVersion(projectID, major, minor, revision)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}

// CreateNext creates the version following the project's latest one. A project
// without versions bumps from 0.0.0.
func (s *ProjectVersionService) CreateNext(ctx context.Context, projectID uuid.UUID, bump domain.VersionBump) (*domain.ProjectVersion, error) {
	base := domain.ProjectVersion{ProjectID: projectID}
	latest, err := s.Latest(ctx, projectID)
	switch {
	case err == nil:
		base = *latest
	case !errors.Is(err, domain.ErrProjectVersionNotFound):
		return nil, err
	}

	major, minor, revision, err := base.Next(bump)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, projectID, major, minor, revision)
}

func (s *ProjectVersionService) Get(ctx context.Context, id uuid.UUID) (*domain.ProjectVersion, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the project's versions in ascending order.
func (s *ProjectVersionService) List(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectVersion, error) {
	versions, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Before(*versions[j])
	})
	return versions, nil
}

func (s *ProjectVersionService) Latest(ctx context.Context, projectID uuid.UUID) (*domain.ProjectVersion, error) {
	versions, err := s.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, domain.ErrProjectVersionNotFound
	}
	return versions[len(versions)-1], nil
}

// Preceding returns the version immediately before v in its project, or nil
// when v is the first version.
func (s *ProjectVersionService) Preceding(ctx context.Context, v domain.ProjectVersion) (*domain.ProjectVersion, error) {
	versions, err := s.List(ctx, v.ProjectID)
	if err != nil {
		return nil, err
	}

	var preceding *domain.ProjectVersion
	for _, candidate := range versions {
		if !candidate.Before(v) {
			break
		}
		preceding = candidate
	}
	return preceding, nil
}
