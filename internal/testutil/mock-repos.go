package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"artifact-version-service/internal/core/domain"
)

// MockProjectVersionRepo is a mock of ProjectVersionRepository.
type MockProjectVersionRepo struct {
	mock.Mock
}

func (m *MockProjectVersionRepo) Create(ctx context.Context, version *domain.ProjectVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *MockProjectVersionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProjectVersion), args.Error(1)
}

func (m *MockProjectVersionRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectVersion, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProjectVersion), args.Error(1)
}

// MockBaseEntityRepo is a mock of BaseEntityRepository.
type MockBaseEntityRepo struct {
	mock.Mock
}

func (m *MockBaseEntityRepo) Create(ctx context.Context, entity *domain.BaseEntity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockBaseEntityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BaseEntity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BaseEntity), args.Error(1)
}

func (m *MockBaseEntityRepo) GetByName(ctx context.Context, projectID uuid.UUID, kind domain.EntityKind, name string) (*domain.BaseEntity, error) {
	args := m.Called(ctx, projectID, kind, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BaseEntity), args.Error(1)
}

// MockVersionRecordRepo is a mock of VersionRecordRepository.
type MockVersionRecordRepo struct {
	mock.Mock
}

func (m *MockVersionRecordRepo) Append(ctx context.Context, record *domain.VersionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockVersionRecordRepo) GetAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error) {
	args := m.Called(ctx, entityID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VersionRecord), args.Error(1)
}

func (m *MockVersionRecordRepo) GetLatestAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error) {
	args := m.Called(ctx, entityID, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VersionRecord), args.Error(1)
}

func (m *MockVersionRecordRepo) ListLatestAt(ctx context.Context, kind domain.EntityKind, version domain.ProjectVersion) ([]*domain.VersionRecord, error) {
	args := m.Called(ctx, kind, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VersionRecord), args.Error(1)
}

func (m *MockVersionRecordRepo) ListHistory(ctx context.Context, entityID uuid.UUID) ([]*domain.VersionRecord, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VersionRecord), args.Error(1)
}

// MockChangeNotifier is a mock of ChangeNotifier.
type MockChangeNotifier struct {
	mock.Mock
}

func (m *MockChangeNotifier) Notify(ctx context.Context, notification domain.CommitNotification) {
	m.Called(ctx, notification)
}
