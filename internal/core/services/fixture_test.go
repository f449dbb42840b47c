package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"artifact-version-service/internal/adapters/secondary/memory"
	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
)

type fixture struct {
	t       *testing.T
	ctx     context.Context
	project uuid.UUID
	store   *memory.Store
	reg     *Registry
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithNotifier(t, nil)
}

func newFixtureWithNotifier(t *testing.T, notifier ports.ChangeNotifier) *fixture {
	store := memory.NewStore()
	return &fixture{
		t:       t,
		ctx:     context.Background(),
		project: uuid.New(),
		store:   store,
		reg:     NewRegistry(store.Versions(), store.Entities(), store.Records(), notifier),
	}
}

func (f *fixture) version(major, minor, revision int) *domain.ProjectVersion {
	v, err := f.reg.Versions.Create(f.ctx, f.project, major, minor, revision)
	require.NoError(f.t, err)
	return v
}

func (f *fixture) commitArtifacts(v *domain.ProjectVersion, mode domain.CommitMode, items ...domain.CommitItem[domain.Artifact]) *domain.CommitResult[domain.Artifact] {
	result, err := f.reg.Artifacts.Commits.Commit(f.ctx, domain.Commit[domain.Artifact]{
		ProjectID: f.project,
		VersionID: v.ID,
		Mode:      mode,
		Items:     items,
	})
	require.NoError(f.t, err)
	return result
}

func (f *fixture) artifactID(name string) uuid.UUID {
	entity, err := f.reg.Artifacts.Store.EntityByName(f.ctx, f.project, name)
	require.NoError(f.t, err)
	return entity.ID
}

func artifact(name, body string) domain.Artifact {
	return domain.Artifact{Name: name, Type: "requirement", Body: body}
}

func upsert[C any](content C) domain.CommitItem[C] {
	return domain.CommitItem[C]{Content: &content}
}

func remove[C any](name string) domain.CommitItem[C] {
	return domain.CommitItem[C]{Name: name, Hint: domain.ModRemoved}
}

func outcomes[C any](result *domain.CommitResult[C]) []domain.ItemOutcome {
	out := make([]domain.ItemOutcome, 0, len(result.Items))
	for _, item := range result.Items {
		out = append(out, item.Outcome)
	}
	return out
}
