package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"artifact-version-service/internal/core/domain"
)

// DeltaEngine compares the effective state of one entity kind at two versions.
// It only reads from the store.
type DeltaEngine[C any] struct {
	store *VersionedStore[C]
}

func NewDeltaEngine[C any](store *VersionedStore[C]) *DeltaEngine[C] {
	return &DeltaEngine[C]{store: store}
}

// CalculateEntityDelta returns the entities added, modified and removed going
// from baseline to target. Target may precede baseline.
func (e *DeltaEngine[C]) CalculateEntityDelta(ctx context.Context, baseline, target domain.ProjectVersion) (domain.EntityDelta, error) {
	kind := e.store.Kind()
	if !baseline.SameProject(target) {
		return domain.EntityDelta{}, domain.ErrCrossProjectVersion
	}
	if baseline.Compare(target) == 0 {
		return domain.NewEntityDelta(nil, nil, nil), nil
	}

	ctx, span := tracer.Start(ctx, "DeltaEngine.CalculateEntityDelta", trace.WithAttributes(
		attribute.String("kind", string(kind.Kind)),
		attribute.String("baseline", baseline.String()),
		attribute.String("target", target.String()),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		deltaDuration.WithLabelValues(string(kind.Kind)).Observe(time.Since(start).Seconds())
	}()

	var before, after map[uuid.UUID]*domain.Record[C]
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		before, err = e.store.AllEffectiveAt(gCtx, baseline)
		return err
	})
	g.Go(func() error {
		var err error
		after, err = e.store.AllEffectiveAt(gCtx, target)
		return err
	})
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.EntityDelta{}, err
	}

	var added, modified, removed []uuid.UUID
	for id, rec := range after {
		prev, ok := before[id]
		switch {
		case !ok:
			added = append(added, id)
		case !kind.ContentEquals(prev.Content.Value(), rec.Content.Value()):
			modified = append(modified, id)
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			removed = append(removed, id)
		}
	}

	delta := domain.NewEntityDelta(added, modified, removed)
	size := len(delta.Added) + len(delta.Modified) + len(delta.Removed)
	deltaSize.WithLabelValues(string(kind.Kind)).Observe(float64(size))
	span.SetAttributes(attribute.Int("entities", size))
	return delta, nil
}

// DiffEntity renders a unified diff of one entity's content between two
// versions. A side where the entity is not effective diffs as empty.
func (e *DeltaEngine[C]) DiffEntity(ctx context.Context, entityID uuid.UUID, baseline, target domain.ProjectVersion) (string, error) {
	if !baseline.SameProject(target) {
		return "", domain.ErrCrossProjectVersion
	}
	entity, err := e.store.Entity(ctx, entityID)
	if err != nil {
		return "", err
	}
	if entity.ProjectID != baseline.ProjectID {
		return "", domain.ErrUnknownBaseEntity
	}

	before, err := e.contentAt(ctx, entityID, baseline)
	if err != nil {
		return "", err
	}
	after, err := e.contentAt(ctx, entityID, target)
	if err != nil {
		return "", err
	}

	return domain.DiffContent(
		entity.Name+"@"+baseline.String(), before,
		entity.Name+"@"+target.String(), after,
	)
}

func (e *DeltaEngine[C]) contentAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (any, error) {
	rec, err := e.store.EffectiveStateAt(ctx, entityID, version)
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.Content.Value(), nil
}

// ProjectDeltaService composes the per-kind delta engines into one project
// level comparison.
type ProjectDeltaService struct {
	versions   *ProjectVersionService
	artifacts  *DeltaEngine[domain.Artifact]
	traceLinks *DeltaEngine[domain.TraceLink]
	documents  *DeltaEngine[domain.Document]
}

func NewProjectDeltaService(
	versions *ProjectVersionService,
	artifacts *DeltaEngine[domain.Artifact],
	traceLinks *DeltaEngine[domain.TraceLink],
	documents *DeltaEngine[domain.Document],
) *ProjectDeltaService {
	return &ProjectDeltaService{
		versions:   versions,
		artifacts:  artifacts,
		traceLinks: traceLinks,
		documents:  documents,
	}
}

func (s *ProjectDeltaService) Calculate(ctx context.Context, baselineID, targetID uuid.UUID) (*domain.ProjectDelta, error) {
	baseline, err := s.versions.Get(ctx, baselineID)
	if err != nil {
		return nil, err
	}
	target, err := s.versions.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !baseline.SameProject(*target) {
		return nil, domain.ErrCrossProjectVersion
	}

	result := &domain.ProjectDelta{Baseline: *baseline, Target: *target}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		delta, err := s.artifacts.CalculateEntityDelta(gCtx, *baseline, *target)
		result.Artifacts = delta
		return err
	})
	g.Go(func() error {
		delta, err := s.traceLinks.CalculateEntityDelta(gCtx, *baseline, *target)
		result.TraceLinks = delta
		return err
	})
	g.Go(func() error {
		delta, err := s.documents.CalculateEntityDelta(gCtx, *baseline, *target)
		result.Documents = delta
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
