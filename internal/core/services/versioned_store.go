package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
)

// VersionedStore is the append-only history of one entity kind. Reads are
// side-effect free; appends rely on the record repository to reject a second
// record for the same (entity, version) pair.
type VersionedStore[C any] struct {
	kind     EntityKind[C]
	entities ports.BaseEntityRepository
	records  ports.VersionRecordRepository
}

func NewVersionedStore[C any](kind EntityKind[C], entities ports.BaseEntityRepository, records ports.VersionRecordRepository) *VersionedStore[C] {
	return &VersionedStore[C]{kind: kind, entities: entities, records: records}
}

func (s *VersionedStore[C]) Kind() EntityKind[C] {
	return s.kind
}

// Entity returns the base entity with the given id if it belongs to this kind.
func (s *VersionedStore[C]) Entity(ctx context.Context, id uuid.UUID) (*domain.BaseEntity, error) {
	entity, err := s.entities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entity.Kind != s.kind.Kind {
		return nil, domain.ErrUnknownBaseEntity
	}
	return entity, nil
}

// EntityByName resolves a base entity by its natural key within a project.
func (s *VersionedStore[C]) EntityByName(ctx context.Context, projectID uuid.UUID, name string) (*domain.BaseEntity, error) {
	return s.entities.GetByName(ctx, projectID, s.kind.Kind, name)
}

// EffectiveStateAt returns the entity's nearest record at or before version,
// or nil when there is none or that record is a removal.
func (s *VersionedStore[C]) EffectiveStateAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.Record[C], error) {
	rec, err := s.LatestRecordAt(ctx, entityID, version)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.IsRemoved() {
		return nil, nil
	}
	return rec, nil
}

// LatestRecordAt is EffectiveStateAt without the removal filter.
func (s *VersionedStore[C]) LatestRecordAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.Record[C], error) {
	raw, err := s.records.GetLatestAt(ctx, entityID, version)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest %s record at %s: %w", s.kind.Kind, version, err)
	}
	return s.decode(raw)
}

// RecordAt returns the record stored exactly at version, or nil.
func (s *VersionedStore[C]) RecordAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.Record[C], error) {
	raw, err := s.records.GetAt(ctx, entityID, version)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s record at %s: %w", s.kind.Kind, version, err)
	}
	return s.decode(raw)
}

// AllEffectiveAt materializes the state of every entity of this kind in the
// version's project. Removed entities are absent from the map.
func (s *VersionedStore[C]) AllEffectiveAt(ctx context.Context, version domain.ProjectVersion) (map[uuid.UUID]*domain.Record[C], error) {
	raws, err := s.records.ListLatestAt(ctx, s.kind.Kind, version)
	if err != nil {
		return nil, fmt.Errorf("list %s records at %s: %w", s.kind.Kind, version, err)
	}

	out := make(map[uuid.UUID]*domain.Record[C], len(raws))
	for _, raw := range raws {
		if raw.ModificationType.IsRemoval() {
			continue
		}
		rec, err := s.decode(raw)
		if err != nil {
			return nil, err
		}
		out[rec.BaseEntityID] = rec
	}
	return out, nil
}

// HistoryOf returns the entity's full change log, oldest first.
func (s *VersionedStore[C]) HistoryOf(ctx context.Context, entityID uuid.UUID) ([]*domain.Record[C], error) {
	raws, err := s.records.ListHistory(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("list %s history: %w", s.kind.Kind, err)
	}

	out := make([]*domain.Record[C], 0, len(raws))
	for _, raw := range raws {
		rec, err := s.decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Append records a new snapshot of entity at version. The modification type
// must agree with the content: REMOVED carries no content, the others do.
func (s *VersionedStore[C]) Append(ctx context.Context, entity *domain.BaseEntity, version domain.ProjectVersion, modType domain.ModificationType, content domain.Content[C]) (*domain.Record[C], error) {
	if entity.Kind != s.kind.Kind {
		return nil, domain.ErrInvalidEntityKind
	}
	if entity.ProjectID != version.ProjectID {
		return nil, domain.ErrCrossProjectVersion
	}
	if _, err := domain.ParseModificationType(string(modType)); err != nil {
		return nil, err
	}
	if modType.IsRemoval() == content.IsPresent() {
		return nil, domain.ErrInvalidRecord
	}

	var payload []byte
	if value, ok := content.Get(); ok {
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s content: %w", s.kind.Kind, err)
		}
		payload = encoded
	}

	raw := &domain.VersionRecord{
		ID:               uuid.New(),
		CreatedAt:        time.Now(),
		BaseEntityID:     entity.ID,
		ProjectID:        entity.ProjectID,
		Kind:             entity.Kind,
		Version:          version,
		ModificationType: modType,
		Payload:          payload,
	}
	if err := s.records.Append(ctx, raw); err != nil {
		return nil, fmt.Errorf("append %s record for %q at %s: %w", s.kind.Kind, entity.Name, version, err)
	}

	return &domain.Record[C]{VersionRecord: *raw, Content: content}, nil
}

func (s *VersionedStore[C]) decode(raw *domain.VersionRecord) (*domain.Record[C], error) {
	rec := &domain.Record[C]{VersionRecord: *raw, Content: domain.Removed[C]()}
	if raw.ModificationType.IsRemoval() {
		return rec, nil
	}

	var value C
	if err := json.Unmarshal(raw.Payload, &value); err != nil {
		return nil, fmt.Errorf("unmarshal %s record %s: %w", s.kind.Kind, raw.ID, err)
	}
	rec.Content = domain.Present(value)
	return rec, nil
}
