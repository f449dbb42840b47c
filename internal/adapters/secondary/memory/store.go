// Package memory implements the persistence ports with in-process maps. It is
// used by tests and by the server when STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"artifact-version-service/internal/core/domain"
)

type entityKey struct {
	projectID uuid.UUID
	kind      domain.EntityKind
	name      string
}

type recordKey struct {
	entityID  uuid.UUID
	versionID uuid.UUID
}

// Store keeps versions, base entities and records behind one RWMutex. The
// repository views returned by Versions, Entities and Records share it.
type Store struct {
	mu sync.RWMutex

	versions map[uuid.UUID]*domain.ProjectVersion
	entities map[uuid.UUID]*domain.BaseEntity
	byName   map[entityKey]uuid.UUID
	records  map[recordKey]*domain.VersionRecord
	// history holds the records of each entity in version order
	history map[uuid.UUID][]*domain.VersionRecord
}

func NewStore() *Store {
	return &Store{
		versions: make(map[uuid.UUID]*domain.ProjectVersion),
		entities: make(map[uuid.UUID]*domain.BaseEntity),
		byName:   make(map[entityKey]uuid.UUID),
		records:  make(map[recordKey]*domain.VersionRecord),
		history:  make(map[uuid.UUID][]*domain.VersionRecord),
	}
}

// Versions exposes the store as a ports.ProjectVersionRepository.
func (s *Store) Versions() *VersionRepository {
	return &VersionRepository{s}
}

// Entities exposes the store as a ports.BaseEntityRepository.
func (s *Store) Entities() *EntityRepository {
	return &EntityRepository{s}
}

// Records exposes the store as a ports.VersionRecordRepository.
func (s *Store) Records() *RecordRepository {
	return &RecordRepository{s}
}

// ============================================================================
// Project versions
// ============================================================================

type VersionRepository struct{ s *Store }

func (r *VersionRepository) Create(ctx context.Context, version *domain.ProjectVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.versions[version.ID]; ok {
		return domain.ErrProjectVersionConflict
	}
	for _, v := range r.s.versions {
		if v.SameProject(*version) && v.Compare(*version) == 0 {
			return domain.ErrProjectVersionConflict
		}
	}
	cp := *version
	r.s.versions[version.ID] = &cp
	return nil
}

func (r *VersionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectVersion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.versions[id]
	if !ok {
		return nil, domain.ErrProjectVersionNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *VersionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectVersion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.ProjectVersion, 0)
	for _, v := range r.s.versions {
		if v.ProjectID == projectID {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(*out[j]) })
	return out, nil
}

// ============================================================================
// Base entities
// ============================================================================

type EntityRepository struct{ s *Store }

func (r *EntityRepository) Create(ctx context.Context, entity *domain.BaseEntity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := entityKey{projectID: entity.ProjectID, kind: entity.Kind, name: entity.Name}
	if _, ok := r.s.byName[key]; ok {
		return domain.ErrBaseEntityConflict
	}
	if _, ok := r.s.entities[entity.ID]; ok {
		return domain.ErrBaseEntityConflict
	}
	cp := *entity
	r.s.entities[entity.ID] = &cp
	r.s.byName[key] = entity.ID
	return nil
}

func (r *EntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BaseEntity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.entities[id]
	if !ok {
		return nil, domain.ErrUnknownBaseEntity
	}
	cp := *e
	return &cp, nil
}

func (r *EntityRepository) GetByName(ctx context.Context, projectID uuid.UUID, kind domain.EntityKind, name string) (*domain.BaseEntity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byName[entityKey{projectID: projectID, kind: kind, name: name}]
	if !ok {
		return nil, domain.ErrUnknownBaseEntity
	}
	cp := *r.s.entities[id]
	return &cp, nil
}

// ============================================================================
// Version records
// ============================================================================

type RecordRepository struct{ s *Store }

func (r *RecordRepository) Append(ctx context.Context, record *domain.VersionRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := recordKey{entityID: record.BaseEntityID, versionID: record.Version.ID}
	if _, ok := r.s.records[key]; ok {
		return domain.ErrDuplicateVersionRecord
	}
	// Ordinals identify a version within its project as well as the id does.
	for _, existing := range r.s.history[record.BaseEntityID] {
		if existing.Version.Compare(record.Version) == 0 {
			return domain.ErrDuplicateVersionRecord
		}
	}

	cp := copyRecord(record)
	r.s.records[key] = cp

	hist := append(r.s.history[record.BaseEntityID], cp)
	sort.SliceStable(hist, func(i, j int) bool { return hist[i].Version.Before(hist[j].Version) })
	r.s.history[record.BaseEntityID] = hist
	return nil
}

func (r *RecordRepository) GetAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.history[entityID] {
		if rec.ProjectID == version.ProjectID && rec.Version.Compare(version) == 0 {
			return copyRecord(rec), nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *RecordRepository) GetLatestAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec := latestAt(r.s.history[entityID], version)
	if rec == nil {
		return nil, domain.ErrRecordNotFound
	}
	return copyRecord(rec), nil
}

func (r *RecordRepository) ListLatestAt(ctx context.Context, kind domain.EntityKind, version domain.ProjectVersion) ([]*domain.VersionRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.VersionRecord, 0)
	for id, entity := range r.s.entities {
		if entity.ProjectID != version.ProjectID || entity.Kind != kind {
			continue
		}
		if rec := latestAt(r.s.history[id], version); rec != nil {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

func (r *RecordRepository) ListHistory(ctx context.Context, entityID uuid.UUID) ([]*domain.VersionRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	hist := r.s.history[entityID]
	out := make([]*domain.VersionRecord, 0, len(hist))
	for _, rec := range hist {
		out = append(out, copyRecord(rec))
	}
	return out, nil
}

// latestAt returns the last record at or before version. hist is sorted.
func latestAt(hist []*domain.VersionRecord, version domain.ProjectVersion) *domain.VersionRecord {
	var found *domain.VersionRecord
	for _, rec := range hist {
		if rec.ProjectID != version.ProjectID || !rec.Version.AtOrBefore(version) {
			break
		}
		found = rec
	}
	return found
}

func copyRecord(rec *domain.VersionRecord) *domain.VersionRecord {
	cp := *rec
	if rec.Payload != nil {
		cp.Payload = append([]byte(nil), rec.Payload...)
	}
	return &cp
}
