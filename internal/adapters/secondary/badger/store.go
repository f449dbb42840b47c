package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"artifact-version-service/internal/core/domain"
)

// Key layout. Ids are raw 16 byte UUIDs and ordinals are three big-endian
// uint32 values, so byte order equals version order.
//
//	pv/<version id>                          -> ProjectVersion
//	pvo/<project id><ordinal>                -> version id
//	be/<entity id>                           -> BaseEntity
//	ben/<project id><kind>\x00<name>          -> entity id
//	bek/<project id><kind>\x00<entity id>     -> empty
//	vr/<entity id><ordinal>                  -> VersionRecord
var (
	prefixVersion        = []byte("pv/")
	prefixVersionOrdinal = []byte("pvo/")
	prefixEntity         = []byte("be/")
	prefixEntityName     = []byte("ben/")
	prefixEntityKind     = []byte("bek/")
	prefixRecord         = []byte("vr/")
)

const maxConflictRetries = 3

func key(prefix []byte, parts ...[]byte) []byte {
	out := append([]byte(nil), prefix...)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func ordinal(v domain.ProjectVersion) []byte {
	out := make([]byte, 12)
	binary.BigEndian.PutUint32(out[0:4], uint32(v.Major))
	binary.BigEndian.PutUint32(out[4:8], uint32(v.Minor))
	binary.BigEndian.PutUint32(out[8:12], uint32(v.Revision))
	return out
}

func kindPart(kind domain.EntityKind) []byte {
	return append([]byte(kind), 0)
}

// Store exposes the database through the three persistence ports.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func (s *Store) Versions() *VersionRepository {
	return &VersionRepository{db: s.db}
}

func (s *Store) Entities() *EntityRepository {
	return &EntityRepository{db: s.db}
}

func (s *Store) Records() *RecordRepository {
	return &RecordRepository{db: s.db}
}

// update runs fn in a read-write transaction, retrying when Badger reports a
// conflict with a concurrent transaction. fn re-reads on every attempt, so a
// retry observes the competing write.
func update(ctx context.Context, db *DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func exists(txn *badger.Txn, k []byte) (bool, error) {
	_, err := txn.Get(k)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

func getJSON(txn *badger.Txn, k []byte, out any) error {
	item, err := txn.Get(k)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

func setJSON(txn *badger.Txn, k []byte, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(k, encoded)
}

// ============================================================================
// Project versions
// ============================================================================

type VersionRepository struct {
	db *DB
}

func (r *VersionRepository) Create(ctx context.Context, version *domain.ProjectVersion) error {
	versionKey := key(prefixVersion, version.ID[:])
	ordinalKey := key(prefixVersionOrdinal, version.ProjectID[:], ordinal(*version))

	return update(ctx, r.db, func(txn *badger.Txn) error {
		for _, k := range [][]byte{versionKey, ordinalKey} {
			found, err := exists(txn, k)
			if err != nil {
				return err
			}
			if found {
				return domain.ErrProjectVersionConflict
			}
		}
		if err := setJSON(txn, versionKey, version); err != nil {
			return err
		}
		return txn.Set(ordinalKey, version.ID[:])
	})
}

func (r *VersionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectVersion, error) {
	var version domain.ProjectVersion
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key(prefixVersion, id[:]), &version)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrProjectVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project version: %w", err)
	}
	return &version, nil
}

func (r *VersionRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.ProjectVersion, error) {
	prefix := key(prefixVersionOrdinal, projectID[:])
	versions := make([]*domain.ProjectVersion, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var version domain.ProjectVersion
			if err := getJSON(txn, key(prefixVersion, id), &version); err != nil {
				return err
			}
			versions = append(versions, &version)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list project versions: %w", err)
	}
	return versions, nil
}

// ============================================================================
// Base entities
// ============================================================================

type EntityRepository struct {
	db *DB
}

func (r *EntityRepository) Create(ctx context.Context, entity *domain.BaseEntity) error {
	entityKey := key(prefixEntity, entity.ID[:])
	nameKey := key(prefixEntityName, entity.ProjectID[:], kindPart(entity.Kind), []byte(entity.Name))
	kindKey := key(prefixEntityKind, entity.ProjectID[:], kindPart(entity.Kind), entity.ID[:])

	return update(ctx, r.db, func(txn *badger.Txn) error {
		for _, k := range [][]byte{entityKey, nameKey} {
			found, err := exists(txn, k)
			if err != nil {
				return err
			}
			if found {
				return domain.ErrBaseEntityConflict
			}
		}
		if err := setJSON(txn, entityKey, entity); err != nil {
			return err
		}
		if err := txn.Set(nameKey, entity.ID[:]); err != nil {
			return err
		}
		return txn.Set(kindKey, nil)
	})
}

func (r *EntityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BaseEntity, error) {
	var entity domain.BaseEntity
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key(prefixEntity, id[:]), &entity)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrUnknownBaseEntity
	}
	if err != nil {
		return nil, fmt.Errorf("get base entity: %w", err)
	}
	return &entity, nil
}

func (r *EntityRepository) GetByName(ctx context.Context, projectID uuid.UUID, kind domain.EntityKind, name string) (*domain.BaseEntity, error) {
	var entity domain.BaseEntity
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(prefixEntityName, projectID[:], kindPart(kind), []byte(name)))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, key(prefixEntity, id), &entity)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrUnknownBaseEntity
	}
	if err != nil {
		return nil, fmt.Errorf("get base entity by name: %w", err)
	}
	return &entity, nil
}

// ============================================================================
// Version records
// ============================================================================

type RecordRepository struct {
	db *DB
}

func (r *RecordRepository) Append(ctx context.Context, record *domain.VersionRecord) error {
	recordKey := key(prefixRecord, record.BaseEntityID[:], ordinal(record.Version))

	return update(ctx, r.db, func(txn *badger.Txn) error {
		found, err := exists(txn, recordKey)
		if err != nil {
			return err
		}
		if found {
			return domain.ErrDuplicateVersionRecord
		}
		return setJSON(txn, recordKey, record)
	})
}

func (r *RecordRepository) GetAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error) {
	var rec domain.VersionRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, key(prefixRecord, entityID[:], ordinal(version)), &rec)
	})
	if errors.Is(err, badger.ErrKeyNotFound) || (err == nil && rec.ProjectID != version.ProjectID) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get version record: %w", err)
	}
	return &rec, nil
}

func (r *RecordRepository) GetLatestAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error) {
	var rec *domain.VersionRecord
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = latestAt(txn, entityID, version)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get latest version record: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrRecordNotFound
	}
	return rec, nil
}

func (r *RecordRepository) ListLatestAt(ctx context.Context, kind domain.EntityKind, version domain.ProjectVersion) ([]*domain.VersionRecord, error) {
	prefix := key(prefixEntityKind, version.ProjectID[:], kindPart(kind))
	records := make([]*domain.VersionRecord, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := uuid.FromBytes(it.Item().Key()[len(prefix):])
			if err != nil {
				return err
			}
			rec, err := latestAt(txn, id, version)
			if err != nil {
				return err
			}
			if rec != nil {
				records = append(records, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list latest version records: %w", err)
	}
	return records, nil
}

func (r *RecordRepository) ListHistory(ctx context.Context, entityID uuid.UUID) ([]*domain.VersionRecord, error) {
	prefix := key(prefixRecord, entityID[:])
	records := make([]*domain.VersionRecord, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec domain.VersionRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list version record history: %w", err)
	}
	return records, nil
}

// latestAt seeks backwards from the entity's key at version, which lands on
// the greatest record at or before it.
func latestAt(txn *badger.Txn, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error) {
	prefix := key(prefixRecord, entityID[:])

	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	it.Seek(key(prefix, ordinal(version)))
	if !it.ValidForPrefix(prefix) {
		return nil, nil
	}

	var rec domain.VersionRecord
	if err := it.Item().Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return nil, err
	}
	if rec.ProjectID != version.ProjectID {
		return nil, nil
	}
	return &rec, nil
}
