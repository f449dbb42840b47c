package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"artifact-version-service/internal/core/domain"
	"artifact-version-service/internal/core/ports/output"
)

type versionRecordRepo struct {
	pool *pgxpool.Pool
}

func NewVersionRecordRepository(pool *pgxpool.Pool) ports.VersionRecordRepository {
	return &versionRecordRepo{pool: pool}
}

const recordColumns = `
	vr.id, vr.created_at, vr.base_entity_id, be.project_id, be.kind,
	vr.modification_type, vr.payload,
	v.id, v.created_at, v.project_id, v.major, v.minor, v.revision
`

const recordJoins = `
	FROM version_record vr
	JOIN base_entity be ON be.id = vr.base_entity_id
	JOIN project_version v ON v.id = vr.project_version_id
`

// Append relies on the (base_entity_id, project_version_id) unique constraint
// to reject a second record for the pair, including one from a racing writer.
func (r *versionRecordRepo) Append(ctx context.Context, record *domain.VersionRecord) error {
	query := `
		INSERT INTO version_record
			(id, created_at, base_entity_id, project_version_id, modification_type, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		record.ID, record.CreatedAt, record.BaseEntityID, record.Version.ID,
		string(record.ModificationType), record.Payload,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return domain.ErrDuplicateVersionRecord
			case "23503":
				return fmt.Errorf("append version record: %w", domain.ErrUnknownBaseEntity)
			}
		}
		return fmt.Errorf("append version record: %w", err)
	}
	return nil
}

func (r *versionRecordRepo) GetAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error) {
	query := `SELECT ` + recordColumns + recordJoins + `
		WHERE vr.base_entity_id = $1 AND v.project_id = $2
			AND v.major = $3 AND v.minor = $4 AND v.revision = $5
	`
	rec, err := scanVersionRecord(r.pool.QueryRow(ctx, query,
		entityID, version.ProjectID, version.Major, version.Minor, version.Revision,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get version record: %w", err)
	}
	return rec, nil
}

func (r *versionRecordRepo) GetLatestAt(ctx context.Context, entityID uuid.UUID, version domain.ProjectVersion) (*domain.VersionRecord, error) {
	query := `SELECT ` + recordColumns + recordJoins + `
		WHERE vr.base_entity_id = $1 AND v.project_id = $2
			AND (v.major, v.minor, v.revision) <= ($3, $4, $5)
		ORDER BY v.major DESC, v.minor DESC, v.revision DESC
		LIMIT 1
	`
	rec, err := scanVersionRecord(r.pool.QueryRow(ctx, query,
		entityID, version.ProjectID, version.Major, version.Minor, version.Revision,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get latest version record: %w", err)
	}
	return rec, nil
}

func (r *versionRecordRepo) ListLatestAt(ctx context.Context, kind domain.EntityKind, version domain.ProjectVersion) ([]*domain.VersionRecord, error) {
	query := `SELECT DISTINCT ON (vr.base_entity_id) ` + recordColumns + recordJoins + `
		WHERE be.project_id = $1 AND be.kind = $2 AND v.project_id = $1
			AND (v.major, v.minor, v.revision) <= ($3, $4, $5)
		ORDER BY vr.base_entity_id, v.major DESC, v.minor DESC, v.revision DESC
	`
	rows, err := r.pool.Query(ctx, query,
		version.ProjectID, string(kind), version.Major, version.Minor, version.Revision,
	)
	if err != nil {
		return nil, fmt.Errorf("list latest version records: %w", err)
	}
	return collectVersionRecords(rows)
}

func (r *versionRecordRepo) ListHistory(ctx context.Context, entityID uuid.UUID) ([]*domain.VersionRecord, error) {
	query := `SELECT ` + recordColumns + recordJoins + `
		WHERE vr.base_entity_id = $1
		ORDER BY v.major, v.minor, v.revision
	`
	rows, err := r.pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("list version record history: %w", err)
	}
	return collectVersionRecords(rows)
}

func collectVersionRecords(rows pgx.Rows) ([]*domain.VersionRecord, error) {
	defer rows.Close()

	records := make([]*domain.VersionRecord, 0)
	for rows.Next() {
		rec, err := scanVersionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanVersionRecord(row pgx.Row) (*domain.VersionRecord, error) {
	var rec domain.VersionRecord
	var kind, modType string
	err := row.Scan(
		&rec.ID, &rec.CreatedAt, &rec.BaseEntityID, &rec.ProjectID, &kind,
		&modType, &rec.Payload,
		&rec.Version.ID, &rec.Version.CreatedAt, &rec.Version.ProjectID,
		&rec.Version.Major, &rec.Version.Minor, &rec.Version.Revision,
	)
	if err != nil {
		return nil, err
	}
	rec.Kind = domain.EntityKind(kind)
	rec.ModificationType = domain.ModificationType(modType)
	return &rec, nil
}
